package cbr

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/beevik/etree"
	"github.com/saisanthosh2218/expense-tracker/internal/config"
	"github.com/sirupsen/logrus"
)

// rateTTL bounds how long a fetched rate is served from cache. CBR
// publishes one cursus per day.
const rateTTL = time.Hour

// Rate is the published exchange rate for one currency against the ruble.
type Rate struct {
	Code string  `json:"code"`
	Rate float64 `json:"rate"`
	Date string  `json:"date"` // YYYY-MM-DD
}

// Client handles integration with the Central Bank of Russia daily-rates
// SOAP service
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger

	mu      sync.Mutex
	cached  map[string]Rate
	fetched map[string]time.Time
}

// NewClient initializes a new CBR client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url: cfg.CBRURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log:     log,
		cached:  make(map[string]Rate),
		fetched: make(map[string]time.Time),
	}
}

// buildSOAPRequest creates a SOAP request for the daily cursus
func (c *Client) buildSOAPRequest(onDate time.Time) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
		<soap12:Envelope xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">
			<soap12:Body>
				<GetCursOnDate xmlns="http://web.cbr.ru/">
					<On_date>%s</On_date>
				</GetCursOnDate>
			</soap12:Body>
		</soap12:Envelope>`, onDate.Format("2006-01-02"))
}

// sendRequest sends the SOAP request to CBR
func (c *Client) sendRequest(soapRequest string) ([]byte, error) {
	req, err := http.NewRequest("POST", c.url, bytes.NewBuffer([]byte(soapRequest)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	req.Header.Set("SOAPAction", "http://web.cbr.ru/GetCursOnDate")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debugf("CBR XML response: %s", string(body))

	return body, nil
}

// parseXMLResponse extracts the cursus for one currency code from the
// SOAP response
func (c *Client) parseXMLResponse(rawBody []byte, code string) (float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return 0, fmt.Errorf("failed to parse XML: %w", err)
	}

	elements := doc.FindElements("//ValuteData/ValuteCursOnDate")
	if len(elements) == 0 {
		return 0, fmt.Errorf("no rate data found in XML")
	}

	for _, el := range elements {
		codeElement := el.FindElement("./VchCode")
		if codeElement == nil || !strings.EqualFold(strings.TrimSpace(codeElement.Text()), code) {
			continue
		}
		cursElement := el.FindElement("./Vcurs")
		if cursElement == nil {
			return 0, fmt.Errorf("cursus element not found for %s", code)
		}
		curs, err := strconv.ParseFloat(strings.TrimSpace(cursElement.Text()), 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse cursus: %w", err)
		}
		nominal := 1.0
		if nomElement := el.FindElement("./Vnom"); nomElement != nil {
			if n, err := strconv.ParseFloat(strings.TrimSpace(nomElement.Text()), 64); err == nil && n > 0 {
				nominal = n
			}
		}
		return curs / nominal, nil
	}

	return 0, fmt.Errorf("currency %s not found in XML", code)
}

// GetRate retrieves today's exchange rate for the given currency code,
// serving a cached value when it is fresh enough
func (c *Client) GetRate(code string) (*Rate, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	c.mu.Lock()
	if rate, ok := c.cached[code]; ok && time.Since(c.fetched[code]) < rateTTL {
		c.mu.Unlock()
		return &rate, nil
	}
	c.mu.Unlock()

	now := time.Now()
	body, err := c.sendRequest(c.buildSOAPRequest(now))
	if err != nil {
		return nil, err
	}

	value, err := c.parseXMLResponse(body, code)
	if err != nil {
		return nil, err
	}

	rate := Rate{
		Code: code,
		Rate: value,
		Date: now.Format("2006-01-02"),
	}

	c.mu.Lock()
	c.cached[code] = rate
	c.fetched[code] = now
	c.mu.Unlock()

	c.log.Infof("Retrieved exchange rate %s: %.4f", code, value)
	return &rate, nil
}
