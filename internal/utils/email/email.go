package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/saisanthosh2218/expense-tracker/internal/config"
	"github.com/saisanthosh2218/expense-tracker/internal/models"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendMonthlyReport sends one user their finance summary for a month
func (s *Sender) SendMonthlyReport(to, username string, month time.Time, summary models.Summary, topExpenses []models.CategoryTotal) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Your finance summary for %s", month.Format("January 2006"))

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Here is your summary for %s:\n\n"+
			"Income:   %s\n"+
			"Expenses: %s\n"+
			"Balance:  %s\n",
		username, month.Format("January 2006"),
		summary.Income.StringFixed(2),
		summary.Expenses.StringFixed(2),
		summary.Balance.StringFixed(2),
	)

	if len(topExpenses) > 0 {
		body += "\nTop expense categories:\n"
		for _, ct := range topExpenses {
			body += fmt.Sprintf("- %s: %s\n", ct.Category, ct.Total.StringFixed(2))
		}
	}

	body += "\nBest regards,\nExpense Tracker"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
