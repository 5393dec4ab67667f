// Package report emails each user a summary of their previous month,
// computed through the same aggregation engine the API serves.
package report

import (
	"sort"
	"time"

	"github.com/saisanthosh2218/expense-tracker/internal/analytics"
	"github.com/saisanthosh2218/expense-tracker/internal/models"
	"github.com/sirupsen/logrus"
)

// topExpenseCount bounds how many expense categories a report lists.
const topExpenseCount = 5

// Store is the slice of the repository the reporter needs.
type Store interface {
	ListUsers() ([]models.User, error)
	ListTransactions(ownerID int64) ([]models.Transaction, error)
}

// Sender delivers one rendered report.
type Sender interface {
	SendMonthlyReport(to, username string, month time.Time, summary models.Summary, topExpenses []models.CategoryTotal) error
}

// Reporter generates and sends the monthly summary emails
type Reporter struct {
	store  Store
	sender Sender
	log    *logrus.Logger
	now    func() time.Time
}

// NewReporter initializes a new reporter
func NewReporter(store Store, sender Sender, log *logrus.Logger) *Reporter {
	return &Reporter{store: store, sender: sender, log: log, now: time.Now}
}

// Run sends every user their previous-month summary. Failures for one
// user are logged and do not stop the rest.
func (r *Reporter) Run() {
	firstOfMonth := startOfMonth(r.now())
	monthStart := firstOfMonth.AddDate(0, -1, 0)
	monthEnd := firstOfMonth.AddDate(0, 0, -1)

	users, err := r.store.ListUsers()
	if err != nil {
		r.log.Errorf("Monthly report: failed to list users: %v", err)
		return
	}

	sent := 0
	for _, user := range users {
		txs, err := r.store.ListTransactions(user.ID)
		if err != nil {
			r.log.Errorf("Monthly report: failed to list transactions for user %d: %v", user.ID, err)
			continue
		}

		monthTxs := analytics.Apply(txs, analytics.Filter{
			StartDate: &monthStart,
			EndDate:   &monthEnd,
		})
		if len(monthTxs) == 0 {
			continue
		}

		summary := analytics.Summarize(monthTxs)
		if err := r.sender.SendMonthlyReport(user.Email, user.Username, monthStart, summary, topExpenses(monthTxs)); err != nil {
			r.log.Errorf("Monthly report: failed to send to %s: %v", user.Email, err)
			continue
		}
		sent++
	}

	r.log.Infof("Monthly report run complete: %d of %d users notified", sent, len(users))
}

// topExpenses returns the largest expense categories of the set, biggest
// first
func topExpenses(txs []models.Transaction) []models.CategoryTotal {
	var expenses []models.CategoryTotal
	for _, ct := range analytics.SummarizeByCategory(txs) {
		if ct.Type == models.TypeExpense {
			expenses = append(expenses, ct)
		}
	}
	sort.Slice(expenses, func(i, j int) bool {
		return expenses[i].Total.GreaterThan(expenses[j].Total)
	})
	if len(expenses) > topExpenseCount {
		expenses = expenses[:topExpenseCount]
	}
	return expenses
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
