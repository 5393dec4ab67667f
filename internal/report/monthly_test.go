package report

import (
	"testing"
	"time"

	"github.com/saisanthosh2218/expense-tracker/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type fakeStore struct {
	users []models.User
	txs   map[int64][]models.Transaction
}

func (f *fakeStore) ListUsers() ([]models.User, error) {
	return f.users, nil
}

func (f *fakeStore) ListTransactions(ownerID int64) ([]models.Transaction, error) {
	return f.txs[ownerID], nil
}

type sentReport struct {
	to      string
	month   time.Time
	summary models.Summary
	top     []models.CategoryTotal
}

type fakeSender struct {
	sent []sentReport
}

func (f *fakeSender) SendMonthlyReport(to, username string, month time.Time, summary models.Summary, topExpenses []models.CategoryTotal) error {
	f.sent = append(f.sent, sentReport{to: to, month: month, summary: summary, top: topExpenses})
	return nil
}

func reportTx(typ models.TransactionType, amount, category, date string) models.Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return models.Transaction{
		Type:     typ,
		Amount:   decimal.RequireFromString(amount),
		Category: category,
		Date:     d,
	}
}

func newTestReporter(store Store, sender Sender, now time.Time) *Reporter {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	r := NewReporter(store, sender, logger)
	r.now = func() time.Time { return now }
	return r
}

func TestRunReportsPreviousMonth(t *testing.T) {
	store := &fakeStore{
		users: []models.User{{ID: 1, Username: "alice", Email: "alice@example.com"}},
		txs: map[int64][]models.Transaction{
			1: {
				reportTx(models.TypeIncome, "1000", "Salary", "2024-05-01"),
				reportTx(models.TypeExpense, "300", "Food", "2024-05-02"),
				reportTx(models.TypeExpense, "150", "Food", "2024-06-01"), // current month, excluded
				reportTx(models.TypeExpense, "999", "Housing", "2024-04-30"),
			},
		},
	}
	sender := &fakeSender{}
	reporter := newTestReporter(store, sender, time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))

	reporter.Run()

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d reports, want 1", len(sender.sent))
	}
	got := sender.sent[0]
	if got.to != "alice@example.com" {
		t.Fatalf("sent to %q", got.to)
	}
	if got.month.Month() != time.May || got.month.Year() != 2024 {
		t.Fatalf("report month = %s, want May 2024", got.month)
	}
	if !got.summary.Income.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("income = %s, want 1000", got.summary.Income)
	}
	if !got.summary.Expenses.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expenses = %s, want 300 (May only)", got.summary.Expenses)
	}
	if !got.summary.Balance.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("balance = %s, want 700", got.summary.Balance)
	}
}

func TestRunSkipsUsersWithoutActivity(t *testing.T) {
	store := &fakeStore{
		users: []models.User{
			{ID: 1, Username: "alice", Email: "alice@example.com"},
			{ID: 2, Username: "bob", Email: "bob@example.com"},
		},
		txs: map[int64][]models.Transaction{
			1: {reportTx(models.TypeExpense, "10", "Food", "2024-05-15")},
		},
	}
	sender := &fakeSender{}
	reporter := newTestReporter(store, sender, time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))

	reporter.Run()

	if len(sender.sent) != 1 || sender.sent[0].to != "alice@example.com" {
		t.Fatalf("want exactly one report to alice, got %+v", sender.sent)
	}
}

func TestTopExpensesOrderedAndCapped(t *testing.T) {
	var txs []models.Transaction
	categories := []string{"Housing", "Food", "Transportation", "Entertainment", "Shopping", "Utilities", "Healthcare"}
	for i, cat := range categories {
		txs = append(txs, reportTx(models.TypeExpense, decimal.NewFromInt(int64(100*(i+1))).String(), cat, "2024-05-10"))
	}
	txs = append(txs, reportTx(models.TypeIncome, "5000", "Salary", "2024-05-01"))

	top := topExpenses(txs)

	if len(top) != topExpenseCount {
		t.Fatalf("got %d categories, want %d", len(top), topExpenseCount)
	}
	if top[0].Category != "Healthcare" {
		t.Fatalf("largest category = %q, want Healthcare", top[0].Category)
	}
	for i := 1; i < len(top); i++ {
		if top[i].Total.GreaterThan(top[i-1].Total) {
			t.Fatalf("not ordered descending at %d", i)
		}
	}
	for _, ct := range top {
		if ct.Type != models.TypeExpense {
			t.Fatalf("income group leaked into top expenses: %+v", ct)
		}
	}
}
