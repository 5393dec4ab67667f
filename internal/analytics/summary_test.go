package analytics

import (
	"testing"
	"time"

	"github.com/saisanthosh2218/expense-tracker/internal/models"
	"github.com/shopspring/decimal"
)

func tx(typ models.TransactionType, amount, category, description, date string) models.Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return models.Transaction{
		Type:        typ,
		Amount:      decimal.RequireFromString(amount),
		Category:    category,
		Description: description,
		Date:        d,
	}
}

func sampleSet() []models.Transaction {
	return []models.Transaction{
		tx(models.TypeIncome, "1000", "Salary", "May pay", "2024-05-01"),
		tx(models.TypeExpense, "300", "Food", "Groceries", "2024-05-02"),
		tx(models.TypeExpense, "150", "Food", "Snacks", "2024-06-01"),
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleSet())

	if !s.Income.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("income = %s, want 1000", s.Income)
	}
	if !s.Expenses.Equal(decimal.NewFromInt(450)) {
		t.Fatalf("expenses = %s, want 450", s.Expenses)
	}
	if !s.Balance.Equal(decimal.NewFromInt(550)) {
		t.Fatalf("balance = %s, want 550", s.Balance)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if !s.Income.IsZero() || !s.Expenses.IsZero() || !s.Balance.IsZero() {
		t.Fatalf("empty set should yield all zeros, got %+v", s)
	}
}

func TestSummarizeBalanceIdentity(t *testing.T) {
	sets := [][]models.Transaction{
		nil,
		sampleSet(),
		{tx(models.TypeExpense, "42.42", "Food", "Lunch", "2024-01-15")},
		{
			tx(models.TypeIncome, "12.34", "Salary", "a", "2023-12-31"),
			tx(models.TypeIncome, "0", "Gifts", "b", "2024-01-01"),
			tx(models.TypeExpense, "99.99", "Housing", "c", "2024-02-29"),
		},
	}
	for i, set := range sets {
		s := Summarize(set)
		if !s.Balance.Equal(s.Income.Sub(s.Expenses)) {
			t.Fatalf("set %d: balance %s != income %s - expenses %s", i, s.Balance, s.Income, s.Expenses)
		}
		if s.Income.IsNegative() || s.Expenses.IsNegative() {
			t.Fatalf("set %d: totals must be non-negative, got %+v", i, s)
		}
	}
}

// Repeated cent-level additions must not drift the way binary floats do.
func TestSummarizeDecimalPrecision(t *testing.T) {
	var set []models.Transaction
	for i := 0; i < 1000; i++ {
		set = append(set, tx(models.TypeExpense, "0.10", "Food", "coffee", "2024-03-01"))
	}
	s := Summarize(set)
	if !s.Expenses.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expenses = %s, want exactly 100", s.Expenses)
	}
}

func TestSummarizeByCategory(t *testing.T) {
	totals := SummarizeByCategory(sampleSet())
	if len(totals) != 2 {
		t.Fatalf("got %d groups, want 2", len(totals))
	}

	byKey := make(map[string]decimal.Decimal)
	for _, ct := range totals {
		byKey[string(ct.Type)+"/"+ct.Category] = ct.Total
	}
	if v, ok := byKey["income/Salary"]; !ok || !v.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("(income, Salary) = %s, want 1000", v)
	}
	if v, ok := byKey["expense/Food"]; !ok || !v.Equal(decimal.NewFromInt(450)) {
		t.Fatalf("(expense, Food) = %s, want 450", v)
	}
}

func TestSummarizeByCategoryNoZeroFilling(t *testing.T) {
	totals := SummarizeByCategory(nil)
	if len(totals) != 0 {
		t.Fatalf("empty set should yield no groups, got %d", len(totals))
	}
}

// Category totals partition the set: they sum to income + expenses.
func TestSummarizeByCategoryPartition(t *testing.T) {
	set := []models.Transaction{
		tx(models.TypeIncome, "1000", "Salary", "a", "2024-05-01"),
		tx(models.TypeIncome, "55.50", "Freelance", "b", "2024-05-03"),
		tx(models.TypeExpense, "300", "Food", "c", "2024-05-02"),
		tx(models.TypeExpense, "150", "Food", "d", "2024-06-01"),
		tx(models.TypeExpense, "80.25", "Transportation", "e", "2024-06-02"),
	}

	sum := decimal.Zero
	for _, ct := range SummarizeByCategory(set) {
		sum = sum.Add(ct.Total)
	}

	s := Summarize(set)
	if !sum.Equal(s.Income.Add(s.Expenses)) {
		t.Fatalf("category totals sum to %s, want %s", sum, s.Income.Add(s.Expenses))
	}
}

func TestMonthlySeries(t *testing.T) {
	series := MonthlySeries(sampleSet(), 2024)

	if series.Year != 2024 {
		t.Fatalf("year = %d, want 2024", series.Year)
	}
	for i := 0; i < 12; i++ {
		wantIncome := decimal.Zero
		wantExpense := decimal.Zero
		switch i {
		case 4: // May
			wantIncome = decimal.NewFromInt(1000)
			wantExpense = decimal.NewFromInt(300)
		case 5: // June
			wantExpense = decimal.NewFromInt(150)
		}
		if !series.Income[i].Equal(wantIncome) {
			t.Fatalf("income[%d] = %s, want %s", i, series.Income[i], wantIncome)
		}
		if !series.Expense[i].Equal(wantExpense) {
			t.Fatalf("expense[%d] = %s, want %s", i, series.Expense[i], wantExpense)
		}
	}
}

func TestMonthlySeriesExcludesOtherYears(t *testing.T) {
	set := append(sampleSet(),
		tx(models.TypeExpense, "999", "Food", "old", "2023-12-31"),
		tx(models.TypeIncome, "999", "Salary", "future", "2025-01-01"),
	)
	series := MonthlySeries(set, 2024)

	if !series.Expense[11].IsZero() {
		t.Fatalf("December 2023 expense must not clamp into 2024, got %s", series.Expense[11])
	}
	if !series.Income[0].IsZero() {
		t.Fatalf("January 2025 income must not clamp into 2024, got %s", series.Income[0])
	}
}

// The series for one year must total the same as summarizing the set
// filtered to that year.
func TestMonthlySeriesMatchesFilteredSummary(t *testing.T) {
	set := append(sampleSet(),
		tx(models.TypeIncome, "77.77", "Investments", "div", "2024-11-11"),
		tx(models.TypeExpense, "10", "Utilities", "bill", "2023-01-01"),
	)
	series := MonthlySeries(set, 2024)

	incomeTotal := decimal.Zero
	expenseTotal := decimal.Zero
	for i := 0; i < 12; i++ {
		incomeTotal = incomeTotal.Add(series.Income[i])
		expenseTotal = expenseTotal.Add(series.Expense[i])
	}

	start, _ := time.Parse("2006-01-02", "2024-01-01")
	end, _ := time.Parse("2006-01-02", "2024-12-31")
	s := Summarize(Apply(set, Filter{StartDate: &start, EndDate: &end}))

	if !incomeTotal.Equal(s.Income) {
		t.Fatalf("series income total %s != filtered summary income %s", incomeTotal, s.Income)
	}
	if !expenseTotal.Equal(s.Expenses) {
		t.Fatalf("series expense total %s != filtered summary expenses %s", expenseTotal, s.Expenses)
	}
}
