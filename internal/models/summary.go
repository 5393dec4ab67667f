package models

import "github.com/shopspring/decimal"

// Summary holds income and expense totals over a transaction set
type Summary struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"` // Income - Expenses
}

// CategoryTotal is the summed amount for one (type, category) group
type CategoryTotal struct {
	Type     TransactionType `json:"type"`
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// MonthlySeries holds per-month income and expense totals for one
// calendar year. Index 0 is January.
type MonthlySeries struct {
	Year    int                 `json:"year"`
	Income  [12]decimal.Decimal `json:"income"`
	Expense [12]decimal.Decimal `json:"expense"`
}
