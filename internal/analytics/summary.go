// Package analytics reduces a user's transaction set into the figures the
// dashboard renders: overall totals, per-category totals and per-month series.
//
// All summation semantics live here. The repository's SQL grouped sums are
// kept in agreement with these functions by tests, so every code path
// reports the same totals for the same input. Amounts accumulate with
// decimal arithmetic; conversion to a display form is the caller's problem.
package analytics

import (
	"github.com/saisanthosh2218/expense-tracker/internal/models"
	"github.com/shopspring/decimal"
)

// Summarize computes total income, total expenses and their balance.
// An empty input yields an all-zero summary.
func Summarize(txs []models.Transaction) models.Summary {
	income := decimal.Zero
	expenses := decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case models.TypeIncome:
			income = income.Add(tx.Amount)
		case models.TypeExpense:
			expenses = expenses.Add(tx.Amount)
		}
	}
	return models.Summary{
		Income:   income,
		Expenses: expenses,
		Balance:  income.Sub(expenses),
	}
}

// SummarizeByCategory groups transactions by (type, category) and sums each
// group. A category absent from the input contributes no entry; there is no
// zero-filling. Groups come out in first-seen order, which callers must not
// rely on.
func SummarizeByCategory(txs []models.Transaction) []models.CategoryTotal {
	type groupKey struct {
		txType   models.TransactionType
		category string
	}
	totals := make(map[groupKey]decimal.Decimal)
	var order []groupKey
	for _, tx := range txs {
		k := groupKey{tx.Type, tx.Category}
		if _, seen := totals[k]; !seen {
			order = append(order, k)
		}
		totals[k] = totals[k].Add(tx.Amount)
	}
	out := make([]models.CategoryTotal, 0, len(order))
	for _, k := range order {
		out = append(out, models.CategoryTotal{
			Type:     k.txType,
			Category: k.category,
			Total:    totals[k],
		})
	}
	return out
}

// MonthlySeries buckets the transactions of one calendar year by month,
// summing income and expense amounts independently. Transactions dated
// outside the year are excluded entirely; months with no transactions
// stay zero.
func MonthlySeries(txs []models.Transaction, year int) models.MonthlySeries {
	series := models.MonthlySeries{Year: year}
	for i := range series.Income {
		series.Income[i] = decimal.Zero
		series.Expense[i] = decimal.Zero
	}
	for _, tx := range txs {
		if tx.Date.Year() != year {
			continue
		}
		m := int(tx.Date.Month()) - 1
		switch tx.Type {
		case models.TypeIncome:
			series.Income[m] = series.Income[m].Add(tx.Amount)
		case models.TypeExpense:
			series.Expense[m] = series.Expense[m].Add(tx.Amount)
		}
	}
	return series
}
