package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/saisanthosh2218/expense-tracker/internal/models"
)

// TypeAll passes both transaction types through a Filter.
const TypeAll = "all"

// Filter narrows a transaction set before display or aggregation.
// The zero value passes everything.
type Filter struct {
	Type      string // "", "all", "income" or "expense"
	Search    string // case-insensitive substring on description or category
	StartDate *time.Time
	EndDate   *time.Time
}

// Apply returns the members of txs matching every criterion set on f,
// sorted by date descending. Supplied criteria combine with AND; date
// bounds are inclusive and compared at day granularity. Apply is a pure
// function of its inputs and never mutates txs.
func Apply(txs []models.Transaction, f Filter) []models.Transaction {
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.matches(tx) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

func (f Filter) matches(tx models.Transaction) bool {
	if f.Type != "" && f.Type != TypeAll && string(tx.Type) != f.Type {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(tx.Description), q) &&
			!strings.Contains(strings.ToLower(tx.Category), q) {
			return false
		}
	}
	if f.StartDate != nil && dayOf(tx.Date).Before(dayOf(*f.StartDate)) {
		return false
	}
	if f.EndDate != nil && dayOf(tx.Date).After(dayOf(*f.EndDate)) {
		return false
	}
	return true
}

// dayOf strips the time-of-day so bound checks stay inclusive.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
