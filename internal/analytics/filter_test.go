package analytics

import (
	"testing"
	"time"

	"github.com/saisanthosh2218/expense-tracker/internal/models"
)

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func filterSet() []models.Transaction {
	return []models.Transaction{
		tx(models.TypeIncome, "1000", "Salary", "May pay", "2024-05-01"),
		tx(models.TypeExpense, "300", "Food", "Groceries at the market", "2024-05-02"),
		tx(models.TypeExpense, "150", "Food", "Snacks", "2024-06-01"),
		tx(models.TypeExpense, "80", "Transportation", "Bus ticket", "2024-06-15"),
	}
}

func descriptions(txs []models.Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.Description
	}
	return out
}

func TestApplyTypeFilter(t *testing.T) {
	cases := []struct {
		typ  string
		want int
	}{
		{"", 4},
		{"all", 4},
		{"income", 1},
		{"expense", 3},
	}
	for _, tc := range cases {
		got := Apply(filterSet(), Filter{Type: tc.typ})
		if len(got) != tc.want {
			t.Fatalf("type %q: got %d transactions, want %d", tc.typ, len(got), tc.want)
		}
	}
}

func TestApplySearchCaseInsensitive(t *testing.T) {
	got := Apply(filterSet(), Filter{Search: "fOo"})
	if len(got) != 2 {
		t.Fatalf("search fOo: got %d, want 2 (matches category Food)", len(got))
	}

	got = Apply(filterSet(), Filter{Search: "market"})
	if len(got) != 1 || got[0].Description != "Groceries at the market" {
		t.Fatalf("search market: got %v", descriptions(got))
	}
}

func TestApplyDateBoundsInclusive(t *testing.T) {
	got := Apply(filterSet(), Filter{StartDate: date("2024-05-02"), EndDate: date("2024-06-01")})
	if len(got) != 2 {
		t.Fatalf("got %v, want the two transactions dated exactly on the bounds", descriptions(got))
	}

	// Either bound may be omitted.
	got = Apply(filterSet(), Filter{StartDate: date("2024-06-01")})
	if len(got) != 2 {
		t.Fatalf("open end: got %d, want 2", len(got))
	}
	got = Apply(filterSet(), Filter{EndDate: date("2024-05-02")})
	if len(got) != 2 {
		t.Fatalf("open start: got %d, want 2", len(got))
	}
}

// All supplied criteria AND together; search does not bypass the date
// range.
func TestApplyCombinesWithAnd(t *testing.T) {
	f := Filter{
		Type:      "expense",
		Search:    "food",
		StartDate: date("2024-06-01"),
	}
	got := Apply(filterSet(), f)
	if len(got) != 1 || got[0].Description != "Snacks" {
		t.Fatalf("got %v, want only Snacks", descriptions(got))
	}
}

func TestApplySortsDateDescending(t *testing.T) {
	got := Apply(filterSet(), Filter{})
	for i := 1; i < len(got); i++ {
		if got[i].Date.After(got[i-1].Date) {
			t.Fatalf("not sorted descending at index %d: %v", i, descriptions(got))
		}
	}
	if got[0].Description != "Bus ticket" {
		t.Fatalf("newest first, got %q", got[0].Description)
	}
}

func TestApplyIdempotent(t *testing.T) {
	f := Filter{Type: "expense", Search: "o", StartDate: date("2024-05-01")}
	once := Apply(filterSet(), f)
	twice := Apply(once, f)
	if len(once) != len(twice) {
		t.Fatalf("idempotence broken: %d then %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].Description != twice[i].Description {
			t.Fatalf("idempotence broken at index %d", i)
		}
	}
}

func TestApplyZeroFilterKeepsMembership(t *testing.T) {
	in := filterSet()
	got := Apply(in, Filter{})
	if len(got) != len(in) {
		t.Fatalf("zero filter dropped transactions: %d of %d", len(got), len(in))
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	in := filterSet()
	first := in[0].Description
	Apply(in, Filter{Type: "expense"})
	if in[0].Description != first {
		t.Fatal("input slice mutated")
	}
}
