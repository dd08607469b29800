package core

import (
	"sort"
	"strings"
	"time"
)

// Sort keys accepted by SortRecords.
const (
	SortByDate     = "date"
	SortByAmount   = "amount"
	SortByCategory = "category"
)

// FilterOptions narrows a record list. Zero values mean "no constraint".
// Search matches the note or the category, case-insensitive.
type FilterOptions struct {
	Category string
	From     Date
	To       Date
	Search   string
}

// Summary aggregates a record list into expense, income, and balance totals.
// ExpenseCents is reported as a positive magnitude.
type Summary struct {
	ExpenseCents int64 `json:"expense_cents"`
	IncomeCents  int64 `json:"income_cents"`
	BalanceCents int64 `json:"balance_cents"`
}

// CategoryTotal is an expense magnitude aggregated under one category.
type CategoryTotal struct {
	Category string `json:"category"`
	Cents    int64  `json:"cents"`
}

// WeekTotal is an expense magnitude bucketed into one trailing week.
type WeekTotal struct {
	WeekStart Date  `json:"week_start"`
	Cents     int64 `json:"cents"`
}

// Filter returns the records matching every set constraint, in input order.
func Filter(records []TransactionRecord, opts FilterOptions) []TransactionRecord {
	q := strings.ToLower(strings.TrimSpace(opts.Search))
	out := make([]TransactionRecord, 0, len(records))
	for _, r := range records {
		if opts.Category != "" && r.Category != opts.Category {
			continue
		}
		if !opts.From.IsZero() && r.Date.Before(opts.From) {
			continue
		}
		if !opts.To.IsZero() && r.Date.After(opts.To) {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(r.Note), q) &&
			!strings.Contains(strings.ToLower(r.Category), q) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SortRecords orders records by the given key and direction. Unknown keys
// fall back to date. The sort is stable so equal keys keep input order.
func SortRecords(records []TransactionRecord, by string, descending bool) {
	var less func(a, b TransactionRecord) bool
	switch by {
	case SortByAmount:
		less = func(a, b TransactionRecord) bool { return a.AmountCents < b.AmountCents }
	case SortByCategory:
		less = func(a, b TransactionRecord) bool { return a.Category < b.Category }
	default:
		less = func(a, b TransactionRecord) bool { return a.Date.Before(b.Date) }
	}
	sort.SliceStable(records, func(i, j int) bool {
		if descending {
			return less(records[j], records[i])
		}
		return less(records[i], records[j])
	})
}

// Paginate slices one page out of records and reports the total page count
// (at least 1). Pages are 1-based; out-of-range pages yield an empty slice.
func Paginate(records []TransactionRecord, page, pageSize int) ([]TransactionRecord, int) {
	if pageSize < 1 {
		pageSize = 1
	}
	totalPages := (len(records) + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(records) {
		return nil, totalPages
	}
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}
	return records[start:end], totalPages
}

// Summarize folds records into expense/income/balance totals.
func Summarize(records []TransactionRecord) Summary {
	var s Summary
	for _, r := range records {
		if r.AmountCents < 0 {
			s.ExpenseCents += -r.AmountCents
		} else {
			s.IncomeCents += r.AmountCents
		}
	}
	s.BalanceCents = s.IncomeCents - s.ExpenseCents
	return s
}

// CategoryTotals sums expense magnitudes by category for records dated in
// the given month, largest first.
func CategoryTotals(records []TransactionRecord, monthKey string) []CategoryTotal {
	byCat := map[string]int64{}
	for _, r := range records {
		if r.AmountCents >= 0 || r.Date.MonthKey() != monthKey {
			continue
		}
		byCat[r.Category] += -r.AmountCents
	}
	out := make([]CategoryTotal, 0, len(byCat))
	for cat, cents := range byCat {
		out = append(out, CategoryTotal{Category: cat, Cents: cents})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cents != out[j].Cents {
			return out[i].Cents > out[j].Cents
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// WeeklyTrend buckets expense magnitudes into the trailing n weeks ending at
// now. Weeks start on Sunday. Buckets are returned oldest first and include
// empty weeks, so the result always has n entries.
func WeeklyTrend(records []TransactionRecord, now time.Time, weeks int) []WeekTotal {
	if weeks < 1 {
		return nil
	}
	out := make([]WeekTotal, weeks)
	starts := make(map[string]int, weeks)
	for i := 0; i < weeks; i++ {
		ws := weekStart(now.AddDate(0, 0, -7*(weeks-1-i)))
		out[i] = WeekTotal{WeekStart: ws}
		starts[ws.String()] = i
	}
	for _, r := range records {
		if r.AmountCents >= 0 {
			continue
		}
		ws := weekStart(r.Date.Time)
		if i, ok := starts[ws.String()]; ok {
			out[i].Cents += -r.AmountCents
		}
	}
	return out
}

func weekStart(t time.Time) Date {
	d := DateOf(t)
	return Date{Time: d.AddDate(0, 0, -int(d.Weekday()))}
}
