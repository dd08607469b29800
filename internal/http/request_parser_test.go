package http

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"fintrack/internal/core"
)

func submission(overrides map[string]string) url.Values {
	values := url.Values{}
	values.Set("kind", "expense")
	values.Set("category", "Food")
	values.Set("amount", "15.00")
	values.Set("date", "2024-03-05")
	for k, v := range overrides {
		values.Set(k, v)
	}
	return values
}

func TestParseCreateSubmission(t *testing.T) {
	tpl, start, rule, err := parseCreateSubmission("alice", submission(nil))
	if err != nil {
		t.Fatalf("parseCreateSubmission: %v", err)
	}
	if tpl.OwnerID != "alice" || tpl.Kind != core.KindExpense || tpl.Category != "Food" {
		t.Errorf("unexpected template: %+v", tpl)
	}
	if tpl.AmountCents != -1500 {
		t.Errorf("expected expense stored as -1500, got %d", tpl.AmountCents)
	}
	if start.String() != "2024-03-05" {
		t.Errorf("unexpected start date %s", start)
	}
	if rule != nil {
		t.Errorf("expected no recurrence, got %+v", rule)
	}
}

func TestParseCreateSubmissionIncomeSign(t *testing.T) {
	tpl, _, _, err := parseCreateSubmission("alice", submission(map[string]string{
		"kind":   "income",
		"amount": "2500.00",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if tpl.AmountCents != 250000 {
		t.Errorf("expected income stored as 250000, got %d", tpl.AmountCents)
	}
}

func TestParseCreateSubmissionRecurrence(t *testing.T) {
	_, _, rule, err := parseCreateSubmission("alice", submission(map[string]string{
		"frequency": "weekly",
		"end_date":  "2024-03-22",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if rule == nil || rule.Frequency != core.FrequencyWeekly {
		t.Fatalf("expected weekly rule, got %+v", rule)
	}
	if rule.EndDate == nil || rule.EndDate.String() != "2024-03-22" {
		t.Errorf("expected end date 2024-03-22, got %+v", rule.EndDate)
	}
}

func TestParseCreateSubmissionRejectsBadInput(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]string
		wantErr   error
	}{
		{"bad kind", map[string]string{"kind": "transfer"}, core.ErrInvalidKind},
		{"empty category", map[string]string{"category": " "}, core.ErrEmptyCategory},
		{"bad frequency", map[string]string{"frequency": "hourly"}, core.ErrUnknownFrequency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := parseCreateSubmission("alice", submission(tt.overrides))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	t.Run("bad amount", func(t *testing.T) {
		if _, _, _, err := parseCreateSubmission("alice", submission(map[string]string{"amount": "abc"})); err == nil {
			t.Error("expected error for non-numeric amount")
		}
	})
	t.Run("bad date", func(t *testing.T) {
		if _, _, _, err := parseCreateSubmission("alice", submission(map[string]string{"date": "03/05/2024"})); err == nil {
			t.Error("expected error for bad date format")
		}
	})
}

func TestParseListQueryDefaults(t *testing.T) {
	q, err := parseListQuery(url.Values{})
	if err != nil {
		t.Fatal(err)
	}
	if q.SortBy != core.SortByDate || q.Descending || q.Page != 1 || q.PageSize != defaultPageSize {
		t.Errorf("unexpected defaults: %+v", q)
	}
}

func TestParseListQueryReadsSearchAndDirection(t *testing.T) {
	q, err := parseListQuery(url.Values{
		"q":    {" coffee "},
		"sort": {core.SortByAmount},
		"dir":  {"desc"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if q.Filter.Search != "coffee" {
		t.Errorf("expected search term coffee, got %q", q.Filter.Search)
	}
	if q.SortBy != core.SortByAmount || !q.Descending {
		t.Errorf("unexpected sort: %+v", q)
	}
}

func TestParseListQueryRejectsBadValues(t *testing.T) {
	bad := []url.Values{
		{"sort": {"color"}},
		{"dir": {"sideways"}},
		{"page": {"0"}},
		{"page_size": {"1000"}},
		{"from": {"not-a-date"}},
	}
	for _, values := range bad {
		if _, err := parseListQuery(values); err == nil {
			t.Errorf("expected error for %v", values)
		}
	}
}

func TestArchivedMonthDetection(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	parse := func(from, to string) listQuery {
		values := url.Values{}
		if from != "" {
			values.Set("from", from)
		}
		if to != "" {
			values.Set("to", to)
		}
		q, err := parseListQuery(values)
		if err != nil {
			t.Fatal(err)
		}
		return q
	}

	tests := []struct {
		name     string
		from, to string
		wantKey  string
		wantHit  bool
	}{
		{"past month", "2024-02-01", "2024-02-29", "2024-02", true},
		{"current month", "2024-03-01", "2024-03-31", "", false},
		{"spanning months", "2024-01-15", "2024-02-15", "", false},
		{"missing bound", "2024-02-01", "", "", false},
		{"future month", "2024-04-01", "2024-04-30", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, hit := parse(tt.from, tt.to).archivedMonth(now)
			if key != tt.wantKey || hit != tt.wantHit {
				t.Errorf("archivedMonth() = %q, %v; want %q, %v", key, hit, tt.wantKey, tt.wantHit)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  hello\x00world\x07  "); got != "helloworld" {
		t.Errorf("sanitizeInput() = %q", got)
	}
	if got := sanitizeInput("multi\nline"); got != "multi\nline" {
		t.Errorf("newlines should survive, got %q", got)
	}
}
