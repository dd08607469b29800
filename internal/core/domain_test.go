package core

import (
	"encoding/json"
	"testing"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-10")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.String() != "2024-03-10" || d.MonthKey() != "2024-03" {
		t.Errorf("got %s / %s", d, d.MonthKey())
	}

	for _, bad := range []string{"", "2024-13-01", "10/03/2024", "2024-03-10T00:00:00Z"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func TestTransactionRecordValidate(t *testing.T) {
	good := TransactionRecord{
		OwnerID:     "u1",
		Kind:        KindExpense,
		Category:    "Food",
		AmountCents: -1200,
		Date:        NewDate(2024, 3, 10),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*TransactionRecord)
		want   error
	}{
		{"empty owner", func(r *TransactionRecord) { r.OwnerID = " " }, ErrEmptyOwner},
		{"bad kind", func(r *TransactionRecord) { r.Kind = "transfer" }, ErrInvalidKind},
		{"empty category", func(r *TransactionRecord) { r.Category = "" }, ErrEmptyCategory},
		{"zero amount", func(r *TransactionRecord) { r.AmountCents = 0 }, ErrInvalidAmount},
		{"expense with positive amount", func(r *TransactionRecord) { r.AmountCents = 1200 }, ErrAmountSign},
		{"income with negative amount", func(r *TransactionRecord) { r.Kind = KindIncome }, ErrAmountSign},
		{"zero date", func(r *TransactionRecord) { r.Date = Date{} }, ErrInvalidDate},
		{"bad frequency", func(r *TransactionRecord) {
			r.Recurrence = &Recurrence{Frequency: "fortnightly"}
		}, ErrUnknownFrequency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := good
			tt.mutate(&r)
			if err := r.Validate(); err != tt.want {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestKindSign(t *testing.T) {
	if KindExpense.Sign() != -1 || KindIncome.Sign() != 1 {
		t.Errorf("signs: expense=%d income=%d", KindExpense.Sign(), KindIncome.Sign())
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	type wrapper struct {
		When Date  `json:"when"`
		End  *Date `json:"end,omitempty"`
	}
	in := wrapper{When: NewDate(2024, 1, 31)}
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"when":"2024-01-31"}` {
		t.Fatalf("marshal = %s", raw)
	}
	var out wrapper
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.When.String() != "2024-01-31" || out.End != nil {
		t.Errorf("round trip = %+v", out)
	}
}
