package core

import "time"

// Template carries the user-entered fields shared by every record in a
// recurring series. The amount sign is already resolved from the kind.
type Template struct {
	OwnerID     string
	Kind        Kind
	Category    string
	AmountCents int64
	Note        string
}

// Expand turns a template plus an optional recurrence rule into the ordered
// sequence of dated records to persist. It is pure: no IDs, no timestamps,
// no side effects. Callers validate input beforehand.
//
// Without a rule the result is a single record at start. A rule without an
// end date also yields a single record, carrying the rule for bookkeeping:
// the series is anchored, not open-ended. A rule with an end date yields one
// record per step from start while the date stays on or before the end date;
// a rule whose end date precedes start yields no records at all.
func Expand(t Template, start Date, rule *Recurrence) []TransactionRecord {
	base := TransactionRecord{
		OwnerID:     t.OwnerID,
		Kind:        t.Kind,
		Category:    t.Category,
		AmountCents: t.AmountCents,
		Note:        t.Note,
	}

	if rule == nil {
		base.Date = start
		return []TransactionRecord{base}
	}

	meta := &Recurrence{Frequency: rule.Frequency, EndDate: rule.EndDate}
	if rule.EndDate == nil {
		base.Date = start
		base.Recurrence = meta
		return []TransactionRecord{base}
	}

	end := *rule.EndDate
	var out []TransactionRecord
	for d := start; !d.After(end); d = NextDate(d, rule.Frequency) {
		rec := base
		rec.Date = d
		rec.Recurrence = meta
		out = append(out, rec)
	}
	return out
}

// NextDate advances a date by one step of the given frequency. Monthly and
// yearly steps clamp to the last valid day of the target month (Jan 31 ->
// Feb 29 in a leap year); subsequent steps continue from the clamped date,
// so a series started on the 31st settles on the shortest month it crosses.
func NextDate(d Date, f Frequency) Date {
	switch f {
	case FrequencyDaily:
		return Date{Time: d.AddDate(0, 0, 1)}
	case FrequencyWeekly:
		return Date{Time: d.AddDate(0, 0, 7)}
	case FrequencyMonthly:
		return addMonthsClamped(d, 1)
	case FrequencyYearly:
		return addMonthsClamped(d, 12)
	default:
		// Unknown frequencies never advance; callers validate beforehand.
		return d
	}
}

func addMonthsClamped(d Date, months int) Date {
	year, month, day := d.Date()
	// First of the target month, then clamp the day.
	first := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	last := lastDayOfMonth(first.Year(), first.Month())
	if day > last {
		day = last
	}
	return NewDate(first.Year(), int(first.Month()), day)
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
