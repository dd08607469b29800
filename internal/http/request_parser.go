// Package http provides the JSON API server.
//
// This file implements utilities for parsing and validating request
// data, supporting both JSON and form-encoded bodies.
package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

const ownerHeader = "X-Owner-ID"

// ownerID extracts the calling owner from the request header.
func ownerID(r *http.Request) (string, error) {
	owner := strings.TrimSpace(r.Header.Get(ownerHeader))
	if owner == "" {
		return "", fmt.Errorf("missing %s header", ownerHeader)
	}
	return owner, nil
}

// bodyValues reads the request body as JSON or form data and returns a
// flat key/value view of it.
func bodyValues(r *http.Request) (url.Values, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) == 0 {
		return url.Values{}, nil
	}

	if body[0] == '{' {
		raw := map[string]any{}
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, fmt.Errorf("parse json body: %w", err)
		}
		values := url.Values{}
		for k, v := range raw {
			values.Set(k, stringValue(v))
		}
		return values, nil
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse form body: %w", err)
	}
	return values, nil
}

// stringValue converts a decoded JSON value to its string form.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// parseCreateSubmission turns a create request body into the template,
// start date, and optional recurrence rule for expansion.
func parseCreateSubmission(owner string, values url.Values) (core.Template, core.Date, *core.Recurrence, error) {
	get := func(key string) string { return sanitizeInput(values.Get(key)) }

	kind := core.Kind(get("kind"))
	if kind != core.KindExpense && kind != core.KindIncome {
		return core.Template{}, core.Date{}, nil, fmt.Errorf("%w: %q", core.ErrInvalidKind, get("kind"))
	}

	category := get("category")
	if category == "" {
		return core.Template{}, core.Date{}, nil, core.ErrEmptyCategory
	}

	cents, err := core.ParseDecimalToCents(get("amount"))
	if err != nil {
		return core.Template{}, core.Date{}, nil, fmt.Errorf("amount: %w", err)
	}

	start, err := core.ParseDate(get("date"))
	if err != nil {
		return core.Template{}, core.Date{}, nil, fmt.Errorf("date: %w", err)
	}

	tpl := core.Template{
		OwnerID:     owner,
		Kind:        kind,
		Category:    category,
		AmountCents: cents * kind.Sign(),
		Note:        get("note"),
	}

	freq := get("frequency")
	if freq == "" {
		return tpl, start, nil, nil
	}

	rule := &core.Recurrence{Frequency: core.Frequency(freq)}
	if err := rule.Frequency.Validate(); err != nil {
		return core.Template{}, core.Date{}, nil, err
	}
	if endStr := get("end_date"); endStr != "" {
		end, err := core.ParseDate(endStr)
		if err != nil {
			return core.Template{}, core.Date{}, nil, fmt.Errorf("end_date: %w", err)
		}
		rule.EndDate = &end
	}

	return tpl, start, rule, nil
}

// listQuery holds the parsed filter, sort, and pagination parameters of
// a transaction listing request.
type listQuery struct {
	Filter     core.FilterOptions
	SortBy     string
	Descending bool
	Page       int
	PageSize   int
}

const defaultPageSize = 10

// parseListQuery extracts listing parameters from the URL query.
func parseListQuery(query url.Values) (listQuery, error) {
	q := listQuery{
		SortBy:   core.SortByDate,
		Page:     1,
		PageSize: defaultPageSize,
	}

	q.Filter.Category = sanitizeInput(query.Get("category"))
	q.Filter.Search = sanitizeInput(query.Get("q"))

	if v := strings.TrimSpace(query.Get("from")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return q, fmt.Errorf("from: %w", err)
		}
		q.Filter.From = d
	}
	if v := strings.TrimSpace(query.Get("to")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return q, fmt.Errorf("to: %w", err)
		}
		q.Filter.To = d
	}

	switch v := strings.TrimSpace(query.Get("sort")); v {
	case "", core.SortByDate:
		q.SortBy = core.SortByDate
	case core.SortByAmount, core.SortByCategory:
		q.SortBy = v
	default:
		return q, fmt.Errorf("unknown sort field %q", v)
	}

	switch v := strings.TrimSpace(query.Get("dir")); v {
	case "", "asc":
	case "desc":
		q.Descending = true
	default:
		return q, fmt.Errorf("unknown sort direction %q", v)
	}

	if v := strings.TrimSpace(query.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return q, fmt.Errorf("invalid page %q", v)
		}
		q.Page = page
	}
	if v := strings.TrimSpace(query.Get("page_size")); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 || size > 100 {
			return q, fmt.Errorf("invalid page_size %q", v)
		}
		q.PageSize = size
	}

	return q, nil
}

// archivedMonth reports whether the query targets a fully past month.
// That is the case when both bounds are set, fall in the same month,
// and that month is before the current one; such views are served from
// the archive.
func (q listQuery) archivedMonth(now time.Time) (string, bool) {
	if q.Filter.From.IsZero() || q.Filter.To.IsZero() {
		return "", false
	}
	fromKey := q.Filter.From.MonthKey()
	if fromKey != q.Filter.To.MonthKey() {
		return "", false
	}
	if fromKey >= core.MonthKeyOf(now) {
		return "", false
	}
	return fromKey, true
}
