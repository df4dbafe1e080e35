package catalog

import (
	"strconv"
	"strings"
)

// Pagination defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// SearchParams are the sanitized inputs of a catalog search.
type SearchParams struct {
	Page  int
	Limit int
	// Query is the raw text query; it is normalized when the pattern is built.
	Query string
	// Type is empty when no type filter applies.
	Type string
}

// Skip returns the number of records before the requested page.
func (p SearchParams) Skip() int {
	return (p.Page - 1) * p.Limit
}

// sanitize applies the ParsePage/ParseLimit rules to already parsed values.
func (p SearchParams) sanitize() SearchParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	p.Limit = clamp(p.Limit, 1, MaxLimit)
	return p
}

// ParseSearchParams sanitizes raw query string values. It never fails:
// malformed numbers fall back to their defaults.
func ParseSearchParams(page, limit, query, typ string) SearchParams {
	return SearchParams{
		Page:  ParsePage(page),
		Limit: ParseLimit(limit),
		Query: strings.TrimSpace(query),
		Type:  normalizeTypeFilter(typ),
	}
}

// ParsePage returns a positive page number, DefaultPage when raw is not one.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return DefaultPage
	}
	return n
}

// ParseLimit returns the page size within [1, MaxLimit].
func ParseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		n = DefaultLimit
	}
	return clamp(n, 1, MaxLimit)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// normalizeTypeFilter maps the placeholder values clients send for "any type"
// to the empty filter.
func normalizeTypeFilter(raw string) string {
	t := strings.TrimSpace(raw)
	switch strings.ToLower(t) {
	case "", "all", "undefined", "null":
		return ""
	}
	return t
}
