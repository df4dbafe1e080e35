package catalog

import "testing"

func TestParseSearchParams(t *testing.T) {
	tests := []struct {
		name             string
		page, limit      string
		wantPage, wantLm int
	}{
		{"defaults", "", "", 1, 20},
		{"valid", "3", "50", 3, 50},
		{"non numeric", "abc", "xyz", 1, 20},
		{"zero", "0", "0", 1, 20},
		{"negative", "-2", "-5", 1, 20},
		{"limit over max", "1", "500", 1, 100},
		{"limit at max", "2", "100", 2, 100},
		{"limit one", "1", "1", 1, 1},
		{"float", "2.5", "10.0", 1, 20},
		{"spaces", " 4 ", " 7 ", 4, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParseSearchParams(tt.page, tt.limit, "", "")
			if p.Page != tt.wantPage || p.Limit != tt.wantLm {
				t.Errorf("ParseSearchParams(%q, %q) = page %d limit %d, want page %d limit %d",
					tt.page, tt.limit, p.Page, p.Limit, tt.wantPage, tt.wantLm)
			}
		})
	}
}

func TestParseSearchParamsType(t *testing.T) {
	for _, raw := range []string{"", "all", "ALL", "All", "undefined", "null", "NULL", "  all  "} {
		if got := ParseSearchParams("", "", "", raw).Type; got != "" {
			t.Errorf("type %q should mean no filter, got %q", raw, got)
		}
	}
	if got := ParseSearchParams("", "", "", " Sound ").Type; got != "Sound" {
		t.Errorf("type = %q, want %q", got, "Sound")
	}
}

func TestSearchParamsSkip(t *testing.T) {
	p := SearchParams{Page: 3, Limit: 20}
	if got := p.Skip(); got != 40 {
		t.Errorf("Skip() = %d, want 40", got)
	}
}
