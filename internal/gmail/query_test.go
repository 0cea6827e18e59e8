package gmail

import (
	"strings"
	"testing"
)

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name    string
		filters FilterConfig
		want    string
	}{
		{
			name: "all-filters",
			filters: FilterConfig{
				ExcludeRead:        true,
				ExcludeSpam:        true,
				ExcludePromotional: true,
				LookbackDays:       1,
			},
			want: "newer_than:1d ((is:unread) OR (is:important)) -in:spam -category:promotions",
		},
		{
			name:    "no-filters",
			filters: FilterConfig{LookbackDays: 3},
			want:    "newer_than:3d",
		},
		{
			name: "spam-only",
			filters: FilterConfig{
				ExcludeSpam:  true,
				LookbackDays: 7,
			},
			want: "newer_than:7d -in:spam",
		},
		{
			name:    "lookback-clamped-to-one-day",
			filters: FilterConfig{LookbackDays: 0},
			want:    "newer_than:1d",
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			got := BuildQuery(tc.filters)
			if got.Raw != tc.want {
				t.Fatalf("query mismatch:\n got %q\nwant %q", got.Raw, tc.want)
			}
		})
	}
}

func TestBuildQueryDeterministic(t *testing.T) {
	filters := FilterConfig{ExcludeRead: true, ExcludeSpam: true, LookbackDays: 2}
	first := BuildQuery(filters).Raw
	for i := 0; i < 5; i++ {
		if got := BuildQuery(filters).Raw; got != first {
			t.Fatalf("query changed between calls: %q vs %q", first, got)
		}
	}
	if !strings.HasPrefix(first, "newer_than:") {
		t.Fatalf("query missing time window: %q", first)
	}
}
