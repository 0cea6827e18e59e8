package gmail

import (
	"fmt"
	"strings"
)

// BuildQuery forms the provider-side query for one run. Filtering is
// pushed down to Gmail so excluded messages are never transferred.
func BuildQuery(filters FilterConfig) Query {
	days := filters.LookbackDays
	if days < 1 {
		days = 1
	}
	parts := []string{fmt.Sprintf("newer_than:%dd", days)}
	if filters.ExcludeRead {
		// Unread or important only; read-but-important mail still counts.
		parts = append(parts, "((is:unread) OR (is:important))")
	}
	if filters.ExcludeSpam {
		parts = append(parts, "-in:spam")
	}
	if filters.ExcludePromotional {
		parts = append(parts, "-category:promotions")
	}
	return Query{Raw: strings.Join(parts, " ")}
}
