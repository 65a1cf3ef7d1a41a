package grocery

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/idilsaglam/grocery/internal/model"
)

// Match returns the items whose text contains query, ignoring case.
// An empty query matches everything. The result is always a fresh slice.
func Match(items []model.Item, query string) []model.Item {
	out := make([]model.Item, 0, len(items))
	if query == "" {
		return append(out, items...)
	}
	q := fold(query)
	for _, it := range items {
		if strings.Contains(fold(it.Item), q) {
			out = append(out, it)
		}
	}
	return out
}

// fold normalizes s for caseless comparison. A Caser keeps state, so one is
// built per call.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
