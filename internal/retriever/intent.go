package retriever

import (
	"regexp"
	"strconv"
	"strings"
)

// orderIntent is the result of running the order-intent patterns over a
// query. OrderID is zero when the query mentioned orders without naming one.
type orderIntent struct {
	OrderID int64
}

// orderPatterns are tried in order; the first match wins. Patterns with a
// capture group extract a specific order number.
var orderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`order\s*(?:number|#)?\s*#?(\d+)`),
	regexp.MustCompile(`my\s+(?:recent\s+)?order`),
	regexp.MustCompile(`order\s+status`),
	regexp.MustCompile(`track\s+(?:my\s+)?order`),
	regexp.MustCompile(`where\s+is\s+my\s+order`),
	regexp.MustCompile(`cancel\w*\b.*\border(?:\s*#?\s*(\d+))?`),
}

// detectOrderIntent reports whether the query is about an order, and which
// one if a number was given.
func detectOrderIntent(query string) (orderIntent, bool) {
	q := strings.ToLower(query)
	for _, re := range orderPatterns {
		m := re.FindStringSubmatch(q)
		if m == nil {
			continue
		}
		var intent orderIntent
		if len(m) > 1 && m[1] != "" {
			if id, err := strconv.ParseInt(m[1], 10, 64); err == nil {
				intent.OrderID = id
			}
		}
		return intent, true
	}
	return orderIntent{}, false
}
