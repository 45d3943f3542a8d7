package units

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ahrav/go-ballot/infrastructure/taxonomy"
)

// dateLayouts are the date shapes upstream sources use, most common first.
var dateLayouts = []string{"2006-01-02", "2006-01", "2006", "2/1/2006"}

// ongoingMarkers are folded end-date texts meaning "still held".
var ongoingMarkers = []string{"actualidad", "presente", "a la fecha", "actual", "present", "current"}

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// parseYear extracts a year from a free-form date. ongoing is true when the
// text marks a position still held. A zero year means nothing usable was
// found.
func parseYear(s string) (year int, ongoing bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Year(), false
		}
	}

	folded := taxonomy.Fold(s)
	for _, m := range ongoingMarkers {
		if folded == m || strings.HasPrefix(folded, m+" ") {
			return 0, true
		}
	}

	if m := yearPattern.FindString(s); m != "" {
		y, _ := strconv.Atoi(m)
		return y, false
	}
	return 0, false
}

// firstYear returns the first positive value.
func firstYear(years ...int) int {
	for _, y := range years {
		if y > 0 {
			return y
		}
	}
	return 0
}
