// rules/header.go
package rules

import (
	"strconv"
	"strings"
	"time"
)

// Heading is what the page heading yields. Every field is independent: a field
// whose pattern does not match stays empty, and Year falls back to the clock.
type Heading struct {
	Month          string
	MonthNumber    int
	Year           int
	CrewMemberName string
	EmployeeNumber string
	LastUpdated    string
}

// ParseHeading applies the heading rules to the heading text. now is only
// consulted when the last-updated text carries no 4-digit year.
func ParseHeading(text string, now time.Time) Heading {
	h := Heading{Year: now.Year()}

	if m := MonthHeading.Find(text); m != nil {
		h.Month = m[0]
		h.MonthNumber = MonthNumber(h.Month)
	}
	if m := CrewHeading.Find(text); m != nil {
		h.CrewMemberName = strings.TrimSpace(m[0])
		h.EmployeeNumber = m[1]
	}
	h.LastUpdated = strings.TrimSpace(LastUpdatedHeading.First(text))
	if y := YearToken.First(h.LastUpdated); y != "" {
		if n, err := strconv.Atoi(y); err == nil {
			h.Year = n
		}
	}
	return h
}
