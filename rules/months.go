// rules/months.go
package rules

import (
	"fmt"
	"strings"
)

// MonthNames is 1-based; index 0 is unused.
var MonthNames = [13]string{
	"", "January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthNumber resolves a full month name (any case) to 1-12, or 0.
func MonthNumber(name string) int {
	for i := 1; i < len(MonthNames); i++ {
		if strings.EqualFold(MonthNames[i], name) {
			return i
		}
	}
	return 0
}

// MonthFromAbbrev resolves a 3-letter abbreviation such as "FEB" to 1-12, or 0.
func MonthFromAbbrev(abbrev string) int {
	if len(abbrev) != 3 {
		return 0
	}
	for i := 1; i < len(MonthNames); i++ {
		if strings.EqualFold(MonthNames[i][:3], abbrev) {
			return i
		}
	}
	return 0
}

// ReconstructDate turns a "DDMON" token into YYYY-MM-DD relative to the month the
// schedule page is for. An unknown abbreviation falls back to refMonth; a month
// earlier than refMonth belongs to the next year. The day is copied verbatim.
func ReconstructDate(token string, refYear, refMonth int) string {
	if len(token) < 5 {
		return ""
	}
	day, abbrev := token[:2], token[2:5]
	month := MonthFromAbbrev(abbrev)
	if month == 0 {
		month = refMonth
	}
	year := refYear
	if month < refMonth {
		year++
	}
	return fmt.Sprintf("%04d-%02d-%s", year, month, day)
}
