// rules/grammar.go

// Package rules holds the schedule page grammar: every text pattern the extractors
// apply, the month table, and the DOM-independent parts of trip, duty period,
// activity, calendar and summary extraction. Both the goquery extractor and the
// sandboxed extractor reduce the document to cells and rows and hand them here,
// so the two produce the same record.
package rules

import "regexp"

// Rule is one named extraction pattern applied to a known context.
type Rule struct {
	Name     string
	Context  string
	Captures []string
	re       *regexp.Regexp
}

func newRule(name, context, pattern string, captures ...string) *Rule {
	return &Rule{Name: name, Context: context, Captures: captures, re: regexp.MustCompile(pattern)}
}

// Find returns the capture groups of the first match, or nil.
func (r *Rule) Find(s string) []string {
	m := r.re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	return m[1:]
}

// First returns the first capture of the first match, or "".
func (r *Rule) First(s string) string {
	if m := r.Find(s); len(m) > 0 {
		return m[0]
	}
	return ""
}

func (r *Rule) Matches(s string) bool { return r.re.MatchString(s) }

func (r *Rule) String() string { return r.Name + " " + r.re.String() }

var (
	MonthHeading       = newRule("month-heading", "heading", `(\w+)\s+Schedule`, "month")
	CrewHeading        = newRule("crew-heading", "heading", `Schedule\s+([A-Za-z,.'\-\s]+?)\s*\((\d+)\)`, "name", "employeeNumber")
	LastUpdatedHeading = newRule("last-updated", "heading", `Last Updated:?[ \t]*([^\r\n]*)`, "lastUpdated")
	YearToken          = newRule("year", "last-updated", `(\d{4})`, "year")

	TripMarker     = newRule("trip-marker", "blue cell", `^(O\d+)\s*:\s*(\d{2}[A-Za-z]{3})$`, "tripNumber", "dateStr")
	ActivityMarker = newRule("activity-marker", "styled span", `^([A-Z]{2,4})\s*:\s*(\d{2}[A-Za-z]{3})$`, "type", "dateStr")

	TripHeader  = newRule("trip-header", "trip row 1 cell 0", `(O\d+)\s*:\s*(\S+)`, "tripNumber", "dateStr")
	BaseReport  = newRule("base-report", "trip row 1 cell 2", `BSE REPT:\s*(\d{4})L?`, "baseReportTime")
	Operates    = newRule("operates", "trip row 1 cell 3", `Operates:\s*(.*\S)`, "operatingDates")
	BaseEquip   = newRule("base-equip", "trip row 2 cell 0", `Base/Equip:\s*(\w+)/(\w+)`, "base", "equipment")
	ExceptOn    = newRule("except-on", "trip row 2 cell 2", `(?i)^EXCEPT ON\s+`)
	TAFB        = newRule("tafb", "emphasized text", `T\.A\.F\.B\.:\s*(\d+)`, "tafb")
	TripRig     = newRule("trip-rig", "emphasized text", `TRIP RIG:\s*(\d+)`, "tripRig")
	LayoverCell = newRule("layover-cell", "leg row last cell", `^([A-Z]{3})\s+(\d{4})$`, "airport", "restTime")
	DutyEnd     = newRule("duty-end", "layover detail row", `D-END:\s*(\d{4})L?`, "dutyEndTime")
	Report      = newRule("report", "layover detail row", `REPT:\s*(\d{4})L?`, "reportTime")
)

// Grammar lists every rule, in the order they are documented.
var Grammar = []*Rule{
	MonthHeading, CrewHeading, LastUpdatedHeading, YearToken,
	TripMarker, ActivityMarker,
	TripHeader, BaseReport, Operates, BaseEquip, ExceptOn,
	TAFB, TripRig, LayoverCell, DutyEnd, Report,
}

// Page structure markers.
const (
	CalendarTableName = "CalendarTable"
	CalendarTableID   = "calendarTable"
	ContentPanelName  = "ScheduleDetail"
	ContentPanelID    = "scheduleDetail"
	SeparatorName     = "separator"

	RowClassHeader = "main"
	RowClassTotals = "bold"
	RowClassLeg    = "nowrap"

	WeekendColor    = "lightsteelblue"
	TripMarkerColor = "#0000ff"

	TotalLabel = "Total:"
	CrewLabel  = "Crew:"
)

// HeadingTags are the elements treated as the page heading, first in document order wins.
var HeadingTags = []string{"h1", "h2", "h3", "h4", "h5", "h6"}

// EmphasisTags are the inline elements scanned for T.A.F.B., TRIP RIG and Crew: labels.
var EmphasisTags = []string{"b", "strong"}
