// rules/trip.go
package rules

import (
	"strings"

	"github.com/gewnthar/crewsched/models"
)

// TripParts is a trip block reduced to text. Extractors fill it from the DOM.
type TripParts struct {
	HeaderRow  Cells    // first content row: number/date, frequency, BSE REPT, Operates
	DetailRow  Cells    // second content row: Base/Equip, crew composition, exceptions
	FlightRows []Row    // rows of the nested table holding the "main" header row
	Emphasized []string // text of every emphasized element in the block
	TotalsRow  Cells    // last "bold" row of the block
	CrewRows   []Cells  // rows of the nested table labelled "Crew:"
}

// BuildTrip assembles a trip from its parts. It returns false when the header
// does not carry a trip number, or when no duty period could be recovered.
func BuildTrip(p TripParts, refYear, refMonth int) (*models.Trip, bool) {
	head := TripHeader.Find(p.HeaderRow.At(0))
	if head == nil {
		return nil, false
	}
	t := &models.Trip{
		TripNumber:     head[0],
		DateStr:        head[1],
		Frequency:      p.HeaderRow.At(1),
		BaseReportTime: BaseReport.First(p.HeaderRow.At(2)),
		OperatingDates: Operates.First(p.HeaderRow.At(3)),
		Crew:           []models.CrewMember{},
	}

	if m := BaseEquip.Find(p.DetailRow.At(0)); m != nil {
		t.Base, t.Equipment = m[0], m[1]
	}
	t.CrewComposition = p.DetailRow.At(1)
	t.Exceptions = StripExceptPrefix(p.DetailRow.At(2))

	t.DutyPeriods = ScanDutyPeriods(p.FlightRows)
	if len(t.DutyPeriods) == 0 {
		return nil, false
	}

	t.TAFB, t.TripRig = TripTimes(p.Emphasized)
	if totals, ok := TotalsFromCells(p.TotalsRow); ok {
		t.Totals = totals
	}
	t.Crew = append(t.Crew, CrewFromRows(p.CrewRows)...)
	t.Date = ReconstructDate(t.DateStr, refYear, refMonth)
	return t, true
}

// StripExceptPrefix removes a leading "EXCEPT ON " in any case.
func StripExceptPrefix(s string) string {
	if loc := ExceptOn.re.FindStringIndex(s); loc != nil {
		return strings.TrimSpace(s[loc[1]:])
	}
	return s
}

// TripTimes returns the first T.A.F.B. and the first TRIP RIG value found.
func TripTimes(emphasized []string) (tafb, rig string) {
	for _, text := range emphasized {
		if tafb == "" {
			tafb = TAFB.First(text)
		}
		if rig == "" {
			rig = TripRig.First(text)
		}
	}
	return tafb, rig
}

// CrewFromRows emits a crew member for every "CA"/"FO" cell followed by an
// employee number and a name. A row may hold several such blocks side by side.
func CrewFromRows(rows []Cells) []models.CrewMember {
	var crew []models.CrewMember
	for _, c := range rows {
		for i := 0; i < len(c); i++ {
			if c[i] != "CA" && c[i] != "FO" {
				continue
			}
			crew = append(crew, models.CrewMember{
				Position:       c[i],
				EmployeeNumber: c.At(i + 1),
				Name:           c.At(i + 2),
			})
			i += 2
		}
	}
	return crew
}

// IsTripMarker reports whether a cell opens a trip block: blue text reading "O1234 : 01FEB".
func IsTripMarker(text, colorValue string) bool {
	return colorValue == TripMarkerColor && TripMarker.Matches(text)
}
