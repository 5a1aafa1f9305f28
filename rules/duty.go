// rules/duty.go
package rules

import (
	"strings"

	"github.com/gewnthar/crewsched/models"
	"github.com/gewnthar/crewsched/utils"
)

// minLegCells is the narrowest row accepted as a flight leg.
const minLegCells = 10

// DutyScanner segments the rows of a trip's flight table into duty periods.
// Feed rows in document order with Scan, then call Finish once.
type DutyScanner struct {
	legs    []models.FlightLeg
	layover *models.Layover
	lastDay string
	totals  models.Totals
	periods []models.DutyPeriod
}

// ScanDutyPeriods runs a fresh scanner over rows.
func ScanDutyPeriods(rows []Row) []models.DutyPeriod {
	var s DutyScanner
	for _, r := range rows {
		s.Scan(r)
	}
	return s.Finish()
}

// OpenLayover exposes the layover currently being built, or nil.
func (s *DutyScanner) OpenLayover() *models.Layover { return s.layover }

// OpenLegs is the number of legs in the duty period being built.
func (s *DutyScanner) OpenLegs() int { return len(s.legs) }

func (s *DutyScanner) Scan(r Row) {
	switch r.Kind {
	case RowHeader:
	case RowTotals:
		if t, ok := TotalsFromCells(r.Cells); ok {
			s.totals = t
		}
	case RowLeg:
		s.scanLeg(r.Cells)
	default:
		s.scanDetail(r)
	}
}

func (s *DutyScanner) scanLeg(c Cells) {
	if len(c) < minLegCells {
		return
	}
	leg := models.FlightLeg{
		DayOfWeek:     c.At(0),
		DayOfMonth:    c.At(1),
		IsDeadhead:    !utils.IsBlank(c.At(2)),
		Position:      c.At(3),
		FlightNumber:  c.At(4),
		DepartureTime: c.At(6),
		ArrivalTime:   c.At(7),
		BlockTime:     c.At(8),
		GroundTime:    c.At(9),
	}
	leg.Origin, leg.Destination = utils.SplitRoute(c.At(5))

	// A new day only starts a new duty period once a layover has been opened.
	if len(s.legs) > 0 && leg.DayOfMonth != s.lastDay && s.layover != nil {
		s.periods = append(s.periods, models.DutyPeriod{Legs: s.legs, Layover: s.layover})
		s.legs = nil
		s.layover = nil
	}
	s.lastDay = leg.DayOfMonth
	s.legs = append(s.legs, leg)

	if m := LayoverCell.Find(c.Last()); m != nil {
		s.layover = &models.Layover{Airport: m[0], RestTime: m[1]}
	}
}

func (s *DutyScanner) scanDetail(r Row) {
	end := DutyEnd.First(r.Text)
	if end == "" || s.layover == nil {
		return
	}
	s.layover.DutyEndTime = end
	if rept := Report.First(r.Text); rept != "" {
		s.layover.ReportTime = rept
	}
	for i := 2; i < len(r.Cells); i++ {
		text := r.Cells[i]
		switch {
		case text == "":
		case strings.HasPrefix(text, "("):
			if s.layover.HotelPhone == "" {
				s.layover.HotelPhone = text
			}
		case isLayoverLabel(text):
		case s.layover.HotelName == "":
			s.layover.HotelName = text
		}
	}
}

func isLayoverLabel(text string) bool {
	return strings.Contains(text, "D-END") || strings.Contains(text, "REPT:") || strings.Contains(text, "T.A.F.B")
}

// Finish closes the last duty period with the pending totals. The last period
// never carries a layover.
func (s *DutyScanner) Finish() []models.DutyPeriod {
	if len(s.legs) > 0 {
		s.periods = append(s.periods, models.DutyPeriod{Legs: s.legs, Totals: s.totals})
		s.legs = nil
		s.layover = nil
	}
	return s.periods
}

// TotalsFromCells reads block/deadhead/credit/duty-FDP from the cells after "Total:".
// The third cell after the label is not a total and is skipped.
func TotalsFromCells(c Cells) (models.Totals, bool) {
	i := c.Index(TotalLabel)
	if i < 0 {
		return models.Totals{}, false
	}
	return models.Totals{
		Block:    c.At(i + 1),
		Deadhead: c.At(i + 2),
		Credit:   c.At(i + 4),
		DutyFDP:  c.At(i + 5),
	}, true
}
