package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gewnthar/crewsched/models"
)

func legRow(dow, dom, dh, route, last string) Row {
	return Row{Kind: RowLeg, Cells: Cells{dow, dom, dh, "CA", "1000", route, "0700", "0900", "0200", "0030", last}}
}

func TestReconstructDate(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		refYear  int
		refMonth int
		want     string
	}{
		{"same month", "01FEB", 2026, 2, "2026-02-01"},
		{"later month stays in year", "01MAR", 2026, 2, "2026-03-01"},
		{"earlier month rolls over", "02JAN", 2025, 12, "2026-01-02"},
		{"lower case abbreviation", "15feb", 2026, 2, "2026-02-15"},
		{"unknown abbreviation uses reference month", "09XYZ", 2026, 4, "2026-04-09"},
		{"day copied verbatim", "5 FEB", 2026, 2, "2026-02-5 "},
		{"short token", "01", 2026, 2, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReconstructDate(tt.token, tt.refYear, tt.refMonth))
		})
	}
}

func TestMonthLookups(t *testing.T) {
	assert.Equal(t, 2, MonthNumber("February"))
	assert.Equal(t, 12, MonthNumber("december"))
	assert.Equal(t, 0, MonthNumber("Smarch"))
	assert.Equal(t, 0, MonthNumber(""))
	assert.Equal(t, 9, MonthFromAbbrev("SEP"))
	assert.Equal(t, 0, MonthFromAbbrev("SEPT"))
	assert.Equal(t, "", MonthNames[0])
}

func TestParseHeading(t *testing.T) {
	fixed := time.Date(2031, time.July, 4, 0, 0, 0, 0, time.UTC)

	t.Run("full heading", func(t *testing.T) {
		h := ParseHeading("February Schedule Brian Wendt (76148)\nLast Updated 01/28/2026 14:22 EST", fixed)
		assert.Equal(t, "February", h.Month)
		assert.Equal(t, 2, h.MonthNumber)
		assert.Equal(t, "Brian Wendt", h.CrewMemberName)
		assert.Equal(t, "76148", h.EmployeeNumber)
		assert.Equal(t, "01/28/2026 14:22 EST", h.LastUpdated)
		assert.Equal(t, 2026, h.Year)
	})

	t.Run("name with comma", func(t *testing.T) {
		h := ParseHeading("March Schedule Wendt, Brian (76148) Last Updated: 2026-02-27", fixed)
		assert.Equal(t, "Wendt, Brian", h.CrewMemberName)
		assert.Equal(t, "2026-02-27", h.LastUpdated)
		assert.Equal(t, 2026, h.Year)
	})

	t.Run("year falls back to clock", func(t *testing.T) {
		h := ParseHeading("April Schedule Brian Wendt (76148) Last Updated today", fixed)
		assert.Equal(t, "today", h.LastUpdated)
		assert.Equal(t, 2031, h.Year)
	})

	t.Run("empty heading", func(t *testing.T) {
		h := ParseHeading("", fixed)
		assert.Equal(t, Heading{Year: 2031}, h)
	})

	t.Run("unknown month name", func(t *testing.T) {
		h := ParseHeading("Monthly Schedule", fixed)
		assert.Equal(t, "Monthly", h.Month)
		assert.Equal(t, 0, h.MonthNumber)
	})
}

func TestCalendarDayFromRow(t *testing.T) {
	day, ok := CalendarDayFromRow(Cells{"SU", "1", "O4031", "BOS"}, "LightSteelBlue")
	require.True(t, ok)
	assert.Equal(t, models.CalendarDay{DayOfWeek: "SU", DayOfMonth: 1, Activity: "O4031", LayoverAirport: "BOS", IsWeekend: true}, day)

	day, ok = CalendarDayFromRow(Cells{"SA", "7", "", ""}, "")
	require.True(t, ok)
	assert.False(t, day.IsWeekend, "weekend comes only from row colour")
	assert.True(t, day.IsOff())

	for _, c := range []Cells{
		{"SU", "1", "O4031"},
		{"", "1", "", ""},
		{"SU", "", "", ""},
		{"Block", "43.18", "", ""},
	} {
		_, ok := CalendarDayFromRow(c, "")
		assert.False(t, ok, "%v", c)
	}
}

func TestApplySummaryRow(t *testing.T) {
	var s models.ScheduleSummary
	for _, c := range []Cells{
		{"Block", "43.18"},
		{"Credit", "69.51"},
		{"YTD", "65.50"},
		{"Days Off", "18"},
		{"SU", "1", "O4031", "BOS"},
		{"Credit"},
	} {
		ApplySummaryRow(&s, c)
	}
	assert.Equal(t, models.ScheduleSummary{Block: 43.18, Credit: 69.51, YTD: 65.50, DaysOff: 18}, s)

	ApplySummaryRow(&s, Cells{"block", "n/a"})
	assert.Equal(t, 43.18, s.Block, "unparseable value keeps the previous one")

	ApplySummaryRow(&s, Cells{"BLOCK", "50.00"})
	assert.Equal(t, 50.0, s.Block, "last row wins")

	ApplySummaryRow(&s, Cells{"Total days off this month", "20"})
	assert.Equal(t, 20.0, s.DaysOff)
}

func TestRowBackground(t *testing.T) {
	assert.Equal(t, "lightsteelblue", RowBackground("lightsteelblue", "background-color: red"))
	assert.Equal(t, "lightsteelblue", RowBackground("", "font-weight:bold; Background-Color: LightSteelBlue"))
	assert.Equal(t, "", RowBackground("", ""))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, RowHeader, KindOf("main"))
	assert.Equal(t, RowTotals, KindOf("row bold"))
	assert.Equal(t, RowLeg, KindOf("nowrap"))
	assert.Equal(t, RowOther, KindOf("mainline"))
	assert.Equal(t, RowOther, KindOf(""))
}

func TestCellsAt(t *testing.T) {
	c := NewCells([]string{"  a ", " ", "b"})
	assert.Equal(t, "a", c.At(0))
	assert.Equal(t, "", c.At(1))
	assert.Equal(t, "", c.At(-1))
	assert.Equal(t, "", c.At(10))
	assert.Equal(t, "b", c.Last())
	assert.Equal(t, "", Cells{}.Last())
}

func TestDutyScanner_SplitsOnLayover(t *testing.T) {
	rows := []Row{
		{Kind: RowHeader, Cells: Cells{"Day", "Date"}},
		legRow("SU", "01", "", "MCO-SJU", ""),
		legRow("SU", "01", "", "SJU-BOS", "BOS 1530"),
		{Kind: RowTotals, Cells: Cells{"", "Total:", "0749", "0000", "", "0749", "0900"}},
		{Cells: Cells{"", "", "D-END: 1500L REPT: 0630L", "Hilton Boston", "(617)568-6700"}, Text: "D-END: 1500L REPT: 0630LHilton Boston(617)568-6700"},
		legRow("MO", "02", "", "BOS-MCO", ""),
		{Kind: RowTotals, Cells: Cells{"Total:", "0310", "0000", "", "0310", "0440"}},
	}

	periods := ScanDutyPeriods(rows)
	require.Len(t, periods, 2)

	first := periods[0]
	require.Len(t, first.Legs, 2)
	assert.Equal(t, "MCO", first.Legs[0].Origin)
	assert.Equal(t, "BOS", first.Legs[1].Destination)
	assert.Equal(t, models.Totals{}, first.Totals)
	require.NotNil(t, first.Layover)
	assert.Equal(t, models.Layover{
		Airport:     "BOS",
		RestTime:    "1530",
		HotelName:   "Hilton Boston",
		HotelPhone:  "(617)568-6700",
		DutyEndTime: "1500",
		ReportTime:  "0630",
	}, *first.Layover)

	last := periods[1]
	require.Len(t, last.Legs, 1)
	assert.Nil(t, last.Layover)
	assert.Equal(t, models.Totals{Block: "0310", Deadhead: "0000", Credit: "0310", DutyFDP: "0440"}, last.Totals)
}

func TestDutyScanner_DayChangeWithoutLayoverKeepsPeriod(t *testing.T) {
	// Known edge case: a leg continuing past midnight with no rest block stays in
	// the same duty period, even across a month boundary.
	periods := ScanDutyPeriods([]Row{
		legRow("SA", "28", "", "EWR-SEA", ""),
		legRow("SU", "01", "", "SEA-MCO", ""),
	})
	require.Len(t, periods, 1)
	assert.Len(t, periods[0].Legs, 2)
}

func TestDutyScanner_IgnoresShortAndUnrelatedRows(t *testing.T) {
	var s DutyScanner
	s.Scan(Row{Kind: RowLeg, Cells: Cells{"SU", "01", "", "CA"}})
	assert.Equal(t, 0, s.OpenLegs())

	s.Scan(Row{Cells: Cells{"", "", "D-END: 1500L"}, Text: "D-END: 1500L"})
	assert.Nil(t, s.OpenLayover(), "D-END without an open layover is ignored")

	s.Scan(legRow("SU", "01", "DH", "MCO-ATL", "ATL 1200"))
	require.NotNil(t, s.OpenLayover())
	s.Scan(Row{Cells: Cells{"", "", "note"}, Text: "note"})
	assert.Equal(t, "", s.OpenLayover().DutyEndTime)

	periods := s.Finish()
	require.Len(t, periods, 1)
	assert.True(t, periods[0].Legs[0].IsDeadhead)
	assert.Nil(t, periods[0].Layover, "the last duty period never carries a layover")
	assert.Empty(t, ScanDutyPeriods(nil))
}

func TestDutyScanner_HotelSkipsLabels(t *testing.T) {
	var s DutyScanner
	s.Scan(legRow("SU", "01", "", "MCO-ATL", "ATL 1200"))
	s.Scan(Row{
		Cells: Cells{"Hotel", "x", "D-END: 1500L", "T.A.F.B.: 2909", "", "Marriott", "(404)555-0100", "Other"},
		Text:  "D-END: 1500L",
	})
	l := s.OpenLayover()
	require.NotNil(t, l)
	assert.Equal(t, "Marriott", l.HotelName)
	assert.Equal(t, "(404)555-0100", l.HotelPhone)
	assert.Equal(t, "", l.ReportTime)
}

func TestTotalsFromCells(t *testing.T) {
	got, ok := TotalsFromCells(Cells{"Total:", "1059", "0000", "skip", "1059", "1340"})
	require.True(t, ok)
	assert.Equal(t, models.Totals{Block: "1059", Deadhead: "0000", Credit: "1059", DutyFDP: "1340"}, got)

	got, ok = TotalsFromCells(Cells{"Total:", "1059"})
	require.True(t, ok)
	assert.Equal(t, models.Totals{Block: "1059"}, got)

	_, ok = TotalsFromCells(Cells{"Totals", "1059"})
	assert.False(t, ok)
}

func TestCrewFromRows(t *testing.T) {
	crew := CrewFromRows([]Cells{
		{"Crew:"},
		{"CA", "076148", "WENDT, BRIAN", "FO", "081234", "ALVAREZ, MARIA"},
		{"FA", "1", "x", "FO", "099999"},
	})
	require.Len(t, crew, 3)
	assert.Equal(t, models.CrewMember{Position: "CA", EmployeeNumber: "076148", Name: "WENDT, BRIAN"}, crew[0])
	assert.Equal(t, "FO", crew[1].Position)
	assert.Equal(t, "ALVAREZ, MARIA", crew[1].Name)
	assert.Equal(t, models.CrewMember{Position: "FO", EmployeeNumber: "099999"}, crew[2])
}

func TestBuildTrip(t *testing.T) {
	parts := TripParts{
		HeaderRow: Cells{"O4031 : 01FEB", "SU", "BSE REPT: 0600L", "Operates: FEB 01 ONLY"},
		DetailRow: Cells{"Base/Equip: MCO/320", "1 CA 1 FO", "Except On FEB 08"},
		FlightRows: []Row{
			legRow("SU", "01", "", "MCO-SJU", ""),
		},
		Emphasized: []string{"Crew:", "T.A.F.B.: 2909", "TRIP RIG: 1454", "T.A.F.B.: 9999"},
		TotalsRow:  Cells{"Total:", "1059", "0000", "", "1059", "1340"},
		CrewRows:   []Cells{{"CA", "076148", "WENDT, BRIAN"}},
	}

	trip, ok := BuildTrip(parts, 2026, 2)
	require.True(t, ok)
	assert.Equal(t, "O4031", trip.TripNumber)
	assert.Equal(t, "01FEB", trip.DateStr)
	assert.Equal(t, "2026-02-01", trip.Date)
	assert.Equal(t, "SU", trip.Frequency)
	assert.Equal(t, "0600", trip.BaseReportTime)
	assert.Equal(t, "FEB 01 ONLY", trip.OperatingDates)
	assert.Equal(t, "MCO", trip.Base)
	assert.Equal(t, "320", trip.Equipment)
	assert.Equal(t, "1 CA 1 FO", trip.CrewComposition)
	assert.Equal(t, "FEB 08", trip.Exceptions)
	assert.Equal(t, "2909", trip.TAFB)
	assert.Equal(t, "1454", trip.TripRig)
	assert.Equal(t, "1340", trip.Totals.DutyFDP)
	assert.Len(t, trip.Crew, 1)
	assert.Len(t, trip.Legs(), 1)

	t.Run("missing optional cells", func(t *testing.T) {
		trip, ok := BuildTrip(TripParts{
			HeaderRow:  Cells{"O1 : 31DEC"},
			FlightRows: []Row{legRow("TH", "31", "", "MCO-JFK", "")},
		}, 2026, 1)
		require.True(t, ok)
		assert.Equal(t, "2026-12-31", trip.Date)
		assert.Equal(t, "", trip.Frequency)
		assert.Equal(t, "", trip.Base)
		assert.NotNil(t, trip.Crew)
		assert.Empty(t, trip.Crew)
	})

	t.Run("no header", func(t *testing.T) {
		parts := parts
		parts.HeaderRow = Cells{"Trip 4031"}
		_, ok := BuildTrip(parts, 2026, 2)
		assert.False(t, ok)
	})

	t.Run("no duty periods", func(t *testing.T) {
		parts := parts
		parts.FlightRows = nil
		_, ok := BuildTrip(parts, 2026, 2)
		assert.False(t, ok)
	})
}

func TestStripExceptPrefix(t *testing.T) {
	assert.Equal(t, "FEB 08", StripExceptPrefix("EXCEPT ON FEB 08"))
	assert.Equal(t, "MAR 06", StripExceptPrefix("except on MAR 06"))
	assert.Equal(t, "FEB 08 EXCEPT ON", StripExceptPrefix("FEB 08 EXCEPT ON"))
	assert.Equal(t, "", StripExceptPrefix(""))
	assert.Equal(t, "EXCEPT ONLY FEB 08", StripExceptPrefix("EXCEPT ONLY FEB 08"))
	assert.Equal(t, "EXCEPT ON", StripExceptPrefix("EXCEPT ON"))
	assert.Equal(t, "FEB 08", StripExceptPrefix("EXCEPT ON\tFEB 08"))
}

func TestMarkers(t *testing.T) {
	assert.True(t, IsTripMarker("O4031 : 01FEB", "#0000ff"))
	assert.False(t, IsTripMarker("O4031 : 01FEB", "#000000"))
	assert.False(t, IsTripMarker("O4031 : 01FEB extra", "#0000ff"))

	typ, date, ok := ParseActivityMarker("SIC : 06FEB")
	require.True(t, ok)
	assert.Equal(t, "SIC", typ)
	assert.Equal(t, "06FEB", date)

	_, _, ok = ParseActivityMarker("O4031 : 01FEB")
	assert.False(t, ok)
	_, _, ok = ParseActivityMarker("VACATION : 06FEB")
	assert.False(t, ok)
}

func TestBuildActivity(t *testing.T) {
	a := BuildActivity("SIC", "06FEB", []Cells{
		{"SIC : 06FEB"},
		{"SIC", "06FEB", "05:15", "07FEB", "11:02", "1039"},
		{"SIC", "99XXX"},
	})
	assert.Equal(t, models.Activity{
		Type: "SIC", DateStr: "06FEB",
		StartDate: "06FEB", StartTime: "05:15", EndDate: "07FEB", EndTime: "11:02", Credit: "1039",
	}, *a)

	a = BuildActivity("RSV", "20FEB", nil)
	assert.Equal(t, models.Activity{Type: "RSV", DateStr: "20FEB"}, *a)
}

func TestGrammarNamesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, r := range Grammar {
		assert.False(t, seen[r.Name], r.Name)
		seen[r.Name] = true
		assert.NotEmpty(t, r.Context, r.Name)
	}
}
