package utils

import (
	"sort"
	"strings"

	"timeclock/models"
)

// Punches holds the time of each punch slot for one day; nil when missing.
type Punches struct {
	ClockIn  *string `json:"clockIn"`
	BreakIn  *string `json:"breakIn"`
	BreakOut *string `json:"breakOut"`
	ClockOut *string `json:"clockOut"`
}

// NormalizePunchType maps loosely written types ("In", " BREAK ", "endbreak")
// to the stored constants. Unknown types return "".
func NormalizePunchType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "in":
		return models.PunchIn
	case "out":
		return models.PunchOut
	case "break":
		return models.PunchBreak
	case "endbreak":
		return models.PunchEndBreak
	}
	return ""
}

// ClassifyPunches sorts rows by time and fills the four slots. When a slot
// appears more than once the latest row wins.
func ClassifyPunches(rows []models.Timesheet) Punches {
	sorted := make([]models.Timesheet, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	var p Punches
	for _, row := range sorted {
		t := row.Time
		switch NormalizePunchType(row.Type) {
		case models.PunchIn:
			p.ClockIn = &t
		case models.PunchBreak:
			p.BreakIn = &t
		case models.PunchEndBreak:
			p.BreakOut = &t
		case models.PunchOut:
			p.ClockOut = &t
		}
	}
	return p
}
