package utils

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"timeclock/models"
)

func TruncateToTwoDecimals(value float64) float64 {
	factor := 100.0
	value, _ = strconv.ParseFloat(fmt.Sprintf("%.2f", value), 64)
	return math.Floor(value*factor) / factor
}

// minutesBetween returns the minutes from a to b (HH:mm), wrapping past midnight.
func minutesBetween(a, b string) (int, bool) {
	ta, err := time.Parse(models.TimeLayout, a)
	if err != nil {
		return 0, false
	}
	tb, err := time.Parse(models.TimeLayout, b)
	if err != nil {
		return 0, false
	}
	d := int(tb.Sub(ta).Minutes())
	if d < 0 {
		d += 24 * 60
	}
	return d, true
}

// ComputeShiftTotals fills break minutes, working hours and the active/completed
// status from the shift's events. Approved and rejected shifts keep their status.
func ComputeShiftTotals(s *models.DailyShift) {
	s.TotalBreakMinutes = 0
	if s.BreakIn != nil && s.BreakOut != nil {
		if m, ok := minutesBetween(s.BreakIn.Time, s.BreakOut.Time); ok {
			s.TotalBreakMinutes = m
		}
	}

	s.TotalWorkingHours = 0
	if s.ClockIn != nil && s.ClockOut != nil {
		if m, ok := minutesBetween(s.ClockIn.Time, s.ClockOut.Time); ok {
			worked := m - s.TotalBreakMinutes
			if worked < 0 {
				worked = 0
			}
			s.TotalWorkingHours = TruncateToTwoDecimals(float64(worked) / 60)
		}
	}

	if s.Status == models.ShiftApproved || s.Status == models.ShiftRejected {
		return
	}
	if s.ClockIn != nil && s.ClockOut != nil {
		s.Status = models.ShiftCompleted
	} else {
		s.Status = models.ShiftActive
	}
}
