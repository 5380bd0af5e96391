package utils

import (
	"errors"
	"regexp"
	"time"

	"timeclock/models"
)

const ISODateLayout = "2006-01-02"

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var ErrInvalidISODate = errors.New("date must be in YYYY-MM-DD format")

// ParseISODate validates a YYYY-MM-DD string and returns it with the parsed time.
func ParseISODate(s string) (time.Time, error) {
	if !isoDatePattern.MatchString(s) {
		return time.Time{}, ErrInvalidISODate
	}
	t, err := time.Parse(ISODateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidISODate
	}
	return t, nil
}

// TimesheetDateToISO rewrites dd-MM-yyyy as yyyy-MM-dd. Malformed input yields "".
func TimesheetDateToISO(date string) string {
	if len(date) != 10 || date[2] != '-' || date[5] != '-' {
		return ""
	}
	return date[6:10] + "-" + date[3:5] + "-" + date[0:2]
}

// ISOToTimesheetDate is the inverse of TimesheetDateToISO.
func ISOToTimesheetDate(iso string) string {
	if len(iso) != 10 || iso[4] != '-' || iso[7] != '-' {
		return ""
	}
	return iso[8:10] + "-" + iso[5:7] + "-" + iso[0:4]
}

// TimesheetDateBefore compares a stored dd-MM-yyyy date with a YYYY-MM-DD
// cutoff as ISO strings. Malformed stored dates are never "before".
func TimesheetDateBefore(date, beforeISO string) bool {
	iso := TimesheetDateToISO(date)
	return iso != "" && iso < beforeISO
}

// TimesheetDateInRange reports whether date lies in [fromISO, toISO]; empty bounds are open.
func TimesheetDateInRange(date, fromISO, toISO string) bool {
	iso := TimesheetDateToISO(date)
	if iso == "" {
		return false
	}
	if fromISO != "" && iso < fromISO {
		return false
	}
	if toISO != "" && iso > toISO {
		return false
	}
	return true
}

// Now returns the current date and clock time in timesheet formats.
func Now(loc *time.Location) (date string, clock string) {
	t := time.Now().In(loc)
	return t.Format(models.DateLayout), t.Format(models.TimeLayout)
}
