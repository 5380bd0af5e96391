package models

import (
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PunchIn       = "in"
	PunchOut      = "out"
	PunchBreak    = "break"
	PunchEndBreak = "endBreak"
)

var PunchTypes = []string{PunchIn, PunchOut, PunchBreak, PunchEndBreak}

const (
	SourceClock  = "clock"
	SourceInsert = "insert"
	SourceUpdate = "update"
)

const (
	// DateLayout is how timesheet dates are stored: dd-MM-yyyy.
	DateLayout = "02-01-2006"
	TimeLayout = "15:04"
)

var (
	datePattern = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
	timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

type Timesheet struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Pin       string             `bson:"pin" json:"pin"`
	Type      string             `bson:"type" json:"type"`
	Date      string             `bson:"date" json:"date"`
	Time      string             `bson:"time" json:"time"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	Lat       string             `bson:"lat,omitempty" json:"lat,omitempty"`
	Lng       string             `bson:"lng,omitempty" json:"lng,omitempty"`
	Where     string             `bson:"where,omitempty" json:"where,omitempty"`
	Flag      bool               `bson:"flag,omitempty" json:"flag,omitempty"`
	Source    string             `bson:"source,omitempty" json:"source,omitempty"`
	DeviceID  string             `bson:"deviceId,omitempty" json:"deviceId,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (t *Timesheet) Normalize() {
	t.Pin = strings.TrimSpace(t.Pin)
	t.Type = strings.TrimSpace(t.Type)
	t.Date = strings.TrimSpace(t.Date)
	t.Time = strings.TrimSpace(t.Time)
}

func (t *Timesheet) Validate() error {
	errs := fieldErrors{}
	if t.Pin == "" {
		errs.add("pin", "is required")
	}
	if !contains(PunchTypes, t.Type) {
		errs.add("type", "must be one of in, out, break, endBreak")
	}
	if !ValidDate(t.Date) {
		errs.add("date", "must be in dd-MM-yyyy format")
	}
	if !ValidTime(t.Time) {
		errs.add("time", "must be in HH:mm format")
	}
	return errs.err()
}

// ValidDate checks the dd-MM-yyyy shape and that the day exists.
func ValidDate(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

func ValidTime(s string) bool {
	return timePattern.MatchString(s)
}
