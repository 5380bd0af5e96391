package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ShiftSourceClock  = "clock"
	ShiftSourceManual = "manual"
	ShiftSourceLeave  = "leave"
)

var ShiftSources = []string{ShiftSourceClock, ShiftSourceManual, ShiftSourceLeave}

const (
	ShiftActive    = "active"
	ShiftCompleted = "completed"
	ShiftApproved  = "approved"
	ShiftRejected  = "rejected"
)

var ShiftStatuses = []string{ShiftActive, ShiftCompleted, ShiftApproved, ShiftRejected}

type ClockEvent struct {
	Time  string `bson:"time" json:"time"`
	Image string `bson:"image,omitempty" json:"image,omitempty"`
	Lat   string `bson:"lat,omitempty" json:"lat,omitempty"`
	Lng   string `bson:"lng,omitempty" json:"lng,omitempty"`
	Flag  bool   `bson:"flag,omitempty" json:"flag,omitempty"`
}

// DailyShift is the per-day rollup of an employee's punches.
type DailyShift struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Pin               string             `bson:"pin" json:"pin"`
	Date              string             `bson:"date" json:"date"`
	ClockIn           *ClockEvent        `bson:"clockIn,omitempty" json:"clockIn,omitempty"`
	BreakIn           *ClockEvent        `bson:"breakIn,omitempty" json:"breakIn,omitempty"`
	BreakOut          *ClockEvent        `bson:"breakOut,omitempty" json:"breakOut,omitempty"`
	ClockOut          *ClockEvent        `bson:"clockOut,omitempty" json:"clockOut,omitempty"`
	TotalBreakMinutes int                `bson:"totalBreakMinutes" json:"totalBreakMinutes"`
	TotalWorkingHours float64            `bson:"totalWorkingHours" json:"totalWorkingHours"`
	Source            string             `bson:"source" json:"source"`
	Status            string             `bson:"status" json:"status"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// SetEvent stores ev in the slot matching the punch type.
func (s *DailyShift) SetEvent(punchType string, ev ClockEvent) {
	switch punchType {
	case PunchIn:
		s.ClockIn = &ev
	case PunchBreak:
		s.BreakIn = &ev
	case PunchEndBreak:
		s.BreakOut = &ev
	case PunchOut:
		s.ClockOut = &ev
	}
}

func (s *DailyShift) Validate() error {
	errs := fieldErrors{}
	if s.Pin == "" {
		errs.add("pin", "is required")
	}
	if !ValidDate(s.Date) {
		errs.add("date", "must be in dd-MM-yyyy format")
	}
	if !contains(ShiftSources, s.Source) {
		errs.add("source", "must be one of clock, manual, leave")
	}
	if !contains(ShiftStatuses, s.Status) {
		errs.add("status", "must be one of active, completed, approved, rejected")
	}
	return errs.err()
}
