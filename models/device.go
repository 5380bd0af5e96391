package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DeviceActive   = "active"
	DeviceDisabled = "disabled"
	DeviceRevoked  = "revoked"
)

var DeviceStatuses = []string{DeviceActive, DeviceDisabled, DeviceRevoked}

type Device struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	DeviceID     string              `bson:"deviceId" json:"deviceId"`
	LocationName string              `bson:"locationName" json:"locationName"`
	Status       string              `bson:"status" json:"status"`
	RegisteredBy primitive.ObjectID  `bson:"registeredBy,omitempty" json:"registeredBy,omitempty"`
	RevokedBy    *primitive.ObjectID `bson:"revokedBy,omitempty" json:"revokedBy,omitempty"`
	RegisteredAt time.Time           `bson:"registeredAt" json:"registeredAt"`
	RevokedAt    *time.Time          `bson:"revokedAt,omitempty" json:"revokedAt,omitempty"`
	LastSeenAt   *time.Time          `bson:"lastSeenAt,omitempty" json:"lastSeenAt,omitempty"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}

func (d *Device) Normalize() {
	d.DeviceID = strings.TrimSpace(d.DeviceID)
	d.LocationName = strings.TrimSpace(d.LocationName)
	if d.Status == "" {
		d.Status = DeviceActive
	}
}

func (d *Device) Validate() error {
	errs := fieldErrors{}
	if d.DeviceID == "" {
		errs.add("deviceId", "is required")
	}
	if !contains(DeviceStatuses, d.Status) {
		errs.add("status", "must be one of active, disabled, revoked")
	}
	return errs.err()
}

func ValidDeviceStatus(s string) bool {
	return contains(DeviceStatuses, s)
}
