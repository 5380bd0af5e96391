package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CategoryRole     = "role"
	CategoryEmployer = "employer"
	CategoryLocation = "location"
)

var CategoryTypes = []string{CategoryRole, CategoryEmployer, CategoryLocation}

const (
	GeofenceHard = "hard"
	GeofenceSoft = "soft"
)

type Category struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Type         string             `bson:"type" json:"type"`
	Lat          *float64           `bson:"lat,omitempty" json:"lat,omitempty"`
	Lng          *float64           `bson:"lng,omitempty" json:"lng,omitempty"`
	Radius       *float64           `bson:"radius,omitempty" json:"radius,omitempty"`
	GeofenceMode string             `bson:"geofenceMode,omitempty" json:"geofenceMode,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type CategoryUpdate struct {
	Name         *string
	Type         *string
	Lat          *float64
	Lng          *float64
	Radius       *float64
	GeofenceMode *string
}

func (c *Category) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Type = strings.TrimSpace(c.Type)
	c.GeofenceMode = strings.TrimSpace(c.GeofenceMode)
	if c.HasGeofence() && c.GeofenceMode == "" {
		c.GeofenceMode = GeofenceSoft
	}
}

func (c *Category) Validate() error {
	errs := fieldErrors{}
	if n := len([]rune(c.Name)); n < 1 || n > 200 {
		errs.add("name", "must be between 1 and 200 characters")
	}
	if !contains(CategoryTypes, c.Type) {
		errs.add("type", "must be one of role, employer, location")
	}
	if c.GeofenceMode != "" && c.GeofenceMode != GeofenceHard && c.GeofenceMode != GeofenceSoft {
		errs.add("geofenceMode", "must be hard or soft")
	}
	if c.Lat != nil && (*c.Lat < -90 || *c.Lat > 90) {
		errs.add("lat", "must be between -90 and 90")
	}
	if c.Lng != nil && (*c.Lng < -180 || *c.Lng > 180) {
		errs.add("lng", "must be between -180 and 180")
	}
	if c.Radius != nil && *c.Radius <= 0 {
		errs.add("radius", "must be greater than 0")
	}
	if (c.Lat != nil || c.Lng != nil || c.Radius != nil) && c.Type != CategoryLocation {
		errs.add("type", "only location categories carry a geofence")
	}
	return errs.err()
}

// HasGeofence is true when lat, lng and radius are all set.
func (c *Category) HasGeofence() bool {
	return c.Lat != nil && c.Lng != nil && c.Radius != nil
}

func (c *Category) Apply(u CategoryUpdate) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Type != nil {
		c.Type = *u.Type
	}
	if u.Lat != nil {
		c.Lat = u.Lat
	}
	if u.Lng != nil {
		c.Lng = u.Lng
	}
	if u.Radius != nil {
		c.Radius = u.Radius
	}
	if u.GeofenceMode != nil {
		c.GeofenceMode = *u.GeofenceMode
	}
}
