package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Employee struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Pin         string             `bson:"pin" json:"pin"`
	Role        []string           `bson:"role" json:"role"`
	Employer    []string           `bson:"employer" json:"employer"`
	Location    []string           `bson:"location" json:"location"`
	Email       string             `bson:"email" json:"email"`
	Phone       string             `bson:"phone" json:"phone"`
	Address     string             `bson:"address" json:"address"`
	DateOfBirth string             `bson:"dateOfBirth" json:"dateOfBirth"`
	Gender      string             `bson:"gender" json:"gender"`
	Img         string             `bson:"img" json:"img"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// EmployeeUpdate holds a partial update; nil fields are left alone.
type EmployeeUpdate struct {
	Name        *string
	Pin         *string
	Role        []string
	Employer    []string
	Location    []string
	Email       *string
	Phone       *string
	Address     *string
	DateOfBirth *string
	Gender      *string
	Img         *string
}

// Normalize trims scalar fields and turns nil lists into empty ones so that
// documents always carry arrays, even when written by older clients.
func (e *Employee) Normalize() {
	e.Name = strings.TrimSpace(e.Name)
	e.Pin = strings.TrimSpace(e.Pin)
	e.Role = cleanList(e.Role)
	e.Employer = cleanList(e.Employer)
	e.Location = cleanList(e.Location)
	e.Email = strings.TrimSpace(e.Email)
	e.Phone = strings.TrimSpace(e.Phone)
	e.Address = strings.TrimSpace(e.Address)
	e.DateOfBirth = strings.TrimSpace(e.DateOfBirth)
	e.Gender = strings.TrimSpace(e.Gender)
	e.Img = strings.TrimSpace(e.Img)
}

func (e *Employee) Validate() error {
	errs := fieldErrors{}
	if n := len([]rune(e.Name)); n < 1 || n > 200 {
		errs.add("name", "must be between 1 and 200 characters")
	}
	if n := len(e.Pin); n < 4 || n > 20 {
		errs.add("pin", "must be between 4 and 20 characters")
	}
	return errs.err()
}

// Apply merges a partial update into the employee.
func (e *Employee) Apply(u EmployeeUpdate) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&e.Name, u.Name)
	set(&e.Pin, u.Pin)
	set(&e.Email, u.Email)
	set(&e.Phone, u.Phone)
	set(&e.Address, u.Address)
	set(&e.DateOfBirth, u.DateOfBirth)
	set(&e.Gender, u.Gender)
	set(&e.Img, u.Img)
	if u.Role != nil {
		e.Role = u.Role
	}
	if u.Employer != nil {
		e.Employer = u.Employer
	}
	if u.Location != nil {
		e.Location = u.Location
	}
}

// SharesLocation reports whether the employee works at any of the given locations.
func (e *Employee) SharesLocation(locations []string) bool {
	for _, l := range e.Location {
		if contains(locations, l) {
			return true
		}
	}
	return false
}
