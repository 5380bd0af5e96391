package repository

import (
	"fmt"
	"time"

	"timeclock/models"
	"timeclock/utils"
)

// The Prepare* functions are the write path every store implementation calls
// before a document is persisted: normalize, hash secrets, then validate.

func PrepareUser(u *models.User) error {
	u.Normalize()
	if u.Password != "" {
		hashed, err := utils.HashPassword(u.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		u.Password = hashed
	}
	if err := u.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// ApplyUserUpdate merges upd into u, hashing a new password if one is given.
func ApplyUserUpdate(u *models.User, upd models.UserUpdate) error {
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.Location != nil {
		u.Location = upd.Location
	}
	if upd.Rights != nil {
		u.Rights = upd.Rights
	}
	if upd.Password != nil {
		hashed, err := utils.HashPassword(*upd.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		u.Password = hashed
	}
	u.Normalize()
	if err := u.Validate(); err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func PrepareEmployee(e *models.Employee) error {
	e.Normalize()
	if err := e.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	return nil
}

func PrepareTimesheet(t *models.Timesheet) error {
	t.Normalize()
	if err := t.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	return nil
}

func PrepareShift(s *models.DailyShift) error {
	if s.Source == "" {
		s.Source = models.ShiftSourceClock
	}
	utils.ComputeShiftTotals(s)
	if err := s.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	return nil
}

func PrepareCategory(c *models.Category) error {
	c.Normalize()
	if err := c.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	return nil
}

func PrepareDevice(d *models.Device) error {
	d.Normalize()
	if err := d.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	if d.RegisteredAt.IsZero() {
		d.RegisteredAt = now
	}
	d.UpdatedAt = now
	return nil
}
