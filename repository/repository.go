package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"timeclock/models"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

type UserRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountAdmins(ctx context.Context) (int64, error)
}

type EmployeeFilter struct {
	// Locations restricts results to employees sharing at least one location.
	Locations []string
}

type EmployeeRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Employee, error)
	FindByPin(ctx context.Context, pin string) (*models.Employee, error)
	List(ctx context.Context, filter EmployeeFilter) ([]models.Employee, error)
	ListPins(ctx context.Context) ([]string, error)
	Create(ctx context.Context, e *models.Employee) error
	Update(ctx context.Context, id primitive.ObjectID, upd models.EmployeeUpdate) (*models.Employee, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type TimesheetFilter struct {
	Pin  string
	Date string // dd-MM-yyyy, exact
	From string // YYYY-MM-DD inclusive
	To   string // YYYY-MM-DD inclusive
}

type TimesheetRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Timesheet, error)
	// ListForDay returns the rows for one pin and day, sorted by time ascending.
	ListForDay(ctx context.Context, pin, date string) ([]models.Timesheet, error)
	List(ctx context.Context, filter TimesheetFilter) ([]models.Timesheet, error)
	Create(ctx context.Context, t *models.Timesheet) error
	Replace(ctx context.Context, t *models.Timesheet) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// DeleteBefore removes rows whose dd-MM-yyyy date, read as YYYY-MM-DD,
	// sorts before beforeISO.
	DeleteBefore(ctx context.Context, beforeISO string) (int64, error)
}

type ShiftFilter struct {
	Pin  string
	Date string
}

type ShiftRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.DailyShift, error)
	FindByPinDate(ctx context.Context, pin, date string) (*models.DailyShift, error)
	List(ctx context.Context, filter ShiftFilter) ([]models.DailyShift, error)
	// Upsert writes the shift keyed on (pin, date).
	Upsert(ctx context.Context, s *models.DailyShift) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.DailyShift, error)
	DeleteBefore(ctx context.Context, beforeISO string) (int64, error)
}

type CategoryRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	List(ctx context.Context, typ string) ([]models.Category, error)
	ListLocations(ctx context.Context, names []string) ([]models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, id primitive.ObjectID, upd models.CategoryUpdate) (*models.Category, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type DeviceRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Device, error)
	FindByDeviceID(ctx context.Context, deviceID string) (*models.Device, error)
	List(ctx context.Context) ([]models.Device, error)
	Create(ctx context.Context, d *models.Device) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status string, by primitive.ObjectID) (*models.Device, error)
	Touch(ctx context.Context, deviceID string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Store bundles every repository the handlers use.
type Store struct {
	Users      UserRepository
	Employees  EmployeeRepository
	Timesheets TimesheetRepository
	Shifts     ShiftRepository
	Categories CategoryRepository
	Devices    DeviceRepository
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	}
	return err
}
