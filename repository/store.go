package repository

import "timeclock/config"

// NewMongoStore wires every repository to the same database handle.
func NewMongoStore(db *config.Database) *Store {
	return &Store{
		Users:      NewMongoUsers(db),
		Employees:  NewMongoEmployees(db),
		Timesheets: NewMongoTimesheets(db),
		Shifts:     NewMongoShifts(db),
		Categories: NewMongoCategories(db),
		Devices:    NewMongoDevices(db),
	}
}
