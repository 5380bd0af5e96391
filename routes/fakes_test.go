package routes

import (
	"context"
	"mime/multipart"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"timeclock/models"
	"timeclock/repository"
	"timeclock/utils"
)

// In-memory repositories. They run the same Prepare* write path as the
// Mongo implementations so that normalization and hashing behave alike.

type memUsers struct {
	mu    sync.Mutex
	users []models.User
}

func (m *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) List(context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.User{}, m.users...), nil
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	if err := repository.PrepareUser(u); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	m.users = append(m.users, *u)
	return nil
}

func (m *memUsers) Update(_ context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].ID == id {
			u := m.users[i]
			if err := repository.ApplyUserUpdate(&u, upd); err != nil {
				return nil, err
			}
			m.users[i] = u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].ID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memUsers) CountAdmins(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.users {
		if u.IsAdmin() {
			n++
		}
	}
	return n, nil
}

type memEmployees struct {
	mu        sync.Mutex
	employees []models.Employee
}

func (m *memEmployees) FindByID(_ context.Context, id primitive.ObjectID) (*models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.employees {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memEmployees) FindByPin(_ context.Context, pin string) (*models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.employees {
		if e.Pin == pin {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memEmployees) List(_ context.Context, f repository.EmployeeFilter) ([]models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Employee{}
	for _, e := range m.employees {
		if len(f.Locations) > 0 && !e.SharesLocation(f.Locations) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *memEmployees) ListPins(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pins := []string{}
	for _, e := range m.employees {
		pins = append(pins, e.Pin)
	}
	return pins, nil
}

func (m *memEmployees) Create(_ context.Context, e *models.Employee) error {
	if err := repository.PrepareEmployee(e); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = primitive.NewObjectID()
	m.employees = append(m.employees, *e)
	return nil
}

func (m *memEmployees) Update(_ context.Context, id primitive.ObjectID, upd models.EmployeeUpdate) (*models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.employees {
		if m.employees[i].ID == id {
			e := m.employees[i]
			e.Apply(upd)
			if err := repository.PrepareEmployee(&e); err != nil {
				return nil, err
			}
			m.employees[i] = e
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memEmployees) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.employees {
		if m.employees[i].ID == id {
			m.employees = append(m.employees[:i], m.employees[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type memTimesheets struct {
	mu   sync.Mutex
	rows []models.Timesheet
}

func (m *memTimesheets) FindByID(_ context.Context, id primitive.ObjectID) (*models.Timesheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.rows {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memTimesheets) ListForDay(_ context.Context, pin, date string) ([]models.Timesheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Timesheet{}
	for _, t := range m.rows {
		if t.Pin == pin && t.Date == date {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

func (m *memTimesheets) List(_ context.Context, f repository.TimesheetFilter) ([]models.Timesheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Timesheet{}
	for _, t := range m.rows {
		if f.Pin != "" && t.Pin != f.Pin {
			continue
		}
		if f.Date != "" && t.Date != f.Date {
			continue
		}
		if (f.From != "" || f.To != "") && !utils.TimesheetDateInRange(t.Date, f.From, f.To) {
			continue
		}
		out = append(out, t)
	}
	repository.SortTimesheets(out)
	return out, nil
}

func (m *memTimesheets) Create(_ context.Context, t *models.Timesheet) error {
	if err := repository.PrepareTimesheet(t); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = primitive.NewObjectID()
	m.rows = append(m.rows, *t)
	return nil
}

func (m *memTimesheets) Replace(_ context.Context, t *models.Timesheet) error {
	if err := repository.PrepareTimesheet(t); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == t.ID {
			m.rows[i] = *t
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memTimesheets) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memTimesheets) DeleteBefore(_ context.Context, beforeISO string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[:0]
	var n int64
	for _, t := range m.rows {
		if utils.TimesheetDateBefore(t.Date, beforeISO) {
			n++
			continue
		}
		kept = append(kept, t)
	}
	m.rows = kept
	return n, nil
}

type memShifts struct {
	mu     sync.Mutex
	shifts []models.DailyShift
}

func (m *memShifts) FindByID(_ context.Context, id primitive.ObjectID) (*models.DailyShift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.shifts {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memShifts) FindByPinDate(_ context.Context, pin, date string) (*models.DailyShift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.shifts {
		if s.Pin == pin && s.Date == date {
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memShifts) List(_ context.Context, f repository.ShiftFilter) ([]models.DailyShift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.DailyShift{}
	for _, s := range m.shifts {
		if (f.Pin == "" || s.Pin == f.Pin) && (f.Date == "" || s.Date == f.Date) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memShifts) Upsert(_ context.Context, s *models.DailyShift) error {
	if err := repository.PrepareShift(s); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.shifts {
		if m.shifts[i].Pin == s.Pin && m.shifts[i].Date == s.Date {
			s.ID = m.shifts[i].ID
			m.shifts[i] = *s
			return nil
		}
	}
	s.ID = primitive.NewObjectID()
	m.shifts = append(m.shifts, *s)
	return nil
}

func (m *memShifts) SetStatus(_ context.Context, id primitive.ObjectID, status string) (*models.DailyShift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.shifts {
		if m.shifts[i].ID == id {
			m.shifts[i].Status = status
			s := m.shifts[i]
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memShifts) DeleteBefore(_ context.Context, beforeISO string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.shifts[:0]
	var n int64
	for _, s := range m.shifts {
		if utils.TimesheetDateBefore(s.Date, beforeISO) {
			n++
			continue
		}
		kept = append(kept, s)
	}
	m.shifts = kept
	return n, nil
}

type memCategories struct {
	mu         sync.Mutex
	categories []models.Category
}

func (m *memCategories) FindByID(_ context.Context, id primitive.ObjectID) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memCategories) List(_ context.Context, typ string) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Category{}
	for _, c := range m.categories {
		if typ == "" || c.Type == typ {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCategories) ListLocations(_ context.Context, names []string) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Category{}
	for _, c := range m.categories {
		if c.Type != models.CategoryLocation {
			continue
		}
		for _, n := range names {
			if c.Name == n {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func (m *memCategories) Create(_ context.Context, c *models.Category) error {
	if err := repository.PrepareCategory(c); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.categories {
		if existing.Type == c.Type && existing.Name == c.Name {
			return repository.ErrDuplicate
		}
	}
	c.ID = primitive.NewObjectID()
	m.categories = append(m.categories, *c)
	return nil
}

func (m *memCategories) Update(_ context.Context, id primitive.ObjectID, upd models.CategoryUpdate) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.categories {
		if m.categories[i].ID == id {
			c := m.categories[i]
			c.Apply(upd)
			if err := repository.PrepareCategory(&c); err != nil {
				return nil, err
			}
			m.categories[i] = c
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memCategories) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.categories {
		if m.categories[i].ID == id {
			m.categories = append(m.categories[:i], m.categories[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type memDevices struct {
	mu      sync.Mutex
	devices []models.Device
}

func (m *memDevices) FindByID(_ context.Context, id primitive.ObjectID) (*models.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.devices {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memDevices) FindByDeviceID(_ context.Context, deviceID string) (*models.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.devices {
		if d.DeviceID == deviceID {
			return &d, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memDevices) List(context.Context) ([]models.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Device{}, m.devices...), nil
}

func (m *memDevices) Create(_ context.Context, d *models.Device) error {
	if err := repository.PrepareDevice(d); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.devices {
		if existing.DeviceID == d.DeviceID {
			return repository.ErrDuplicate
		}
	}
	d.ID = primitive.NewObjectID()
	m.devices = append(m.devices, *d)
	return nil
}

func (m *memDevices) SetStatus(_ context.Context, id primitive.ObjectID, status string, by primitive.ObjectID) (*models.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.devices {
		if m.devices[i].ID != id {
			continue
		}
		d := &m.devices[i]
		d.Status = status
		if status == models.DeviceRevoked {
			now := time.Now().UTC()
			d.RevokedBy = &by
			d.RevokedAt = &now
		} else if status == models.DeviceActive {
			d.RevokedBy, d.RevokedAt = nil, nil
		}
		out := *d
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memDevices) Touch(_ context.Context, deviceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.devices {
		if m.devices[i].DeviceID == deviceID {
			now := time.Now().UTC()
			m.devices[i].LastSeenAt = &now
		}
	}
	return nil
}

func (m *memDevices) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.devices {
		if m.devices[i].ID == id {
			m.devices = append(m.devices[:i], m.devices[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type memStore struct {
	users      *memUsers
	employees  *memEmployees
	timesheets *memTimesheets
	shifts     *memShifts
	categories *memCategories
	devices    *memDevices
}

func newMemStore() (*memStore, *repository.Store) {
	m := &memStore{
		users:      &memUsers{},
		employees:  &memEmployees{},
		timesheets: &memTimesheets{},
		shifts:     &memShifts{},
		categories: &memCategories{},
		devices:    &memDevices{},
	}
	return m, &repository.Store{
		Users:      m.users,
		Employees:  m.employees,
		Timesheets: m.timesheets,
		Shifts:     m.shifts,
		Categories: m.categories,
		Devices:    m.devices,
	}
}

type fakeImages struct {
	mu        sync.Mutex
	url       string
	err       error
	uploads   []string
	deleted   int
	failures  []string
	sweptTill time.Time
	sweptFrom string
}

func (f *fakeImages) Upload(_ context.Context, folder string, file *multipart.FileHeader) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.uploads = append(f.uploads, folder+"/"+file.Filename)
	return f.url, nil
}

func (f *fakeImages) DeleteOlderThan(_ context.Context, folder string, cutoff time.Time) (int, []string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweptTill = cutoff
	f.sweptFrom = folder
	return f.deleted, f.failures, nil
}

type fakeMailer struct {
	sent chan string
}

func (f *fakeMailer) Send(subject, body string) error {
	f.sent <- subject
	return nil
}
