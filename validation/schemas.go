package validation

import (
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"timeclock/models"
)

// ObjectID validates a path identifier before it is used in a query.
func ObjectID(field, raw string) (primitive.ObjectID, Errors) {
	in := struct {
		ID string `json:"id" validate:"required,objectid"`
	}{ID: raw}
	if errs := Struct(in); errs != nil {
		return primitive.NilObjectID, Errors{field: errs["id"]}
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, Errors{field: {"must be a 24-character hexadecimal id"}}
	}
	return id, nil
}

type EmployeeCreateInput struct {
	Name        string     `json:"name" validate:"required,min=1,max=200"`
	Pin         string     `json:"pin" validate:"required,min=4,max=20"`
	Role        StringList `json:"role"`
	Employer    StringList `json:"employer"`
	Location    StringList `json:"location"`
	Email       string     `json:"email" validate:"omitempty,max=200"`
	Phone       string     `json:"phone" validate:"omitempty,max=50"`
	Address     string     `json:"address" validate:"omitempty,max=500"`
	DateOfBirth string     `json:"dateOfBirth" validate:"omitempty,max=50"`
	Gender      string     `json:"gender" validate:"omitempty,max=50"`
	Img         string     `json:"img" validate:"omitempty,max=2048"`
}

func EmployeeCreate(in EmployeeCreateInput) (models.Employee, Errors) {
	in.Name = strings.TrimSpace(in.Name)
	in.Pin = strings.TrimSpace(in.Pin)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	in.DateOfBirth = strings.TrimSpace(in.DateOfBirth)
	in.Gender = strings.TrimSpace(in.Gender)
	in.Img = strings.TrimSpace(in.Img)
	if errs := Struct(in); errs != nil {
		return models.Employee{}, errs
	}

	emp := models.Employee{
		Name:        in.Name,
		Pin:         in.Pin,
		Role:        orEmpty(in.Role),
		Employer:    orEmpty(in.Employer),
		Location:    orEmpty(in.Location),
		Email:       in.Email,
		Phone:       in.Phone,
		Address:     in.Address,
		DateOfBirth: in.DateOfBirth,
		Gender:      in.Gender,
		Img:         in.Img,
	}
	return emp, nil
}

type EmployeeUpdateInput struct {
	Name        *string     `json:"name" validate:"omitempty,min=1,max=200"`
	Pin         *string     `json:"pin" validate:"omitempty,min=4,max=20"`
	Role        *StringList `json:"role"`
	Employer    *StringList `json:"employer"`
	Location    *StringList `json:"location"`
	Email       *string     `json:"email" validate:"omitempty,max=200"`
	Phone       *string     `json:"phone" validate:"omitempty,max=50"`
	Address     *string     `json:"address" validate:"omitempty,max=500"`
	DateOfBirth *string     `json:"dateOfBirth" validate:"omitempty,max=50"`
	Gender      *string     `json:"gender" validate:"omitempty,max=50"`
	Img         *string     `json:"img" validate:"omitempty,max=2048"`
}

func EmployeeUpdate(in EmployeeUpdateInput) (models.EmployeeUpdate, Errors) {
	in.Name = trimPtr(in.Name)
	in.Pin = trimPtr(in.Pin)
	errs := Struct(in)
	if errs == nil {
		errs = Errors{}
	}
	// omitempty skips "", so blank-after-trim needs an explicit check
	if in.Name != nil && *in.Name == "" {
		errs.Add("name", "must be at least 1 characters")
	}
	if in.Pin != nil && *in.Pin == "" {
		errs.Add("pin", "must be at least 4 characters")
	}
	if errs = errs.orNil(); errs != nil {
		return models.EmployeeUpdate{}, errs
	}

	return models.EmployeeUpdate{
		Name:        in.Name,
		Pin:         in.Pin,
		Role:        listPtr(in.Role),
		Employer:    listPtr(in.Employer),
		Location:    listPtr(in.Location),
		Email:       trimPtr(in.Email),
		Phone:       trimPtr(in.Phone),
		Address:     trimPtr(in.Address),
		DateOfBirth: trimPtr(in.DateOfBirth),
		Gender:      trimPtr(in.Gender),
		Img:         trimPtr(in.Img),
	}, nil
}

type CategoryCreateInput struct {
	Name         string   `json:"name" validate:"required,min=1,max=200"`
	Type         string   `json:"type" validate:"required,oneof=role employer location"`
	Lat          *float64 `json:"lat" validate:"omitempty,latitude"`
	Lng          *float64 `json:"lng" validate:"omitempty,longitude"`
	Radius       *float64 `json:"radius" validate:"omitempty,gt=0"`
	GeofenceMode string   `json:"geofenceMode" validate:"omitempty,oneof=hard soft"`
}

func CategoryCreate(in CategoryCreateInput) (models.Category, Errors) {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.TrimSpace(in.Type)
	in.GeofenceMode = strings.TrimSpace(in.GeofenceMode)
	errs := Struct(in)
	if errs == nil {
		errs = Errors{}
	}
	checkGeofence(errs, in.Type, in.Lat, in.Lng, in.Radius)
	if errs = errs.orNil(); errs != nil {
		return models.Category{}, errs
	}
	return models.Category{
		Name:         in.Name,
		Type:         in.Type,
		Lat:          in.Lat,
		Lng:          in.Lng,
		Radius:       in.Radius,
		GeofenceMode: in.GeofenceMode,
	}, nil
}

type CategoryUpdateInput struct {
	Name         *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Type         *string  `json:"type" validate:"omitempty,oneof=role employer location"`
	Lat          *float64 `json:"lat" validate:"omitempty,latitude"`
	Lng          *float64 `json:"lng" validate:"omitempty,longitude"`
	Radius       *float64 `json:"radius" validate:"omitempty,gt=0"`
	GeofenceMode *string  `json:"geofenceMode" validate:"omitempty,oneof=hard soft"`
}

func CategoryUpdate(in CategoryUpdateInput) (models.CategoryUpdate, Errors) {
	in.Name = trimPtr(in.Name)
	in.Type = trimPtr(in.Type)
	in.GeofenceMode = trimPtr(in.GeofenceMode)
	errs := Struct(in)
	if errs == nil {
		errs = Errors{}
	}
	if in.Name != nil && *in.Name == "" {
		errs.Add("name", "must be at least 1 characters")
	}
	// geofence edits send the whole triple; the type is checked when it changes
	typ := models.CategoryLocation
	if in.Type != nil {
		typ = *in.Type
	}
	checkGeofence(errs, typ, in.Lat, in.Lng, in.Radius)
	if errs = errs.orNil(); errs != nil {
		return models.CategoryUpdate{}, errs
	}
	return models.CategoryUpdate{
		Name:         in.Name,
		Type:         in.Type,
		Lat:          in.Lat,
		Lng:          in.Lng,
		Radius:       in.Radius,
		GeofenceMode: in.GeofenceMode,
	}, nil
}

// checkGeofence requires a complete lat/lng/radius triple on location categories.
func checkGeofence(errs Errors, typ string, lat, lng, radius *float64) {
	given := lat != nil || lng != nil || radius != nil
	if !given {
		return
	}
	if typ != models.CategoryLocation {
		errs.Add("type", "only location categories carry a geofence")
		return
	}
	if lat == nil {
		errs.Add("lat", "is required with a geofence")
	}
	if lng == nil {
		errs.Add("lng", "is required with a geofence")
	}
	if radius == nil {
		errs.Add("radius", "is required with a geofence")
	}
}

type ClockInput struct {
	Pin   string `json:"pin" validate:"required"`
	Image string `json:"image" validate:"omitempty,max=2048"`
	Lat   string `json:"lat" validate:"omitempty,latitude"`
	Lng   string `json:"lng" validate:"omitempty,longitude"`
}

func Clock(in ClockInput) (ClockInput, Errors) {
	in.Pin = strings.TrimSpace(in.Pin)
	in.Image = strings.TrimSpace(in.Image)
	in.Lat = strings.TrimSpace(in.Lat)
	in.Lng = strings.TrimSpace(in.Lng)
	if errs := Struct(in); errs != nil {
		return in, errs
	}
	return in, nil
}

// Coordinates parses the clock position; ok is false unless both are present.
func (in ClockInput) Coordinates() (lat, lng float64, ok bool) {
	if in.Lat == "" || in.Lng == "" {
		return 0, 0, false
	}
	lat, err1 := strconv.ParseFloat(in.Lat, 64)
	lng, err2 := strconv.ParseFloat(in.Lng, 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

type PinLoginInput struct {
	Pin string `json:"pin" validate:"required,digits,min=4,max=10"`
}

func PinLogin(in PinLoginInput) (string, Errors) {
	in.Pin = strings.TrimSpace(in.Pin)
	if errs := Struct(in); errs != nil {
		return "", errs
	}
	return in.Pin, nil
}

type LoginInput struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=200"`
}

func Login(in LoginInput) (LoginInput, Errors) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	return in, Struct(in)
}

type UserCreateInput struct {
	Username string     `json:"username" validate:"required,min=3,max=50"`
	Password string     `json:"password" validate:"required,min=8,max=200"`
	Name     string     `json:"name" validate:"omitempty,max=200"`
	Role     string     `json:"role" validate:"omitempty,oneof=admin user super_admin"`
	Location StringList `json:"location"`
	Rights   StringList `json:"rights" validate:"dive,oneof=employees categories timesheets devices users reports"`
}

func UserCreate(in UserCreateInput) (models.User, Errors) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Name = strings.TrimSpace(in.Name)
	in.Role = strings.TrimSpace(in.Role)
	if errs := Struct(in); errs != nil {
		return models.User{}, errs
	}
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	return models.User{
		Username: in.Username,
		Password: in.Password,
		Name:     in.Name,
		Role:     role,
		Location: orEmpty(in.Location),
		Rights:   orEmpty(in.Rights),
	}, nil
}

type SetupAdminInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8,max=200"`
}

func SetupAdmin(in SetupAdminInput) (SetupAdminInput, Errors) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	return in, Struct(in)
}

type UserUpdateInput struct {
	Name     *string     `json:"name" validate:"omitempty,max=200"`
	Password *string     `json:"password" validate:"omitempty,min=8,max=200"`
	Role     *string     `json:"role" validate:"omitempty,oneof=admin user super_admin"`
	Location *StringList `json:"location"`
	Rights   *StringList `json:"rights" validate:"omitempty,dive,oneof=employees categories timesheets devices users reports"`
}

func UserUpdate(in UserUpdateInput) (models.UserUpdate, Errors) {
	in.Name = trimPtr(in.Name)
	in.Role = trimPtr(in.Role)
	if errs := Struct(in); errs != nil {
		return models.UserUpdate{}, errs
	}
	return models.UserUpdate{
		Name:     in.Name,
		Password: in.Password,
		Role:     in.Role,
		Location: listPtr(in.Location),
		Rights:   listPtr(in.Rights),
	}, nil
}

type DeviceRegisterInput struct {
	DeviceID     string `json:"deviceId" validate:"required,min=1,max=100"`
	LocationName string `json:"locationName" validate:"omitempty,max=200"`
}

func DeviceRegister(in DeviceRegisterInput) (models.Device, Errors) {
	in.DeviceID = strings.TrimSpace(in.DeviceID)
	in.LocationName = strings.TrimSpace(in.LocationName)
	if errs := Struct(in); errs != nil {
		return models.Device{}, errs
	}
	return models.Device{DeviceID: in.DeviceID, LocationName: in.LocationName, Status: models.DeviceActive}, nil
}

type DeviceStatusInput struct {
	Status string `json:"status" validate:"required,oneof=active disabled revoked"`
}

func DeviceStatus(in DeviceStatusInput) (string, Errors) {
	in.Status = strings.TrimSpace(in.Status)
	if errs := Struct(in); errs != nil {
		return "", errs
	}
	return in.Status, nil
}

type TimesheetInput struct {
	Pin      string `json:"pin" validate:"required,max=20"`
	Type     string `json:"type" validate:"required,oneof=in out break endBreak"`
	Date     string `json:"date" validate:"required,tsdate"`
	Time     string `json:"time" validate:"required,hhmm"`
	Image    string `json:"image" validate:"omitempty,max=2048"`
	Lat      string `json:"lat" validate:"omitempty,latitude"`
	Lng      string `json:"lng" validate:"omitempty,longitude"`
	Where    string `json:"where" validate:"omitempty,max=200"`
	Flag     bool   `json:"flag"`
	DeviceID string `json:"deviceId" validate:"omitempty,max=100"`
}

// Timesheet validates an admin-written punch row.
func Timesheet(in TimesheetInput) (models.Timesheet, Errors) {
	in.Pin = strings.TrimSpace(in.Pin)
	in.Type = strings.TrimSpace(in.Type)
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	if errs := Struct(in); errs != nil {
		return models.Timesheet{}, errs
	}
	return models.Timesheet{
		Pin:      in.Pin,
		Type:     in.Type,
		Date:     in.Date,
		Time:     in.Time,
		Image:    strings.TrimSpace(in.Image),
		Lat:      strings.TrimSpace(in.Lat),
		Lng:      strings.TrimSpace(in.Lng),
		Where:    strings.TrimSpace(in.Where),
		Flag:     in.Flag,
		DeviceID: strings.TrimSpace(in.DeviceID),
	}, nil
}

type CleanupInput struct {
	BeforeDate string `json:"beforeDate" validate:"required,isodate"`
}

func Cleanup(in CleanupInput) (string, Errors) {
	in.BeforeDate = strings.TrimSpace(in.BeforeDate)
	if errs := Struct(in); errs != nil {
		return "", errs
	}
	return in.BeforeDate, nil
}

type ShiftStatusInput struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

func ShiftStatus(in ShiftStatusInput) (string, Errors) {
	in.Status = strings.TrimSpace(in.Status)
	if errs := Struct(in); errs != nil {
		return "", errs
	}
	return in.Status, nil
}

type DateRangeInput struct {
	From string `json:"from" validate:"omitempty,isodate"`
	To   string `json:"to" validate:"omitempty,isodate"`
}

func DateRange(in DateRangeInput) (DateRangeInput, Errors) {
	in.From = strings.TrimSpace(in.From)
	in.To = strings.TrimSpace(in.To)
	errs := Struct(in)
	if errs == nil && in.From != "" && in.To != "" && in.From > in.To {
		errs = Errors{"from": {"must be on or before to"}}
	}
	return in, errs
}

func orEmpty(l StringList) []string {
	if l == nil {
		return []string{}
	}
	return []string(l)
}

func listPtr(l *StringList) []string {
	if l == nil {
		return nil
	}
	return orEmpty(*l)
}
