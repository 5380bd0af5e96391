package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleUser       = "user"
)

var UserRoles = []string{RoleAdmin, RoleUser, RoleSuperAdmin}

const (
	RightEmployees  = "employees"
	RightCategories = "categories"
	RightTimesheets = "timesheets"
	RightDevices    = "devices"
	RightUsers      = "users"
	RightReports    = "reports"
)

var UserRights = []string{RightEmployees, RightCategories, RightTimesheets, RightDevices, RightUsers, RightReports}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string             `bson:"username" json:"username"`
	Password  string             `bson:"password" json:"-"`
	Name      string             `bson:"name,omitempty" json:"name,omitempty"`
	Role      string             `bson:"role" json:"role"`
	Location  []string           `bson:"location" json:"location"`
	Rights    []string           `bson:"rights" json:"rights"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserUpdate carries the fields an admin may change. Nil means unchanged.
type UserUpdate struct {
	Name     *string
	Password *string
	Role     *string
	Location []string
	Rights   []string
}

// Normalize lowercases the username and fills list defaults.
func (u *User) Normalize() {
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	u.Name = strings.TrimSpace(u.Name)
	if u.Role == "" {
		u.Role = RoleUser
	}
	u.Location = cleanList(u.Location)
	u.Rights = cleanList(u.Rights)
}

// Validate expects Normalize to have run and Password to already be hashed.
func (u *User) Validate() error {
	errs := fieldErrors{}
	if u.Username == "" {
		errs.add("username", "is required")
	}
	if u.Password == "" {
		errs.add("password", "is required")
	}
	if !contains(UserRoles, u.Role) {
		errs.add("role", "must be one of admin, user, super_admin")
	}
	for _, r := range u.Rights {
		if !contains(UserRights, r) {
			errs.add("rights", "contains unknown right "+r)
		}
	}
	return errs.err()
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}
