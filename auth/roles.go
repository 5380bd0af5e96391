package auth

import "timeclock/models"

func IsAdmin(role string) bool {
	return role == models.RoleAdmin || role == models.RoleSuperAdmin
}

// HasRight: admins hold every right, plain users only those granted.
func HasRight(role string, rights []string, right string) bool {
	if IsAdmin(role) {
		return true
	}
	for _, r := range rights {
		if r == right {
			return true
		}
	}
	return false
}

// CanAssignRole reports whether actorRole may create or promote a user to role.
func CanAssignRole(actorRole, role string) bool {
	switch role {
	case models.RoleUser:
		return IsAdmin(actorRole)
	case models.RoleAdmin, models.RoleSuperAdmin:
		return actorRole == models.RoleSuperAdmin
	}
	return false
}
