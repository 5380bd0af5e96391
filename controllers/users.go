package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"timeclock/auth"
	"timeclock/middleware"
	"timeclock/models"
	"timeclock/validation"
)

func (h *Handler) ListUsers(c *gin.Context) {
	ctx, cancel := dbContext(c)
	defer cancel()

	users, err := h.Store.Users.List(ctx)
	if err != nil {
		respondError(c, "list users", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// CreateUser adds a dashboard account. Only a super admin may create admins.
func (h *Handler) CreateUser(c *gin.Context) {
	var input validation.UserCreateInput
	if !bindJSON(c, &input) {
		return
	}
	user, errs := validation.UserCreate(input)
	if errs != nil {
		respondValidation(c, errs)
		return
	}

	actor := middleware.CurrentUser(c)
	if !auth.CanAssignRole(actor.Role, user.Role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot create a user with this role"})
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	if err := h.Store.Users.Create(ctx, &user); err != nil {
		respondError(c, "create user", err)
		return
	}
	if auth.IsAdmin(user.Role) {
		h.Setup.MarkAdminExists()
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var input validation.UserUpdateInput
	if !bindJSON(c, &input) {
		return
	}
	upd, errs := validation.UserUpdate(input)
	if errs != nil {
		respondValidation(c, errs)
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	target, err := h.Store.Users.FindByID(ctx, id)
	if err != nil {
		respondError(c, "update user", err)
		return
	}
	actor := middleware.CurrentUser(c)
	if !canManage(actor, target) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot modify this user"})
		return
	}
	if upd.Role != nil && *upd.Role != target.Role && !auth.CanAssignRole(actor.Role, *upd.Role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot assign this role"})
		return
	}

	user, err := h.Store.Users.Update(ctx, id, upd)
	if err != nil {
		respondError(c, "update user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	actor := middleware.CurrentUser(c)
	if actor.ID == id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot delete your own account"})
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	target, err := h.Store.Users.FindByID(ctx, id)
	if err != nil {
		respondError(c, "delete user", err)
		return
	}
	if !canManage(actor, target) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot delete this user"})
		return
	}

	if err := h.Store.Users.Delete(ctx, id); err != nil {
		respondError(c, "delete user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// canManage: admins manage plain users and themselves; super admins manage everyone.
func canManage(actor, target *models.User) bool {
	if actor.Role == models.RoleSuperAdmin || actor.ID == target.ID {
		return true
	}
	return auth.IsAdmin(actor.Role) && !auth.IsAdmin(target.Role)
}
