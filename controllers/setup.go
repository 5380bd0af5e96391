package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"timeclock/models"
	"timeclock/repository"
	"timeclock/validation"
)

// adminExists consults the cached flag first and only then the database.
// A positive answer is cached for the life of the process.
func (h *Handler) adminExists(c *gin.Context) (bool, error) {
	if h.Setup.AdminExists() {
		return true, nil
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	n, err := h.Store.Users.CountAdmins(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		h.Setup.MarkAdminExists()
		return true, nil
	}
	return false, nil
}

func (h *Handler) SetupStatus(c *gin.Context) {
	exists, err := h.adminExists(c)
	if err != nil {
		respondError(c, "setup status", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"needsSetup": !exists})
}

// CreateAdmin creates the first super admin. It refuses once any admin exists.
func (h *Handler) CreateAdmin(c *gin.Context) {
	exists, err := h.adminExists(c)
	if err != nil {
		respondError(c, "create admin", err)
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "Setup has already been completed"})
		return
	}

	var input validation.SetupAdminInput
	if !bindJSON(c, &input) {
		return
	}
	input, errs := validation.SetupAdmin(input)
	if errs != nil {
		respondValidation(c, errs)
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	user := models.User{
		Username: input.Username,
		Password: input.Password,
		Name:     input.Username,
		Role:     models.RoleSuperAdmin,
	}
	if err := h.Store.Users.Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
			return
		}
		respondError(c, "create admin", err)
		return
	}
	h.Setup.MarkAdminExists()

	c.JSON(http.StatusOK, gin.H{"success": true})
}
