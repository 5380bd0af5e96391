package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"timeclock/auth"
	"timeclock/repository"
	"timeclock/utils"
	"timeclock/validation"
)

func (h *Handler) Login(c *gin.Context) {
	var input validation.LoginInput
	if !bindJSON(c, &input) {
		return
	}
	input, errs := validation.Login(input)
	if errs != nil {
		respondValidation(c, errs)
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	user, err := h.Store.Users.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		respondError(c, "login", err)
		return
	}
	if !utils.ComparePassword(user.Password, input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	token, err := h.Dashboard.Issue(user.ID.Hex(), user.Role)
	if err != nil {
		respondError(c, "login: issue token", err)
		return
	}
	h.Dashboard.SetCookie(c.Writer, token)

	if auth.IsAdmin(user.Role) {
		h.Setup.MarkAdminExists()
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

func (h *Handler) Logout(c *gin.Context) {
	h.Dashboard.Clear(c.Writer)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me answers 401 {"user": null} for any missing, invalid or stale session.
func (h *Handler) Me(c *gin.Context) {
	p := h.Dashboard.Read(c.Request)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"user": nil})
		return
	}
	id, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"user": nil})
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	user, err := h.Store.Users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"user": nil})
			return
		}
		respondError(c, "me", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
