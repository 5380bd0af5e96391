package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"timeclock/models"
	"timeclock/repository"
	"timeclock/validation"
)

// ListShifts filters on ?pin and ?date (dd-MM-yyyy).
func (h *Handler) ListShifts(c *gin.Context) {
	filter := repository.ShiftFilter{
		Pin:  strings.TrimSpace(c.Query("pin")),
		Date: strings.TrimSpace(c.Query("date")),
	}
	if filter.Date != "" && !models.ValidDate(filter.Date) {
		respondValidation(c, validation.Errors{"date": {"must be in dd-MM-yyyy format"}})
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	shifts, err := h.Store.Shifts.List(ctx, filter)
	if err != nil {
		respondError(c, "list shifts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shifts": shifts})
}

// SetShiftStatus approves or rejects a daily shift.
func (h *Handler) SetShiftStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var input validation.ShiftStatusInput
	if !bindJSON(c, &input) {
		return
	}
	status, errs := validation.ShiftStatus(input)
	if errs != nil {
		respondValidation(c, errs)
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	shift, err := h.Store.Shifts.SetStatus(ctx, id, status)
	if err != nil {
		respondError(c, "set shift status", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shift": shift})
}
