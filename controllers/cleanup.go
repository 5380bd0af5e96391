package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"timeclock/jobs"
	"timeclock/storage"
	"timeclock/validation"
)

func (h *Handler) CleanupTimesheets(c *gin.Context) {
	var input validation.CleanupInput
	if !bindJSON(c, &input) {
		return
	}
	before, errs := validation.Cleanup(input)
	if errs != nil {
		respondValidation(c, errs)
		return
	}

	deleted, err := h.Cleaner.CleanTimesheets(c.Request.Context(), before)
	if err != nil {
		respondError(c, "cleanup timesheets", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// CleanupImages sweeps stored images last modified before beforeDate.
func (h *Handler) CleanupImages(c *gin.Context) {
	var input validation.CleanupInput
	if !bindJSON(c, &input) {
		return
	}
	before, errs := validation.Cleanup(input)
	if errs != nil {
		respondValidation(c, errs)
		return
	}

	deleted, failures, err := h.Cleaner.CleanImages(c.Request.Context(), before)
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Image storage is not configured"})
			return
		}
		respondError(c, "cleanup images", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted, "errors": failures})
}

// CronCleanupImages is the unattended variant behind the cron secret. It uses
// the configured image retention window.
func (h *Handler) CronCleanupImages(c *gin.Context) {
	days := h.Config.ImageRetentionDays
	if days <= 0 {
		days = jobs.DefaultImageRetentionDays
	}

	deleted, failures, err := h.Cleaner.CleanImagesOlderThan(c.Request.Context(), days)
	if err != nil {
		log.Printf("cron image cleanup: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Image cleanup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"deleted": deleted,
		"errors":  failures,
		"message": fmt.Sprintf("Deleted %d images older than %d days", deleted, days),
	})
}

// DebugUsers lists dashboard accounts in development only.
func (h *Handler) DebugUsers(c *gin.Context) {
	if !h.Config.IsDevelopment() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	users, err := h.Store.Users.List(ctx)
	if err != nil {
		respondError(c, "debug users", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
