package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"timeclock/storage"
)

// UploadEmployeeImage stores a punch photo taken at the clock.
func (h *Handler) UploadEmployeeImage(c *gin.Context) {
	h.uploadImage(c, storage.PunchFolder)
}

// UploadImage stores a photo from the dashboard, typically an employee portrait.
func (h *Handler) UploadImage(c *gin.Context) {
	h.uploadImage(c, storage.PortraitFolder)
}

func (h *Handler) uploadImage(c *gin.Context, folder string) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	if h.Images == nil {
		respondError(c, "upload image", storage.ErrNotConfigured)
		return
	}

	url, err := h.Images.Upload(c.Request.Context(), folder, file)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotImage), errors.Is(err, storage.ErrEmptyFile):
			c.JSON(http.StatusBadRequest, gin.H{"error": "File must be a JPEG, PNG or WebP image"})
		case errors.Is(err, storage.ErrTooLarge):
			c.JSON(http.StatusBadRequest, gin.H{"error": "File is too large"})
		default:
			respondError(c, "upload image", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
