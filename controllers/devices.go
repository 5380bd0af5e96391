package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"timeclock/middleware"
	"timeclock/validation"
)

func (h *Handler) ListDevices(c *gin.Context) {
	ctx, cancel := dbContext(c)
	defer cancel()

	devices, err := h.Store.Devices.List(ctx)
	if err != nil {
		respondError(c, "list devices", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"devices": devices})
}

func (h *Handler) RegisterDevice(c *gin.Context) {
	var input validation.DeviceRegisterInput
	if !bindJSON(c, &input) {
		return
	}
	device, errs := validation.DeviceRegister(input)
	if errs != nil {
		respondValidation(c, errs)
		return
	}

	user := middleware.CurrentUser(c)
	device.RegisteredBy = user.ID
	device.RegisteredAt = time.Now().UTC()

	ctx, cancel := dbContext(c)
	defer cancel()

	if err := h.Store.Devices.Create(ctx, &device); err != nil {
		respondError(c, "register device", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"device": device})
}

// SetDeviceStatus switches a device between active, disabled and revoked.
func (h *Handler) SetDeviceStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var input validation.DeviceStatusInput
	if !bindJSON(c, &input) {
		return
	}
	status, errs := validation.DeviceStatus(input)
	if errs != nil {
		respondValidation(c, errs)
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	device, err := h.Store.Devices.SetStatus(ctx, id, status, middleware.CurrentUser(c).ID)
	if err != nil {
		respondError(c, "set device status", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"device": device})
}

func (h *Handler) DeleteDevice(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	if err := h.Store.Devices.Delete(ctx, id); err != nil {
		respondError(c, "delete device", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
