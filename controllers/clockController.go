package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"timeclock/middleware"
	"timeclock/models"
	"timeclock/repository"
	"timeclock/utils"
	"timeclock/validation"
)

const DeviceHeader = "X-Device-Id"

// Clock records a punch for the signed-in employee. The action path segment
// is one of in, out, break, endBreak (case-insensitive).
func (h *Handler) Clock(c *gin.Context) {
	action := utils.NormalizePunchType(c.Param("action"))
	if action == "" {
		respondValidation(c, validation.Errors{"action": {"must be one of in, out, break, endBreak"}})
		return
	}

	var input validation.ClockInput
	if !bindJSON(c, &input) {
		return
	}
	input, errs := validation.Clock(input)
	if errs != nil {
		respondValidation(c, errs)
		return
	}

	employee := h.currentEmployee(c)
	if employee == nil {
		return
	}
	if input.Pin != employee.Pin {
		c.JSON(http.StatusForbidden, gin.H{"error": "PIN does not match the signed-in employee"})
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	deviceID, ok := h.checkDevice(ctx, c)
	if !ok {
		return
	}

	fences, err := h.employeeFences(ctx, employee)
	if err != nil {
		respondError(c, "clock: load geofences", err)
		return
	}

	verdict := "none"
	where, flag := "", false
	if len(fences) > 0 {
		lat, lng, hasPos := input.Coordinates()
		switch {
		case !hasPos && utils.AnyHard(fences):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Location is required to clock in here"})
			return
		case !hasPos:
			verdict, flag = "flagged", true
		default:
			res := utils.CheckGeofences(lat, lng, fences)
			where = res.Where
			switch res.Verdict {
			case utils.GeofenceRejected:
				middleware.PunchesTotal.WithLabelValues(action, "rejected").Inc()
				c.JSON(http.StatusForbidden, gin.H{
					"error":    "You are outside the allowed area",
					"where":    res.Where,
					"distance": math.Round(res.Distance),
				})
				return
			case utils.GeofenceFlagged:
				verdict, flag = "flagged", true
			default:
				verdict = "inside"
			}
		}
	}

	date, clock := utils.Now(h.loc)
	ts := &models.Timesheet{
		Pin:      employee.Pin,
		Type:     action,
		Date:     date,
		Time:     clock,
		Image:    input.Image,
		Lat:      input.Lat,
		Lng:      input.Lng,
		Where:    where,
		Flag:     flag,
		Source:   models.SourceClock,
		DeviceID: deviceID,
	}
	if err := h.Store.Timesheets.Create(ctx, ts); err != nil {
		respondError(c, "clock: create timesheet", err)
		return
	}
	middleware.PunchesTotal.WithLabelValues(action, verdict).Inc()

	shift, err := h.rebuildShift(ctx, employee.Pin, date, models.ShiftSourceClock)
	if err != nil {
		log.Printf("Failed to update daily shift for pin %s on %s: %v", employee.Pin, date, err)
	}

	if flag {
		h.sendFlagAlert(employee, ts)
	}

	c.JSON(http.StatusCreated, gin.H{"timesheet": ts, "shift": shift, "flagged": flag})
}

// checkDevice enforces the X-Device-Id rules. Known devices must be active;
// unknown or missing ids only fail when registration is required.
func (h *Handler) checkDevice(ctx context.Context, c *gin.Context) (string, bool) {
	deviceID := strings.TrimSpace(c.GetHeader(DeviceHeader))
	if deviceID == "" {
		if h.Config.RequireDevice {
			c.JSON(http.StatusForbidden, gin.H{"error": "Device id is required"})
			return "", false
		}
		return "", true
	}

	device, err := h.Store.Devices.FindByDeviceID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if h.Config.RequireDevice {
				c.JSON(http.StatusForbidden, gin.H{"error": "Device is not registered"})
				return "", false
			}
			return deviceID, true
		}
		respondError(c, "clock: load device", err)
		return "", false
	}
	if device.Status != models.DeviceActive {
		c.JSON(http.StatusForbidden, gin.H{"error": fmt.Sprintf("Device is %s", device.Status)})
		return "", false
	}

	if err := h.Store.Devices.Touch(ctx, deviceID); err != nil {
		log.Printf("Failed to touch device %s: %v", deviceID, err)
	}
	return deviceID, true
}

func (h *Handler) employeeFences(ctx context.Context, employee *models.Employee) ([]utils.Fence, error) {
	locations, err := h.Store.Categories.ListLocations(ctx, employee.Location)
	if err != nil {
		return nil, err
	}
	fences := make([]utils.Fence, 0, len(locations))
	for _, loc := range locations {
		if !loc.HasGeofence() {
			continue
		}
		fences = append(fences, utils.Fence{
			Name:   loc.Name,
			Lat:    *loc.Lat,
			Lng:    *loc.Lng,
			Radius: *loc.Radius,
			Hard:   loc.GeofenceMode == models.GeofenceHard,
		})
	}
	return fences, nil
}

func (h *Handler) sendFlagAlert(employee *models.Employee, ts *models.Timesheet) {
	if h.Mailer == nil {
		return
	}
	subject := fmt.Sprintf("Flagged punch: %s", employee.Name)
	body := fmt.Sprintf("%s (PIN %s) punched %q on %s at %s outside their location.\nNearest location: %s\nPosition: %s, %s\n",
		employee.Name, employee.Pin, ts.Type, ts.Date, ts.Time, orDash(ts.Where), orDash(ts.Lat), orDash(ts.Lng))

	mailer := h.Mailer
	go func() {
		if err := mailer.Send(subject, body); err != nil {
			log.Printf("Failed to send flagged punch alert: %v", err)
		}
	}()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
