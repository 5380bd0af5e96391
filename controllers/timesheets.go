package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"timeclock/models"
	"timeclock/repository"
	"timeclock/utils"
	"timeclock/validation"
)

// timesheetFilter reads ?pin, ?from and ?to (YYYY-MM-DD). It answers 400
// itself when the range is malformed.
func timesheetFilter(c *gin.Context) (repository.TimesheetFilter, bool) {
	rng, errs := validation.DateRange(validation.DateRangeInput{From: c.Query("from"), To: c.Query("to")})
	if errs != nil {
		respondValidation(c, errs)
		return repository.TimesheetFilter{}, false
	}
	return repository.TimesheetFilter{
		Pin:  strings.TrimSpace(c.Query("pin")),
		From: rng.From,
		To:   rng.To,
	}, true
}

func (h *Handler) ListTimesheets(c *gin.Context) {
	filter, ok := timesheetFilter(c)
	if !ok {
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	rows, err := h.Store.Timesheets.List(ctx, filter)
	if err != nil {
		respondError(c, "list timesheets", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"timesheets": rows})
}

// CreateTimesheet inserts a punch by hand and marks it as such.
func (h *Handler) CreateTimesheet(c *gin.Context) {
	var input validation.TimesheetInput
	if !bindJSON(c, &input) {
		return
	}
	ts, errs := validation.Timesheet(input)
	if errs != nil {
		respondValidation(c, errs)
		return
	}
	ts.Source = models.SourceInsert

	ctx, cancel := dbContext(c)
	defer cancel()

	if err := h.Store.Timesheets.Create(ctx, &ts); err != nil {
		respondError(c, "create timesheet", err)
		return
	}
	h.refreshShift(ctx, ts.Pin, ts.Date)

	c.JSON(http.StatusCreated, gin.H{"timesheet": ts})
}

func (h *Handler) UpdateTimesheet(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var input validation.TimesheetInput
	if !bindJSON(c, &input) {
		return
	}
	ts, errs := validation.Timesheet(input)
	if errs != nil {
		respondValidation(c, errs)
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	existing, err := h.Store.Timesheets.FindByID(ctx, id)
	if err != nil {
		respondError(c, "update timesheet", err)
		return
	}

	ts.ID = existing.ID
	ts.CreatedAt = existing.CreatedAt
	ts.Source = models.SourceUpdate
	if err := h.Store.Timesheets.Replace(ctx, &ts); err != nil {
		respondError(c, "update timesheet", err)
		return
	}

	h.refreshShift(ctx, ts.Pin, ts.Date)
	if existing.Pin != ts.Pin || existing.Date != ts.Date {
		h.refreshShift(ctx, existing.Pin, existing.Date)
	}

	c.JSON(http.StatusOK, gin.H{"timesheet": ts})
}

func (h *Handler) DeleteTimesheet(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	existing, err := h.Store.Timesheets.FindByID(ctx, id)
	if err != nil {
		respondError(c, "delete timesheet", err)
		return
	}
	if err := h.Store.Timesheets.Delete(ctx, id); err != nil {
		respondError(c, "delete timesheet", err)
		return
	}
	h.refreshShift(ctx, existing.Pin, existing.Date)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) refreshShift(ctx context.Context, pin, date string) {
	if _, err := h.rebuildShift(ctx, pin, date, models.ShiftSourceManual); err != nil {
		log.Printf("Failed to rebuild daily shift for pin %s on %s: %v", pin, date, err)
	}
}

// rebuildShift replays the day's punches into the (pin, date) shift. A shift
// that does not exist yet is created with the given source.
func (h *Handler) rebuildShift(ctx context.Context, pin, date, source string) (*models.DailyShift, error) {
	rows, err := h.Store.Timesheets.ListForDay(ctx, pin, date)
	if err != nil {
		return nil, err
	}

	shift, err := h.Store.Shifts.FindByPinDate(ctx, pin, date)
	if errors.Is(err, repository.ErrNotFound) {
		shift = &models.DailyShift{Pin: pin, Date: date, Source: source}
	} else if err != nil {
		return nil, err
	}

	shift.ClockIn, shift.BreakIn, shift.BreakOut, shift.ClockOut = nil, nil, nil, nil
	for _, row := range rows {
		typ := utils.NormalizePunchType(row.Type)
		if typ == "" {
			continue
		}
		shift.SetEvent(typ, models.ClockEvent{
			Time:  row.Time,
			Image: row.Image,
			Lat:   row.Lat,
			Lng:   row.Lng,
			Flag:  row.Flag,
		})
	}

	if err := h.Store.Shifts.Upsert(ctx, shift); err != nil {
		return nil, err
	}
	return shift, nil
}
