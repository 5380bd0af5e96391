package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"timeclock/models"
	"timeclock/repository"
	"timeclock/utils"
)

const (
	punchSheet   = "Timesheets"
	summarySheet = "Summary"
	xlsxMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportTimesheets streams the filtered punches as an xlsx workbook with a
// raw punch sheet and a per-day summary sheet.
func (h *Handler) ExportTimesheets(c *gin.Context) {
	filter, ok := timesheetFilter(c)
	if !ok {
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	rows, err := h.Store.Timesheets.List(ctx, filter)
	if err != nil {
		respondError(c, "export timesheets", err)
		return
	}
	employees, err := h.Store.Employees.List(ctx, repository.EmployeeFilter{})
	if err != nil {
		respondError(c, "export timesheets: list employees", err)
		return
	}
	names := make(map[string]string, len(employees))
	for _, e := range employees {
		names[e.Pin] = e.Name
	}

	buf, err := BuildTimesheetWorkbook(rows, names)
	if err != nil {
		respondError(c, "export timesheets: build workbook", err)
		return
	}

	filename := "timesheets.xlsx"
	if filter.From != "" || filter.To != "" {
		filename = fmt.Sprintf("timesheets_%s_%s.xlsx", orAll(filter.From), orAll(filter.To))
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxMIME, buf.Bytes())
}

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}

// BuildTimesheetWorkbook renders rows, which must already be in day/time
// order, into an xlsx file. names maps pin to employee name.
func BuildTimesheetWorkbook(rows []models.Timesheet, names map[string]string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", punchSheet); err != nil {
		return nil, err
	}
	header := []interface{}{"PIN", "Employee", "Date", "Time", "Type", "Where", "Flagged", "Source", "Device"}
	if err := f.SetSheetRow(punchSheet, "A1", &header); err != nil {
		return nil, err
	}

	type dayKey struct{ pin, date string }
	var order []dayKey
	days := map[dayKey]*models.DailyShift{}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		flagged := ""
		if row.Flag {
			flagged = "yes"
		}
		values := []interface{}{row.Pin, names[row.Pin], row.Date, row.Time, row.Type, row.Where, flagged, row.Source, row.DeviceID}
		if err := f.SetSheetRow(punchSheet, cell, &values); err != nil {
			return nil, err
		}

		k := dayKey{row.Pin, row.Date}
		shift, ok := days[k]
		if !ok {
			shift = &models.DailyShift{Pin: row.Pin, Date: row.Date}
			days[k] = shift
			order = append(order, k)
		}
		if typ := utils.NormalizePunchType(row.Type); typ != "" {
			shift.SetEvent(typ, models.ClockEvent{Time: row.Time})
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	summaryHeader := []interface{}{"PIN", "Employee", "Date", "Clock in", "Break in", "Break out", "Clock out", "Break minutes", "Working hours"}
	if err := f.SetSheetRow(summarySheet, "A1", &summaryHeader); err != nil {
		return nil, err
	}
	for i, k := range order {
		shift := days[k]
		utils.ComputeShiftTotals(shift)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []interface{}{
			shift.Pin, names[shift.Pin], shift.Date,
			eventTime(shift.ClockIn), eventTime(shift.BreakIn), eventTime(shift.BreakOut), eventTime(shift.ClockOut),
			shift.TotalBreakMinutes, shift.TotalWorkingHours,
		}
		if err := f.SetSheetRow(summarySheet, cell, &values); err != nil {
			return nil, err
		}
	}

	for _, sheet := range []string{punchSheet, summarySheet} {
		if err := f.SetColWidth(sheet, "A", "I", 14); err != nil {
			return nil, err
		}
	}

	return f.WriteToBuffer()
}

func eventTime(ev *models.ClockEvent) string {
	if ev == nil {
		return ""
	}
	return ev.Time
}
