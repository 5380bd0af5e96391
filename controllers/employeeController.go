package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"timeclock/middleware"
	"timeclock/models"
	"timeclock/repository"
	"timeclock/utils"
	"timeclock/validation"
)

func (h *Handler) EmployeeLogin(c *gin.Context) {
	var input validation.PinLoginInput
	if !bindJSON(c, &input) {
		return
	}
	pin, errs := validation.PinLogin(input)
	if errs != nil {
		respondValidation(c, errs)
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	employee, err := h.Store.Employees.FindByPin(ctx, pin)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid PIN"})
			return
		}
		respondError(c, "employee login", err)
		return
	}

	token, err := h.Employee.Issue(employee.ID.Hex(), "")
	if err != nil {
		respondError(c, "employee login: issue token", err)
		return
	}
	h.Employee.SetCookie(c.Writer, token)

	c.JSON(http.StatusOK, gin.H{"employee": employee})
}

func (h *Handler) EmployeeLogout(c *gin.Context) {
	h.Employee.Clear(c.Writer)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// currentEmployee loads the employee behind the session. It writes the
// response itself and returns nil when the request cannot continue.
func (h *Handler) currentEmployee(c *gin.Context) *models.Employee {
	p := middleware.CurrentPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil
	}
	id, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	employee, err := h.Store.Employees.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
			return nil
		}
		respondError(c, "load session employee", err)
		return nil
	}
	return employee
}

func (h *Handler) EmployeeMe(c *gin.Context) {
	employee := h.currentEmployee(c)
	if employee == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"employee": employee})
}

// EmployeeTimesheet reports today's punches, one time per slot.
func (h *Handler) EmployeeTimesheet(c *gin.Context) {
	employee := h.currentEmployee(c)
	if employee == nil {
		return
	}

	date, _ := utils.Now(h.loc)

	ctx, cancel := dbContext(c)
	defer cancel()

	rows, err := h.Store.Timesheets.ListForDay(ctx, employee.Pin, date)
	if err != nil {
		respondError(c, "employee timesheet", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"date": date, "punches": utils.ClassifyPunches(rows)})
}
