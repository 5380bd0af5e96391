package controllers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"timeclock/middleware"
	"timeclock/models"
	"timeclock/repository"
	"timeclock/utils"
	"timeclock/validation"
)

// locationScope returns the locations a plain user is limited to, or nil
// when the caller sees every employee.
func locationScope(user *models.User) []string {
	if user == nil || user.Role != models.RoleUser || len(user.Location) == 0 {
		return nil
	}
	return user.Location
}

// inScope reports whether a location-scoped caller may touch employee id.
// Out-of-scope employees answer 404 as if they did not exist.
func (h *Handler) inScope(ctx context.Context, c *gin.Context, id primitive.ObjectID, op string) bool {
	scope := locationScope(middleware.CurrentUser(c))
	if scope == nil {
		return true
	}
	existing, err := h.Store.Employees.FindByID(ctx, id)
	if err != nil {
		respondError(c, op, err)
		return false
	}
	if !existing.SharesLocation(scope) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return false
	}
	return true
}

func (h *Handler) ListEmployees(c *gin.Context) {
	ctx, cancel := dbContext(c)
	defer cancel()

	filter := repository.EmployeeFilter{Locations: locationScope(middleware.CurrentUser(c))}
	employees, err := h.Store.Employees.List(ctx, filter)
	if err != nil {
		respondError(c, "list employees", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employees": employees})
}

func (h *Handler) GetEmployee(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	employee, err := h.Store.Employees.FindByID(ctx, id)
	if err != nil {
		respondError(c, "get employee", err)
		return
	}
	if scope := locationScope(middleware.CurrentUser(c)); scope != nil && !employee.SharesLocation(scope) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"employee": employee})
}

func (h *Handler) CreateEmployee(c *gin.Context) {
	var input validation.EmployeeCreateInput
	if !bindJSON(c, &input) {
		return
	}
	employee, errs := validation.EmployeeCreate(input)
	if errs != nil {
		respondValidation(c, errs)
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	if err := h.Store.Employees.Create(ctx, &employee); err != nil {
		respondError(c, "create employee", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"employee": employee})
}

func (h *Handler) UpdateEmployee(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var input validation.EmployeeUpdateInput
	if !bindJSON(c, &input) {
		return
	}
	upd, errs := validation.EmployeeUpdate(input)
	if errs != nil {
		respondValidation(c, errs)
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	if !h.inScope(ctx, c, id, "update employee") {
		return
	}

	employee, err := h.Store.Employees.Update(ctx, id, upd)
	if err != nil {
		respondError(c, "update employee", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employee": employee})
}

func (h *Handler) DeleteEmployee(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	if !h.inScope(ctx, c, id, "delete employee") {
		return
	}
	if err := h.Store.Employees.Delete(ctx, id); err != nil {
		respondError(c, "delete employee", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GeneratePin proposes a 4-digit PIN no current employee holds.
func (h *Handler) GeneratePin(c *gin.Context) {
	ctx, cancel := dbContext(c)
	defer cancel()

	pins, err := h.Store.Employees.ListPins(ctx)
	if err != nil {
		respondError(c, "generate pin: list pins", err)
		return
	}

	pin, err := utils.GeneratePIN(pins, h.PinSource)
	if err != nil {
		log.Printf("generate pin: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate a unique PIN"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pin": pin})
}
