package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"timeclock/auth"
	"timeclock/config"
	"timeclock/jobs"
	"timeclock/models"
	"timeclock/repository"
	"timeclock/storage"
	"timeclock/utils"
	"timeclock/validation"
)

const dbTimeout = 10 * time.Second

// Handler carries everything the route handlers need. Fields are exported so
// tests can swap collaborators after NewHandler.
type Handler struct {
	Config     *config.Config
	Store      *repository.Store
	Dashboard  *auth.Sessions
	Employee   *auth.Sessions
	Setup      *auth.SetupState
	Images     storage.ImageStore
	Cleaner    *jobs.Cleaner
	Mailer     utils.Mailer
	PinSource  utils.IntSource
	HTTPClient *http.Client

	loc *time.Location
}

// NewHandler builds the handler set. images and mailer may be nil.
func NewHandler(cfg *config.Config, store *repository.Store, images storage.ImageStore, mailer utils.Mailer) *Handler {
	loc := cfg.Location()
	return &Handler{
		Config:     cfg,
		Store:      store,
		Dashboard:  auth.NewDashboardSessions(cfg.JWTSecret, cfg.SessionTTL, cfg.CookieDomain, cfg.CookieSecure),
		Employee:   auth.NewEmployeeSessions(cfg.EmployeeJWTSecret, cfg.EmployeeTTL, cfg.CookieDomain, cfg.CookieSecure),
		Setup:      &auth.SetupState{},
		Images:     images,
		Cleaner:    jobs.NewCleaner(store, images, loc),
		Mailer:     mailer,
		PinSource:  utils.DefaultIntSource,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		loc:        loc,
	}
}

// AnySession resolves either a dashboard or an employee principal.
func (h *Handler) AnySession() auth.Resolver {
	return auth.AnyOf{h.Dashboard, h.Employee}
}

func dbContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), dbTimeout)
}

func respondValidation(c *gin.Context, errs validation.Errors) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "issues": errs})
}

// respondError maps repository and model errors to status codes. Anything
// unrecognised is logged with op and answered with a generic 500.
func respondError(c *gin.Context, op string, err error) {
	var fe *models.FieldError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, repository.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "Already exists"})
	case errors.As(err, &fe):
		issues := validation.Errors{}
		for field, msg := range fe.Fields {
			issues.Add(field, msg)
		}
		respondValidation(c, issues)
	default:
		log.Printf("%s: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// bindJSON decodes the body into dst, answering 400 itself on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	return true
}

// pathID validates the :id parameter, answering 400 itself on failure.
func pathID(c *gin.Context) (primitive.ObjectID, bool) {
	id, errs := validation.ObjectID("id", c.Param("id"))
	if errs != nil {
		respondValidation(c, errs)
		return primitive.NilObjectID, false
	}
	return id, true
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
