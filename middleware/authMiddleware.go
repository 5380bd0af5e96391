package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"timeclock/auth"
	"timeclock/models"
	"timeclock/repository"
)

const (
	principalKey = "principal"
	userKey      = "user"
)

// RequireSession lets the request through when any of the resolver's schemes
// yields a principal.
func RequireSession(res auth.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := res.Read(c.Request)
		if p == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// RequireDashboard resolves the dashboard principal and loads the matching
// user so that role and rights reflect the stored account, not the token.
func RequireDashboard(res auth.Resolver, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := res.Read(c.Request)
		if p == nil || p.Kind != auth.KindDashboard {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, err := primitive.ObjectIDFromHex(p.ID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		user, err := users.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			log.Printf("Failed to load session user %s: %v", p.ID, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		p.Role = user.Role
		c.Set(principalKey, p)
		c.Set(userKey, user)
		c.Next()
	}
}

// RequireEmployee only admits the employee scheme.
func RequireEmployee(res auth.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := res.Read(c.Request)
		if p == nil || p.Kind != auth.KindEmployee {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// RequireAdmin must run after RequireDashboard.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !auth.IsAdmin(user.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

// RequireRight must run after RequireDashboard.
func RequireRight(right string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !auth.HasRight(user.Role, user.Rights, right) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

func CurrentPrincipal(c *gin.Context) *auth.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(*auth.Principal); ok {
			return p
		}
	}
	return nil
}

func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// CronSecretFromRequest reads "Authorization: Bearer <secret>", falling back
// to the ?secret= query parameter.
func CronSecretFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
	}
	return r.URL.Query().Get("secret")
}

// CronSecret admits unattended callers presenting the configured secret. An
// empty configured secret rejects everything.
func CronSecret(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := CronSecretFromRequest(c.Request)
		if expected == "" || got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
