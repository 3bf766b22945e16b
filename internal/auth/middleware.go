package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sandipsawant10/smart-task-manager/internal/repo"
)

const contextKeyUserID = "user_id"
const contextKeyEmail = "user_email"

// UserIDFromContext returns the current user ID set by RequireAuth.
// uuid.Nil if not set.
func UserIDFromContext(c *gin.Context) uuid.UUID {
	v, ok := c.Get(contextKeyUserID)
	if !ok {
		return uuid.Nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

// EmailFromContext returns the current user's email set by RequireAuth.
func EmailFromContext(c *gin.Context) string {
	v, ok := c.Get(contextKeyEmail)
	if !ok {
		return ""
	}
	email, _ := v.(string)
	return email
}

// RequireAuth returns a middleware that checks for a valid bearer token,
// resolves the embedded user against the store, and sets the current user
// in context. If missing or invalid, responds with 401. This is the single
// enforcement point for "who is calling".
func RequireAuth(tokens *TokenManager, users repo.UserRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		// Token may outlive the account; re-check the user still exists.
		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(contextKeyUserID, user.ID)
		c.Set(contextKeyEmail, user.Email)
		c.Next()
	}
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
