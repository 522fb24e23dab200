package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/studybuddy/go-study-backend/internal/domain"
)

const (
	ctxKeyUserID = "userID"
	ctxKeyUser   = "user"
)

// SessionValidator resolves a bearer token to a user.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*domain.User, error)
}

// RequireAuth rejects requests without a valid Bearer session token and
// stores the resolved user in the context for handlers.
func RequireAuth(auth SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		user, err := auth.Validate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired session",
			})
			return
		}
		c.Set(ctxKeyUserID, user.ID)
		c.Set(ctxKeyUser, user)
		c.Next()
	}
}

// UserFrom returns the authenticated user stored by RequireAuth.
func UserFrom(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(ctxKeyUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok
}

// UserIDFrom returns the authenticated user's ID, or "".
func UserIDFrom(c *gin.Context) string {
	return c.GetString(ctxKeyUserID)
}
