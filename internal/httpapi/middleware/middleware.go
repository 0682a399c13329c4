package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cobom/geoloc193/internal/auth"
	"github.com/cobom/geoloc193/internal/common"
	"github.com/cobom/geoloc193/internal/models"
	"github.com/cobom/geoloc193/internal/request"
)

const callerKey = "caller"

// SessionChecker verifies the JWT's session token is still the live one.
type SessionChecker interface {
	Validate(ctx context.Context, userID uint64, session string) error
}

func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("panic recovered: %v", r)
				common.Fail(c, http.StatusInternalServerError, 50000, "internal error")
				c.Abort()
			}
		}()
		c.Next()
	}
}

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}

// AuthRequired parses the Bearer token, checks the signature and the session
// claim, and stores the caller identity for handlers.
func AuthRequired(secret string, sessions SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			common.Fail(c, http.StatusUnauthorized, 40100, "missing bearer token")
			c.Abort()
			return
		}

		claims, err := auth.ParseJWT(strings.TrimPrefix(header, "Bearer "), secret)
		if err != nil {
			common.Fail(c, http.StatusUnauthorized, 40101, "invalid token")
			c.Abort()
			return
		}

		if sessions != nil {
			if err := sessions.Validate(c.Request.Context(), claims.UserID, claims.Session); err != nil {
				common.Fail(c, http.StatusUnauthorized, 40102, "session expired, log in again")
				c.Abort()
				return
			}
		}

		c.Set(callerKey, request.Caller{ID: claims.UserID, Role: models.Role(claims.Role)})
		c.Next()
	}
}

// CallerFrom returns the authenticated caller set by AuthRequired.
func CallerFrom(c *gin.Context) (request.Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return request.Caller{}, false
	}
	caller, ok := v.(request.Caller)
	return caller, ok
}
