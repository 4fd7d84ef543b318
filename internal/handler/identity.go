package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
)

// userIDKey is the gin context key for the resolved user id.
const userIDKey = "user_id"

// RequireIdentity extracts the authenticated user id from the X-User-ID
// header, set by the upstream gateway after authentication. Requests without
// a valid identity are rejected with 401.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parsePositiveInt(c.GetHeader("X-User-ID"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{
				Code:    http.StatusUnauthorized,
				Message: "missing or invalid user identity",
			})
			return
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

// userID returns the identity stored by RequireIdentity.
func userID(c *gin.Context) int {
	return c.GetInt(userIDKey)
}

// parsePositiveInt parses s as a strictly positive integer.
func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrap(err, "parse int")
	}
	if n <= 0 {
		return 0, errors.New("must be positive")
	}
	return n, nil
}
