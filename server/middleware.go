package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storagesystem/api/auth"
)

// ClaimsContextKey is the gin context key under which the middleware stores
// the authenticated caller's claims.
const ClaimsContextKey = "authClaims"

// AuthRequired authenticates the Authorization header on every request and
// aborts with the matching status code on failure: 400 for a missing or
// malformed header, 401 for a rejected token, 500 for server-side key
// problems. On success the claims are stored in the gin context.
func AuthRequired(service *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := service.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			abortWithAuthError(c, err)
			return
		}

		c.Set(ClaimsContextKey, claims)
		c.Next()
	}
}

func abortWithAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrBearerMissing):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Authorization header is missing."})
	case errors.Is(err, auth.ErrBearerMalformed):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Authorization header format must be Bearer {token}."})
	case errors.Is(err, auth.ErrTokenInvalid):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token is invalid."})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong while checking the token."})
	}
}

// SubjectFromContext returns the authenticated caller's "sub" claim, or the
// empty string outside an authenticated request.
func SubjectFromContext(c *gin.Context) string {
	value, ok := c.Get(ClaimsContextKey)
	if !ok {
		return ""
	}

	claims, ok := value.(auth.Claims)
	if !ok {
		return ""
	}

	subject, _ := claims["sub"].(string)
	return subject
}
