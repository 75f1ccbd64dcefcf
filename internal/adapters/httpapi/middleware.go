// Package httpapi wires the gin router: admission middleware, the
// websocket endpoint, the polling fallback and the read-only API.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ledyaev/amity/internal/auth"
	"github.com/ledyaev/amity/internal/domain"
)

const identityKey = "identity"

// AuthRequired gates every realtime and API route. Rejected requests
// are closed with no connection state created.
func AuthRequired(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.TokenFromRequest(c.Request)
		profile, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(identityKey, profile)
		c.Next()
	}
}

// Identity returns the profile the admission middleware resolved.
func Identity(c *gin.Context) (domain.Profile, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Profile{}, false
	}
	p, ok := v.(domain.Profile)
	return p, ok
}
