package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// LoginPath is where unauthenticated requests to protected pages land.
	LoginPath = "/login"
	// HomePath is where authenticated requests to anonymous-only pages land.
	HomePath = "/"
)

// RequireAuthenticated admits requests that carry a resolved identity
// and redirects the rest to the login page. It performs no I/O; the
// identity was resolved by CurrentUser earlier in the chain.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUserFrom(c) == nil {
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAnonymous admits requests with no resolved identity and
// redirects already-authenticated ones to the home page.
func RequireAnonymous() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUserFrom(c) != nil {
			c.Redirect(http.StatusFound, HomePath)
			c.Abort()
			return
		}
		c.Next()
	}
}
