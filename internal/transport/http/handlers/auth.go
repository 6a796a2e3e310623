package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/avelins/membergate/internal/transport/http/middleware"
	"github.com/avelins/membergate/internal/usecase"
)

// AuthHandler exposes the login and logout pages.
type AuthHandler struct {
	auth     *usecase.AuthService
	identity *usecase.IdentityService
	log      *zap.Logger
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService, identity *usecase.IdentityService, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{auth: auth, identity: identity, log: log}
}

// LoginForm renders the login page. A failed previous attempt is
// signalled through a query flag so the redirect stays cacheable-safe.
func (h *AuthHandler) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.tmpl", gin.H{
		"Title":  "Login",
		"Failed": c.Query("failed") == "1",
	})
}

// Login verifies the posted credentials and establishes the session.
// Whatever went wrong, the caller only ever sees a generic failure.
func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := h.auth.Authenticate(c.Request.Context(), username, password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			c.Redirect(http.StatusFound, middleware.LoginPath+"?failed=1")
			return
		}
		h.log.Error("login failed internally", zap.Error(err))
		renderError(c)
		return
	}

	if err := middleware.Login(c, h.identity.Token(user)); err != nil {
		h.log.Error("session save failed", zap.Error(err))
		renderError(c)
		return
	}

	c.Redirect(http.StatusFound, middleware.HomePath)
}

// Logout clears the session and returns to the home page, which will
// bounce the now-anonymous visitor to login.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := middleware.Logout(c); err != nil {
		h.log.Error("session clear failed", zap.Error(err))
	}
	c.Redirect(http.StatusFound, middleware.HomePath)
}

// renderError shows the generic failure page. Internals are logged,
// never surfaced.
func renderError(c *gin.Context) {
	c.HTML(http.StatusInternalServerError, "error.tmpl", gin.H{
		"Title": "Something went wrong",
	})
	c.Abort()
}
