package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/avelins/membergate/internal/infra/security"
	"github.com/avelins/membergate/internal/transport/http/middleware"
	"github.com/avelins/membergate/internal/usecase"
)

// RegistrationHandler exposes the registration page.
type RegistrationHandler struct {
	registration *usecase.RegistrationService
	log          *zap.Logger
}

// NewRegistrationHandler constructs RegistrationHandler.
func NewRegistrationHandler(registration *usecase.RegistrationService, log *zap.Logger) *RegistrationHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RegistrationHandler{registration: registration, log: log}
}

// Form renders the registration page.
func (h *RegistrationHandler) Form(c *gin.Context) {
	c.HTML(http.StatusOK, "register.tmpl", gin.H{
		"Title": "Register",
	})
}

// Submit creates the account and sends the new member to the login
// page. An email that is already registered also lands on login, since
// the address belongs to an existing member and that is where they can
// proceed.
func (h *RegistrationHandler) Submit(c *gin.Context) {
	input := usecase.RegistrationInput{
		FirstName: c.PostForm("first_name"),
		LastName:  c.PostForm("last_name"),
		Username:  c.PostForm("username"),
		Email:     c.PostForm("email"),
		Password:  c.PostForm("password"),
	}

	_, err := h.registration.Register(c.Request.Context(), input)
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, middleware.LoginPath)
	case errors.Is(err, usecase.ErrEmailTaken):
		c.Redirect(http.StatusFound, middleware.LoginPath)
	case errors.Is(err, usecase.ErrUsernameTaken):
		c.HTML(http.StatusConflict, "register.tmpl", gin.H{
			"Title": "Register",
			"Error": "That username is already taken.",
		})
	case errors.Is(err, usecase.ErrValidation):
		c.HTML(http.StatusBadRequest, "register.tmpl", gin.H{
			"Title": "Register",
			"Error": validationMessage(err),
		})
	default:
		h.log.Error("registration failed internally", zap.Error(err))
		renderError(c)
	}
}

// validationMessage extracts a user-presentable message from a
// validation failure without leaking wrapped internals.
func validationMessage(err error) string {
	var violation *security.PasswordValidationError
	if errors.As(err, &violation) {
		return violation.Message
	}
	return "Please fill in all fields."
}
