package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avelins/membergate/internal/transport/http/middleware"
)

// PagesHandler renders the member-only content pages.
type PagesHandler struct{}

// NewPagesHandler constructs PagesHandler.
func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

// Home renders the landing page for the signed-in member. The access
// gate guarantees an identity is present by the time this runs.
func (h *PagesHandler) Home(c *gin.Context) {
	user := middleware.CurrentUserFrom(c)

	c.HTML(http.StatusOK, "home.tmpl", gin.H{
		"Title": "Home",
		"User":  user,
	})
}
