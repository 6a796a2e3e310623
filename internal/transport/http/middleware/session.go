package middleware

import (
	"errors"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/avelins/membergate/internal/core/domain"
	"github.com/avelins/membergate/internal/usecase"
)

const (
	// SessionKeyUserID is the only field this application reads or
	// writes within the session: the serialized identity token.
	SessionKeyUserID = "user_id"

	// ctxUserKey is where the resolved identity lives for the rest of
	// the request. Handlers and gates read it through CurrentUserFrom.
	ctxUserKey = "auth.current_user"
)

// CurrentUser resolves the session identity token into a full user
// record once per request and stores it in the request context. A token
// that no longer resolves is equivalent to no session: the session is
// cleared and the request continues as anonymous. Store failures during
// resolution also degrade to anonymous rather than failing the request.
func CurrentUser(identity *usecase.IdentityService, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		session := sessions.Default(c)

		token, ok := session.Get(SessionKeyUserID).(int64)
		if !ok {
			c.Next()
			return
		}

		user, err := identity.Resolve(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, usecase.ErrIdentityUnknown) {
				session.Clear()
				if saveErr := session.Save(); saveErr != nil {
					log.Warn("failed to clear stale session", zap.Error(saveErr))
				}
				log.Info("cleared session with stale identity", zap.Int64("token", token))
			} else {
				log.Error("identity resolution failed", zap.Error(err))
			}
			c.Next()
			return
		}

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// CurrentUserFrom returns the identity resolved for this request, or
// nil when the request is anonymous.
func CurrentUserFrom(c *gin.Context) *domain.User {
	value, exists := c.Get(ctxUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*domain.User)
	if !ok {
		return nil
	}
	return user
}

// Login records the identity token in the session after successful
// authentication.
func Login(c *gin.Context, token int64) error {
	session := sessions.Default(c)
	session.Set(SessionKeyUserID, token)
	return session.Save()
}

// Logout discards the session entirely.
func Logout(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	return session.Save()
}
