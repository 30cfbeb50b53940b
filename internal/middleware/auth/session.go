package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopapi/internal/logging"
	"github.com/Skotchmaster/shopapi/internal/models"
	"github.com/Skotchmaster/shopapi/internal/service"
	"github.com/Skotchmaster/shopapi/internal/session"
	"github.com/Skotchmaster/shopapi/internal/tokens"
)

// ContextKeyUserID is the echo context key holding the authenticated user id.
const ContextKeyUserID = "user_id"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Session, error)
}

type SessionMiddleware struct {
	Auth Authenticator
}

func NewSessionMiddleware(a Authenticator) *SessionMiddleware {
	return &SessionMiddleware{Auth: a}
}

// RequireSession rejects the request with 401 unless the session cookie maps
// to a live session. Nothing downstream runs on failure.
func (m *SessionMiddleware) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "require_session")

		cookie, err := c.Cookie(tokens.CookieName)
		if err != nil || cookie.Value == "" {
			l.Warn("session_missing", "status", 401)
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		}

		sess, err := m.Auth.Authenticate(ctx, cookie.Value)
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				l.Warn("session_rejected", "status", 401, "error", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}
			l.Error("session_lookup_error", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}

		c.Set(ContextKeyUserID, sess.UserID)
		ctx = session.WithInfo(ctx, session.Info{UserID: sess.UserID, SessionID: sess.ID, Token: cookie.Value})
		ctx = logging.IntoContext(ctx, logging.FromContext(ctx).With("user_id", sess.UserID))
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
