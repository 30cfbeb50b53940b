package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopapi/internal/logging"
	"github.com/Skotchmaster/shopapi/internal/service"
	"github.com/Skotchmaster/shopapi/internal/session"
	"github.com/Skotchmaster/shopapi/internal/tokens"
	"github.com/Skotchmaster/shopapi/internal/transport"
)

const cookiePath = "/"

type AuthHTTP struct {
	Svc          *service.AuthService
	CookieSecure bool
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user data")
	}

	user, err := h.Svc.Register(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("register_error", "status", 400, "reason", "username and password are required", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid user data")
		case errors.Is(err, service.ErrConflict):
			l.Warn("register_error", "status", 409, "reason", "username taken", "error", err)
			return echo.NewHTTPError(http.StatusConflict, "Username already exists")
		default:
			l.Error("register_error", "status", 500, "reason", "cannot create user", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, msgInternal)
		}
	}

	l.Info("register_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, transport.RegisteredResponse{Message: "User registered successfully", Username: user.Username})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 401, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	issued, err := h.Svc.Login(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			l.Warn("login_error", "status", 401, "reason", "invalid credentials", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
		}
		l.Error("login_error", "status", 500, "reason", "cannot open session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, msgInternal)
	}

	c.SetCookie(tokens.CreateCookie(tokens.CookieName, issued.Token, cookiePath, issued.ExpiresAt, h.CookieSecure))

	l.Info("login_success", "user_id", issued.UserID)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Logged in successfully"})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	info, ok := session.InfoFrom(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	if err := h.Svc.Logout(ctx, info.Token); err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			l.Warn("logout_error", "status", 401, "reason", "session not active", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		}
		l.Error("logout_error", "status", 500, "reason", "cannot revoke session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, msgInternal)
	}

	c.SetCookie(tokens.DeleteCookie(tokens.CookieName, cookiePath, h.CookieSecure))

	l.Info("logout_success", "user_id", info.UserID)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Logged out successfully"})
}
