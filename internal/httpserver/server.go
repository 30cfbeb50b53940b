package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/shopapi/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/shopapi/internal/middleware/logging"
)

type Options struct {
	CSRFEnabled  bool
	CookieSecure bool
	AllowOrigins []string
}

// New builds the echo instance with the middleware chain shared by every route.
func New(log *slog.Logger, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.RequestID())
	e.Use(loggingmw.RequestLogger(log))
	e.Use(middleware.Recover())

	origins := opts.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderXRequestID, "X-CSRF-Token"},
	}))

	if opts.CSRFEnabled {
		e.Use(csrf.Middleware(csrf.Config{
			Secure:    opts.CookieSecure,
			SkipPaths: []string{"/login", "/register", "/health/live", "/health/ready"},
		}))
	}

	return e
}
