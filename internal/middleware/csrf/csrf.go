package csrf

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const ContextKey = "csrf"

type Config struct {
	CookieName string
	HeaderName string
	FormField  string
	CookiePath string
	Secure     bool
	SameSite   http.SameSite
	MaxAge     time.Duration

	EnforceSameOrigin bool

	SkipPaths []string
}

func DefaultConfig() Config {
	return Config{
		CookieName:        "XSRF-TOKEN",
		HeaderName:        "X-CSRF-Token",
		FormField:         "csrf_token",
		CookiePath:        "/",
		SameSite:          http.SameSiteLaxMode,
		MaxAge:            24 * time.Hour,
		EnforceSameOrigin: true,
	}
}

// Middleware issues a double-submit token cookie on every response and, for
// unsafe methods, requires the same token in the header or form field.
func Middleware(cfg Config) echo.MiddlewareFunc {
	def := DefaultConfig()
	if cfg.CookieName == "" {
		cfg.CookieName = def.CookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = def.HeaderName
	}
	if cfg.FormField == "" {
		cfg.FormField = def.FormField
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = def.CookiePath
	}
	if cfg.SameSite == 0 {
		cfg.SameSite = def.SameSite
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = def.MaxAge
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}
	skipper := func(c echo.Context) bool {
		_, ok := skip[c.Request().URL.Path]
		return ok
	}

	token := middleware.CSRFWithConfig(middleware.CSRFConfig{
		Skipper:        skipper,
		TokenLookup:    "header:" + cfg.HeaderName + ",form:" + cfg.FormField,
		ContextKey:     ContextKey,
		CookieName:     cfg.CookieName,
		CookiePath:     cfg.CookiePath,
		CookieSecure:   cfg.Secure,
		CookieSameSite: cfg.SameSite,
		CookieMaxAge:   int(cfg.MaxAge.Seconds()),
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		checked := token(next)
		return func(c echo.Context) error {
			if skipper(c) {
				return next(c)
			}
			if cfg.EnforceSameOrigin && !isSafe(c.Request().Method) && !sameOrigin(c.Request()) {
				return echo.NewHTTPError(http.StatusForbidden, "invalid origin")
			}
			return checked(c)
		}
	}
}

func isSafe(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = r.Header.Get("Referer")
	}
	if origin == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, schemeOf(r)) && strings.EqualFold(u.Host, r.Host)
}

func schemeOf(r *http.Request) string {
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		return p
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
