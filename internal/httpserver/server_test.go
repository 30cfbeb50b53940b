package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/currency"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shopapi/internal/cache"
	"github.com/Skotchmaster/shopapi/internal/dbtest"
	"github.com/Skotchmaster/shopapi/internal/events"
	"github.com/Skotchmaster/shopapi/internal/hash"
	"github.com/Skotchmaster/shopapi/internal/logging"
	authmw "github.com/Skotchmaster/shopapi/internal/middleware/auth"
	"github.com/Skotchmaster/shopapi/internal/repo"
	"github.com/Skotchmaster/shopapi/internal/search"
	"github.com/Skotchmaster/shopapi/internal/service"
	"github.com/Skotchmaster/shopapi/internal/tokens"
)

const (
	seedUsername = "shopper"
	seedPassword = "correct horse"
)

func init() {
	hash.Cost = bcrypt.MinCost
}

type testEnv struct {
	E       *echo.Echo
	DB      *gorm.DB
	Catalog *service.CatalogService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithSearch(t, nil)
}

func newTestEnvWithSearch(t *testing.T, idx search.Index) *testEnv {
	t.Helper()

	gdb := dbtest.SQLite(t)
	r := repo.New(gdb)

	catalog := service.NewCatalogService(r, cache.Noop{}, events.Noop{}, idx)
	cart := service.NewCartService(r, catalog, events.Noop{}, currency.USD)
	auth := service.NewAuthService(r, events.Noop{}, []byte("test-secret"), time.Hour)

	_, err := auth.SeedUser(context.Background(), seedUsername, seedPassword)
	require.NoError(t, err)

	e := New(logging.Discard(), Options{})
	Register(e, &Deps{
		CatalogHandler: &CatalogHTTP{Svc: catalog},
		CartHandler:    &CartHTTP{Svc: cart},
		AuthHandler:    &AuthHTTP{Svc: auth},
		Session:        authmw.NewSessionMiddleware(auth),
		DB:             gdb,
		SearchEnabled:  idx != nil,
	})

	return &testEnv{E: e, DB: gdb, Catalog: catalog}
}

func (env *testEnv) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/login", map[string]string{
		"username": seedUsername,
		"password": seedPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == tokens.CookieName {
			return ck
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]any](t, rec)["message"].(string)
}
