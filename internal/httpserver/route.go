package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shopapi/internal/db"
	"github.com/Skotchmaster/shopapi/internal/logging"
	authmw "github.com/Skotchmaster/shopapi/internal/middleware/auth"
	"github.com/Skotchmaster/shopapi/internal/transport"
)

type Deps struct {
	CatalogHandler *CatalogHTTP
	CartHandler    *CartHTTP
	AuthHandler    *AuthHTTP
	Session        *authmw.SessionMiddleware
	DB             *gorm.DB

	// SearchEnabled registers /api/products/search.
	SearchEnabled bool
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Hello World"})
	})
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)

	requireSession := d.Session.RequireSession

	e.POST("/register", d.AuthHandler.Register)
	e.POST("/login", d.AuthHandler.Login)
	e.POST("/logout", d.AuthHandler.Logout, requireSession)

	products := e.Group("/api/products")
	products.GET("", d.CatalogHandler.ListProducts)
	if d.SearchEnabled {
		products.GET("/search", d.CatalogHandler.SearchProducts)
	}
	products.GET("/:id", d.CatalogHandler.GetProduct)
	products.POST("/add", d.CatalogHandler.CreateProduct, requireSession)
	products.PUT("/update/:id", d.CatalogHandler.UpdateProduct, requireSession)
	products.DELETE("/delete/:id", d.CatalogHandler.DeleteProduct, requireSession)

	cart := e.Group("/api/cart", requireSession)
	cart.GET("", d.CartHandler.View)
	cart.POST("/add/:productId", d.CartHandler.Add)
	cart.DELETE("/remove/:productId", d.CartHandler.Remove)
	cart.POST("/checkout", d.CartHandler.Checkout)
}

func (d *Deps) ready(c echo.Context) error {
	ctx := c.Request().Context()
	if err := db.Ping(ctx, d.DB); err != nil {
		logging.FromContext(ctx).Warn("readiness_failed", "status", 503, "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
	}
	return c.NoContent(http.StatusOK)
}
