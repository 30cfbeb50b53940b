package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopapi/internal/logging"
	"github.com/Skotchmaster/shopapi/internal/service"
	"github.com/Skotchmaster/shopapi/internal/session"
	"github.com/Skotchmaster/shopapi/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func currentUser(c echo.Context) (uint, error) {
	id, ok := session.UserIDFrom(c.Request().Context())
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	return id, nil
}

func (h *CartHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	productID, err := parseID(c.Param("productId"))
	if err != nil {
		l.Warn("cart_add_error", "status", 400, "reason", "product id is not a positive integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidProductID)
	}

	if err := h.Svc.Add(ctx, userID, productID); err != nil {
		if errors.Is(err, service.ErrBadRequest) {
			l.Warn("cart_add_error", "status", 400, "reason", "product does not exist", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid product")
		}
		l.Error("cart_add_error", "status", 500, "reason", "cannot add item", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, msgInternal)
	}

	l.Info("cart_add_success", "product_id", productID)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Item added to cart successfully"})
}

func (h *CartHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	productID, err := parseID(c.Param("productId"))
	if err != nil {
		l.Warn("cart_remove_error", "status", 400, "reason", "product id is not a positive integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidProductID)
	}

	if err := h.Svc.Remove(ctx, userID, productID); err != nil {
		if errors.Is(err, service.ErrBadRequest) {
			l.Warn("cart_remove_error", "status", 400, "reason", "no matching cart row", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Item not in cart")
		}
		l.Error("cart_remove_error", "status", 500, "reason", "cannot remove item", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, msgInternal)
	}

	l.Info("cart_remove_success", "product_id", productID)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Item removed from cart successfully"})
}

func (h *CartHTTP) View(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.view")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	lines, err := h.Svc.View(ctx, userID)
	if err != nil {
		l.Error("cart_view_error", "status", 500, "reason", "cannot load cart", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, msgInternal)
	}

	return c.JSON(http.StatusOK, lines)
}

func (h *CartHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.checkout")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	summary, err := h.Svc.Checkout(ctx, userID)
	if err != nil {
		l.Error("cart_checkout_error", "status", 500, "reason", "cannot clear cart", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, msgInternal)
	}

	l.Info("cart_checkout_success", "items", summary.Items, "total", summary.Total.StringFixed(2))
	return c.JSON(http.StatusOK, transport.CheckoutResponse{
		Message:  "Checkout successful",
		Items:    summary.Items,
		Total:    summary.Total.StringFixed(2),
		Currency: summary.Currency.String(),
	})
}
