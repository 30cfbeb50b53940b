package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopapi/internal/logging"
	"github.com/Skotchmaster/shopapi/internal/models"
	"github.com/Skotchmaster/shopapi/internal/search"
	"github.com/Skotchmaster/shopapi/internal/service"
	"github.com/Skotchmaster/shopapi/internal/transport"
)

const (
	msgInvalidProductData = "Invalid product data"
	msgInvalidProductID   = "Invalid product id"
	msgProductNotFound    = "Product not found"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := parseID(c.Param("id"))
	if err != nil {
		l.Warn("get_product_failed", "status", 400, "reason", "id is not a positive integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidProductID)
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_product_failed", "status", 404, "reason", "product does not exist", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, msgProductNotFound)
		}
		l.Error("get_product_failed", "status", 500, "reason", "cannot get product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, msgInternal)
	}

	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list_products")

	products, err := h.Svc.ListProducts(ctx)
	if err != nil {
		l.Error("list_products_error", "status", 500, "reason", "cannot list products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, msgInternal)
	}

	return c.JSON(http.StatusOK, transport.ToSummaries(products))
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidProductData)
	}

	product, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("product_create_error", "status", 400, "reason", "name and price are required", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, msgInvalidProductData)
		}
		l.Error("product_create_error", "status", 500, "reason", "cannot add product to db", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, msgInternal)
	}

	l.Info("create_product_success", "product_id", product.ID)
	return c.JSON(http.StatusOK, transport.CreatedResponse{Message: "Product added successfully", ID: product.ID})
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update_product")

	id, err := parseID(c.Param("id"))
	if err != nil {
		l.Warn("product_update_error", "status", 400, "reason", "id is not a positive integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidProductID)
	}

	var req transport.UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		if _, getErr := h.Svc.GetProduct(ctx, id); errors.Is(getErr, service.ErrNotFound) {
			l.Warn("product_update_error", "status", 404, "reason", "product does not exist", "error", getErr)
			return echo.NewHTTPError(http.StatusNotFound, msgProductNotFound)
		}
		l.Warn("product_update_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidProductData)
	}

	if _, err := h.Svc.UpdateProduct(ctx, id, req); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			l.Warn("product_update_error", "status", 404, "reason", "product does not exist", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, msgProductNotFound)
		case errors.Is(err, service.ErrValidation):
			l.Warn("product_update_error", "status", 400, "reason", "invalid field value", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, msgInvalidProductData)
		default:
			l.Error("product_update_error", "status", 500, "reason", "cannot update product", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, msgInternal)
		}
	}

	l.Info("update_product_success", "product_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Product updated successfully"})
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	id, err := parseID(c.Param("id"))
	if err != nil {
		l.Warn("product_delete_error", "status", 400, "reason", "id is not a positive integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidProductID)
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("product_delete_error", "status", 404, "reason", "product does not exist", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, msgProductNotFound)
		}
		l.Error("product_delete_error", "status", 500, "reason", "cannot delete product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, msgInternal)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Product deleted successfully"})
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search_products")

	var page, size int
	if err := echo.QueryParamsBinder(c).Int("page", &page).Int("size", &size).BindError(); err != nil {
		l.Warn("search_products_error", "status", 400, "reason", "page or size is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid page parameters")
	}

	res, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("search_products_error", "status", 400, "reason", "empty query", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Query is required")
		}
		level := slog.LevelError
		if errors.Is(err, search.ErrUnavailable) {
			level = slog.LevelWarn
		}
		l.Log(ctx, level, "search_products_error", "status", 503, "reason", "search backend failed", "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Search unavailable")
	}

	if res.Products == nil {
		res.Products = []models.Product{}
	}
	return c.JSON(http.StatusOK, res)
}
