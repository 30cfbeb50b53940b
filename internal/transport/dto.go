package transport

import (
	"github.com/go-playground/validator/v10"

	"github.com/Skotchmaster/shopapi/internal/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs the struct tags of a request DTO.
func Validate(req any) error {
	return validate.Struct(req)
}

// Pointer fields tell an absent or null JSON field apart from a zero value.

type CreateProductRequest struct {
	Name        *string  `json:"name"        validate:"required"`
	Price       *float64 `json:"price"       validate:"required,gte=0"`
	Description *string  `json:"description"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name"        validate:"omitempty,min=1"`
	Price       *float64 `json:"price"       validate:"omitempty,gte=0"`
	Description *string  `json:"description"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ProductSummary struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func ToSummaries(products []models.Product) []ProductSummary {
	out := make([]ProductSummary, 0, len(products))
	for _, p := range products {
		out = append(out, ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price})
	}
	return out
}

type CartLineItem struct {
	ID           uint    `json:"id"`
	UserID       uint    `json:"user_id"`
	ProductID    uint    `json:"product_id"`
	ProductName  string  `json:"product_name"`
	ProductPrice float64 `json:"product_price"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CreatedResponse struct {
	Message string `json:"message"`
	ID      uint   `json:"id"`
}

type RegisteredResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

type CheckoutResponse struct {
	Message  string `json:"message"`
	Items    int64  `json:"items"`
	Total    string `json:"total"`
	Currency string `json:"currency"`
}
