// Package search keeps a full-text index of the catalog.
package search

import (
	"context"
	"errors"

	"github.com/Skotchmaster/shopapi/internal/models"
)

var ErrUnavailable = errors.New("search unavailable")

type Result struct {
	Total    int64            `json:"total"`
	Products []models.Product `json:"items"`
}

type Index interface {
	Index(ctx context.Context, product *models.Product) error
	Remove(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, from, size int) (*Result, error)
}

type Noop struct{}

func (Noop) Index(context.Context, *models.Product) error { return nil }
func (Noop) Remove(context.Context, uint) error           { return nil }
func (Noop) Search(context.Context, string, int, int) (*Result, error) {
	return nil, ErrUnavailable
}
