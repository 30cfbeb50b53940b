package cache

import (
	"context"
	"errors"

	"github.com/Skotchmaster/shopapi/internal/models"
)

type ProductCache interface {
	Get(ctx context.Context, id uint) (*models.Product, error)
	Set(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint) error
}

var ErrCacheMiss = errors.New("cache miss")

// Noop never stores anything; every Get is a miss.
type Noop struct{}

func (Noop) Get(context.Context, uint) (*models.Product, error) { return nil, ErrCacheMiss }
func (Noop) Set(context.Context, *models.Product) error         { return nil }
func (Noop) Delete(context.Context, uint) error                 { return nil }
