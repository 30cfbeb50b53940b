package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shopapi/internal/cache"
	"github.com/Skotchmaster/shopapi/internal/events"
	"github.com/Skotchmaster/shopapi/internal/logging"
	"github.com/Skotchmaster/shopapi/internal/models"
	"github.com/Skotchmaster/shopapi/internal/repo"
	"github.com/Skotchmaster/shopapi/internal/search"
	"github.com/Skotchmaster/shopapi/internal/transport"
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Cache  cache.ProductCache
	Events events.Publisher
	Search search.Index

	sfg singleflight.Group
}

func NewCatalogService(r *repo.GormRepo, c cache.ProductCache, p events.Publisher, idx search.Index) *CatalogService {
	if c == nil {
		c = cache.Noop{}
	}
	if p == nil {
		p = events.Noop{}
	}
	if idx == nil {
		idx = search.Noop{}
	}
	return &CatalogService{Repo: r, Cache: c, Events: p, Search: idx}
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	if err := transport.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	product := &models.Product{Name: *req.Name, Price: *req.Price}
	if req.Description != nil {
		product.Description = *req.Description
	}

	if err := s.Repo.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.publish(ctx, events.ProductCreated, product)
	s.index(ctx, product)
	return product, nil
}

// GetProduct reads through the cache. Concurrent misses for the same id share
// one store query.
func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	l := logging.FromContext(ctx)

	v, err, _ := s.sfg.Do(strconv.FormatUint(uint64(id), 10), func() (any, error) {
		// shared by every waiter, so one caller going away must not fail the rest
		ctx := context.WithoutCancel(ctx)

		product, err := s.Cache.Get(ctx, id)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			l.Warn("product_cache_get_error", "product_id", id, "error", err)
		}

		product, err = s.Repo.GetProduct(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
			}
			return nil, fmt.Errorf("get product: %w", err)
		}

		if err := s.Cache.Set(ctx, product); err != nil {
			l.Warn("product_cache_set_error", "product_id", id, "error", err)
		}
		return product, nil
	})
	if err != nil {
		return nil, err
	}

	product := *v.(*models.Product)
	return &product, nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.Repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// UpdateProduct reports ErrNotFound for a missing id before looking at the
// payload.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, req transport.UpdateProductRequest) (*models.Product, error) {
	exists, err := s.Repo.ProductExists(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}

	if err := transport.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	product, err := s.Repo.UpdateProduct(ctx, id, repo.ProductPatch{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.invalidate(ctx, id)
	s.publish(ctx, events.ProductUpdated, product)
	s.index(ctx, product)
	return product, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return fmt.Errorf("delete product: %w", err)
	}

	s.invalidate(ctx, id)
	s.publish(ctx, events.ProductDeleted, &models.Product{ID: id})
	if err := s.Search.Remove(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("search_remove_error", "product_id", id, "error", err)
	}
	return nil
}

// SearchProducts runs a full-text query. page is 1-based; out of range
// page or size values fall back to the defaults.
func (s *CatalogService) SearchProducts(ctx context.Context, query string, page, size int) (*search.Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", ErrValidation)
	}
	from, limit := search.Window(page, size)
	return s.Search.Search(ctx, query, from, limit)
}

func (s *CatalogService) invalidate(ctx context.Context, id uint) {
	if err := s.Cache.Delete(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("product_cache_delete_error", "product_id", id, "error", err)
	}
}

func (s *CatalogService) index(ctx context.Context, product *models.Product) {
	if err := s.Search.Index(ctx, product); err != nil {
		logging.FromContext(ctx).Warn("search_index_error", "product_id", product.ID, "error", err)
	}
}

func (s *CatalogService) publish(ctx context.Context, typ string, product *models.Product) {
	ev := events.ProductEvent{
		Type:      typ,
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		At:        time.Now().UTC(),
	}
	key := strconv.FormatUint(uint64(product.ID), 10)
	if err := s.Events.Publish(ctx, events.TopicProduct, key, ev); err != nil {
		logging.FromContext(ctx).Warn("publish_event_error", "type", typ, "error", err)
	}
}
