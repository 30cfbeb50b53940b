package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shopapi/internal/events"
	"github.com/Skotchmaster/shopapi/internal/logging"
	"github.com/Skotchmaster/shopapi/internal/repo"
	"github.com/Skotchmaster/shopapi/internal/transport"
)

type CartService struct {
	Repo     *repo.GormRepo
	Catalog  *CatalogService
	Events   events.Publisher
	Currency currency.Unit
}

type CheckoutSummary struct {
	Items    int64
	Total    decimal.Decimal
	Currency currency.Unit
}

func NewCartService(r *repo.GormRepo, catalog *CatalogService, p events.Publisher, cur currency.Unit) *CartService {
	if p == nil {
		p = events.Noop{}
	}
	return &CartService{Repo: r, Catalog: catalog, Events: p, Currency: cur}
}

// Add puts one more unit of the product into the user's cart.
func (s *CartService) Add(ctx context.Context, userID, productID uint) error {
	if _, err := s.Catalog.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: product %d does not exist", ErrBadRequest, productID)
		}
		return err
	}

	if _, err := s.Repo.AddCartItem(ctx, userID, productID); err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}

	s.publish(ctx, events.CartEvent{Type: events.CartItemAdded, UserID: userID, ProductID: productID})
	return nil
}

// Remove deletes a single unit; other units of the same product stay.
func (s *CartService) Remove(ctx context.Context, userID, productID uint) error {
	if _, err := s.Repo.RemoveOneCartItem(ctx, userID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %d is not in the cart", ErrBadRequest, productID)
		}
		return fmt.Errorf("remove cart item: %w", err)
	}

	s.publish(ctx, events.CartEvent{Type: events.CartItemRemoved, UserID: userID, ProductID: productID})
	return nil
}

// View returns one line per cart row, in insertion order. Rows whose product
// has disappeared are skipped.
func (s *CartService) View(ctx context.Context, userID uint) ([]transport.CartLineItem, error) {
	l := logging.FromContext(ctx)

	items, err := s.Repo.LoadCartItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	lines := make([]transport.CartLineItem, 0, len(items))
	for _, item := range items {
		product, err := s.Catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				l.Warn("cart_orphan_item", "cart_item_id", item.ID, "product_id", item.ProductID)
				continue
			}
			return nil, err
		}

		lines = append(lines, transport.CartLineItem{
			ID:           item.ID,
			UserID:       item.UserID,
			ProductID:    item.ProductID,
			ProductName:  product.Name,
			ProductPrice: product.Price,
		})
	}
	return lines, nil
}

// Checkout empties the user's cart. The total is priced from the cart as it
// was just before clearing; no order is recorded.
func (s *CartService) Checkout(ctx context.Context, userID uint) (*CheckoutSummary, error) {
	lines, err := s.View(ctx, userID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(decimal.NewFromFloat(line.ProductPrice))
	}

	n, err := s.Repo.ClearCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	summary := &CheckoutSummary{Items: n, Total: total.Round(2), Currency: s.Currency}
	s.publish(ctx, events.CartEvent{
		Type:   events.CartCheckedOut,
		UserID: userID,
		Items:  int(n),
		Total:  summary.Total.StringFixed(2),
	})
	return summary, nil
}

func (s *CartService) publish(ctx context.Context, ev events.CartEvent) {
	ev.At = time.Now().UTC()
	key := strconv.FormatUint(uint64(ev.UserID), 10)
	if err := s.Events.Publish(ctx, events.TopicCart, key, ev); err != nil {
		logging.FromContext(ctx).Warn("publish_event_error", "type", ev.Type, "error", err)
	}
}
