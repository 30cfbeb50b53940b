package search

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/Skotchmaster/shopapi/internal/models"
)

const (
	tripAfter   = 5
	openTimeout = 30 * time.Second
)

// Breaker stops calling the wrapped index after repeated failures and reports
// ErrUnavailable until the open period has passed.
type Breaker struct {
	next Index
	cb   *gobreaker.CircuitBreaker[any]
}

func NewBreaker(next Index) *Breaker {
	return newBreaker(next, openTimeout)
}

func newBreaker(next Index, timeout time.Duration) *Breaker {
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    "search",
		Timeout: timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= tripAfter
		},
	})
	return &Breaker{next: next, cb: cb}
}

func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func (b *Breaker) Index(ctx context.Context, product *models.Product) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.Index(ctx, product)
	})
	return mapOpen(err)
}

func (b *Breaker) Remove(ctx context.Context, id uint) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.Remove(ctx, id)
	})
	return mapOpen(err)
}

func (b *Breaker) Search(ctx context.Context, query string, from, size int) (*Result, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.next.Search(ctx, query, from, size)
	})
	if err != nil {
		return nil, mapOpen(err)
	}
	return v.(*Result), nil
}

func mapOpen(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.Join(ErrUnavailable, err)
	}
	return err
}
