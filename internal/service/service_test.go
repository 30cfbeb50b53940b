package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/currency"

	"github.com/Skotchmaster/shopapi/internal/cache"
	"github.com/Skotchmaster/shopapi/internal/dbtest"
	"github.com/Skotchmaster/shopapi/internal/events"
	"github.com/Skotchmaster/shopapi/internal/hash"
	"github.com/Skotchmaster/shopapi/internal/models"
	"github.com/Skotchmaster/shopapi/internal/repo"
	"github.com/Skotchmaster/shopapi/internal/search"
	"github.com/Skotchmaster/shopapi/internal/transport"
)

func init() {
	hash.Cost = bcrypt.MinCost
}

type recordedEvent struct {
	Topic string
	Key   string
	Event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Topic: topic, Key: key, Event: event})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		switch ev := e.Event.(type) {
		case events.UserEvent:
			out = append(out, ev.Type)
		case events.ProductEvent:
			out = append(out, ev.Type)
		case events.CartEvent:
			out = append(out, ev.Type)
		}
	}
	return out
}

type testEnv struct {
	Repo    *repo.GormRepo
	Events  *recordingPublisher
	Catalog *CatalogService
	Cart    *CartService
	Auth    *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, cache.Noop{}, search.Noop{})
}

func newTestEnvWith(t *testing.T, c cache.ProductCache, idx search.Index) *testEnv {
	t.Helper()

	r := repo.New(dbtest.SQLite(t))
	pub := &recordingPublisher{}
	catalog := NewCatalogService(r, c, pub, idx)

	return &testEnv{
		Repo:    r,
		Events:  pub,
		Catalog: catalog,
		Cart:    NewCartService(r, catalog, pub, currency.USD),
		Auth:    NewAuthService(r, pub, []byte("test-session-secret"), time.Hour),
	}
}

func newRedisCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisCache(client, time.Minute), mr
}

func (env *testEnv) createProduct(t *testing.T, name string, price float64) *models.Product {
	t.Helper()
	p, err := env.Catalog.CreateProduct(context.Background(), transport.CreateProductRequest{
		Name:  &name,
		Price: &price,
	})
	require.NoError(t, err)
	return p
}

func (env *testEnv) randomProduct(t *testing.T) *models.Product {
	t.Helper()
	return env.createProduct(t, gofakeit.ProductName(), gofakeit.Price(1, 500))
}

func (env *testEnv) createUser(t *testing.T) *models.User {
	t.Helper()
	u, err := env.Auth.Register(context.Background(), transport.RegisterRequest{
		Username: gofakeit.Username() + gofakeit.DigitN(6),
		Password: gofakeit.Password(true, true, true, false, false, 12),
	})
	require.NoError(t, err)
	return u
}
