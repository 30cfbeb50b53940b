// Package events publishes domain events about users, products and carts.
package events

import (
	"context"
	"time"
)

const (
	TopicUser    = "user_events"
	TopicProduct = "product_events"
	TopicCart    = "cart_events"
)

const (
	UserRegistered = "user_registered"
	UserLoggedIn   = "user_logged_in"
	UserLoggedOut  = "user_logged_out"

	ProductCreated = "product_created"
	ProductUpdated = "product_updated"
	ProductDeleted = "product_deleted"

	CartItemAdded   = "cart_item_added"
	CartItemRemoved = "cart_item_removed"
	CartCheckedOut  = "cart_checked_out"
)

type UserEvent struct {
	Type     string    `json:"type"`
	UserID   uint      `json:"user_id"`
	Username string    `json:"username,omitempty"`
	At       time.Time `json:"at"`
}

type ProductEvent struct {
	Type      string    `json:"type"`
	ProductID uint      `json:"product_id"`
	Name      string    `json:"name,omitempty"`
	Price     float64   `json:"price,omitempty"`
	At        time.Time `json:"at"`
}

type CartEvent struct {
	Type      string    `json:"type"`
	UserID    uint      `json:"user_id"`
	ProductID uint      `json:"product_id,omitempty"`
	Items     int       `json:"items,omitempty"`
	Total     string    `json:"total,omitempty"`
	At        time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
	Close() error
}

type Noop struct{}

func (Noop) Publish(context.Context, string, string, any) error { return nil }
func (Noop) Close() error                                       { return nil }
