package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"concerthub-api/internal/catalog"
	"concerthub-api/internal/events"
	"concerthub-api/internal/storage"
)

// Options tunes the state components.
type Options struct {
	NotificationCapacity int
	SessionTTL           time.Duration
}

// State is the application's single owner of mutable state. It is built
// once in main and handed to the handlers.
type State struct {
	Catalog       *catalog.Catalog
	Store         *storage.Store
	Notifications *NotificationLog
	Wishlist      *WishlistService
	Orders        *OrderService
	Settings      *SettingsService
	Sessions      *SessionService
	Checkout      *CheckoutService
}

// NewState wires every component against one durable store.
func NewState(cat *catalog.Catalog, store *storage.Store, pub events.Publisher, opts Options) *State {
	notifications := NewNotificationLog(store, pub, opts.NotificationCapacity)
	orders := NewOrderService(store, pub)
	sessions := NewSessionService(store.Backend(), opts.SessionTTL)

	return &State{
		Catalog:       cat,
		Store:         store,
		Notifications: notifications,
		Wishlist:      NewWishlistService(cat, store, notifications, pub),
		Orders:        orders,
		Settings:      NewSettingsService(store, pub),
		Sessions:      sessions,
		Checkout:      NewCheckoutService(cat, sessions, orders, notifications),
	}
}

// Load restores all four persisted collections. Each key is independent,
// so one failing backend read does not stop the others.
func (s *State) Load(ctx context.Context) error {
	var errs []error
	steps := []struct {
		name string
		load func(context.Context) error
	}{
		{"notifications", s.Notifications.Load},
		{"settings", s.Settings.Load},
		{"wishlist", s.Wishlist.Load},
		{"orders", s.Orders.Load},
	}
	for _, step := range steps {
		if err := step.load(ctx); err != nil {
			errs = append(errs, fmt.Errorf("load %s: %w", step.name, err))
		}
	}
	return errors.Join(errs...)
}

// Stats summarizes the state for the admin endpoint.
func (s *State) Stats() map[string]interface{} {
	stats := map[string]interface{}{
		"concerts":       s.Catalog.Len(),
		"wishlist":       s.Wishlist.Count(),
		"orders":         s.Orders.Count(),
		"notifications":  s.Notifications.Len(),
		"unread":         s.Notifications.Badge().Count,
		"wishlist_valid": true,
	}
	if err := s.Wishlist.Consistent(); err != nil {
		stats["wishlist_valid"] = false
		stats["wishlist_error"] = err.Error()
	}
	return stats
}
