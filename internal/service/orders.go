package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"concerthub-api/internal/events"
	"concerthub-api/internal/model"
	"concerthub-api/internal/storage"
)

const (
	// OrderIDPrefix starts every order id.
	OrderIDPrefix = "ORD-"

	orderIDLength   = 9
	orderIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	orderIDAttempts = 8
)

// OrderService owns the append-only order log.
type OrderService struct {
	mu     sync.Mutex
	store  *storage.Store
	events events.Publisher
	orders []model.Order
	ids    map[string]struct{}

	now  func() time.Time
	rand io.Reader
}

// NewOrderService creates an empty order log.
func NewOrderService(store *storage.Store, pub events.Publisher) *OrderService {
	if pub == nil {
		pub = events.Discard{}
	}
	return &OrderService{
		store:  store,
		events: pub,
		orders: []model.Order{},
		ids:    make(map[string]struct{}),
		now:    now,
		rand:   rand.Reader,
	}
}

// Load restores persisted orders.
func (s *OrderService) Load(ctx context.Context) error {
	var loaded []model.Order
	if _, err := s.store.Load(ctx, storage.KeyOrders, &loaded); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders = []model.Order{}
	s.ids = make(map[string]struct{}, len(loaded))
	for _, o := range loaded {
		if _, dup := s.ids[o.ID]; dup {
			log.Printf("[OrderService] Dropping duplicate order %s", o.ID)
			continue
		}
		s.ids[o.ID] = struct{}{}
		s.orders = append(s.orders, o)
	}

	log.Printf("[OrderService] Loaded %d orders", len(s.orders))
	return nil
}

// Record appends a confirmed order built from in and returns it. The id is
// unique among all recorded orders.
func (s *OrderService) Record(ctx context.Context, in model.OrderInput) (model.Order, error) {
	if err := validateOrderInput(in); err != nil {
		return model.Order{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.newIDLocked()
	if err != nil {
		return model.Order{}, err
	}

	order := model.Order{
		ID:              id,
		ConcertID:       in.ConcertID,
		ConcertTitle:    in.ConcertTitle,
		ConcertDate:     in.ConcertDate,
		ConcertLocation: in.ConcertLocation,
		Quantity:        in.Quantity,
		TotalPrice:      in.TotalPrice,
		CustomerName:    in.CustomerName,
		CustomerEmail:   in.CustomerEmail,
		OrderDate:       s.now(),
		Status:          model.OrderStatusConfirmed,
	}
	s.orders = append(s.orders, order)
	s.ids[id] = struct{}{}

	log.Printf("[OrderService] Recorded order %s: concert=%d qty=%d total=%s",
		order.ID, order.ConcertID, order.Quantity, order.TotalPrice)

	err = s.store.Save(ctx, storage.KeyOrders, s.orders)
	if err != nil {
		log.Printf("[OrderService] Save failed: %v", err)
	}
	s.events.Publish(events.Event{Type: events.OrderRecorded, Payload: order.ID})
	return order, err
}

func validateOrderInput(in model.OrderInput) error {
	var fields []FieldError
	if in.ConcertID <= 0 {
		fields = append(fields, FieldError{Field: "concert_id", Message: "must be positive"})
	}
	if in.Quantity <= 0 {
		fields = append(fields, FieldError{Field: "quantity", Message: "must be positive"})
	}
	if len(fields) > 0 {
		return &ValidationError{Message: "invalid order", Fields: fields}
	}
	return nil
}

func (s *OrderService) newIDLocked() (string, error) {
	for i := 0; i < orderIDAttempts; i++ {
		id, err := generateOrderID(s.rand)
		if err != nil {
			return "", err
		}
		if _, taken := s.ids[id]; !taken {
			return id, nil
		}
		log.Printf("[OrderService] Order id %s already taken, regenerating", id)
	}
	return "", fmt.Errorf("failed to generate a unique order id after %d attempts", orderIDAttempts)
}

// generateOrderID draws uppercase alphanumerics from r without modulo bias.
func generateOrderID(r io.Reader) (string, error) {
	const limit = 256 - 256%len(orderIDAlphabet)

	out := make([]byte, 0, len(OrderIDPrefix)+orderIDLength)
	out = append(out, OrderIDPrefix...)

	buf := make([]byte, orderIDLength*2)
	for len(out) < cap(out) {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", fmt.Errorf("failed to generate order id: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, orderIDAlphabet[int(b)%len(orderIDAlphabet)])
			if len(out) == cap(out) {
				break
			}
		}
	}
	return string(out), nil
}

// IsOrderID reports whether id has the ORD- plus nine alphanumerics form.
func IsOrderID(id string) bool {
	if len(id) != len(OrderIDPrefix)+orderIDLength || id[:len(OrderIDPrefix)] != OrderIDPrefix {
		return false
	}
	for _, c := range id[len(OrderIDPrefix):] {
		if !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

// List returns orders in the order they were recorded.
func (s *OrderService) List() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Order{}, s.orders...)
}

// Get returns one order.
func (s *OrderService) Get(id string) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return model.Order{}, fmt.Errorf("order %s: %w", id, ErrNotFound)
}

// Count returns the number of recorded orders.
func (s *OrderService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}
