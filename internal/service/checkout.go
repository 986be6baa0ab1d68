package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"concerthub-api/internal/catalog"
	"concerthub-api/internal/model"
	"concerthub-api/pkg/money"
)

// CheckoutState is a step of the purchase flow.
type CheckoutState string

const (
	StateNoSelection CheckoutState = "no_selection"
	StatePriced      CheckoutState = "priced"
	StateSubmitting  CheckoutState = "submitting"
	StateSuccess     CheckoutState = "success"
	StateFailed      CheckoutState = "failed"
)

// Quantity bounds offered by the checkout form.
const (
	MinQuantity = 1
	MaxQuantity = 10
)

// Messages shown to the visitor.
const (
	msgNoSelection     = "No concert selected."
	msgConcertNotFound = "Concert not found."
	msgMissingFields   = "Please fill in all required fields"
)

// Checkout is the purchase state derived from one selected concert.
type Checkout struct {
	State     CheckoutState `json:"state"`
	Concert   *model.Item   `json:"concert,omitempty"`
	Quantity  int           `json:"quantity"`
	UnitPrice money.Price   `json:"unit_price"`
	Total     money.Price   `json:"total"`
	Display   string        `json:"total_display"`
	OrderID   string        `json:"order_id,omitempty"`
	Message   string        `json:"message,omitempty"`
}

// NewCheckout prices a single ticket for item, or returns a NoSelection
// checkout when item is nil.
func NewCheckout(item *model.Item) *Checkout {
	if item == nil {
		return &Checkout{State: StateNoSelection, Message: msgNoSelection}
	}
	it := item.Clone()
	c := &Checkout{
		State:     StatePriced,
		Concert:   &it,
		Quantity:  MinQuantity,
		UnitPrice: it.Price,
	}
	c.reprice()
	return c
}

func (c *Checkout) reprice() {
	c.Total = c.UnitPrice.Times(c.Quantity)
	c.Display = c.Total.String()
}

// SetQuantity changes the ticket count and recomputes the total.
func (c *Checkout) SetQuantity(q int) error {
	switch c.State {
	case StateNoSelection:
		return fmt.Errorf("%s: %w", msgNoSelection, ErrNotFound)
	case StateSuccess:
		return ErrCheckoutClosed
	}
	if q < MinQuantity || q > MaxQuantity {
		return &ValidationError{
			Message: fmt.Sprintf("quantity must be between %d and %d", MinQuantity, MaxQuantity),
			Fields:  []FieldError{{Field: "quantity", Message: "out of range"}},
		}
	}
	c.Quantity = q
	c.reprice()
	return nil
}

// Begin moves a priced or failed checkout into Submitting.
func (c *Checkout) Begin() error {
	switch c.State {
	case StatePriced, StateFailed:
		c.State = StateSubmitting
		c.Message = ""
		return nil
	case StateSuccess:
		return ErrCheckoutClosed
	case StateSubmitting:
		return fmt.Errorf("checkout is already submitting: %w", ErrValidation)
	default:
		return fmt.Errorf("%s: %w", msgNoSelection, ErrNotFound)
	}
}

// Fail ends a submission with a recoverable error.
func (c *Checkout) Fail(message string) {
	c.State = StateFailed
	c.Message = message
}

// Succeed ends a submission with the recorded order.
func (c *Checkout) Succeed(orderID string) {
	c.State = StateSuccess
	c.OrderID = orderID
	c.Message = "Payment successful! Total: " + c.Display
}

// Terminal reports whether the checkout accepts no further changes.
func (c *Checkout) Terminal() bool {
	return c.State == StateSuccess
}

// PaymentForm is the submitted checkout form. A zero Quantity keeps the
// current one.
type PaymentForm struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	CardNumber string `json:"card_number"`
	Quantity   int    `json:"quantity,omitempty"`
}

// Validate requires every customer field.
func (f PaymentForm) Validate() error {
	var fields []FieldError
	if strings.TrimSpace(f.FullName) == "" {
		fields = append(fields, FieldError{Field: "full_name", Message: "required"})
	}
	if strings.TrimSpace(f.Email) == "" {
		fields = append(fields, FieldError{Field: "email", Message: "required"})
	}
	if strings.TrimSpace(f.CardNumber) == "" {
		fields = append(fields, FieldError{Field: "card_number", Message: "required"})
	}
	if len(fields) > 0 {
		return &ValidationError{Message: msgMissingFields, Fields: fields}
	}
	return nil
}

// CheckoutService drives the checkout of each session.
type CheckoutService struct {
	mu            sync.Mutex
	catalog       *catalog.Catalog
	sessions      *SessionService
	orders        *OrderService
	notifications *NotificationLog
}

// NewCheckoutService wires the checkout flow.
func NewCheckoutService(cat *catalog.Catalog, sessions *SessionService, orders *OrderService, notifications *NotificationLog) *CheckoutService {
	return &CheckoutService{
		catalog:       cat,
		sessions:      sessions,
		orders:        orders,
		notifications: notifications,
	}
}

// Select makes concertID the session's selection and starts a new
// checkout for it.
func (s *CheckoutService) Select(ctx context.Context, sessionID string, concertID int) (*Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectLocked(ctx, sessionID, concertID)
}

func (s *CheckoutService) selectLocked(ctx context.Context, sessionID string, concertID int) (*Checkout, error) {
	item, ok := s.catalog.FindByID(concertID)
	if !ok {
		return &Checkout{State: StateNoSelection, Message: msgConcertNotFound},
			fmt.Errorf("concert %d: %w", concertID, ErrNotFound)
	}
	sess, err := s.sessions.Select(ctx, sessionID, item)
	if err != nil {
		return nil, err
	}
	sess.Checkout = NewCheckout(&item)
	return sess.Checkout, s.sessions.Save(ctx, sess)
}

// Begin returns the session's checkout. A positive concertID selects that
// concert first unless the session already has a checkout for it that is
// still open. Without a selection the checkout is in NoSelection and
// ErrNotFound is returned.
func (s *CheckoutService) Begin(ctx context.Context, sessionID string, concertID int) (*Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if concertID > 0 && !checkingOut(sess, concertID) {
		return s.selectLocked(ctx, sessionID, concertID)
	}
	return s.currentLocked(ctx, sess)
}

// checkingOut reports whether sess has an open checkout for the concert.
func checkingOut(sess *Session, concertID int) bool {
	c := sess.Checkout
	if c == nil || c.Concert == nil {
		return false
	}
	return !c.Terminal() && c.Concert.ID == concertID
}

// currentLocked returns the session's checkout, creating one from the
// selection when needed.
func (s *CheckoutService) currentLocked(ctx context.Context, sess *Session) (*Checkout, error) {
	if sess.Checkout != nil {
		return sess.Checkout, nil
	}
	if sess.SelectedConcert == nil {
		return NewCheckout(nil), fmt.Errorf("%s: %w", msgNoSelection, ErrNotFound)
	}
	sess.Checkout = NewCheckout(sess.SelectedConcert)
	return sess.Checkout, s.sessions.Save(ctx, sess)
}

// SetQuantity changes the ticket count of the session's checkout.
func (s *CheckoutService) SetQuantity(ctx context.Context, sessionID string, q int) (*Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c, err := s.currentLocked(ctx, sess)
	if err != nil {
		return c, err
	}
	if err := c.SetQuantity(q); err != nil {
		return c, err
	}
	return c, s.sessions.Save(ctx, sess)
}

// Submit validates the form and either records an order (Success) or
// reports the problem (Failed). Both outcomes add a notification.
func (s *CheckoutService) Submit(ctx context.Context, sessionID string, form PaymentForm) (*Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c, err := s.currentLocked(ctx, sess)
	if err != nil {
		return c, err
	}
	if form.Quantity != 0 {
		if err := c.SetQuantity(form.Quantity); err != nil {
			return c, err
		}
	}
	if err := c.Begin(); err != nil {
		return c, err
	}

	title := c.Concert.Title
	if verr := form.Validate(); verr != nil {
		s.fail(ctx, c, msgMissingFields, title)
		if err := s.sessions.Save(ctx, sess); err != nil {
			log.Printf("[CheckoutService] Session save failed: %v", err)
		}
		return c, verr
	}

	order, err := s.orders.Record(ctx, model.OrderInput{
		ConcertID:       c.Concert.ID,
		ConcertTitle:    c.Concert.Title,
		ConcertDate:     c.Concert.Date,
		ConcertLocation: c.Concert.Location,
		Quantity:        c.Quantity,
		TotalPrice:      c.Total,
		CustomerName:    strings.TrimSpace(form.FullName),
		CustomerEmail:   strings.TrimSpace(form.Email),
	})
	if err != nil && order.ID == "" {
		s.fail(ctx, c, err.Error(), title)
		if serr := s.sessions.Save(ctx, sess); serr != nil {
			log.Printf("[CheckoutService] Session save failed: %v", serr)
		}
		return c, err
	}
	if err != nil {
		// Recorded in memory; the durable write is retried by the next save.
		log.Printf("[CheckoutService] Order %s not persisted: %v", order.ID, err)
	}

	c.Succeed(order.ID)
	s.notify(ctx, model.NotificationCheckoutSuccess, c.Message, title)
	log.Printf("[CheckoutService] Session %s completed order %s", sessionID, order.ID)
	return c, s.sessions.Save(ctx, sess)
}

func (s *CheckoutService) fail(ctx context.Context, c *Checkout, reason, title string) {
	c.Fail(reason)
	s.notify(ctx, model.NotificationCheckoutError, "Payment failed: "+reason, title)
}

func (s *CheckoutService) notify(ctx context.Context, typ model.NotificationType, message, title string) {
	if s.notifications == nil {
		return
	}
	if _, err := s.notifications.Append(ctx, typ, message, title); err != nil {
		log.Printf("[CheckoutService] Notification not persisted: %v", err)
	}
}
