package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"concerthub-api/internal/kvstore"
	"concerthub-api/internal/model"
)

const (
	// SessionPrefix is the prefix for all session ids.
	SessionPrefix = "chs_"

	// DefaultSessionTTL is how long an idle checkout session lives.
	DefaultSessionTTL = 30 * time.Minute

	// SessionKeyPrefix namespaces sessions inside the shared backend.
	SessionKeyPrefix = "session:"
)

// Session is the ephemeral per-visitor state: the selected concert and
// the checkout derived from it. It is never written to the durable keys.
type Session struct {
	ID              string      `json:"id"`
	SelectedConcert *model.Item `json:"selected_concert,omitempty"`
	Checkout        *Checkout   `json:"checkout,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	ExpiresAt       time.Time   `json:"expires_at"`
}

// SessionService stores sessions in a kvstore backend with a TTL.
type SessionService struct {
	backend kvstore.Backend
	ttl     time.Duration
	now     func() time.Time
}

// NewSessionService creates a session service.
func NewSessionService(backend kvstore.Backend, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{
		backend: backend,
		ttl:     ttl,
		now:     now,
	}
}

// NewSessionID returns a random session id.
func NewSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return SessionPrefix + hex.EncodeToString(b), nil
}

// ValidSessionID reports whether id has the shape NewSessionID produces.
func ValidSessionID(id string) bool {
	if len(id) != len(SessionPrefix)+32 || id[:len(SessionPrefix)] != SessionPrefix {
		return false
	}
	_, err := hex.DecodeString(id[len(SessionPrefix):])
	return err == nil
}

// TTL returns the session lifetime.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Get returns the stored session, or a fresh empty one when it does not
// exist or has expired.
func (s *SessionService) Get(ctx context.Context, id string) (*Session, error) {
	if !ValidSessionID(id) {
		return nil, &ValidationError{
			Message: "invalid session id",
			Fields:  []FieldError{{Field: "session", Message: "malformed"}},
		}
	}

	data, err := s.backend.Get(ctx, SessionKeyPrefix+id)
	if errors.Is(err, kvstore.ErrNotFound) {
		return s.fresh(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		log.Printf("[SessionService] Discarding unreadable session %s: %v", id, err)
		return s.fresh(id), nil
	}
	return &sess, nil
}

func (s *SessionService) fresh(id string) *Session {
	t := s.now()
	return &Session{ID: id, CreatedAt: t, ExpiresAt: t.Add(s.ttl)}
}

// Save writes the session and extends its lifetime.
func (s *SessionService) Save(ctx context.Context, sess *Session) error {
	sess.ExpiresAt = s.now().Add(s.ttl)

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}
	if err := s.backend.Set(ctx, SessionKeyPrefix+sess.ID, data, s.ttl); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Select stores the concert as the session's selection and discards any
// checkout in progress.
func (s *SessionService) Select(ctx context.Context, id string, item model.Item) (*Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.SelectedConcert = &item
	sess.Checkout = nil
	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	log.Printf("[SessionService] Session %s selected concert %d", id, item.ID)
	return sess, nil
}

// Selected returns the session's selected concert.
func (s *SessionService) Selected(ctx context.Context, id string) (model.Item, bool, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return model.Item{}, false, err
	}
	if sess.SelectedConcert == nil {
		return model.Item{}, false, nil
	}
	return *sess.SelectedConcert, true, nil
}

// Clear deletes the session.
func (s *SessionService) Clear(ctx context.Context, id string) error {
	return s.backend.Delete(ctx, SessionKeyPrefix+id)
}
