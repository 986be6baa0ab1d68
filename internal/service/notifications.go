package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"concerthub-api/internal/events"
	"concerthub-api/internal/model"
	"concerthub-api/internal/storage"
	"concerthub-api/pkg/uid"
)

// DefaultNotificationCapacity bounds the log.
const DefaultNotificationCapacity = 50

// NotificationLog is a newest-first bounded log persisted under
// storage.KeyNotifications.
type NotificationLog struct {
	mu       sync.Mutex
	store    *storage.Store
	events   events.Publisher
	capacity int
	items    []model.Notification

	now   func() time.Time
	newID func() string
}

// NewNotificationLog creates an empty log; call Load to restore state.
func NewNotificationLog(store *storage.Store, pub events.Publisher, capacity int) *NotificationLog {
	if capacity < 1 {
		capacity = DefaultNotificationCapacity
	}
	if pub == nil {
		pub = events.Discard{}
	}
	return &NotificationLog{
		store:    store,
		events:   pub,
		capacity: capacity,
		items:    []model.Notification{},
		now:      now,
		newID:    uid.NewOrdered,
	}
}

// Load restores the log from the durable store, trimming to capacity.
func (l *NotificationLog) Load(ctx context.Context) error {
	var loaded []model.Notification
	found, err := l.store.Load(ctx, storage.KeyNotifications, &loaded)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = []model.Notification{}
	if found && loaded != nil {
		if len(loaded) > l.capacity {
			loaded = loaded[:l.capacity]
		}
		l.items = loaded
	}
	log.Printf("[NotificationLog] Loaded %d notifications (%d unread)", len(l.items), l.unreadLocked())
	return nil
}

// Append records a new unread notification at the head of the log,
// evicting the oldest entries beyond capacity.
func (l *NotificationLog) Append(ctx context.Context, typ model.NotificationType, message, relatedTitle string) (model.Notification, error) {
	if !typ.Valid() {
		return model.Notification{}, &ValidationError{
			Message: fmt.Sprintf("unknown notification type %q", typ),
			Fields:  []FieldError{{Field: "type", Message: "unknown"}},
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	n := model.Notification{
		ID:           l.newID(),
		Type:         typ,
		Message:      message,
		RelatedTitle: relatedTitle,
		Timestamp:    l.now(),
		Read:         false,
	}

	items := make([]model.Notification, 0, len(l.items)+1)
	items = append(items, n)
	items = append(items, l.items...)
	if len(items) > l.capacity {
		items = items[:l.capacity]
	}
	l.items = items

	return n, l.commitLocked(ctx, false)
}

// MarkRead sets the read flag of one notification.
func (l *NotificationLog) MarkRead(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	l.items[i].Read = true
	return l.commitLocked(ctx, true)
}

// MarkAllRead sets every read flag.
func (l *NotificationLog) MarkAllRead(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.items {
		l.items[i].Read = true
	}
	return l.commitLocked(ctx, true)
}

// Delete removes one notification.
func (l *NotificationLog) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	items := make([]model.Notification, 0, len(l.items)-1)
	items = append(items, l.items[:i]...)
	items = append(items, l.items[i+1:]...)
	l.items = items
	return l.commitLocked(ctx, true)
}

// ClearAll empties the log.
func (l *NotificationLog) ClearAll(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = []model.Notification{}
	return l.commitLocked(ctx, true)
}

// List returns the notifications newest first.
func (l *NotificationLog) List() []model.Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.Notification{}, l.items...)
}

// Len returns the number of notifications.
func (l *NotificationLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Badge returns the unread counter.
func (l *NotificationLog) Badge() model.Badge {
	l.mu.Lock()
	defer l.mu.Unlock()
	return model.NewBadge(l.unreadLocked())
}

func (l *NotificationLog) unreadLocked() int {
	n := 0
	for _, it := range l.items {
		if !it.Read {
			n++
		}
	}
	return n
}

func (l *NotificationLog) indexLocked(id string) int {
	for i, it := range l.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// commitLocked persists the log, then refreshes the badge and, for user
// edits, asks an open panel to re-render.
func (l *NotificationLog) commitLocked(ctx context.Context, rerender bool) error {
	err := l.store.Save(ctx, storage.KeyNotifications, l.items)
	if err != nil {
		log.Printf("[NotificationLog] Save failed: %v", err)
	}

	l.events.Publish(events.Event{Type: events.NotificationBadge, Payload: model.NewBadge(l.unreadLocked())})
	if rerender {
		l.events.Publish(events.Event{Type: events.NotificationsChanged, Payload: len(l.items)})
	}
	return err
}
