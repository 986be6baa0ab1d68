package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"concerthub-api/internal/events"
	"concerthub-api/internal/model"
)

func TestNotificationLogCapacity(t *testing.T) {
	ctx := context.Background()
	l := NewNotificationLog(newTestStore(t), nil, 50)

	for i := 1; i <= 51; i++ {
		if _, err := l.Append(ctx, model.NotificationWishlistAdd, fmt.Sprintf("n%d", i), ""); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	items := l.List()
	if len(items) != 50 {
		t.Fatalf("expected 50 notifications, got %d", len(items))
	}
	if items[0].Message != "n51" {
		t.Errorf("expected newest at head, got %q", items[0].Message)
	}
	if items[49].Message != "n2" {
		t.Errorf("expected oldest evicted, tail is %q", items[49].Message)
	}
}

func TestNotificationLogReadDeleteClear(t *testing.T) {
	ctx := context.Background()
	l := NewNotificationLog(newTestStore(t), nil, 0)

	a, _ := l.Append(ctx, model.NotificationWishlistAdd, "a", "A")
	l.Append(ctx, model.NotificationWishlistRemove, "b", "A")

	if b := l.Badge(); b.Count != 2 || b.Display != "2" || !b.Visible {
		t.Errorf("unexpected badge %+v", b)
	}

	if err := l.MarkRead(ctx, a.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if b := l.Badge(); b.Count != 1 {
		t.Errorf("expected 1 unread, got %+v", b)
	}

	if err := l.MarkAllRead(ctx); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if b := l.Badge(); b.Visible || b.Display != "" {
		t.Errorf("expected hidden badge, got %+v", b)
	}

	if err := l.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if l.Len() != 1 {
		t.Errorf("expected 1 notification left, got %d", l.Len())
	}

	if err := l.MarkRead(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkRead missing: expected ErrNotFound, got %v", err)
	}
	if err := l.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete missing: expected ErrNotFound, got %v", err)
	}

	if err := l.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if l.Len() != 0 {
		t.Errorf("expected empty log, got %d", l.Len())
	}
}

func TestNotificationLogRejectsUnknownType(t *testing.T) {
	l := NewNotificationLog(newTestStore(t), nil, 0)
	_, err := l.Append(context.Background(), model.NotificationType("promo"), "x", "")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestNotificationLogRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	l := NewNotificationLog(store, nil, 0)
	n, _ := l.Append(ctx, model.NotificationCheckoutSuccess, "paid", "Java Jazz Festival")
	l.Append(ctx, model.NotificationCheckoutError, "failed", "")
	l.MarkRead(ctx, n.ID)
	before := l.List()

	reloaded := NewNotificationLog(store, nil, 0)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if after := reloaded.List(); !reflect.DeepEqual(before, after) {
		t.Errorf("round trip mismatch:\n%+v\n%+v", before, after)
	}
}

func TestNotificationLogPublishesEvents(t *testing.T) {
	ctx := context.Background()
	broker := events.NewBroker(8)
	ch, cancel := broker.Subscribe()
	defer cancel()

	l := NewNotificationLog(newTestStore(t), broker, 0)
	n, _ := l.Append(ctx, model.NotificationWishlistAdd, "a", "")

	e := <-ch
	if e.Type != events.NotificationBadge || e.Payload.(model.Badge).Count != 1 {
		t.Errorf("unexpected event after append: %+v", e)
	}
	select {
	case e := <-ch:
		t.Errorf("append must not request a re-render, got %+v", e)
	default:
	}

	l.MarkRead(ctx, n.ID)
	if e := <-ch; e.Type != events.NotificationBadge {
		t.Errorf("expected badge event, got %+v", e)
	}
	if e := <-ch; e.Type != events.NotificationsChanged {
		t.Errorf("expected re-render event, got %+v", e)
	}
}
