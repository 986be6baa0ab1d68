package model

import (
	"strconv"
	"time"
)

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationWishlistAdd     NotificationType = "wishlist_add"
	NotificationWishlistRemove  NotificationType = "wishlist_remove"
	NotificationCheckoutSuccess NotificationType = "checkout_success"
	NotificationCheckoutError   NotificationType = "checkout_error"
)

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationWishlistAdd, NotificationWishlistRemove,
		NotificationCheckoutSuccess, NotificationCheckoutError:
		return true
	}
	return false
}

// Notification is one entry of the notification log.
type Notification struct {
	ID           string           `json:"id"`
	Type         NotificationType `json:"type"`
	Message      string           `json:"message"`
	RelatedTitle string           `json:"related_title,omitempty"`
	Timestamp    time.Time        `json:"timestamp"`
	Read         bool             `json:"read"`
}

// Badge is the unread counter shown in the header.
type Badge struct {
	Count   int    `json:"count"`
	Display string `json:"display"`
	Visible bool   `json:"visible"`
}

// NewBadge renders an unread count: hidden at zero, "99+" above 99.
func NewBadge(count int) Badge {
	switch {
	case count <= 0:
		return Badge{Count: 0, Display: "", Visible: false}
	case count > 99:
		return Badge{Count: count, Display: "99+", Visible: true}
	default:
		return Badge{Count: count, Display: strconv.Itoa(count), Visible: true}
	}
}
