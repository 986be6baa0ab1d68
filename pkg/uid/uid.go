package uid

import "github.com/google/uuid"

// New generates a new random identifier.
func New() string {
	return uuid.New().String()
}

// NewOrdered generates a time-ordered identifier (UUIDv7). Falls back to
// a random UUID if the clock source fails.
func NewOrdered() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// IsValid checks if a string is a valid UUID.
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
