package events

import "time"

// Event types
const (
	UserCreated   = "user.created"
	UserUpdated   = "user.updated"
	UserDeleted   = "user.deleted"
	UserVerified  = "user.verified"
	UserSuspended = "user.suspended"

	CategoryCreated = "category.created"
	CategoryUpdated = "category.updated"
	CategoryDeleted = "category.deleted"

	TransactionCreated = "transaction.created"
	TransactionUpdated = "transaction.updated"
	TransactionDeleted = "transaction.deleted"
)

// Stream names
const (
	UserEventsStream        = "user.events"
	CategoryEventsStream    = "category.events"
	TransactionEventsStream = "transaction.events"
)

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// User events
type UserEvent struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Category events
type CategoryEvent struct {
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
	Type       string `json:"type"`
}

// Transaction events carry the owning user so consumers can invalidate
// per-user read models.
type TransactionEvent struct {
	TransactionID string `json:"transactionId"`
	Kind          string `json:"kind"`
	UserID        string `json:"userId"`
	AmountCents   int64  `json:"amountCents"`
	CategoryID    string `json:"categoryId,omitempty"`
}
