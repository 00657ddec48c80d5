package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/drivehub/service-rental/internal/common/kafka"
)

// Transactor runs fn inside one database transaction. Repositories called
// with the ctx passed to fn join that transaction. Implementations may run fn
// more than once when the database asks for a retry.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher publishes integration events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// Actor is the caller of a contract operation.
type Actor struct {
	ID    uuid.UUID
	Admin bool
}

// CanAccess reports whether the actor may act on a contract owned by clientID.
func (a Actor) CanAccess(clientID uuid.UUID) bool {
	return a.Admin || a.ID == clientID
}
