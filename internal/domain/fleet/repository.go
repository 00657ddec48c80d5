package fleet

import (
	"context"

	"github.com/google/uuid"
)

// CarRepository reads cars from the catalog. Soft-deleted cars are returned
// so callers can tell "deleted" from "never existed".
type CarRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Car, error)

	// FindByIDForUpdate reads the car and row-locks it until the surrounding
	// transaction ends. Bookings of the same car serialize on this lock.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Car, error)
}
