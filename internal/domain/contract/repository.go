package contract

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows admin contract listings.
type ListFilter struct {
	State    *State
	CarID    *uuid.UUID
	ClientID *uuid.UUID
}

// Repository defines the persistence contract for rental contracts.
type Repository interface {
	// FindByID retrieves a contract by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Contract, error)

	// FindByClientID retrieves a client's contracts with pagination.
	FindByClientID(ctx context.Context, clientID uuid.UUID, page, limit int) ([]*Contract, int64, error)

	// List retrieves contracts matching filter with pagination (admin).
	List(ctx context.Context, filter ListFilter, page, limit int) ([]*Contract, int64, error)

	// CountByState returns contract counts grouped by state (admin).
	CountByState(ctx context.Context) (map[State]int64, error)

	// FindOverlapping returns occupying contracts of carID overlapping period,
	// skipping exclude when set.
	FindOverlapping(ctx context.Context, carID uuid.UUID, period DateRange, exclude *uuid.UUID) ([]*Contract, error)

	// FindDueToStart returns CONFIRMED contracts starting on or before day.
	FindDueToStart(ctx context.Context, day time.Time) ([]*Contract, error)

	// FindDueToComplete returns ACTIVE contracts whose period ended on or before day.
	FindDueToComplete(ctx context.Context, day time.Time) ([]*Contract, error)

	// FindByCarInState returns the contracts of carID in the given state.
	FindByCarInState(ctx context.Context, carID uuid.UUID, state State) ([]*Contract, error)

	// Save persists a new contract.
	Save(ctx context.Context, c *Contract) error

	// Update persists changes to an existing contract with optimistic locking.
	Update(ctx context.Context, c *Contract) error
}
