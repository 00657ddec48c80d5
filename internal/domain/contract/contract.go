package contract

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/drivehub/service-rental/internal/common/domain"
)

const maxCommentLength = 1000

// Contract is the aggregate root for a car rental.
type Contract struct {
	id       uuid.UUID
	carID    uuid.UUID
	clientID uuid.UUID
	period   DateRange
	state    State

	// resumeState is the state held before a cancellation request; set only
	// while the contract is CANCELLATION_REQUESTED.
	resumeState *State

	comment   string
	totalCost *decimal.Decimal

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewContract creates a contract in PENDING for the given car, client and period.
func NewContract(carID, clientID uuid.UUID, period DateRange, comment string, totalCost *decimal.Decimal) (*Contract, error) {
	if carID == uuid.Nil {
		return nil, domain.NewValidationError("car ID is required")
	}
	if clientID == uuid.Nil {
		return nil, domain.NewValidationError("client ID is required")
	}
	if period.Start.IsZero() || !period.Start.Before(period.End) {
		return nil, domain.NewValidationError("end date must be after start date")
	}
	if len(comment) > maxCommentLength {
		return nil, domain.NewValidationError("comment is too long")
	}

	now := time.Now().UTC()
	return &Contract{
		id:        uuid.New(),
		carID:     carID,
		clientID:  clientID,
		period:    period,
		state:     StatePending,
		comment:   comment,
		totalCost: totalCost,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructContract rebuilds a Contract from persistence data (no validation).
func ReconstructContract(
	id uuid.UUID,
	carID uuid.UUID,
	clientID uuid.UUID,
	period DateRange,
	state State,
	resumeState *State,
	comment string,
	totalCost *decimal.Decimal,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Contract {
	return &Contract{
		id:          id,
		carID:       carID,
		clientID:    clientID,
		period:      period,
		state:       state,
		resumeState: resumeState,
		comment:     comment,
		totalCost:   totalCost,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

// ID returns the contract's unique identifier.
func (c *Contract) ID() uuid.UUID { return c.id }

// CarID returns the rented car.
func (c *Contract) CarID() uuid.UUID { return c.carID }

// ClientID returns the renting client.
func (c *Contract) ClientID() uuid.UUID { return c.clientID }

// Period returns the rental date range.
func (c *Contract) Period() DateRange { return c.period }

// State returns the current lifecycle state.
func (c *Contract) State() State { return c.state }

// ResumeState returns the state restored if a cancellation request is rejected.
func (c *Contract) ResumeState() *State { return c.resumeState }

// Comment returns the client's free-text note.
func (c *Contract) Comment() string { return c.comment }

// TotalCost returns the computed rental price, or nil when unknown.
func (c *Contract) TotalCost() *decimal.Decimal { return c.totalCost }

// Version returns the entity version for optimistic locking.
func (c *Contract) Version() int64 { return c.version }

// CreatedAt returns the creation timestamp.
func (c *Contract) CreatedAt() time.Time { return c.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (c *Contract) UpdatedAt() time.Time { return c.updatedAt }

// IsOwnedBy reports whether the contract belongs to the given client.
func (c *Contract) IsOwnedBy(clientID uuid.UUID) bool { return c.clientID == clientID }

// --- Behavior ---

func (c *Contract) apply(ev Event) error {
	next, err := Transition(c.state, ev)
	if err != nil {
		return err
	}
	c.state = next
	c.updatedAt = time.Now().UTC()
	return nil
}

// Confirm approves a pending contract.
func (c *Contract) Confirm() error {
	return c.apply(EventConfirm)
}

// Amend replaces the rental period and price. The caller is responsible for
// checking the new period against other contracts of the same car.
func (c *Contract) Amend(period DateRange, totalCost *decimal.Decimal) error {
	if !c.state.CanApply(EventAmend) {
		return domain.NewInvalidStateError(string(c.state), string(EventAmend))
	}
	if period.Start.IsZero() || !period.Start.Before(period.End) {
		return domain.NewValidationError("end date must be after start date")
	}
	c.period = period
	c.totalCost = totalCost
	return c.apply(EventAmend)
}

// Start marks the car as handed over to the client.
func (c *Contract) Start() error {
	return c.apply(EventStart)
}

// Complete marks the car as returned.
func (c *Contract) Complete() error {
	return c.apply(EventReturn)
}

// RequestCancellation moves the contract to CANCELLATION_REQUESTED and
// remembers the current state. It returns false when a request is already
// pending, in which case nothing changes.
func (c *Contract) RequestCancellation() (bool, error) {
	if c.state == StateCancellationRequested {
		return false, nil
	}
	prior := c.state
	if err := c.apply(EventRequestCancellation); err != nil {
		return false, err
	}
	c.resumeState = &prior
	return true, nil
}

// ConfirmCancellation grants a pending cancellation request.
func (c *Contract) ConfirmCancellation() error {
	if err := c.apply(EventConfirmCancellation); err != nil {
		return err
	}
	c.resumeState = nil
	return nil
}

// RejectCancellation denies a pending cancellation request and restores the
// state held before it. The caller must re-check availability first because
// the restored state occupies the car again.
func (c *Contract) RejectCancellation() error {
	restored, err := ResumeAfterRejection(c.state, c.resumeState)
	if err != nil {
		return err
	}
	c.state = restored
	c.resumeState = nil
	c.updatedAt = time.Now().UTC()
	return nil
}

// CancelByAdmin cancels the contract unconditionally unless it is already terminal.
func (c *Contract) CancelByAdmin() error {
	if err := c.apply(EventAdminCancel); err != nil {
		return err
	}
	c.resumeState = nil
	return nil
}

// RestoredState returns the state RejectCancellation would move to, or the
// current state when no cancellation request is pending.
func (c *Contract) RestoredState() State {
	restored, err := ResumeAfterRejection(c.state, c.resumeState)
	if err != nil {
		return c.state
	}
	return restored
}

// IncrementVersion bumps the version for optimistic locking.
func (c *Contract) IncrementVersion() {
	c.version++
	c.updatedAt = time.Now().UTC()
}
