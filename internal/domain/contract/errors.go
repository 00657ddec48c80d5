package contract

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/drivehub/service-rental/internal/common/domain"
)

// Reason says why a client may not rent a car.
type Reason string

const (
	ReasonUnverifiedDocument Reason = "UNVERIFIED_DOCUMENT"
	ReasonClientBanned       Reason = "CLIENT_BANNED"
	ReasonCarUnavailable     Reason = "CAR_UNAVAILABLE"
)

// EligibilityError is returned when a client or car fails the eligibility gate.
type EligibilityError struct {
	Reason Reason
}

func (e *EligibilityError) Error() string {
	switch e.Reason {
	case ReasonUnverifiedDocument:
		return "client has no verified identity document"
	case ReasonClientBanned:
		return "client is not allowed to rent cars"
	case ReasonCarUnavailable:
		return "car is not available for rent"
	default:
		return "rental not allowed: " + string(e.Reason)
	}
}

// Kind implements domain.KindedError.
func (e *EligibilityError) Kind() domain.ErrorKind { return domain.KindUnprocessable }

// Details exposes the machine readable reason.
func (e *EligibilityError) Details() interface{} {
	return map[string]string{"reason": string(e.Reason)}
}

// NewEligibilityError creates an EligibilityError.
func NewEligibilityError(reason Reason) *EligibilityError {
	return &EligibilityError{Reason: reason}
}

// AvailabilityConflictError is returned when the requested period overlaps
// an occupying contract of the same car.
type AvailabilityConflictError struct {
	CarID     uuid.UUID
	Requested DateRange
	Conflicts []uuid.UUID
}

func (e *AvailabilityConflictError) Error() string {
	if len(e.Conflicts) == 0 {
		return fmt.Sprintf("car %s is already booked for %s", e.CarID, e.Requested)
	}
	ids := make([]string, len(e.Conflicts))
	for i, id := range e.Conflicts {
		ids[i] = id.String()
	}
	return fmt.Sprintf("car %s is already booked for %s by contracts %s",
		e.CarID, e.Requested, strings.Join(ids, ", "))
}

// Kind implements domain.KindedError.
func (e *AvailabilityConflictError) Kind() domain.ErrorKind { return domain.KindConflict }

// Details lists the conflicting contracts.
func (e *AvailabilityConflictError) Details() interface{} {
	return map[string]interface{}{
		"car_id":     e.CarID,
		"start_date": e.Requested.Start.Format(DateLayout),
		"end_date":   e.Requested.End.Format(DateLayout),
		"conflicts":  e.Conflicts,
	}
}

// NewAvailabilityConflictError builds the error from the conflicting contracts.
func NewAvailabilityConflictError(carID uuid.UUID, requested DateRange, conflicts []*Contract) *AvailabilityConflictError {
	ids := make([]uuid.UUID, 0, len(conflicts))
	for _, c := range conflicts {
		ids = append(ids, c.ID())
	}
	return &AvailabilityConflictError{CarID: carID, Requested: requested, Conflicts: ids}
}
