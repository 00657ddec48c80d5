// Package eligibility decides whether a client may rent a given car.
package eligibility

import (
	"context"

	"github.com/google/uuid"
)

// Outcome tags the result of an eligibility check.
type Outcome string

const (
	Eligible           Outcome = "ELIGIBLE"
	UnverifiedDocument Outcome = "UNVERIFIED_DOCUMENT"
	ClientBanned       Outcome = "CLIENT_BANNED"
	CarUnavailable     Outcome = "CAR_UNAVAILABLE"
	NotFound           Outcome = "NOT_FOUND"
)

// Result is the outcome of a check. Entity names what was missing when
// Outcome is NotFound.
type Result struct {
	Outcome Outcome
	Entity  string
	ID      uuid.UUID
}

// OK reports whether the client may rent.
func (r Result) OK() bool { return r.Outcome == Eligible }

// Gate checks eligibility. Checks run client first, then the identity
// document, then the car; the first failing check decides the outcome.
type Gate interface {
	CheckEligible(ctx context.Context, clientID, carID uuid.UUID) (Result, error)
}
