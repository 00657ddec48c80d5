package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/drivehub/service-rental/internal/common/domain"
	clientDomain "github.com/drivehub/service-rental/internal/domain/client"
	"github.com/drivehub/service-rental/internal/domain/eligibility"
	"github.com/drivehub/service-rental/internal/domain/fleet"
)

// EligibilityService implements eligibility.Gate on top of the read-only
// client, document and car stores.
type EligibilityService struct {
	clients   clientDomain.ClientRepository
	documents clientDomain.DocumentRepository
	cars      fleet.CarRepository
}

// NewEligibilityService creates a new EligibilityService.
func NewEligibilityService(
	clients clientDomain.ClientRepository,
	documents clientDomain.DocumentRepository,
	cars fleet.CarRepository,
) *EligibilityService {
	return &EligibilityService{clients: clients, documents: documents, cars: cars}
}

var _ eligibility.Gate = (*EligibilityService)(nil)

// CheckEligible runs the client, document and car checks in that order.
func (s *EligibilityService) CheckEligible(ctx context.Context, clientID, carID uuid.UUID) (eligibility.Result, error) {
	cl, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return notFoundResult(err, "client", clientID)
	}
	if !cl.CanRent() {
		return eligibility.Result{Outcome: eligibility.ClientBanned}, nil
	}

	doc, err := s.documents.FindCurrentIdentity(ctx, clientID)
	if err != nil {
		return eligibility.Result{}, fmt.Errorf("failed to load identity document: %w", err)
	}
	if doc == nil || !doc.IsVerified() {
		return eligibility.Result{Outcome: eligibility.UnverifiedDocument}, nil
	}

	car, err := s.cars.FindByID(ctx, carID)
	if err != nil {
		return notFoundResult(err, "car", carID)
	}
	if car.IsDeleted() {
		return eligibility.Result{Outcome: eligibility.NotFound, Entity: "car", ID: carID}, nil
	}
	if car.Status() != fleet.CarStatusAvailable {
		return eligibility.Result{Outcome: eligibility.CarUnavailable}, nil
	}

	return eligibility.Result{Outcome: eligibility.Eligible}, nil
}

func notFoundResult(err error, entity string, id uuid.UUID) (eligibility.Result, error) {
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return eligibility.Result{Outcome: eligibility.NotFound, Entity: entity, ID: id}, nil
	}
	return eligibility.Result{}, fmt.Errorf("failed to load %s: %w", entity, err)
}
