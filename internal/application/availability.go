package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	contractDomain "github.com/drivehub/service-rental/internal/domain/contract"
)

// AvailabilityService finds contracts that block a car for a period.
type AvailabilityService struct {
	contracts contractDomain.Repository
}

// NewAvailabilityService creates a new AvailabilityService.
func NewAvailabilityService(contracts contractDomain.Repository) *AvailabilityService {
	return &AvailabilityService{contracts: contracts}
}

// FindConflicting returns the occupying contracts of carID overlapping period,
// skipping exclude when set. The store query is re-filtered with the domain
// rule so both always agree.
func (s *AvailabilityService) FindConflicting(
	ctx context.Context,
	carID uuid.UUID,
	period contractDomain.DateRange,
	exclude *uuid.UUID,
) ([]*contractDomain.Contract, error) {
	candidates, err := s.contracts.FindOverlapping(ctx, carID, period, exclude)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping contracts: %w", err)
	}
	return contractDomain.Conflicts(candidates, carID, period, exclude), nil
}

// HasConflict reports whether any contract blocks carID for period.
func (s *AvailabilityService) HasConflict(
	ctx context.Context,
	carID uuid.UUID,
	period contractDomain.DateRange,
	exclude *uuid.UUID,
) (bool, error) {
	conflicts, err := s.FindConflicting(ctx, carID, period, exclude)
	if err != nil {
		return false, err
	}
	return len(conflicts) > 0, nil
}
