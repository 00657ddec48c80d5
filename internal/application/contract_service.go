package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/drivehub/service-rental/internal/common/domain"
	"github.com/drivehub/service-rental/internal/common/kafka"
	"github.com/drivehub/service-rental/internal/common/lock"
	"github.com/drivehub/service-rental/internal/common/metrics"
	contractDomain "github.com/drivehub/service-rental/internal/domain/contract"
	"github.com/drivehub/service-rental/internal/domain/eligibility"
	"github.com/drivehub/service-rental/internal/domain/fleet"
)

const eventSource = "service-rental"

const errForeignContract = "you can't modify someone else's contract"

// ContractService is the application service orchestrating the rental
// contract lifecycle.
type ContractService struct {
	contracts    contractDomain.Repository
	cars         fleet.CarRepository
	gate         eligibility.Gate
	availability *AvailabilityService
	pricing      contractDomain.PricingStrategy
	tx           Transactor
	locker       lock.Locker
	publisher    EventPublisher
	metrics      metrics.Recorder
	logger       *zap.Logger
}

// ContractServiceDeps groups the collaborators of a ContractService.
type ContractServiceDeps struct {
	Contracts contractDomain.Repository
	Cars      fleet.CarRepository
	Gate      eligibility.Gate
	Pricing   contractDomain.PricingStrategy
	Tx        Transactor
	Locker    lock.Locker
	Publisher EventPublisher
	Metrics   metrics.Recorder
	Logger    *zap.Logger
}

// NewContractService creates a new ContractService.
func NewContractService(deps ContractServiceDeps) *ContractService {
	if deps.Pricing == nil {
		deps.Pricing = contractDomain.NewDailyRatePricing()
	}
	if deps.Locker == nil {
		deps.Locker = lock.NewKeyedMutex()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &ContractService{
		contracts:    deps.Contracts,
		cars:         deps.Cars,
		gate:         deps.Gate,
		availability: NewAvailabilityService(deps.Contracts),
		pricing:      deps.Pricing,
		tx:           deps.Tx,
		locker:       deps.Locker,
		publisher:    deps.Publisher,
		metrics:      deps.Metrics,
		logger:       deps.Logger,
	}
}

// CreateContract books a car for a client. The new contract is PENDING.
func (s *ContractService) CreateContract(ctx context.Context, clientID uuid.UUID, req CreateContractRequest) (*ContractDTO, error) {
	period, err := contractDomain.ParseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if req.CarID == uuid.Nil {
		return nil, domain.NewValidationError("car ID is required")
	}

	if err := s.checkEligible(ctx, clientID, req.CarID); err != nil {
		return nil, err
	}

	var created *contractDomain.Contract
	err = s.withCarLock(ctx, req.CarID, func(ctx context.Context) error {
		car, err := s.lockCar(ctx, req.CarID)
		if err != nil {
			return err
		}
		if !car.IsRentable() {
			return contractDomain.NewEligibilityError(contractDomain.ReasonCarUnavailable)
		}
		if err := s.ensureFree(ctx, req.CarID, period, nil); err != nil {
			return err
		}

		cost, err := s.pricing.Calculate(car.DailyPrice(), period)
		if err != nil {
			return domain.NewValidationError(fmt.Sprintf("pricing error: %v", err))
		}

		c, err := contractDomain.NewContract(req.CarID, clientID, period, req.Comment, &cost)
		if err != nil {
			return err
		}
		if err := s.contracts.Save(ctx, c); err != nil {
			return fmt.Errorf("failed to save contract: %w", err)
		}
		created = c
		return nil
	})
	if err != nil {
		s.observeFailure(err)
		return nil, err
	}

	s.logger.Info("contract created",
		zap.String("contract_id", created.ID().String()),
		zap.String("car_id", created.CarID().String()),
		zap.String("client_id", clientID.String()),
		zap.String("period", period.String()),
	)
	s.metrics.Transition("", string(created.State()))
	s.publish(ctx, contractDomain.EventTypeCreated, created, "")

	result := toContractDTO(created)
	return &result, nil
}

// AmendContract moves a PENDING or CONFIRMED contract to a new period. The
// contract keeps its old period when the new one is taken.
func (s *ContractService) AmendContract(ctx context.Context, contractID uuid.UUID, actor Actor, req AmendContractRequest) (*ContractDTO, error) {
	period, err := contractDomain.ParseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	current, err := s.loadForActor(ctx, contractID, actor)
	if err != nil {
		return nil, err
	}
	if !current.State().CanApply(contractDomain.EventAmend) {
		return nil, domain.NewInvalidStateError(string(current.State()), string(contractDomain.EventAmend))
	}

	var amended *contractDomain.Contract
	err = s.withCarLock(ctx, current.CarID(), func(ctx context.Context) error {
		c, err := s.contracts.FindByID(ctx, contractID)
		if err != nil {
			return err
		}
		car, err := s.lockCar(ctx, c.CarID())
		if err != nil {
			return err
		}
		if !c.State().CanApply(contractDomain.EventAmend) {
			return domain.NewInvalidStateError(string(c.State()), string(contractDomain.EventAmend))
		}

		self := c.ID()
		if err := s.ensureFree(ctx, c.CarID(), period, &self); err != nil {
			return err
		}

		cost, err := s.pricing.Calculate(car.DailyPrice(), period)
		if err != nil {
			return domain.NewValidationError(fmt.Sprintf("pricing error: %v", err))
		}
		if err := c.Amend(period, &cost); err != nil {
			return err
		}
		c.IncrementVersion()
		if err := s.contracts.Update(ctx, c); err != nil {
			return err
		}
		amended = c
		return nil
	})
	if err != nil {
		s.observeFailure(err)
		return nil, err
	}

	s.logger.Info("contract amended",
		zap.String("contract_id", amended.ID().String()),
		zap.String("period", period.String()),
	)
	s.publish(ctx, contractDomain.EventTypeAmended, amended, amended.State())

	result := toContractDTO(amended)
	return &result, nil
}

// ConfirmContract approves a PENDING contract (admin).
func (s *ContractService) ConfirmContract(ctx context.Context, contractID uuid.UUID) (*ContractDTO, error) {
	return s.transition(ctx, contractID, nil, contractDomain.EventTypeConfirmed, (*contractDomain.Contract).Confirm)
}

// RequestCancellation asks staff to cancel a contract. Asking again while a
// request is pending changes nothing.
func (s *ContractService) RequestCancellation(ctx context.Context, contractID uuid.UUID, actor Actor) (*ContractDTO, error) {
	c, err := s.loadForActor(ctx, contractID, actor)
	if err != nil {
		return nil, err
	}

	from := c.State()
	changed, err := c.RequestCancellation()
	if err != nil {
		return nil, err
	}
	if !changed {
		result := toContractDTO(c)
		return &result, nil
	}

	c.IncrementVersion()
	if err := s.contracts.Update(ctx, c); err != nil {
		return nil, err
	}
	s.afterTransition(ctx, c, from, contractDomain.EventTypeCancellationRequested)

	result := toContractDTO(c)
	return &result, nil
}

// ConfirmCancellation grants a pending cancellation request (admin).
func (s *ContractService) ConfirmCancellation(ctx context.Context, contractID uuid.UUID) (*ContractDTO, error) {
	return s.transition(ctx, contractID, nil, contractDomain.EventTypeCancelled, (*contractDomain.Contract).ConfirmCancellation)
}

// RejectCancellation denies a pending cancellation request (admin) and
// restores the state held before it. The period is checked again first; if
// another contract took it meanwhile the request stays pending.
func (s *ContractService) RejectCancellation(ctx context.Context, contractID uuid.UUID) (*ContractDTO, error) {
	current, err := s.contracts.FindByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if _, err := contractDomain.Transition(current.State(), contractDomain.EventRejectCancellation); err != nil {
		return nil, err
	}

	var restored *contractDomain.Contract
	err = s.withCarLock(ctx, current.CarID(), func(ctx context.Context) error {
		c, err := s.contracts.FindByID(ctx, contractID)
		if err != nil {
			return err
		}
		if _, err := s.lockCar(ctx, c.CarID()); err != nil {
			return err
		}
		if _, err := contractDomain.Transition(c.State(), contractDomain.EventRejectCancellation); err != nil {
			return err
		}

		self := c.ID()
		if err := s.ensureFree(ctx, c.CarID(), c.Period(), &self); err != nil {
			return err
		}
		if err := c.RejectCancellation(); err != nil {
			return err
		}
		c.IncrementVersion()
		if err := s.contracts.Update(ctx, c); err != nil {
			return err
		}
		restored = c
		return nil
	})
	if err != nil {
		s.observeFailure(err)
		return nil, err
	}

	s.afterTransition(ctx, restored, contractDomain.StateCancellationRequested, contractDomain.EventTypeCancellationRejected)

	result := toContractDTO(restored)
	return &result, nil
}

// CancelByAdmin cancels any non-terminal contract (admin).
func (s *ContractService) CancelByAdmin(ctx context.Context, contractID uuid.UUID) (*ContractDTO, error) {
	return s.transition(ctx, contractID, nil, contractDomain.EventTypeCancelled, (*contractDomain.Contract).CancelByAdmin)
}

// StartRental marks a CONFIRMED contract ACTIVE once the car is handed over.
func (s *ContractService) StartRental(ctx context.Context, contractID uuid.UUID) (*ContractDTO, error) {
	return s.transition(ctx, contractID, nil, contractDomain.EventTypeStarted, (*contractDomain.Contract).Start)
}

// CompleteRental marks an ACTIVE contract COMPLETED once the car is back.
func (s *ContractService) CompleteRental(ctx context.Context, contractID uuid.UUID) (*ContractDTO, error) {
	return s.transition(ctx, contractID, nil, contractDomain.EventTypeCompleted, (*contractDomain.Contract).Complete)
}

// StartRentalForCar starts the CONFIRMED contract of carID whose period
// contains at.
func (s *ContractService) StartRentalForCar(ctx context.Context, carID uuid.UUID, at time.Time) (*ContractDTO, error) {
	contracts, err := s.contracts.FindByCarInState(ctx, carID, contractDomain.StateConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to find confirmed contracts: %w", err)
	}
	for _, c := range contracts {
		if c.Period().Contains(at) {
			return s.StartRental(ctx, c.ID())
		}
	}
	return nil, domain.NewNotFoundError("confirmed contract for car", carID.String())
}

// CompleteRentalForCar completes the ACTIVE contract of carID.
func (s *ContractService) CompleteRentalForCar(ctx context.Context, carID uuid.UUID) (*ContractDTO, error) {
	contracts, err := s.contracts.FindByCarInState(ctx, carID, contractDomain.StateActive)
	if err != nil {
		return nil, fmt.Errorf("failed to find active contracts: %w", err)
	}
	if len(contracts) == 0 {
		return nil, domain.NewNotFoundError("active contract for car", carID.String())
	}
	return s.CompleteRental(ctx, contracts[0].ID())
}

// SweepDue starts confirmed contracts whose period has begun and completes
// active contracts whose period has ended, as of asOf. Individual failures
// are logged and counted; the sweep carries on.
func (s *ContractService) SweepDue(ctx context.Context, asOf time.Time) (*SweepResult, error) {
	result := &SweepResult{}

	toStart, err := s.contracts.FindDueToStart(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to find contracts due to start: %w", err)
	}
	for _, c := range toStart {
		if _, err := s.StartRental(ctx, c.ID()); err != nil {
			result.Failed++
			s.logger.Warn("failed to start rental",
				zap.String("contract_id", c.ID().String()),
				zap.Error(err),
			)
			continue
		}
		result.Started++
	}

	toComplete, err := s.contracts.FindDueToComplete(ctx, asOf)
	if err != nil {
		return result, fmt.Errorf("failed to find contracts due to complete: %w", err)
	}
	for _, c := range toComplete {
		if _, err := s.CompleteRental(ctx, c.ID()); err != nil {
			result.Failed++
			s.logger.Warn("failed to complete rental",
				zap.String("contract_id", c.ID().String()),
				zap.Error(err),
			)
			continue
		}
		result.Completed++
	}

	return result, nil
}

// GetContract returns a contract visible to actor.
func (s *ContractService) GetContract(ctx context.Context, contractID uuid.UUID, actor Actor) (*ContractDTO, error) {
	c, err := s.contracts.FindByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(c.ClientID()) {
		return nil, domain.NewForbiddenError("contract does not belong to this client")
	}
	result := toContractDTO(c)
	return &result, nil
}

// ListClientContracts returns a page of a client's contracts.
func (s *ContractService) ListClientContracts(ctx context.Context, clientID uuid.UUID, page, limit int) (*domain.PaginatedResult[ContractDTO], error) {
	contracts, total, err := s.contracts.FindByClientID(ctx, clientID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list client contracts: %w", err)
	}
	result := domain.NewPaginatedResult(toContractDTOs(contracts), total, page, limit)
	return &result, nil
}

// --- Admin methods ---

// ListContracts returns a filtered page of all contracts (admin).
func (s *ContractService) ListContracts(ctx context.Context, filter ContractFilter, page, limit int) ([]ContractDTO, int64, error) {
	f := contractDomain.ListFilter{CarID: filter.CarID, ClientID: filter.ClientID}
	if filter.State != "" {
		st, err := contractDomain.ParseState(filter.State)
		if err != nil {
			return nil, 0, err
		}
		f.State = &st
	}

	contracts, total, err := s.contracts.List(ctx, f, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contracts: %w", err)
	}
	return toContractDTOs(contracts), total, nil
}

// ContractStats returns contract counts by state (admin).
func (s *ContractService) ContractStats(ctx context.Context) (*ContractStatsDTO, error) {
	counts, err := s.contracts.CountByState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get contract stats: %w", err)
	}

	stats := &ContractStatsDTO{ByState: make(map[string]int64, len(contractDomain.States()))}
	for _, st := range contractDomain.States() {
		n := counts[st]
		stats.ByState[string(st)] = n
		stats.TotalContracts += n
	}
	return stats, nil
}

// CheckAvailability reports whether carID is free for [start, end).
func (s *ContractService) CheckAvailability(ctx context.Context, carID uuid.UUID, start, end string) (*AvailabilityDTO, error) {
	period, err := contractDomain.ParseDateRange(start, end)
	if err != nil {
		return nil, err
	}

	conflicts, err := s.availability.FindConflicting(ctx, carID, period, nil)
	if err != nil {
		return nil, err
	}

	result := &AvailabilityDTO{
		CarID:     carID,
		StartDate: period.Start.Format(contractDomain.DateLayout),
		EndDate:   period.End.Format(contractDomain.DateLayout),
		Available: len(conflicts) == 0,
	}
	for _, c := range conflicts {
		result.Busy = append(result.Busy, DateRangeDTO{
			StartDate: c.Period().Start.Format(contractDomain.DateLayout),
			EndDate:   c.Period().End.Format(contractDomain.DateLayout),
		})
	}
	return result, nil
}

// --- Helpers ---

// transition loads a contract, applies mutate and persists it with
// optimistic locking. A nil actor skips the ownership check.
func (s *ContractService) transition(
	ctx context.Context,
	contractID uuid.UUID,
	actor *Actor,
	eventType string,
	mutate func(*contractDomain.Contract) error,
) (*ContractDTO, error) {
	var (
		c   *contractDomain.Contract
		err error
	)
	if actor != nil {
		c, err = s.loadForActor(ctx, contractID, *actor)
	} else {
		c, err = s.contracts.FindByID(ctx, contractID)
	}
	if err != nil {
		return nil, err
	}

	from := c.State()
	if err := mutate(c); err != nil {
		return nil, err
	}

	c.IncrementVersion()
	if err := s.contracts.Update(ctx, c); err != nil {
		return nil, err
	}
	s.afterTransition(ctx, c, from, eventType)

	result := toContractDTO(c)
	return &result, nil
}

func (s *ContractService) loadForActor(ctx context.Context, contractID uuid.UUID, actor Actor) (*contractDomain.Contract, error) {
	c, err := s.contracts.FindByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(c.ClientID()) {
		return nil, domain.NewForbiddenError(errForeignContract)
	}
	return c, nil
}

func (s *ContractService) checkEligible(ctx context.Context, clientID, carID uuid.UUID) error {
	res, err := s.gate.CheckEligible(ctx, clientID, carID)
	if err != nil {
		return fmt.Errorf("eligibility check failed: %w", err)
	}

	var reason contractDomain.Reason
	switch res.Outcome {
	case eligibility.Eligible:
		return nil
	case eligibility.NotFound:
		return domain.NewNotFoundError(res.Entity, res.ID.String())
	case eligibility.UnverifiedDocument:
		reason = contractDomain.ReasonUnverifiedDocument
	case eligibility.ClientBanned:
		reason = contractDomain.ReasonClientBanned
	case eligibility.CarUnavailable:
		reason = contractDomain.ReasonCarUnavailable
	default:
		return fmt.Errorf("unknown eligibility outcome %q", res.Outcome)
	}

	s.metrics.EligibilityRejected(string(reason))
	s.logger.Info("rental rejected by eligibility gate",
		zap.String("client_id", clientID.String()),
		zap.String("car_id", carID.String()),
		zap.String("reason", string(reason)),
	)
	return contractDomain.NewEligibilityError(reason)
}

// withCarLock holds the per-car lock for the duration of one transaction.
func (s *ContractService) withCarLock(ctx context.Context, carID uuid.UUID, fn func(ctx context.Context) error) error {
	release, err := s.locker.Lock(ctx, "car:"+carID.String())
	if err != nil {
		return fmt.Errorf("failed to lock car %s: %w", carID, err)
	}
	defer release()
	return s.tx.WithinTransaction(ctx, fn)
}

func (s *ContractService) lockCar(ctx context.Context, carID uuid.UUID) (*fleet.Car, error) {
	car, err := s.cars.FindByIDForUpdate(ctx, carID)
	if err != nil {
		return nil, err
	}
	if car.IsDeleted() {
		return nil, domain.NewNotFoundError("car", carID.String())
	}
	return car, nil
}

func (s *ContractService) ensureFree(ctx context.Context, carID uuid.UUID, period contractDomain.DateRange, exclude *uuid.UUID) error {
	conflicts, err := s.availability.FindConflicting(ctx, carID, period, exclude)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return contractDomain.NewAvailabilityConflictError(carID, period, conflicts)
	}
	return nil
}

func (s *ContractService) observeFailure(err error) {
	var conflict *contractDomain.AvailabilityConflictError
	if errors.As(err, &conflict) {
		s.metrics.AvailabilityConflict()
		s.logger.Info("availability conflict",
			zap.String("car_id", conflict.CarID.String()),
			zap.String("period", conflict.Requested.String()),
			zap.Int("conflicts", len(conflict.Conflicts)),
		)
	}
}

func (s *ContractService) afterTransition(ctx context.Context, c *contractDomain.Contract, from contractDomain.State, eventType string) {
	s.logger.Info("contract state changed",
		zap.String("contract_id", c.ID().String()),
		zap.String("from", string(from)),
		zap.String("to", string(c.State())),
	)
	s.metrics.Transition(string(from), string(c.State()))
	s.publish(ctx, eventType, c, from)
}

func (s *ContractService) publish(ctx context.Context, eventType string, c *contractDomain.Contract, from contractDomain.State) {
	if s.publisher == nil {
		return
	}

	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, contractDomain.NewChangedEvent(c, from))
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	cloudEvent = cloudEvent.WithSubject(c.ID().String())

	if err := s.publisher.PublishEvent(ctx, contractDomain.TopicContractEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", contractDomain.TopicContractEvents),
			zap.String("event_type", eventType),
			zap.String("contract_id", c.ID().String()),
			zap.Error(err),
		)
	}
}
