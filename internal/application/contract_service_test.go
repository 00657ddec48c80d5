package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivehub/service-rental/internal/common/domain"
	contractDomain "github.com/drivehub/service-rental/internal/domain/contract"
	"github.com/drivehub/service-rental/internal/domain/fleet"
)

func createReq(carID uuid.UUID, start, end string) CreateContractRequest {
	return CreateContractRequest{CarID: carID, StartDate: start, EndDate: end}
}

func TestCreateContract_Success(t *testing.T) {
	f := newFixture(t)
	carID := f.addCar(fleet.CarStatusAvailable, "40.00")
	clientID := f.addClient(false, true)

	dto, err := f.svc.CreateContract(context.Background(), clientID, CreateContractRequest{
		CarID: carID, StartDate: "2025-01-10", EndDate: "2025-01-13", Comment: "child seat please",
	})
	require.NoError(t, err)

	assert.Equal(t, string(contractDomain.StatePending), dto.State)
	assert.Equal(t, 3, dto.Days)
	require.NotNil(t, dto.TotalCost)
	assert.Equal(t, "120.00", *dto.TotalCost)
	assert.Equal(t, clientID, dto.ClientID)
	assert.Equal(t, []string{contractDomain.EventTypeCreated}, f.publisher.types())
}

func TestCreateContract_Validation(t *testing.T) {
	f := newFixture(t)
	carID := f.addCar(fleet.CarStatusAvailable, "40.00")
	clientID := f.addClient(false, true)

	var vErr *domain.ValidationError
	_, err := f.svc.CreateContract(context.Background(), clientID, createReq(carID, "2025-01-10", "2025-01-10"))
	assert.True(t, errors.As(err, &vErr))

	_, err = f.svc.CreateContract(context.Background(), clientID, createReq(carID, "2025-01-12", "2025-01-10"))
	assert.True(t, errors.As(err, &vErr))

	_, err = f.svc.CreateContract(context.Background(), clientID, createReq(carID, "tomorrow", "2025-01-10"))
	assert.True(t, errors.As(err, &vErr))
	assert.Empty(t, f.store.contracts)
}

func TestCreateContract_NotFound(t *testing.T) {
	f := newFixture(t)
	carID := f.addCar(fleet.CarStatusAvailable, "40.00")
	clientID := f.addClient(false, true)

	var nf *domain.NotFoundError
	_, err := f.svc.CreateContract(context.Background(), uuid.New(), createReq(carID, "2025-01-10", "2025-01-12"))
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "client", nf.Entity)

	_, err = f.svc.CreateContract(context.Background(), clientID, createReq(uuid.New(), "2025-01-10", "2025-01-12"))
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "car", nf.Entity)

	deleted := uuid.New()
	now := time.Now()
	f.store.cars[deleted] = fleet.ReconstructCar(deleted, "DEL-1", "VIN-DEL", "Golf",
		f.store.cars[carID].DailyPrice(), fleet.CarStatusAvailable, 2019, &now)
	_, err = f.svc.CreateContract(context.Background(), clientID, createReq(deleted, "2025-01-10", "2025-01-12"))
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "car", nf.Entity)
}

func TestCreateContract_EligibilityPrecedence(t *testing.T) {
	f := newFixture(t)
	free := f.addCar(fleet.CarStatusAvailable, "40.00")
	broken := f.addCar(fleet.CarStatusMaintenance, "40.00")

	tests := []struct {
		name     string
		banned   bool
		verified bool
		carID    uuid.UUID
		want     contractDomain.Reason
	}{
		{"banned wins over everything", true, false, broken, contractDomain.ReasonClientBanned},
		{"document before car", false, false, broken, contractDomain.ReasonUnverifiedDocument},
		{"car unavailable", false, true, broken, contractDomain.ReasonCarUnavailable},
		{"unverified on a free car", false, false, free, contractDomain.ReasonUnverifiedDocument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clientID := f.addClient(tt.banned, tt.verified)
			_, err := f.svc.CreateContract(context.Background(), clientID, createReq(tt.carID, "2025-01-10", "2025-01-12"))
			var eErr *contractDomain.EligibilityError
			require.True(t, errors.As(err, &eErr), "got %v", err)
			assert.Equal(t, tt.want, eErr.Reason)
		})
	}
}

func TestCreateContract_UnverifiedDocumentRegardlessOfAvailability(t *testing.T) {
	f := newFixture(t)
	carID := f.addCar(fleet.CarStatusAvailable, "40.00")
	f.seed(t, carID, uuid.New(), "2025-01-10", "2025-01-20", contractDomain.StateConfirmed)
	clientID := f.addClient(false, false)

	for _, r := range [][2]string{{"2025-01-15", "2025-01-25"}, {"2025-02-01", "2025-02-05"}} {
		_, err := f.svc.CreateContract(context.Background(), clientID, createReq(carID, r[0], r[1]))
		var eErr *contractDomain.EligibilityError
		require.True(t, errors.As(err, &eErr))
		assert.Equal(t, contractDomain.ReasonUnverifiedDocument, eErr.Reason)
	}
}

func TestCreateContract_OverlapScenario(t *testing.T) {
	f := newFixture(t)
	carID := f.addCar(fleet.CarStatusAvailable, "40.00")
	clientID := f.addClient(false, true)
	existing := f.seed(t, carID, uuid.New(), "2025-01-10", "2025-01-20", contractDomain.StateConfirmed)

	_, err := f.svc.CreateContract(context.Background(), clientID, createReq(carID, "2025-01-15", "2025-01-25"))
	var conflict *contractDomain.AvailabilityConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, carID, conflict.CarID)
	assert.Equal(t, []uuid.UUID{existing.ID()}, conflict.Conflicts)

	_, err = f.svc.CreateContract(context.Background(), clientID, createReq(carID, "2025-01-20", "2025-01-25"))
	assert.NoError(t, err, "touching ranges must not conflict")

	_, err = f.svc.CreateContract(context.Background(), clientID, createReq(carID, "2025-01-01", "2025-01-10"))
	assert.NoError(t, err)
}

func TestCreateContract_NonOccupyingStatesDoNotBlock(t *testing.T) {
	f := newFixture(t)
	carID := f.addCar(fleet.CarStatusAvailable, "40.00")
	clientID := f.addClient(false, true)
	f.seed(t, carID, uuid.New(), "2025-01-10", "2025-01-20", contractDomain.StateCancelled)
	f.seed(t, carID, uuid.New(), "2025-01-10", "2025-01-20", contractDomain.StateCompleted)
	f.seed(t, carID, uuid.New(), "2025-01-10", "2025-01-20", contractDomain.StateCancellationRequested)

	_, err := f.svc.CreateContract(context.Background(), clientID, createReq(carID, "2025-01-12", "2025-01-14"))
	assert.NoError(t, err)
}

func TestCreateContract_NoDoubleBookingUnderConcurrency(t *testing.T) {
	f := newFixture(t)
	carID := f.addCar(fleet.CarStatusAvailable, "25.00")
	otherCar := f.addCar(fleet.CarStatusAvailable, "25.00")

	const workers = 20
	clients := make([]uuid.UUID, workers)
	for i := range clients {
		clients[i] = f.addClient(false, true)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
		other     []error
	)
	ranges := [][2]string{
		{"2025-03-01", "2025-03-10"},
		{"2025-03-05", "2025-03-15"},
		{"2025-03-09", "2025-03-11"},
		{"2025-03-08", "2025-03-20"},
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := ranges[i%len(ranges)]
			_, err := f.svc.CreateContract(context.Background(), clients[i], createReq(carID, r[0], r[1]))

			mu.Lock()
			defer mu.Unlock()
			var conflict *contractDomain.AvailabilityConflictError
			switch {
			case err == nil:
				successes++
			case errors.As(err, &conflict):
				conflicts++
			default:
				other = append(other, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Empty(t, other)
	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)

	// a different car is unaffected
	_, err := f.svc.CreateContract(context.Background(), clients[0], createReq(otherCar, "2025-03-01", "2025-03-10"))
	assert.NoError(t, err)
}

func TestAmendContract_SelfExclusion(t *testing.T) {
	f := newFixture(t)
	carID := f.addCar(fleet.CarStatusAvailable, "10.00")
	clientID := f.addClient(false, true)
	c := f.seed(t, carID, clientID, "2025-01-10", "2025-01-20", contractDomain.StateConfirmed)
	actor := Actor{ID: clientID}

	dto, err := f.svc.AmendContract(context.Background(), c.ID(), actor, AmendContractRequest{StartDate: "2025-01-12", EndDate: "2025-01-22"})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-12", dto.StartDate)
	assert.Equal(t, string(contractDomain.StateConfirmed), dto.State)
	assert.Equal(t, "100.00", *dto.TotalCost)
	assert.Equal(t, int64(2), dto.Version)

	// re-submitting the same range never conflicts with itself
	_, err = f.svc.AmendContract(context.Background(), c.ID(), actor, AmendContractRequest{StartDate: "2025-01-12", EndDate: "2025-01-22"})
	assert.NoError(t, err)
}

func TestAmendContract_ConflictLeavesContractUnchanged(t *testing.T) {
	f := newFixture(t)
	carID := f.addCar(fleet.CarStatusAvailable, "10.00")
	clientID := f.addClient(false, true)
	c := f.seed(t, carID, clientID, "2025-01-10", "2025-01-20", contractDomain.StatePending)
	f.seed(t, carID, uuid.New(), "2025-01-20", "2025-01-30", contractDomain.StateActive)

	_, err := f.svc.AmendContract(context.Background(), c.ID(), Actor{ID: clientID},
		AmendContractRequest{StartDate: "2025-01-15", EndDate: "2025-01-25"})
	var conflict *contractDomain.AvailabilityConflictError
	require.True(t, errors.As(err, &conflict))

	stored := f.stored(t, c.ID())
	assert.True(t, c.Period().Equal(stored.Period()))
	assert.Equal(t, c.Version(), stored.Version())
}

func TestAmendContract_StateAndOwnership(t *testing.T) {
	f := newFixture(t)
	carID := f.addCar(fleet.CarStatusAvailable, "10.00")
	clientID := f.addClient(false, true)
	active := f.seed(t, carID, clientID, "2025-01-10", "2025-01-20", contractDomain.StateActive)
	pending := f.seed(t, carID, clientID, "2025-02-10", "2025-02-20", contractDomain.StatePending)
	req := AmendContractRequest{StartDate: "2025-01-11", EndDate: "2025-01-21"}

	var isErr *domain.InvalidStateError
	_, err := f.svc.AmendContract(context.Background(), active.ID(), Actor{ID: clientID}, req)
	assert.True(t, errors.As(err, &isErr))

	var forbidden *domain.ForbiddenError
	_, err = f.svc.AmendContract(context.Background(), pending.ID(), Actor{ID: uuid.New()},
		AmendContractRequest{StartDate: "2025-02-11", EndDate: "2025-02-21"})
	assert.True(t, errors.As(err, &forbidden))

	_, err = f.svc.AmendContract(context.Background(), pending.ID(), Actor{ID: uuid.New(), Admin: true},
		AmendContractRequest{StartDate: "2025-02-11", EndDate: "2025-02-21"})
	assert.NoError(t, err)
}

func TestRequestCancellation_Authorization(t *testing.T) {
	f := newFixture(t)
	carID := f.addCar(fleet.CarStatusAvailable, "10.00")
	owner := f.addClient(false, true)
	c := f.seed(t, carID, owner, "2025-01-10", "2025-01-20", contractDomain.StateConfirmed)

	_, err := f.svc.RequestCancellation(context.Background(), c.ID(), Actor{ID: uuid.New()})
	var forbidden *domain.ForbiddenError
	require.True(t, errors.As(err, &forbidden))
	assert.Contains(t, err.Error(), "someone else's contract")

	var nf *domain.NotFoundError
	var forbiddenAgain *domain.ForbiddenError
	_, err = f.svc.RequestCancellation(context.Background(), uuid.New(), Actor{ID: uuid.New()})
	assert.True(t, errors.As(err, &nf))
	assert.False(t, errors.As(err, &forbiddenAgain))

	assert.Equal(t, contractDomain.StateConfirmed, f.stored(t, c.ID()).State())
}

func TestRequestCancellation_Idempotent(t *testing.T) {
	f := newFixture(t)
	carID := f.addCar(fleet.CarStatusAvailable, "10.00")
	owner := f.addClient(false, true)
	c := f.seed(t, carID, owner, "2025-01-10", "2025-01-20", contractDomain.StateConfirmed)

	first, err := f.svc.RequestCancellation(context.Background(), c.ID(), Actor{ID: owner})
	require.NoError(t, err)
	assert.Equal(t, string(contractDomain.StateCancellationRequested), first.State)
	require.NotNil(t, first.ResumeState)
	assert.Equal(t, string(contractDomain.StateConfirmed), *first.ResumeState)

	second, err := f.svc.RequestCancellation(context.Background(), c.ID(), Actor{ID: owner})
	require.NoError(t, err)
	assert.Equal(t, first.Version, second.Version)
	assert.Equal(t, []string{contractDomain.EventTypeCancellationRequested}, f.publisher.types())
}

func TestConfirmCancellation_OnPendingIsInvalid(t *testing.T) {
	f := newFixture(t)
	carID := f.addCar(fleet.CarStatusAvailable, "10.00")
	c := f.seed(t, carID, uuid.New(), "2025-01-10", "2025-01-20", contractDomain.StatePending)

	_, err := f.svc.ConfirmCancellation(context.Background(), c.ID())
	var isErr *domain.InvalidStateError
	require.True(t, errors.As(err, &isErr))
	assert.Equal(t, string(contractDomain.StatePending), isErr.From)
	assert.Equal(t, contractDomain.StatePending, f.stored(t, c.ID()).State())
}

func TestCancellationFlow(t *testing.T) {
	f := newFixture(t)
	carID := f.addCar(fleet.CarStatusAvailable, "10.00")
	owner := f.addClient(false, true)
	c := f.seed(t, carID, owner, "2025-01-10", "2025-01-20", contractDomain.StatePending)

	_, err := f.svc.RequestCancellation(context.Background(), c.ID(), Actor{ID: owner})
	require.NoError(t, err)
	dto, err := f.svc.ConfirmCancellation(context.Background(), c.ID())
	require.NoError(t, err)
	assert.Equal(t, string(contractDomain.StateCancelled), dto.State)
	assert.Nil(t, dto.ResumeState)
}

func TestRejectCancellation_RestoresPriorState(t *testing.T) {
	f := newFixture(t)
	carID := f.addCar(fleet.CarStatusAvailable, "10.00")
	owner := f.addClient(false, true)
	c := f.seed(t, carID, owner, "2025-01-10", "2025-01-20", contractDomain.StateConfirmed)

	_, err := f.svc.RequestCancellation(context.Background(), c.ID(), Actor{ID: owner})
	require.NoError(t, err)

	dto, err := f.svc.RejectCancellation(context.Background(), c.ID())
	require.NoError(t, err)
	assert.Equal(t, string(contractDomain.StateConfirmed), dto.State)
	assert.Nil(t, dto.ResumeState)
}

func TestRejectCancellation_ConflictKeepsRequest(t *testing.T) {
	f := newFixture(t)
	carID := f.addCar(fleet.CarStatusAvailable, "10.00")
	owner := f.addClient(false, true)
	other := f.addClient(false, true)
	c := f.seed(t, carID, owner, "2025-01-10", "2025-01-20", contractDomain.StateConfirmed)

	_, err := f.svc.RequestCancellation(context.Background(), c.ID(), Actor{ID: owner})
	require.NoError(t, err)

	// the range is free while the request is pending
	_, err = f.svc.CreateContract(context.Background(), other, createReq(carID, "2025-01-15", "2025-01-18"))
	require.NoError(t, err)

	_, err = f.svc.RejectCancellation(context.Background(), c.ID())
	var conflict *contractDomain.AvailabilityConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, contractDomain.StateCancellationRequested, f.stored(t, c.ID()).State())
}

func TestRejectCancellation_NotRequested(t *testing.T) {
	f := newFixture(t)
	carID := f.addCar(fleet.CarStatusAvailable, "10.00")
	c := f.seed(t, carID, uuid.New(), "2025-01-10", "2025-01-20", contractDomain.StateConfirmed)

	_, err := f.svc.RejectCancellation(context.Background(), c.ID())
	var isErr *domain.InvalidStateError
	assert.True(t, errors.As(err, &isErr))
}

func TestTerminalStatesAreClosed(t *testing.T) {
	for _, st := range []contractDomain.State{contractDomain.StateCancelled, contractDomain.StateCompleted} {
		t.Run(string(st), func(t *testing.T) {
			f := newFixture(t)
			carID := f.addCar(fleet.CarStatusAvailable, "10.00")
			owner := f.addClient(false, true)
			c := f.seed(t, carID, owner, "2025-01-10", "2025-01-20", st)
			ctx := context.Background()
			actor := Actor{ID: owner}

			ops := map[string]func() error{
				"amend": func() error {
					_, err := f.svc.AmendContract(ctx, c.ID(), actor, AmendContractRequest{StartDate: "2025-01-11", EndDate: "2025-01-12"})
					return err
				},
				"confirm":              func() error { _, err := f.svc.ConfirmContract(ctx, c.ID()); return err },
				"request cancellation": func() error { _, err := f.svc.RequestCancellation(ctx, c.ID(), actor); return err },
				"confirm cancellation": func() error { _, err := f.svc.ConfirmCancellation(ctx, c.ID()); return err },
				"reject cancellation":  func() error { _, err := f.svc.RejectCancellation(ctx, c.ID()); return err },
				"admin cancel":         func() error { _, err := f.svc.CancelByAdmin(ctx, c.ID()); return err },
				"start":                func() error { _, err := f.svc.StartRental(ctx, c.ID()); return err },
				"complete":             func() error { _, err := f.svc.CompleteRental(ctx, c.ID()); return err },
			}
			for name, op := range ops {
				var isErr *domain.InvalidStateError
				assert.True(t, errors.As(op(), &isErr), name)
			}

			stored := f.stored(t, c.ID())
			assert.Equal(t, st, stored.State())
			assert.Equal(t, c.Version(), stored.Version())
			assert.Empty(t, f.publisher.types())
		})
	}
}

func TestCancelByAdmin(t *testing.T) {
	f := newFixture(t)
	carID := f.addCar(fleet.CarStatusAvailable, "10.00")
	c := f.seed(t, carID, uuid.New(), "2025-01-10", "2025-01-20", contractDomain.StateActive)

	dto, err := f.svc.CancelByAdmin(context.Background(), c.ID())
	require.NoError(t, err)
	assert.Equal(t, string(contractDomain.StateCancelled), dto.State)
	assert.Equal(t, []string{contractDomain.EventTypeCancelled}, f.publisher.types())
}

func TestOptimisticLockConflict(t *testing.T) {
	f := newFixture(t)
	carID := f.addCar(fleet.CarStatusAvailable, "10.00")
	c := f.seed(t, carID, uuid.New(), "2025-01-10", "2025-01-20", contractDomain.StatePending)

	// a stale copy loses against a write that already happened
	stale := cloneContract(c)
	_, err := f.svc.ConfirmContract(context.Background(), c.ID())
	require.NoError(t, err)

	require.NoError(t, stale.CancelByAdmin())
	stale.IncrementVersion()
	err = f.store.Update(context.Background(), stale)
	var conflict *domain.ConflictError
	assert.True(t, errors.As(err, &conflict))
}

func TestSweepDue(t *testing.T) {
	f := newFixture(t)
	carA := f.addCar(fleet.CarStatusAvailable, "10.00")
	carB := f.addCar(fleet.CarStatusAvailable, "10.00")
	due := f.seed(t, carA, uuid.New(), "2025-01-10", "2025-01-20", contractDomain.StateConfirmed)
	future := f.seed(t, carA, uuid.New(), "2025-02-10", "2025-02-20", contractDomain.StateConfirmed)
	finished := f.seed(t, carB, uuid.New(), "2025-01-01", "2025-01-10", contractDomain.StateActive)
	running := f.seed(t, carB, uuid.New(), "2025-01-10", "2025-01-30", contractDomain.StateActive)

	asOf, _ := time.Parse(contractDomain.DateLayout, "2025-01-10")
	res, err := f.svc.SweepDue(context.Background(), asOf)
	require.NoError(t, err)
	assert.Equal(t, &SweepResult{Started: 1, Completed: 1}, res)

	assert.Equal(t, contractDomain.StateActive, f.stored(t, due.ID()).State())
	assert.Equal(t, contractDomain.StateConfirmed, f.stored(t, future.ID()).State())
	assert.Equal(t, contractDomain.StateCompleted, f.stored(t, finished.ID()).State())
	assert.Equal(t, contractDomain.StateActive, f.stored(t, running.ID()).State())
}

func TestStartAndCompleteForCar(t *testing.T) {
	f := newFixture(t)
	carID := f.addCar(fleet.CarStatusAvailable, "10.00")
	c := f.seed(t, carID, uuid.New(), "2025-01-10", "2025-01-20", contractDomain.StateConfirmed)

	at, _ := time.Parse(contractDomain.DateLayout, "2025-01-12")
	dto, err := f.svc.StartRentalForCar(context.Background(), carID, at)
	require.NoError(t, err)
	assert.Equal(t, c.ID(), dto.ID)
	assert.Equal(t, string(contractDomain.StateActive), dto.State)

	dto, err = f.svc.CompleteRentalForCar(context.Background(), carID)
	require.NoError(t, err)
	assert.Equal(t, string(contractDomain.StateCompleted), dto.State)

	var nf *domain.NotFoundError
	_, err = f.svc.CompleteRentalForCar(context.Background(), carID)
	assert.True(t, errors.As(err, &nf))
}

func TestReads(t *testing.T) {
	f := newFixture(t)
	carID := f.addCar(fleet.CarStatusAvailable, "10.00")
	owner := f.addClient(false, true)
	a := f.seed(t, carID, owner, "2025-01-10", "2025-01-20", contractDomain.StateConfirmed)
	f.seed(t, carID, owner, "2025-02-10", "2025-02-20", contractDomain.StatePending)
	f.seed(t, carID, uuid.New(), "2025-03-10", "2025-03-20", contractDomain.StateCancelled)
	ctx := context.Background()

	got, err := f.svc.GetContract(ctx, a.ID(), Actor{ID: owner})
	require.NoError(t, err)
	assert.Equal(t, a.ID(), got.ID)

	var forbidden *domain.ForbiddenError
	_, err = f.svc.GetContract(ctx, a.ID(), Actor{ID: uuid.New()})
	assert.True(t, errors.As(err, &forbidden))

	_, err = f.svc.GetContract(ctx, a.ID(), Actor{ID: uuid.New(), Admin: true})
	assert.NoError(t, err)

	pageOne, err := f.svc.ListClientContracts(ctx, owner, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pageOne.Total)
	assert.Equal(t, 2, pageOne.TotalPages)
	assert.Len(t, pageOne.Items, 1)

	items, total, err := f.svc.ListContracts(ctx, ContractFilter{State: "booked"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, a.ID(), items[0].ID)

	_, _, err = f.svc.ListContracts(ctx, ContractFilter{State: "lost"}, 1, 10)
	var vErr *domain.ValidationError
	assert.True(t, errors.As(err, &vErr))

	stats, err := f.svc.ContractStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalContracts)
	assert.Equal(t, int64(1), stats.ByState["CANCELLED"])
	assert.Equal(t, int64(0), stats.ByState["ACTIVE"])
	assert.Len(t, stats.ByState, 6)
}

func TestCheckAvailability(t *testing.T) {
	f := newFixture(t)
	carID := f.addCar(fleet.CarStatusAvailable, "10.00")
	f.seed(t, carID, uuid.New(), "2025-01-10", "2025-01-20", contractDomain.StateConfirmed)
	ctx := context.Background()

	res, err := f.svc.CheckAvailability(ctx, carID, "2025-01-15", "2025-01-25")
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Equal(t, []DateRangeDTO{{StartDate: "2025-01-10", EndDate: "2025-01-20"}}, res.Busy)

	res, err = f.svc.CheckAvailability(ctx, carID, "2025-01-20", "2025-01-25")
	require.NoError(t, err)
	assert.True(t, res.Available)

	res, err = f.svc.CheckAvailability(ctx, uuid.New(), "2025-01-15", "2025-01-25")
	require.NoError(t, err)
	assert.True(t, res.Available, "unknown car has no conflicts")
}
