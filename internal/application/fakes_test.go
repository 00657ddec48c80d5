package application

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/drivehub/service-rental/internal/common/domain"
	"github.com/drivehub/service-rental/internal/common/kafka"
	"github.com/drivehub/service-rental/internal/common/lock"
	clientDomain "github.com/drivehub/service-rental/internal/domain/client"
	contractDomain "github.com/drivehub/service-rental/internal/domain/contract"
	"github.com/drivehub/service-rental/internal/domain/fleet"
)

// memStore is an in-memory stand-in for the database. Contracts are copied
// on the way in and out so callers never share state with the store.
type memStore struct {
	mu        sync.Mutex
	contracts map[uuid.UUID]*contractDomain.Contract
	cars      map[uuid.UUID]*fleet.Car
	clients   map[uuid.UUID]*clientDomain.Client
	documents map[uuid.UUID]*clientDomain.Document
}

func newMemStore() *memStore {
	return &memStore{
		contracts: make(map[uuid.UUID]*contractDomain.Contract),
		cars:      make(map[uuid.UUID]*fleet.Car),
		clients:   make(map[uuid.UUID]*clientDomain.Client),
		documents: make(map[uuid.UUID]*clientDomain.Document),
	}
}

func cloneContract(c *contractDomain.Contract) *contractDomain.Contract {
	var resume *contractDomain.State
	if rs := c.ResumeState(); rs != nil {
		v := *rs
		resume = &v
	}
	var cost *decimal.Decimal
	if tc := c.TotalCost(); tc != nil {
		v := *tc
		cost = &v
	}
	return contractDomain.ReconstructContract(
		c.ID(), c.CarID(), c.ClientID(), c.Period(), c.State(), resume,
		c.Comment(), cost, c.Version(), c.CreatedAt(), c.UpdatedAt(),
	)
}

// --- contract.Repository ---

func (m *memStore) FindByID(_ context.Context, id uuid.UUID) (*contractDomain.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contracts[id]
	if !ok {
		return nil, domain.NewNotFoundError("contract", id.String())
	}
	return cloneContract(c), nil
}

func (m *memStore) sorted(keep func(*contractDomain.Contract) bool) []*contractDomain.Contract {
	var out []*contractDomain.Contract
	for _, c := range m.contracts {
		if keep(c) {
			out = append(out, cloneContract(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out
}

func page(items []*contractDomain.Contract, p, limit int) []*contractDomain.Contract {
	start := (p - 1) * limit
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func (m *memStore) FindByClientID(_ context.Context, clientID uuid.UUID, p, limit int) ([]*contractDomain.Contract, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.sorted(func(c *contractDomain.Contract) bool { return c.ClientID() == clientID })
	return page(all, p, limit), int64(len(all)), nil
}

func (m *memStore) List(_ context.Context, f contractDomain.ListFilter, p, limit int) ([]*contractDomain.Contract, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.sorted(func(c *contractDomain.Contract) bool {
		if f.State != nil && c.State() != *f.State {
			return false
		}
		if f.CarID != nil && c.CarID() != *f.CarID {
			return false
		}
		if f.ClientID != nil && c.ClientID() != *f.ClientID {
			return false
		}
		return true
	})
	return page(all, p, limit), int64(len(all)), nil
}

func (m *memStore) CountByState(_ context.Context) (map[contractDomain.State]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[contractDomain.State]int64)
	for _, c := range m.contracts {
		counts[c.State()]++
	}
	return counts, nil
}

// FindOverlapping returns every other contract of the car; the domain filter
// in AvailabilityService does the rest.
func (m *memStore) FindOverlapping(_ context.Context, carID uuid.UUID, _ contractDomain.DateRange, exclude *uuid.UUID) ([]*contractDomain.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(c *contractDomain.Contract) bool {
		return c.CarID() == carID && (exclude == nil || c.ID() != *exclude)
	}), nil
}

func (m *memStore) FindDueToStart(_ context.Context, day time.Time) ([]*contractDomain.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(c *contractDomain.Contract) bool {
		return c.State() == contractDomain.StateConfirmed && !c.Period().Start.After(day)
	}), nil
}

func (m *memStore) FindDueToComplete(_ context.Context, day time.Time) ([]*contractDomain.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(c *contractDomain.Contract) bool {
		return c.State() == contractDomain.StateActive && !c.Period().End.After(day)
	}), nil
}

func (m *memStore) FindByCarInState(_ context.Context, carID uuid.UUID, st contractDomain.State) ([]*contractDomain.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(c *contractDomain.Contract) bool {
		return c.CarID() == carID && c.State() == st
	}), nil
}

func (m *memStore) Save(_ context.Context, c *contractDomain.Contract) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contracts[c.ID()] = cloneContract(c)
	return nil
}

func (m *memStore) Update(_ context.Context, c *contractDomain.Contract) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.contracts[c.ID()]
	if !ok {
		return domain.NewNotFoundError("contract", c.ID().String())
	}
	if stored.Version() != c.Version()-1 {
		return domain.NewConflictError("contract was modified concurrently")
	}
	m.contracts[c.ID()] = cloneContract(c)
	return nil
}

// --- read-only stores ---

type memCars struct{ *memStore }

func (m memCars) FindByID(_ context.Context, id uuid.UUID) (*fleet.Car, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	car, ok := m.cars[id]
	if !ok {
		return nil, domain.NewNotFoundError("car", id.String())
	}
	return car, nil
}

func (m memCars) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*fleet.Car, error) {
	return m.FindByID(ctx, id)
}

type memClients struct{ *memStore }

func (m memClients) FindByID(_ context.Context, id uuid.UUID) (*clientDomain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cl, ok := m.clients[id]
	if !ok {
		return nil, domain.NewNotFoundError("client", id.String())
	}
	return cl, nil
}

type memDocuments struct{ *memStore }

func (m memDocuments) FindCurrentIdentity(_ context.Context, clientID uuid.UUID) (*clientDomain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var current *clientDomain.Document
	for _, d := range m.documents {
		if d.ClientID() != clientID || d.DeletedAt() != nil || d.Kind() != clientDomain.DocumentKindIdentity {
			continue
		}
		if current == nil || d.CreatedAt().After(current.CreatedAt()) {
			current = d
		}
	}
	return current, nil
}

// --- infrastructure fakes ---

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _ string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// --- fixture ---

type fixture struct {
	store     *memStore
	publisher *recordingPublisher
	svc       *ContractService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	pub := &recordingPublisher{}
	cars := memCars{store}
	svc := NewContractService(ContractServiceDeps{
		Contracts: store,
		Cars:      cars,
		Gate:      NewEligibilityService(memClients{store}, memDocuments{store}, cars),
		Tx:        passthroughTx{},
		Locker:    lock.NewKeyedMutex(),
		Publisher: pub,
	})
	return &fixture{store: store, publisher: pub, svc: svc}
}

func (f *fixture) addCar(status fleet.CarStatus, dailyPrice string) uuid.UUID {
	id := uuid.New()
	f.store.cars[id] = fleet.ReconstructCar(id, "REG-"+id.String()[:6], "VIN"+id.String()[:8], "Model 3",
		decimal.RequireFromString(dailyPrice), status, 2022, nil)
	return id
}

func (f *fixture) addClient(banned, verified bool) uuid.UUID {
	id := uuid.New()
	f.store.clients[id] = clientDomain.ReconstructClient(id, id.String()[:8]+"@example.com", "Test Client", banned, nil)
	docID := uuid.New()
	f.store.documents[docID] = clientDomain.ReconstructDocument(docID, id, clientDomain.DocumentKindIdentity,
		"ID-"+docID.String()[:6], verified, nil, time.Now().UTC())
	return id
}

// seed stores a contract directly, bypassing the service.
func (f *fixture) seed(t *testing.T, carID, clientID uuid.UUID, start, end string, st contractDomain.State) *contractDomain.Contract {
	t.Helper()
	period, err := contractDomain.ParseDateRange(start, end)
	require.NoError(t, err)
	now := time.Now().UTC()
	c := contractDomain.ReconstructContract(uuid.New(), carID, clientID, period, st, nil, "", nil, 1, now, now)
	f.store.contracts[c.ID()] = c
	return cloneContract(c)
}

func (f *fixture) stored(t *testing.T, id uuid.UUID) *contractDomain.Contract {
	t.Helper()
	c, err := f.store.FindByID(context.Background(), id)
	require.NoError(t, err)
	return c
}
