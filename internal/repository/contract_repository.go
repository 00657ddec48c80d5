package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/drivehub/service-rental/internal/common/domain"
	contractDomain "github.com/drivehub/service-rental/internal/domain/contract"
)

// ContractModel is the GORM model for the contracts table.
type ContractModel struct {
	ID          uuid.UUID           `gorm:"type:uuid;primaryKey"`
	CarID       uuid.UUID           `gorm:"type:uuid;index;not null"`
	ClientID    uuid.UUID           `gorm:"type:uuid;index;not null"`
	StartDate   time.Time           `gorm:"type:date;not null"`
	EndDate     time.Time           `gorm:"type:date;not null"`
	State       string              `gorm:"not null;size:30;index"`
	ResumeState *string             `gorm:"size:30"`
	Comment     string              `gorm:"size:1000"`
	TotalCost   decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	Version     int64               `gorm:"not null;default:1"`
	CreatedAt   time.Time           `gorm:"not null"`
	UpdatedAt   time.Time           `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ContractModel) TableName() string {
	return "contracts"
}

// GormContractRepository is the GORM-based implementation of contract.Repository.
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository.
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

var _ contractDomain.Repository = (*GormContractRepository)(nil)

// FindByID retrieves a contract by its unique identifier.
func (r *GormContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*contractDomain.Contract, error) {
	var model ContractModel
	if err := conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("contract", id.String())
		}
		return nil, fmt.Errorf("failed to find contract by ID: %w", err)
	}
	return toDomainContract(&model)
}

// FindByClientID retrieves a client's contracts with pagination, newest first.
func (r *GormContractRepository) FindByClientID(ctx context.Context, clientID uuid.UUID, page, limit int) ([]*contractDomain.Contract, int64, error) {
	return r.list(conn(ctx, r.db).Where("client_id = ?", clientID), page, limit)
}

// List retrieves contracts matching filter with pagination (admin).
func (r *GormContractRepository) List(ctx context.Context, filter contractDomain.ListFilter, page, limit int) ([]*contractDomain.Contract, int64, error) {
	q := conn(ctx, r.db)
	if filter.State != nil {
		q = q.Where("state = ?", string(*filter.State))
	}
	if filter.CarID != nil {
		q = q.Where("car_id = ?", *filter.CarID)
	}
	if filter.ClientID != nil {
		q = q.Where("client_id = ?", *filter.ClientID)
	}
	return r.list(q, page, limit)
}

func (r *GormContractRepository) list(q *gorm.DB, page, limit int) ([]*contractDomain.Contract, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Model(&ContractModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count contracts: %w", err)
	}

	var models []ContractModel
	offset := (page - 1) * limit
	if err := q.Session(&gorm.Session{}).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list contracts: %w", err)
	}

	contracts, err := toDomainContracts(models)
	if err != nil {
		return nil, 0, err
	}
	return contracts, total, nil
}

// CountByState returns contract counts grouped by state (admin).
func (r *GormContractRepository) CountByState(ctx context.Context) (map[contractDomain.State]int64, error) {
	type stateCount struct {
		State string
		Count int64
	}
	var results []stateCount
	if err := conn(ctx, r.db).Model(&ContractModel{}).
		Select("state, count(*) as count").
		Group("state").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by state: %w", err)
	}

	counts := make(map[contractDomain.State]int64)
	for _, sc := range results {
		counts[contractDomain.State(sc.State)] = sc.Count
	}
	return counts, nil
}

// FindOverlapping returns occupying contracts of carID that share a day with
// period. Ranges are half-open, so a contract ending on period.Start does not
// match.
func (r *GormContractRepository) FindOverlapping(
	ctx context.Context,
	carID uuid.UUID,
	period contractDomain.DateRange,
	exclude *uuid.UUID,
) ([]*contractDomain.Contract, error) {
	q := conn(ctx, r.db).
		Where("car_id = ?", carID).
		Where("state IN ?", occupyingStateNames()).
		Where("start_date < ? AND end_date > ?", period.End, period.Start)
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}

	var models []ContractModel
	if err := q.Order("start_date").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find overlapping contracts: %w", err)
	}
	return toDomainContracts(models)
}

// FindDueToStart returns CONFIRMED contracts starting on or before day.
func (r *GormContractRepository) FindDueToStart(ctx context.Context, day time.Time) ([]*contractDomain.Contract, error) {
	var models []ContractModel
	if err := conn(ctx, r.db).
		Where("state = ? AND start_date <= ?", string(contractDomain.StateConfirmed), calendarDay(day)).
		Order("start_date").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find contracts due to start: %w", err)
	}
	return toDomainContracts(models)
}

// FindDueToComplete returns ACTIVE contracts whose period ended on or before day.
func (r *GormContractRepository) FindDueToComplete(ctx context.Context, day time.Time) ([]*contractDomain.Contract, error) {
	var models []ContractModel
	if err := conn(ctx, r.db).
		Where("state = ? AND end_date <= ?", string(contractDomain.StateActive), calendarDay(day)).
		Order("end_date").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find contracts due to complete: %w", err)
	}
	return toDomainContracts(models)
}

// calendarDay renders t as its UTC date so DATE comparisons do not depend on
// the session time zone.
func calendarDay(t time.Time) string {
	return t.UTC().Format(contractDomain.DateLayout)
}

// FindByCarInState returns the contracts of carID in the given state.
func (r *GormContractRepository) FindByCarInState(ctx context.Context, carID uuid.UUID, state contractDomain.State) ([]*contractDomain.Contract, error) {
	var models []ContractModel
	if err := conn(ctx, r.db).
		Where("car_id = ? AND state = ?", carID, string(state)).
		Order("start_date").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find contracts by car and state: %w", err)
	}
	return toDomainContracts(models)
}

// Save persists a new contract. An exclusion constraint violation means a
// concurrent booking of the same car won; it surfaces as an availability conflict.
func (r *GormContractRepository) Save(ctx context.Context, c *contractDomain.Contract) error {
	model := toContractModel(c)
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		if isExclusionViolation(err) {
			return &contractDomain.AvailabilityConflictError{CarID: c.CarID(), Requested: c.Period()}
		}
		if isForeignKeyViolation(err) {
			return domain.NewValidationError("contract references an unknown car or client")
		}
		return fmt.Errorf("failed to save contract: %w", err)
	}
	return nil
}

// Update persists changes to an existing contract with optimistic locking.
func (r *GormContractRepository) Update(ctx context.Context, c *contractDomain.Contract) error {
	model := toContractModel(c)

	// IncrementVersion was called, so the stored row still carries version-1.
	expectedVersion := c.Version() - 1
	result := conn(ctx, r.db).
		Model(&ContractModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"start_date":   model.StartDate,
			"end_date":     model.EndDate,
			"state":        model.State,
			"resume_state": model.ResumeState,
			"comment":      model.Comment,
			"total_cost":   model.TotalCost,
			"version":      model.Version,
			"updated_at":   model.UpdatedAt,
		})

	if result.Error != nil {
		if isExclusionViolation(result.Error) {
			return &contractDomain.AvailabilityConflictError{CarID: c.CarID(), Requested: c.Period()}
		}
		return fmt.Errorf("failed to update contract: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("contract was modified by another transaction")
	}

	return nil
}

// --- Conversion Helpers ---

func occupyingStateNames() []string {
	states := contractDomain.OccupyingStates()
	names := make([]string, len(states))
	for i, s := range states {
		names[i] = string(s)
	}
	return names
}

func toContractModel(c *contractDomain.Contract) *ContractModel {
	m := &ContractModel{
		ID:        c.ID(),
		CarID:     c.CarID(),
		ClientID:  c.ClientID(),
		StartDate: c.Period().Start,
		EndDate:   c.Period().End,
		State:     string(c.State()),
		Comment:   c.Comment(),
		Version:   c.Version(),
		CreatedAt: c.CreatedAt(),
		UpdatedAt: c.UpdatedAt(),
	}
	if rs := c.ResumeState(); rs != nil {
		s := string(*rs)
		m.ResumeState = &s
	}
	if tc := c.TotalCost(); tc != nil {
		m.TotalCost = decimal.NullDecimal{Decimal: *tc, Valid: true}
	}
	return m
}

func toDomainContract(m *ContractModel) (*contractDomain.Contract, error) {
	period, err := contractDomain.NewDateRange(m.StartDate, m.EndDate)
	if err != nil {
		return nil, fmt.Errorf("contract %s has an invalid period: %w", m.ID, err)
	}

	state, err := contractDomain.ParseState(m.State)
	if err != nil {
		return nil, fmt.Errorf("contract %s: %w", m.ID, err)
	}

	var resume *contractDomain.State
	if m.ResumeState != nil {
		rs, err := contractDomain.ParseState(*m.ResumeState)
		if err != nil {
			return nil, fmt.Errorf("contract %s resume state: %w", m.ID, err)
		}
		resume = &rs
	}

	var cost *decimal.Decimal
	if m.TotalCost.Valid {
		v := m.TotalCost.Decimal
		cost = &v
	}

	return contractDomain.ReconstructContract(
		m.ID,
		m.CarID,
		m.ClientID,
		period,
		state,
		resume,
		m.Comment,
		cost,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainContracts(models []ContractModel) ([]*contractDomain.Contract, error) {
	contracts := make([]*contractDomain.Contract, len(models))
	for i := range models {
		c, err := toDomainContract(&models[i])
		if err != nil {
			return nil, err
		}
		contracts[i] = c
	}
	return contracts, nil
}
