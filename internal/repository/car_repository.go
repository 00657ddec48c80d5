package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/drivehub/service-rental/internal/common/domain"
	"github.com/drivehub/service-rental/internal/domain/fleet"
)

// CarModel is the GORM model for the catalog's cars table. DeletedAt is a
// plain column so soft-deleted rows stay visible to FindByID.
type CarModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RegistrationNumber string          `gorm:"uniqueIndex;not null;size:20"`
	VIN                string          `gorm:"column:vin;uniqueIndex;not null;size:17"`
	Model              string          `gorm:"not null;size:100"`
	DailyPrice         decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Status             string          `gorm:"not null;size:20;default:'AVAILABLE'"`
	Year               int             `gorm:"not null"`
	DeletedAt          *time.Time      `gorm:""`
}

func (CarModel) TableName() string { return "cars" }

// GormCarRepository reads cars.
type GormCarRepository struct {
	db *gorm.DB
}

// NewGormCarRepository creates a new GormCarRepository.
func NewGormCarRepository(db *gorm.DB) *GormCarRepository {
	return &GormCarRepository{db: db}
}

var _ fleet.CarRepository = (*GormCarRepository)(nil)

// FindByID retrieves a car, including soft-deleted ones.
func (r *GormCarRepository) FindByID(ctx context.Context, id uuid.UUID) (*fleet.Car, error) {
	return r.find(conn(ctx, r.db), id)
}

// FindByIDForUpdate retrieves a car with SELECT ... FOR UPDATE. Outside a
// transaction the row lock is released immediately.
func (r *GormCarRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*fleet.Car, error) {
	return r.find(conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormCarRepository) find(q *gorm.DB, id uuid.UUID) (*fleet.Car, error) {
	var m CarModel
	if err := q.Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("car", id.String())
		}
		return nil, fmt.Errorf("failed to find car: %w", err)
	}
	return fleet.ReconstructCar(
		m.ID, m.RegistrationNumber, m.VIN, m.Model,
		m.DailyPrice, fleet.CarStatus(m.Status), m.Year, m.DeletedAt,
	), nil
}
