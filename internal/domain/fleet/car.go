package fleet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CarStatus is the operational status of a car in the catalog.
type CarStatus string

const (
	CarStatusAvailable   CarStatus = "AVAILABLE"
	CarStatusInactive    CarStatus = "INACTIVE"
	CarStatusMaintenance CarStatus = "MAINTENANCE"
)

// IsValid returns true if the status is a known catalog status.
func (s CarStatus) IsValid() bool {
	switch s {
	case CarStatusAvailable, CarStatusInactive, CarStatusMaintenance:
		return true
	}
	return false
}

// Car is a catalog entry. The catalog service owns it; rentals only read it.
type Car struct {
	id                 uuid.UUID
	registrationNumber string
	vin                string
	model              string
	dailyPrice         decimal.Decimal
	status             CarStatus
	year               int
	deletedAt          *time.Time
}

// ReconstructCar rebuilds a Car from persistence data.
func ReconstructCar(
	id uuid.UUID,
	registrationNumber, vin, model string,
	dailyPrice decimal.Decimal,
	status CarStatus,
	year int,
	deletedAt *time.Time,
) *Car {
	return &Car{
		id:                 id,
		registrationNumber: registrationNumber,
		vin:                vin,
		model:              model,
		dailyPrice:         dailyPrice,
		status:             status,
		year:               year,
		deletedAt:          deletedAt,
	}
}

func (c *Car) ID() uuid.UUID               { return c.id }
func (c *Car) RegistrationNumber() string  { return c.registrationNumber }
func (c *Car) VIN() string                 { return c.vin }
func (c *Car) Model() string               { return c.model }
func (c *Car) DailyPrice() decimal.Decimal { return c.dailyPrice }
func (c *Car) Status() CarStatus           { return c.status }
func (c *Car) Year() int                   { return c.year }
func (c *Car) DeletedAt() *time.Time       { return c.deletedAt }

// IsDeleted reports whether the car was removed from the catalog.
func (c *Car) IsDeleted() bool { return c.deletedAt != nil }

// IsRentable reports whether the car may be booked right now.
func (c *Car) IsRentable() bool {
	return !c.IsDeleted() && c.status == CarStatusAvailable
}
