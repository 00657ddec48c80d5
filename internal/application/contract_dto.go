package application

import (
	"time"

	"github.com/google/uuid"

	contractDomain "github.com/drivehub/service-rental/internal/domain/contract"
)

// CreateContractRequest holds the data needed to book a car.
type CreateContractRequest struct {
	CarID     uuid.UUID `json:"car_id" binding:"required"`
	StartDate string    `json:"start_date" binding:"required"`
	EndDate   string    `json:"end_date" binding:"required"`
	Comment   string    `json:"comment"`
}

// AmendContractRequest holds a new rental period.
type AmendContractRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

// ContractFilter narrows the admin contract listing.
type ContractFilter struct {
	State    string
	CarID    *uuid.UUID
	ClientID *uuid.UUID
}

// ContractDTO is the response representation of a contract.
type ContractDTO struct {
	ID          uuid.UUID `json:"id"`
	CarID       uuid.UUID `json:"car_id"`
	ClientID    uuid.UUID `json:"client_id"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Days        int       `json:"days"`
	State       string    `json:"state"`
	ResumeState *string   `json:"resume_state,omitempty"`
	Comment     string    `json:"comment,omitempty"`
	TotalCost   *string   `json:"total_cost,omitempty"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DateRangeDTO is a half-open [start_date, end_date) range.
type DateRangeDTO struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// AvailabilityDTO answers whether a car is free for a period.
type AvailabilityDTO struct {
	CarID     uuid.UUID      `json:"car_id"`
	StartDate string         `json:"start_date"`
	EndDate   string         `json:"end_date"`
	Available bool           `json:"available"`
	Busy      []DateRangeDTO `json:"busy,omitempty"`
}

// ContractStatsDTO holds contract counts for the admin dashboard.
type ContractStatsDTO struct {
	TotalContracts int64            `json:"total_contracts"`
	ByState        map[string]int64 `json:"by_state"`
}

// SweepResult summarizes one run of the lifecycle sweep.
type SweepResult struct {
	Started   int `json:"started"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

func toContractDTO(c *contractDomain.Contract) ContractDTO {
	dto := ContractDTO{
		ID:        c.ID(),
		CarID:     c.CarID(),
		ClientID:  c.ClientID(),
		StartDate: c.Period().Start.Format(contractDomain.DateLayout),
		EndDate:   c.Period().End.Format(contractDomain.DateLayout),
		Days:      c.Period().Days(),
		State:     string(c.State()),
		Comment:   c.Comment(),
		Version:   c.Version(),
		CreatedAt: c.CreatedAt(),
		UpdatedAt: c.UpdatedAt(),
	}
	if rs := c.ResumeState(); rs != nil {
		s := string(*rs)
		dto.ResumeState = &s
	}
	if tc := c.TotalCost(); tc != nil {
		s := tc.StringFixed(2)
		dto.TotalCost = &s
	}
	return dto
}

func toContractDTOs(contracts []*contractDomain.Contract) []ContractDTO {
	dtos := make([]ContractDTO, len(contracts))
	for i, c := range contracts {
		dtos[i] = toContractDTO(c)
	}
	return dtos
}
