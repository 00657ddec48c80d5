package contract

import (
	"time"

	"github.com/google/uuid"
)

// TopicContractEvents carries every contract state change.
const TopicContractEvents = "rental.contract.events"

// Event types published on TopicContractEvents.
const (
	EventTypeCreated               = "rental.contract.created"
	EventTypeAmended               = "rental.contract.amended"
	EventTypeConfirmed             = "rental.contract.confirmed"
	EventTypeStarted               = "rental.contract.started"
	EventTypeCompleted             = "rental.contract.completed"
	EventTypeCancellationRequested = "rental.contract.cancellation_requested"
	EventTypeCancellationRejected  = "rental.contract.cancellation_rejected"
	EventTypeCancelled             = "rental.contract.cancelled"
)

// ChangedEvent is the payload of every contract event.
type ChangedEvent struct {
	ContractID uuid.UUID `json:"contract_id"`
	CarID      uuid.UUID `json:"car_id"`
	ClientID   uuid.UUID `json:"client_id"`
	From       string    `json:"from,omitempty"`
	State      string    `json:"state"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	TotalCost  string    `json:"total_cost,omitempty"`
	Version    int64     `json:"version"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewChangedEvent snapshots c after a transition out of from.
func NewChangedEvent(c *Contract, from State) ChangedEvent {
	evt := ChangedEvent{
		ContractID: c.ID(),
		CarID:      c.CarID(),
		ClientID:   c.ClientID(),
		From:       string(from),
		State:      string(c.State()),
		StartDate:  c.Period().Start.Format(DateLayout),
		EndDate:    c.Period().End.Format(DateLayout),
		Version:    c.Version(),
		OccurredAt: time.Now().UTC(),
	}
	if c.TotalCost() != nil {
		evt.TotalCost = c.TotalCost().StringFixed(2)
	}
	return evt
}
