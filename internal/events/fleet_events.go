package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicFleetEvents carries telematics events emitted by the fleet service.
const TopicFleetEvents = "fleet.events"

// Fleet event types this service reacts to.
const (
	CarPickedUp = "car.picked_up"
	CarReturned = "car.returned"
)

// CarHandoverEvent is the payload of car.picked_up and car.returned.
// ContractID is optional; when absent the contract is resolved from the car.
type CarHandoverEvent struct {
	CarID      uuid.UUID  `json:"car_id"`
	ContractID *uuid.UUID `json:"contract_id,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}
