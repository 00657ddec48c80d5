package contract

import (
	"strings"

	"github.com/drivehub/service-rental/internal/common/domain"
)

// State is the lifecycle state of a rental contract.
type State string

const (
	StatePending               State = "PENDING"
	StateConfirmed             State = "CONFIRMED"
	StateActive                State = "ACTIVE"
	StateCompleted             State = "COMPLETED"
	StateCancellationRequested State = "CANCELLATION_REQUESTED"
	StateCancelled             State = "CANCELLED"
)

// stateAliases maps legacy names onto registry states.
var stateAliases = map[string]State{
	"BOOKED": StateConfirmed,
}

// States returns the full registry in lifecycle order.
func States() []State {
	return []State{
		StatePending,
		StateConfirmed,
		StateActive,
		StateCompleted,
		StateCancellationRequested,
		StateCancelled,
	}
}

// ParseState looks a state up by name, ignoring case and surrounding space.
func ParseState(name string) (State, error) {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	for _, s := range States() {
		if string(s) == normalized {
			return s, nil
		}
	}
	if s, ok := stateAliases[normalized]; ok {
		return s, nil
	}
	return "", domain.NewValidationError("unknown rental state: " + name)
}

// IsValid returns true if the state is part of the registry.
func (s State) IsValid() bool {
	_, exists := transitions[s]
	return exists
}

// IsTerminal returns true if no event is accepted from this state.
func (s State) IsTerminal() bool {
	return s == StateCancelled || s == StateCompleted
}

// IsOccupying returns true if a contract in this state blocks the car for its range.
func (s State) IsOccupying() bool {
	switch s {
	case StatePending, StateConfirmed, StateActive:
		return true
	default:
		return false
	}
}

// OccupyingStates returns the states that block a car.
func OccupyingStates() []State {
	return []State{StatePending, StateConfirmed, StateActive}
}

// String returns the registry name.
func (s State) String() string {
	return string(s)
}

// Event is something that happens to a contract.
type Event string

const (
	EventConfirm             Event = "confirm"
	EventAmend               Event = "amend"
	EventStart               Event = "start"
	EventReturn              Event = "return"
	EventRequestCancellation Event = "request_cancellation"
	EventConfirmCancellation Event = "confirm_cancellation"
	EventRejectCancellation  Event = "reject_cancellation"
	EventAdminCancel         Event = "admin_cancel"
)

// transitions is the complete state machine. A missing event means the
// transition is not allowed from that state. For EventRejectCancellation the
// target is the state recorded when the cancellation was requested; the table
// entry only marks the event as permitted.
var transitions = map[State]map[Event]State{
	StatePending: {
		EventConfirm:             StateConfirmed,
		EventAmend:               StatePending,
		EventRequestCancellation: StateCancellationRequested,
		EventAdminCancel:         StateCancelled,
	},
	StateConfirmed: {
		EventAmend:               StateConfirmed,
		EventStart:               StateActive,
		EventRequestCancellation: StateCancellationRequested,
		EventAdminCancel:         StateCancelled,
	},
	StateActive: {
		EventReturn:              StateCompleted,
		EventRequestCancellation: StateCancellationRequested,
		EventAdminCancel:         StateCancelled,
	},
	StateCancellationRequested: {
		EventRequestCancellation: StateCancellationRequested,
		EventConfirmCancellation: StateCancelled,
		EventRejectCancellation:  StateCancellationRequested,
		EventAdminCancel:         StateCancelled,
	},
	StateCompleted: {},
	StateCancelled: {},
}

// Transition returns the state reached by applying ev in from, or an
// InvalidStateError when the machine does not allow it.
//
// EventRejectCancellation has no fixed target: Transition only reports
// whether it is allowed and returns StateCancellationRequested unchanged.
// Use ResumeAfterRejection for the state actually restored.
func Transition(from State, ev Event) (State, error) {
	next, ok := transitions[from][ev]
	if !ok {
		return "", domain.NewInvalidStateError(string(from), string(ev))
	}
	return next, nil
}

// ResumeAfterRejection returns the state a rejected cancellation request
// goes back to: resume when it is an occupying state, PENDING otherwise.
func ResumeAfterRejection(from State, resume *State) (State, error) {
	if _, err := Transition(from, EventRejectCancellation); err != nil {
		return "", err
	}
	if resume != nil && resume.IsOccupying() {
		return *resume, nil
	}
	return StatePending, nil
}

// CanApply returns true if ev is allowed from s.
func (s State) CanApply(ev Event) bool {
	_, err := Transition(s, ev)
	return err == nil
}
