package contract

import "github.com/google/uuid"

// Conflicts returns the contracts in existing that block carID for period.
// A contract blocks when it is for the same car, its state is occupying and
// its period overlaps. The contract with id exclude, if given, is skipped.
func Conflicts(existing []*Contract, carID uuid.UUID, period DateRange, exclude *uuid.UUID) []*Contract {
	var out []*Contract
	for _, c := range existing {
		if c.CarID() != carID {
			continue
		}
		if exclude != nil && c.ID() == *exclude {
			continue
		}
		if !c.State().IsOccupying() {
			continue
		}
		if c.Period().Overlaps(period) {
			out = append(out, c)
		}
	}
	return out
}
