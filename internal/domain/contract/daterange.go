package contract

import (
	"time"

	"github.com/drivehub/service-rental/internal/common/domain"
)

// DateLayout is the wire and storage format of contract dates.
const DateLayout = "2006-01-02"

// DateRange is a half-open range of calendar days [Start, End). A rental
// returned on day 10 and one picked up on day 10 do not overlap.
type DateRange struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// NewDateRange normalizes both bounds to UTC midnight and validates Start < End.
func NewDateRange(start, end time.Time) (DateRange, error) {
	if start.IsZero() || end.IsZero() {
		return DateRange{}, domain.NewValidationError("start and end dates are required")
	}
	r := DateRange{Start: truncateDay(start), End: truncateDay(end)}
	if !r.Start.Before(r.End) {
		return DateRange{}, domain.NewValidationError("end date must be after start date")
	}
	return r, nil
}

// ParseDateRange parses two YYYY-MM-DD strings into a DateRange.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return DateRange{}, domain.NewValidationError("invalid start date: " + start)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, domain.NewValidationError("invalid end date: " + end)
	}
	return NewDateRange(s, e)
}

// Overlaps reports whether the ranges share at least one day.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.Start.Before(other.End) && r.End.After(other.Start)
}

// Contains reports whether day falls inside the range.
func (r DateRange) Contains(day time.Time) bool {
	d := truncateDay(day)
	return !d.Before(r.Start) && d.Before(r.End)
}

// Days returns the number of billable days.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// Equal reports whether both bounds match.
func (r DateRange) Equal(other DateRange) bool {
	return r.Start.Equal(other.Start) && r.End.Equal(other.End)
}

// String formats the range as [start, end).
func (r DateRange) String() string {
	return "[" + r.Start.Format(DateLayout) + ", " + r.End.Format(DateLayout) + ")"
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.In(time.UTC).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
