package contract

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PricingStrategy computes the total cost of a rental.
type PricingStrategy interface {
	Calculate(dailyPrice decimal.Decimal, period DateRange) (decimal.Decimal, error)
}

// DailyRatePricing charges the car's daily price for every rented day.
type DailyRatePricing struct{}

// NewDailyRatePricing creates a DailyRatePricing.
func NewDailyRatePricing() *DailyRatePricing {
	return &DailyRatePricing{}
}

// Calculate returns dailyPrice x days, rounded to cents.
func (p *DailyRatePricing) Calculate(dailyPrice decimal.Decimal, period DateRange) (decimal.Decimal, error) {
	if dailyPrice.IsNegative() {
		return decimal.Zero, fmt.Errorf("daily price cannot be negative: %s", dailyPrice)
	}
	days := period.Days()
	if days <= 0 {
		return decimal.Zero, fmt.Errorf("rental period must be at least one day")
	}
	return dailyPrice.Mul(decimal.NewFromInt(int64(days))).Round(2), nil
}
