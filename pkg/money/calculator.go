package money

import (
	"time"

	"github.com/chris/academy-booking-core/pkg/apperrors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DefaultGatewayMinimum is the smallest order the gateway accepts, in minor units.
const DefaultGatewayMinimum int64 = 100

// PriceInput carries the per-participant fees of a batch and the platform charges.
type PriceInput struct {
	AdmissionFee Amount
	Fee          Amount
	Participants int
	PlatformFee  Amount
	// TaxRate is a percentage, e.g. 18 for 18%.
	TaxRate    decimal.Decimal
	TaxEnabled bool
}

// Price is the result of CalculatePrice. Every field is rounded to Scale.
type Price struct {
	TotalAdmission Amount
	TotalBase      Amount
	BatchAmount    Amount
	PlatformFee    Amount
	Tax            Amount
	Total          Amount
	Participants   int
	ComputedAt     time.Time
}

// CalculatePrice computes the charge for a booking. Tax applies to the platform fee only.
func CalculatePrice(in PriceInput) (Price, error) {
	if in.Participants <= 0 {
		return Price{}, apperrors.Validation("at least one participant is required")
	}
	if in.AdmissionFee.IsNegative() || in.Fee.IsNegative() || in.PlatformFee.IsNegative() || in.TaxRate.IsNegative() {
		return Price{}, apperrors.Validation("fees and tax rate must not be negative")
	}

	n := decimal.NewFromInt(int64(in.Participants))
	totalAdmission := NewAmount(in.AdmissionFee.Mul(n))
	totalBase := NewAmount(in.Fee.Mul(n))
	batchAmount := NewAmount(totalAdmission.Add(totalBase.Decimal))
	platformFee := NewAmount(in.PlatformFee.Decimal)

	tax := Zero
	if in.TaxEnabled {
		tax = NewAmount(platformFee.Mul(in.TaxRate).Div(hundred))
	}

	total := NewAmount(batchAmount.Add(platformFee.Decimal).Add(tax.Decimal))
	if !total.IsPositive() {
		return Price{}, apperrors.Validation("total amount must be greater than zero").
			WithDetail("total", total.String())
	}

	return Price{
		TotalAdmission: totalAdmission,
		TotalBase:      totalBase,
		BatchAmount:    batchAmount,
		PlatformFee:    platformFee,
		Tax:            tax,
		Total:          total,
		Participants:   in.Participants,
		ComputedAt:     time.Now().UTC(),
	}, nil
}

// Commission is the platform's cut of the batch amount and what remains for the academy.
type Commission struct {
	Rate         Rate
	Amount       Amount
	PayoutAmount Amount
}

// CalculateCommission splits batchAmount by rate, a fraction between 0 and 1.
func CalculateCommission(batchAmount Amount, rate Rate) (Commission, error) {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return Commission{}, apperrors.Validation("commission rate %s must be between 0 and 1", rate.String())
	}
	if batchAmount.IsNegative() {
		return Commission{}, apperrors.Validation("batch amount must not be negative")
	}
	commission := NewAmount(batchAmount.Mul(rate.Decimal))
	return Commission{
		Rate:         rate,
		Amount:       commission,
		PayoutAmount: NewAmount(batchAmount.Sub(commission.Decimal)),
	}, nil
}

// ToMinorUnits converts an amount into the gateway's smallest currency unit.
func ToMinorUnits(a Amount) int64 {
	return a.Round(Scale).Mul(hundred).IntPart()
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(units int64) Amount {
	return NewAmount(decimal.New(units, -Scale))
}
