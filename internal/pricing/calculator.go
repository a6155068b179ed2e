// Package pricing computes sale totals from a unit price, a quantity and the
// discounts the seller applies.
//
// Discounts compose additively: the seasonal and frequent-client rates are
// summed, the sum is capped at MaxCombinedRate, and the resulting rate is
// applied once to the exact subtotal. The net total is rounded half-up to
// cents and the discount is derived from it, so subtotal = net + discount
// always holds exactly.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	dErrors "dealer/pkg/domain-errors"
)

// Policy holds discount rates as fractions in [0,1].
type Policy struct {
	SeasonalRate       decimal.Decimal
	FrequentClientRate decimal.Decimal
	MaxCombinedRate    decimal.Decimal
}

// DefaultPolicy is 10% seasonal, 5% frequent client, 15% combined cap.
func DefaultPolicy() Policy {
	return Policy{
		SeasonalRate:       decimal.RequireFromString("0.10"),
		FrequentClientRate: decimal.RequireFromString("0.05"),
		MaxCombinedRate:    decimal.RequireFromString("0.15"),
	}
}

// PolicyFromFloats builds a policy from configuration values.
func PolicyFromFloats(seasonal, frequent, maxCombined float64) Policy {
	return Policy{
		SeasonalRate:       decimal.NewFromFloat(seasonal),
		FrequentClientRate: decimal.NewFromFloat(frequent),
		MaxCombinedRate:    decimal.NewFromFloat(maxCombined),
	}
}

func (p Policy) validate() error {
	one := decimal.NewFromInt(1)
	for name, r := range map[string]decimal.Decimal{
		"seasonal rate":        p.SeasonalRate,
		"frequent client rate": p.FrequentClientRate,
		"max combined rate":    p.MaxCombinedRate,
	} {
		if r.IsNegative() || r.GreaterThan(one) {
			return dErrors.Newf(dErrors.CodeValidation, "%s must be within [0,1], got %s", name, r)
		}
	}
	return nil
}

// Quote is the priced line. NetTotal = LineSubtotal - DiscountAmount.
type Quote struct {
	LineSubtotal   Money
	DiscountAmount Money
	NetTotal       Money
	AppliedRate    decimal.Decimal
}

// Calculator is a pure function of its policy and inputs.
type Calculator struct {
	policy Policy
}

func NewCalculator(policy Policy) (*Calculator, error) {
	if err := policy.validate(); err != nil {
		return nil, err
	}
	return &Calculator{policy: policy}, nil
}

func (c *Calculator) Policy() Policy { return c.policy }

// Rate returns the combined discount rate for the given flags.
func (c *Calculator) Rate(seasonal, frequent bool) decimal.Decimal {
	rate := decimal.Zero
	if seasonal {
		rate = rate.Add(c.policy.SeasonalRate)
	}
	if frequent {
		rate = rate.Add(c.policy.FrequentClientRate)
	}
	if rate.GreaterThan(c.policy.MaxCombinedRate) {
		rate = c.policy.MaxCombinedRate
	}
	return rate
}

// ComputeTotal prices quantity units at unitPrice with the selected discounts.
func (c *Calculator) ComputeTotal(unitPrice Money, quantity int, seasonal, frequent bool) (Quote, error) {
	if !unitPrice.IsPositive() {
		return Quote{}, dErrors.Newf(dErrors.CodeInvalidAmount, "unit price must be positive, got %s", unitPrice)
	}
	if !unitPrice.HasValidPrecision() {
		return Quote{}, dErrors.Newf(dErrors.CodeInvalidAmount, "unit price %s has more than %d decimal digits", unitPrice.Decimal(), Cents)
	}
	if quantity <= 0 {
		return Quote{}, dErrors.New(dErrors.CodeInvalidAmount, fmt.Sprintf("quantity must be positive, got %d", quantity))
	}

	subtotal := unitPrice.MulInt(quantity)
	rate := c.Rate(seasonal, frequent)
	net := NewMoney(subtotal.Decimal().Sub(subtotal.Decimal().Mul(rate))).RoundCents()

	return Quote{
		LineSubtotal:   subtotal,
		DiscountAmount: subtotal.Sub(net),
		NetTotal:       net,
		AppliedRate:    rate,
	}, nil
}
