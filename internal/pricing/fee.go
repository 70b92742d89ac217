package pricing

import (
	"github.com/shopspring/decimal"

	"pricefx/internal/currency"
	"pricefx/internal/domain"
	"pricefx/pkg/errors"
)

var oneHundred = decimal.NewFromInt(100)

// ComputeFee derives the fee for amount under the rule's fee config,
// clamped to the configured bounds and rounded to the source currency's
// native precision.
func ComputeFee(amount decimal.Decimal, rule *domain.PricingRule, from domain.Currency) (domain.FeeBreakdown, error) {
	var breakdown domain.FeeBreakdown
	breakdown.Mode = rule.FeeMode

	switch rule.FeeMode {
	case domain.FeeModeNone:
	case domain.FeeModeFixed:
		breakdown.FixedFee = rule.FeeFixed
	case domain.FeeModePercent:
		breakdown.PercentFee = amount.Mul(rule.FeePercent).Div(oneHundred)
	case domain.FeeModeMixed:
		breakdown.FixedFee = rule.FeeFixed
		breakdown.PercentFee = amount.Mul(rule.FeePercent).Div(oneHundred)
	default:
		return breakdown, errors.Ef(errors.KindInvalidRuleConfig,
			"rule %s has unknown fee mode %q", rule.ID, rule.FeeMode)
	}

	breakdown.RawFee = breakdown.FixedFee.Add(breakdown.PercentFee)

	// Min and max clamps apply independently, only when configured.
	clamped := breakdown.RawFee
	if rule.MinFee != nil && clamped.LessThan(*rule.MinFee) {
		clamped = *rule.MinFee
	}
	if rule.MaxFee != nil && clamped.GreaterThan(*rule.MaxFee) {
		clamped = *rule.MaxFee
	}
	breakdown.ClampedFee = clamped

	breakdown.Fee = currency.RoundAmount(clamped, from)
	return breakdown, nil
}

// NetFrom computes the rounded gross amount and the net source amount
// after the fee. A negative net amount is rejected, never clamped.
func NetFrom(amount, fee decimal.Decimal, from domain.Currency) (gross, net decimal.Decimal, err error) {
	gross = currency.RoundAmount(amount, from)
	net = gross.Sub(fee)
	if net.IsNegative() {
		return gross, net, errors.Ef(errors.KindFeeExceedsAmount,
			"fee %s exceeds amount %s", fee, gross)
	}
	return gross, net, nil
}
