package pricing

import (
	"context"

	"github.com/shopspring/decimal"

	"pricefx/internal/domain"
	"pricefx/internal/forex"
	"pricefx/pkg/errors"
)

// ApplyFx derives the base exchange rate for the matched rule's FX mode.
// It returns the base rate and, for market-backed modes, the raw market
// rate observed. A provider failure or non-positive result is surfaced as
// rate unavailable; it is never replaced with a default.
func ApplyFx(ctx context.Context, rule *domain.PricingRule, from, to domain.Currency, source forex.RateSource) (base decimal.Decimal, market *decimal.Decimal, err error) {
	switch rule.FxMode {
	case domain.FxModeOverride:
		if rule.OverrideRate == nil || !rule.OverrideRate.IsPositive() {
			return decimal.Zero, nil, errors.Ef(errors.KindInvalidRuleConfig,
				"rule %s uses OVERRIDE without a positive override rate", rule.ID)
		}
		return *rule.OverrideRate, nil, nil

	case domain.FxModeMarket:
		rate, err := fetchMarketRate(ctx, from, to, source)
		if err != nil {
			return decimal.Zero, nil, err
		}
		return rate, &rate, nil

	case domain.FxModeMarkup:
		rate, err := fetchMarketRate(ctx, from, to, source)
		if err != nil {
			return decimal.Zero, nil, err
		}
		marked := rate.Mul(decimal.NewFromInt(1).Add(rule.MarkupPercent.Div(oneHundred)))
		return marked, &rate, nil

	default:
		return decimal.Zero, nil, errors.Ef(errors.KindInvalidRuleConfig,
			"rule %s has unknown fx mode %q", rule.ID, rule.FxMode)
	}
}

func fetchMarketRate(ctx context.Context, from, to domain.Currency, source forex.RateSource) (decimal.Decimal, error) {
	rate, err := source.Rate(ctx, from, to)
	if err != nil {
		if errors.KindOf(err) == errors.KindRateUnavailable {
			return decimal.Zero, err
		}
		return decimal.Zero, errors.Ef(errors.KindRateUnavailable,
			"market rate lookup failed for %s/%s", from, to).WithCause(err)
	}
	if !rate.IsPositive() {
		return decimal.Zero, errors.Ef(errors.KindRateUnavailable,
			"market rate for %s/%s is not positive", from, to)
	}
	return rate, nil
}
