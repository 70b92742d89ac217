package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"pricefx/internal/currency"
	"pricefx/internal/domain"
	"pricefx/internal/normalize"
	"pricefx/pkg/errors"
)

// ResolveFxRule selects the best fx adjustment rule for the request, or
// nil when none matches. Optional scope fields (txType, provider, country)
// are wildcards when empty; the currency pair match is always exact.
// Tie-break discipline mirrors ResolveRule.
func ResolveFxRule(req domain.NormalizedRequest, rules []domain.FxRule) *domain.FxRule {
	var best *domain.FxRule

	for i := range rules {
		rule := &rules[i]
		if !fxRuleMatches(req, rule) {
			continue
		}
		if best == nil || fxRuleBeats(rule, best) {
			best = rule
		}
	}

	return best
}

func fxRuleMatches(req domain.NormalizedRequest, rule *domain.FxRule) bool {
	if !rule.Active {
		return false
	}
	if rule.TxType != "" && !strings.EqualFold(string(rule.TxType), string(req.TxType)) {
		return false
	}
	if rule.Provider != "" && !strings.EqualFold(rule.Provider, req.Operator) {
		return false
	}
	if rule.Country != "" && !strings.EqualFold(normalize.Country(rule.Country), req.Country) {
		return false
	}
	if !strings.EqualFold(string(rule.FromCurrency), string(req.FromCurrency)) {
		return false
	}
	if !strings.EqualFold(string(rule.ToCurrency), string(req.ToCurrency)) {
		return false
	}
	if rule.MinAmount != nil && req.Amount.LessThan(*rule.MinAmount) {
		return false
	}
	if rule.MaxAmount != nil && req.Amount.GreaterThan(*rule.MaxAmount) {
		return false
	}
	return true
}

func fxRuleBeats(a, b *domain.FxRule) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return a.UpdatedAt.After(b.UpdatedAt)
}

// ApplyFxAdjustment transforms the base rate under the given fx rule. The
// result is rounded to rate precision and must stay positive; an invalid
// outcome is a distinct failure, never a silent fallback to the base rate.
func ApplyFxAdjustment(base decimal.Decimal, rule *domain.FxRule) (decimal.Decimal, *domain.AppliedFxRule, error) {
	applied := &domain.AppliedFxRule{
		RuleID:       rule.ID,
		Mode:         rule.Mode,
		Percent:      rule.Percent,
		DeltaAbs:     rule.DeltaAbs,
		OverrideRate: rule.OverrideRate,
	}

	var adjusted decimal.Decimal
	switch rule.Mode {
	case domain.FxAdjustPassThrough:
		adjusted = base
	case domain.FxAdjustOverride:
		if rule.OverrideRate == nil || !rule.OverrideRate.IsPositive() {
			return decimal.Zero, nil, errors.Ef(errors.KindInvalidRuleConfig,
				"fx rule %s uses OVERRIDE without a positive override rate", rule.ID)
		}
		adjusted = *rule.OverrideRate
	case domain.FxAdjustDeltaPercent:
		// Percent may be negative.
		adjusted = base.Mul(decimal.NewFromInt(1).Add(rule.Percent.Div(oneHundred)))
	case domain.FxAdjustDeltaAbs:
		adjusted = base.Add(rule.DeltaAbs)
	default:
		return decimal.Zero, nil, errors.Ef(errors.KindInvalidRuleConfig,
			"fx rule %s has unknown mode %q", rule.ID, rule.Mode)
	}

	adjusted = currency.RoundRate(adjusted)
	if !adjusted.IsPositive() {
		return decimal.Zero, nil, errors.Ef(errors.KindInvalidAdjustedRate,
			"fx rule %s produced non-positive rate %s from base %s", rule.ID, adjusted, base)
	}

	return adjusted, applied, nil
}
