// Package pricing implements the quote computation pipeline: rule
// resolution, fee calculation, FX application and FX adjustment.
package pricing

import (
	"strings"

	"pricefx/internal/domain"
	"pricefx/internal/normalize"
	"pricefx/pkg/errors"
)

// ResolveRule selects the single best-matching pricing rule for a
// normalized request, or returns a kinded no-match error carrying the
// normalized corridor and the number of rules considered.
//
// Matching is a pure function of the request and the snapshot; ties
// resolve by priority descending, then updatedAt descending.
func ResolveRule(req domain.NormalizedRequest, rules []domain.PricingRule) (*domain.PricingRule, error) {
	var best *domain.PricingRule

	for i := range rules {
		rule := &rules[i]
		if !ruleMatches(req, rule) {
			continue
		}
		if best == nil || ruleBeats(rule, best) {
			best = rule
		}
	}

	if best == nil {
		return nil, errors.Ef(errors.KindNoRuleMatched,
			"no pricing configured for %s %s/%s", req.TxType, req.FromCurrency, req.ToCurrency).
			WithDetails(map[string]interface{}{
				"tx_type":          req.TxType,
				"from_currency":    req.FromCurrency,
				"to_currency":      req.ToCurrency,
				"country":          req.Country,
				"operator":         req.Operator,
				"amount":           req.Amount.String(),
				"rules_considered": len(rules),
			})
	}

	return best, nil
}

func ruleMatches(req domain.NormalizedRequest, rule *domain.PricingRule) bool {
	if !rule.Active {
		return false
	}
	if !strings.EqualFold(string(rule.TxType), string(req.TxType)) {
		return false
	}
	if !strings.EqualFold(string(rule.FromCurrency), string(req.FromCurrency)) {
		return false
	}
	if !strings.EqualFold(string(rule.ToCurrency), string(req.ToCurrency)) {
		return false
	}

	// Inclusive amount range; nil max means unbounded.
	if req.Amount.LessThan(rule.MinAmount) {
		return false
	}
	if rule.MaxAmount != nil && req.Amount.GreaterThan(*rule.MaxAmount) {
		return false
	}

	if len(rule.Countries) > 0 && !containsCountry(rule.Countries, req.Country) {
		return false
	}
	if len(rule.Operators) > 0 && !containsFold(rule.Operators, req.Operator) {
		return false
	}

	return true
}

// ruleBeats reports whether a should win over b.
func ruleBeats(a, b *domain.PricingRule) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return a.UpdatedAt.After(b.UpdatedAt)
}

// containsCountry matches the request's normalized country against a rule
// country list. List entries run through the same alias normalization so
// rules written with free-text names still match.
func containsCountry(list []string, country string) bool {
	if country == "" {
		return false
	}
	for _, entry := range list {
		if strings.EqualFold(normalize.Country(entry), country) {
			return true
		}
	}
	return false
}

func containsFold(list []string, value string) bool {
	if value == "" {
		return false
	}
	for _, entry := range list {
		if strings.EqualFold(strings.TrimSpace(entry), value) {
			return true
		}
	}
	return false
}
