package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pricefx/internal/currency"
	"pricefx/internal/domain"
	"pricefx/internal/forex"
	"pricefx/internal/normalize"
	"pricefx/internal/quotelock"
	"pricefx/pkg/errors"
	"pricefx/pkg/logger"
)

// PricingRuleStore provides a read-only snapshot of active pricing rules,
// re-fetched per request.
type PricingRuleStore interface {
	ListActive(ctx context.Context) ([]domain.PricingRule, error)
}

// FxRuleStore provides a read-only snapshot of active fx adjustment rules.
type FxRuleStore interface {
	ListActive(ctx context.Context) ([]domain.FxRule, error)
}

// RawRequest is the inbound pricing request before normalization.
type RawRequest struct {
	TxType       string          `json:"tx_type" validate:"required"`
	Amount       decimal.Decimal `json:"amount" validate:"required,gt=0"`
	FromCurrency string          `json:"from_currency" validate:"required,currency_code"`
	ToCurrency   string          `json:"to_currency" validate:"required,currency_code"`
	Country      string          `json:"country"`
	Operator     string          `json:"operator"`
}

// Service assembles quotes: normalize, resolve rule, compute fee, apply
// FX, apply admin adjustment, derive destination amount.
type Service struct {
	pricingRules PricingRuleStore
	fxRules      FxRuleStore
	rates        forex.RateSource
	locks        *quotelock.Service
	logger       logger.Logger
	now          func() time.Time
}

func NewService(pricingRules PricingRuleStore, fxRules FxRuleStore, rates forex.RateSource, locks *quotelock.Service, log logger.Logger) *Service {
	return &Service{
		pricingRules: pricingRules,
		fxRules:      fxRules,
		rates:        rates,
		locks:        locks,
		logger:       log,
		now:          time.Now,
	}
}

// Preview computes a quote with no side effects. Safe to repeat; for a
// fixed rule snapshot the result is deterministic.
func (s *Service) Preview(ctx context.Context, raw RawRequest) (*domain.QuoteResult, error) {
	req, err := normalize.Request(raw.TxType, raw.Amount, raw.FromCurrency, raw.ToCurrency, raw.Country, raw.Operator)
	if err != nil {
		return nil, err
	}
	return s.compute(ctx, req)
}

// Lock runs the identical computation and persists the result as a
// time-bounded, single-use reservation owned by userID.
func (s *Service) Lock(ctx context.Context, userID uuid.UUID, raw RawRequest) (*domain.Quote, error) {
	if userID == uuid.Nil {
		return nil, errors.E(errors.KindInvalidInput, "user id is required")
	}

	req, err := normalize.Request(raw.TxType, raw.Amount, raw.FromCurrency, raw.ToCurrency, raw.Country, raw.Operator)
	if err != nil {
		return nil, err
	}

	result, err := s.compute(ctx, req)
	if err != nil {
		return nil, err
	}

	return s.locks.Create(ctx, userID, result)
}

func (s *Service) compute(ctx context.Context, req domain.NormalizedRequest) (*domain.QuoteResult, error) {
	rules, err := s.pricingRules.ListActive(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load pricing rules")
	}

	rule, err := ResolveRule(req, rules)
	if err != nil {
		s.logger.Warn("No pricing rule matched", map[string]interface{}{
			"tx_type": req.TxType,
			"from":    req.FromCurrency,
			"to":      req.ToCurrency,
			"amount":  req.Amount.String(),
		})
		return nil, err
	}

	breakdown, err := ComputeFee(req.Amount, rule, req.FromCurrency)
	if err != nil {
		return nil, err
	}

	gross, netFrom, err := NetFrom(req.Amount, breakdown.Fee, req.FromCurrency)
	if err != nil {
		return nil, err
	}

	baseRate, marketRate, err := ApplyFx(ctx, rule, req.FromCurrency, req.ToCurrency, s.rates)
	if err != nil {
		return nil, err
	}

	// The adjustment layer always runs after the base rate and overwrites
	// the applied rate; with no matching fx rule the base passes through.
	appliedRate := baseRate
	var fxApplied *domain.AppliedFxRule
	fxRules, err := s.fxRules.ListActive(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load fx rules")
	}
	if fxRule := ResolveFxRule(req, fxRules); fxRule != nil {
		appliedRate, fxApplied, err = ApplyFxAdjustment(baseRate, fxRule)
		if err != nil {
			return nil, err
		}
	}

	netTo := currency.RoundAmount(netFrom.Mul(appliedRate), req.ToCurrency)

	result := &domain.QuoteResult{
		Request:      req,
		MarketRate:   marketRate,
		BaseRate:     baseRate,
		AppliedRate:  appliedRate,
		Fee:          breakdown.Fee,
		FeeBreakdown: breakdown,
		GrossFrom:    gross,
		NetFrom:      netFrom,
		NetTo:        netTo,
		RuleApplied: domain.AppliedRule{
			RuleID:   rule.ID,
			Version:  rule.Version,
			Priority: rule.Priority,
		},
		FxRuleApplied: fxApplied,
		QuotedAt:      s.now(),
	}

	s.logger.Debug("Quote computed", map[string]interface{}{
		"rule_id":      rule.ID,
		"applied_rate": appliedRate.String(),
		"fee":          breakdown.Fee.String(),
		"net_to":       netTo.String(),
	})

	return result, nil
}
