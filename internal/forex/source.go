// Package forex supplies market exchange rates to the pricing engine.
//
// The engine sees a single opaque RateSource call per currency pair. The
// chain source behind it resolves a rate from admin-stored custom rates,
// then the external provider, then the last cached snapshot, in that
// order. A rate that cannot be resolved is reported as unavailable and
// never substituted with a default.
package forex

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"pricefx/internal/domain"
	"pricefx/pkg/errors"
	"pricefx/pkg/logger"
)

// RateSource returns the current market rate for an ordered currency pair.
type RateSource interface {
	Rate(ctx context.Context, from, to domain.Currency) (decimal.Decimal, error)
}

// StoredRateRepository reads admin-stored custom rates.
type StoredRateRepository interface {
	GetCustomRate(ctx context.Context, from, to domain.Currency) (decimal.Decimal, error)
}

// SnapshotCache stores the last known rate per pair.
type SnapshotCache interface {
	Get(ctx context.Context, from, to domain.Currency) (decimal.Decimal, error)
	Set(ctx context.Context, from, to domain.Currency, rate decimal.Decimal, ttl time.Duration) error
}

// ChainSource resolves rates through stored rates, the external provider,
// and the snapshot cache.
type ChainSource struct {
	repo     StoredRateRepository
	provider RateSource
	cache    SnapshotCache
	cacheTTL time.Duration
	timeout  time.Duration
	logger   logger.Logger
}

// NewChainSource constructs a ChainSource. repo and cache may be nil; the
// corresponding steps are skipped.
func NewChainSource(repo StoredRateRepository, provider RateSource, cache SnapshotCache, cacheTTL, timeout time.Duration, log logger.Logger) *ChainSource {
	return &ChainSource{
		repo:     repo,
		provider: provider,
		cache:    cache,
		cacheTTL: cacheTTL,
		timeout:  timeout,
		logger:   log,
	}
}

// Rate resolves the rate for from/to. Identical currencies resolve to 1.
func (s *ChainSource) Rate(ctx context.Context, from, to domain.Currency) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if s.repo != nil {
		rate, err := s.repo.GetCustomRate(ctx, from, to)
		if err == nil && rate.IsPositive() {
			return rate, nil
		}
	}

	if s.provider != nil {
		rate, err := s.provider.Rate(ctx, from, to)
		if err == nil && rate.IsPositive() {
			if s.cache != nil {
				if cacheErr := s.cache.Set(ctx, from, to, rate, s.cacheTTL); cacheErr != nil {
					s.logger.Warn("Failed to cache rate snapshot", map[string]interface{}{
						"from":  from,
						"to":    to,
						"error": cacheErr.Error(),
					})
				}
			}
			return rate, nil
		}
		if err != nil {
			s.logger.Warn("Rate provider failed", map[string]interface{}{
				"from":  from,
				"to":    to,
				"error": err.Error(),
			})
		}
	}

	if s.cache != nil {
		rate, err := s.cache.Get(ctx, from, to)
		if err == nil && rate.IsPositive() {
			s.logger.Warn("Serving cached rate snapshot", map[string]interface{}{
				"from": from,
				"to":   to,
			})
			return rate, nil
		}
	}

	return decimal.Zero, errors.Ef(errors.KindRateUnavailable,
		"no rate available for %s/%s", from, to)
}

// FixedSource serves rates from a static table. Used in tests and local
// development.
type FixedSource struct {
	rates map[string]decimal.Decimal
}

func NewFixedSource(rates map[string]decimal.Decimal) *FixedSource {
	return &FixedSource{rates: rates}
}

func (s *FixedSource) Rate(ctx context.Context, from, to domain.Currency) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	if rate, ok := s.rates[string(from)+"-"+string(to)]; ok && rate.IsPositive() {
		return rate, nil
	}
	return decimal.Zero, errors.Ef(errors.KindRateUnavailable,
		"no rate available for %s/%s", from, to)
}
