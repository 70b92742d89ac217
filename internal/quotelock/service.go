// Package quotelock persists quote results as time-bounded, single-use
// reservations.
package quotelock

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pricefx/internal/domain"
	"pricefx/pkg/errors"
	"pricefx/pkg/logger"
)

// Repository defines persistence operations for quote locks.
type Repository interface {
	Insert(ctx context.Context, quote *domain.Quote) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error)
}

// Service manages the quote lock lifecycle. Expiry is evaluated lazily
// from expiresAt on every read; nothing rewrites the stored row.
type Service struct {
	repo   Repository
	ttl    time.Duration
	logger logger.Logger
	now    func() time.Time
}

// DefaultTTL is used when the configured lock TTL is not positive.
const DefaultTTL = 10 * time.Minute

func NewService(repo Repository, ttl time.Duration, log logger.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		repo:   repo,
		ttl:    ttl,
		logger: log,
		now:    time.Now,
	}
}

// Create persists result as an ACTIVE lock owned by userID. Uniqueness of
// the quote id relies on the generator's collision resistance; creation is
// a single insert with no read-modify-write.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, result *domain.QuoteResult) (*domain.Quote, error) {
	if userID == uuid.Nil {
		return nil, errors.E(errors.KindInvalidInput, "user id is required")
	}

	now := s.now()
	quote := &domain.Quote{
		ID:          uuid.New(),
		UserID:      userID,
		Status:      domain.QuoteStatusActive,
		Request:     result.Request,
		Result:      *result,
		RuleID:      result.RuleApplied.RuleID,
		RuleVersion: result.RuleApplied.Version,
		ExpiresAt:   now.Add(s.ttl),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if result.FxRuleApplied != nil {
		fxID := result.FxRuleApplied.RuleID
		quote.FxRuleID = &fxID
	}

	if err := s.repo.Insert(ctx, quote); err != nil {
		return nil, errors.Wrap(err, "failed to persist quote lock")
	}

	s.logger.Info("Quote locked", map[string]interface{}{
		"quote_id":   quote.ID,
		"user_id":    userID,
		"rule_id":    quote.RuleID,
		"expires_at": quote.ExpiresAt,
	})

	return quote, nil
}

// Get returns the lock with its effective status. A stored ACTIVE past
// its expiry reads as EXPIRED without the record being mutated.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	quote, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	quote.Status = quote.EffectiveStatus(s.now())
	return quote, nil
}
