package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"pricefx/internal/domain"
	"pricefx/pkg/errors"
)

type MarketRateRepository struct {
	db *sqlx.DB
}

func NewMarketRateRepository(db *sqlx.DB) *MarketRateRepository {
	return &MarketRateRepository{db: db}
}

// GetCustomRate returns the latest admin-stored rate for the pair that is
// still within its validity window. Feeds the first step of the rate
// provider chain.
func (r *MarketRateRepository) GetCustomRate(ctx context.Context, from, to domain.Currency) (decimal.Decimal, error) {
	var rate decimal.Decimal
	query := `
		SELECT rate FROM market_rates
		WHERE from_currency = $1 AND to_currency = $2
		AND (valid_to IS NULL OR valid_to > NOW())
		ORDER BY valid_from DESC
		LIMIT 1
	`

	if err := r.db.GetContext(ctx, &rate, query, from, to); err != nil {
		if err == sql.ErrNoRows {
			return decimal.Zero, errors.ErrRateUnavailable
		}
		return decimal.Zero, errors.Wrap(err, "failed to get custom rate")
	}

	return rate, nil
}

// Upsert stores an admin rate for the pair, replacing any open-ended
// previous entry. Used by the seed tool and admin tooling.
func (r *MarketRateRepository) Upsert(ctx context.Context, from, to domain.Currency, rate decimal.Decimal) error {
	query := `
		INSERT INTO market_rates (from_currency, to_currency, rate, valid_from, valid_to)
		VALUES ($1, $2, $3, NOW(), NULL)
		ON CONFLICT (from_currency, to_currency) WHERE valid_to IS NULL
		DO UPDATE SET rate = EXCLUDED.rate, valid_from = NOW()
	`

	_, err := r.db.ExecContext(ctx, query, from, to, rate)
	return errors.Wrap(err, "failed to upsert market rate")
}
