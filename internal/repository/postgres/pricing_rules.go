// Package postgres implements the sqlx-backed repositories.
package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"pricefx/internal/domain"
	"pricefx/pkg/errors"
)

type PricingRuleRepository struct {
	db *sqlx.DB
}

func NewPricingRuleRepository(db *sqlx.DB) *PricingRuleRepository {
	return &PricingRuleRepository{db: db}
}

// ListActive returns the current active pricing rule snapshot. Callers
// re-fetch per request; the resolver never observes a mutating store.
func (r *PricingRuleRepository) ListActive(ctx context.Context) ([]domain.PricingRule, error) {
	var rules []domain.PricingRule
	query := `
		SELECT * FROM pricing_rules
		WHERE active = TRUE
		ORDER BY priority DESC, updated_at DESC
	`

	if err := r.db.SelectContext(ctx, &rules, query); err != nil {
		return nil, errors.Wrap(err, "failed to list active pricing rules")
	}

	return rules, nil
}

// Create inserts a pricing rule. Used by the seed tool.
func (r *PricingRuleRepository) Create(ctx context.Context, rule *domain.PricingRule) error {
	query := `
		INSERT INTO pricing_rules (
			id, tx_type, from_currency, to_currency, countries, operators,
			min_amount, max_amount, fee_mode, fee_percent, fee_fixed,
			min_fee, max_fee, fx_mode, override_rate, markup_percent,
			priority, active, version, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		rule.ID, rule.TxType, rule.FromCurrency, rule.ToCurrency,
		rule.Countries, rule.Operators, rule.MinAmount, rule.MaxAmount,
		rule.FeeMode, rule.FeePercent, rule.FeeFixed, rule.MinFee, rule.MaxFee,
		rule.FxMode, rule.OverrideRate, rule.MarkupPercent,
		rule.Priority, rule.Active, rule.Version, rule.CreatedAt, rule.UpdatedAt,
	)

	return errors.Wrap(err, "failed to create pricing rule")
}
