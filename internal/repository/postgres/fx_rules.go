package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"pricefx/internal/domain"
	"pricefx/pkg/errors"
)

type FxRuleRepository struct {
	db *sqlx.DB
}

func NewFxRuleRepository(db *sqlx.DB) *FxRuleRepository {
	return &FxRuleRepository{db: db}
}

// ListActive returns the current active fx adjustment rule snapshot.
func (r *FxRuleRepository) ListActive(ctx context.Context) ([]domain.FxRule, error) {
	var rules []domain.FxRule
	query := `
		SELECT * FROM fx_rules
		WHERE active = TRUE
		ORDER BY priority DESC, updated_at DESC
	`

	if err := r.db.SelectContext(ctx, &rules, query); err != nil {
		return nil, errors.Wrap(err, "failed to list active fx rules")
	}

	return rules, nil
}

// Create inserts an fx adjustment rule. Used by the seed tool.
func (r *FxRuleRepository) Create(ctx context.Context, rule *domain.FxRule) error {
	query := `
		INSERT INTO fx_rules (
			id, tx_type, provider, country, from_currency, to_currency,
			min_amount, max_amount, mode, override_rate, percent, delta_abs,
			priority, active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		rule.ID, rule.TxType, rule.Provider, rule.Country,
		rule.FromCurrency, rule.ToCurrency, rule.MinAmount, rule.MaxAmount,
		rule.Mode, rule.OverrideRate, rule.Percent, rule.DeltaAbs,
		rule.Priority, rule.Active, rule.CreatedAt, rule.UpdatedAt,
	)

	return errors.Wrap(err, "failed to create fx rule")
}
