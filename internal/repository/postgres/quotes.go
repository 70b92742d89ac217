package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"pricefx/internal/domain"
	"pricefx/pkg/errors"
)

type QuoteRepository struct {
	db *sqlx.DB
}

func NewQuoteRepository(db *sqlx.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// Insert persists a quote lock as a single insert. Uniqueness relies on
// the id generator, not a read-modify-write check.
func (r *QuoteRepository) Insert(ctx context.Context, quote *domain.Quote) error {
	query := `
		INSERT INTO quotes (
			id, user_id, status, request, result, rule_id, rule_version,
			fx_rule_id, metadata, expires_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		quote.ID, quote.UserID, quote.Status, quote.Request, quote.Result,
		quote.RuleID, quote.RuleVersion, quote.FxRuleID, quote.Metadata,
		quote.ExpiresAt, quote.CreatedAt, quote.UpdatedAt,
	)

	return errors.Wrap(err, "failed to insert quote")
}

func (r *QuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	query := `SELECT * FROM quotes WHERE id = $1`

	if err := r.db.GetContext(ctx, &quote, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrQuoteNotFound
		}
		return nil, errors.Wrap(err, "failed to get quote")
	}

	return &quote, nil
}

// MarkUsed transitions an ACTIVE, unexpired lock to USED. This is the
// consumption capability the execution collaborator redeems locks
// through; the guard in the WHERE clause makes it single-use.
func (r *QuoteRepository) MarkUsed(ctx context.Context, id uuid.UUID, now time.Time) error {
	query := `
		UPDATE quotes
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4 AND expires_at > $2
	`

	res, err := r.db.ExecContext(ctx, query,
		domain.QuoteStatusUsed, now, id, domain.QuoteStatusActive)
	if err != nil {
		return errors.Wrap(err, "failed to mark quote used")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read update result")
	}
	if affected == 0 {
		return errors.ErrQuoteNotActive
	}

	return nil
}
