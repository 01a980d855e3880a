package transactions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repository uses. pgxmock satisfies
// it, so repository tests run against expected SQL instead of a live
// database.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository defines transaction persistence. The analytical pipeline only
// reads; the normalizer's caller writes through Upsert.
type Repository interface {
	Upsert(ctx context.Context, tx *Transaction) error
	ListByUser(ctx context.Context, userID uuid.UUID, since time.Time) ([]Transaction, error)
	ListActiveUserIDs(ctx context.Context, since time.Time) ([]uuid.UUID, error)
}

// PostgresRepository implements Repository on pgx.
type PostgresRepository struct {
	pool DB
}

// NewPostgresRepository creates a transaction repository backed by PostgreSQL.
func NewPostgresRepository(pool DB) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Upsert inserts the transaction, or overwrites the mutable fields of the
// existing row when the same (user_id, external_id) pair already exists.
// Records without an external id always insert: manual entries have no
// stable upstream identity to dedupe on.
func (r *PostgresRepository) Upsert(ctx context.Context, tx *Transaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}

	if tx.ExternalID == nil {
		query := `
			INSERT INTO transactions (id, user_id, amount_minor, currency_code, posted_at, description, category, tx_type, merchant_name)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING created_at, updated_at`
		err := r.pool.QueryRow(ctx, query,
			tx.ID, tx.UserID, tx.AmountMinor, tx.CurrencyCode, tx.PostedAt,
			tx.Description, tx.Category, tx.Type, tx.MerchantName,
		).Scan(&tx.CreatedAt, &tx.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
		return nil
	}

	query := `
		INSERT INTO transactions (id, user_id, external_id, amount_minor, currency_code, posted_at, description, category, tx_type, merchant_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, external_id) DO UPDATE SET
			amount_minor = EXCLUDED.amount_minor,
			posted_at = EXCLUDED.posted_at,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			merchant_name = EXCLUDED.merchant_name,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		tx.ID, tx.UserID, *tx.ExternalID, tx.AmountMinor, tx.CurrencyCode,
		tx.PostedAt, tx.Description, tx.Category, tx.Type, tx.MerchantName,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert transaction: %w", err)
	}
	return nil
}

// ListByUser returns every transaction for a user posted on or after since.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID uuid.UUID, since time.Time) ([]Transaction, error) {
	query := `
		SELECT id, user_id, external_id, amount_minor, currency_code, posted_at,
			description, category, tx_type, merchant_name, created_at, updated_at
		FROM transactions
		WHERE user_id = $1 AND posted_at >= $2
		ORDER BY posted_at DESC`

	rows, err := r.pool.Query(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		var tx Transaction
		if err := rows.Scan(
			&tx.ID, &tx.UserID, &tx.ExternalID, &tx.AmountMinor, &tx.CurrencyCode,
			&tx.PostedAt, &tx.Description, &tx.Category, &tx.Type, &tx.MerchantName,
			&tx.CreatedAt, &tx.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// ListActiveUserIDs returns the users with any transaction since the given
// time. The scheduler uses it to decide whose analysis to rerun.
func (r *PostgresRepository) ListActiveUserIDs(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT user_id FROM transactions WHERE posted_at >= $1`

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
