package claims

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/omnivault/internal/common"
	"github.com/dmitrijs2005/omnivault/internal/dbx"
	"github.com/dmitrijs2005/omnivault/internal/server/models"
)

const claimColumns = `id, vault_id, beneficiary, status, payouts, receipts, created_at, completed_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClaim(row scanner) (*models.Claim, error) {
	c := &models.Claim{}
	var (
		status      string
		payouts     []byte
		receipts    []byte
		completedAt sql.NullTime
	)
	if err := row.Scan(&c.ID, &c.VaultID, &c.Beneficiary, &status, &payouts, &receipts, &c.CreatedAt, &completedAt); err != nil {
		return nil, err
	}
	c.Status = models.ClaimStatus(status)
	if err := json.Unmarshal(payouts, &c.Payouts); err != nil {
		return nil, fmt.Errorf("decode payouts: %w", err)
	}
	if err := json.Unmarshal(receipts, &c.Receipts); err != nil {
		return nil, fmt.Errorf("decode receipts: %w", err)
	}
	if completedAt.Valid {
		c.CompletedAt = &completedAt.Time
	}
	return c, nil
}

func alreadyClaimed(c *models.Claim, cause error) error {
	return common.Wrap(common.KindAlreadyClaimed, "beneficiary already claimed", cause,
		common.MetaVaultID, c.VaultID, common.MetaBeneficiary, c.Beneficiary)
}

func marshalList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	return string(b), err
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Claim) (*models.Claim, error) {
	query :=
		`INSERT INTO claims (id, vault_id, beneficiary, status, payouts, receipts, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 `

	payouts, err := marshalList(c.Payouts)
	if err != nil {
		return nil, err
	}
	receipts, err := marshalList(c.Receipts)
	if err != nil {
		return nil, err
	}

	_, err = r.db.ExecContext(ctx, query, c.ID, c.VaultID, c.Beneficiary, string(c.Status), payouts, receipts, c.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err, "claims_vault_beneficiary_key") {
			return nil, alreadyClaimed(c, err)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Get(ctx context.Context, vaultID, beneficiary string) (*models.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE vault_id = $1 AND beneficiary = $2`

	c, err := scanClaim(r.db.QueryRowContext(ctx, query, vaultID, beneficiary))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NotFound("claim", common.MetaVaultID, vaultID, common.MetaBeneficiary, beneficiary)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) ListByVault(ctx context.Context, vaultID string) ([]*models.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE vault_id = $1 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, vaultID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) RecordReceipts(ctx context.Context, id string, receipts []models.Receipt) error {
	query := `UPDATE claims SET receipts = $2 WHERE id = $1 AND status = 'pending'`

	body, err := marshalList(receipts)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, id, body)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if dbx.RowsAffected(res) == 0 {
		return common.NotFound("pending claim", "claim_id", id)
	}
	return nil
}

func (r *PostgresRepository) Complete(ctx context.Context, id string, receipts []models.Receipt, completedAt time.Time) error {
	query := `UPDATE claims SET status = 'completed', receipts = $2, completed_at = $3
		 WHERE id = $1 AND status = 'pending'`

	body, err := marshalList(receipts)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, id, body, completedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if dbx.RowsAffected(res) == 0 {
		return common.NotFound("pending claim", "claim_id", id)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM claims WHERE id = $1 AND status = 'pending'`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
