package vaults

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/omnivault/internal/common"
	"github.com/dmitrijs2005/omnivault/internal/dbx"
	"github.com/dmitrijs2005/omnivault/internal/server/models"
	"github.com/shopspring/decimal"
)

const vaultColumns = `id, user_id, creator, title, description, status, inactivity_period,
		        created_at, last_activity, total_value, version`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVault(row scanner) (*models.Vault, error) {
	v := &models.Vault{}
	var status string
	err := row.Scan(&v.ID, &v.UserID, &v.Creator, &v.Title, &v.Description, &status, &v.InactivityPeriod,
		&v.CreatedAt, &v.LastActivity, &v.TotalValue, &v.Version)
	if err != nil {
		return nil, err
	}
	v.Status = models.VaultStatus(status)
	return v, nil
}

func notFound(id string) error {
	return common.NotFound("vault", common.MetaVaultID, id)
}

func concurrent(id string, version int64) error {
	return common.NewError(common.KindConcurrentModification, "vault was modified concurrently",
		common.MetaVaultID, id, "expected_version", strconv.FormatInt(version, 10))
}

func (r *PostgresRepository) Create(ctx context.Context, v *models.Vault) (*models.Vault, error) {
	query :=
		`INSERT INTO vaults (id, user_id, creator, title, description, status, inactivity_period, created_at, last_activity, total_value, version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 `

	_, err := r.db.ExecContext(ctx, query, v.ID, v.UserID, v.Creator, v.Title, v.Description, string(v.Status),
		v.InactivityPeriod, v.CreatedAt, v.LastActivity, v.TotalValue, v.Version)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Vault, error) {
	query := `SELECT ` + vaultColumns + `
		 FROM vaults WHERE id = $1`

	v, err := scanVault(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := r.loadChildren(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Vault, error) {
	query := `SELECT ` + vaultColumns + `
		 FROM vaults WHERE user_id = $1 ORDER BY created_at, id`

	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) ListByBeneficiary(ctx context.Context, address string) ([]*models.Vault, error) {
	query := `SELECT ` + vaultColumns + `
		 FROM vaults WHERE id IN (SELECT vault_id FROM vault_beneficiaries WHERE address = $1)
		 ORDER BY created_at, id`

	return r.list(ctx, query, address)
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg any) ([]*models.Vault, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	var out []*models.Vault
	for rows.Next() {
		v, err := scanVault(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("db error: %w", err)
	}
	rows.Close()

	// children are loaded after the cursor is closed; a tx allows one open result set
	for _, v := range out {
		if err := r.loadChildren(ctx, v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *PostgresRepository) loadChildren(ctx context.Context, v *models.Vault) error {
	bq := `SELECT id, name, address FROM vault_beneficiaries WHERE vault_id = $1 ORDER BY position`

	rows, err := r.db.QueryContext(ctx, bq, v.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	v.Beneficiaries = nil
	for rows.Next() {
		var b models.Beneficiary
		if err := rows.Scan(&b.ID, &b.Name, &b.Address); err != nil {
			rows.Close()
			return fmt.Errorf("db error: %w", err)
		}
		v.Beneficiaries = append(v.Beneficiaries, b)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("db error: %w", err)
	}
	rows.Close()

	aq := `SELECT id, token_id, symbol, amount, usd_value, allocations, added_at
		 FROM vault_assets WHERE vault_id = $1 ORDER BY position`

	rows, err = r.db.QueryContext(ctx, aq, v.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	v.Assets = nil
	for rows.Next() {
		a := models.VaultAsset{VaultID: v.ID}
		var alloc []byte
		if err := rows.Scan(&a.ID, &a.TokenID, &a.Symbol, &a.Amount, &a.UsdValue, &alloc, &a.AddedAt); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if err := json.Unmarshal(alloc, &a.Allocations); err != nil {
			return fmt.Errorf("decode allocations of asset %s: %w", a.ID, err)
		}
		v.Assets = append(v.Assets, a)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Commit must run inside a transaction: it writes the vault row and its children.
func (r *PostgresRepository) Commit(ctx context.Context, v *models.Vault, expectedVersion int64) (*models.Vault, error) {
	query :=
		`UPDATE vaults
		 SET title = $2, description = $3, inactivity_period = $4, status = $5,
		     last_activity = $6, total_value = $7, version = version + 1
		 WHERE id = $1 AND version = $8
		 RETURNING version`

	err := r.db.QueryRowContext(ctx, query, v.ID, v.Title, v.Description, v.InactivityPeriod, string(v.Status),
		v.LastActivity, v.TotalValue, expectedVersion).Scan(&v.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, concurrent(v.ID, expectedVersion)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	for i, b := range v.Beneficiaries {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO vault_beneficiaries (vault_id, position, id, name, address) VALUES ($1, $2, $3, $4, $5)`,
			v.ID, i, b.ID, b.Name, b.Address)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
	}

	for i, a := range v.Assets {
		alloc, err := json.Marshal(a.Allocations)
		if err != nil {
			return nil, err
		}
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO vault_assets (id, vault_id, position, token_id, symbol, amount, usd_value, allocations, added_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			a.ID, v.ID, i, a.TokenID, a.Symbol, a.Amount, a.UsdValue, string(alloc), a.AddedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
	}

	return v, nil
}

func (r *PostgresRepository) UpdateState(ctx context.Context, id string, expectedVersion int64, status models.VaultStatus, lastActivity time.Time) (int64, error) {
	query :=
		`UPDATE vaults SET status = $2, last_activity = $3, version = version + 1
		 WHERE id = $1 AND version = $4
		 RETURNING version`

	var version int64
	err := r.db.QueryRowContext(ctx, query, id, string(status), lastActivity, expectedVersion).Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, concurrent(id, expectedVersion)
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return version, nil
}

func (r *PostgresRepository) CommittedAmounts(ctx context.Context, userID string, excludeVaultID string) (map[string]decimal.Decimal, error) {
	query :=
		`SELECT a.token_id, SUM(a.amount)
		 FROM vault_assets a JOIN vaults v ON v.id = a.vault_id
		 WHERE v.user_id = $1 AND v.status <> 'claimed' AND v.id::text <> $2
		 GROUP BY a.token_id`

	rows, err := r.db.QueryContext(ctx, query, userID, excludeVaultID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := map[string]decimal.Decimal{}
	for rows.Next() {
		var tokenID string
		var sum decimal.Decimal
		if err := rows.Scan(&tokenID, &sum); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out[tokenID] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
