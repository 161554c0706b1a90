package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/omnivault/internal/common"
	"github.com/dmitrijs2005/omnivault/internal/dbx"
	"github.com/dmitrijs2005/omnivault/internal/server/models"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const tokenColumns = `id, user_id, mint_address, name, symbol, decimals, balance,
		        is_oft_enabled, layerzero_id, supported_chains, total_transfers, created_at`

type PostgresRepository struct {
	db    dbx.DBTX
	types *pgtype.Map
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db, types: pgtype.NewMap()}
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scan(row scanner) (*models.Token, error) {
	t := &models.Token{}
	var layerZeroID sql.NullString
	err := row.Scan(&t.ID, &t.UserID, &t.MintAddress, &t.Name, &t.Symbol, &t.Decimals, &t.Balance,
		&t.IsOFTEnabled, &layerZeroID, r.types.SQLScanner(&t.SupportedChains), &t.TotalTransfers, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	if layerZeroID.Valid {
		t.LayerZeroID = &layerZeroID.String
	}
	return t, nil
}

func notFound(id string) error {
	return common.NotFound("token", common.MetaTokenID, id)
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Token) (*models.Token, error) {
	query :=
		`INSERT INTO tokens (id, user_id, mint_address, name, symbol, decimals, balance, is_oft_enabled, supported_chains, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 `

	chains := t.SupportedChains
	if chains == nil {
		chains = []string{}
	}

	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.UserID, t.MintAddress, t.Name, t.Symbol, t.Decimals, t.Balance, t.IsOFTEnabled, chains, t.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err, "tokens_mint_address_key") {
			return nil, common.Wrap(common.KindConflict, "mint address already registered", err, "mint_address", t.MintAddress)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Token, error) {
	return r.get(ctx, `SELECT `+tokenColumns+`
		 FROM tokens WHERE id = $1`, id)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id string) (*models.Token, error) {
	return r.get(ctx, `SELECT `+tokenColumns+`
		 FROM tokens WHERE id = $1 FOR UPDATE`, id)
}

func (r *PostgresRepository) get(ctx context.Context, query, id string) (*models.Token, error) {
	t, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Token, error) {
	query := `SELECT ` + tokenColumns + `
		 FROM tokens WHERE user_id = $1 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Token
	for rows.Next() {
		t, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) (*models.Token, error) {
	query := `UPDATE tokens SET balance = $2 WHERE id = $1
		 RETURNING ` + tokenColumns

	t, err := r.scan(r.db.QueryRowContext(ctx, query, id, balance))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) EnableOFT(ctx context.Context, id string, registrationID string, chains []string) (*models.Token, error) {
	query := `UPDATE tokens SET is_oft_enabled = true, layerzero_id = $2, supported_chains = $3 WHERE id = $1
		 RETURNING ` + tokenColumns

	t, err := r.scan(r.db.QueryRowContext(ctx, query, id, registrationID, chains))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) IncrementTransfers(ctx context.Context, id string) error {
	query := `UPDATE tokens SET total_transfers = total_transfers + 1 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if dbx.RowsAffected(res) == 0 {
		return notFound(id)
	}
	return nil
}
