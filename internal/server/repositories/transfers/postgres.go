package transfers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/omnivault/internal/common"
	"github.com/dmitrijs2005/omnivault/internal/dbx"
	"github.com/dmitrijs2005/omnivault/internal/server/models"
	"github.com/shopspring/decimal"
)

const transferColumns = `id, user_id, token_id, from_chain, to_chain, amount, recipient,
		        status, tx_hash, protocol_fee, gas_fee, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransfer(row scanner) (*models.Transfer, error) {
	t := &models.Transfer{}
	var (
		status      string
		txHash      sql.NullString
		protocolFee decimal.NullDecimal
		gasFee      decimal.NullDecimal
	)
	err := row.Scan(&t.ID, &t.UserID, &t.TokenID, &t.FromChain, &t.ToChain, &t.Amount, &t.Recipient,
		&status, &txHash, &protocolFee, &gasFee, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.Status = models.TransferStatus(status)
	if txHash.Valid {
		t.TxHash = &txHash.String
	}
	if protocolFee.Valid {
		t.ProtocolFee = &protocolFee.Decimal
	}
	if gasFee.Valid {
		t.GasFee = &gasFee.Decimal
	}
	return t, nil
}

func nullable(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Transfer) (*models.Transfer, error) {
	query :=
		`INSERT INTO transfers (id, user_id, token_id, from_chain, to_chain, amount, recipient, status, tx_hash, protocol_fee, gas_fee, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 `

	_, err := r.db.ExecContext(ctx, query, t.ID, t.UserID, t.TokenID, t.FromChain, t.ToChain, t.Amount, t.Recipient,
		string(t.Status), t.TxHash, nullable(t.ProtocolFee), nullable(t.GasFee), t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Transfer, error) {
	query := `SELECT ` + transferColumns + `
		 FROM transfers WHERE id = $1`

	t, err := scanTransfer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NotFound("transfer", common.MetaTransferID, id)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Transfer, error) {
	query := `SELECT ` + transferColumns + `
		 FROM transfers WHERE user_id = $1 ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
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

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status models.TransferStatus, txHash *string) (*models.Transfer, error) {
	query := `UPDATE transfers SET status = $2, tx_hash = COALESCE($3, tx_hash)
		 WHERE id = $1
		 RETURNING ` + transferColumns

	t, err := scanTransfer(r.db.QueryRowContext(ctx, query, id, string(status), txHash))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NotFound("transfer", common.MetaTransferID, id)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}
