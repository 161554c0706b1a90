package tokens

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/omnivault/internal/common"
	"github.com/dmitrijs2005/omnivault/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// arrayConverter lets text[] arguments through the way the pgx driver does.
type arrayConverter struct{}

func (arrayConverter) ConvertValue(v any) (driver.Value, error) {
	if s, ok := v.([]string); ok {
		return s, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp),
		sqlmock.ValueConverterOption(arrayConverter{}),
	)
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var columns = []string{"id", "user_id", "mint_address", "name", "symbol", "decimals", "balance",
	"is_oft_enabled", "layerzero_id", "supported_chains", "total_transfers", "created_at"}

var created = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	tok := &models.Token{ID: "t1", UserID: "u1", MintAddress: "mint", Name: "Solana", Symbol: "SOL",
		Decimals: 9, Balance: decimal.RequireFromString("12.5"), CreatedAt: created}

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+tokens\b.*VALUES\s*\(\$1,.*\$10\)\s*$`).
		WithArgs("t1", "u1", "mint", "Solana", "SOL", 9, tok.Balance, false, []string{}, created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := repo.Create(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateMint(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+tokens`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "tokens_mint_address_key"})

	_, err := repo.Create(context.Background(), &models.Token{ID: "t1", MintAddress: "mint"})
	assert.True(t, errors.Is(err, common.ErrorConflict), "got %v", err)
}

func TestGet_ScansArraysAndNullables(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(columns).
		AddRow("t1", "u1", "mint", "Solana", "SOL", 9, "100.25", true, "oft_mint", "{ethereum,polygon}", 3, created)
	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+tokens\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("t1").
		WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "100.25", got.Balance.String())
	assert.True(t, got.IsOFTEnabled)
	require.NotNil(t, got.LayerZeroID)
	assert.Equal(t, "oft_mint", *got.LayerZeroID)
	assert.Equal(t, []string{"ethereum", "polygon"}, got.SupportedChains)
	assert.Equal(t, 3, got.TotalTransfers)
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+tokens\s+WHERE\s+id`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestGetForUpdate_LocksRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(columns).
		AddRow("t1", "u1", "mint", "Solana", "SOL", 9, "100", false, nil, "{}", 0, created)
	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+tokens\s+WHERE\s+id\s*=\s*\$1\s+FOR\s+UPDATE$`).
		WithArgs("t1").
		WillReturnRows(rows)

	got, err := repo.GetForUpdate(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "100", got.Balance.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetForUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FOR\s+UPDATE`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetForUpdate(context.Background(), "missing")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestListByUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(columns).
		AddRow("t1", "u1", "m1", "A", "A", 6, "1", false, nil, "{}", 0, created).
		AddRow("t2", "u1", "m2", "B", "B", 6, "2", false, nil, "{}", 0, created)
	mock.ExpectQuery(`(?s)FROM\s+tokens\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY`).
		WithArgs("u1").
		WillReturnRows(rows)

	got, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].LayerZeroID)
	assert.Equal(t, "t2", got[1].ID)
}

func TestUpdateBalance(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	bal := decimal.RequireFromString("42")
	rows := sqlmock.NewRows(columns).
		AddRow("t1", "u1", "m1", "A", "A", 6, "42", false, nil, "{}", 0, created)
	mock.ExpectQuery(`(?s)^UPDATE\s+tokens\s+SET\s+balance\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1\s+RETURNING`).
		WithArgs("t1", bal).
		WillReturnRows(rows)

	got, err := repo.UpdateBalance(context.Background(), "t1", bal)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(bal))

	mock.ExpectQuery(`UPDATE\s+tokens\s+SET\s+balance`).
		WillReturnError(sql.ErrNoRows)
	_, err = repo.UpdateBalance(context.Background(), "nope", bal)
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestEnableOFT(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(columns).
		AddRow("t1", "u1", "m1", "A", "A", 6, "1", true, "oft_m1", "{bsc}", 0, created)
	mock.ExpectQuery(`(?s)^UPDATE\s+tokens\s+SET\s+is_oft_enabled\s*=\s*true`).
		WithArgs("t1", "oft_m1", []string{"bsc"}).
		WillReturnRows(rows)

	got, err := repo.EnableOFT(context.Background(), "t1", "oft_m1", []string{"bsc"})
	require.NoError(t, err)
	assert.True(t, got.IsOFTEnabled)
	assert.Equal(t, []string{"bsc"}, got.SupportedChains)
}

func TestIncrementTransfers(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+tokens\s+SET\s+total_transfers\s*=\s*total_transfers\s*\+\s*1\s+WHERE\s+id\s*=\s*\$1$`

	mock.ExpectExec(q).WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.IncrementTransfers(context.Background(), "t1"))

	mock.ExpectExec(q).WithArgs("t2").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.True(t, errors.Is(repo.IncrementTransfers(context.Background(), "t2"), common.ErrorNotFound))

	mock.ExpectExec(q).WithArgs("t3").WillReturnError(errors.New("db down"))
	err := repo.IncrementTransfers(context.Background(), "t3")
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}
