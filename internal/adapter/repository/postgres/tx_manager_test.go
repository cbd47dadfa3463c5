package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/opsledger/internal/usecase"
)

func TestTxManager(t *testing.T) {
	ctx := context.Background()

	t.Run("commit", func(t *testing.T) {
		pool := newMockPool(t)
		pool.ExpectBegin()
		pool.ExpectCommit()

		tx, err := NewTxManager(pool).Begin(ctx)
		require.NoError(t, err)
		require.NotNil(t, tx.(*Tx).PgxTx())
		require.NoError(t, tx.Commit(ctx))

		assertExpectations(t, pool)
	})

	t.Run("rollback", func(t *testing.T) {
		pool := newMockPool(t)
		pool.ExpectBegin()
		pool.ExpectRollback()

		tx, err := NewTxManager(pool).Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.Rollback(ctx))

		assertExpectations(t, pool)
	})

	t.Run("begin fails", func(t *testing.T) {
		pool := newMockPool(t)
		beginErr := errors.New("too many clients")
		pool.ExpectBegin().WillReturnError(beginErr)

		tx, err := NewTxManager(pool).Begin(ctx)
		require.ErrorIs(t, err, beginErr)
		assert.Nil(t, tx)
	})

	t.Run("commit fails", func(t *testing.T) {
		pool := newMockPool(t)
		commitErr := errors.New("could not serialize access")
		pool.ExpectBegin()
		pool.ExpectCommit().WillReturnError(commitErr)

		tx, err := NewTxManager(pool).Begin(ctx)
		require.NoError(t, err)
		require.ErrorIs(t, tx.Commit(ctx), commitErr)

		assertExpectations(t, pool)
	})
}

type foreignTx struct{}

func (foreignTx) Commit(context.Context) error   { return nil }
func (foreignTx) Rollback(context.Context) error { return nil }

func TestRepositoriesRejectForeignTransaction(t *testing.T) {
	ctx := context.Background()
	pool := newMockPool(t)

	locks := map[string]func(tx usecase.Transaction) error{
		"approvals": func(tx usecase.Transaction) error {
			_, err := NewApprovalRepository(pool).GetByIDForUpdate(ctx, tx, "APR-00001")
			return err
		},
		"entries": func(tx usecase.Transaction) error {
			_, err := NewEntryRepository(pool).GetByIDForUpdate(ctx, tx, "TXN-1")
			return err
		},
		"vendor payments": func(tx usecase.Transaction) error {
			_, err := NewVendorPaymentRepository(pool).GetByIDForUpdate(ctx, tx, "VPY-00001")
			return err
		},
		"liabilities": func(tx usecase.Transaction) error {
			_, err := NewLiabilityRepository(pool).GetByIDForUpdate(ctx, tx, "LIA-00001")
			return err
		},
		"salaries": func(tx usecase.Transaction) error {
			_, err := NewSalaryRepository(pool).GetByIDForUpdate(ctx, tx, "SAL-202610-00001")
			return err
		},
	}

	for name, lock := range locks {
		assert.ErrorIs(t, lock(foreignTx{}), errForeignTx, name)
	}

	assertExpectations(t, pool)
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	require.NoError(t, pool.ExpectationsWereMet())
}

func beginMockTx(t *testing.T, pool pgxmock.PgxPoolIface) *Tx {
	t.Helper()
	pool.ExpectBegin()
	tx, err := NewTxManager(pool).Begin(context.Background())
	require.NoError(t, err)
	return tx.(*Tx)
}
