package safe_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ghdigest/pkg/utils/safe"
)

type errCloser struct {
	err    error
	closed bool
}

func (x *errCloser) Close() error {
	x.closed = true
	return x.err
}

func TestClose(t *testing.T) {
	t.Run("close valid reader", func(t *testing.T) {
		safe.Close(io.NopCloser(bytes.NewReader([]byte("test"))))
	})

	t.Run("close nil reader", func(t *testing.T) {
		safe.Close(nil)
	})

	t.Run("close error is swallowed", func(t *testing.T) {
		c := &errCloser{err: errors.New("boom")}
		safe.Close(c)
		gt.True(t, c.closed)
	})
}

type fakeTx struct {
	pgx.Tx
	err        error
	rolledBack bool
}

func (x *fakeTx) Rollback(ctx context.Context) error {
	x.rolledBack = true
	return x.err
}

func TestRollback(t *testing.T) {
	t.Run("rollback open transaction", func(t *testing.T) {
		tx := &fakeTx{}
		safe.Rollback(context.Background(), tx)
		gt.True(t, tx.rolledBack)
	})

	t.Run("already closed transaction", func(t *testing.T) {
		tx := &fakeTx{err: pgx.ErrTxClosed}
		safe.Rollback(context.Background(), tx)
		gt.True(t, tx.rolledBack)
	})

	t.Run("nil transaction", func(t *testing.T) {
		safe.Rollback(context.Background(), nil)
	})
}
