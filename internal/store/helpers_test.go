package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"
)

type stubDB struct {
	getFn    func(ctx context.Context, dest any, query string, args ...any) error
	selectFn func(ctx context.Context, dest any, query string, args ...any) error
	execFn   func(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s stubDB) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	if s.getFn == nil {
		return nil
	}
	return s.getFn(ctx, dest, query, args...)
}

func (s stubDB) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	if s.selectFn == nil {
		return nil
	}
	return s.selectFn(ctx, dest, query, args...)
}

func (s stubDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if s.execFn == nil {
		return stubResult{}, nil
	}
	return s.execFn(ctx, query, args...)
}

type stubResult struct {
	rows int64
}

func (r stubResult) LastInsertId() (int64, error) { return 0, nil }
func (r stubResult) RowsAffected() (int64, error) { return r.rows, nil }

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

// The noop driver lets transactional code run against a real *sqlx.Tx while
// recording every statement it executes.

type noopDriver struct{}

func (d noopDriver) Open(name string) (driver.Conn, error) {
	return &noopConn{}, nil
}

type noopConn struct{}

func (c *noopConn) Prepare(query string) (driver.Stmt, error) {
	return &noopStmt{}, nil
}

func (c *noopConn) Close() error {
	return nil
}

func (c *noopConn) Begin() (driver.Tx, error) {
	return &noopTx{}, nil
}

func (c *noopConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	return &noopTx{}, nil
}

func (c *noopConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	recordTxExec(query, args)
	return stubResult{rows: 1}, nil
}

type noopStmt struct{}

func (s *noopStmt) Close() error {
	return nil
}

func (s *noopStmt) NumInput() int {
	return -1
}

func (s *noopStmt) Exec(args []driver.Value) (driver.Result, error) {
	return stubResult{rows: 1}, nil
}

func (s *noopStmt) Query(args []driver.Value) (driver.Rows, error) {
	return nil, nil
}

type noopTx struct{}

func (t *noopTx) Commit() error {
	return nil
}

func (t *noopTx) Rollback() error {
	return nil
}

var noopDriverCounter uint64

type txExecRecord struct {
	query string
	args  []any
}

var txExecRecords []txExecRecord

func recordTxExec(query string, args []driver.NamedValue) {
	record := txExecRecord{query: query, args: make([]any, 0, len(args))}
	for _, arg := range args {
		record.args = append(record.args, arg.Value)
	}
	txExecRecords = append(txExecRecords, record)
}

func newTestTxRunner(t *testing.T) (fakeTxRunner, *[]txExecRecord) {
	t.Helper()
	txExecRecords = nil
	name := fmt.Sprintf("noop-%d", atomic.AddUint64(&noopDriverCounter, 1))
	sql.Register(name, noopDriver{})
	dbConn, err := sql.Open(name, "")
	if err != nil {
		t.Fatalf("failed to open noop db: %v", err)
	}
	xdb := sqlx.NewDb(dbConn, name)
	return fakeTxRunner{
		withTxFn: func(ctx context.Context, fn func(*sqlx.Tx) error) error {
			tx, err := xdb.BeginTxx(ctx, nil)
			if err != nil {
				return err
			}
			if err := fn(tx); err != nil {
				_ = tx.Rollback()
				return err
			}
			return tx.Commit()
		},
	}, &txExecRecords
}
