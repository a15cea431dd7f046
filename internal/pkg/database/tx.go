package database

import (
	"context"
	"database/sql"
	"errors"

	apperror "financetracker/internal/errors"
)

// DBTX é o subconjunto comum entre *sql.DB e *sql.Tx usado pelos repositórios.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Transactor delimita uma unidade de trabalho transacional.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

// TxManager implementa Transactor sobre um *sql.DB.
type TxManager struct {
	DB *sql.DB
}

// NewTxManager cria o gerenciador de transações.
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{DB: db}
}

// WithinTx executa fn dentro de uma transação. Commit quando fn retorna nil,
// rollback em erro ou panic. Se o contexto já carrega uma transação, ela é reutilizada.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return RunInTx(ctx, m.DB, fn)
}

// RunInTx é a versão funcional de TxManager.WithinTx.
func RunInTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) (err error) {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return apperror.NewDBError("falha ao iniciar transação", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, apperror.NewDBError("falha no rollback", rbErr))
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = apperror.NewDBError("falha ao confirmar transação", cErr)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, tx))
}

// Executor devolve a transação ambiente do contexto, ou o pool quando não houver.
func Executor(ctx context.Context, db *sql.DB) DBTX {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return db
}

func txFromContext(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}
