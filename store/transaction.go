package store

import (
	"context"

	action "github.com/goliatone/go-action"
	bolt "go.etcd.io/bbolt"
)

// TransactionManager adapts the store to the pipeline's transaction
// boundary. Read-only actions open a read transaction; read-write actions
// take the single writer.
//
// bbolt serializes writers, so two concurrent read-write actions queue on
// Begin. Read transactions never block.
type TransactionManager struct {
	db *bolt.DB
}

// TransactionManager returns a pipeline transaction manager over the store's
// database.
func (s *Store) TransactionManager() *TransactionManager {
	return &TransactionManager{db: s.db}
}

func (m *TransactionManager) Begin(ctx context.Context, opts action.TxOptions) (action.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tx, err := m.db.Begin(!opts.ReadOnly)
	if err != nil {
		return nil, err
	}
	return &transaction{tx: tx}, nil
}

type transaction struct {
	tx   *bolt.Tx
	done bool
}

func (t *transaction) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	if !t.tx.Writable() {
		// read transactions only release their page snapshot
		return t.tx.Rollback()
	}
	return t.tx.Commit()
}

func (t *transaction) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.tx.Rollback()
}
