package action

import "context"

// TxOptions carries the transaction definition the controller derives from
// the action being run.
type TxOptions struct {
	Name     string
	ReadOnly bool
}

// Transaction is one unit of work opened by a TransactionManager. Exactly one
// of Commit or Rollback is called per transaction.
type Transaction interface {
	Commit() error
	Rollback() error
}

// TransactionManager wraps execution in a backing-store transaction. The
// read-only flag must be honored where the store distinguishes modes; it is
// advisory otherwise.
type TransactionManager interface {
	Begin(ctx context.Context, opts TxOptions) (Transaction, error)
}

// NoopTransactionManager satisfies TransactionManager without a backing
// store. Useful for tests and for deployments where mappers manage their own
// transactions.
type NoopTransactionManager struct{}

type noopTransaction struct{}

func (noopTransaction) Commit() error   { return nil }
func (noopTransaction) Rollback() error { return nil }

func (NoopTransactionManager) Begin(ctx context.Context, opts TxOptions) (Transaction, error) {
	return noopTransaction{}, nil
}
