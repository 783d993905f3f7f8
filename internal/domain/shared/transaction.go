package shared

import "context"

// TransactionManager runs a unit of work atomically. The function receives a
// derived context carrying the transaction; repositories resolve it so that
// every operation inside fn commits or rolls back together.
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// NopTransactionManager executes the function without a transaction.
// Useful in tests and for single-write operations.
type NopTransactionManager struct{}

// Do runs fn directly
func (NopTransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
