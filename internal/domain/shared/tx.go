package shared

import "context"

// TxManager runs a function inside a single storage transaction. Generation
// pipelines use it to make their multi-aggregate writes atomic.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
