package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle. The concrete type is
// infra-defined (pgx.Tx for Postgres); repositories must accept nil for
// the non-transactional path.
type Tx interface{}

// TransactionManager runs fn inside one database transaction, passing
// the handle through so repository calls join it. fn returning an error
// rolls everything back.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
