package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager runs fn inside a single store transaction. The handle
// passed as tx is infra-defined (pgx.Tx for Postgres) and must be threaded into
// every repository call that should join the transaction. Repositories accept
// NoTX for the non-transactional path.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
