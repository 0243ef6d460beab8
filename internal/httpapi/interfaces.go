package httpapi

import (
	"context"

	"github.com/spendware/walletd/internal/query"
	ledgersvc "github.com/spendware/walletd/internal/service/ledger"
	walletsvc "github.com/spendware/walletd/internal/service/wallet"
	"github.com/spendware/walletd/internal/wallet"
)

// Store composes every store capability the API consumes. Satisfied by the
// memory, firestore and postgres backends.
type Store interface {
	ledgersvc.Repo
	ledgersvc.Writer
	walletsvc.Repo
	walletsvc.Writer
	query.Repo
}

// UserStore is the optional profile-document capability.
type UserStore interface {
	GetUser(ctx context.Context, id string) (wallet.User, error)
	PutUser(ctx context.Context, u wallet.User) error
}

// ReadyChecker is optionally implemented by stores to indicate readiness.
type ReadyChecker interface {
	Ready(ctx context.Context) error
}
