package firestore

import (
	"context"

	"github.com/spendware/walletd/internal/errs"
)

// Watch subscribes to the owner's collection through Firestore's snapshot
// listener. The callback fires after every snapshot; the subscriber re-reads
// its own filtered view, so only change notification matters here.
func (s *Store) Watch(ctx context.Context, ownerID, kind string, fn func()) (func(), error) {
	switch kind {
	case colWallets, colTransactions:
	default:
		return nil, errs.ErrInvalid
	}
	ctx, cancel := context.WithCancel(ctx)
	iter := s.client.Collection(kind).Where("uid", "==", ownerID).Snapshots(ctx)

	go func() {
		defer iter.Stop()
		first := true
		for {
			if _, err := iter.Next(); err != nil {
				return
			}
			// The listener replays the current state as its first snapshot;
			// the subscriber already delivered that itself.
			if first {
				first = false
				continue
			}
			fn()
		}
	}()

	return cancel, nil
}
