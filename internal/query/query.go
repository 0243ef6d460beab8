// Package query is the read side: list and search transactions, subscribe to
// change snapshots, and aggregate statistics per calendar bucket.
package query

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spendware/walletd/internal/errs"
	"github.com/spendware/walletd/internal/wallet"
)

// Repo defines the store reads the query service needs.
type Repo interface {
	ListTransactions(ctx context.Context, ownerID string, walletID *uuid.UUID, from, to *time.Time) ([]wallet.Transaction, error)
	ListWallets(ctx context.Context, ownerID string) ([]wallet.Wallet, error)
}

// Watcher is the optional store capability behind subscriptions. The callback
// fires after any change to the owner's collection; the subscriber re-reads
// the full current result set, so consumers always see complete snapshots.
type Watcher interface {
	Watch(ctx context.Context, ownerID, kind string, fn func()) (func(), error)
}

// Filter narrows a transaction listing. Owner and time window are applied by
// the store; Search is a case-insensitive substring match over description,
// category and direction applied here.
type Filter struct {
	WalletID *uuid.UUID
	From     *time.Time
	To       *time.Time
	Search   string
}

// Subscription is a cancellable handle for a snapshot feed.
type Subscription struct {
	cancel func()
}

// Cancel stops the feed. Safe to call more than once.
func (s *Subscription) Cancel() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Service exposes the read model.
type Service struct {
	repo     Repo
	watcher  Watcher
	currency string
}

// New constructs the query service. watcher may be nil for stores without
// change feeds; subscriptions then fail with ErrNotSupported.
func New(repo Repo, watcher Watcher, currency string) *Service {
	return &Service{repo: repo, watcher: watcher, currency: strings.ToUpper(currency)}
}

// ListTransactions returns the owner's transactions matching the filter,
// newest first.
func (s *Service) ListTransactions(ctx context.Context, ownerID string, f Filter) ([]wallet.Transaction, error) {
	if ownerID == "" {
		return nil, errs.ErrInvalid
	}
	txns, err := s.repo.ListTransactions(ctx, ownerID, f.WalletID, f.From, f.To)
	if err != nil {
		return nil, err
	}
	if f.Search == "" {
		return txns, nil
	}
	needle := strings.ToLower(f.Search)
	out := make([]wallet.Transaction, 0, len(txns))
	for _, t := range txns {
		if matches(t, needle) {
			out = append(out, t)
		}
	}
	return out, nil
}

func matches(t wallet.Transaction, needle string) bool {
	return strings.Contains(strings.ToLower(t.Description), needle) ||
		strings.Contains(strings.ToLower(t.Category), needle) ||
		strings.Contains(strings.ToLower(string(t.Direction)), needle)
}

// ListWallets returns the owner's wallets in creation order.
func (s *Service) ListWallets(ctx context.Context, ownerID string) ([]wallet.Wallet, error) {
	if ownerID == "" {
		return nil, errs.ErrInvalid
	}
	return s.repo.ListWallets(ctx, ownerID)
}

// SubscribeTransactions delivers the full filtered transaction set now and
// after every change until the subscription is cancelled.
func (s *Service) SubscribeTransactions(ctx context.Context, ownerID string, f Filter, fn func([]wallet.Transaction)) (*Subscription, error) {
	if s.watcher == nil {
		return nil, errs.ErrNotSupported
	}
	if ownerID == "" || fn == nil {
		return nil, errs.ErrInvalid
	}
	deliver := func() {
		if txns, err := s.ListTransactions(ctx, ownerID, f); err == nil {
			fn(txns)
		}
	}
	cancel, err := s.watcher.Watch(ctx, ownerID, "transactions", deliver)
	if err != nil {
		return nil, err
	}
	deliver()
	return &Subscription{cancel: cancel}, nil
}

// SubscribeWallets delivers the owner's full wallet set now and after every
// change until cancelled.
func (s *Service) SubscribeWallets(ctx context.Context, ownerID string, fn func([]wallet.Wallet)) (*Subscription, error) {
	if s.watcher == nil {
		return nil, errs.ErrNotSupported
	}
	if ownerID == "" || fn == nil {
		return nil, errs.ErrInvalid
	}
	deliver := func() {
		if ws, err := s.repo.ListWallets(ctx, ownerID); err == nil {
			fn(ws)
		}
	}
	cancel, err := s.watcher.Watch(ctx, ownerID, "wallets", deliver)
	if err != nil {
		return nil, err
	}
	deliver()
	return &Subscription{cancel: cancel}, nil
}
