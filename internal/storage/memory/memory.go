// Package memory provides a simple in-memory implementation used for
// development and tests. It deliberately models the document store's
// limitation: no cross-document atomicity. The ledger service writes the
// transaction first and the wallet balance second, and a failure in between
// is repaired by recomputing the wallet balance from its transactions.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spendware/walletd/internal/errs"
	"github.com/spendware/walletd/internal/money"
	"github.com/spendware/walletd/internal/wallet"
)

// Store is an in-memory implementation of the repository and writer
// interfaces used by the services. Guarded by an RWMutex for concurrent use.
type Store struct {
	mu      sync.RWMutex
	users   map[string]wallet.User
	wallets map[uuid.UUID]wallet.Wallet
	txns    map[uuid.UUID]wallet.Transaction

	// Snapshot subscribers, keyed by subscription ID.
	subs map[uuid.UUID]*subscriber

	// failNextWalletSave makes the next SaveWalletBalance fail, so tests can
	// exercise the partial-write repair path.
	failNextWalletSave bool
}

type subscriber struct {
	ownerID string
	kind    string
	fn      func()
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		users:   make(map[string]wallet.User),
		wallets: make(map[uuid.UUID]wallet.Wallet),
		txns:    make(map[uuid.UUID]wallet.Transaction),
		subs:    make(map[uuid.UUID]*subscriber),
	}
}

// Seed helpers for local dev/tests.
func (s *Store) SeedUser(u wallet.User) {
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
}

func (s *Store) SeedWallet(w wallet.Wallet) {
	s.mu.Lock()
	s.wallets[w.ID] = w
	s.mu.Unlock()
}

func (s *Store) Reset() {
	s.mu.Lock()
	s.users = map[string]wallet.User{}
	s.wallets = map[uuid.UUID]wallet.Wallet{}
	s.txns = map[uuid.UUID]wallet.Transaction{}
	s.subs = map[uuid.UUID]*subscriber{}
	s.mu.Unlock()
}

// FailNextWalletSave arms a one-shot failure of the next balance write.
func (s *Store) FailNextWalletSave() {
	s.mu.Lock()
	s.failNextWalletSave = true
	s.mu.Unlock()
}

// Ready always succeeds for the in-memory backend.
func (s *Store) Ready(context.Context) error { return nil }

// --- User reads/writes ---

func (s *Store) GetUser(_ context.Context, id string) (wallet.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return wallet.User{}, errs.ErrNotFound
	}
	return u, nil
}

func (s *Store) PutUser(_ context.Context, u wallet.User) error {
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
	return nil
}

// --- Wallet reads ---

func (s *Store) GetWallet(_ context.Context, walletID uuid.UUID) (wallet.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[walletID]
	if !ok {
		return wallet.Wallet{}, errs.ErrWalletNotFound
	}
	return w, nil
}

func (s *Store) ListWallets(_ context.Context, ownerID string) ([]wallet.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]wallet.Wallet, 0)
	for _, w := range s.wallets {
		if w.OwnerID == ownerID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].Created.Before(out[j].Created)
	})
	return out, nil
}

// --- Wallet writes ---

func (s *Store) CreateWallet(_ context.Context, w wallet.Wallet) error {
	s.mu.Lock()
	s.wallets[w.ID] = w
	s.notifyLocked(w.OwnerID, "wallets")
	s.mu.Unlock()
	return nil
}

// SaveWalletMeta updates name and image only; balance and version are
// untouched.
func (s *Store) SaveWalletMeta(_ context.Context, walletID uuid.UUID, name, imageURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[walletID]
	if !ok {
		return errs.ErrWalletNotFound
	}
	w.Name = name
	w.ImageURL = imageURL
	s.wallets[walletID] = w
	s.notifyLocked(w.OwnerID, "wallets")
	return nil
}

// SaveWalletBalance overwrites the cached balance if expectedVersion matches
// the stored version, bumping the version. A stale version fails with
// ErrConcurrentModification.
func (s *Store) SaveWalletBalance(_ context.Context, walletID uuid.UUID, balance money.Money, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNextWalletSave {
		s.failNextWalletSave = false
		return errs.ErrStoreUnavailable
	}
	w, ok := s.wallets[walletID]
	if !ok {
		return errs.ErrWalletNotFound
	}
	if w.Version != expectedVersion {
		return errs.ErrConcurrentModification
	}
	w.Balance = balance
	w.Version++
	s.wallets[walletID] = w
	s.notifyLocked(w.OwnerID, "wallets")
	return nil
}

// DeleteWallet removes a wallet and all transactions referencing it.
func (s *Store) DeleteWallet(_ context.Context, ownerID string, walletID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[walletID]
	if !ok {
		return errs.ErrWalletNotFound
	}
	if w.OwnerID != ownerID {
		return errs.ErrWalletNotOwned
	}
	delete(s.wallets, walletID)
	for id, t := range s.txns {
		if t.WalletID == walletID {
			delete(s.txns, id)
		}
	}
	s.notifyLocked(ownerID, "wallets")
	s.notifyLocked(ownerID, "transactions")
	return nil
}

// --- Transaction reads ---

func (s *Store) GetTransaction(_ context.Context, ownerID string, id uuid.UUID) (wallet.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.txns[id]
	if !ok || t.OwnerID != ownerID {
		return wallet.Transaction{}, errs.ErrTransactionNotFound
	}
	return t, nil
}

// TransactionsByWallet returns every transaction referencing the wallet,
// regardless of time window. Used by balance recompute.
func (s *Store) TransactionsByWallet(_ context.Context, walletID uuid.UUID) ([]wallet.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]wallet.Transaction, 0)
	for _, t := range s.txns {
		if t.WalletID == walletID {
			out = append(out, t)
		}
	}
	return out, nil
}

// ListTransactions returns the owner's transactions, optionally narrowed to a
// wallet and a [from, to] date window, newest date first.
func (s *Store) ListTransactions(_ context.Context, ownerID string, walletID *uuid.UUID, from, to *time.Time) ([]wallet.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]wallet.Transaction, 0)
	for _, t := range s.txns {
		if t.OwnerID != ownerID {
			continue
		}
		if walletID != nil && t.WalletID != *walletID {
			continue
		}
		if from != nil && t.Date.Before(*from) {
			continue
		}
		if to != nil && t.Date.After(*to) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

// --- Transaction writes ---

// PutTransaction creates or replaces a transaction document.
func (s *Store) PutTransaction(_ context.Context, t wallet.Transaction) error {
	s.mu.Lock()
	s.txns[t.ID] = t
	s.notifyLocked(t.OwnerID, "transactions")
	s.mu.Unlock()
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, ownerID string, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txns[id]
	if !ok || t.OwnerID != ownerID {
		return errs.ErrTransactionNotFound
	}
	delete(s.txns, id)
	s.notifyLocked(ownerID, "transactions")
	return nil
}

// --- Watch ---

// Watch registers a callback fired after every change to the owner's
// collection. The callback receives no payload; consumers re-read the full
// current result set, matching the snapshot contract of the real backend.
func (s *Store) Watch(_ context.Context, ownerID, kind string, fn func()) (func(), error) {
	if err := validateKind(kind); err != nil {
		return nil, err
	}
	id := uuid.New()
	s.mu.Lock()
	s.subs[id] = &subscriber{ownerID: ownerID, kind: kind, fn: fn}
	s.mu.Unlock()
	cancel := func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
	return cancel, nil
}

func validateKind(kind string) error {
	switch kind {
	case "wallets", "transactions":
		return nil
	}
	return errs.ErrInvalid
}

// notifyLocked fires matching subscriber callbacks. Caller holds s.mu; the
// callbacks run on their own goroutine so a slow consumer cannot block writes.
func (s *Store) notifyLocked(ownerID, kind string) {
	for _, sub := range s.subs {
		if sub.ownerID == ownerID && sub.kind == kind {
			go sub.fn()
		}
	}
}
