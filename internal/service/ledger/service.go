// Package ledger orchestrates transaction mutations against the store while
// keeping each wallet's cached balance consistent with its transaction set.
// The store offers single-document writes only in the general case, so the
// service honors a strict ordering contract: the transaction record is
// written before the wallet balance. If the process dies in between, the
// transaction log is the source of truth and RecomputeWalletBalance repairs
// the cache. Stores that can write both documents atomically expose
// AtomicWriter and skip the gap entirely.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spendware/walletd/internal/errs"
	"github.com/spendware/walletd/internal/money"
	"github.com/spendware/walletd/internal/reconcile"
	"github.com/spendware/walletd/internal/wallet"
)

// Repo defines read operations needed by the service.
type Repo interface {
	GetWallet(ctx context.Context, walletID uuid.UUID) (wallet.Wallet, error)
	GetTransaction(ctx context.Context, ownerID string, id uuid.UUID) (wallet.Transaction, error)
	TransactionsByWallet(ctx context.Context, walletID uuid.UUID) ([]wallet.Transaction, error)
}

// Writer defines write operations needed by the service.
type Writer interface {
	PutTransaction(ctx context.Context, t wallet.Transaction) error
	DeleteTransaction(ctx context.Context, ownerID string, id uuid.UUID) error
	// SaveWalletBalance overwrites the cached balance guarded by the wallet's
	// version token. A stale token fails with ErrConcurrentModification.
	SaveWalletBalance(ctx context.Context, walletID uuid.UUID, balance money.Money, expectedVersion int64) error
}

// WalletChange is one wallet balance write inside a mutation.
type WalletChange struct {
	WalletID        uuid.UUID
	NewBalance      money.Money
	ExpectedVersion int64
}

// Mutation bundles the transaction write and the wallet balance writes of one
// logical ledger operation. Exactly one of Put and DeleteID is set.
type Mutation struct {
	OwnerID  string
	Put      *wallet.Transaction
	DeleteID *uuid.UUID
	Wallets  []WalletChange
}

// AtomicWriter is implemented by stores that can apply a whole Mutation in a
// single transaction (firestore, postgres). When available the service
// prefers it over the ordered two-step path.
type AtomicWriter interface {
	ApplyMutation(ctx context.Context, m Mutation) error
}

// CreateInput carries the fields of a new transaction.
type CreateInput struct {
	OwnerID     string
	WalletID    uuid.UUID
	Direction   wallet.Direction
	Amount      money.Money
	Category    string
	Date        time.Time
	Description string
	IconURL     string
}

// Patch carries optional changes for an existing transaction. Nil fields are
// left as they are. A WalletID change reassigns the transaction and
// reconciles both wallets.
type Patch struct {
	WalletID    *uuid.UUID
	Direction   *wallet.Direction
	Amount      *money.Money
	Category    *string
	Date        *time.Time
	Description *string
	IconURL     *string
}

// Service exposes the four ledger operations.
type Service interface {
	CreateTransaction(ctx context.Context, in CreateInput) (wallet.Transaction, error)
	UpdateTransaction(ctx context.Context, ownerID string, id uuid.UUID, p Patch) (wallet.Transaction, error)
	DeleteTransaction(ctx context.Context, ownerID string, id uuid.UUID) error
	// RecomputeWalletBalance sums all transactions referencing the wallet and
	// overwrites the cached balance. Idempotent; safe to run concurrently with
	// mutations (last writer wins, replay converges).
	RecomputeWalletBalance(ctx context.Context, ownerID string, walletID uuid.UUID) (money.Money, error)
}

type service struct {
	repo   Repo
	writer Writer
}

// New constructs the ledger service over the injected store capabilities.
func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer} }

func (s *service) CreateTransaction(ctx context.Context, in CreateInput) (wallet.Transaction, error) {
	if in.OwnerID == "" || in.WalletID == uuid.Nil {
		return wallet.Transaction{}, errs.ErrInvalid
	}
	if !in.Direction.Valid() {
		return wallet.Transaction{}, errs.ErrInvalid
	}
	if in.Amount.IsZero() || in.Amount.IsNegative() {
		return wallet.Transaction{}, errs.ErrInvalidAmount
	}
	w, err := s.resolveWallet(ctx, in.OwnerID, in.WalletID)
	if err != nil {
		return wallet.Transaction{}, err
	}

	newBal, err := reconcile.ComputeNewBalance(w.Balance, reconcile.Create{
		Direction: in.Direction,
		Amount:    in.Amount,
	})
	if err != nil {
		return wallet.Transaction{}, err
	}

	now := time.Now().UTC()
	date := in.Date
	if date.IsZero() {
		date = now
	}
	txn := wallet.Transaction{
		ID:          uuid.New(),
		OwnerID:     in.OwnerID,
		WalletID:    in.WalletID,
		Direction:   in.Direction,
		Category:    wallet.NormalizeCategory(in.Direction, in.Category),
		Amount:      in.Amount,
		Date:        date,
		Created:     now,
		Description: in.Description,
		IconURL:     in.IconURL,
	}

	m := Mutation{
		OwnerID: in.OwnerID,
		Put:     &txn,
		Wallets: []WalletChange{{WalletID: w.ID, NewBalance: newBal, ExpectedVersion: w.Version}},
	}
	if err := s.apply(ctx, m); err != nil {
		return wallet.Transaction{}, err
	}
	return txn, nil
}

func (s *service) UpdateTransaction(ctx context.Context, ownerID string, id uuid.UUID, p Patch) (wallet.Transaction, error) {
	if ownerID == "" || id == uuid.Nil {
		return wallet.Transaction{}, errs.ErrInvalid
	}
	orig, err := s.repo.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return wallet.Transaction{}, err
	}

	next := orig
	if p.Direction != nil {
		if !p.Direction.Valid() {
			return wallet.Transaction{}, errs.ErrInvalid
		}
		next.Direction = *p.Direction
	}
	if p.Amount != nil {
		if p.Amount.IsZero() || p.Amount.IsNegative() {
			return wallet.Transaction{}, errs.ErrInvalidAmount
		}
		next.Amount = *p.Amount
	}
	if p.WalletID != nil {
		next.WalletID = *p.WalletID
	}
	if p.Category != nil {
		next.Category = *p.Category
	}
	// Direction changes re-bucket the category against the new table.
	next.Category = wallet.NormalizeCategory(next.Direction, next.Category)
	if p.Date != nil {
		next.Date = *p.Date
	}
	if p.Description != nil {
		next.Description = *p.Description
	}
	if p.IconURL != nil {
		next.IconURL = *p.IconURL
	}

	if next.WalletID != orig.WalletID {
		return s.reassign(ctx, orig, next)
	}

	w, err := s.resolveWallet(ctx, ownerID, orig.WalletID)
	if err != nil {
		return wallet.Transaction{}, err
	}
	newBal, err := reconcile.ComputeNewBalance(w.Balance, reconcile.Update{
		OldDirection: orig.Direction,
		OldAmount:    orig.Amount,
		NewDirection: next.Direction,
		NewAmount:    next.Amount,
	})
	if err != nil {
		return wallet.Transaction{}, err
	}
	m := Mutation{
		OwnerID: ownerID,
		Put:     &next,
		Wallets: []WalletChange{{WalletID: w.ID, NewBalance: newBal, ExpectedVersion: w.Version}},
	}
	if err := s.apply(ctx, m); err != nil {
		return wallet.Transaction{}, err
	}
	return next, nil
}

// reassign moves a transaction between wallets: the old wallet sees a delete,
// the new wallet sees a create. Both balance writes belong to one mutation.
func (s *service) reassign(ctx context.Context, orig, next wallet.Transaction) (wallet.Transaction, error) {
	oldW, err := s.resolveWallet(ctx, orig.OwnerID, orig.WalletID)
	if err != nil {
		return wallet.Transaction{}, err
	}
	newW, err := s.resolveWallet(ctx, orig.OwnerID, next.WalletID)
	if err != nil {
		return wallet.Transaction{}, err
	}

	oldBal, err := reconcile.ComputeNewBalance(oldW.Balance, reconcile.Delete{
		Direction: orig.Direction,
		Amount:    orig.Amount,
	})
	if err != nil {
		return wallet.Transaction{}, err
	}
	newBal, err := reconcile.ComputeNewBalance(newW.Balance, reconcile.Create{
		Direction: next.Direction,
		Amount:    next.Amount,
	})
	if err != nil {
		return wallet.Transaction{}, err
	}

	m := Mutation{
		OwnerID: orig.OwnerID,
		Put:     &next,
		Wallets: []WalletChange{
			{WalletID: oldW.ID, NewBalance: oldBal, ExpectedVersion: oldW.Version},
			{WalletID: newW.ID, NewBalance: newBal, ExpectedVersion: newW.Version},
		},
	}
	if err := s.apply(ctx, m); err != nil {
		return wallet.Transaction{}, err
	}
	return next, nil
}

func (s *service) DeleteTransaction(ctx context.Context, ownerID string, id uuid.UUID) error {
	if ownerID == "" || id == uuid.Nil {
		return errs.ErrInvalid
	}
	txn, err := s.repo.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return err
	}
	w, err := s.resolveWallet(ctx, ownerID, txn.WalletID)
	if err != nil {
		return err
	}
	newBal, err := reconcile.ComputeNewBalance(w.Balance, reconcile.Delete{
		Direction: txn.Direction,
		Amount:    txn.Amount,
	})
	if err != nil {
		return err
	}
	m := Mutation{
		OwnerID:  ownerID,
		DeleteID: &id,
		Wallets:  []WalletChange{{WalletID: w.ID, NewBalance: newBal, ExpectedVersion: w.Version}},
	}
	return s.apply(ctx, m)
}

// recomputeAttempts bounds the retry loop against version conflicts from
// concurrent mutations.
const recomputeAttempts = 5

func (s *service) RecomputeWalletBalance(ctx context.Context, ownerID string, walletID uuid.UUID) (money.Money, error) {
	if ownerID == "" || walletID == uuid.Nil {
		return money.Money{}, errs.ErrInvalid
	}
	var lastErr error
	for i := 0; i < recomputeAttempts; i++ {
		w, err := s.resolveWallet(ctx, ownerID, walletID)
		if err != nil {
			return money.Money{}, err
		}
		txns, err := s.repo.TransactionsByWallet(ctx, walletID)
		if err != nil {
			return money.Money{}, err
		}
		sum, err := reconcile.Sum(w.Balance.Currency(), txns)
		if err != nil {
			return money.Money{}, err
		}
		if sum.MinorUnits() == w.Balance.MinorUnits() {
			return sum, nil
		}
		if err := s.writer.SaveWalletBalance(ctx, walletID, sum, w.Version); err != nil {
			if errors.Is(err, errs.ErrConcurrentModification) {
				lastErr = err
				continue
			}
			return money.Money{}, err
		}
		return sum, nil
	}
	return money.Money{}, lastErr
}

// apply runs the mutation atomically when the store supports it, otherwise
// transaction write first, wallet writes second.
func (s *service) apply(ctx context.Context, m Mutation) error {
	if aw, ok := s.writer.(AtomicWriter); ok {
		return aw.ApplyMutation(ctx, m)
	}
	switch {
	case m.Put != nil:
		if err := s.writer.PutTransaction(ctx, *m.Put); err != nil {
			return err
		}
	case m.DeleteID != nil:
		if err := s.writer.DeleteTransaction(ctx, m.OwnerID, *m.DeleteID); err != nil {
			return err
		}
	}
	for _, wc := range m.Wallets {
		if err := s.writer.SaveWalletBalance(ctx, wc.WalletID, wc.NewBalance, wc.ExpectedVersion); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) resolveWallet(ctx context.Context, ownerID string, walletID uuid.UUID) (wallet.Wallet, error) {
	w, err := s.repo.GetWallet(ctx, walletID)
	if err != nil {
		return wallet.Wallet{}, err
	}
	if w.OwnerID != ownerID {
		return wallet.Wallet{}, errs.ErrWalletNotOwned
	}
	return w, nil
}
