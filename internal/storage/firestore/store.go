package firestore

// Package firestore persists wallets and transactions in Cloud Firestore.
// The Admin SDK exposes server-side transactions, so a ledger mutation writes
// the transaction document and the wallet balance atomically.

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/google/uuid"

	"github.com/spendware/walletd/internal/errs"
	"github.com/spendware/walletd/internal/money"
	ledgersvc "github.com/spendware/walletd/internal/service/ledger"
	"github.com/spendware/walletd/internal/wallet"
)

const (
	colWallets      = "wallets"
	colTransactions = "transactions"
	colUsers        = "users"
)

// Store wraps a Firestore client. All methods are safe for concurrent use.
type Store struct {
	client *firestore.Client
}

// Open builds the store from an initialized Firebase app handle.
func Open(ctx context.Context, app *firebase.App) (*Store, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return &Store{client: client}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error { return s.client.Close() }

// Ready runs a cheap single-document read to verify connectivity.
func (s *Store) Ready(ctx context.Context) error {
	_, err := s.client.Collection(colWallets).Limit(1).Documents(ctx).Next()
	if err != nil && err != iterator.Done {
		return mapErr(err)
	}
	return nil
}

// walletDoc is the Firestore shape of a wallet. Field names match the mobile
// clients' existing documents.
type walletDoc struct {
	OwnerID      string    `firestore:"uid"`
	Name         string    `firestore:"name"`
	BalanceMinor int64     `firestore:"amountMinor"`
	Currency     string    `firestore:"currency"`
	ImageURL     string    `firestore:"image,omitempty"`
	Version      int64     `firestore:"version"`
	Created      time.Time `firestore:"created"`
}

type txnDoc struct {
	OwnerID     string    `firestore:"uid"`
	WalletID    string    `firestore:"walletId"`
	Direction   string    `firestore:"type"`
	Category    string    `firestore:"category"`
	AmountMinor int64     `firestore:"amountMinor"`
	Currency    string    `firestore:"currency"`
	Date        time.Time `firestore:"date"`
	Created     time.Time `firestore:"created"`
	Description string    `firestore:"description,omitempty"`
	IconURL     string    `firestore:"image,omitempty"`
}

type userDoc struct {
	Name     string `firestore:"name,omitempty"`
	Email    string `firestore:"email,omitempty"`
	ImageURL string `firestore:"image,omitempty"`
}

func toWalletDoc(w wallet.Wallet) walletDoc {
	return walletDoc{
		OwnerID:      w.OwnerID,
		Name:         w.Name,
		BalanceMinor: w.Balance.MinorUnits(),
		Currency:     w.Balance.Currency(),
		ImageURL:     w.ImageURL,
		Version:      w.Version,
		Created:      w.Created,
	}
}

func (d walletDoc) toWallet(id string) (wallet.Wallet, error) {
	wid, err := uuid.Parse(id)
	if err != nil {
		return wallet.Wallet{}, fmt.Errorf("%w: wallet id %q", errs.ErrStoreUnavailable, id)
	}
	bal, err := money.FromMinorUnits(d.Currency, d.BalanceMinor)
	if err != nil {
		return wallet.Wallet{}, err
	}
	return wallet.Wallet{
		ID:       wid,
		OwnerID:  d.OwnerID,
		Name:     d.Name,
		Balance:  bal,
		ImageURL: d.ImageURL,
		Version:  d.Version,
		Created:  d.Created,
	}, nil
}

func toTxnDoc(t wallet.Transaction) txnDoc {
	return txnDoc{
		OwnerID:     t.OwnerID,
		WalletID:    t.WalletID.String(),
		Direction:   string(t.Direction),
		Category:    t.Category,
		AmountMinor: t.Amount.MinorUnits(),
		Currency:    t.Amount.Currency(),
		Date:        t.Date,
		Created:     t.Created,
		Description: t.Description,
		IconURL:     t.IconURL,
	}
}

func (d txnDoc) toTransaction(id string) (wallet.Transaction, error) {
	tid, err := uuid.Parse(id)
	if err != nil {
		return wallet.Transaction{}, fmt.Errorf("%w: transaction id %q", errs.ErrStoreUnavailable, id)
	}
	wid, err := uuid.Parse(d.WalletID)
	if err != nil {
		return wallet.Transaction{}, fmt.Errorf("%w: wallet id %q", errs.ErrStoreUnavailable, d.WalletID)
	}
	amt, err := money.FromMinorUnits(d.Currency, d.AmountMinor)
	if err != nil {
		return wallet.Transaction{}, err
	}
	return wallet.Transaction{
		ID:          tid,
		OwnerID:     d.OwnerID,
		WalletID:    wid,
		Direction:   wallet.Direction(d.Direction),
		Category:    d.Category,
		Amount:      amt,
		Date:        d.Date,
		Created:     d.Created,
		Description: d.Description,
		IconURL:     d.IconURL,
	}, nil
}

// --- Wallet reads ---

func (s *Store) GetWallet(ctx context.Context, walletID uuid.UUID) (wallet.Wallet, error) {
	snap, err := s.client.Collection(colWallets).Doc(walletID.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return wallet.Wallet{}, errs.ErrWalletNotFound
		}
		return wallet.Wallet{}, mapErr(err)
	}
	var d walletDoc
	if err := snap.DataTo(&d); err != nil {
		return wallet.Wallet{}, mapErr(err)
	}
	return d.toWallet(snap.Ref.ID)
}

func (s *Store) ListWallets(ctx context.Context, ownerID string) ([]wallet.Wallet, error) {
	iter := s.client.Collection(colWallets).
		Where("uid", "==", ownerID).
		OrderBy("created", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()
	out := make([]wallet.Wallet, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, mapErr(err)
		}
		var d walletDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, mapErr(err)
		}
		w, err := d.toWallet(snap.Ref.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// --- Wallet writes ---

func (s *Store) CreateWallet(ctx context.Context, w wallet.Wallet) error {
	_, err := s.client.Collection(colWallets).Doc(w.ID.String()).Set(ctx, toWalletDoc(w))
	return mapErr(err)
}

func (s *Store) SaveWalletMeta(ctx context.Context, walletID uuid.UUID, name, imageURL string) error {
	_, err := s.client.Collection(colWallets).Doc(walletID.String()).Update(ctx, []firestore.Update{
		{Path: "name", Value: name},
		{Path: "image", Value: imageURL},
	})
	if status.Code(err) == codes.NotFound {
		return errs.ErrWalletNotFound
	}
	return mapErr(err)
}

// SaveWalletBalance overwrites the cached balance inside a transaction so the
// version check and the write are atomic.
func (s *Store) SaveWalletBalance(ctx context.Context, walletID uuid.UUID, balance money.Money, expectedVersion int64) error {
	ref := s.client.Collection(colWallets).Doc(walletID.String())
	err := s.client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errs.ErrWalletNotFound
			}
			return err
		}
		var d walletDoc
		if err := snap.DataTo(&d); err != nil {
			return err
		}
		if d.Version != expectedVersion {
			return errs.ErrConcurrentModification
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "amountMinor", Value: balance.MinorUnits()},
			{Path: "version", Value: expectedVersion + 1},
		})
	})
	return mapKnown(err)
}

// DeleteWallet removes the wallet document and cascades to its transactions.
func (s *Store) DeleteWallet(ctx context.Context, ownerID string, walletID uuid.UUID) error {
	w, err := s.GetWallet(ctx, walletID)
	if err != nil {
		return err
	}
	if w.OwnerID != ownerID {
		return errs.ErrWalletNotOwned
	}
	iter := s.client.Collection(colTransactions).
		Where("walletId", "==", walletID.String()).
		Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return mapErr(err)
		}
		if _, err := snap.Ref.Delete(ctx); err != nil {
			return mapErr(err)
		}
	}
	_, err = s.client.Collection(colWallets).Doc(walletID.String()).Delete(ctx)
	return mapErr(err)
}

// --- Transaction reads ---

func (s *Store) GetTransaction(ctx context.Context, ownerID string, id uuid.UUID) (wallet.Transaction, error) {
	snap, err := s.client.Collection(colTransactions).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return wallet.Transaction{}, errs.ErrTransactionNotFound
		}
		return wallet.Transaction{}, mapErr(err)
	}
	var d txnDoc
	if err := snap.DataTo(&d); err != nil {
		return wallet.Transaction{}, mapErr(err)
	}
	if d.OwnerID != ownerID {
		return wallet.Transaction{}, errs.ErrTransactionNotFound
	}
	return d.toTransaction(snap.Ref.ID)
}

func (s *Store) TransactionsByWallet(ctx context.Context, walletID uuid.UUID) ([]wallet.Transaction, error) {
	q := s.client.Collection(colTransactions).Where("walletId", "==", walletID.String())
	return s.collectTransactions(ctx, q)
}

// ListTransactions pushes owner and date-window filters into the Firestore
// query, newest date first.
func (s *Store) ListTransactions(ctx context.Context, ownerID string, walletID *uuid.UUID, from, to *time.Time) ([]wallet.Transaction, error) {
	q := s.client.Collection(colTransactions).Where("uid", "==", ownerID)
	if walletID != nil {
		q = q.Where("walletId", "==", walletID.String())
	}
	if from != nil {
		q = q.Where("date", ">=", *from)
	}
	if to != nil {
		q = q.Where("date", "<=", *to)
	}
	q = q.OrderBy("date", firestore.Desc)
	return s.collectTransactions(ctx, q)
}

func (s *Store) collectTransactions(ctx context.Context, q firestore.Query) ([]wallet.Transaction, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()
	out := make([]wallet.Transaction, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, mapErr(err)
		}
		var d txnDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, mapErr(err)
		}
		t, err := d.toTransaction(snap.Ref.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// --- Transaction writes ---

func (s *Store) PutTransaction(ctx context.Context, t wallet.Transaction) error {
	_, err := s.client.Collection(colTransactions).Doc(t.ID.String()).Set(ctx, toTxnDoc(t))
	return mapErr(err)
}

func (s *Store) DeleteTransaction(ctx context.Context, ownerID string, id uuid.UUID) error {
	if _, err := s.GetTransaction(ctx, ownerID, id); err != nil {
		return err
	}
	_, err := s.client.Collection(colTransactions).Doc(id.String()).Delete(ctx)
	return mapErr(err)
}

// ApplyMutation writes the transaction document and every wallet balance in
// one Firestore transaction. Reads run before writes as the SDK requires.
func (s *Store) ApplyMutation(ctx context.Context, m ledgersvc.Mutation) error {
	err := s.client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		type pendingWallet struct {
			ref     *firestore.DocumentRef
			balance int64
			version int64
		}
		pending := make([]pendingWallet, 0, len(m.Wallets))
		for _, wc := range m.Wallets {
			ref := s.client.Collection(colWallets).Doc(wc.WalletID.String())
			snap, err := tx.Get(ref)
			if err != nil {
				if status.Code(err) == codes.NotFound {
					return errs.ErrWalletNotFound
				}
				return err
			}
			var d walletDoc
			if err := snap.DataTo(&d); err != nil {
				return err
			}
			if d.Version != wc.ExpectedVersion {
				return errs.ErrConcurrentModification
			}
			pending = append(pending, pendingWallet{
				ref:     ref,
				balance: wc.NewBalance.MinorUnits(),
				version: wc.ExpectedVersion + 1,
			})
		}
		switch {
		case m.Put != nil:
			ref := s.client.Collection(colTransactions).Doc(m.Put.ID.String())
			if err := tx.Set(ref, toTxnDoc(*m.Put)); err != nil {
				return err
			}
		case m.DeleteID != nil:
			ref := s.client.Collection(colTransactions).Doc(m.DeleteID.String())
			if err := tx.Delete(ref); err != nil {
				return err
			}
		}
		for _, p := range pending {
			if err := tx.Update(p.ref, []firestore.Update{
				{Path: "amountMinor", Value: p.balance},
				{Path: "version", Value: p.version},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	return mapKnown(err)
}

// --- Users ---

func (s *Store) GetUser(ctx context.Context, id string) (wallet.User, error) {
	snap, err := s.client.Collection(colUsers).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return wallet.User{}, errs.ErrNotFound
		}
		return wallet.User{}, mapErr(err)
	}
	var d userDoc
	if err := snap.DataTo(&d); err != nil {
		return wallet.User{}, mapErr(err)
	}
	return wallet.User{ID: snap.Ref.ID, Name: d.Name, Email: d.Email, ImageURL: d.ImageURL}, nil
}

func (s *Store) PutUser(ctx context.Context, u wallet.User) error {
	_, err := s.client.Collection(colUsers).Doc(u.ID).Set(ctx, userDoc{
		Name:     u.Name,
		Email:    u.Email,
		ImageURL: u.ImageURL,
	})
	return mapErr(err)
}

// mapErr wraps backend failures as ErrStoreUnavailable so callers see one
// retryable error kind.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
}

// mapKnown passes through sentinel errors raised inside transactions and
// wraps everything else.
func mapKnown(err error) error {
	switch err {
	case nil:
		return nil
	case errs.ErrWalletNotFound, errs.ErrConcurrentModification:
		return err
	}
	return mapErr(err)
}
