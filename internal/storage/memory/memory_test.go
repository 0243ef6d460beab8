package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/spendware/walletd/internal/errs"
	"github.com/spendware/walletd/internal/money"
	"github.com/spendware/walletd/internal/wallet"
)

const owner = "uid-1"

func seedWallet(s *Store, balanceMinor int64) wallet.Wallet {
	w := wallet.Wallet{
		ID:      uuid.New(),
		OwnerID: owner,
		Name:    "Cash",
		Balance: money.MustFromMinorUnits("USD", balanceMinor),
		Created: time.Now().UTC(),
	}
	s.SeedWallet(w)
	return w
}

func TestSaveWalletBalance_VersionGuard(t *testing.T) {
	s := New()
	ctx := context.Background()
	w := seedWallet(s, 1000)

	if err := s.SaveWalletBalance(ctx, w.ID, money.MustFromMinorUnits("USD", 2000), 0); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.GetWallet(ctx, w.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Version != 1 {
		t.Fatalf("version = %d, want 1", got.Version)
	}
	if got.Balance.MinorUnits() != 2000 {
		t.Fatalf("balance = %d, want 2000", got.Balance.MinorUnits())
	}

	// Replay with the stale version fails.
	if err := s.SaveWalletBalance(ctx, w.ID, money.MustFromMinorUnits("USD", 3000), 0); !errors.Is(err, errs.ErrConcurrentModification) {
		t.Fatalf("stale save err = %v, want ErrConcurrentModification", err)
	}
	if err := s.SaveWalletBalance(ctx, uuid.New(), money.Zero("USD"), 0); !errors.Is(err, errs.ErrWalletNotFound) {
		t.Fatalf("missing wallet err = %v, want ErrWalletNotFound", err)
	}
}

func TestFailNextWalletSave_OneShot(t *testing.T) {
	s := New()
	ctx := context.Background()
	w := seedWallet(s, 1000)

	s.FailNextWalletSave()
	if err := s.SaveWalletBalance(ctx, w.ID, money.Zero("USD"), 0); !errors.Is(err, errs.ErrStoreUnavailable) {
		t.Fatalf("armed save err = %v, want ErrStoreUnavailable", err)
	}
	if err := s.SaveWalletBalance(ctx, w.ID, money.Zero("USD"), 0); err != nil {
		t.Fatalf("second save should succeed: %v", err)
	}
}

func TestDeleteWallet_CascadeAndOwnership(t *testing.T) {
	s := New()
	ctx := context.Background()
	w := seedWallet(s, 0)

	txn := wallet.Transaction{
		ID:        uuid.New(),
		OwnerID:   owner,
		WalletID:  w.ID,
		Direction: wallet.DirectionExpense,
		Category:  "food",
		Amount:    money.MustFromMinorUnits("USD", 100),
		Date:      time.Now().UTC(),
	}
	if err := s.PutTransaction(ctx, txn); err != nil {
		t.Fatalf("put txn: %v", err)
	}

	if err := s.DeleteWallet(ctx, "uid-2", w.ID); !errors.Is(err, errs.ErrWalletNotOwned) {
		t.Fatalf("foreign delete err = %v, want ErrWalletNotOwned", err)
	}
	if err := s.DeleteWallet(ctx, owner, w.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetTransaction(ctx, owner, txn.ID); !errors.Is(err, errs.ErrTransactionNotFound) {
		t.Fatalf("cascade missed transaction: %v", err)
	}
}

func TestListTransactions_Filters(t *testing.T) {
	s := New()
	ctx := context.Background()
	w := seedWallet(s, 0)
	other := seedWallet(s, 0)

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	put := func(wid uuid.UUID, day int) uuid.UUID {
		id := uuid.New()
		_ = s.PutTransaction(ctx, wallet.Transaction{
			ID:        id,
			OwnerID:   owner,
			WalletID:  wid,
			Direction: wallet.DirectionExpense,
			Category:  "others",
			Amount:    money.MustFromMinorUnits("USD", 100),
			Date:      base.AddDate(0, 0, day),
		})
		return id
	}
	a := put(w.ID, 0)
	b := put(w.ID, 2)
	put(other.ID, 1)

	got, err := s.ListTransactions(ctx, owner, &w.ID, nil, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// Newest date first.
	if got[0].ID != b || got[1].ID != a {
		t.Fatal("wrong order")
	}

	from := base.AddDate(0, 0, 1)
	to := base.AddDate(0, 0, 3)
	got, err = s.ListTransactions(ctx, owner, nil, &from, &to)
	if err != nil {
		t.Fatalf("list window: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("window len = %d, want 2", len(got))
	}

	if got, _ := s.ListTransactions(ctx, "uid-2", nil, nil, nil); len(got) != 0 {
		t.Fatalf("foreign owner sees %d transactions", len(got))
	}
}

func TestGetTransaction_OwnerScoped(t *testing.T) {
	s := New()
	ctx := context.Background()
	w := seedWallet(s, 0)

	txn := wallet.Transaction{
		ID:        uuid.New(),
		OwnerID:   owner,
		WalletID:  w.ID,
		Direction: wallet.DirectionIncome,
		Category:  "salary",
		Amount:    money.MustFromMinorUnits("USD", 100),
		Date:      time.Now().UTC(),
	}
	if err := s.PutTransaction(ctx, txn); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := s.GetTransaction(ctx, "uid-2", txn.ID); !errors.Is(err, errs.ErrTransactionNotFound) {
		t.Fatalf("foreign get err = %v, want ErrTransactionNotFound", err)
	}
}

func TestWatch_FiresPerKindAndOwner(t *testing.T) {
	s := New()
	ctx := context.Background()
	w := seedWallet(s, 0)

	walletEvents := make(chan struct{}, 8)
	cancel, err := s.Watch(ctx, owner, "wallets", func() { walletEvents <- struct{}{} })
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer cancel()

	txnEvents := make(chan struct{}, 8)
	cancelTxns, err := s.Watch(ctx, owner, "transactions", func() { txnEvents <- struct{}{} })
	if err != nil {
		t.Fatalf("watch txns: %v", err)
	}
	defer cancelTxns()

	if err := s.SaveWalletBalance(ctx, w.ID, money.MustFromMinorUnits("USD", 100), 0); err != nil {
		t.Fatalf("save: %v", err)
	}
	select {
	case <-walletEvents:
	case <-time.After(2 * time.Second):
		t.Fatal("no wallet event after balance write")
	}
	select {
	case <-txnEvents:
		t.Fatal("transaction subscriber notified by wallet write")
	case <-time.After(50 * time.Millisecond):
	}

	if _, err := s.Watch(ctx, owner, "everything", func() {}); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("bad kind err = %v, want ErrInvalid", err)
	}
}

func TestWatch_CancelStopsDelivery(t *testing.T) {
	s := New()
	ctx := context.Background()
	w := seedWallet(s, 0)

	events := make(chan struct{}, 8)
	cancel, err := s.Watch(ctx, owner, "wallets", func() { events <- struct{}{} })
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	cancel()

	if err := s.SaveWalletBalance(ctx, w.ID, money.MustFromMinorUnits("USD", 100), 0); err != nil {
		t.Fatalf("save: %v", err)
	}
	select {
	case <-events:
		t.Fatal("cancelled subscriber still notified")
	case <-time.After(50 * time.Millisecond):
	}
}
