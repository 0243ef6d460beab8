package wallet

import (
	"time"

	"github.com/google/uuid"

	"github.com/spendware/walletd/internal/money"
)

// Direction says whether a transaction increases or decreases a wallet balance.
type Direction string

const (
	// DirectionIncome increases the wallet balance.
	DirectionIncome Direction = "income"
	// DirectionExpense decreases the wallet balance.
	DirectionExpense Direction = "expense"
)

// Valid reports whether d is one of the two known directions.
func (d Direction) Valid() bool {
	return d == DirectionIncome || d == DirectionExpense
}

// User is the owner of wallets and transactions. The ID is the identity
// provider's UID, opaque to this service.
type User struct {
	ID       string
	Name     string
	Email    string
	ImageURL string
}

// Wallet is a named cash account with a cached running balance.
// Balance is only ever written through the reconciler or the recompute repair;
// rename and image updates must not touch it.
type Wallet struct {
	ID       uuid.UUID
	OwnerID  string
	Name     string
	Balance  money.Money
	ImageURL string
	// Version is an optimistic lock token bumped on every balance write.
	// A write carrying a stale version is rejected.
	Version int64
	Created time.Time
}

// Transaction is a single income or expense event against exactly one wallet.
type Transaction struct {
	ID        uuid.UUID
	OwnerID   string
	WalletID  uuid.UUID
	Direction Direction
	Category  string
	Amount    money.Money
	// Date is the user-chosen date used for reporting.
	Date time.Time
	// Created is the server-assigned timestamp used for ordering and sync.
	Created     time.Time
	Description string
	IconURL     string
}

// Signed returns the transaction amount with its balance effect applied:
// positive for income, negative for expense.
func (t Transaction) Signed() money.Money {
	if t.Direction == DirectionExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}
