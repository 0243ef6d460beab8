// Package reconcile implements the pure balance arithmetic behind every
// transaction mutation. Given the current wallet balance and the mutation, it
// computes the new balance or rejects the mutation. No I/O, fully
// deterministic; the service layer decides what to persist.
package reconcile

import (
	"github.com/spendware/walletd/internal/errs"
	"github.com/spendware/walletd/internal/money"
	"github.com/spendware/walletd/internal/wallet"
)

// Operation is one of Create, Update or Delete.
type Operation interface {
	apply(current money.Money) (money.Money, error)
}

// Create applies a new transaction to the balance. An expense larger than the
// current balance is rejected with ErrInsufficientFunds.
type Create struct {
	Direction wallet.Direction
	Amount    money.Money
}

// Update reverses the old effect and applies the new one as a single logical
// step, so direction flips and amount changes never transiently reject a
// valid edit. Rejected only when the final balance is negative and the new
// direction is expense.
type Update struct {
	OldDirection wallet.Direction
	OldAmount    money.Money
	NewDirection wallet.Direction
	NewAmount    money.Money
}

// Delete reverses the original effect of a transaction. Never rejected:
// removing a transaction cannot cause insufficient funds, and a negative
// balance left behind by looser prior edits stays repairable by recompute.
type Delete struct {
	Direction wallet.Direction
	Amount    money.Money
}

// ComputeNewBalance returns the wallet balance after applying op to current.
func ComputeNewBalance(current money.Money, op Operation) (money.Money, error) {
	return op.apply(current)
}

func signed(d wallet.Direction, amount money.Money) money.Money {
	if d == wallet.DirectionExpense {
		return amount.Neg()
	}
	return amount
}

func (c Create) apply(current money.Money) (money.Money, error) {
	next, err := current.Add(signed(c.Direction, c.Amount))
	if err != nil {
		return money.Money{}, err
	}
	if c.Direction == wallet.DirectionExpense && next.IsNegative() {
		return money.Money{}, errs.ErrInsufficientFunds
	}
	return next, nil
}

func (u Update) apply(current money.Money) (money.Money, error) {
	reversed, err := current.Sub(signed(u.OldDirection, u.OldAmount))
	if err != nil {
		return money.Money{}, err
	}
	next, err := reversed.Add(signed(u.NewDirection, u.NewAmount))
	if err != nil {
		return money.Money{}, err
	}
	if u.NewDirection == wallet.DirectionExpense && next.IsNegative() {
		return money.Money{}, errs.ErrInsufficientFunds
	}
	return next, nil
}

func (d Delete) apply(current money.Money) (money.Money, error) {
	return current.Sub(signed(d.Direction, d.Amount))
}

// Sum folds the signed amounts of a transaction set into a balance, starting
// from zero in the given currency. This is the recompute primitive: the
// transaction log is the source of truth, the wallet balance is a cache.
func Sum(currency string, txns []wallet.Transaction) (money.Money, error) {
	total := money.Zero(currency)
	for _, t := range txns {
		v, err := total.Add(t.Signed())
		if err != nil {
			return money.Money{}, err
		}
		total = v
	}
	return total, nil
}
