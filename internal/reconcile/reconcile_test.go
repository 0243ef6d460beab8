package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendware/walletd/internal/errs"
	"github.com/spendware/walletd/internal/money"
	"github.com/spendware/walletd/internal/wallet"
)

func usd(t *testing.T, units int64) money.Money {
	t.Helper()
	m, err := money.FromMinorUnits("USD", units)
	require.NoError(t, err)
	return m
}

func TestCreate_IncomeAndExpense(t *testing.T) {
	bal, err := ComputeNewBalance(usd(t, 10000), Create{Direction: wallet.DirectionIncome, Amount: usd(t, 2500)})
	require.NoError(t, err)
	assert.Equal(t, int64(12500), bal.MinorUnits())

	bal, err = ComputeNewBalance(bal, Create{Direction: wallet.DirectionExpense, Amount: usd(t, 500)})
	require.NoError(t, err)
	assert.Equal(t, int64(12000), bal.MinorUnits())
}

func TestCreate_InsufficientFunds(t *testing.T) {
	// Spending 150 from a balance of 100 must be rejected and leave the
	// balance untouched.
	_, err := ComputeNewBalance(usd(t, 10000), Create{Direction: wallet.DirectionExpense, Amount: usd(t, 15000)})
	assert.ErrorIs(t, err, errs.ErrInsufficientFunds)

	// Spending the exact balance is fine; zero is not negative.
	bal, err := ComputeNewBalance(usd(t, 10000), Create{Direction: wallet.DirectionExpense, Amount: usd(t, 10000)})
	require.NoError(t, err)
	assert.True(t, bal.IsZero())
}

func TestUpdate_AmountEdit(t *testing.T) {
	// Balance 500 includes an expense of 200; raising it to 350 lands at 350.
	bal, err := ComputeNewBalance(usd(t, 50000), Update{
		OldDirection: wallet.DirectionExpense,
		OldAmount:    usd(t, 20000),
		NewDirection: wallet.DirectionExpense,
		NewAmount:    usd(t, 35000),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(35000), bal.MinorUnits())
}

func TestUpdate_DirectionFlip(t *testing.T) {
	// Balance 300 includes an income of 50; flipping it to an expense of 50
	// removes the credit and applies the debit in one step: 300-50-50 = 200.
	bal, err := ComputeNewBalance(usd(t, 30000), Update{
		OldDirection: wallet.DirectionIncome,
		OldAmount:    usd(t, 5000),
		NewDirection: wallet.DirectionExpense,
		NewAmount:    usd(t, 5000),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(20000), bal.MinorUnits())
}

func TestUpdate_SingleStepNoTransientReject(t *testing.T) {
	// Balance 100 holds an income of 500. Reversing it alone would dip to
	// -400, but shrinking it to income 450 must still succeed at 50.
	bal, err := ComputeNewBalance(usd(t, 10000), Update{
		OldDirection: wallet.DirectionIncome,
		OldAmount:    usd(t, 50000),
		NewDirection: wallet.DirectionIncome,
		NewAmount:    usd(t, 45000),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), bal.MinorUnits())
}

func TestUpdate_RejectsNegativeExpenseResult(t *testing.T) {
	_, err := ComputeNewBalance(usd(t, 10000), Update{
		OldDirection: wallet.DirectionExpense,
		OldAmount:    usd(t, 2000),
		NewDirection: wallet.DirectionExpense,
		NewAmount:    usd(t, 13000),
	})
	assert.ErrorIs(t, err, errs.ErrInsufficientFunds)
}

func TestDelete_ReversesEffect(t *testing.T) {
	// Balance 300 after deleting an income of 100 lands at 200.
	bal, err := ComputeNewBalance(usd(t, 30000), Delete{Direction: wallet.DirectionIncome, Amount: usd(t, 10000)})
	require.NoError(t, err)
	assert.Equal(t, int64(20000), bal.MinorUnits())

	// Deleting an expense credits the balance back.
	bal, err = ComputeNewBalance(usd(t, 30000), Delete{Direction: wallet.DirectionExpense, Amount: usd(t, 10000)})
	require.NoError(t, err)
	assert.Equal(t, int64(40000), bal.MinorUnits())
}

func TestDelete_NeverRejected(t *testing.T) {
	// Deleting an income can leave the cache negative; that state is
	// repairable by recompute, so the delete goes through.
	bal, err := ComputeNewBalance(usd(t, 5000), Delete{Direction: wallet.DirectionIncome, Amount: usd(t, 10000)})
	require.NoError(t, err)
	assert.Equal(t, int64(-5000), bal.MinorUnits())
}

func TestSum_FoldsSignedAmounts(t *testing.T) {
	txns := []wallet.Transaction{
		{Direction: wallet.DirectionIncome, Amount: usd(t, 50000)},
		{Direction: wallet.DirectionExpense, Amount: usd(t, 12050)},
		{Direction: wallet.DirectionIncome, Amount: usd(t, 100)},
	}
	total, err := Sum("USD", txns)
	require.NoError(t, err)
	assert.Equal(t, int64(38050), total.MinorUnits())

	empty, err := Sum("USD", nil)
	require.NoError(t, err)
	assert.True(t, empty.IsZero())
}
