package query

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendware/walletd/internal/money"
	"github.com/spendware/walletd/internal/storage/memory"
	"github.com/spendware/walletd/internal/wallet"
)

const owner = "uid-1"

func seedTxn(t *testing.T, store *memory.Store, walletID uuid.UUID, d wallet.Direction, minor int64, date time.Time) {
	t.Helper()
	err := store.PutTransaction(context.Background(), wallet.Transaction{
		ID:        uuid.New(),
		OwnerID:   owner,
		WalletID:  walletID,
		Direction: d,
		Category:  "others",
		Amount:    money.MustFromMinorUnits("USD", minor),
		Date:      date,
	})
	require.NoError(t, err)
}

func TestWeekly_MondayFirstBuckets(t *testing.T) {
	store := memory.New()
	svc := New(store, store, "USD")
	wid := uuid.New()

	// Wednesday 2024-06-12. Its week runs Mon 2024-06-10 .. Sun 2024-06-16.
	anchor := time.Date(2024, 6, 12, 15, 30, 0, 0, time.UTC)
	seedTxn(t, store, wid, wallet.DirectionIncome, 50000, time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC))  // Mon
	seedTxn(t, store, wid, wallet.DirectionExpense, 1200, time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)) // Wed
	seedTxn(t, store, wid, wallet.DirectionExpense, 800, time.Date(2024, 6, 16, 23, 0, 0, 0, time.UTC))  // Sun
	// Outside the week on both sides.
	seedTxn(t, store, wid, wallet.DirectionExpense, 9999, time.Date(2024, 6, 9, 12, 0, 0, 0, time.UTC))
	seedTxn(t, store, wid, wallet.DirectionExpense, 9999, time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC))

	sum, err := svc.Weekly(context.Background(), owner, anchor)
	require.NoError(t, err)

	require.Len(t, sum.Buckets, 7)
	assert.Equal(t, "Mon", sum.Buckets[0].Label)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), sum.Buckets[0].Start)
	assert.Equal(t, int64(50000), sum.Buckets[0].Income.MinorUnits())
	assert.Equal(t, int64(1200), sum.Buckets[2].Expense.MinorUnits())
	assert.Equal(t, int64(800), sum.Buckets[6].Expense.MinorUnits())

	// Days without transactions report explicit zeros.
	assert.True(t, sum.Buckets[1].Income.IsZero())
	assert.True(t, sum.Buckets[1].Expense.IsZero())

	assert.Equal(t, int64(50000), sum.TotalIncome.MinorUnits())
	assert.Equal(t, int64(2000), sum.TotalExpense.MinorUnits())
}

func TestWeekly_AnchorOnMondayAndSunday(t *testing.T) {
	store := memory.New()
	svc := New(store, store, "USD")

	mon := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	sun := time.Date(2024, 6, 16, 23, 59, 0, 0, time.UTC)

	sumMon, err := svc.Weekly(context.Background(), owner, mon)
	require.NoError(t, err)
	sumSun, err := svc.Weekly(context.Background(), owner, sun)
	require.NoError(t, err)

	// Both anchors land in the same Monday-first week.
	assert.Equal(t, sumMon.From, sumSun.From)
	assert.Equal(t, mon, sumMon.From)
}

func TestMonthly_BucketPerDay(t *testing.T) {
	store := memory.New()
	svc := New(store, store, "USD")
	wid := uuid.New()

	seedTxn(t, store, wid, wallet.DirectionExpense, 1500, time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC))
	seedTxn(t, store, wid, wallet.DirectionExpense, 2500, time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC))

	sum, err := svc.Monthly(context.Background(), owner, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// 2024 is a leap year.
	require.Len(t, sum.Buckets, 29)
	assert.Equal(t, "1", sum.Buckets[0].Label)
	assert.Equal(t, int64(1500), sum.Buckets[0].Expense.MinorUnits())
	assert.Equal(t, int64(2500), sum.Buckets[28].Expense.MinorUnits())
	assert.Equal(t, int64(4000), sum.TotalExpense.MinorUnits())
}

func TestYearly_BucketPerMonth(t *testing.T) {
	store := memory.New()
	svc := New(store, store, "USD")
	wid := uuid.New()

	seedTxn(t, store, wid, wallet.DirectionIncome, 300000, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	seedTxn(t, store, wid, wallet.DirectionIncome, 300000, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC))
	seedTxn(t, store, wid, wallet.DirectionExpense, 120000, time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC))

	sum, err := svc.Yearly(context.Background(), owner, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, sum.Buckets, 12)
	assert.Equal(t, "Jan", sum.Buckets[0].Label)
	assert.Equal(t, int64(300000), sum.Buckets[0].Income.MinorUnits())
	assert.Equal(t, int64(120000), sum.Buckets[6].Expense.MinorUnits())
	assert.Equal(t, int64(300000), sum.Buckets[11].Income.MinorUnits())
	assert.Equal(t, int64(600000), sum.TotalIncome.MinorUnits())
	assert.Equal(t, int64(120000), sum.TotalExpense.MinorUnits())
}
