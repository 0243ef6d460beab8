package query

import (
	"context"
	"time"

	"github.com/spendware/walletd/internal/errs"
	"github.com/spendware/walletd/internal/money"
	"github.com/spendware/walletd/internal/wallet"
)

// Bucket is one calendar slot of a statistics summary. Empty slots carry zero
// amounts, never go missing.
type Bucket struct {
	Label   string
	Start   time.Time
	Income  money.Money
	Expense money.Money
}

// Summary aggregates an owner's transactions over one reporting period.
type Summary struct {
	From         time.Time
	To           time.Time
	Buckets      []Bucket
	TotalIncome  money.Money
	TotalExpense money.Money
}

var weekdayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var monthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Weekly aggregates the Monday-first week containing anchor, one bucket per
// weekday.
func (s *Service) Weekly(ctx context.Context, ownerID string, anchor time.Time) (Summary, error) {
	start := startOfWeek(anchor)
	end := start.AddDate(0, 0, 7)
	buckets := make([]Bucket, 7)
	for i := range buckets {
		buckets[i] = s.zeroBucket(weekdayLabels[i], start.AddDate(0, 0, i))
	}
	return s.aggregate(ctx, ownerID, start, end, buckets, func(t time.Time) int {
		return int(t.Sub(start).Hours() / 24)
	})
}

// Monthly aggregates the calendar month containing anchor, one bucket per day
// of month.
func (s *Service) Monthly(ctx context.Context, ownerID string, anchor time.Time) (Summary, error) {
	t := anchor.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	days := end.AddDate(0, 0, -1).Day()
	buckets := make([]Bucket, days)
	for i := range buckets {
		buckets[i] = s.zeroBucket(itoa(i+1), start.AddDate(0, 0, i))
	}
	return s.aggregate(ctx, ownerID, start, end, buckets, func(t time.Time) int {
		return t.Day() - 1
	})
}

// Yearly aggregates the calendar year containing anchor, one bucket per month.
func (s *Service) Yearly(ctx context.Context, ownerID string, anchor time.Time) (Summary, error) {
	start := time.Date(anchor.UTC().Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	buckets := make([]Bucket, 12)
	for i := range buckets {
		buckets[i] = s.zeroBucket(monthLabels[i], start.AddDate(0, i, 0))
	}
	return s.aggregate(ctx, ownerID, start, end, buckets, func(t time.Time) int {
		return int(t.Month()) - 1
	})
}

func (s *Service) zeroBucket(label string, start time.Time) Bucket {
	return Bucket{
		Label:   label,
		Start:   start,
		Income:  money.Zero(s.currency),
		Expense: money.Zero(s.currency),
	}
}

// aggregate queries [start, end) and folds each transaction into the bucket
// selected by idx on its user-chosen date.
func (s *Service) aggregate(ctx context.Context, ownerID string, start, end time.Time, buckets []Bucket, idx func(time.Time) int) (Summary, error) {
	if ownerID == "" {
		return Summary{}, errs.ErrInvalid
	}
	to := end.Add(-time.Nanosecond)
	txns, err := s.repo.ListTransactions(ctx, ownerID, nil, &start, &to)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{
		From:         start,
		To:           to,
		Buckets:      buckets,
		TotalIncome:  money.Zero(s.currency),
		TotalExpense: money.Zero(s.currency),
	}
	for _, t := range txns {
		i := idx(t.Date.UTC())
		if i < 0 || i >= len(sum.Buckets) {
			continue
		}
		if t.Direction == wallet.DirectionIncome {
			if v, err := sum.Buckets[i].Income.Add(t.Amount); err == nil {
				sum.Buckets[i].Income = v
			}
			if v, err := sum.TotalIncome.Add(t.Amount); err == nil {
				sum.TotalIncome = v
			}
		} else {
			if v, err := sum.Buckets[i].Expense.Add(t.Amount); err == nil {
				sum.Buckets[i].Expense = v
			}
			if v, err := sum.TotalExpense.Add(t.Amount); err == nil {
				sum.TotalExpense = v
			}
		}
	}
	return sum, nil
}

// startOfWeek returns midnight UTC of the Monday on or before t.
func startOfWeek(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
