package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/spendware/walletd/internal/query"
	"github.com/spendware/walletd/internal/wallet"
)

// Wallets

type postWalletRequest struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

type patchWalletRequest struct {
	Name     *string `json:"name,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
}

type walletResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	BalanceMinor int64     `json:"balance_minor"`
	Balance      string    `json:"balance"`
	Currency     string    `json:"currency"`
	ImageURL     string    `json:"image_url,omitempty"`
	Created      time.Time `json:"created"`
}

func toWalletResponse(w wallet.Wallet) walletResponse {
	return walletResponse{
		ID:           w.ID,
		Name:         w.Name,
		BalanceMinor: w.Balance.MinorUnits(),
		Balance:      w.Balance.String(),
		Currency:     w.Balance.Currency(),
		ImageURL:     w.ImageURL,
		Created:      w.Created,
	}
}

type recomputeResponse struct {
	WalletID     uuid.UUID `json:"wallet_id"`
	BalanceMinor int64     `json:"balance_minor"`
	Balance      string    `json:"balance"`
}

// Transactions

type postTransactionRequest struct {
	WalletID    uuid.UUID  `json:"wallet_id"`
	Direction   string     `json:"direction"`
	Category    string     `json:"category,omitempty"`
	Amount      string     `json:"amount,omitempty"`
	AmountMinor *int64     `json:"amount_minor,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Description string     `json:"description,omitempty"`
	IconURL     string     `json:"icon_url,omitempty"`
}

type patchTransactionRequest struct {
	WalletID    *uuid.UUID `json:"wallet_id,omitempty"`
	Direction   *string    `json:"direction,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Amount      *string    `json:"amount,omitempty"`
	AmountMinor *int64     `json:"amount_minor,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Description *string    `json:"description,omitempty"`
	IconURL     *string    `json:"icon_url,omitempty"`
}

type transactionResponse struct {
	ID            uuid.UUID `json:"id"`
	WalletID      uuid.UUID `json:"wallet_id"`
	Direction     string    `json:"direction"`
	Category      string    `json:"category"`
	CategoryLabel string    `json:"category_label"`
	AmountMinor   int64     `json:"amount_minor"`
	Amount        string    `json:"amount"`
	Date          time.Time `json:"date"`
	Created       time.Time `json:"created"`
	Description   string    `json:"description,omitempty"`
	IconURL       string    `json:"icon_url,omitempty"`
}

func toTransactionResponse(t wallet.Transaction) transactionResponse {
	return transactionResponse{
		ID:            t.ID,
		WalletID:      t.WalletID,
		Direction:     string(t.Direction),
		Category:      t.Category,
		CategoryLabel: wallet.CategoryLabel(t.Direction, t.Category),
		AmountMinor:   t.Amount.MinorUnits(),
		Amount:        t.Amount.String(),
		Date:          t.Date,
		Created:       t.Created,
		Description:   t.Description,
		IconURL:       t.IconURL,
	}
}

type listTransactionsResponse struct {
	Items []transactionResponse `json:"items"`
}

func toListTransactionsResponse(txns []wallet.Transaction) listTransactionsResponse {
	out := listTransactionsResponse{Items: make([]transactionResponse, 0, len(txns))}
	for _, t := range txns {
		out.Items = append(out.Items, toTransactionResponse(t))
	}
	return out
}

// listTransactionsQuery holds validated query params for GET /transactions.
type listTransactionsQuery struct {
	WalletID *uuid.UUID
	From     *time.Time
	To       *time.Time
	Search   string
}

// Statistics

type statsBucket struct {
	Label        string    `json:"label"`
	Start        time.Time `json:"start"`
	IncomeMinor  int64     `json:"income_minor"`
	ExpenseMinor int64     `json:"expense_minor"`
	Income       string    `json:"income"`
	Expense      string    `json:"expense"`
}

type statsResponse struct {
	From              time.Time     `json:"from"`
	To                time.Time     `json:"to"`
	Buckets           []statsBucket `json:"buckets"`
	TotalIncomeMinor  int64         `json:"total_income_minor"`
	TotalExpenseMinor int64         `json:"total_expense_minor"`
}

func toStatsResponse(sum query.Summary) statsResponse {
	out := statsResponse{
		From:              sum.From,
		To:                sum.To,
		Buckets:           make([]statsBucket, 0, len(sum.Buckets)),
		TotalIncomeMinor:  sum.TotalIncome.MinorUnits(),
		TotalExpenseMinor: sum.TotalExpense.MinorUnits(),
	}
	for _, b := range sum.Buckets {
		out.Buckets = append(out.Buckets, statsBucket{
			Label:        b.Label,
			Start:        b.Start,
			IncomeMinor:  b.Income.MinorUnits(),
			ExpenseMinor: b.Expense.MinorUnits(),
			Income:       b.Income.String(),
			Expense:      b.Expense.String(),
		})
	}
	return out
}

// Identity / profile

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type registerResponse struct {
	UserID string `json:"user_id"`
}

type profileResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type patchProfileRequest struct {
	Name     *string `json:"name,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
}

// Media

type uploadResponse struct {
	URL string `json:"url"`
}

// Categories

type categoriesResponse struct {
	Expense []wallet.Category `json:"expense"`
	Income  []wallet.Category `json:"income"`
}
