package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/spendware/walletd/internal/errs"
	"github.com/spendware/walletd/internal/money"
	ledgersvc "github.com/spendware/walletd/internal/service/ledger"
	"github.com/spendware/walletd/internal/wallet"
)

const ctxKeyPostTransaction ctxKey = "validatedPostTransaction"
const ctxKeyListTransactions ctxKey = "validatedListTransactions"

// validatePostTransaction parses and validates the POST /transactions body and
// stores the ledger input in the request context for the handler to use.
func (s *Server) validatePostTransaction() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requireJSON(w, r) {
				return
			}
			var req postTransactionRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				badRequest(w, "invalid JSON: "+err.Error())
				return
			}
			if req.WalletID == uuid.Nil {
				badRequest(w, "wallet_id is required")
				return
			}
			dir := wallet.Direction(req.Direction)
			if !dir.Valid() {
				badRequest(w, "direction must be income or expense")
				return
			}
			amt, err := s.amountFromRequest(req.Amount, req.AmountMinor)
			if err != nil {
				writeDomainErr(w, err)
				return
			}
			in := ledgersvc.CreateInput{
				OwnerID:     owner(r),
				WalletID:    req.WalletID,
				Direction:   dir,
				Amount:      amt,
				Category:    req.Category,
				Description: req.Description,
				IconURL:     req.IconURL,
			}
			if req.Date != nil {
				in.Date = req.Date.UTC()
			}
			ctx := context.WithValue(r.Context(), ctxKeyPostTransaction, in)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validateListTransactions parses query params for GET /transactions.
func (s *Server) validateListTransactions() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			query := listTransactionsQuery{Search: q.Get("search")}
			if raw := q.Get("wallet_id"); raw != "" {
				id, err := uuid.Parse(raw)
				if err != nil {
					badRequest(w, "invalid wallet_id")
					return
				}
				query.WalletID = &id
			}
			var err error
			if query.From, err = parseTimeParam(q.Get("from")); err != nil {
				badRequest(w, "invalid from")
				return
			}
			if query.To, err = parseTimeParam(q.Get("to")); err != nil {
				badRequest(w, "invalid to")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyListTransactions, query)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseTimeParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	tt := t.UTC()
	return &tt, nil
}

// amountFromRequest accepts either integer minor units or user text; both
// must resolve to a strictly positive amount.
func (s *Server) amountFromRequest(text string, minor *int64) (money.Money, error) {
	if minor != nil {
		if *minor <= 0 {
			return money.Money{}, errs.ErrInvalidAmount
		}
		return money.FromMinorUnits(s.currency, *minor)
	}
	return money.ParsePositive(s.currency, text)
}
