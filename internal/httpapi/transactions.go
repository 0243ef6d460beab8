package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/spendware/walletd/internal/query"
	ledgersvc "github.com/spendware/walletd/internal/service/ledger"
	"github.com/spendware/walletd/internal/wallet"
)

func (s *Server) postTransaction(w http.ResponseWriter, r *http.Request) {
	in, ok := r.Context().Value(ctxKeyPostTransaction).(ledgersvc.CreateInput)
	if !ok {
		writeErr(w, http.StatusInternalServerError, "internal error", "internal")
		return
	}
	created, err := s.ledger.CreateTransaction(r.Context(), in)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	q, ok := r.Context().Value(ctxKeyListTransactions).(listTransactionsQuery)
	if !ok {
		writeErr(w, http.StatusInternalServerError, "internal error", "internal")
		return
	}
	txns, err := s.queries.ListTransactions(r.Context(), owner(r), query.Filter{
		WalletID: q.WalletID,
		From:     q.From,
		To:       q.To,
		Search:   q.Search,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toListTransactionsResponse(txns))
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	t, err := s.store.GetTransaction(r.Context(), owner(r), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) patchTransaction(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req patchTransactionRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}

	p := ledgersvc.Patch{
		WalletID:    req.WalletID,
		Category:    req.Category,
		Description: req.Description,
		IconURL:     req.IconURL,
	}
	if req.Direction != nil {
		dir := wallet.Direction(*req.Direction)
		if !dir.Valid() {
			badRequest(w, "direction must be income or expense")
			return
		}
		p.Direction = &dir
	}
	if req.Amount != nil || req.AmountMinor != nil {
		var text string
		if req.Amount != nil {
			text = *req.Amount
		}
		amt, err := s.amountFromRequest(text, req.AmountMinor)
		if err != nil {
			writeDomainErr(w, err)
			return
		}
		p.Amount = &amt
	}
	if req.Date != nil {
		d := req.Date.UTC()
		p.Date = &d
	}

	updated, err := s.ledger.UpdateTransaction(r.Context(), owner(r), id, p)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toTransactionResponse(updated))
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.ledger.DeleteTransaction(r.Context(), owner(r), id); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
