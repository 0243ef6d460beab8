package httpapi

import (
	"encoding/json"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) postWallet(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	var req postWalletRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	created, err := s.wallets.Create(r.Context(), owner(r), req.Name, req.ImageURL)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toWalletResponse(created))
}

func (s *Server) listWallets(w http.ResponseWriter, r *http.Request) {
	ws, err := s.wallets.List(r.Context(), owner(r))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]walletResponse, 0, len(ws))
	for _, item := range ws {
		out = append(out, toWalletResponse(item))
	}
	toJSON(w, http.StatusOK, struct {
		Items []walletResponse `json:"items"`
	}{Items: out})
}

func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	got, err := s.wallets.Get(r.Context(), owner(r), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toWalletResponse(got))
}

func (s *Server) patchWallet(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req patchWalletRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.Name == nil && req.ImageURL == nil {
		badRequest(w, "nothing to update")
		return
	}
	uid := owner(r)
	got, err := s.wallets.Get(r.Context(), uid, id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if req.Name != nil {
		if got, err = s.wallets.Rename(r.Context(), uid, id, *req.Name); err != nil {
			writeDomainErr(w, err)
			return
		}
	}
	if req.ImageURL != nil {
		if got, err = s.wallets.SetImage(r.Context(), uid, id, *req.ImageURL); err != nil {
			writeDomainErr(w, err)
			return
		}
	}
	toJSON(w, http.StatusOK, toWalletResponse(got))
}

func (s *Server) deleteWallet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.wallets.Delete(r.Context(), owner(r), id); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) recomputeWallet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	balance, err := s.ledger.RecomputeWalletBalance(r.Context(), owner(r), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, recomputeResponse{
		WalletID:     id,
		BalanceMinor: balance.MinorUnits(),
		Balance:      balance.String(),
	})
}

// pathID parses the {id} route parameter, answering 400 on garbage.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
