package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/spendware/walletd/internal/errs"
	"github.com/spendware/walletd/internal/wallet"
)

// register creates an account with the identity provider and seeds the user's
// profile document.
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if s.provider == nil {
		writeErr(w, http.StatusServiceUnavailable, "registration not configured", "registration_unconfigured")
		return
	}
	if !requireJSON(w, r) {
		return
	}
	var req registerRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		badRequest(w, "email and password are required")
		return
	}
	uid, err := s.provider.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if s.users != nil {
		_ = s.users.PutUser(r.Context(), wallet.User{ID: uid, Name: req.Name, Email: req.Email})
	}
	toJSON(w, http.StatusCreated, registerResponse{UserID: uid})
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	if s.users == nil {
		writeErr(w, http.StatusNotImplemented, "profiles not supported by this store", "not_supported")
		return
	}
	uid := owner(r)
	u, err := s.users.GetUser(r.Context(), uid)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			// Profile document is created lazily; an empty one is valid.
			toJSON(w, http.StatusOK, profileResponse{ID: uid})
			return
		}
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, profileResponse{ID: u.ID, Name: u.Name, Email: u.Email, ImageURL: u.ImageURL})
}

func (s *Server) patchProfile(w http.ResponseWriter, r *http.Request) {
	if s.users == nil {
		writeErr(w, http.StatusNotImplemented, "profiles not supported by this store", "not_supported")
		return
	}
	if !requireJSON(w, r) {
		return
	}
	var req patchProfileRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	uid := owner(r)
	u, err := s.users.GetUser(r.Context(), uid)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		writeDomainErr(w, err)
		return
	}
	u.ID = uid
	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.ImageURL != nil {
		u.ImageURL = *req.ImageURL
	}
	if err := s.users.PutUser(r.Context(), u); err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, profileResponse{ID: u.ID, Name: u.Name, Email: u.Email, ImageURL: u.ImageURL})
}
