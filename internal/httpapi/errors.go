package httpapi

import (
	"errors"
	"net/http"

	"github.com/spendware/walletd/internal/errs"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) { writeErr(w, http.StatusBadRequest, msg, "") }

// writeDomainErr maps sentinel errors onto HTTP statuses and stable codes.
func writeDomainErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalidAmount):
		mutationRejects.WithLabelValues("invalid_amount").Inc()
		writeErr(w, http.StatusBadRequest, "invalid_amount", "invalid_amount")
	case errors.Is(err, errs.ErrInvalid):
		writeErr(w, http.StatusBadRequest, "invalid request", "invalid")
	case errors.Is(err, errs.ErrInsufficientFunds):
		mutationRejects.WithLabelValues("insufficient_funds").Inc()
		writeErr(w, http.StatusUnprocessableEntity, "insufficient_funds", "insufficient_funds")
	case errors.Is(err, errs.ErrWalletNotFound):
		writeErr(w, http.StatusNotFound, "wallet_not_found", "wallet_not_found")
	case errors.Is(err, errs.ErrTransactionNotFound):
		writeErr(w, http.StatusNotFound, "transaction_not_found", "transaction_not_found")
	case errors.Is(err, errs.ErrNotFound):
		writeErr(w, http.StatusNotFound, "not_found", "not_found")
	case errors.Is(err, errs.ErrWalletNotOwned):
		writeErr(w, http.StatusForbidden, "wallet_not_owned", "wallet_not_owned")
	case errors.Is(err, errs.ErrConcurrentModification):
		mutationRejects.WithLabelValues("concurrent_modification").Inc()
		writeErr(w, http.StatusConflict, "concurrent_modification", "concurrent_modification")
	case errors.Is(err, errs.ErrStoreUnavailable):
		writeErr(w, http.StatusServiceUnavailable, "store_unavailable", "store_unavailable")
	case errors.Is(err, errs.ErrUploadFailed):
		writeErr(w, http.StatusBadGateway, "upload_failed", "upload_failed")
	case errors.Is(err, errs.ErrNotSupported):
		writeErr(w, http.StatusNotImplemented, "not_supported", "not_supported")
	default:
		writeErr(w, http.StatusInternalServerError, "internal error", "internal")
	}
}
