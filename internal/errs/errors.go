package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound = errors.New("not_found")
	ErrInvalid  = errors.New("invalid")
	// ErrInvalidAmount indicates user input that does not parse to a valid
	// positive amount.
	ErrInvalidAmount = errors.New("invalid_amount")
	// ErrInsufficientFunds indicates an expense that would drive a wallet
	// balance negative. No writes happen once this is raised.
	ErrInsufficientFunds = errors.New("insufficient_funds")
	ErrWalletNotFound    = errors.New("wallet_not_found")
	// ErrWalletNotOwned indicates the wallet exists but belongs to another user.
	ErrWalletNotOwned      = errors.New("wallet_not_owned")
	ErrTransactionNotFound = errors.New("transaction_not_found")
	// ErrConcurrentModification indicates a stale wallet version token; the
	// caller should re-read and retry.
	ErrConcurrentModification = errors.New("concurrent_modification")
	// ErrStoreUnavailable wraps backend/network failures. Retryable; a partial
	// write is repairable via wallet balance recompute.
	ErrStoreUnavailable = errors.New("store_unavailable")
	ErrUploadFailed     = errors.New("upload_failed")
	// ErrNotSupported is returned by stores that lack an optional capability
	// (e.g. change watching on the postgres backend).
	ErrNotSupported = errors.New("not_supported")
)
