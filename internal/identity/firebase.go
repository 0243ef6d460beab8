package identity

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"

	"github.com/spendware/walletd/internal/errs"
)

// Firebase verifies ID tokens and registers users through the Firebase Admin
// SDK.
type Firebase struct {
	auth *auth.Client
}

// NewFirebase builds the provider from an initialized Firebase app handle.
func NewFirebase(ctx context.Context, app *firebase.App) (*Firebase, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return &Firebase{auth: client}, nil
}

// Verify checks the ID token signature and expiry and returns the UID.
func (f *Firebase) Verify(ctx context.Context, token string) (string, error) {
	tok, err := f.auth.VerifyIDToken(ctx, token)
	if err != nil {
		return "", errs.ErrNotFound
	}
	return tok.UID, nil
}

// Register creates a new user. The returned UID is the owner ID used across
// wallets and transactions.
func (f *Firebase) Register(ctx context.Context, email, password, displayName string) (string, error) {
	if email == "" || password == "" {
		return "", errs.ErrInvalid
	}
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)
	u, err := f.auth.CreateUser(ctx, params)
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	return u.UID, nil
}
