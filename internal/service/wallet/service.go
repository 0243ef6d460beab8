// Package wallet implements wallet lifecycle rules: creation with a zero
// balance, rename and image updates that never touch the balance, and delete
// with cascade to the wallet's transactions.
package wallet

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spendware/walletd/internal/errs"
	"github.com/spendware/walletd/internal/money"
	"github.com/spendware/walletd/internal/wallet"
)

// Repo defines read operations needed by the service.
type Repo interface {
	GetWallet(ctx context.Context, walletID uuid.UUID) (wallet.Wallet, error)
	ListWallets(ctx context.Context, ownerID string) ([]wallet.Wallet, error)
}

// Writer defines write operations needed by the service.
type Writer interface {
	CreateWallet(ctx context.Context, w wallet.Wallet) error
	SaveWalletMeta(ctx context.Context, walletID uuid.UUID, name, imageURL string) error
	// DeleteWallet removes the wallet and cascades to its transactions.
	DeleteWallet(ctx context.Context, ownerID string, walletID uuid.UUID) error
}

// Service exposes wallet CRUD.
type Service interface {
	Create(ctx context.Context, ownerID, name, imageURL string) (wallet.Wallet, error)
	List(ctx context.Context, ownerID string) ([]wallet.Wallet, error)
	Get(ctx context.Context, ownerID string, walletID uuid.UUID) (wallet.Wallet, error)
	Rename(ctx context.Context, ownerID string, walletID uuid.UUID, name string) (wallet.Wallet, error)
	SetImage(ctx context.Context, ownerID string, walletID uuid.UUID, imageURL string) (wallet.Wallet, error)
	Delete(ctx context.Context, ownerID string, walletID uuid.UUID) error
}

type service struct {
	repo     Repo
	writer   Writer
	currency string
}

// New constructs the wallet service. currency is the deployment currency new
// wallets start in.
func New(repo Repo, writer Writer, currency string) Service {
	return &service{repo: repo, writer: writer, currency: strings.ToUpper(currency)}
}

func (s *service) Create(ctx context.Context, ownerID, name, imageURL string) (wallet.Wallet, error) {
	name = strings.TrimSpace(name)
	if ownerID == "" || name == "" {
		return wallet.Wallet{}, errs.ErrInvalid
	}
	w := wallet.Wallet{
		ID:       uuid.New(),
		OwnerID:  ownerID,
		Name:     name,
		Balance:  money.Zero(s.currency),
		ImageURL: imageURL,
		Created:  time.Now().UTC(),
	}
	if err := s.writer.CreateWallet(ctx, w); err != nil {
		return wallet.Wallet{}, err
	}
	return w, nil
}

func (s *service) List(ctx context.Context, ownerID string) ([]wallet.Wallet, error) {
	if ownerID == "" {
		return nil, errs.ErrInvalid
	}
	return s.repo.ListWallets(ctx, ownerID)
}

func (s *service) Get(ctx context.Context, ownerID string, walletID uuid.UUID) (wallet.Wallet, error) {
	return s.resolve(ctx, ownerID, walletID)
}

func (s *service) Rename(ctx context.Context, ownerID string, walletID uuid.UUID, name string) (wallet.Wallet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return wallet.Wallet{}, errs.ErrInvalid
	}
	w, err := s.resolve(ctx, ownerID, walletID)
	if err != nil {
		return wallet.Wallet{}, err
	}
	if err := s.writer.SaveWalletMeta(ctx, walletID, name, w.ImageURL); err != nil {
		return wallet.Wallet{}, err
	}
	w.Name = name
	return w, nil
}

func (s *service) SetImage(ctx context.Context, ownerID string, walletID uuid.UUID, imageURL string) (wallet.Wallet, error) {
	w, err := s.resolve(ctx, ownerID, walletID)
	if err != nil {
		return wallet.Wallet{}, err
	}
	if err := s.writer.SaveWalletMeta(ctx, walletID, w.Name, imageURL); err != nil {
		return wallet.Wallet{}, err
	}
	w.ImageURL = imageURL
	return w, nil
}

func (s *service) Delete(ctx context.Context, ownerID string, walletID uuid.UUID) error {
	if _, err := s.resolve(ctx, ownerID, walletID); err != nil {
		return err
	}
	return s.writer.DeleteWallet(ctx, ownerID, walletID)
}

func (s *service) resolve(ctx context.Context, ownerID string, walletID uuid.UUID) (wallet.Wallet, error) {
	if ownerID == "" || walletID == uuid.Nil {
		return wallet.Wallet{}, errs.ErrInvalid
	}
	w, err := s.repo.GetWallet(ctx, walletID)
	if err != nil {
		return wallet.Wallet{}, err
	}
	if w.OwnerID != ownerID {
		return wallet.Wallet{}, errs.ErrWalletNotOwned
	}
	return w, nil
}
