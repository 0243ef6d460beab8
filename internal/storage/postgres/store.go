package postgres

// Package postgres provides a pgx-backed storage implementation that satisfies
// the repository and writer interfaces used by the HTTP/API and services.
//
// It is intentionally small and explicit: mapping between domain entities and
// SQL rows, plus the transactions that keep a ledger mutation atomic. The
// canonical schema lives under db/migrations; EnsureSchema applies the same
// statements idempotently for local runs.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spendware/walletd/internal/errs"
	"github.com/spendware/walletd/internal/money"
	ledgersvc "github.com/spendware/walletd/internal/service/ledger"
	"github.com/spendware/walletd/internal/wallet"
)

// Store holds a pgx connection pool and implements the read/write interfaces
// used across the service layer. All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

// EnsureSchema creates the tables if they do not exist. Mirrors
// db/migrations/0001_init.sql.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		create table if not exists users (
			id        text primary key,
			name      text not null default '',
			email     text not null default '',
			image_url text not null default ''
		);
		create table if not exists wallets (
			id            uuid primary key,
			owner_id      text not null,
			name          text not null,
			balance_minor bigint not null,
			currency      text not null,
			image_url     text not null default '',
			version       bigint not null default 0,
			created       timestamptz not null
		);
		create index if not exists wallets_owner_idx on wallets (owner_id, created);
		create table if not exists transactions (
			id           uuid primary key,
			owner_id     text not null,
			wallet_id    uuid not null references wallets (id) on delete cascade,
			direction    text not null,
			category     text not null,
			amount_minor bigint not null,
			currency     text not null,
			date         timestamptz not null,
			created      timestamptz not null,
			description  text not null default '',
			icon_url     text not null default ''
		);
		create index if not exists transactions_owner_date_idx on transactions (owner_id, date desc);
		create index if not exists transactions_wallet_idx on transactions (wallet_id);
	`)
	return err
}

const walletColumns = `id, owner_id, name, balance_minor, currency, image_url, version, created`

func scanWallet(row pgx.Row) (wallet.Wallet, error) {
	var (
		w            wallet.Wallet
		balanceMinor int64
		currency     string
	)
	err := row.Scan(&w.ID, &w.OwnerID, &w.Name, &balanceMinor, &currency, &w.ImageURL, &w.Version, &w.Created)
	if err != nil {
		return wallet.Wallet{}, err
	}
	w.Balance, err = money.FromMinorUnits(currency, balanceMinor)
	return w, err
}

// --- Wallet reads ---

func (s *Store) GetWallet(ctx context.Context, walletID uuid.UUID) (wallet.Wallet, error) {
	row := s.pool.QueryRow(ctx, `select `+walletColumns+` from wallets where id = $1`, walletID)
	w, err := scanWallet(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return wallet.Wallet{}, errs.ErrWalletNotFound
	}
	return w, err
}

func (s *Store) ListWallets(ctx context.Context, ownerID string) ([]wallet.Wallet, error) {
	rows, err := s.pool.Query(ctx, `
		select `+walletColumns+` from wallets
		where owner_id = $1
		order by created, id
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]wallet.Wallet, 0)
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// --- Wallet writes ---

func (s *Store) CreateWallet(ctx context.Context, w wallet.Wallet) error {
	_, err := s.pool.Exec(ctx, `
		insert into wallets (id, owner_id, name, balance_minor, currency, image_url, version, created)
		values ($1,$2,$3,$4,$5,$6,$7,$8)
	`, w.ID, w.OwnerID, w.Name, w.Balance.MinorUnits(), w.Balance.Currency(), w.ImageURL, w.Version, w.Created)
	return err
}

func (s *Store) SaveWalletMeta(ctx context.Context, walletID uuid.UUID, name, imageURL string) error {
	tag, err := s.pool.Exec(ctx, `
		update wallets set name = $2, image_url = $3 where id = $1
	`, walletID, name, imageURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrWalletNotFound
	}
	return nil
}

// SaveWalletBalance overwrites the cached balance, guarded by the version
// column. A stale expectedVersion touches zero rows and reports a conflict.
func (s *Store) SaveWalletBalance(ctx context.Context, walletID uuid.UUID, balance money.Money, expectedVersion int64) error {
	return saveWalletBalanceTx(ctx, s.pool, walletID, balance, expectedVersion)
}

// querier covers both the pool and an open transaction so the write helpers
// can run standalone or inside ApplyMutation.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func saveWalletBalanceTx(ctx context.Context, q querier, walletID uuid.UUID, balance money.Money, expectedVersion int64) error {
	tag, err := q.Exec(ctx, `
		update wallets set balance_minor = $2, version = version + 1
		where id = $1 and version = $3
	`, walletID, balance.MinorUnits(), expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := q.QueryRow(ctx, `select exists (select 1 from wallets where id = $1)`, walletID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return errs.ErrWalletNotFound
		}
		return errs.ErrConcurrentModification
	}
	return nil
}

// DeleteWallet removes the wallet after an ownership check; the foreign key
// cascades to its transactions.
func (s *Store) DeleteWallet(ctx context.Context, ownerID string, walletID uuid.UUID) error {
	w, err := s.GetWallet(ctx, walletID)
	if err != nil {
		return err
	}
	if w.OwnerID != ownerID {
		return errs.ErrWalletNotOwned
	}
	_, err = s.pool.Exec(ctx, `delete from wallets where id = $1`, walletID)
	return err
}

const txnColumns = `id, owner_id, wallet_id, direction, category, amount_minor, currency, date, created, description, icon_url`

func scanTransaction(row pgx.Row) (wallet.Transaction, error) {
	var (
		t           wallet.Transaction
		direction   string
		amountMinor int64
		currency    string
	)
	err := row.Scan(&t.ID, &t.OwnerID, &t.WalletID, &direction, &t.Category, &amountMinor, &currency, &t.Date, &t.Created, &t.Description, &t.IconURL)
	if err != nil {
		return wallet.Transaction{}, err
	}
	t.Direction = wallet.Direction(direction)
	t.Amount, err = money.FromMinorUnits(currency, amountMinor)
	return t, err
}

// --- Transaction reads ---

func (s *Store) GetTransaction(ctx context.Context, ownerID string, id uuid.UUID) (wallet.Transaction, error) {
	row := s.pool.QueryRow(ctx, `
		select `+txnColumns+` from transactions where id = $1 and owner_id = $2
	`, id, ownerID)
	t, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return wallet.Transaction{}, errs.ErrTransactionNotFound
	}
	return t, err
}

func (s *Store) TransactionsByWallet(ctx context.Context, walletID uuid.UUID) ([]wallet.Transaction, error) {
	rows, err := s.pool.Query(ctx, `
		select `+txnColumns+` from transactions where wallet_id = $1
	`, walletID)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

// ListTransactions returns the owner's transactions newest first, with the
// wallet and date-window filters applied in SQL.
func (s *Store) ListTransactions(ctx context.Context, ownerID string, walletID *uuid.UUID, from, to *time.Time) ([]wallet.Transaction, error) {
	sql := `select ` + txnColumns + ` from transactions where owner_id = $1`
	args := []any{ownerID}
	if walletID != nil {
		args = append(args, *walletID)
		sql += fmt.Sprintf(` and wallet_id = $%d`, len(args))
	}
	if from != nil {
		args = append(args, *from)
		sql += fmt.Sprintf(` and date >= $%d`, len(args))
	}
	if to != nil {
		args = append(args, *to)
		sql += fmt.Sprintf(` and date <= $%d`, len(args))
	}
	sql += ` order by date desc, created desc`
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]wallet.Transaction, error) {
	defer rows.Close()
	out := make([]wallet.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// --- Transaction writes ---

func (s *Store) PutTransaction(ctx context.Context, t wallet.Transaction) error {
	return putTransactionTx(ctx, s.pool, t)
}

func putTransactionTx(ctx context.Context, q querier, t wallet.Transaction) error {
	_, err := q.Exec(ctx, `
		insert into transactions (id, owner_id, wallet_id, direction, category, amount_minor, currency, date, created, description, icon_url)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		on conflict (id) do update set
			wallet_id = excluded.wallet_id,
			direction = excluded.direction,
			category = excluded.category,
			amount_minor = excluded.amount_minor,
			currency = excluded.currency,
			date = excluded.date,
			description = excluded.description,
			icon_url = excluded.icon_url
	`, t.ID, t.OwnerID, t.WalletID, string(t.Direction), t.Category, t.Amount.MinorUnits(), t.Amount.Currency(), t.Date, t.Created, t.Description, t.IconURL)
	return err
}

func (s *Store) DeleteTransaction(ctx context.Context, ownerID string, id uuid.UUID) error {
	return deleteTransactionTx(ctx, s.pool, ownerID, id)
}

func deleteTransactionTx(ctx context.Context, q querier, ownerID string, id uuid.UUID) error {
	tag, err := q.Exec(ctx, `delete from transactions where id = $1 and owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrTransactionNotFound
	}
	return nil
}

// ApplyMutation runs the transaction write and every wallet balance write in
// one SQL transaction, so partial ledger states never hit the database.
func (s *Store) ApplyMutation(ctx context.Context, m ledgersvc.Mutation) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	switch {
	case m.Put != nil:
		if err := putTransactionTx(ctx, tx, *m.Put); err != nil {
			return err
		}
	case m.DeleteID != nil:
		if err := deleteTransactionTx(ctx, tx, m.OwnerID, *m.DeleteID); err != nil {
			return err
		}
	}
	for _, wc := range m.Wallets {
		if err := saveWalletBalanceTx(ctx, tx, wc.WalletID, wc.NewBalance, wc.ExpectedVersion); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// --- Users ---

func (s *Store) GetUser(ctx context.Context, id string) (wallet.User, error) {
	var u wallet.User
	err := s.pool.QueryRow(ctx, `
		select id, name, email, image_url from users where id = $1
	`, id).Scan(&u.ID, &u.Name, &u.Email, &u.ImageURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return wallet.User{}, errs.ErrNotFound
	}
	return u, err
}

func (s *Store) PutUser(ctx context.Context, u wallet.User) error {
	_, err := s.pool.Exec(ctx, `
		insert into users (id, name, email, image_url)
		values ($1,$2,$3,$4)
		on conflict (id) do update set
			name = excluded.name,
			email = excluded.email,
			image_url = excluded.image_url
	`, u.ID, u.Name, u.Email, u.ImageURL)
	return err
}
