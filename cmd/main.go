package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/spendware/walletd/internal/httpapi"
	"github.com/spendware/walletd/internal/identity"
	"github.com/spendware/walletd/internal/media"
	"github.com/spendware/walletd/internal/money"
	fsstore "github.com/spendware/walletd/internal/storage/firestore"
	"github.com/spendware/walletd/internal/storage/memory"
	pgstore "github.com/spendware/walletd/internal/storage/postgres"
	"github.com/spendware/walletd/internal/wallet"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Logger (slog to stdout). Level via LOG_LEVEL; format via LOG_FORMAT (json|text, default json)
	logger := buildLoggerFromEnv()
	slog.SetDefault(logger)

	currency := strings.ToUpper(strings.TrimSpace(os.Getenv("WALLET_CURRENCY")))
	if currency == "" {
		currency = "USD"
	}

	cfg := httpapi.Config{Logger: logger, Currency: currency}
	var closeFn func()

	switch {
	case strings.TrimSpace(os.Getenv("DATABASE_URL")) != "":
		dsn := strings.TrimSpace(os.Getenv("DATABASE_URL"))
		pg, err := pgstore.Open(ctx, dsn)
		if err != nil {
			logger.Error("failed to connect to postgres", "err", err)
			os.Exit(1)
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure schema", "err", err)
			os.Exit(1)
		}
		closeFn = pg.Close
		cfg.Store = pg
		logger.Info("storage backend: postgres")

	case strings.TrimSpace(os.Getenv("FIREBASE_PROJECT_ID")) != "":
		app, err := newFirebaseApp(ctx)
		if err != nil {
			logger.Error("failed to init firebase", "err", err)
			os.Exit(1)
		}
		fs, err := fsstore.Open(ctx, app)
		if err != nil {
			logger.Error("failed to open firestore", "err", err)
			os.Exit(1)
		}
		closeFn = func() { _ = fs.Close() }
		cfg.Store = fs
		auth, err := identity.NewFirebase(ctx, app)
		if err != nil {
			logger.Error("failed to init firebase auth", "err", err)
			os.Exit(1)
		}
		cfg.Verifier = auth
		cfg.Provider = auth
		logger.Info("storage backend: firestore")

	default:
		store := memory.New()
		if devSeedEnabled() {
			seedDev(store, logger, currency)
		}
		cfg.Store = store
		logger.Info("storage backend: memory")
	}

	// Fixed dev tokens take precedence over Firebase verification so local
	// runs against a real project can still use scripted identities.
	if raw := strings.TrimSpace(os.Getenv("DEV_TOKENS")); raw != "" {
		cfg.Verifier = identity.NewStaticVerifier(parseDevTokens(raw))
		logger.Warn("using static dev tokens for auth")
	}

	if cloud := strings.TrimSpace(os.Getenv("CLOUDINARY_CLOUD")); cloud != "" {
		cfg.Uploader = media.NewCloudinary(cloud, strings.TrimSpace(os.Getenv("CLOUDINARY_PRESET")))
		logger.Info("media uploads enabled", "cloud", cloud)
	}

	srv := &http.Server{
		Addr:              listenAddr(),
		Handler:           httpapi.New(cfg).Handler(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("wallet service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}
	if closeFn != nil {
		closeFn()
	}
}

// newFirebaseApp initializes the Firebase app from FIREBASE_PROJECT_ID,
// using inline credentials when FIREBASE_CREDENTIALS_JSON is set and
// application default credentials otherwise.
func newFirebaseApp(ctx context.Context) (*firebase.App, error) {
	conf := &firebase.Config{ProjectID: strings.TrimSpace(os.Getenv("FIREBASE_PROJECT_ID"))}
	if creds := os.Getenv("FIREBASE_CREDENTIALS_JSON"); creds != "" {
		return firebase.NewApp(ctx, conf, option.WithCredentialsJSON([]byte(creds)))
	}
	return firebase.NewApp(ctx, conf)
}

func devSeedEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEV_SEED"))) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// seedDev creates a fixed dev user with one empty wallet for quick local
// testing against the memory backend.
func seedDev(store *memory.Store, logger *slog.Logger, currency string) {
	const devUID = "dev-user"
	store.SeedUser(wallet.User{ID: devUID, Name: "Dev User"})
	w := wallet.Wallet{
		ID:      uuid.New(),
		OwnerID: devUID,
		Name:    "Cash",
		Balance: money.Zero(currency),
		Created: time.Now().UTC(),
	}
	store.SeedWallet(w)
	logger.Info("DEV seed (memory)", "user_id", devUID, "wallet_id", w.ID.String())
	fmt.Println("==================== DEV SEED ====================")
	fmt.Printf("user_id: %s\n", devUID)
	fmt.Printf("wallet_id: %s\n", w.ID.String())
	fmt.Println("==================================================")
}

// parseDevTokens parses "token=uid,token2=uid2" into a lookup map.
func parseDevTokens(raw string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		token, uid, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || token == "" || uid == "" {
			continue
		}
		out[token] = uid
	}
	return out
}

func listenAddr() string {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		return ":" + port
	}
	return ":8080"
}

// parseLogLevel maps env values to slog.Leveler
func parseLogLevel(s string) slog.Leveler {
	switch s {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "WARNING", "warn", "warning":
		return slog.LevelWarn
	case "ERROR", "ERR", "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLoggerFromEnv() *slog.Logger {
	level := parseLogLevel(os.Getenv("LOG_LEVEL"))
	format := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT")))
	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	// default to JSON
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
