package httpapi

import (
	"net/http"

	"github.com/spendware/walletd/internal/wallet"
)

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	toJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readyz reports store readiness when the backend exposes a check.
func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if rc, ok := s.store.(ReadyChecker); ok {
		if err := rc.Ready(r.Context()); err != nil {
			toJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	toJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// listCategories returns both fixed category tables so clients render pickers
// without hardcoding keys.
func (s *Server) listCategories(w http.ResponseWriter, _ *http.Request) {
	toJSON(w, http.StatusOK, categoriesResponse{
		Expense: wallet.Categories(wallet.DirectionExpense),
		Income:  wallet.Categories(wallet.DirectionIncome),
	})
}
