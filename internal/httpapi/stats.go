package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/spendware/walletd/internal/query"
)

func (s *Server) statsWeekly(w http.ResponseWriter, r *http.Request) {
	s.stats(w, r, s.queries.Weekly)
}

func (s *Server) statsMonthly(w http.ResponseWriter, r *http.Request) {
	s.stats(w, r, s.queries.Monthly)
}

func (s *Server) statsYearly(w http.ResponseWriter, r *http.Request) {
	s.stats(w, r, s.queries.Yearly)
}

// stats parses the optional anchor param (default: now) and renders one
// summary period.
func (s *Server) stats(w http.ResponseWriter, r *http.Request, fn func(context.Context, string, time.Time) (query.Summary, error)) {
	anchor := time.Now().UTC()
	if raw := r.URL.Query().Get("anchor"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			badRequest(w, "invalid anchor")
			return
		}
		anchor = t.UTC()
	}
	sum, err := fn(r.Context(), owner(r), anchor)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toStatsResponse(sum))
}
