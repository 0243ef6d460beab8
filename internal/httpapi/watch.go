package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/spendware/walletd/internal/query"
	"github.com/spendware/walletd/internal/wallet"
)

// watchTransactions streams full transaction snapshots as server-sent events.
// Every change to the owner's transactions re-delivers the complete current
// result set, mirroring the snapshot contract the mobile client was built on.
func (s *Server) watchTransactions(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErr(w, http.StatusInternalServerError, "streaming unsupported", "internal")
		return
	}

	q, err := watchFilter(r)
	if err != nil {
		badRequest(w, "invalid filter")
		return
	}

	// Serialize writes: snapshots arrive from watcher goroutines.
	var mu sync.Mutex
	events := make(chan []wallet.Transaction, 8)
	sub, err := s.queries.SubscribeTransactions(r.Context(), owner(r), q, func(txns []wallet.Transaction) {
		select {
		case events <- txns:
		default:
			// Drop when the client lags; the next change re-delivers a full
			// snapshot anyway.
		}
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	defer sub.Cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case txns := <-events:
			payload, err := json.Marshal(toListTransactionsResponse(txns))
			if err != nil {
				continue
			}
			mu.Lock()
			_, werr := w.Write(append(append([]byte("data: "), payload...), '\n', '\n'))
			if werr == nil {
				flusher.Flush()
			}
			mu.Unlock()
			if werr != nil {
				return
			}
		}
	}
}

// watchWallets streams full wallet snapshots as server-sent events, same
// contract as watchTransactions.
func (s *Server) watchWallets(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErr(w, http.StatusInternalServerError, "streaming unsupported", "internal")
		return
	}

	var mu sync.Mutex
	events := make(chan []wallet.Wallet, 8)
	sub, err := s.queries.SubscribeWallets(r.Context(), owner(r), func(ws []wallet.Wallet) {
		select {
		case events <- ws:
		default:
		}
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	defer sub.Cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ws := <-events:
			items := make([]walletResponse, 0, len(ws))
			for _, item := range ws {
				items = append(items, toWalletResponse(item))
			}
			payload, err := json.Marshal(struct {
				Items []walletResponse `json:"items"`
			}{Items: items})
			if err != nil {
				continue
			}
			mu.Lock()
			_, werr := w.Write(append(append([]byte("data: "), payload...), '\n', '\n'))
			if werr == nil {
				flusher.Flush()
			}
			mu.Unlock()
			if werr != nil {
				return
			}
		}
	}
}

func watchFilter(r *http.Request) (query.Filter, error) {
	q := r.URL.Query()
	f := query.Filter{Search: q.Get("search")}
	if raw := q.Get("wallet_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return query.Filter{}, err
		}
		f.WalletID = &id
	}
	var err error
	if f.From, err = parseTimeParam(q.Get("from")); err != nil {
		return query.Filter{}, err
	}
	if f.To, err = parseTimeParam(q.Get("to")); err != nil {
		return query.Filter{}, err
	}
	return f, nil
}
