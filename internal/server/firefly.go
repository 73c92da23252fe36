package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/spaarmann/reasonable-excuse/internal/firefly"
)

// fireflyShortcuts lists the configured shortcuts for the client UI.
func fireflyShortcuts(ff *firefly.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := json.MarshalIndent(ff.Shortcuts(), "", "  ")
		if err != nil {
			slog.Error("Failed to serialize shortcuts", "error", err)
			http.Error(w, "Failed to serialize shortcuts", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}
}

// addTransactionRequest is the client's request for posting a shortcut.
type addTransactionRequest struct {
	ShortcutID     uint64   `json:"shortcut_id"`
	AmountOverride *float32 `json:"amount_override"`
}

// fireflyAddTransaction posts the chosen shortcut to Firefly and passes
// Firefly's response through.
func fireflyAddTransaction(ff *firefly.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addTransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		response, err := ff.AddTransaction(r.Context(), req.ShortcutID, req.AmountOverride)
		switch {
		case errors.Is(err, firefly.ErrUnknownShortcut), errors.Is(err, firefly.ErrNoAmount):
			slog.Error("Bad add-transaction request", "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case err != nil:
			slog.Error("Adding transaction failed", "error", err)
			http.Error(w, "Failed to add transaction", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, response)
	}
}
