package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spaarmann/reasonable-excuse/internal/requestlog"
)

// maxRecordedBody caps how much of each request body the log keeps. Anything
// beyond it is discarded, not buffered.
const maxRecordedBody = 16 << 10

// recordRequest stores the request body in the in-memory log and thanks the
// caller, which is all this endpoint has ever needed to do.
func recordRequest(requests *requestlog.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxRecordedBody+1))
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}

		truncated := len(body) > maxRecordedBody
		if truncated {
			body = body[:maxRecordedBody]
		}

		requests.Add(requestlog.Entry{
			Time:       time.Now(),
			RemoteAddr: r.RemoteAddr,
			Body:       string(body),
			Truncated:  truncated,
		})

		slog.Info("PCS request",
			"remote_addr", r.RemoteAddr,
			"size", humanize.Bytes(uint64(len(body))),
			"request_id", requestIDFrom(r.Context()),
		)
		io.WriteString(w, "Thanks!")
	}
}

// listRequests returns the recorded requests, newest first.
func listRequests(requests *requestlog.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(requests.Recent()); err != nil {
			slog.Error("Failed to encode request log", "error", err)
		}
	}
}
