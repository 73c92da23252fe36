package server

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/spaarmann/reasonable-excuse/internal/calendar"
)

// calendarFeed proxies the upstream calendar. The configured pass-through
// query parameter is required; everything else about the request is ignored.
func calendarFeed(cfg *Config, cal *calendar.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Only absence is an error; a present-but-empty value is passed
		// through to the upstream as-is.
		values, ok := r.URL.Query()[cfg.CalendarPassParam]
		if !ok {
			slog.Warn("Bad calendar request", "missing_param", cfg.CalendarPassParam)
			http.Error(w, "Missing query parameter: "+cfg.CalendarPassParam, http.StatusBadRequest)
			return
		}

		feed, err := cal.Fetch(r.Context(), values[0])
		if err != nil {
			slog.Error("Calendar fetch failed", "error", err)
			http.Error(w, "Failed to fetch calendar", http.StatusInternalServerError)
			return
		}

		io.WriteString(w, feed)
	}
}
