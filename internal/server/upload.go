package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spaarmann/reasonable-excuse/internal/upload"
)

// uploadHelp answers GET on the upload route the way the original server
// did: with a usage hint instead of a 405.
func uploadHelp(w http.ResponseWriter, r *http.Request) {
	io.WriteString(w, "POST to this address to upload files")
}

// uploadFile accepts one multipart file part named "file" and stores it,
// answering with the name the file ended up under.
func uploadFile(uploads *upload.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// An absent keep_name defaults to false, but a present one must
		// parse, so "?keep_name=" is rejected rather than ignored.
		keepName := false
		if values, ok := r.URL.Query()["keep_name"]; ok {
			parsed, err := strconv.ParseBool(values[0])
			if err != nil {
				http.Error(w, "Invalid keep_name value", http.StatusBadRequest)
				return
			}
			keepName = parsed
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				http.Error(w, "Request entity too large", http.StatusRequestEntityTooLarge)
				return
			}
			// A part with an empty filename attribute is parsed as a plain
			// value field, so a missing filename also lands here.
			http.Error(w, "No file provided", http.StatusBadRequest)
			return
		}
		defer file.Close()

		slog.Info("Upload request",
			"filename", header.Filename,
			"size", humanize.Bytes(uint64(header.Size)),
			"keep_name", keepName,
			"request_id", requestIDFrom(r.Context()),
		)

		name, err := uploads.Upload(upload.Request{
			Filename: header.Filename,
			Content:  file,
			KeepName: keepName,
		})
		switch {
		case errors.Is(err, upload.ErrMissingExtension):
			http.Error(w, "Filename has no extension", http.StatusBadRequest)
			return
		case errors.Is(err, upload.ErrNameCollision):
			http.Error(w, "A file with that name already exists", http.StatusConflict)
			return
		case err != nil:
			slog.Error("Storing upload failed", "error", err, "filename", header.Filename)
			http.Error(w, "Failed to store file", http.StatusInternalServerError)
			return
		}

		slog.Info("Uploaded file", "name", name, "request_id", requestIDFrom(r.Context()))
		io.WriteString(w, name)
	}
}
