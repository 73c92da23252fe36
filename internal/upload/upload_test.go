package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtension(t *testing.T) {
	tests := []struct {
		name string
		in   string
		ext  string
		err  error
	}{
		{"simple", "a.txt", "txt", nil},
		{"multiple dots", "archive.tar.gz", "gz", nil},
		{"case preserved", "REPORT.PDF", "PDF", nil},
		{"leading dot", ".hidden", "hidden", nil},
		{"trailing dot", "trailing.", "", nil},
		{"no extension", "noext", "", ErrMissingExtension},
		{"empty name", "", "", ErrMissingExtension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, err := Extension(tt.in)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ext, ext)
		})
	}
}
