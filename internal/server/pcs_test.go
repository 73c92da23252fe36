package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaarmann/reasonable-excuse/internal/requestlog"
)

func TestRecordAndListRequests(t *testing.T) {
	requests := requestlog.New(10)
	record := recordRequest(requests)
	list := listRequests(requests)

	for _, body := range []string{"first ping", "second ping"} {
		req := httptest.NewRequest("POST", "/pcs", strings.NewReader(body))
		rr := httptest.NewRecorder()
		record.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Thanks!", rr.Body.String())
	}

	rr := httptest.NewRecorder()
	list.ServeHTTP(rr, httptest.NewRequest("GET", "/pcs", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var entries []requestlog.Entry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "second ping", entries[0].Body)
	assert.Equal(t, "first ping", entries[1].Body)
	assert.NotEmpty(t, entries[0].RemoteAddr)
	assert.False(t, entries[0].Time.IsZero())
}

func TestRecordRequestTruncatesLongBodies(t *testing.T) {
	requests := requestlog.New(10)
	record := recordRequest(requests)

	req := httptest.NewRequest("POST", "/pcs", strings.NewReader(strings.Repeat("x", maxRecordedBody+100)))
	rr := httptest.NewRecorder()
	record.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	entries := requests.Recent()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Truncated)
	assert.Len(t, entries[0].Body, maxRecordedBody)
}

func TestRecordRequestEmptyBody(t *testing.T) {
	requests := requestlog.New(10)
	record := recordRequest(requests)

	rr := httptest.NewRecorder()
	record.ServeHTTP(rr, httptest.NewRequest("POST", "/pcs", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	entries := requests.Recent()
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].Body)
	assert.False(t, entries[0].Truncated)
}
