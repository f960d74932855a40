package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/bptreedb/pkg/registry"
)

// testMetrics is shared by every test server: NewMetrics registers its
// collectors on the global Prometheus registry, which rejects a second
// registration of the same metric names.
var testMetrics = NewMetrics()

func newTestServer(t *testing.T) (*Server, chi.Router) {
	t.Helper()
	dir, err := os.MkdirTemp("", "api_test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	reg, err := registry.Open(registry.Config{BaseDir: dir, MaxDatasets: 10, DefaultOrder: 4})
	require.NoError(t, err)

	s := NewServer(reg, testMetrics)

	r := chi.NewRouter()
	r.Route("/v1/datasets", func(r chi.Router) {
		r.Post("/", s.handleCreateDataset)
		r.Delete("/{name}", s.handleDeleteDataset)
		r.Post("/{name}/bulk", s.handleBulkInsert)
		r.Get("/{name}/keys/{key}", s.handleSearch)
		r.Delete("/{name}/keys/{key}", s.handleDeleteKey)
		r.Get("/{name}/range", s.handleRange)
	})
	return s, r
}

func doJSON(t *testing.T, r chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndDeleteDataset(t *testing.T) {
	_, r := newTestServer(t)

	rec := doJSON(t, r, http.MethodPost, "/v1/datasets", CreateDatasetRequest{Name: "widgets", Order: 4})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/v1/datasets", CreateDatasetRequest{Name: "widgets", Order: 4})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/v1/datasets/widgets", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/v1/datasets/widgets", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBulkInsertSearchRangeDeleteKey(t *testing.T) {
	_, r := newTestServer(t)
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/v1/datasets", CreateDatasetRequest{Name: "widgets", Order: 4}).Code)

	bulk := BulkInsertRequest{Entries: []KeyLineRequest{{Key: 1, Line: "a"}, {Key: 2, Line: "b"}, {Key: 3, Line: "c"}}}
	rec := doJSON(t, r, http.MethodPost, "/v1/datasets/widgets/bulk", bulk)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.True(t, resp.Success)

	rec = doJSON(t, r, http.MethodGet, "/v1/datasets/widgets/keys/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/v1/datasets/widgets/keys/99", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/v1/datasets/widgets/range?lo=1&hi=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/v1/datasets/widgets/keys/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/v1/datasets/widgets/keys/2", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBulkInsertRejectsOversizedRequest(t *testing.T) {
	_, r := newTestServer(t)
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/v1/datasets", CreateDatasetRequest{Name: "widgets", Order: 4}).Code)

	entries := make([]KeyLineRequest, MaxBulkEntries+1)
	for i := range entries {
		entries[i] = KeyLineRequest{Key: int32(i), Line: "x"}
	}
	rec := doJSON(t, r, http.MethodPost, "/v1/datasets/widgets/bulk", BulkInsertRequest{Entries: entries})
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRangeRejectsInvertedBounds(t *testing.T) {
	_, r := newTestServer(t)
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/v1/datasets", CreateDatasetRequest{Name: "widgets", Order: 4}).Code)

	rec := doJSON(t, r, http.MethodGet, "/v1/datasets/widgets/range?lo=5&hi=1", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
