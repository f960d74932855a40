package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ssargent/bptreedb/pkg/kverrors"
	"github.com/ssargent/bptreedb/pkg/registry"
)

// Server dispatches HTTP requests onto a *registry.Registry. It holds no
// tree logic of its own, only request/response translation, following
// the teacher's handlers.go shape (a thin receiver wrapping the store).
type Server struct {
	reg     *registry.Registry
	metrics *Metrics
}

// NewServer builds a dispatcher over reg.
func NewServer(reg *registry.Registry, metrics *Metrics) *Server {
	return &Server{reg: reg, metrics: metrics}
}

func (s *Server) timeOp(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	s.metrics.RecordTreeOperation(op, err == nil, time.Since(start))
	return err
}

// handleCreateDataset godoc
// @Summary Create a dataset
// @Description Creates a new dataset with the given order
// @Tags datasets
// @Accept json
// @Produce json
// @Param request body CreateDatasetRequest true "dataset name and order"
// @Success 200 {object} APIResponse
// @Router /v1/datasets [post]
func (s *Server) handleCreateDataset(w http.ResponseWriter, r *http.Request) {
	var req CreateDatasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, kverrors.Wrap(kverrors.InvalidArgument, "malformed request body", err))
		return
	}

	err := s.timeOp("create_dataset", func() error {
		return s.reg.Create(req.Name, req.Order)
	})
	if err != nil {
		sendError(w, err)
		return
	}
	sendSuccess(w, map[string]string{"name": req.Name})
}

// handleDeleteDataset godoc
// @Summary Delete a dataset
// @Tags datasets
// @Produce json
// @Param name path string true "dataset name"
// @Success 200 {object} APIResponse
// @Router /v1/datasets/{name} [delete]
func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	err := s.timeOp("delete_dataset", func() error {
		return s.reg.Delete(name)
	})
	if err != nil {
		sendError(w, err)
		return
	}
	sendSuccess(w, nil)
}

// handleBulkInsert godoc
// @Summary Bulk insert keys into a dataset
// @Tags datasets
// @Accept json
// @Produce json
// @Param name path string true "dataset name"
// @Param request body BulkInsertRequest true "entries to insert"
// @Success 200 {object} APIResponse
// @Router /v1/datasets/{name}/bulk [post]
func (s *Server) handleBulkInsert(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req BulkInsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, kverrors.Wrap(kverrors.InvalidArgument, "malformed request body", err))
		return
	}
	if len(req.Entries) > MaxBulkEntries {
		sendError(w, kverrors.Newf(kverrors.CapacityExceeded,
			"bulk request has %d entries, max is %d", len(req.Entries), MaxBulkEntries))
		return
	}

	pairs := make([]registry.KeyLine, len(req.Entries))
	for i, e := range req.Entries {
		pairs[i] = registry.KeyLine{Key: e.Key, Line: e.Line}
	}

	var count int
	err := s.timeOp("bulk_insert", func() error {
		var insertErr error
		count, insertErr = s.reg.BulkInsert(name, pairs)
		return insertErr
	})
	if err != nil {
		sendError(w, err)
		return
	}
	sendSuccess(w, map[string]int{"count_inserted": count})
}

// handleSearch godoc
// @Summary Look up a key
// @Tags datasets
// @Produce json
// @Param name path string true "dataset name"
// @Param key path int true "key"
// @Success 200 {object} APIResponse
// @Router /v1/datasets/{name}/keys/{key} [get]
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	key, err := parseKey(chi.URLParam(r, "key"))
	if err != nil {
		sendError(w, err)
		return
	}

	var line string
	var found bool
	opErr := s.timeOp("search", func() error {
		var err error
		line, found, err = s.reg.Search(name, key)
		return err
	})
	if opErr != nil {
		sendError(w, opErr)
		return
	}
	if !found {
		sendError(w, kverrors.Newf(kverrors.NotFound, "key %d not found", key))
		return
	}
	sendSuccess(w, map[string]interface{}{"key": key, "line": line})
}

// handleRange godoc
// @Summary Range query over a dataset
// @Tags datasets
// @Produce json
// @Param name path string true "dataset name"
// @Param lo query int true "lower bound (inclusive)"
// @Param hi query int true "upper bound (inclusive)"
// @Success 200 {object} APIResponse
// @Router /v1/datasets/{name}/range [get]
func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	lo, err := parseKey(r.URL.Query().Get("lo"))
	if err != nil {
		sendError(w, err)
		return
	}
	hi, err := parseKey(r.URL.Query().Get("hi"))
	if err != nil {
		sendError(w, err)
		return
	}

	var entries []registry.KeyLine
	opErr := s.timeOp("range", func() error {
		es, err := s.reg.Range(name, lo, hi)
		if err != nil {
			return err
		}
		entries = make([]registry.KeyLine, len(es))
		for i, e := range es {
			entries[i] = registry.KeyLine{Key: e.Key, Line: e.Line}
		}
		return nil
	})
	if opErr != nil {
		sendError(w, opErr)
		return
	}
	sendSuccess(w, entries)
}

// handleDeleteKey godoc
// @Summary Delete a key
// @Tags datasets
// @Produce json
// @Param name path string true "dataset name"
// @Param key path int true "key"
// @Success 200 {object} APIResponse
// @Router /v1/datasets/{name}/keys/{key} [delete]
func (s *Server) handleDeleteKey(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	key, err := parseKey(chi.URLParam(r, "key"))
	if err != nil {
		sendError(w, err)
		return
	}

	opErr := s.timeOp("delete_key", func() error {
		return s.reg.DeleteKey(name, key)
	})
	if opErr != nil {
		sendError(w, opErr)
		return
	}
	sendSuccess(w, nil)
}

func parseKey(raw string) (int32, error) {
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, kverrors.Wrap(kverrors.InvalidArgument, "key must be a signed 32-bit integer", err)
	}
	return int32(v), nil
}
