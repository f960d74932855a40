package api

import (
	"encoding/json"
	"net/http"

	"github.com/ssargent/bptreedb/pkg/kverrors"
)

// sendSuccess sends a successful JSON response.
func sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(APIResponse{Success: true, Data: data})
}

// sendError maps err's kverrors.Kind to an HTTP status, per spec.md §7,
// and writes it as a JSON error response. Errors that aren't a
// *kverrors.Error map to 500.
func sendError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if kerr := kverrors.Unwrap(err); kerr != nil {
		switch kerr.Kind {
		case kverrors.NotFound:
			status = http.StatusNotFound
		case kverrors.AlreadyExists:
			status = http.StatusConflict
		case kverrors.InvalidArgument:
			status = http.StatusBadRequest
		case kverrors.CapacityExceeded:
			status = http.StatusRequestEntityTooLarge
		default:
			status = http.StatusInternalServerError
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{Success: false, Error: err.Error()})
}
