package api

// APIResponse represents a standard API response envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CreateDatasetRequest is the body of POST /v1/datasets.
type CreateDatasetRequest struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// KeyLineRequest is one (key, line) pair in a bulk insert request.
type KeyLineRequest struct {
	Key  int32  `json:"key"`
	Line string `json:"line"`
}

// BulkInsertRequest is the body of POST /v1/datasets/{name}/bulk.
type BulkInsertRequest struct {
	Entries []KeyLineRequest `json:"entries"`
}

// MaxBulkEntries caps a single bulk_insert request, per spec.md §6's
// "max 50 entries per bulk request".
const MaxBulkEntries = 50

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Port int
}
