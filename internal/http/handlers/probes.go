package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

// LivezOutput is the liveness probe response.
type LivezOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

// Livez reports process liveness for Kubernetes.
func Livez(ctx context.Context, _ *struct{}) (*LivezOutput, error) {
	out := &LivezOutput{}
	out.Body.Status = "ok"
	return out, nil
}

// ReadyzOutput is the readiness probe response.
type ReadyzOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

// DBPinger is the database dependency of the readiness probe.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// ReadyzHandler checks readiness of downstream dependencies.
type ReadyzHandler struct {
	db DBPinger
}

// NewReadyzHandler creates a readiness probe handler.
func NewReadyzHandler(db DBPinger) *ReadyzHandler {
	return &ReadyzHandler{db: db}
}

// Readyz reports whether the API can serve traffic. The database is the
// only hard dependency; detection vendors are degraded gracefully.
func (h *ReadyzHandler) Readyz(ctx context.Context, _ *struct{}) (*ReadyzOutput, error) {
	if err := h.db.PingContext(ctx); err != nil {
		return nil, huma.Error503ServiceUnavailable("database not ready")
	}
	out := &ReadyzOutput{}
	out.Body.Status = "ok"
	return out, nil
}
