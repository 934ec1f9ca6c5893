package api

import (
	"time"

	"github.com/Edneylin/factory-efficiency-analysis/internal/pipeline"
	"github.com/Edneylin/factory-efficiency-analysis/internal/store"
)

// AnalysisMeta is one entry in GET /api/v1/datasets: identity plus the
// summary scalars, without the per-row table.
type AnalysisMeta struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Encoding  string           `json:"encoding"`
	CreatedAt string           `json:"created_at"` // RFC3339
	Summary   pipeline.Summary `json:"summary"`
}

// AnalysisResponse is the full bundle for POST /api/v1/datasets and
// GET /api/v1/datasets/{id}.
type AnalysisResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Encoding  string           `json:"encoding"`
	CreatedAt string           `json:"created_at"` // RFC3339
	Result    *pipeline.Result `json:"result"`
}

// SnapshotResponse is the envelope broadcast to WebSocket clients and is the
// payload shape of the periodic stream.
type SnapshotResponse struct {
	Analyses    []AnalysisMeta `json:"analyses"`
	GeneratedAt string         `json:"generated_at"` // RFC3339
}

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status        string `json:"status"`
	AnalysisCount int    `json:"analysis_count"`
	TotalWorkers  int    `json:"total_workers"`
	AlertCount    int    `json:"alert_count"`
}

// Error body kinds. Clients dispatch on Kind, never on the message text.
const (
	ErrKindUndecodable = "undecodable"
	ErrKindEmpty       = "empty"
	ErrKindSchema      = "schema"
	ErrKindDataRange   = "data_range"
)

// ErrorResponse is the JSON error body. Kind is set for upload validation
// failures; the detail fields are populated per kind.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`

	// MissingColumns is set when Kind == "schema".
	MissingColumns []string `json:"missing_columns,omitempty"`

	// Row, Worker and Value are set when Kind == "data_range".
	Row    int     `json:"row,omitempty"`
	Worker string  `json:"worker,omitempty"`
	Value  float64 `json:"value,omitempty"`
}

// toMeta maps a stored analysis to its list representation.
func toMeta(a *store.Analysis) AnalysisMeta {
	return AnalysisMeta{
		ID:        a.ID,
		Name:      a.Name,
		Encoding:  a.Encoding,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
		Summary:   a.Result.Summary,
	}
}

// toResponse maps a stored analysis to its full JSON representation.
func toResponse(a *store.Analysis) AnalysisResponse {
	return AnalysisResponse{
		ID:        a.ID,
		Name:      a.Name,
		Encoding:  a.Encoding,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
		Result:    a.Result,
	}
}

// BuildSnapshot assembles the broadcast payload from all live analyses.
func BuildSnapshot(st *store.Store) SnapshotResponse {
	entries := st.List()
	metas := make([]AnalysisMeta, 0, len(entries))
	for _, a := range entries {
		metas = append(metas, toMeta(a))
	}
	return SnapshotResponse{
		Analyses:    metas,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}
