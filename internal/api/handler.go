package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Edneylin/factory-efficiency-analysis/internal/alerts"
	"github.com/Edneylin/factory-efficiency-analysis/internal/dataset"
	"github.com/Edneylin/factory-efficiency-analysis/internal/pipeline"
	"github.com/Edneylin/factory-efficiency-analysis/internal/report"
	"github.com/Edneylin/factory-efficiency-analysis/internal/store"
)

// maxUploadBytes caps the CSV request body. 32 MiB covers any plausible
// per-shift export.
const maxUploadBytes = 32 << 20

// Sender delivers a rendered report by email. *mailer.Mailer implements it.
type Sender interface {
	Send(subject string, html []byte) error
}

// Handler is the HTTP handler for all /api/v1/* endpoints.
// It runs the analysis pipeline on uploads and reads results back from the store.
type Handler struct {
	store   *store.Store
	engine  *alerts.Engine
	sender  Sender // nil when report mail is disabled
	opts    pipeline.Options
	metrics *Metrics
	mux     *http.ServeMux
}

// New creates a Handler wired to the given store and alert engine and
// registers all routes. sender may be nil.
func New(st *store.Store, engine *alerts.Engine, sender Sender, opts pipeline.Options, m *Metrics) *Handler {
	h := &Handler{store: st, engine: engine, sender: sender, opts: opts, metrics: m, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/datasets", h.datasets)
	h.mux.HandleFunc("/api/v1/datasets/", h.getDataset) // subtree — extracts {id}
	h.mux.HandleFunc("/api/v1/alerts", h.alerts)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// datasets dispatches /api/v1/datasets: POST uploads a CSV, GET lists analyses.
func (h *Handler) datasets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createDataset(w, r)
	case http.MethodGet:
		h.listDatasets(w, r)
	default:
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// createDataset handles POST /api/v1/datasets?name= — the whole pipeline in
// one request: decode, normalize, aggregate, classify, store, alert, mail.
func (h *Handler) createDataset(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload.csv"
	}

	body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
	tbl, encoding, err := dataset.Decode(body)
	if err != nil {
		h.metrics.RecordValidationFailure()
		writeDecodeError(w, err)
		return
	}

	res, err := pipeline.Run(tbl, h.opts)
	if err != nil {
		h.metrics.RecordValidationFailure()
		writePipelineError(w, err)
		return
	}

	a := &store.Analysis{
		ID:       store.NewID(),
		Name:     name,
		Encoding: encoding,
		Result:   res,
	}
	h.store.Put(a)
	h.metrics.RecordDataset(len(res.Table.Records), res.Table.Coercions)

	slog.Info("dataset analyzed",
		"id", a.ID,
		"name", a.Name,
		"encoding", a.Encoding,
		"rows", len(res.Table.Records),
		"coercions", res.Table.Coercions,
	)

	if h.engine != nil {
		h.engine.Evaluate(a)
	}
	if h.sender != nil {
		go h.mailReport(a)
	}

	jsonResp(w, http.StatusCreated, toResponse(a))
}

// listDatasets returns GET /api/v1/datasets — all live analyses, newest first.
func (h *Handler) listDatasets(w http.ResponseWriter, _ *http.Request) {
	entries := h.store.List()
	out := make([]AnalysisMeta, 0, len(entries))
	for _, a := range entries {
		out = append(out, toMeta(a))
	}
	jsonResp(w, http.StatusOK, out)
}

// getDataset serves the /api/v1/datasets/{id} subtree:
//
//	GET /api/v1/datasets/{id}         — full bundle JSON
//	GET /api/v1/datasets/{id}/report  — rendered HTML report
//	GET /api/v1/datasets/{id}/csv     — processed CSV download
func (h *Handler) getDataset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/datasets/")
	if rest == "" {
		h.listDatasets(w, r)
		return
	}
	id, sub, _ := strings.Cut(rest, "/")

	a, ok := h.store.Get(id)
	if !ok {
		jsonErr(w, http.StatusNotFound, "analysis not found")
		return
	}
	// Exclude stale entries — treat them as not found.
	if time.Since(a.CreatedAt) > h.store.TTL() {
		jsonErr(w, http.StatusNotFound, "analysis not found")
		return
	}

	switch sub {
	case "":
		jsonResp(w, http.StatusOK, toResponse(a))
	case "report":
		h.serveReport(w, a)
	case "csv":
		h.serveCSV(w, a)
	default:
		jsonErr(w, http.StatusNotFound, "not found")
	}
}

// serveReport renders and returns the HTML report for a.
func (h *Handler) serveReport(w http.ResponseWriter, a *store.Analysis) {
	data := report.Build(a.Name, a.Result, time.Now())
	html, err := data.HTML()
	if err != nil {
		slog.Error("report render failed", "id", a.ID, "err", err)
		jsonErr(w, http.StatusInternalServerError, "report render failed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(html)
}

// serveCSV streams the processed table as a UTF-8 CSV download.
func (h *Handler) serveCSV(w http.ResponseWriter, a *store.Analysis) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "processed_"+a.Name))
	if err := dataset.WriteCSV(w, a.Result.Table); err != nil {
		slog.Error("csv export failed", "id", a.ID, "err", err)
	}
}

// alerts returns GET /api/v1/alerts — firing plus recently resolved alerts.
func (h *Handler) alerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.engine == nil {
		jsonResp(w, http.StatusOK, []struct{}{})
		return
	}
	jsonResp(w, http.StatusOK, h.engine.Active())
}

// health returns GET /api/v1/health — analysis counts and workforce totals.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := h.store.List()
	resp := HealthResponse{
		Status:        "ok",
		AnalysisCount: len(entries),
	}
	for _, a := range entries {
		resp.TotalWorkers += a.Result.Summary.TotalWorkers
	}
	if h.engine != nil {
		resp.AlertCount = len(h.engine.Active())
	}
	jsonResp(w, http.StatusOK, resp)
}

// mailReport renders the report for a and emails it. Runs in its own
// goroutine; failures are logged, never surfaced to the uploader.
func (h *Handler) mailReport(a *store.Analysis) {
	data := report.Build(a.Name, a.Result, time.Now())
	html, err := data.HTML()
	if err != nil {
		slog.Error("report render for mail failed", "id", a.ID, "err", err)
		return
	}
	subject := fmt.Sprintf("Efficiency report: %s", a.Name)
	if err := h.sender.Send(subject, html); err != nil {
		slog.Error("report mail failed", "id", a.ID, "err", err)
		return
	}
	slog.Info("report mailed", "id", a.ID, "name", a.Name)
}

// --- error mapping ----------------------------------------------------------

// writeDecodeError maps dataset decode failures to 400 with a typed body.
func writeDecodeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dataset.ErrUndecodable):
		jsonResp(w, http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Kind:  ErrKindUndecodable,
		})
	case errors.Is(err, dataset.ErrEmpty):
		jsonResp(w, http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Kind:  ErrKindEmpty,
		})
	default:
		jsonErr(w, http.StatusBadRequest, err.Error())
	}
}

// writePipelineError maps normalization failures to 422 with a typed body.
func writePipelineError(w http.ResponseWriter, err error) {
	var schemaErr *pipeline.SchemaError
	if errors.As(err, &schemaErr) {
		jsonResp(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:          err.Error(),
			Kind:           ErrKindSchema,
			MissingColumns: schemaErr.Missing,
		})
		return
	}
	var rangeErr *pipeline.DataRangeError
	if errors.As(err, &rangeErr) {
		jsonResp(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  err.Error(),
			Kind:   ErrKindDataRange,
			Row:    rangeErr.Row,
			Worker: rangeErr.Worker,
			Value:  rangeErr.Value,
		})
		return
	}
	jsonErr(w, http.StatusUnprocessableEntity, err.Error())
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, ErrorResponse{Error: msg})
}
