package api

import (
	"net/http"
	"sync/atomic"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

// Metrics tracks processing counters and serves them on GET /metrics in
// Prometheus text exposition format. All methods are safe for concurrent use.
type Metrics struct {
	datasets           atomic.Int64
	rows               atomic.Int64
	coercions          atomic.Int64
	validationFailures atomic.Int64
}

// NewMetrics creates an empty counter set.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordDataset counts one successfully processed dataset with its row and
// coercion totals.
func (m *Metrics) RecordDataset(rows, coercions int) {
	m.datasets.Add(1)
	m.rows.Add(int64(rows))
	m.coercions.Add(int64(coercions))
}

// RecordValidationFailure counts one upload rejected during decode or
// normalization.
func (m *Metrics) RecordValidationFailure() {
	m.validationFailures.Add(1)
}

// ServeHTTP writes the current counters in Prometheus text format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	families := []*dto.MetricFamily{
		counterFamily("efficiency_datasets_processed_total",
			"Datasets successfully analyzed since startup.",
			float64(m.datasets.Load())),
		counterFamily("efficiency_rows_processed_total",
			"Worker rows normalized across all datasets.",
			float64(m.rows.Load())),
		counterFamily("efficiency_cell_coercions_total",
			"Cells coerced to missing during normalization.",
			float64(m.coercions.Load())),
		counterFamily("efficiency_validation_failures_total",
			"Uploads rejected during decode or normalization.",
			float64(m.validationFailures.Load())),
	}

	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	w.Header().Set("Content-Type", string(format))
	enc := expfmt.NewEncoder(w, format)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			// Client went away mid-write. Nothing useful to do.
			return
		}
	}
}

// counterFamily builds a single-sample counter MetricFamily.
func counterFamily(name, help string, v float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{
			{Counter: &dto.Counter{Value: proto.Float64(v)}},
		},
	}
}
