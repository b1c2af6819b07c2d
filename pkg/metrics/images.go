package metrics

import "github.com/prometheus/client_golang/prometheus"

// ImageMetrics tracks image ownership transitions and storage cleanup.
type ImageMetrics struct {
	claims         *prometheus.CounterVec
	deleteFailures *prometheus.CounterVec
}

func NewImageMetrics(reg prometheus.Registerer) *ImageMetrics {
	if reg == nil {
		return &ImageMetrics{}
	}
	claims := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "image_claims_total",
		Help: "Image claim attempts by entity type and result.",
	}, []string{"entity_type", "result"})
	deleteFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "image_file_delete_failures_total",
		Help: "Backing object deletions that failed and were skipped.",
	}, []string{"entity_type"})
	reg.MustRegister(claims, deleteFailures)
	return &ImageMetrics{claims: claims, deleteFailures: deleteFailures}
}

// IncClaim records a claim attempt; result is "claimed" or "conflict".
func (m *ImageMetrics) IncClaim(entityType, result string) {
	if m == nil || m.claims == nil {
		return
	}
	m.claims.WithLabelValues(normalizeLabel(entityType), normalizeLabel(result)).Inc()
}

func (m *ImageMetrics) IncDeleteFailure(entityType string) {
	if m == nil || m.deleteFailures == nil {
		return
	}
	m.deleteFailures.WithLabelValues(normalizeLabel(entityType)).Inc()
}
