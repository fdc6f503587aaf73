package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latencia de puntuar un item (perfil + ajuste + buckets).
	MatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "match_score_duration_seconds",
		Help:    "Latency of scoring a single catalog item",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
	})

	// Puntajes emitidos por confianza del perfil y si se uso el fallback sin tags.
	MatchScoresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_scores_total",
			Help: "Match results produced, by profile confidence and fallback",
		},
		[]string{"confidence", "fallback"},
	)

	MatchScoreValue = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "match_score_value",
		Help:    "Distribution of final match scores",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})

	// Resultado de las lecturas de la cache de rasgos: hit, miss, error.
	TraitCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tag_trait_cache_lookups_total",
			Help: "Tag trait cache lookups by result",
		},
		[]string{"result"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency of HTTP handlers",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Init registra los collectors en el registry por defecto. Llamar una sola vez.
func Init() {
	prometheus.MustRegister(
		MatchDuration,
		MatchScoresTotal,
		MatchScoreValue,
		TraitCacheLookups,
		HTTPRequestDuration,
	)
}
