package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 注册表核心指标，挂在默认 registry 上，由 /metrics 暴露。
var (
	RentalsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carrentlink_rentals_total",
		Help: "Total number of successful rent operations.",
	})

	ReturnsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carrentlink_returns_total",
		Help: "Total number of successful return operations.",
	})

	OperationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carrentlink_operation_errors_total",
		Help: "Registry operation failures by operation and error kind.",
	}, []string{"op", "kind"})

	AvailableCars = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "carrentlink_available_cars",
		Help: "Cars currently available for rent.",
	})

	MirrorFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carrentlink_mirror_failures_total",
		Help: "Failed write-throughs to the persistence mirror.",
	})
)

// Handler 返回 Prometheus 抓取端点。
func Handler() http.Handler {
	return promhttp.Handler()
}
