// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 生成クライアントやサービス層、HTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordGenerationSuccess()
	RecordGenerationFailure(reason string)
	RecordParseFailure()
	RecordGenerationLatency(duration time.Duration)
	RecordSkillMapOperation(op string)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	generationSuccess prometheus.Counter
	generationFail    *prometheus.CounterVec
	parseFail         prometheus.Counter
	generationLatency prometheus.Histogram
	skillMapOps       *prometheus.CounterVec
	httpStatus        *prometheus.CounterVec
}

var _ MetricsCollector = (*Collector)(nil)

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		generationSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skillmap_generation_success_total",
			Help: "軸・象限設定の生成成功の合計数",
		}),
		generationFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillmap_generation_fail_total",
			Help: "軸・象限設定の生成失敗の合計数（理由別）",
		}, []string{"reason"}),
		parseFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skillmap_generation_parse_fail_total",
			Help: "生成レスポンスのパース失敗の合計数",
		}),
		generationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "skillmap_generation_latency_seconds",
			Help:    "生成呼び出しのレイテンシ（秒）",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
		skillMapOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillmap_persistence_operations_total",
			Help: "スキルマップ永続化操作の合計数（操作別）",
		}, []string{"op"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillmap_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.generationSuccess,
		c.generationFail,
		c.parseFail,
		c.generationLatency,
		c.skillMapOps,
		c.httpStatus,
	)

	return c
}

// RecordGenerationSuccess は生成成功を記録する。
func (c *Collector) RecordGenerationSuccess() {
	c.generationSuccess.Inc()
}

// RecordGenerationFailure は生成失敗を記録する。
func (c *Collector) RecordGenerationFailure(reason string) {
	c.generationFail.WithLabelValues(reason).Inc()
}

// RecordParseFailure はパース失敗を記録する。
func (c *Collector) RecordParseFailure() {
	c.parseFail.Inc()
}

// RecordGenerationLatency は生成呼び出しのレイテンシを記録する。
func (c *Collector) RecordGenerationLatency(duration time.Duration) {
	c.generationLatency.Observe(duration.Seconds())
}

// RecordSkillMapOperation は永続化操作（create, update, list, get, delete）を記録する。
func (c *Collector) RecordSkillMapOperation(op string) {
	c.skillMapOps.WithLabelValues(op).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Nop は何も記録しないMetricsCollector。メトリクス未設定時やテストで使う。
type Nop struct{}

func (Nop) RecordGenerationSuccess() {}
func (Nop) RecordGenerationFailure(string) {}
func (Nop) RecordParseFailure() {}
func (Nop) RecordGenerationLatency(time.Duration) {}
func (Nop) RecordSkillMapOperation(string) {}
func (Nop) RecordHTTPStatus(int) {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
