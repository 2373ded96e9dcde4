package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector 指标收集器，覆盖 HTTP 层和两个引擎的核心指标
type Collector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 审核引擎指标
	postsEvaluated *prometheus.CounterVec
	ruleFailures   *prometheus.CounterVec

	// 迁移引擎指标
	documentsMigrated *prometheus.CounterVec
	batchesCommitted  prometheus.Counter
	activeJobs        prometheus.Gauge

	// 故事模块指标
	storiesExpired prometheus.Counter
}

// NewCollector 创建指标收集器
func NewCollector() *Collector {
	return &Collector{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		postsEvaluated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moderation_posts_evaluated_total",
				Help: "Posts evaluated by the moderation rule chain, by final status",
			},
			[]string{"status"},
		),

		ruleFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moderation_rule_failures_total",
				Help: "Moderation rule evaluation errors, by rule name",
			},
			[]string{"rule"},
		),

		documentsMigrated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "migration_documents_total",
				Help: "Documents handled by migration jobs, by outcome (migrated/skipped/failed)",
			},
			[]string{"outcome"},
		),

		batchesCommitted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "migration_batches_committed_total",
				Help: "Committed migration write batches",
			},
		),

		activeJobs: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "migration_active_jobs",
				Help: "Currently running migration jobs",
			},
		),

		storiesExpired: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "stories_expired_total",
				Help: "Stories removed by the expiry sweep",
			},
		),
	}
}

// RecordHTTPRequest 记录 HTTP 请求
func (c *Collector) RecordHTTPRequest(method, endpoint, status string, durationSeconds float64) {
	if c == nil {
		return
	}
	c.httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	c.httpRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordEvaluation 记录一次审核评估结果
func (c *Collector) RecordEvaluation(status string) {
	if c == nil {
		return
	}
	c.postsEvaluated.WithLabelValues(status).Inc()
}

// RecordRuleFailure 记录规则执行失败
func (c *Collector) RecordRuleFailure(rule string) {
	if c == nil {
		return
	}
	c.ruleFailures.WithLabelValues(rule).Inc()
}

// RecordMigrationOutcome 记录迁移文档处理结果
func (c *Collector) RecordMigrationOutcome(outcome string, n int) {
	if c == nil {
		return
	}
	c.documentsMigrated.WithLabelValues(outcome).Add(float64(n))
}

// RecordBatchCommit 记录一次批量提交
func (c *Collector) RecordBatchCommit() {
	if c == nil {
		return
	}
	c.batchesCommitted.Inc()
}

// JobStarted 活跃任务数 +1（nil collector 为空操作，便于测试）
func (c *Collector) JobStarted() {
	if c == nil {
		return
	}
	c.activeJobs.Inc()
}

func (c *Collector) JobFinished() {
	if c == nil {
		return
	}
	c.activeJobs.Dec()
}

// RecordStoriesExpired 记录过期清理数量
func (c *Collector) RecordStoriesExpired(n int) {
	if c == nil {
		return
	}
	c.storiesExpired.Add(float64(n))
}
