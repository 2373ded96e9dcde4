package service

import (
	"discovery_admin/internal/domain/moderation/rule"
	postModel "discovery_admin/internal/domain/post/model"
	"discovery_admin/pkg/logger"
	"discovery_admin/pkg/metrics"

	"go.uber.org/zap"
)

// 规则执行失败策略
// fail_safe: 规则出错立即终止，结果为 flagged（默认，避免规则失效导致静默放行）
// skip: 跳过出错规则继续执行
const (
	PolicyFailSafe = "fail_safe"
	PolicySkip     = "skip"
)

// Outcome 规则链的最终评估结果
type Outcome struct {
	Status   string `json:"status"`
	Reason   string `json:"reason,omitempty"`
	RuleName string `json:"ruleName,omitempty"`
}

// Engine 审核规则引擎
// 按优先级降序遍历规则链，遇到 Continue=false 的结果短路
type Engine struct {
	registry      *rule.Registry
	defaultStatus string
	failurePolicy string
	collector     *metrics.Collector
}

// NewEngine 创建规则引擎
// defaultStatus 用于空规则链；failurePolicy 见 PolicyFailSafe / PolicySkip
func NewEngine(registry *rule.Registry, defaultStatus, failurePolicy string, collector *metrics.Collector) *Engine {
	if defaultStatus == "" {
		defaultStatus = postModel.StatusApproved
	}
	if failurePolicy == "" {
		failurePolicy = PolicyFailSafe
	}
	return &Engine{
		registry:      registry,
		defaultStatus: defaultStatus,
		failurePolicy: failurePolicy,
		collector:     collector,
	}
}

// RegisterRule 追加规则
func (e *Engine) RegisterRule(r rule.Rule) {
	e.registry.Register(r)
}

// EvaluatePost 运行规则链并返回最终状态
// 不落库，只计算；持久化由 ModerationService 负责
func (e *Engine) EvaluatePost(post *postModel.Post) *Outcome {
	rules := e.registry.Ordered()
	if len(rules) == 0 {
		return &Outcome{Status: e.defaultStatus}
	}

	var last *Outcome
	for _, r := range rules {
		result, err := r.Evaluate(post)
		if err != nil {
			e.collector.RecordRuleFailure(r.Name())
			if logger.Log != nil {
				logger.Log.Error("moderation rule failed",
					zap.String("rule", r.Name()),
					zap.String("post_id", post.ID),
					zap.Error(err))
			}

			if e.failurePolicy == PolicySkip {
				continue
			}

			// fail_safe：规则失效时保守处理，交人工复核
			return &Outcome{
				Status:   postModel.StatusFlagged,
				Reason:   "rule evaluation failed: " + err.Error(),
				RuleName: r.Name(),
			}
		}

		last = &Outcome{Status: result.Status, Reason: result.Reason, RuleName: r.Name()}
		if !result.Continue {
			return last
		}
	}

	// skip 策略下所有规则都可能出错被跳过
	if last == nil {
		return &Outcome{Status: e.defaultStatus}
	}
	return last
}
