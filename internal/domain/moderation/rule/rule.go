package rule

import (
	"sort"

	moderationModel "discovery_admin/internal/domain/moderation/model"
	postModel "discovery_admin/internal/domain/post/model"
)

// Rule 审核规则接口
// 实现必须无状态：同一个实例会被并发的评估调用复用
type Rule interface {
	// Name 规则名称，用于审计与指标
	Name() string

	// Priority 优先级，数值越大越先执行
	Priority() int

	// Evaluate 评估帖子，返回结果或错误
	Evaluate(post *postModel.Post) (*moderationModel.Result, error)
}

// Registry 规则注册表
// 同优先级规则保持注册顺序（稳定排序），与容器迭代顺序无关
type Registry struct {
	rules []Rule
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register 追加规则，名称不要求唯一
func (r *Registry) Register(rule Rule) {
	r.rules = append(r.rules, rule)
}

// Ordered 按优先级降序返回规则，同优先级按注册顺序
func (r *Registry) Ordered() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority() > out[j].Priority()
	})
	return out
}

// Len 已注册规则数量
func (r *Registry) Len() int {
	return len(r.rules)
}
