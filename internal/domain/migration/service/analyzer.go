package service

import (
	"sort"
	"strings"

	"discovery_admin/internal/domain/migration/repository"
)

// TaxonomyEntry 兴趣条目：标识、规范名称、同义词
type TaxonomyEntry struct {
	Slug     string
	Name     string
	Keywords []string
}

// TaxonomyProvider 提供合法兴趣集合，由 interest 模块适配实现
type TaxonomyProvider interface {
	Entries() ([]TaxonomyEntry, error)
}

// TagSuggestion 单个标签的映射建议
type TagSuggestion struct {
	Tag               string  `json:"tag"`
	Frequency         int     `json:"frequency"`
	SuggestedInterest string  `json:"suggestedInterest,omitempty"`
	Confidence        float64 `json:"confidence"`
}

// analyzer 标签分析器：词频统计 + 关键词子串匹配 + 置信度打分
// 纯启发式，完全由兴趣同义词表和频率阈值决定
type analyzer struct {
	repo     repository.MigrationRepository
	taxonomy TaxonomyProvider
}

// normalizeTag 标签归一化：小写 + 去首尾空白
func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// AnalyzeTags 读取至多 limit 篇帖子，统计归一化标签词频并给出建议映射
func (a *analyzer) AnalyzeTags(limit int, excludeExisting bool) ([]TagSuggestion, error) {
	if limit <= 0 {
		limit = 1000
	}

	posts, err := a.repo.SamplePosts(limit, excludeExisting)
	if err != nil {
		return nil, err
	}

	// 词频统计
	freq := make(map[string]int)
	for i := range posts {
		for _, tag := range posts[i].LegacyTags() {
			norm := normalizeTag(tag)
			if norm == "" {
				continue
			}
			freq[norm]++
		}
	}

	entries, err := a.taxonomy.Entries()
	if err != nil {
		return nil, err
	}

	suggestions := make([]TagSuggestion, 0, len(freq))
	for tag, count := range freq {
		slug := suggestInterest(tag, entries)
		suggestions = append(suggestions, TagSuggestion{
			Tag:               tag,
			Frequency:         count,
			SuggestedInterest: slug,
			Confidence:        confidence(tag, count, slug, entries),
		})
	}

	// 高频在前，同频按标签字典序，保证输出确定
	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Frequency != suggestions[j].Frequency {
			return suggestions[i].Frequency > suggestions[j].Frequency
		}
		return suggestions[i].Tag < suggestions[j].Tag
	})

	return suggestions, nil
}

// suggestInterest 关键词子串匹配，返回第一个命中的兴趣标识
// entries 顺序稳定（按 slug 排序后遍历），避免建议结果抖动
func suggestInterest(tag string, entries []TaxonomyEntry) string {
	ordered := make([]TaxonomyEntry, len(entries))
	copy(ordered, entries)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Slug < ordered[j].Slug })

	for _, e := range ordered {
		if tag == e.Slug || tag == strings.ToLower(e.Name) {
			return e.Slug
		}
		for _, kw := range e.Keywords {
			kw = normalizeTag(kw)
			if kw == "" {
				continue
			}
			if strings.Contains(tag, kw) || strings.Contains(kw, tag) {
				return e.Slug
			}
		}
	}
	return ""
}

// confidence 置信度打分
// 基准 0.3；频率档位 <10:+0.1 ≥10:+0.2 ≥50:+0.3 ≥100:+0.4；
// 与规范兴趣名完全一致再 +0.3；上限 1.0
func confidence(tag string, frequency int, slug string, entries []TaxonomyEntry) float64 {
	if slug == "" {
		return 0
	}

	score := 0.3

	switch {
	case frequency >= 100:
		score += 0.4
	case frequency >= 50:
		score += 0.3
	case frequency >= 10:
		score += 0.2
	default:
		score += 0.1
	}

	for _, e := range entries {
		if tag == e.Slug || tag == strings.ToLower(e.Name) {
			score += 0.3
			break
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
