package rule

import (
	"fmt"
	"strings"

	moderationModel "discovery_admin/internal/domain/moderation/model"
	postModel "discovery_admin/internal/domain/post/model"
)

// BannedWordsRule 命中违禁词直接拒绝
type BannedWordsRule struct {
	Words []string
}

func (r *BannedWordsRule) Name() string  { return "banned_words" }
func (r *BannedWordsRule) Priority() int { return 100 }

func (r *BannedWordsRule) Evaluate(post *postModel.Post) (*moderationModel.Result, error) {
	content := strings.ToLower(post.Content)
	for _, w := range r.Words {
		if w == "" {
			continue
		}
		if strings.Contains(content, strings.ToLower(w)) {
			return &moderationModel.Result{
				Status:   postModel.StatusRejected,
				Reason:   "content contains banned word",
				Metadata: map[string]string{"word": w},
				Continue: false,
			}, nil
		}
	}
	return &moderationModel.Result{Status: postModel.StatusApproved, Continue: true}, nil
}

// LinkSpamRule 链接过多标记待人工复核
type LinkSpamRule struct {
	MaxLinks int
}

func (r *LinkSpamRule) Name() string  { return "link_spam" }
func (r *LinkSpamRule) Priority() int { return 80 }

func (r *LinkSpamRule) Evaluate(post *postModel.Post) (*moderationModel.Result, error) {
	count := strings.Count(post.Content, "http://") + strings.Count(post.Content, "https://")
	if count > r.MaxLinks {
		return &moderationModel.Result{
			Status:   postModel.StatusFlagged,
			Reason:   fmt.Sprintf("post contains %d links (max %d)", count, r.MaxLinks),
			Continue: false,
		}, nil
	}
	return &moderationModel.Result{Status: postModel.StatusApproved, Continue: true}, nil
}

// TagCountRule 标签数量超限标记
type TagCountRule struct {
	MaxTags int
}

func (r *TagCountRule) Name() string  { return "tag_count" }
func (r *TagCountRule) Priority() int { return 60 }

func (r *TagCountRule) Evaluate(post *postModel.Post) (*moderationModel.Result, error) {
	n := len(post.LegacyTags())
	if n > r.MaxTags {
		return &moderationModel.Result{
			Status:   postModel.StatusFlagged,
			Reason:   fmt.Sprintf("post carries %d tags (max %d)", n, r.MaxTags),
			Continue: false,
		}, nil
	}
	return &moderationModel.Result{Status: postModel.StatusApproved, Continue: true}, nil
}

// EmptyContentRule 空内容且无媒体直接拒绝
type EmptyContentRule struct{}

func (r *EmptyContentRule) Name() string  { return "empty_content" }
func (r *EmptyContentRule) Priority() int { return 90 }

func (r *EmptyContentRule) Evaluate(post *postModel.Post) (*moderationModel.Result, error) {
	if strings.TrimSpace(post.Content) == "" && len(post.MediaURLs) == 0 {
		return &moderationModel.Result{
			Status:   postModel.StatusRejected,
			Reason:   "post has no content",
			Continue: false,
		}, nil
	}
	return &moderationModel.Result{Status: postModel.StatusApproved, Continue: true}, nil
}

// DefaultRegistry 内置规则链
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.Register(&BannedWordsRule{Words: []string{"spamcoin", "free-money"}})
	reg.Register(&EmptyContentRule{})
	reg.Register(&LinkSpamRule{MaxLinks: 3})
	reg.Register(&TagCountRule{MaxTags: 20})
	return reg
}
