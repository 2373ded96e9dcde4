package service

import (
	"testing"

	moderationModel "discovery_admin/internal/domain/moderation/model"
	"discovery_admin/internal/domain/moderation/rule"
	postModel "discovery_admin/internal/domain/post/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockModerationRepository is a mock of ModerationRepository
type MockModerationRepository struct {
	mock.Mock
}

func (m *MockModerationRepository) GetPostByID(id string) (*postModel.Post, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*postModel.Post), args.Error(1)
}

func (m *MockModerationRepository) UpdatePostStatus(id string, status string) error {
	args := m.Called(id, status)
	return args.Error(0)
}

func (m *MockModerationRepository) GetPostsByStatus(status string, limit int) ([]postModel.Post, error) {
	args := m.Called(status, limit)
	return args.Get(0).([]postModel.Post), args.Error(1)
}

func (m *MockModerationRepository) CountPostsByStatus(status string) (int64, error) {
	args := m.Called(status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockModerationRepository) CreateAction(action *moderationModel.ModerationAction) error {
	args := m.Called(action)
	return args.Error(0)
}

func (m *MockModerationRepository) GetActionsByPostID(postID string) ([]moderationModel.ModerationAction, error) {
	args := m.Called(postID)
	return args.Get(0).([]moderationModel.ModerationAction), args.Error(1)
}

func pendingPost(id, content string) *postModel.Post {
	p := &postModel.Post{Content: content, Status: postModel.StatusPending}
	p.ID = id
	return p
}

func newTestService(repo *MockModerationRepository, reg *rule.Registry) ModerationService {
	engine := NewEngine(reg, postModel.StatusApproved, PolicyFailSafe, nil)
	return NewModerationService(repo, engine, nil)
}

func TestEvaluatePost(t *testing.T) {
	t.Run("Pending post gets evaluated and persisted", func(t *testing.T) {
		repo := new(MockModerationRepository)
		service := newTestService(repo, rule.DefaultRegistry())
		post := pendingPost("post-1", "a normal post about coffee")

		repo.On("GetPostByID", "post-1").Return(post, nil)
		repo.On("UpdatePostStatus", "post-1", postModel.StatusApproved).Return(nil)
		repo.On("CreateAction", mock.AnythingOfType("*model.ModerationAction")).Return(nil)

		outcome, err := service.EvaluatePost("post-1")

		assert.NoError(t, err)
		assert.Equal(t, postModel.StatusApproved, outcome.Status)
		repo.AssertExpectations(t)
	})

	t.Run("Evaluation writes audit action with system moderator", func(t *testing.T) {
		repo := new(MockModerationRepository)
		service := newTestService(repo, rule.DefaultRegistry())
		post := pendingPost("post-2", "get rich with spamcoin")

		var recorded *moderationModel.ModerationAction
		repo.On("GetPostByID", "post-2").Return(post, nil)
		repo.On("UpdatePostStatus", "post-2", postModel.StatusRejected).Return(nil)
		repo.On("CreateAction", mock.AnythingOfType("*model.ModerationAction")).
			Run(func(args mock.Arguments) {
				recorded = args.Get(0).(*moderationModel.ModerationAction)
			}).Return(nil)

		_, err := service.EvaluatePost("post-2")

		assert.NoError(t, err)
		assert.NotNil(t, recorded)
		assert.Equal(t, moderationModel.SystemModerator, recorded.ModeratorID)
		assert.Equal(t, moderationModel.ActionEvaluate, recorded.Action)
		assert.Equal(t, postModel.StatusPending, recorded.FromStatus)
		assert.Equal(t, postModel.StatusRejected, recorded.ToStatus)
		assert.Equal(t, "banned_words", recorded.RuleName)
		repo.AssertExpectations(t)
	})

	t.Run("Non pending post is not re-evaluated", func(t *testing.T) {
		repo := new(MockModerationRepository)
		service := newTestService(repo, rule.DefaultRegistry())
		post := pendingPost("post-3", "already reviewed")
		post.Status = postModel.StatusApproved

		repo.On("GetPostByID", "post-3").Return(post, nil)

		outcome, err := service.EvaluatePost("post-3")

		assert.NoError(t, err)
		assert.Equal(t, postModel.StatusApproved, outcome.Status)
		repo.AssertNotCalled(t, "UpdatePostStatus", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "CreateAction", mock.Anything)
	})

	t.Run("Missing post returns error", func(t *testing.T) {
		repo := new(MockModerationRepository)
		service := newTestService(repo, rule.DefaultRegistry())

		repo.On("GetPostByID", "missing").Return(nil, gorm.ErrRecordNotFound)

		_, err := service.EvaluatePost("missing")

		assert.Error(t, err)
	})
}

func TestAdminOverride(t *testing.T) {
	t.Run("Approve overrides rejected post and records audit", func(t *testing.T) {
		repo := new(MockModerationRepository)
		service := newTestService(repo, rule.DefaultRegistry())
		post := pendingPost("post-4", "appealed post")
		post.Status = postModel.StatusRejected

		var recorded *moderationModel.ModerationAction
		repo.On("GetPostByID", "post-4").Return(post, nil)
		repo.On("UpdatePostStatus", "post-4", postModel.StatusApproved).Return(nil)
		repo.On("CreateAction", mock.AnythingOfType("*model.ModerationAction")).
			Run(func(args mock.Arguments) {
				recorded = args.Get(0).(*moderationModel.ModerationAction)
			}).Return(nil)

		err := service.ApprovePost("post-4", "mod-1", "appeal accepted", "")

		assert.NoError(t, err)
		assert.Equal(t, "mod-1", recorded.ModeratorID)
		assert.Equal(t, moderationModel.ActionApprove, recorded.Action)
		assert.Equal(t, postModel.StatusRejected, recorded.FromStatus)
		repo.AssertExpectations(t)
	})

	t.Run("Idempotent override skips status write but still audits", func(t *testing.T) {
		repo := new(MockModerationRepository)
		service := newTestService(repo, rule.DefaultRegistry())
		post := pendingPost("post-5", "already approved")
		post.Status = postModel.StatusApproved

		repo.On("GetPostByID", "post-5").Return(post, nil)
		repo.On("CreateAction", mock.AnythingOfType("*model.ModerationAction")).Return(nil)

		err := service.ApprovePost("post-5", "mod-1", "", "")

		assert.NoError(t, err)
		repo.AssertNotCalled(t, "UpdatePostStatus", mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
	})

	t.Run("Override of missing post fails", func(t *testing.T) {
		repo := new(MockModerationRepository)
		service := newTestService(repo, rule.DefaultRegistry())

		repo.On("GetPostByID", "missing").Return(nil, gorm.ErrRecordNotFound)

		err := service.RejectPost("missing", "mod-1", "", "")

		assert.ErrorIs(t, err, ErrPostNotFound)
	})
}

func TestTransitionGuard(t *testing.T) {
	cases := []struct {
		from     string
		to       string
		override bool
		want     bool
	}{
		{postModel.StatusPending, postModel.StatusApproved, false, true},
		{postModel.StatusPending, postModel.StatusRejected, false, true},
		{postModel.StatusPending, postModel.StatusFlagged, false, true},
		{postModel.StatusFlagged, postModel.StatusApproved, false, true},
		{postModel.StatusFlagged, postModel.StatusRejected, false, true},
		{postModel.StatusApproved, postModel.StatusRejected, false, false},
		{postModel.StatusRejected, postModel.StatusApproved, false, false},
		{postModel.StatusApproved, postModel.StatusRejected, true, true},
		{postModel.StatusApproved, postModel.StatusApproved, false, false},
		{postModel.StatusApproved, postModel.StatusApproved, true, true},
	}

	for _, c := range cases {
		got := postModel.ValidTransition(c.from, c.to, c.override)
		assert.Equal(t, c.want, got, "%s -> %s override=%v", c.from, c.to, c.override)
	}
}

func TestQueueStats(t *testing.T) {
	t.Run("Stats counted from repository without cache", func(t *testing.T) {
		repo := new(MockModerationRepository)
		service := newTestService(repo, rule.DefaultRegistry())

		repo.On("CountPostsByStatus", postModel.StatusPending).Return(int64(7), nil)
		repo.On("CountPostsByStatus", postModel.StatusFlagged).Return(int64(2), nil)

		stats, err := service.GetQueueStats()

		assert.NoError(t, err)
		assert.Equal(t, int64(7), stats.Pending)
		assert.Equal(t, int64(2), stats.Flagged)
		repo.AssertExpectations(t)
	})
}
