package service

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"discovery_admin/internal/domain/migration/model"
	"discovery_admin/internal/domain/migration/repository"
	postModel "discovery_admin/internal/domain/post/model"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// fakeMigrationRepo is an in-memory MigrationRepository
// The batch loop runs on its own goroutine, so all state is mutex guarded
// and onBatch lets tests intervene at a deterministic point inside a run.
type fakeMigrationRepo struct {
	mu        sync.Mutex
	jobs      map[string]model.MigrationJob
	rollbacks map[string]model.RollbackJob
	posts     []postModel.Post
	batches   [][]repository.PostUpdate
	seq       int
	onBatch   func()
}

func newFakeMigrationRepo() *fakeMigrationRepo {
	return &fakeMigrationRepo{
		jobs:      make(map[string]model.MigrationJob),
		rollbacks: make(map[string]model.RollbackJob),
	}
}

func (f *fakeMigrationRepo) addPost(p postModel.Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, p)
}

func (f *fakeMigrationRepo) jobStatus(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jobs[id].Status
}

func (f *fakeMigrationRepo) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

func (f *fakeMigrationRepo) CreateJob(job *model.MigrationJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if job.ID == "" {
		f.seq++
		job.ID = fmt.Sprintf("job-%d", f.seq)
	}
	f.jobs[job.ID] = *job
	return nil
}

func (f *fakeMigrationRepo) GetJob(id string) (*model.MigrationJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &job, nil
}

func (f *fakeMigrationRepo) ListJobs(offset, limit int) ([]model.MigrationJob, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.MigrationJob, 0, len(f.jobs))
	for _, j := range f.jobs {
		out = append(out, j)
	}
	return out, int64(len(f.jobs)), nil
}

func (f *fakeMigrationRepo) SaveJob(job *model.MigrationJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[job.ID] = *job
	return nil
}

func (f *fakeMigrationRepo) UpdateJobStatus(id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	job.Status = status
	f.jobs[id] = job
	return nil
}

func (f *fakeMigrationRepo) DeleteTerminalJobsBefore(cutoff time.Time, statuses []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	terminal := make(map[string]struct{}, len(statuses))
	for _, s := range statuses {
		terminal[s] = struct{}{}
	}
	var deleted int64
	for id, job := range f.jobs {
		if _, ok := terminal[job.Status]; ok && job.CreatedAt.Before(cutoff) {
			delete(f.jobs, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeMigrationRepo) CreateRollbackJob(job *model.RollbackJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if job.ID == "" {
		f.seq++
		job.ID = fmt.Sprintf("rollback-%d", f.seq)
	}
	f.rollbacks[job.ID] = *job
	return nil
}

func (f *fakeMigrationRepo) SaveRollbackJob(job *model.RollbackJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rollbacks[job.ID] = *job
	return nil
}

func (f *fakeMigrationRepo) GetCandidatePosts(limit int) ([]postModel.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]postModel.Post, len(f.posts))
	copy(out, f.posts)
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeMigrationRepo) SamplePosts(limit int, excludeMigrated bool) ([]postModel.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]postModel.Post, 0, len(f.posts))
	for _, p := range f.posts {
		if excludeMigrated && !p.NeedsMigration() {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeMigrationRepo) ApplyMigrationBatch(updates []repository.PostUpdate) error {
	f.mu.Lock()
	f.batches = append(f.batches, updates)
	for _, u := range updates {
		for i := range f.posts {
			if f.posts[i].ID == u.PostID {
				migrationID := u.MigrationID
				migratedAt := u.MigratedAt
				f.posts[i].InterestIDs = u.InterestIDs
				f.posts[i].MigrationID = &migrationID
				f.posts[i].MigratedAt = &migratedAt
			}
		}
	}
	hook := f.onBatch
	f.onBatch = nil // fire once
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return nil
}

func (f *fakeMigrationRepo) GetPostsByMigrationID(migrationID string, limit int) ([]postModel.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []postModel.Post
	for _, p := range f.posts {
		if p.MigrationID != nil && *p.MigrationID == migrationID {
			out = append(out, p)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeMigrationRepo) CountPostsByMigrationID(migrationID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, p := range f.posts {
		if p.MigrationID != nil && *p.MigrationID == migrationID {
			count++
		}
	}
	return count, nil
}

func (f *fakeMigrationRepo) ApplyRollbackBatch(migrationID string, postIDs []string, rollbackID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	ids := make(map[string]struct{}, len(postIDs))
	for _, id := range postIDs {
		ids[id] = struct{}{}
	}
	for i := range f.posts {
		if _, ok := ids[f.posts[i].ID]; !ok {
			continue
		}
		f.posts[i].InterestIDs = nil
		f.posts[i].MigrationID = nil
		f.posts[i].MigratedAt = nil
		f.posts[i].RollbackID = &rollbackID
		f.posts[i].RolledBackAt = &now
	}
	return nil
}

// fakeInterestCounter records post count adjustments per interest slug.
type fakeInterestCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (f *fakeInterestCounter) IncrementPostCount(slug string, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counts == nil {
		f.counts = make(map[string]int)
	}
	f.counts[slug] += delta
	return nil
}

func (f *fakeInterestCounter) count(slug string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[slug]
}

func newTestMigrationService(repo *fakeMigrationRepo) MigrationService {
	service, _ := newCountingMigrationService(repo)
	return service
}

func newCountingMigrationService(repo *fakeMigrationRepo) (MigrationService, *fakeInterestCounter) {
	counter := &fakeInterestCounter{}
	return NewMigrationService(repo, testTaxonomy(), counter, Options{
		DefaultBatchSize: 100,
		MaxWriteBatch:    500,
	}, nil), counter
}

func seedPosts(repo *fakeMigrationRepo, n int, tag string) {
	for i := 0; i < n; i++ {
		repo.addPost(taggedPost(fmt.Sprintf("post-%03d", i), tag))
	}
}

func waitForTerminal(t *testing.T, repo *fakeMigrationRepo, jobID string) {
	t.Helper()
	assert.Eventually(t, func() bool {
		switch repo.jobStatus(jobID) {
		case model.StatusCompleted, model.StatusFailed, model.StatusStopped, model.StatusPaused:
			return true
		}
		return false
	}, 5*time.Second, 5*time.Millisecond)
}

func TestValidateConfig(t *testing.T) {
	repo := newFakeMigrationRepo()
	service := newTestMigrationService(repo)

	t.Run("Valid config passes", func(t *testing.T) {
		result, err := service.ValidateConfig(model.MigrationConfig{
			TagMappings: map[string]string{"sneakers": "fashion"},
			BatchSize:   100,
		})

		assert.NoError(t, err)
		assert.True(t, result.Valid)
		assert.Empty(t, result.Errors)
	})

	t.Run("Empty mappings rejected", func(t *testing.T) {
		result, err := service.ValidateConfig(model.MigrationConfig{BatchSize: 100})

		assert.NoError(t, err)
		assert.False(t, result.Valid)
		assert.NotEmpty(t, result.Errors)
	})

	t.Run("Unknown interest rejected", func(t *testing.T) {
		result, err := service.ValidateConfig(model.MigrationConfig{
			TagMappings: map[string]string{"sneakers": "no-such-interest"},
			BatchSize:   100,
		})

		assert.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Contains(t, result.Errors[0], "no-such-interest")
	})

	t.Run("Out of range batch size only warns", func(t *testing.T) {
		result, err := service.ValidateConfig(model.MigrationConfig{
			TagMappings: map[string]string{"sneakers": "fashion"},
			BatchSize:   5,
		})

		assert.NoError(t, err)
		assert.True(t, result.Valid)
		assert.NotEmpty(t, result.Warnings)
	})

	t.Run("Common unmapped tag warns", func(t *testing.T) {
		seedPosts(repo, 12, "gym")

		result, err := service.ValidateConfig(model.MigrationConfig{
			TagMappings: map[string]string{"sneakers": "fashion"},
			BatchSize:   100,
		})

		assert.NoError(t, err)
		assert.True(t, result.Valid)
		found := false
		for _, w := range result.Warnings {
			if strings.Contains(w, "gym") {
				found = true
			}
		}
		assert.True(t, found, "expected a warning about the unmapped gym tag")
	})

	t.Run("Mapping keys are normalized before the common tag check", func(t *testing.T) {
		seedPosts(repo, 12, "Sneakers")

		result, err := service.ValidateConfig(model.MigrationConfig{
			TagMappings: map[string]string{" Sneakers ": "fashion"},
			BatchSize:   100,
		})

		assert.NoError(t, err)
		assert.True(t, result.Valid)
		for _, w := range result.Warnings {
			assert.NotContains(t, w, "sneakers")
		}
	})
}

func TestCreateJob(t *testing.T) {
	t.Run("Invalid config refused", func(t *testing.T) {
		repo := newFakeMigrationRepo()
		service := newTestMigrationService(repo)

		_, err := service.CreateJob(model.MigrationConfig{}, "admin-1")

		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("Mapping keys are normalized", func(t *testing.T) {
		repo := newFakeMigrationRepo()
		service := newTestMigrationService(repo)

		job, err := service.CreateJob(model.MigrationConfig{
			TagMappings: map[string]string{" Sneakers ": "fashion"},
			BatchSize:   100,
		}, "admin-1")

		assert.NoError(t, err)
		assert.Equal(t, model.StatusCreated, job.Status)
		assert.Equal(t, "fashion", job.Config.TagMappings["sneakers"])
		assert.Equal(t, "admin-1", job.Metadata.CreatedBy)
	})

	t.Run("Missing batch size gets default", func(t *testing.T) {
		repo := newFakeMigrationRepo()
		service := newTestMigrationService(repo)

		job, err := service.CreateJob(model.MigrationConfig{
			TagMappings: map[string]string{"sneakers": "fashion"},
		}, "admin-1")

		assert.NoError(t, err)
		assert.Equal(t, 100, job.Config.BatchSize)
	})
}

func TestRunMigration(t *testing.T) {
	t.Run("Full run migrates all mapped posts", func(t *testing.T) {
		repo := newFakeMigrationRepo()
		service := newTestMigrationService(repo)
		seedPosts(repo, 25, "Sneakers")

		job, err := service.CreateJob(model.MigrationConfig{
			TagMappings: map[string]string{"sneakers": "fashion"},
			BatchSize:   10,
		}, "admin-1")
		assert.NoError(t, err)

		assert.NoError(t, service.StartJob(job.ID))
		waitForTerminal(t, repo, job.ID)

		final, err := service.GetJob(job.ID)
		assert.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, final.Status)
		assert.Equal(t, 25, final.Progress.Total)
		assert.Equal(t, 25, final.Progress.Processed)
		assert.Equal(t, 25, final.Progress.Migrated)
		assert.Equal(t, 0, final.Progress.Skipped)
		assert.Equal(t, 0, final.Progress.Failed)
		assert.Equal(t, 100, final.Progress.Percentage)
		assert.NotNil(t, final.Metadata.CompletedAt)
		// 25 posts in batches of 10 -> 3 commits
		assert.Equal(t, 3, repo.batchCount())

		count, err := repo.CountPostsByMigrationID(job.ID)
		assert.NoError(t, err)
		assert.Equal(t, int64(25), count)
	})

	t.Run("Interest post counts track migration and rollback", func(t *testing.T) {
		repo := newFakeMigrationRepo()
		service, counter := newCountingMigrationService(repo)
		seedPosts(repo, 25, "Sneakers")

		job, err := service.CreateJob(model.MigrationConfig{
			TagMappings: map[string]string{"sneakers": "fashion"},
			BatchSize:   10,
		}, "admin-1")
		assert.NoError(t, err)

		assert.NoError(t, service.StartJob(job.ID))
		waitForTerminal(t, repo, job.ID)
		assert.Equal(t, 25, counter.count("fashion"))

		_, err = service.Rollback(job.ID, "admin-1")
		assert.NoError(t, err)
		assert.Equal(t, 0, counter.count("fashion"))
	})

	t.Run("Dry run leaves interest post counts untouched", func(t *testing.T) {
		repo := newFakeMigrationRepo()
		service, counter := newCountingMigrationService(repo)
		seedPosts(repo, 25, "Sneakers")

		job, _ := service.CreateJob(model.MigrationConfig{
			TagMappings: map[string]string{"sneakers": "fashion"},
			BatchSize:   10,
			DryRun:      true,
		}, "admin-1")

		assert.NoError(t, service.StartJob(job.ID))
		waitForTerminal(t, repo, job.ID)

		assert.Equal(t, 0, counter.count("fashion"))
	})

	t.Run("Unmapped posts are skipped", func(t *testing.T) {
		repo := newFakeMigrationRepo()
		service := newTestMigrationService(repo)
		seedPosts(repo, 5, "Sneakers")
		repo.addPost(taggedPost("post-odd", "unmappable"))

		job, _ := service.CreateJob(model.MigrationConfig{
			TagMappings: map[string]string{"sneakers": "fashion"},
			BatchSize:   10,
		}, "admin-1")

		assert.NoError(t, service.StartJob(job.ID))
		waitForTerminal(t, repo, job.ID)

		final, _ := service.GetJob(job.ID)
		assert.Equal(t, model.StatusCompleted, final.Status)
		assert.Equal(t, 6, final.Progress.Processed)
		assert.Equal(t, 5, final.Progress.Migrated)
		assert.Equal(t, 1, final.Progress.Skipped)
	})

	t.Run("Dry run writes nothing and can repeat", func(t *testing.T) {
		repo := newFakeMigrationRepo()
		service := newTestMigrationService(repo)
		seedPosts(repo, 25, "Sneakers")

		job, _ := service.CreateJob(model.MigrationConfig{
			TagMappings: map[string]string{"sneakers": "fashion"},
			BatchSize:   10,
			DryRun:      true,
		}, "admin-1")

		assert.NoError(t, service.StartJob(job.ID))
		waitForTerminal(t, repo, job.ID)

		final, _ := service.GetJob(job.ID)
		assert.Equal(t, model.StatusCompleted, final.Status)
		assert.Equal(t, 25, final.Progress.Migrated)
		assert.Equal(t, 0, repo.batchCount())

		count, _ := repo.CountPostsByMigrationID(job.ID)
		assert.Zero(t, count)

		// Same config again yields the same outcome
		repeat, _ := service.CreateJob(model.MigrationConfig{
			TagMappings: map[string]string{"sneakers": "fashion"},
			BatchSize:   10,
			DryRun:      true,
		}, "admin-1")
		assert.NoError(t, service.StartJob(repeat.ID))
		waitForTerminal(t, repo, repeat.ID)

		second, _ := service.GetJob(repeat.ID)
		assert.Equal(t, 25, second.Progress.Migrated)
		assert.Equal(t, 0, repo.batchCount())
	})

	t.Run("Migrated posts are excluded unless updateAll", func(t *testing.T) {
		repo := newFakeMigrationRepo()
		service := newTestMigrationService(repo)
		migrated := taggedPost("post-done", "Sneakers")
		migrated.InterestIDs = []string{"fashion"}
		repo.addPost(migrated)
		seedPosts(repo, 4, "Sneakers")

		job, _ := service.CreateJob(model.MigrationConfig{
			TagMappings: map[string]string{"sneakers": "fashion"},
			BatchSize:   10,
		}, "admin-1")

		assert.NoError(t, service.StartJob(job.ID))
		waitForTerminal(t, repo, job.ID)

		final, _ := service.GetJob(job.ID)
		assert.Equal(t, 4, final.Progress.Total)
	})

	t.Run("Stop lands at a batch boundary", func(t *testing.T) {
		repo := newFakeMigrationRepo()
		service := newTestMigrationService(repo)
		seedPosts(repo, 25, "Sneakers")

		job, _ := service.CreateJob(model.MigrationConfig{
			TagMappings: map[string]string{"sneakers": "fashion"},
			BatchSize:   10,
		}, "admin-1")

		// Request the stop from inside the first batch commit so exactly
		// one whole batch lands before the boundary check fires.
		repo.onBatch = func() {
			assert.NoError(t, service.StopJob(job.ID))
		}

		assert.NoError(t, service.StartJob(job.ID))
		waitForTerminal(t, repo, job.ID)

		final, _ := service.GetJob(job.ID)
		assert.Equal(t, model.StatusStopped, final.Status)
		assert.Equal(t, 10, final.Progress.Processed)
		assert.Equal(t, 1, repo.batchCount())
	})

	t.Run("Pause then resume finishes the job", func(t *testing.T) {
		repo := newFakeMigrationRepo()
		service := newTestMigrationService(repo)
		seedPosts(repo, 25, "Sneakers")

		job, _ := service.CreateJob(model.MigrationConfig{
			TagMappings: map[string]string{"sneakers": "fashion"},
			BatchSize:   10,
		}, "admin-1")

		repo.onBatch = func() {
			assert.NoError(t, service.PauseJob(job.ID))
		}

		assert.NoError(t, service.StartJob(job.ID))
		assert.Eventually(t, func() bool {
			return repo.jobStatus(job.ID) == model.StatusPaused
		}, 5*time.Second, 5*time.Millisecond)

		paused, _ := service.GetJob(job.ID)
		assert.Equal(t, 10, paused.Progress.Processed)

		// Resume rescans candidates; already migrated posts drop out
		assert.NoError(t, service.StartJob(job.ID))
		assert.Eventually(t, func() bool {
			return repo.jobStatus(job.ID) == model.StatusCompleted
		}, 5*time.Second, 5*time.Millisecond)

		count, _ := repo.CountPostsByMigrationID(job.ID)
		assert.Equal(t, int64(25), count)
	})

	t.Run("Pause without active run fails", func(t *testing.T) {
		repo := newFakeMigrationRepo()
		service := newTestMigrationService(repo)

		job, _ := service.CreateJob(model.MigrationConfig{
			TagMappings: map[string]string{"sneakers": "fashion"},
		}, "admin-1")

		assert.ErrorIs(t, service.PauseJob(job.ID), ErrJobNotRunning)
	})

	t.Run("Starting a completed job is refused", func(t *testing.T) {
		repo := newFakeMigrationRepo()
		service := newTestMigrationService(repo)
		seedPosts(repo, 5, "Sneakers")

		job, _ := service.CreateJob(model.MigrationConfig{
			TagMappings: map[string]string{"sneakers": "fashion"},
		}, "admin-1")

		assert.NoError(t, service.StartJob(job.ID))
		waitForTerminal(t, repo, job.ID)

		assert.ErrorIs(t, service.StartJob(job.ID), ErrInvalidTransition)
	})

	t.Run("Unknown job not found", func(t *testing.T) {
		repo := newFakeMigrationRepo()
		service := newTestMigrationService(repo)

		assert.ErrorIs(t, service.StartJob("no-such-job"), ErrJobNotFound)
	})
}

func TestRollback(t *testing.T) {
	completedJob := func(t *testing.T, repo *fakeMigrationRepo, service MigrationService) *model.MigrationJob {
		t.Helper()
		seedPosts(repo, 25, "Sneakers")
		job, err := service.CreateJob(model.MigrationConfig{
			TagMappings: map[string]string{"sneakers": "fashion"},
			BatchSize:   10,
		}, "admin-1")
		assert.NoError(t, err)
		assert.NoError(t, service.StartJob(job.ID))
		waitForTerminal(t, repo, job.ID)
		return job
	}

	t.Run("Rollback clears migrated posts and marks job", func(t *testing.T) {
		repo := newFakeMigrationRepo()
		service := newTestMigrationService(repo)
		job := completedJob(t, repo, service)

		rollback, err := service.Rollback(job.ID, "admin-2")

		assert.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, rollback.Status)
		assert.Equal(t, 25, rollback.Progress.Total)
		assert.Equal(t, 25, rollback.Progress.Processed)
		assert.Equal(t, "admin-2", rollback.CreatedBy)

		final, _ := service.GetJob(job.ID)
		assert.Equal(t, model.StatusRolledBack, final.Status)
		assert.NotNil(t, final.RollbackID)
		assert.Equal(t, rollback.ID, *final.RollbackID)

		count, _ := repo.CountPostsByMigrationID(job.ID)
		assert.Zero(t, count)
		for _, p := range repo.posts {
			assert.Empty(t, p.InterestIDs)
			assert.NotNil(t, p.RollbackID)
		}
	})

	t.Run("Dry run job cannot be rolled back", func(t *testing.T) {
		repo := newFakeMigrationRepo()
		service := newTestMigrationService(repo)
		seedPosts(repo, 5, "Sneakers")

		job, _ := service.CreateJob(model.MigrationConfig{
			TagMappings: map[string]string{"sneakers": "fashion"},
			DryRun:      true,
		}, "admin-1")
		assert.NoError(t, service.StartJob(job.ID))
		waitForTerminal(t, repo, job.ID)

		_, err := service.Rollback(job.ID, "admin-1")
		assert.ErrorIs(t, err, ErrRollbackForbidden)
	})

	t.Run("Created job cannot be rolled back", func(t *testing.T) {
		repo := newFakeMigrationRepo()
		service := newTestMigrationService(repo)

		job, _ := service.CreateJob(model.MigrationConfig{
			TagMappings: map[string]string{"sneakers": "fashion"},
		}, "admin-1")

		_, err := service.Rollback(job.ID, "admin-1")
		assert.ErrorIs(t, err, ErrRollbackForbidden)
	})

	t.Run("Rollback twice reports nothing to roll back", func(t *testing.T) {
		repo := newFakeMigrationRepo()
		service := newTestMigrationService(repo)
		job := completedJob(t, repo, service)

		_, err := service.Rollback(job.ID, "admin-1")
		assert.NoError(t, err)

		_, err = service.Rollback(job.ID, "admin-1")
		// 任务已是 rolled_back，状态守卫先于计数生效
		assert.ErrorIs(t, err, ErrRollbackForbidden)
	})
}

func TestCleanup(t *testing.T) {
	repo := newFakeMigrationRepo()
	service := newTestMigrationService(repo)

	old := model.MigrationJob{Status: model.StatusCompleted}
	old.ID = "job-old"
	old.CreatedAt = time.Now().AddDate(0, 0, -60)
	repo.jobs[old.ID] = old

	recent := model.MigrationJob{Status: model.StatusCompleted}
	recent.ID = "job-recent"
	recent.CreatedAt = time.Now()
	repo.jobs[recent.ID] = recent

	active := model.MigrationJob{Status: model.StatusRunning}
	active.ID = "job-active"
	active.CreatedAt = time.Now().AddDate(0, 0, -60)
	repo.jobs[active.ID] = active

	deleted, err := service.Cleanup(30)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.NotContains(t, repo.jobs, "job-old")
	assert.Contains(t, repo.jobs, "job-recent")
	assert.Contains(t, repo.jobs, "job-active")
}

func TestJobStateMachine(t *testing.T) {
	cases := []struct {
		from string
		to   string
		want bool
	}{
		{model.StatusCreated, model.StatusRunning, true},
		{model.StatusRunning, model.StatusPaused, true},
		{model.StatusRunning, model.StatusCompleted, true},
		{model.StatusRunning, model.StatusStopped, true},
		{model.StatusRunning, model.StatusFailed, true},
		{model.StatusPaused, model.StatusRunning, true},
		{model.StatusPaused, model.StatusStopped, true},
		{model.StatusCompleted, model.StatusRolledBack, true},
		{model.StatusCompleted, model.StatusRunning, false},
		{model.StatusStopped, model.StatusRunning, false},
		{model.StatusFailed, model.StatusRunning, false},
		{model.StatusRolledBack, model.StatusRunning, false},
		{model.StatusCreated, model.StatusCompleted, false},
	}

	for _, c := range cases {
		got := model.CanTransition(c.from, c.to)
		assert.Equal(t, c.want, got, "%s -> %s", c.from, c.to)
	}
}
