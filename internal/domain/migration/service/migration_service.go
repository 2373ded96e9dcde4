package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"discovery_admin/internal/domain/migration/model"
	"discovery_admin/internal/domain/migration/repository"
	postModel "discovery_admin/internal/domain/post/model"
	"discovery_admin/pkg/logger"
	"discovery_admin/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrJobNotFound       = errors.New("migration job not found")
	ErrInvalidTransition = errors.New("invalid job status transition")
	ErrValidationFailed  = errors.New("migration config validation failed")
	ErrJobNotRunning     = errors.New("no active run for this job")
	ErrNothingToRollback = errors.New("no posts reference this migration")
	ErrRollbackForbidden = errors.New("only completed non-dry-run jobs can be rolled back")
)

// Options 引擎参数，由模块初始化时从配置注入
type Options struct {
	DefaultBatchSize int           // 配置未指定批大小时使用
	MaxWriteBatch    int           // 单事务写入上限（对应存储的原子批写边界）
	BatchDelay       time.Duration // 批次间隔，限制写入速率
}

// MigrationService 标签迁移引擎
type MigrationService interface {
	AnalyzeTags(limit int, excludeExisting bool) ([]TagSuggestion, error)
	ValidateConfig(cfg model.MigrationConfig) (*model.ValidationResult, error)
	CreateJob(cfg model.MigrationConfig, userID string) (*model.MigrationJob, error)
	StartJob(jobID string) error
	PauseJob(jobID string) error
	StopJob(jobID string) error
	GetJob(jobID string) (*model.MigrationJob, error)
	ListJobs(page, limit int) ([]model.MigrationJob, int64, error)
	Rollback(jobID, userID string) (*model.RollbackJob, error)
	Cleanup(daysOld int) (int64, error)
}

// InterestCounter 维护兴趣侧的冗余帖子计数，由 interest 仓储实现
type InterestCounter interface {
	IncrementPostCount(slug string, delta int) error
}

// jobHandle 单个运行中任务的控制句柄
// 停止走 context 取消，暂停走协作式标志，二者都只在批次边界生效
type jobHandle struct {
	cancel context.CancelFunc
	paused atomic.Bool
	done   chan struct{}
}

type migrationService struct {
	repo     repository.MigrationRepository
	taxonomy TaxonomyProvider
	counter  InterestCounter
	opts     Options
	metrics  *metrics.Collector

	mu      sync.Mutex
	handles map[string]*jobHandle

	analyzer *analyzer
}

// NewMigrationService 创建迁移服务
func NewMigrationService(repo repository.MigrationRepository, taxonomy TaxonomyProvider, counter InterestCounter, opts Options, collector *metrics.Collector) MigrationService {
	if opts.DefaultBatchSize <= 0 {
		opts.DefaultBatchSize = 100
	}
	if opts.MaxWriteBatch <= 0 || opts.MaxWriteBatch > 500 {
		opts.MaxWriteBatch = 500
	}
	return &migrationService{
		repo:     repo,
		taxonomy: taxonomy,
		counter:  counter,
		opts:     opts,
		metrics:  collector,
		handles:  make(map[string]*jobHandle),
		analyzer: &analyzer{repo: repo, taxonomy: taxonomy},
	}
}

func (s *migrationService) AnalyzeTags(limit int, excludeExisting bool) ([]TagSuggestion, error) {
	return s.analyzer.AnalyzeTags(limit, excludeExisting)
}

// ValidateConfig 校验配置
// errors 阻止建任务；warnings 仅提示
func (s *migrationService) ValidateConfig(cfg model.MigrationConfig) (*model.ValidationResult, error) {
	result := &model.ValidationResult{Valid: true, Errors: []string{}, Warnings: []string{}}

	if len(cfg.TagMappings) == 0 {
		result.Errors = append(result.Errors, "tagMappings is required and must not be empty")
	}

	entries, err := s.taxonomy.Entries()
	if err != nil {
		return nil, err
	}
	valid := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		valid[e.Slug] = struct{}{}
	}

	for tag, slug := range cfg.TagMappings {
		if normalizeTag(tag) == "" {
			result.Errors = append(result.Errors, "tag mapping contains an empty tag")
			continue
		}
		if _, ok := valid[slug]; !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("unknown interest %q for tag %q", slug, tag))
		}
	}

	if cfg.BatchSize < 10 || cfg.BatchSize > 500 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("batch size %d outside recommended range [10, 500]", cfg.BatchSize))
	}

	// 高频标签未映射仅告警，不阻塞
	// 建议标签已归一化，映射键需先归一化再比对
	mapped := make(map[string]struct{}, len(cfg.TagMappings))
	for tag := range cfg.TagMappings {
		mapped[normalizeTag(tag)] = struct{}{}
	}
	if suggestions, err := s.AnalyzeTags(1000, false); err == nil {
		for _, sg := range suggestions {
			if sg.Frequency < 10 {
				break // 已按频率降序
			}
			if _, ok := mapped[sg.Tag]; !ok {
				result.Warnings = append(result.Warnings, fmt.Sprintf("common tag %q (%d occurrences) is not mapped", sg.Tag, sg.Frequency))
			}
		}
	}

	result.Valid = len(result.Errors) == 0
	return result, nil
}

// CreateJob 校验并持久化新任务，校验有 error 时拒绝
func (s *migrationService) CreateJob(cfg model.MigrationConfig, userID string) (*model.MigrationJob, error) {
	validation, err := s.ValidateConfig(cfg)
	if err != nil {
		return nil, err
	}
	if !validation.Valid {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, validation.Errors)
	}

	if cfg.BatchSize <= 0 {
		cfg.BatchSize = s.opts.DefaultBatchSize
	}

	// 归一化映射键，执行期不再做大小写处理
	normalized := make(map[string]string, len(cfg.TagMappings))
	for tag, slug := range cfg.TagMappings {
		normalized[normalizeTag(tag)] = slug
	}
	cfg.TagMappings = normalized

	job := &model.MigrationJob{
		Status:     model.StatusCreated,
		Config:     cfg,
		Progress:   model.Progress{},
		Metadata:   model.JobMetadata{CreatedBy: userID},
		Errors:     []model.JobError{},
		Validation: *validation,
	}

	if err := s.repo.CreateJob(job); err != nil {
		return nil, err
	}
	return job, nil
}

// StartJob 启动批处理循环
// 仅 created / paused 可进入 running；同一任务并发启动被拒绝
func (s *migrationService) StartJob(jobID string) error {
	job, err := s.getJob(jobID)
	if err != nil {
		return err
	}

	if !model.CanTransition(job.Status, model.StatusRunning) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.Status, model.StatusRunning)
	}

	s.mu.Lock()
	if _, active := s.handles[jobID]; active {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, model.StatusRunning, model.StatusRunning)
	}
	ctx, cancel := context.WithCancel(context.Background())
	handle := &jobHandle{cancel: cancel, done: make(chan struct{})}
	s.handles[jobID] = handle
	s.mu.Unlock()

	job.Status = model.StatusRunning
	if job.Metadata.StartedAt == nil {
		now := time.Now()
		job.Metadata.StartedAt = &now
	}
	if err := s.repo.SaveJob(job); err != nil {
		s.removeHandle(jobID)
		return err
	}

	s.metrics.JobStarted()
	go s.run(ctx, handle, job)

	return nil
}

// PauseJob 请求暂停，循环在下一个批次边界落库 paused
func (s *migrationService) PauseJob(jobID string) error {
	s.mu.Lock()
	handle, ok := s.handles[jobID]
	s.mu.Unlock()
	if !ok {
		return ErrJobNotRunning
	}
	handle.paused.Store(true)
	return nil
}

// StopJob 请求停止
// 有活跃循环时走协作取消；没有时直接落库 stopped 作为兜底（如进程重启后）
func (s *migrationService) StopJob(jobID string) error {
	s.mu.Lock()
	handle, active := s.handles[jobID]
	s.mu.Unlock()

	if active {
		handle.cancel()
		return nil
	}

	job, err := s.getJob(jobID)
	if err != nil {
		return err
	}
	if !model.CanTransition(job.Status, model.StatusStopped) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.Status, model.StatusStopped)
	}
	return s.repo.UpdateJobStatus(jobID, model.StatusStopped)
}

func (s *migrationService) GetJob(jobID string) (*model.MigrationJob, error) {
	return s.getJob(jobID)
}

func (s *migrationService) ListJobs(page, limit int) ([]model.MigrationJob, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListJobs((page-1)*limit, limit)
}

// run 批处理主循环，每个任务一个后台协程
func (s *migrationService) run(ctx context.Context, handle *jobHandle, job *model.MigrationJob) {
	defer func() {
		s.removeHandle(job.ID)
		s.metrics.JobFinished()
		close(handle.done)
	}()

	cfg := job.Config

	// 1. 拉取候选集并在内存中过滤
	// 恢复运行时会从头重扫候选集，跳过已迁移的帖子（无游标，已知的低效但正确的策略）
	candidates, err := s.repo.GetCandidatePosts(cfg.Limit)
	if err != nil {
		s.markFailed(job, "", "load candidates: "+err.Error())
		return
	}

	filtered := candidates[:0]
	for i := range candidates {
		if cfg.UpdateAll || candidates[i].NeedsMigration() {
			filtered = append(filtered, candidates[i])
		}
	}

	job.Progress = model.Progress{Total: len(filtered)}
	job.Progress.UpdatePercentage()
	if err := s.repo.SaveJob(job); err != nil {
		s.markFailed(job, "", "persist total: "+err.Error())
		return
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = s.opts.DefaultBatchSize
	}
	if batchSize > s.opts.MaxWriteBatch {
		batchSize = s.opts.MaxWriteBatch
	}

	// 2. 按固定批大小切片处理
	for start := 0; start < len(filtered); start += batchSize {
		// 批次边界协作检查：先停止，后暂停
		select {
		case <-ctx.Done():
			s.persistStatus(job, model.StatusStopped)
			return
		default:
		}
		if handle.paused.Load() {
			s.persistStatus(job, model.StatusPaused)
			return
		}

		end := start + batchSize
		if end > len(filtered) {
			end = len(filtered)
		}
		slice := filtered[start:end]

		updates := make([]repository.PostUpdate, 0, len(slice))
		deltas := make(map[string]int)
		var migrated, skipped, failed int

		for i := range slice {
			interests, err := s.classify(&slice[i], cfg.TagMappings)
			if err != nil {
				// 单文档失败只计数并记录，不中断批次
				failed++
				job.AppendError(slice[i].ID, err.Error(), model.ErrorTypeDocument)
				continue
			}

			if len(interests) == 0 {
				skipped++
				continue
			}

			migrated++
			if cfg.DryRun {
				continue
			}
			updates = append(updates, repository.PostUpdate{
				PostID:      slice[i].ID,
				InterestIDs: interests,
				MigrationID: job.ID,
				MigratedAt:  time.Now(),
			})

			// 冗余计数按集合差调整，重迁移（updateAll）不会重复累加
			for _, slug := range interests {
				if !slices.Contains(slice[i].InterestIDs, slug) {
					deltas[slug]++
				}
			}
			for _, slug := range slice[i].InterestIDs {
				if !slices.Contains(interests, slug) {
					deltas[slug]--
				}
			}
		}

		// 3. 原子提交本批写入（dry run 不写）
		if !cfg.DryRun {
			if err := s.repo.ApplyMigrationBatch(updates); err != nil {
				s.markFailed(job, "", "batch write: "+err.Error())
				return
			}
			if len(updates) > 0 {
				s.metrics.RecordBatchCommit()
			}
			s.applyCountDeltas(job.ID, deltas)
		}

		// 4. 更新进度
		job.Progress.Processed += len(slice)
		job.Progress.Migrated += migrated
		job.Progress.Skipped += skipped
		job.Progress.Failed += failed
		job.Progress.UpdatePercentage()
		now := time.Now()
		job.Metadata.LastBatch = &now
		if err := s.repo.SaveJob(job); err != nil {
			s.markFailed(job, "", "persist progress: "+err.Error())
			return
		}

		s.metrics.RecordMigrationOutcome("migrated", migrated)
		s.metrics.RecordMigrationOutcome("skipped", skipped)
		s.metrics.RecordMigrationOutcome("failed", failed)

		// 5. 批次间隔，限制对存储的写入速率
		if s.opts.BatchDelay > 0 && end < len(filtered) {
			time.Sleep(s.opts.BatchDelay)
		}
	}

	// 6. 收尾
	if job.Status == model.StatusRunning {
		now := time.Now()
		job.Metadata.CompletedAt = &now
		s.persistStatus(job, model.StatusCompleted)
	}

	if logger.Log != nil {
		logger.Log.Info("migration job finished",
			zap.String("job_id", job.ID),
			zap.String("status", job.Status),
			zap.Int("total", job.Progress.Total),
			zap.Int("migrated", job.Progress.Migrated),
			zap.Int("skipped", job.Progress.Skipped),
			zap.Int("failed", job.Progress.Failed))
	}
}

// classify 计算单篇帖子的目标兴趣集合（去重，保持出现顺序）
func (s *migrationService) classify(post *postModel.Post, mappings map[string]string) ([]string, error) {
	if post.ID == "" {
		return nil, errors.New("post has no id")
	}

	seen := make(map[string]struct{})
	var interests []string
	for _, tag := range post.LegacyTags() {
		slug, ok := mappings[normalizeTag(tag)]
		if !ok {
			continue
		}
		if _, dup := seen[slug]; dup {
			continue
		}
		seen[slug] = struct{}{}
		interests = append(interests, slug)
	}
	return interests, nil
}

// Rollback 回滚已完成的迁移
// 按存储的原子批写上限分块清除迁移字段，并生成回滚任务记录
func (s *migrationService) Rollback(jobID, userID string) (*model.RollbackJob, error) {
	job, err := s.getJob(jobID)
	if err != nil {
		return nil, err
	}

	if job.Status != model.StatusCompleted || job.Config.DryRun {
		if job.Status == model.StatusRunning {
			return nil, fmt.Errorf("%w: job is still running", ErrRollbackForbidden)
		}
		return nil, ErrRollbackForbidden
	}

	total, err := s.repo.CountPostsByMigrationID(jobID)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, ErrNothingToRollback
	}

	rollback := &model.RollbackJob{
		MigrationID: jobID,
		Status:      model.StatusRunning,
		Progress:    model.Progress{Total: int(total)},
		Errors:      []model.JobError{},
		CreatedBy:   userID,
	}
	if err := s.repo.CreateRollbackJob(rollback); err != nil {
		return nil, err
	}

	for {
		posts, err := s.repo.GetPostsByMigrationID(jobID, s.opts.MaxWriteBatch)
		if err != nil {
			rollback.Status = model.StatusFailed
			rollback.AppendError("", "load posts: "+err.Error())
			s.repo.SaveRollbackJob(rollback)
			return nil, err
		}
		if len(posts) == 0 {
			break
		}

		ids := make([]string, len(posts))
		deltas := make(map[string]int)
		for i := range posts {
			ids[i] = posts[i].ID
			for _, slug := range posts[i].InterestIDs {
				deltas[slug]--
			}
		}

		if err := s.repo.ApplyRollbackBatch(jobID, ids, rollback.ID); err != nil {
			rollback.Status = model.StatusFailed
			rollback.AppendError("", "rollback write: "+err.Error())
			s.repo.SaveRollbackJob(rollback)
			return nil, err
		}
		s.applyCountDeltas(jobID, deltas)

		rollback.Progress.Processed += len(ids)
		rollback.Progress.Migrated += len(ids)
		rollback.Progress.UpdatePercentage()
		if err := s.repo.SaveRollbackJob(rollback); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	rollback.Status = model.StatusCompleted
	rollback.CompletedAt = &now
	if err := s.repo.SaveRollbackJob(rollback); err != nil {
		return nil, err
	}

	job.Status = model.StatusRolledBack
	job.RollbackID = &rollback.ID
	if err := s.repo.SaveJob(job); err != nil {
		return nil, err
	}

	return rollback, nil
}

// Cleanup 删除超过保留期的终态任务记录
func (s *migrationService) Cleanup(daysOld int) (int64, error) {
	if daysOld <= 0 {
		daysOld = 30
	}
	cutoff := time.Now().AddDate(0, 0, -daysOld)
	return s.repo.DeleteTerminalJobsBefore(cutoff, model.TerminalStatuses)
}

func (s *migrationService) getJob(jobID string) (*model.MigrationJob, error) {
	job, err := s.repo.GetJob(jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// applyCountDeltas 同步兴趣侧的冗余帖子计数
// 计数漂移可修复，失败只记日志，不中断任务
func (s *migrationService) applyCountDeltas(jobID string, deltas map[string]int) {
	if s.counter == nil {
		return
	}
	for slug, delta := range deltas {
		if delta == 0 {
			continue
		}
		if err := s.counter.IncrementPostCount(slug, delta); err != nil && logger.Log != nil {
			logger.Log.Warn("failed to adjust interest post count",
				zap.String("job_id", jobID),
				zap.String("interest", slug),
				zap.Int("delta", delta),
				zap.Error(err))
		}
	}
}

func (s *migrationService) persistStatus(job *model.MigrationJob, status string) {
	job.Status = status
	if err := s.repo.SaveJob(job); err != nil && logger.Log != nil {
		logger.Log.Error("failed to persist job status",
			zap.String("job_id", job.ID),
			zap.String("status", status),
			zap.Error(err))
	}
}

func (s *migrationService) markFailed(job *model.MigrationJob, postID, message string) {
	job.AppendError(postID, message, model.ErrorTypeSystem)
	s.persistStatus(job, model.StatusFailed)
	if logger.Log != nil {
		logger.Log.Error("migration job failed",
			zap.String("job_id", job.ID),
			zap.String("error", message))
	}
}

func (s *migrationService) removeHandle(jobID string) {
	s.mu.Lock()
	delete(s.handles, jobID)
	s.mu.Unlock()
}
