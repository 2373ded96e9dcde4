package repository

import (
	"time"

	"discovery_admin/internal/domain/migration/model"
	postModel "discovery_admin/internal/domain/post/model"

	"gorm.io/gorm"
)

// PostUpdate 单篇帖子的迁移写入
type PostUpdate struct {
	PostID      string
	InterestIDs []string
	MigrationID string
	MigratedAt  time.Time
}

type MigrationRepository interface {
	CreateJob(job *model.MigrationJob) error
	GetJob(id string) (*model.MigrationJob, error)
	ListJobs(offset, limit int) ([]model.MigrationJob, int64, error)
	SaveJob(job *model.MigrationJob) error
	UpdateJobStatus(id, status string) error
	DeleteTerminalJobsBefore(cutoff time.Time, statuses []string) (int64, error)

	CreateRollbackJob(job *model.RollbackJob) error
	SaveRollbackJob(job *model.RollbackJob) error

	// GetCandidatePosts 迁移候选集，limit 为 0 时取全量
	GetCandidatePosts(limit int) ([]postModel.Post, error)
	// SamplePosts 分析采样，excludeMigrated 跳过已有结构化兴趣的帖子
	SamplePosts(limit int, excludeMigrated bool) ([]postModel.Post, error)
	// ApplyMigrationBatch 单事务提交一批迁移写入
	ApplyMigrationBatch(updates []PostUpdate) error
	// GetPostsByMigrationID 查找携带指定迁移标记的帖子
	GetPostsByMigrationID(migrationID string, limit int) ([]postModel.Post, error)
	CountPostsByMigrationID(migrationID string) (int64, error)
	// ApplyRollbackBatch 单事务清除一批帖子的迁移字段并写入回滚标记
	ApplyRollbackBatch(migrationID string, postIDs []string, rollbackID string) error
}

type migrationRepository struct {
	db *gorm.DB
}

func NewMigrationRepository(db *gorm.DB) MigrationRepository {
	return &migrationRepository{db: db}
}

func (r *migrationRepository) CreateJob(job *model.MigrationJob) error {
	return r.db.Create(job).Error
}

func (r *migrationRepository) GetJob(id string) (*model.MigrationJob, error) {
	var job model.MigrationJob
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *migrationRepository) ListJobs(offset, limit int) ([]model.MigrationJob, int64, error) {
	var jobs []model.MigrationJob
	var total int64

	if err := r.db.Model(&model.MigrationJob{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.Order("created_at desc").Offset(offset).Limit(limit).Find(&jobs).Error; err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

func (r *migrationRepository) SaveJob(job *model.MigrationJob) error {
	return r.db.Save(job).Error
}

func (r *migrationRepository) UpdateJobStatus(id, status string) error {
	return r.db.Model(&model.MigrationJob{}).Where("id = ?", id).Update("status", status).Error
}

func (r *migrationRepository) DeleteTerminalJobsBefore(cutoff time.Time, statuses []string) (int64, error) {
	res := r.db.Where("status IN ? AND created_at < ?", statuses, cutoff).Delete(&model.MigrationJob{})
	return res.RowsAffected, res.Error
}

func (r *migrationRepository) CreateRollbackJob(job *model.RollbackJob) error {
	return r.db.Create(job).Error
}

func (r *migrationRepository) SaveRollbackJob(job *model.RollbackJob) error {
	return r.db.Save(job).Error
}

func (r *migrationRepository) GetCandidatePosts(limit int) ([]postModel.Post, error) {
	var posts []postModel.Post
	query := r.db.Order("created_at asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *migrationRepository) SamplePosts(limit int, excludeMigrated bool) ([]postModel.Post, error) {
	var posts []postModel.Post
	query := r.db.Order("created_at desc").Limit(limit)
	if excludeMigrated {
		query = query.Where("interest_ids IS NULL OR jsonb_array_length(interest_ids) = 0")
	}
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *migrationRepository) ApplyMigrationBatch(updates []PostUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			migratedAt := u.MigratedAt
			migrationID := u.MigrationID
			err := tx.Model(&postModel.Post{}).Where("id = ?", u.PostID).
				Updates(postModel.Post{
					InterestIDs: u.InterestIDs,
					MigratedAt:  &migratedAt,
					MigrationID: &migrationID,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *migrationRepository) GetPostsByMigrationID(migrationID string, limit int) ([]postModel.Post, error) {
	var posts []postModel.Post
	query := r.db.Where("migration_id = ?", migrationID).Order("created_at asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *migrationRepository) CountPostsByMigrationID(migrationID string) (int64, error) {
	var count int64
	err := r.db.Model(&postModel.Post{}).Where("migration_id = ?", migrationID).Count(&count).Error
	return count, err
}

func (r *migrationRepository) ApplyRollbackBatch(migrationID string, postIDs []string, rollbackID string) error {
	if len(postIDs) == 0 {
		return nil
	}
	now := time.Now()
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&postModel.Post{}).
			Where("migration_id = ? AND id IN ?", migrationID, postIDs).
			Updates(map[string]interface{}{
				"interest_ids":   gorm.Expr("'[]'::jsonb"),
				"migrated_at":    nil,
				"migration_id":   nil,
				"rollback_id":    rollbackID,
				"rolled_back_at": now,
			}).Error
	})
}
