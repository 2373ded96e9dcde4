package migration

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"discovery_admin/internal/domain/migration/handler"
	"discovery_admin/internal/domain/migration/model"
	"discovery_admin/internal/domain/migration/service"
	userModel "discovery_admin/internal/domain/user/model"
	"discovery_admin/internal/pkg/config"
	"discovery_admin/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	config.GlobalConfig.JWT.Secret = "test-secret-at-least-32-characters-long"
	config.GlobalConfig.JWT.Expire = 24
	os.Exit(m.Run())
}

// stubMigrationService records which jobs were started.
type stubMigrationService struct {
	started []string
}

func (s *stubMigrationService) AnalyzeTags(limit int, excludeExisting bool) ([]service.TagSuggestion, error) {
	return nil, nil
}

func (s *stubMigrationService) ValidateConfig(cfg model.MigrationConfig) (*model.ValidationResult, error) {
	return &model.ValidationResult{Valid: true}, nil
}

func (s *stubMigrationService) CreateJob(cfg model.MigrationConfig, userID string) (*model.MigrationJob, error) {
	return &model.MigrationJob{Status: model.StatusCreated}, nil
}

func (s *stubMigrationService) StartJob(jobID string) error {
	s.started = append(s.started, jobID)
	return nil
}

func (s *stubMigrationService) PauseJob(jobID string) error { return nil }

func (s *stubMigrationService) StopJob(jobID string) error { return nil }

func (s *stubMigrationService) GetJob(jobID string) (*model.MigrationJob, error) {
	job := &model.MigrationJob{Status: model.StatusRunning}
	job.ID = jobID
	return job, nil
}

func (s *stubMigrationService) ListJobs(page, limit int) ([]model.MigrationJob, int64, error) {
	return []model.MigrationJob{}, 0, nil
}

func (s *stubMigrationService) Rollback(jobID, userID string) (*model.RollbackJob, error) {
	return &model.RollbackJob{}, nil
}

func (s *stubMigrationService) Cleanup(daysOld int) (int64, error) { return 0, nil }

func newTestRouter(svc service.MigrationService) *gin.Engine {
	r := gin.New()
	setupRoutes(r, handler.NewMigrationHandler(svc))
	return r
}

func requestAs(t *testing.T, r *gin.Engine, role int, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	token, _, err := utils.GenerateToken("user-1", role)
	assert.NoError(t, err)

	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMigrationRoutePermissions(t *testing.T) {
	t.Run("Viewer can read job status and the job list", func(t *testing.T) {
		svc := &stubMigrationService{}
		r := newTestRouter(svc)

		w := requestAs(t, r, userModel.RoleViewer, http.MethodGet, "/admin/migrations/job-1")
		assert.Equal(t, http.StatusOK, w.Code)

		w = requestAs(t, r, userModel.RoleViewer, http.MethodGet, "/admin/migrations")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Viewer cannot start a job", func(t *testing.T) {
		svc := &stubMigrationService{}
		r := newTestRouter(svc)

		w := requestAs(t, r, userModel.RoleViewer, http.MethodPost, "/admin/migrations/job-1/start")

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, svc.started)
	})

	t.Run("Moderator cannot rollback or cleanup", func(t *testing.T) {
		svc := &stubMigrationService{}
		r := newTestRouter(svc)

		w := requestAs(t, r, userModel.RoleModerator, http.MethodPost, "/admin/migrations/job-1/rollback")
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = requestAs(t, r, userModel.RoleModerator, http.MethodDelete, "/admin/migrations/cleanup")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Super admin can start a job", func(t *testing.T) {
		svc := &stubMigrationService{}
		r := newTestRouter(svc)

		w := requestAs(t, r, userModel.RoleSuperAdmin, http.MethodPost, "/admin/migrations/job-1/start")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"job-1"}, svc.started)
	})

	t.Run("Missing token is rejected", func(t *testing.T) {
		r := newTestRouter(&stubMigrationService{})

		req := httptest.NewRequest(http.MethodGet, "/admin/migrations", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
