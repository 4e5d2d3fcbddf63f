package services_test

import (
	"context"
	"testing"

	"searchapp_backend/internal/auth"
	"searchapp_backend/internal/cache"
	"searchapp_backend/internal/config"
	"searchapp_backend/internal/models"
	"searchapp_backend/internal/services"
	"searchapp_backend/internal/services/dto"
	"searchapp_backend/internal/storage"
	"searchapp_backend/internal/testutil"
	"searchapp_backend/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	companyA = "company-a"
	companyB = "company-b"
)

type fixture struct {
	db      *gorm.DB
	storage storage.Storage
	cfg     *config.Config
	svc     *services.ServiceContainer
	ctx     context.Context
}

func newFixture(t *testing.T, tweak ...func(*config.Config)) *fixture {
	t.Helper()
	cfg := config.Defaults()
	for _, fn := range tweak {
		fn(cfg)
	}
	store := testutil.NewStorage(t)
	db := testutil.NewDB(t)
	return &fixture{
		db:      db,
		storage: store,
		cfg:     cfg,
		svc:     services.NewServiceContainer(cfg, store, cache.NoopCompanySettingsCache{}),
		ctx:     context.Background(),
	}
}

func principal(company string, role models.UserRole) auth.Principal {
	return auth.Principal{UserID: uuid.NewString(), CompanyID: company, Role: role}
}

func technician() auth.Principal { return principal(companyA, models.UserRoleTechnicien) }
func bureau() auth.Principal     { return principal(companyA, models.UserRoleBureau) }

func float(v float64) *float64 { return &v }

func jpegUpload(t *testing.T, name string, seed uint8) dto.PhotoUpload {
	data := testutil.JPEG(t, 40, 30, seed)
	return dto.PhotoUpload{OriginalName: name, DeclaredType: "image/jpeg", Size: int64(len(data)), Data: data}
}

func (f *fixture) createSearch(t *testing.T, p auth.Principal, location string, photos *dto.PhotoSet) *dto.SearchResponse {
	t.Helper()
	resp, err := f.svc.SearchService.CreateSearch(f.ctx, f.db, p, &dto.SearchRequest{Location: location}, photos)
	require.NoError(t, err)
	return resp
}

func (f *fixture) reportCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&models.Report{}).Count(&count).Error)
	return count
}

func assertAppError(t *testing.T, err error, status int, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, status, appErr.HTTPCode)
	assert.Equal(t, code, appErr.Code)
}
