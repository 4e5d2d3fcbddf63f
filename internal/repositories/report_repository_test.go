package repositories_test

import (
	"testing"

	"searchapp_backend/internal/models"
	"searchapp_backend/internal/repositories"
	"searchapp_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestReportRepository_ListScopes(t *testing.T) {
	db := testutil.NewDB(t)
	searches := repositories.NewSearchRepository()
	reports := repositories.NewReportRepository()

	mine := newSearch("c-1", "u-1", "Mine")
	theirs := newSearch("c-1", "u-2", "Theirs")
	foreign := newSearch("c-2", "u-3", "Foreign")
	for _, s := range []*models.Search{mine, theirs, foreign} {
		require.NoError(t, searches.Create(db, s))
		require.NoError(t, reports.Create(db, &models.Report{
			CompanyID: s.CompanyID,
			SearchID:  s.ID,
			Title:     "Rapport - " + s.Location,
			CreatedBy: s.UserID,
		}))
	}

	list, total, err := reports.List(db, repositories.ReportFilter{CompanyID: "c-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	for _, r := range list {
		require.NotNil(t, r.Search)
		assert.Equal(t, "c-1", r.Search.CompanyID)
	}

	own, total, err := reports.List(db, repositories.ReportFilter{CompanyID: "c-1", SearchOwnerID: "u-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, own, 1)
	assert.Equal(t, "Rapport - Mine", own[0].Title)

	count, err := reports.Count(db, "c-2", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCompanySettingsRepository_Upsert(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewCompanySettingsRepository()

	_, err := repo.FindByCompanyID(db, "c-1")
	assert.ErrorIs(t, err, repositories.ErrCompanySettingsNotFound)

	lat, lng := 45.764043, 4.835659
	settings := &models.CompanySettings{CompanyID: "c-1", CompanyName: "ACME Réseaux"}
	require.NoError(t, repo.Upsert(db, settings))

	settings = &models.CompanySettings{
		CompanyID:        "c-1",
		CompanyName:      "ACME",
		DefaultLatitude:  &lat,
		DefaultLongitude: &lng,
	}
	settings.Address = datatypes.NewJSONType(models.Address{City: "Lyon"})
	require.NoError(t, repo.Upsert(db, settings))

	found, err := repo.FindByCompanyID(db, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "ACME", found.CompanyName)
	require.NotNil(t, found.DefaultLatitude)
	assert.Equal(t, lat, *found.DefaultLatitude)
	assert.Equal(t, "Lyon", found.Address.Data().City)
}
