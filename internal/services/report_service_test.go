package services_test

import (
	"bytes"
	"net/http"
	"testing"

	"searchapp_backend/internal/config"
	"searchapp_backend/internal/models"
	"searchapp_backend/internal/pdf"
	"searchapp_backend/internal/services/dto"
	"searchapp_backend/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSearchPDF_ZeroPhotos(t *testing.T) {
	f := newFixture(t)
	tech := technician()
	search := f.createSearch(t, tech, "Sans photo", nil)

	doc, err := f.svc.ReportService.RenderSearchPDF(f.ctx, f.db, tech, search.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc.Data, []byte("%PDF-")))
	assert.Greater(t, len(doc.Data), 1000)
	assert.Contains(t, doc.Filename, search.ID)
}

func TestRenderSearchPDF_WithBrandingAndPhotos(t *testing.T) {
	f := newFixture(t)
	tech := technician()

	_, err := f.svc.CompanySettingsService.UpdateSettings(f.ctx, f.db, bureau(), &dto.UpdateCompanySettingsRequest{
		CompanyName: "ACME Réseaux",
		Address:     dto.AddressDTO{Street: "1 rue de la Paix", PostalCode: "75002", City: "Paris"},
	})
	require.NoError(t, err)

	search := f.createSearch(t, tech, "Avec photos", &dto.PhotoSet{
		Uploads: []dto.PhotoUpload{jpegUpload(t, "a.jpg", 1), jpegUpload(t, "b.jpg", 2)},
		Numbers: []int{2, 1},
	})

	doc, err := f.svc.ReportService.RenderSearchPDF(f.ctx, f.db, tech, search.ID)
	require.NoError(t, err)

	pages, err := pdf.PageCount(doc.Data)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, pages, 1)
}

func TestRenderSearchPDF_Errors(t *testing.T) {
	f := newFixture(t)
	search := f.createSearch(t, technician(), "Privé", nil)

	_, err := f.svc.ReportService.RenderSearchPDF(f.ctx, f.db, bureau(), uuid.NewString())
	assertAppError(t, err, http.StatusNotFound, apperrors.CodeNotFound)

	_, err = f.svc.ReportService.RenderSearchPDF(f.ctx, f.db, principal(companyB, models.UserRoleBureau), search.ID)
	assertAppError(t, err, http.StatusForbidden, apperrors.CodeForbidden)
}

func TestRenderSummaryPDF(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) { cfg.PDF.MaxSummarySearches = 3 })
	office := bureau()
	tech := technician()

	first := f.createSearch(t, tech, "Un", nil)
	second := f.createSearch(t, tech, "Deux", &dto.PhotoSet{Uploads: []dto.PhotoUpload{jpegUpload(t, "a.jpg", 1)}})

	t.Run("empty", func(t *testing.T) {
		_, err := f.svc.ReportService.RenderSummaryPDF(f.ctx, f.db, office, &dto.SearchIDsRequest{SearchIDs: []string{}})
		assertAppError(t, err, http.StatusBadRequest, apperrors.CodeValidationFailed)
	})

	t.Run("one unknown id fails the whole call", func(t *testing.T) {
		doc, err := f.svc.ReportService.RenderSummaryPDF(f.ctx, f.db, office, &dto.SearchIDsRequest{
			SearchIDs: []string{first.ID, uuid.NewString(), second.ID},
		})
		assertAppError(t, err, http.StatusNotFound, apperrors.CodeNotFound)
		assert.Nil(t, doc)
	})

	t.Run("foreign id", func(t *testing.T) {
		foreign := f.createSearch(t, principal(companyB, models.UserRoleTechnicien), "Ailleurs", nil)
		_, err := f.svc.ReportService.RenderSummaryPDF(f.ctx, f.db, office, &dto.SearchIDsRequest{
			SearchIDs: []string{first.ID, foreign.ID},
		})
		assertAppError(t, err, http.StatusForbidden, apperrors.CodeForbidden)
	})

	t.Run("over the cap", func(t *testing.T) {
		ids := []string{first.ID, second.ID, uuid.NewString(), uuid.NewString()}
		_, err := f.svc.ReportService.RenderSummaryPDF(f.ctx, f.db, office, &dto.SearchIDsRequest{SearchIDs: ids})
		assertAppError(t, err, http.StatusBadRequest, apperrors.CodeLimitExceeded)
	})

	t.Run("valid", func(t *testing.T) {
		doc, err := f.svc.ReportService.RenderSummaryPDF(f.ctx, f.db, office, &dto.SearchIDsRequest{
			SearchIDs: []string{second.ID, first.ID},
		})
		require.NoError(t, err)

		pages, err := pdf.PageCount(doc.Data)
		require.NoError(t, err)
		assert.Equal(t, 3, pages)
		assert.Contains(t, doc.Filename, "rapport_synthese_")
	})
}

func TestListReportsAndDashboard(t *testing.T) {
	f := newFixture(t)
	alice := technician()
	bob := technician()

	a := f.createSearch(t, alice, "Alice", nil)
	b := f.createSearch(t, bob, "Bob", nil)
	f.createSearch(t, bob, "Bob 2", nil)

	_, err := f.svc.SharingService.ShareToBureau(f.ctx, f.db, alice, &dto.SearchIDsRequest{SearchIDs: []string{a.ID}})
	require.NoError(t, err)
	_, err = f.svc.SharingService.ShareToBureau(f.ctx, f.db, bob, &dto.SearchIDsRequest{SearchIDs: []string{b.ID}})
	require.NoError(t, err)

	own, err := f.svc.ReportService.ListReports(f.ctx, f.db, alice, &dto.ListReportsRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), own.Total)
	require.Len(t, own.Reports, 1)
	assert.Equal(t, "Alice", own.Reports[0].Location)
	assert.Equal(t, "SHARED_TO_BUREAU", own.Reports[0].SearchStatus)

	all, err := f.svc.ReportService.ListReports(f.ctx, f.db, bureau(), &dto.ListReportsRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	stats, err := f.svc.ReportService.GetDashboard(f.ctx, f.db, bureau())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalSearches)
	assert.Equal(t, int64(2), stats.TotalReports)
	assert.Equal(t, int64(1), stats.SearchesByStatus["ACTIVE"])
	assert.Equal(t, int64(2), stats.SearchesByStatus["SHARED_TO_BUREAU"])
	assert.Equal(t, int64(0), stats.SearchesByStatus["ARCHIVED"])

	bobStats, err := f.svc.ReportService.GetDashboard(f.ctx, f.db, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(2), bobStats.TotalSearches)
	assert.Equal(t, int64(1), bobStats.TotalReports)
}
