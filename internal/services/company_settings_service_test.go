package services_test

import (
	"net/http"
	"testing"

	"searchapp_backend/internal/services/dto"
	"searchapp_backend/internal/testutil"
	"searchapp_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanySettings_Lifecycle(t *testing.T) {
	f := newFixture(t)
	office := bureau()

	_, err := f.svc.CompanySettingsService.GetSettings(f.ctx, f.db, office)
	assertAppError(t, err, http.StatusNotFound, apperrors.CodeNotFound)

	_, err = f.svc.CompanySettingsService.UpdateSettings(f.ctx, f.db, technician(), &dto.UpdateCompanySettingsRequest{CompanyName: "X"})
	assertAppError(t, err, http.StatusForbidden, apperrors.CodeForbidden)

	_, err = f.svc.CompanySettingsService.UpdateSettings(f.ctx, f.db, office, &dto.UpdateCompanySettingsRequest{
		CompanyName:     "X",
		DefaultLatitude: float(45),
	})
	assertAppError(t, err, http.StatusBadRequest, apperrors.CodeValidationFailed)

	_, err = f.svc.CompanySettingsService.UploadLogo(f.ctx, f.db, office, dto.PhotoUpload{OriginalName: "logo.png"})
	assertAppError(t, err, http.StatusNotFound, apperrors.CodeNotFound)

	_, err = f.svc.CompanySettingsService.UpdateSettings(f.ctx, f.db, office, &dto.UpdateCompanySettingsRequest{
		CompanyName: "ACME",
		Address:     dto.AddressDTO{City: "Lyon"},
	})
	require.NoError(t, err)

	// реквизиты есть, пустой файл отклоняется проверкой
	_, err = f.svc.CompanySettingsService.UploadLogo(f.ctx, f.db, office, dto.PhotoUpload{OriginalName: "logo.png"})
	assertAppError(t, err, http.StatusBadRequest, apperrors.CodeValidationFailed)

	logo := testutil.PNG(t, 120, 60, 4)
	resp, err := f.svc.CompanySettingsService.UploadLogo(f.ctx, f.db, office, dto.PhotoUpload{
		OriginalName: "logo.png",
		DeclaredType: "image/png",
		Size:         int64(len(logo)),
		Data:         logo,
	})
	require.NoError(t, err)
	assert.True(t, resp.HasLogo)

	// логотип сохраняется при обновлении реквизитов
	resp, err = f.svc.CompanySettingsService.UpdateSettings(f.ctx, f.db, office, &dto.UpdateCompanySettingsRequest{
		CompanyName: "ACME Sud",
	})
	require.NoError(t, err)
	assert.True(t, resp.HasLogo)

	got, err := f.svc.CompanySettingsService.GetSettings(f.ctx, f.db, technician())
	require.NoError(t, err)
	assert.Equal(t, "ACME Sud", got.CompanyName)
	assert.Equal(t, "", got.Address.City)
	assert.Nil(t, got.DefaultLatitude)

	settings, err := f.svc.CompanySettingsService.Lookup(f.ctx, f.db, companyA)
	require.NoError(t, err)
	assert.NotEmpty(t, f.svc.CompanySettingsService.LoadLogo(f.ctx, settings))
}
