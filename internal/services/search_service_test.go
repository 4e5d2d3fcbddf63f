package services_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"searchapp_backend/internal/config"
	"searchapp_backend/internal/models"
	"searchapp_backend/internal/services/dto"
	"searchapp_backend/internal/testutil"
	"searchapp_backend/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSearch_DefaultCoordinates(t *testing.T) {
	f := newFixture(t)

	resp := f.createSearch(t, technician(), "Rue de Rivoli", nil)

	assert.Equal(t, 48.8566, resp.Latitude)
	assert.Equal(t, 2.3522, resp.Longitude)
	assert.Equal(t, string(models.SearchStatusActive), resp.Status)
	assert.Empty(t, resp.Photos)
}

func TestCreateSearch_PartialCoordinatesUseDefaultPair(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.SearchService.CreateSearch(f.ctx, f.db, technician(), &dto.SearchRequest{
		Location: "Pont Neuf",
		Latitude: float(43.3),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 48.8566, resp.Latitude)
	assert.Equal(t, 2.3522, resp.Longitude)
}

func TestCreateSearch_CoordinatesRoundTrip(t *testing.T) {
	f := newFixture(t)
	p := technician()

	created, err := f.svc.SearchService.CreateSearch(f.ctx, f.db, p, &dto.SearchRequest{
		Location:  "Hôtel de Ville",
		Latitude:  float(48.856614),
		Longitude: float(2.352222),
	}, nil)
	require.NoError(t, err)

	got, err := f.svc.SearchService.GetSearch(f.ctx, f.db, p, created.ID)
	require.NoError(t, err)
	assert.InDelta(t, 48.856614, got.Latitude, 1e-7)
	assert.InDelta(t, 2.352222, got.Longitude, 1e-7)
}

func TestCreateSearch_TenantGeoDefault(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CompanySettingsService.UpdateSettings(f.ctx, f.db, bureau(), &dto.UpdateCompanySettingsRequest{
		CompanyName:      "ACME Lyon",
		DefaultLatitude:  float(45.764043),
		DefaultLongitude: float(4.835659),
	})
	require.NoError(t, err)

	resp := f.createSearch(t, technician(), "Presqu'île", nil)
	assert.Equal(t, 45.764043, resp.Latitude)
	assert.Equal(t, 4.835659, resp.Longitude)

	// другой тенант получает сконфигурированный дефолт
	other := f.createSearch(t, principal(companyB, models.UserRoleTechnicien), "Ailleurs", nil)
	assert.Equal(t, 48.8566, other.Latitude)
}

func TestCreateSearch_InvalidCoordinates(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SearchService.CreateSearch(f.ctx, f.db, technician(), &dto.SearchRequest{
		Location:  "Nowhere",
		Latitude:  float(91),
		Longitude: float(2),
	}, nil)
	assertAppError(t, err, http.StatusBadRequest, apperrors.CodeInvalidCoordinate)

	_, err = f.svc.SearchService.CreateSearch(f.ctx, f.db, technician(), &dto.SearchRequest{
		Location:  "Nowhere",
		Latitude:  float(10),
		Longitude: float(-180.5),
	}, nil)
	assertAppError(t, err, http.StatusBadRequest, apperrors.CodeInvalidCoordinate)
}

func TestCreateSearch_BureauCannotCreate(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SearchService.CreateSearch(f.ctx, f.db, bureau(), &dto.SearchRequest{Location: "X"}, nil)
	assertAppError(t, err, http.StatusForbidden, apperrors.CodeForbidden)
}

func TestCreateSearch_PhotosKeepSubmittedNumbering(t *testing.T) {
	f := newFixture(t)
	p := technician()

	uploads := []dto.PhotoUpload{jpegUpload(t, "a.jpg", 1), jpegUpload(t, "b.jpg", 2), jpegUpload(t, "c.jpg", 3)}
	created := f.createSearch(t, p, "Rue Oberkampf", &dto.PhotoSet{
		Uploads:  uploads,
		Numbers:  []int{3, 1, 2},
		Sections: []string{"Façade", "", "Cave"},
	})

	got, err := f.svc.SearchService.GetSearch(f.ctx, f.db, p, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Photos, 3)

	var numbers []int
	for i, photo := range got.Photos {
		numbers = append(numbers, photo.Number)
		assert.Equal(t, i, photo.Position)
		assert.Equal(t, "image/jpeg", photo.ContentType)
		assert.Equal(t, uploads[i].OriginalName, photo.OriginalName)
		assert.Equal(t, dto.PhotoURL(created.ID, photo.Filename), photo.URL)

		content, err := f.svc.PhotoService.Fetch(f.ctx, f.db, p, created.ID, photo.Filename)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(uploads[i].Data, content.Data))
	}
	assert.Equal(t, []int{3, 1, 2}, numbers)
	assert.Equal(t, "Façade", got.Photos[0].SectionID)
	assert.Equal(t, "", got.Photos[1].SectionID)
}

func TestCreateSearch_DefaultNumbering(t *testing.T) {
	f := newFixture(t)

	created := f.createSearch(t, technician(), "Gare", &dto.PhotoSet{
		Uploads: []dto.PhotoUpload{jpegUpload(t, "a.jpg", 1), jpegUpload(t, "b.jpg", 2)},
	})
	require.Len(t, created.Photos, 2)
	assert.Equal(t, 1, created.Photos[0].Number)
	assert.Equal(t, 2, created.Photos[1].Number)
}

func TestCreateSearch_RejectsBadPhotosWithoutWriting(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) { cfg.Upload.MaxPhotoSize = 64 * 1024 })
	p := technician()

	t.Run("not an image", func(t *testing.T) {
		_, err := f.svc.SearchService.CreateSearch(f.ctx, f.db, p, &dto.SearchRequest{Location: "X"}, &dto.PhotoSet{
			Uploads: []dto.PhotoUpload{
				jpegUpload(t, "ok.jpg", 1),
				{OriginalName: "notes.txt", DeclaredType: "application/octet-stream", Size: 11, Data: []byte("hello world")},
			},
		})
		assertAppError(t, err, http.StatusUnsupportedMediaType, apperrors.CodeUnsupportedMediaType)
	})

	t.Run("declared type not allowed", func(t *testing.T) {
		_, err := f.svc.SearchService.CreateSearch(f.ctx, f.db, p, &dto.SearchRequest{Location: "X"}, &dto.PhotoSet{
			Uploads: []dto.PhotoUpload{{OriginalName: "a.gif", DeclaredType: "image/gif", Size: 4, Data: []byte("GIF8")}},
		})
		assertAppError(t, err, http.StatusUnsupportedMediaType, apperrors.CodeUnsupportedMediaType)
	})

	t.Run("too large", func(t *testing.T) {
		big := testutil.PNG(t, 20, 20, 7)
		_, err := f.svc.SearchService.CreateSearch(f.ctx, f.db, p, &dto.SearchRequest{Location: "X"}, &dto.PhotoSet{
			Uploads: []dto.PhotoUpload{{OriginalName: "big.png", DeclaredType: "image/png", Size: 65*1024 + 1, Data: big}},
		})
		assertAppError(t, err, http.StatusRequestEntityTooLarge, apperrors.CodePayloadTooLarge)
	})

	t.Run("numbering mismatch", func(t *testing.T) {
		_, err := f.svc.SearchService.CreateSearch(f.ctx, f.db, p, &dto.SearchRequest{Location: "X"}, &dto.PhotoSet{
			Uploads: []dto.PhotoUpload{jpegUpload(t, "a.jpg", 1)},
			Numbers: []int{1, 2},
		})
		assertAppError(t, err, http.StatusBadRequest, apperrors.CodeValidationFailed)
	})

	t.Run("non positive number", func(t *testing.T) {
		_, err := f.svc.SearchService.CreateSearch(f.ctx, f.db, p, &dto.SearchRequest{Location: "X"}, &dto.PhotoSet{
			Uploads: []dto.PhotoUpload{jpegUpload(t, "a.jpg", 1)},
			Numbers: []int{0},
		})
		assertAppError(t, err, http.StatusBadRequest, apperrors.CodeValidationFailed)
	})

	var searches, photos int64
	require.NoError(t, f.db.Model(&models.Search{}).Count(&searches).Error)
	require.NoError(t, f.db.Model(&models.SearchPhoto{}).Count(&photos).Error)
	assert.Zero(t, searches)
	assert.Zero(t, photos)
}

func TestCreateSearch_SameNumberInTwoSections(t *testing.T) {
	f := newFixture(t)
	p := technician()

	created := f.createSearch(t, p, "Immeuble", &dto.PhotoSet{
		Uploads:  []dto.PhotoUpload{jpegUpload(t, "a.jpg", 1), jpegUpload(t, "b.jpg", 2)},
		Numbers:  []int{1, 1},
		Sections: []string{"A", "B"},
	})

	got, err := f.svc.SearchService.GetSearch(f.ctx, f.db, p, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Photos, 2)
	assert.Equal(t, 1, got.Photos[0].Number)
	assert.Equal(t, 1, got.Photos[1].Number)
	assert.Equal(t, "A", got.Photos[0].SectionID)
	assert.Equal(t, "B", got.Photos[1].SectionID)
	assert.NotEqual(t, got.Photos[0].Filename, got.Photos[1].Filename)
}

func TestGetSearch_ReadsArePure(t *testing.T) {
	f := newFixture(t)
	p := technician()

	created := f.createSearch(t, p, "Lecture", &dto.PhotoSet{
		Uploads:  []dto.PhotoUpload{jpegUpload(t, "a.jpg", 1), jpegUpload(t, "b.jpg", 2)},
		Numbers:  []int{2, 1},
		Sections: []string{"Cave", ""},
	})

	first, err := f.svc.SearchService.GetSearch(f.ctx, f.db, p, created.ID)
	require.NoError(t, err)
	second, err := f.svc.SearchService.GetSearch(f.ctx, f.db, p, created.ID)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))

	// фото читаются без побочных эффектов
	for _, photo := range first.Photos {
		a, err := f.svc.PhotoService.Fetch(f.ctx, f.db, p, created.ID, photo.Filename)
		require.NoError(t, err)
		b, err := f.svc.PhotoService.Fetch(f.ctx, f.db, p, created.ID, photo.Filename)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(a.Data, b.Data))
	}

	again, err := f.svc.SearchService.GetSearch(f.ctx, f.db, p, created.ID)
	require.NoError(t, err)
	assert.Equal(t, first.UpdatedAt, again.UpdatedAt)
}

func TestUpdateSearch_ReplacesPhotoSet(t *testing.T) {
	f := newFixture(t)
	p := technician()

	created := f.createSearch(t, p, "Avant", &dto.PhotoSet{
		Uploads: []dto.PhotoUpload{jpegUpload(t, "a.jpg", 1), jpegUpload(t, "b.jpg", 2)},
	})
	oldFiles := []string{created.Photos[0].Filename, created.Photos[1].Filename}

	updated, err := f.svc.SearchService.UpdateSearch(f.ctx, f.db, p, created.ID, &dto.SearchRequest{
		Location:     "Après",
		Observations: "Réparé",
		Latitude:     float(1.5),
		Longitude:    float(-3.25),
	}, &dto.PhotoSet{
		Uploads: []dto.PhotoUpload{jpegUpload(t, "c.jpg", 3)},
		Numbers: []int{7},
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.UserID, updated.UserID)
	assert.Equal(t, companyA, updated.CompanyID)
	assert.Equal(t, created.Status, updated.Status)
	assert.Equal(t, "Après", updated.Location)
	assert.Equal(t, "", updated.Description)
	assert.Equal(t, 1.5, updated.Latitude)
	require.Len(t, updated.Photos, 1)
	assert.Equal(t, 7, updated.Photos[0].Number)

	for _, name := range oldFiles {
		_, err := f.svc.PhotoService.Fetch(f.ctx, f.db, p, created.ID, name)
		assertAppError(t, err, http.StatusNotFound, apperrors.CodeNotFound)

		_, err = f.storage.Get(f.ctx, models.PhotoStoragePath(created.ID, name))
		assert.Error(t, err, "old blob must be removed")
	}

	_, err = f.svc.PhotoService.Fetch(f.ctx, f.db, p, created.ID, updated.Photos[0].Filename)
	require.NoError(t, err)
}

func TestUpdateSearch_WithoutPhotosClearsSet(t *testing.T) {
	f := newFixture(t)
	p := technician()

	created := f.createSearch(t, p, "Avant", &dto.PhotoSet{Uploads: []dto.PhotoUpload{jpegUpload(t, "a.jpg", 1)}})

	updated, err := f.svc.SearchService.UpdateSearch(f.ctx, f.db, p, created.ID, &dto.SearchRequest{Location: "Avant"}, nil)
	require.NoError(t, err)
	assert.Empty(t, updated.Photos)
	assert.Equal(t, 48.8566, updated.Latitude)
}

func TestUpdateSearch_ArchivedIsRejected(t *testing.T) {
	f := newFixture(t)
	p := technician()
	created := f.createSearch(t, p, "Archive", nil)

	_, err := f.svc.SearchService.UpdateStatus(f.ctx, f.db, bureau(), created.ID, "ARCHIVED")
	require.NoError(t, err)

	_, err = f.svc.SearchService.UpdateSearch(f.ctx, f.db, p, created.ID, &dto.SearchRequest{Location: "Y"}, nil)
	assertAppError(t, err, http.StatusForbidden, apperrors.CodeInvalidTransition)
}

func TestUpdateStatus_Transitions(t *testing.T) {
	f := newFixture(t)
	tech := technician()
	office := bureau()
	created := f.createSearch(t, tech, "Statuts", nil)

	resp, err := f.svc.SearchService.UpdateStatus(f.ctx, f.db, tech, created.ID, ` "shared" `)
	require.NoError(t, err)
	assert.Equal(t, "SHARED", resp.Status)

	// техник не может перевести в PROCESSED
	_, err = f.svc.SearchService.UpdateStatus(f.ctx, f.db, tech, created.ID, "PROCESSED")
	assertAppError(t, err, http.StatusForbidden, apperrors.CodeForbidden)

	_, err = f.svc.SearchService.UpdateStatus(f.ctx, f.db, office, created.ID, "PROCESSED")
	require.NoError(t, err)

	// назад нельзя
	_, err = f.svc.SearchService.UpdateStatus(f.ctx, f.db, office, created.ID, "SHARED")
	assertAppError(t, err, http.StatusForbidden, apperrors.CodeInvalidTransition)

	// повтор того же статуса тоже запрещен
	_, err = f.svc.SearchService.UpdateStatus(f.ctx, f.db, office, created.ID, "PROCESSED")
	assertAppError(t, err, http.StatusForbidden, apperrors.CodeInvalidTransition)

	_, err = f.svc.SearchService.UpdateStatus(f.ctx, f.db, office, created.ID, "ARCHIVED")
	require.NoError(t, err)

	_, err = f.svc.SearchService.UpdateStatus(f.ctx, f.db, office, created.ID, "ARCHIVED")
	assertAppError(t, err, http.StatusForbidden, apperrors.CodeInvalidTransition)

	_, err = f.svc.SearchService.UpdateStatus(f.ctx, f.db, office, created.ID, "DONE")
	assertAppError(t, err, http.StatusBadRequest, apperrors.CodeInvalidStatus)
}

func TestUpdateStatus_ArchiveFromActive(t *testing.T) {
	f := newFixture(t)
	created := f.createSearch(t, technician(), "Vite archivé", nil)

	resp, err := f.svc.SearchService.UpdateStatus(f.ctx, f.db, bureau(), created.ID, "archived")
	require.NoError(t, err)
	assert.Equal(t, "ARCHIVED", resp.Status)
}

func TestGetSearch_TenantIsolationAndNotFound(t *testing.T) {
	f := newFixture(t)
	created := f.createSearch(t, technician(), "Privé", nil)

	_, err := f.svc.SearchService.GetSearch(f.ctx, f.db, principal(companyB, models.UserRoleBureau), created.ID)
	assertAppError(t, err, http.StatusForbidden, apperrors.CodeForbidden)

	_, err = f.svc.SearchService.GetSearch(f.ctx, f.db, bureau(), uuid.NewString())
	assertAppError(t, err, http.StatusNotFound, apperrors.CodeNotFound)

	_, err = f.svc.SearchService.GetSearch(f.ctx, f.db, bureau(), "not-a-uuid")
	assertAppError(t, err, http.StatusNotFound, apperrors.CodeNotFound)
}

func TestListSearches_Scope(t *testing.T) {
	f := newFixture(t)
	alice := technician()
	bob := technician()

	f.createSearch(t, alice, "A1", nil)
	f.createSearch(t, alice, "A2", nil)
	f.createSearch(t, bob, "B1", nil)
	f.createSearch(t, principal(companyB, models.UserRoleTechnicien), "Other", nil)

	own, err := f.svc.SearchService.ListSearches(f.ctx, f.db, alice, &dto.ListSearchesRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), own.Total)

	all, err := f.svc.SearchService.ListSearches(f.ctx, f.db, bureau(), &dto.ListSearchesRequest{PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)
	assert.Len(t, all.Searches, 2)
	assert.Equal(t, 2, all.TotalPages)

	active, err := f.svc.SearchService.ListSearches(f.ctx, f.db, bureau(), &dto.ListSearchesRequest{Status: "SHARED"})
	require.NoError(t, err)
	assert.Zero(t, active.Total)
}
