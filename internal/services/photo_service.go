package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"

	"searchapp_backend/internal/auth"
	"searchapp_backend/internal/logger"
	"searchapp_backend/internal/models"
	"searchapp_backend/internal/repositories"
	"searchapp_backend/internal/services/dto"
	"searchapp_backend/internal/storage"
	"searchapp_backend/pkg/apperrors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ============================================
// PHOTO SERVICE
// ============================================

type PhotoService interface {
	// Prepare проверяет все фото до любой записи: тип, размер, нумерацию
	Prepare(set *dto.PhotoSet) ([]PreparedPhoto, error)

	// Attach пишет блобы и строки search_photos в переданной транзакции
	Attach(ctx context.Context, tx *gorm.DB, searchID string, photos []PreparedPhoto) (*PhotoBatch, error)

	// Replace удаляет прежний набор фото и прикрепляет новый
	Replace(ctx context.Context, tx *gorm.DB, searchID string, photos []PreparedPhoto) (*PhotoBatch, error)

	// Fetch отдает байты фото как есть
	Fetch(ctx context.Context, db *gorm.DB, principal auth.Principal, searchID, filename string) (*dto.PhotoContent, error)
}

// PhotoConfig - ограничения на загружаемые фото
type PhotoConfig struct {
	MaxPhotoSize int64
	AllowedTypes []string
}

type photoService struct {
	searchRepo repositories.SearchRepository
	storage    storage.Storage
	config     PhotoConfig
}

// PreparedPhoto - проверенное фото, готовое к записи
type PreparedPhoto struct {
	OriginalName string
	ContentType  string
	Extension    string
	Number       int
	SectionID    string
	Data         []byte
}

// PhotoBatch - результат Attach/Replace.
// После коммита вызывается Finalize, при откате - Discard.
type PhotoBatch struct {
	Photos   []models.SearchPhoto
	written  []string
	obsolete []string
	storage  storage.Storage
}

// Discard удаляет блобы, записанные этим вызовом
func (b *PhotoBatch) Discard(ctx context.Context) {
	if b == nil {
		return
	}
	deleteBlobs(ctx, b.storage, b.written)
}

// Finalize удаляет блобы замененного набора
func (b *PhotoBatch) Finalize(ctx context.Context) {
	if b == nil {
		return
	}
	deleteBlobs(ctx, b.storage, b.obsolete)
}

func deleteBlobs(ctx context.Context, s storage.Storage, paths []string) {
	// Удаление не должно зависеть от отмены запроса
	ctx = context.WithoutCancel(ctx)
	for _, path := range paths {
		if err := s.Delete(ctx, path); err != nil {
			logger.CtxWithError(ctx, "CRITICAL: failed to delete photo blob", err, "path", path)
		}
	}
}

func NewPhotoService(
	searchRepo repositories.SearchRepository,
	storage storage.Storage,
	config PhotoConfig,
) PhotoService {
	if config.MaxPhotoSize <= 0 {
		config.MaxPhotoSize = 5 * 1024 * 1024
	}
	if len(config.AllowedTypes) == 0 {
		config.AllowedTypes = []string{"image/jpeg", "image/png", "image/webp"}
	}
	return &photoService{
		searchRepo: searchRepo,
		storage:    storage,
		config:     config,
	}
}

// ============================================
// ВАЛИДАЦИЯ
// ============================================

func (s *photoService) Prepare(set *dto.PhotoSet) ([]PreparedPhoto, error) {
	if set.Len() == 0 {
		if set != nil && (len(set.Numbers) > 0 || len(set.Sections) > 0) {
			return nil, apperrors.ValidationError(map[string]string{
				"photo_numbers": "Photo numbers were sent without photos",
			})
		}
		return nil, nil
	}

	if len(set.Numbers) > 0 && len(set.Numbers) != len(set.Uploads) {
		return nil, apperrors.ValidationError(map[string]string{
			"photo_numbers": fmt.Sprintf("Expected %d photo numbers, got %d", len(set.Uploads), len(set.Numbers)),
		})
	}
	if len(set.Sections) > 0 && len(set.Sections) != len(set.Uploads) {
		return nil, apperrors.ValidationError(map[string]string{
			"photo_sections": fmt.Sprintf("Expected %d photo sections, got %d", len(set.Uploads), len(set.Sections)),
		})
	}

	prepared := make([]PreparedPhoto, 0, len(set.Uploads))
	for i, upload := range set.Uploads {
		contentType, ext, err := s.checkImage(upload.OriginalName, upload.DeclaredType, upload.Size, upload.Data)
		if err != nil {
			return nil, err
		}

		// Без нумерации - 1..N в порядке отправки
		number := i + 1
		if len(set.Numbers) > 0 {
			number = set.Numbers[i]
			if number < 1 {
				return nil, apperrors.ValidationError(map[string]string{
					"photo_numbers": fmt.Sprintf("Photo number must be positive, got %d", number),
				})
			}
		}

		var section string
		if len(set.Sections) > 0 {
			section = strings.TrimSpace(set.Sections[i])
		}

		prepared = append(prepared, PreparedPhoto{
			OriginalName: upload.OriginalName,
			ContentType:  contentType,
			Extension:    ext,
			Number:       number,
			SectionID:    section,
			Data:         upload.Data,
		})
	}
	return prepared, nil
}

// checkImage проверяет размер, заявленный и реальный тип файла.
// Возвращает реальный тип и расширение.
func (s *photoService) checkImage(name, declared string, size int64, data []byte) (string, string, error) {
	return checkImage(s.config, name, declared, size, data)
}

func checkImage(cfg PhotoConfig, name, declared string, size int64, data []byte) (string, string, error) {
	if size < int64(len(data)) {
		size = int64(len(data))
	}
	if size > cfg.MaxPhotoSize {
		return "", "", apperrors.ErrPayloadTooLarge(name, size, cfg.MaxPhotoSize)
	}
	if len(data) == 0 {
		return "", "", apperrors.ValidationError(map[string]string{"photos": "Empty file: " + name})
	}

	// application/octet-stream и пустой тип считаем незаявленными
	if declared != "" {
		if mediaType, _, err := mime.ParseMediaType(declared); err == nil {
			declared = mediaType
		}
		if declared != "application/octet-stream" && !isAllowedType(cfg.AllowedTypes, declared) {
			return "", "", apperrors.ErrUnsupportedMediaType(name, declared)
		}
	}

	detected := mimetype.Detect(data)
	for _, allowed := range cfg.AllowedTypes {
		if detected.Is(allowed) {
			return allowed, detected.Extension(), nil
		}
	}
	return "", "", apperrors.ErrUnsupportedMediaType(name, detected.String())
}

func isAllowedType(allowed []string, contentType string) bool {
	for _, t := range allowed {
		if strings.EqualFold(t, contentType) {
			return true
		}
	}
	return false
}

// ============================================
// ЗАПИСЬ
// ============================================

func (s *photoService) Attach(ctx context.Context, tx *gorm.DB, searchID string, photos []PreparedPhoto) (*PhotoBatch, error) {
	batch := &PhotoBatch{storage: s.storage}
	if len(photos) == 0 {
		return batch, nil
	}

	rows := make([]models.SearchPhoto, 0, len(photos))
	for i, p := range photos {
		row := models.SearchPhoto{
			SearchID:     searchID,
			Filename:     uuid.NewString() + p.Extension,
			OriginalName: p.OriginalName,
			ContentType:  p.ContentType,
			Size:         int64(len(p.Data)),
			Number:       p.Number,
			SectionID:    p.SectionID,
			Position:     i,
		}

		path := row.StoragePath()
		if err := s.storage.Save(ctx, path, bytes.NewReader(p.Data), p.ContentType); err != nil {
			batch.Discard(ctx)
			return nil, apperrors.InternalError(fmt.Errorf("failed to save photo to storage: %w", err))
		}
		batch.written = append(batch.written, path)
		rows = append(rows, row)
	}

	if err := s.searchRepo.CreatePhotos(tx, rows); err != nil {
		batch.Discard(ctx)
		return nil, apperrors.InternalError(err)
	}

	batch.Photos = rows
	logger.CtxDebug(ctx, "photos attached", "search_id", searchID, "count", len(rows))
	return batch, nil
}

func (s *photoService) Replace(ctx context.Context, tx *gorm.DB, searchID string, photos []PreparedPhoto) (*PhotoBatch, error) {
	current, err := s.searchRepo.FindByID(tx, searchID)
	if err != nil {
		return nil, handleSearchError(err, searchID)
	}

	obsolete := make([]string, 0, len(current.Photos))
	for i := range current.Photos {
		obsolete = append(obsolete, current.Photos[i].StoragePath())
	}

	if err := s.searchRepo.DeletePhotos(tx, searchID); err != nil {
		return nil, apperrors.InternalError(err)
	}

	batch, err := s.Attach(ctx, tx, searchID, photos)
	if err != nil {
		return nil, err
	}
	batch.obsolete = obsolete
	return batch, nil
}

// ============================================
// ЧТЕНИЕ
// ============================================

func (s *photoService) Fetch(ctx context.Context, db *gorm.DB, principal auth.Principal, searchID, filename string) (*dto.PhotoContent, error) {
	if !principal.Can(auth.PermSearchRead) {
		return nil, apperrors.ErrRoleNotAllowed(string(principal.Role), "read photos")
	}
	if _, err := loadSearch(db, s.searchRepo, principal, searchID); err != nil {
		return nil, err
	}

	photo, err := s.searchRepo.FindPhoto(db, searchID, filename)
	if err != nil {
		if errors.Is(err, repositories.ErrPhotoNotFound) {
			return nil, apperrors.ErrPhotoNotFound(filename)
		}
		return nil, apperrors.InternalError(err)
	}

	data, err := storage.ReadAll(ctx, s.storage, photo.StoragePath())
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			logger.CtxWarn(ctx, "photo row without blob", "search_id", searchID, "filename", filename)
			return nil, apperrors.ErrPhotoNotFound(filename)
		}
		return nil, apperrors.InternalError(fmt.Errorf("failed to read photo from storage: %w", err))
	}

	return &dto.PhotoContent{
		Filename:    photo.Filename,
		ContentType: photo.ContentType,
		Data:        data,
	}, nil
}
