// Package pdf собирает отчеты по поискам: раскладка страниц на fpdf,
// склейка и нумерация страниц на pdfcpu. Готовые PDF нигде не хранятся.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"searchapp_backend/internal/imageprocessor"
	"searchapp_backend/internal/logger"
	"searchapp_backend/internal/models"
	"searchapp_backend/internal/storage"

	"golang.org/x/sync/errgroup"
)

// Branding - шапка документа из настроек компании
type Branding struct {
	CompanyName  string
	AddressLines []string
	Logo         []byte
}

// NeutralBranding - шапка для компании без настроек
func NeutralBranding() Branding {
	return Branding{CompanyName: "Rapport de recherche"}
}

type Renderer struct {
	storage     storage.Storage
	images      *imageprocessor.Processor
	concurrency int
	now         func() time.Time
}

func NewRenderer(storage storage.Storage, images *imageprocessor.Processor, concurrency int) *Renderer {
	if concurrency <= 0 {
		concurrency = 4
	}
	initPdfcpu()
	return &Renderer{
		storage:     storage,
		images:      images,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// RenderSearch - отчет по одному поиску
func (r *Renderer) RenderSearch(ctx context.Context, branding Branding, search *models.Search) ([]byte, error) {
	start := time.Now()

	photos, err := r.loadPhotos(ctx, search.Photos)
	if err != nil {
		return nil, err
	}

	doc := newDocument(r.normalizeBranding(ctx, branding), r.now())
	doc.searchSection(search, photos)

	raw, err := doc.bytes()
	if err != nil {
		logger.RenderLog("search", 1, 0, 0, time.Since(start), err)
		return nil, err
	}

	out, pages, err := finalize(raw)
	logger.RenderLog("search", 1, pages, len(out), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RenderSummary - сводная страница и по разделу на каждый поиск, в порядке searches
func (r *Renderer) RenderSummary(ctx context.Context, branding Branding, searches []models.Search) ([]byte, error) {
	start := time.Now()

	var all []models.SearchPhoto
	for i := range searches {
		all = append(all, searches[i].Photos...)
	}
	photos, err := r.loadPhotos(ctx, all)
	if err != nil {
		return nil, err
	}

	branding = r.normalizeBranding(ctx, branding)
	generatedAt := r.now()

	parts := make([][]byte, 0, len(searches)+1)

	cover := newDocument(branding, generatedAt)
	cover.summaryCover(searches)
	raw, err := cover.bytes()
	if err != nil {
		logger.RenderLog("summary", len(searches), 0, 0, time.Since(start), err)
		return nil, err
	}
	parts = append(parts, raw)

	for i := range searches {
		doc := newDocument(branding, generatedAt)
		doc.searchSection(&searches[i], photos)
		raw, err := doc.bytes()
		if err != nil {
			logger.RenderLog("summary", len(searches), 0, 0, time.Since(start), err)
			return nil, fmt.Errorf("search %s: %w", searches[i].ID, err)
		}
		parts = append(parts, raw)
	}

	merged, err := merge(parts)
	if err != nil {
		logger.RenderLog("summary", len(searches), 0, 0, time.Since(start), err)
		return nil, err
	}

	out, pages, err := finalize(merged)
	logger.RenderLog("summary", len(searches), pages, len(out), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// loadPhotos параллельно читает фото из storage и переводит их в JPEG.
// Нечитаемое фото не ломает отчет: в результате его нет, вместо него рисуется заглушка.
func (r *Renderer) loadPhotos(ctx context.Context, photos []models.SearchPhoto) (map[string]*imageprocessor.Normalized, error) {
	loaded := make([]*imageprocessor.Normalized, len(photos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i := range photos {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := photos[i].StoragePath()
			data, err := storage.ReadAll(gctx, r.storage, path)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logger.CtxWarn(ctx, "photo blob is not readable", "path", path, "error", err.Error())
				return nil
			}
			img, err := r.images.ToJPEG(data)
			if err != nil {
				logger.CtxWarn(ctx, "photo cannot be decoded", "path", path, "error", err.Error())
				return nil
			}
			loaded[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byPath := make(map[string]*imageprocessor.Normalized, len(photos))
	for i, img := range loaded {
		if img != nil {
			byPath[photos[i].StoragePath()] = img
		}
	}
	return byPath, nil
}

// normalizeBranding переводит логотип в JPEG; битый логотип просто не выводится
func (r *Renderer) normalizeBranding(ctx context.Context, b Branding) Branding {
	if b.CompanyName == "" {
		b.CompanyName = NeutralBranding().CompanyName
	}
	if len(b.Logo) == 0 {
		return b
	}
	img, err := r.images.ToJPEG(b.Logo)
	if err != nil {
		logger.CtxWarn(ctx, "company logo cannot be decoded", "error", err.Error())
		b.Logo = nil
		return b
	}
	b.Logo = img.Data
	return b
}

func (d *document) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("fpdf output: %w", err)
	}
	return buf.Bytes(), nil
}
