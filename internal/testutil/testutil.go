// Package testutil собирает общие фикстуры для тестов пакетов:
// sqlite в памяти, локальное хранилище во временной папке, тестовые картинки.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"searchapp_backend/database"
	"searchapp_backend/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB - отдельная sqlite-база в памяти на каждый тест
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=1"
	db, err := database.Open("sqlite", dsn, &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// NewStorage - локальное хранилище в t.TempDir()
func NewStorage(t *testing.T) storage.Storage {
	t.Helper()
	s, err := storage.NewLocalStorage(storage.Config{BasePath: t.TempDir()})
	require.NoError(t, err)
	return s
}

func testImage(w, h int, seed uint8) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x) + seed, G: uint8(y), B: seed, A: 255})
		}
	}
	return img
}

// PNG - валидная PNG-картинка
func PNG(t *testing.T, w, h int, seed uint8) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h, seed)))
	return buf.Bytes()
}

// JPEG - валидная JPEG-картинка
func JPEG(t *testing.T, w, h int, seed uint8) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(w, h, seed), &jpeg.Options{Quality: 80}))
	return buf.Bytes()
}
