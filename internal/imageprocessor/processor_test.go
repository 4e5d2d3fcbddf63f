package imageprocessor_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"searchapp_backend/internal/imageprocessor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestToJPEG_DownscalesKeepingRatio(t *testing.T) {
	p := imageprocessor.NewProcessor(80, 100)

	out, err := p.ToJPEG(pngBytes(t, 400, 200))
	require.NoError(t, err)
	assert.Equal(t, 100, out.Width)
	assert.Equal(t, 50, out.Height)

	decoded, err := jpeg.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, 100, decoded.Bounds().Dx())
}

func TestToJPEG_SmallImageKeepsSize(t *testing.T) {
	p := imageprocessor.NewProcessor(0, 0)

	out, err := p.ToJPEG(pngBytes(t, 30, 20))
	require.NoError(t, err)
	assert.Equal(t, 30, out.Width)
	assert.Equal(t, 20, out.Height)
}

func TestToJPEG_CorruptData(t *testing.T) {
	p := imageprocessor.NewProcessor(85, 1600)

	_, err := p.ToJPEG([]byte("definitely not an image"))
	assert.Error(t, err)

	valid := pngBytes(t, 10, 10)
	_, err = p.ToJPEG(valid[:len(valid)/2])
	assert.Error(t, err)
}
