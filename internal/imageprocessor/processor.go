package imageprocessor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Processor готовит фото поисков к вставке в PDF
type Processor struct {
	quality int // JPEG quality (1-100)
	maxEdge int // максимальная сторона в px
}

func NewProcessor(quality, maxEdge int) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	if maxEdge <= 0 {
		maxEdge = 1600
	}
	return &Processor{
		quality: quality,
		maxEdge: maxEdge,
	}
}

// Normalized - JPEG, пригодный для PDF
type Normalized struct {
	Data   []byte
	Width  int
	Height int
}

// ToJPEG декодирует jpeg/png/webp, уменьшает до maxEdge и кодирует в JPEG.
// Битые данные возвращают ошибку.
func (p *Processor) ToJPEG(data []byte) (*Normalized, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("image has empty bounds")
	}

	resized := p.resize(img, p.maxEdge, p.maxEdge)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}

	rb := resized.Bounds()
	return &Normalized{Data: buf.Bytes(), Width: rb.Dx(), Height: rb.Dy()}, nil
}

// resize уменьшает изображение с сохранением пропорций и кладет его
// на белый фон (прозрачность PNG/WebP в JPEG не переносится)
func (p *Processor) resize(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	newWidth, newHeight := width, height
	if width > maxWidth || height > maxHeight {
		ratio := float64(width) / float64(height)
		newWidth, newHeight = maxWidth, maxHeight
		if float64(maxWidth)/float64(maxHeight) > ratio {
			newWidth = int(float64(maxHeight) * ratio)
		} else {
			newHeight = int(float64(maxWidth) / ratio)
		}
		if newWidth < 1 {
			newWidth = 1
		}
		if newHeight < 1 {
			newHeight = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	return dst
}
