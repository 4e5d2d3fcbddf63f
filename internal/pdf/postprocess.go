package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Штамп номера страницы: %p - текущая, %P - всего
const (
	pageStampText = "Page %p/%P"
	pageStampDesc = "fontname:Helvetica, points:8, position:br, offset:-42 38, scalefactor:1 abs, rotation:0, fillcolor:#777777, opacity:1"
)

var pdfcpuOnce sync.Once

// initPdfcpu отключает каталог конфигурации pdfcpu в домашней папке
func initPdfcpu() {
	pdfcpuOnce.Do(api.DisableConfigDir)
}

func pdfcpuConfig() *model.Configuration {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return cfg
}

// merge склеивает документы в порядке parts
func merge(parts [][]byte) ([]byte, error) {
	if len(parts) == 0 {
		return nil, errors.New("nothing to merge")
	}
	if len(parts) == 1 {
		return parts[0], nil
	}

	readers := make([]io.ReadSeeker, 0, len(parts))
	for _, p := range parts {
		readers = append(readers, bytes.NewReader(p))
	}

	var out bytes.Buffer
	if err := api.MergeRaw(readers, &out, false, pdfcpuConfig()); err != nil {
		return nil, fmt.Errorf("pdfcpu merge: %w", err)
	}
	return out.Bytes(), nil
}

// finalize ставит номера страниц и проверяет, что результат читается.
// Возвращает документ и число страниц.
func finalize(raw []byte) ([]byte, int, error) {
	wm, err := api.TextWatermark(pageStampText, pageStampDesc, true, false, types.POINTS)
	if err != nil {
		return nil, 0, fmt.Errorf("pdfcpu page stamp: %w", err)
	}

	var stamped bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(raw), &stamped, nil, wm, pdfcpuConfig()); err != nil {
		return nil, 0, fmt.Errorf("pdfcpu page stamp: %w", err)
	}

	out := stamped.Bytes()
	pages, err := api.PageCount(bytes.NewReader(out), pdfcpuConfig())
	if err != nil {
		return nil, 0, fmt.Errorf("pdfcpu page count: %w", err)
	}
	if pages == 0 {
		return nil, 0, errors.New("rendered document has no pages")
	}
	return out, pages, nil
}

// PageCount - число страниц готового PDF
func PageCount(data []byte) (int, error) {
	initPdfcpu()
	return api.PageCount(bytes.NewReader(data), pdfcpuConfig())
}
