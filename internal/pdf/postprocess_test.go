package pdf

import (
	"bytes"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawDocument(t *testing.T, pages int) []byte {
	t.Helper()
	p := fpdf.New("P", "mm", "A4", "")
	p.SetFont("Helvetica", "", 12)
	for i := 0; i < pages; i++ {
		p.AddPage()
		p.Cell(40, 10, "Recherche")
	}
	var buf bytes.Buffer
	require.NoError(t, p.Output(&buf))
	return buf.Bytes()
}

func TestFinalize_StampsEveryPage(t *testing.T) {
	initPdfcpu()
	raw := rawDocument(t, 2)

	out, pages, err := finalize(raw)
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
	assert.Greater(t, len(out), len(raw))

	stamped, err := api.HasWatermarks(bytes.NewReader(out), pdfcpuConfig())
	require.NoError(t, err)
	assert.True(t, stamped)

	stamped, err = api.HasWatermarks(bytes.NewReader(raw), pdfcpuConfig())
	require.NoError(t, err)
	assert.False(t, stamped)
}

func TestFinalize_RejectsGarbage(t *testing.T) {
	initPdfcpu()

	_, _, err := finalize([]byte("not a pdf"))
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	initPdfcpu()

	_, err := merge(nil)
	assert.Error(t, err)

	single := rawDocument(t, 1)
	out, err := merge([][]byte{single})
	require.NoError(t, err)
	assert.Equal(t, single, out)

	out, err = merge([][]byte{rawDocument(t, 1), rawDocument(t, 2)})
	require.NoError(t, err)
	pages, err := PageCount(out)
	require.NoError(t, err)
	assert.Equal(t, 3, pages)
}
