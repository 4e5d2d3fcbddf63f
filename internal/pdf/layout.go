package pdf

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"searchapp_backend/internal/imageprocessor"
	"searchapp_backend/internal/models"

	"github.com/go-pdf/fpdf"
)

// Размеры в мм, A4 портрет
const (
	marginX      = 15.0
	marginTop    = 38.0
	marginBottom = 22.0
	headerTop    = 10.0
	logoMaxW     = 40.0
	logoMaxH     = 20.0

	galleryCols    = 2
	galleryGap     = 6.0
	galleryBoxH    = 65.0
	galleryCaption = 6.0
)

const dateLayout = "02/01/2006 15:04"

var statusLabels = map[models.SearchStatus]string{
	models.SearchStatusActive:         "Active",
	models.SearchStatusShared:         "Partagée",
	models.SearchStatusSharedToBureau: "Transmise au bureau",
	models.SearchStatusProcessed:      "Traitée",
	models.SearchStatusArchived:       "Archivée",
}

func statusLabel(s models.SearchStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// PhotoCaption - подпись фото по присвоенному клиентом номеру
func PhotoCaption(p models.SearchPhoto) string {
	caption := fmt.Sprintf("Photo n°%02d", p.Number)
	if p.SectionID != "" {
		caption += " - " + p.SectionID
	}
	return caption
}

// document - один fpdf-документ с общей шапкой и подвалом
type document struct {
	pdf      *fpdf.Fpdf
	tr       func(string) string
	branding Branding
	imageSeq int
}

func newDocument(branding Branding, generatedAt time.Time) *document {
	p := fpdf.New("P", "mm", "A4", "")
	d := &document{
		pdf:      p,
		tr:       p.UnicodeTranslatorFromDescriptor(""), // cp1252 для core-шрифтов
		branding: branding,
	}

	p.SetTitle(branding.CompanyName, true)
	p.SetCreator("searchapp", true)
	p.SetCreationDate(generatedAt)
	p.SetMargins(marginX, marginTop, marginX)
	p.SetAutoPageBreak(true, marginBottom)

	logoName := ""
	var logoW, logoH float64
	if len(branding.Logo) > 0 {
		logoName = "company-logo"
		info := p.RegisterImageOptionsReader(logoName, fpdf.ImageOptions{ImageType: "JPG"}, bytes.NewReader(branding.Logo))
		if info != nil && p.Ok() {
			logoW, logoH = fitBox(info.Width(), info.Height(), logoMaxW, logoMaxH)
		} else {
			logoName = ""
		}
	}

	p.SetHeaderFunc(func() {
		pageW, _ := p.GetPageSize()

		if logoName != "" {
			p.ImageOptions(logoName, pageW-marginX-logoW, headerTop, logoW, logoH, false, fpdf.ImageOptions{ImageType: "JPG"}, 0, "")
		}

		p.SetXY(marginX, headerTop)
		p.SetTextColor(30, 30, 30)
		p.SetFont("Helvetica", "B", 13)
		p.CellFormat(pageW-2*marginX-logoMaxW, 7, d.tr(branding.CompanyName), "", 1, "L", false, 0, "")

		p.SetFont("Helvetica", "", 8.5)
		p.SetTextColor(90, 90, 90)
		for _, line := range branding.AddressLines {
			p.SetX(marginX)
			p.CellFormat(pageW-2*marginX-logoMaxW, 4, d.tr(line), "", 1, "L", false, 0, "")
		}

		p.SetDrawColor(200, 200, 200)
		p.Line(marginX, marginTop-4, pageW-marginX, marginTop-4)
		p.SetXY(marginX, marginTop)
	})

	// Номера страниц ставит pdfcpu после склейки
	p.SetFooterFunc(func() {
		pageW, _ := p.GetPageSize()
		p.SetDrawColor(200, 200, 200)
		p.SetY(-16)
		p.Line(marginX, p.GetY(), pageW-marginX, p.GetY())
		p.SetY(-14)
		p.SetFont("Helvetica", "I", 8)
		p.SetTextColor(120, 120, 120)
		p.CellFormat(0, 5, d.tr("Généré le "+generatedAt.Format(dateLayout)), "", 0, "L", false, 0, "")
	})

	return d
}

func (d *document) contentWidth() float64 {
	pageW, _ := d.pdf.GetPageSize()
	return pageW - 2*marginX
}

func (d *document) title(text string) {
	d.pdf.SetFont("Helvetica", "B", 16)
	d.pdf.SetTextColor(20, 20, 20)
	d.pdf.MultiCell(0, 8, d.tr(text), "", "L", false)
	d.pdf.Ln(2)
}

func (d *document) heading(text string) {
	d.pdf.Ln(3)
	d.pdf.SetFont("Helvetica", "B", 11)
	d.pdf.SetTextColor(40, 40, 40)
	d.pdf.SetFillColor(238, 238, 238)
	d.pdf.CellFormat(0, 7, d.tr(text), "", 1, "L", true, 0, "")
	d.pdf.Ln(1.5)
}

func (d *document) field(label, value string) {
	d.pdf.SetFont("Helvetica", "B", 9.5)
	d.pdf.SetTextColor(70, 70, 70)
	d.pdf.CellFormat(42, 6, d.tr(label), "", 0, "L", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 9.5)
	d.pdf.SetTextColor(20, 20, 20)
	d.pdf.MultiCell(0, 6, d.tr(value), "", "L", false)
}

func (d *document) paragraph(text string) {
	if text == "" {
		text = "-"
	}
	d.pdf.SetFont("Helvetica", "", 9.5)
	d.pdf.SetTextColor(20, 20, 20)
	d.pdf.MultiCell(0, 5, d.tr(text), "", "L", false)
}

// ============================================
// Раздел поиска
// ============================================

func (d *document) searchSection(search *models.Search, photos map[string]*imageprocessor.Normalized) {
	d.pdf.AddPage()

	d.title(search.Location)

	d.field("Statut", statusLabel(search.Status))
	d.field("Latitude", fmt.Sprintf("%.6f", search.Latitude))
	d.field("Longitude", fmt.Sprintf("%.6f", search.Longitude))
	d.field("Créée le", search.CreatedAt.Format(dateLayout))
	d.field("Modifiée le", search.UpdatedAt.Format(dateLayout))
	d.field("Référence", search.ID)

	d.heading("Description")
	d.paragraph(search.Description)

	d.heading("Observations")
	d.paragraph(search.Observations)

	d.heading(fmt.Sprintf("Photos (%d)", len(search.Photos)))
	if len(search.Photos) == 0 {
		d.paragraph("Aucune photo")
		return
	}
	d.gallery(search.Photos, photos)
}

// gallery выводит фото в порядке position, две колонки
func (d *document) gallery(list []models.SearchPhoto, photos map[string]*imageprocessor.Normalized) {
	ordered := make([]models.SearchPhoto, len(list))
	copy(ordered, list)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })

	_, pageH := d.pdf.GetPageSize()
	colW := (d.contentWidth() - galleryGap*(galleryCols-1)) / galleryCols
	cellH := galleryBoxH + galleryCaption + 4

	y := d.pdf.GetY()
	for i, photo := range ordered {
		col := i % galleryCols
		if col == 0 && i > 0 {
			y += cellH
		}
		if col == 0 && y+cellH > pageH-marginBottom {
			d.pdf.AddPage()
			y = d.pdf.GetY()
		}
		x := marginX + float64(col)*(colW+galleryGap)

		img := photos[photo.StoragePath()]
		caption := PhotoCaption(photo)
		if img != nil {
			d.photo(img, x, y, colW)
		} else {
			d.placeholder(x, y, colW)
			caption += " (illisible)"
		}

		d.pdf.SetXY(x, y+galleryBoxH+1)
		d.pdf.SetFont("Helvetica", "", 8.5)
		d.pdf.SetTextColor(50, 50, 50)
		d.pdf.CellFormat(colW, galleryCaption, d.tr(caption), "", 0, "C", false, 0, "")
	}
	d.pdf.SetXY(marginX, y+cellH)
}

func (d *document) photo(img *imageprocessor.Normalized, x, y, boxW float64) {
	d.imageSeq++
	name := fmt.Sprintf("photo-%d", d.imageSeq)
	opts := fpdf.ImageOptions{ImageType: "JPG"}
	d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))

	w, h := fitBox(float64(img.Width), float64(img.Height), boxW, galleryBoxH)
	// центрируем в ячейке
	d.pdf.ImageOptions(name, x+(boxW-w)/2, y+(galleryBoxH-h)/2, w, h, false, opts, 0, "")
}

func (d *document) placeholder(x, y, boxW float64) {
	d.pdf.SetFillColor(225, 225, 225)
	d.pdf.SetDrawColor(180, 180, 180)
	d.pdf.Rect(x, y, boxW, galleryBoxH, "FD")
	d.pdf.SetXY(x, y+galleryBoxH/2-3)
	d.pdf.SetFont("Helvetica", "I", 9)
	d.pdf.SetTextColor(110, 110, 110)
	d.pdf.CellFormat(boxW, 6, d.tr("Image indisponible"), "", 0, "C", false, 0, "")
}

// fitBox вписывает w x h в maxW x maxH с сохранением пропорций
func fitBox(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return maxW, maxH
	}
	scale := maxW / w
	if s := maxH / h; s < scale {
		scale = s
	}
	return w * scale, h * scale
}

// ============================================
// Сводка
// ============================================

func (d *document) summaryCover(searches []models.Search) {
	d.pdf.AddPage()
	d.title("Rapport de synthèse")

	d.field("Recherches", fmt.Sprintf("%d", len(searches)))
	if from, to, ok := dateRange(searches); ok {
		d.field("Période", from.Format("02/01/2006")+" - "+to.Format("02/01/2006"))
	}

	d.heading("Répartition par statut")
	counts := make(map[models.SearchStatus]int, len(models.SearchStatuses))
	for i := range searches {
		counts[searches[i].Status]++
	}
	for _, st := range models.SearchStatuses {
		d.field(statusLabel(st), fmt.Sprintf("%d", counts[st]))
	}

	d.heading("Recherches")
	d.locationsTable(searches)
}

func (d *document) locationsTable(searches []models.Search) {
	width := d.contentWidth()
	cols := []struct {
		title string
		w     float64
		align string
	}{
		{"#", 10, "C"},
		{"Localisation", width - 10 - 45 - 35, "L"},
		{"Statut", 45, "L"},
		{"Créée le", 35, "L"},
	}

	d.pdf.SetFont("Helvetica", "B", 9)
	d.pdf.SetFillColor(230, 230, 230)
	d.pdf.SetTextColor(30, 30, 30)
	d.pdf.SetDrawColor(200, 200, 200)
	for _, c := range cols {
		d.pdf.CellFormat(c.w, 7, d.tr(c.title), "1", 0, c.align, true, 0, "")
	}
	d.pdf.Ln(-1)

	d.pdf.SetFont("Helvetica", "", 9)
	for i := range searches {
		s := &searches[i]
		location := d.truncate(s.Location, cols[1].w-2)
		values := []string{
			fmt.Sprintf("%d", i+1),
			location,
			statusLabel(s.Status),
			s.CreatedAt.Format("02/01/2006"),
		}
		for j, c := range cols {
			d.pdf.CellFormat(c.w, 6.5, d.tr(values[j]), "1", 0, c.align, false, 0, "")
		}
		d.pdf.Ln(-1)
	}
}

// truncate обрезает текст под ширину ячейки
func (d *document) truncate(text string, width float64) string {
	if d.pdf.GetStringWidth(d.tr(text)) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if d.pdf.GetStringWidth(d.tr(candidate)) <= width {
			return candidate
		}
	}
	return ""
}

func dateRange(searches []models.Search) (time.Time, time.Time, bool) {
	if len(searches) == 0 {
		return time.Time{}, time.Time{}, false
	}
	from, to := searches[0].CreatedAt, searches[0].CreatedAt
	for i := range searches[1:] {
		created := searches[i+1].CreatedAt
		if created.Before(from) {
			from = created
		}
		if created.After(to) {
			to = created
		}
	}
	return from, to, true
}
