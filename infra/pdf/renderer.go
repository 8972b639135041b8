// Package pdf renders block timetables as A4 documents with one row of
// coloured boxes per group of blocks.
package pdf

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/sfnt"

	"github.com/kilianp07/timetable/core/model"
)

// DejaVu Sans Condensed, as distributed with fpdf.
var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	defaultRegularFont []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	defaultBoldFont []byte
)

const fontFamily = "timetable"

// ErrMissingGlyph is returned when a title, route or vehicle name uses a
// character the document font cannot draw.
var ErrMissingGlyph = errors.New("font has no glyph")

// DefaultTitle is printed at the top of every page.
const DefaultTitle = "Krishna Dudh Vehicle Timetable"

// Layout geometry in millimetres.
const (
	marginSide    = 15.0
	gap           = 6.0
	rowGap        = 6.0
	boxHeight     = 18.0
	pageBreakMark = 60.0
	bottomMargin  = 12.0
)

type rgb struct{ r, g, b int }

var (
	assignedFill = rgb{153, 255, 153}
	assignedText = rgb{20, 60, 20}
	holidayFill  = rgb{255, 153, 153}
	holidayText  = rgb{80, 30, 30}
)

// Options controls the document layout.
type Options struct {
	Title         string `json:"title"`
	ColumnsPerRow int    `json:"columns_per_row"`
	// FontFile and BoldFontFile are TrueType fonts replacing the embedded
	// DejaVu Sans, e.g. to draw Devanagari names. BoldFontFile defaults to
	// FontFile.
	FontFile     string `json:"font_file"`
	BoldFontFile string `json:"bold_font_file"`
}

// SetDefaults applies the default title and four boxes per row.
func (o *Options) SetDefaults() {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.ColumnsPerRow <= 0 {
		o.ColumnsPerRow = 4
	}
}

// Validate checks the layout can fit on an A4 page.
func (o Options) Validate() error {
	if o.ColumnsPerRow < 1 || o.ColumnsPerRow > 8 {
		return fmt.Errorf("columns_per_row must be between 1 and 8, got %d", o.ColumnsPerRow)
	}
	if o.BoldFontFile != "" && o.FontFile == "" {
		return errors.New("bold_font_file requires font_file")
	}
	return nil
}

type face struct {
	data []byte
	font *sfnt.Font
}

func loadFace(data []byte, name string) (face, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return face{}, fmt.Errorf("parse font %s: %w", name, err)
	}
	return face{data: data, font: f}, nil
}

// missing returns the first rune of s the face has no glyph for.
func (f face) missing(s string) (rune, bool) {
	var buf sfnt.Buffer
	for _, ch := range s {
		idx, err := f.font.GlyphIndex(&buf, ch)
		if err != nil || idx == 0 {
			return ch, true
		}
	}
	return 0, false
}

// Renderer draws timetables with fpdf.
type Renderer struct {
	opts    Options
	regular face
	bold    face
}

// NewRenderer returns a Renderer for the given options. Font files named in
// opts are read and parsed here.
func NewRenderer(opts Options) (*Renderer, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	regularData, boldData := defaultRegularFont, defaultBoldFont
	regularName, boldName := "DejaVuSansCondensed", "DejaVuSansCondensed-Bold"
	if opts.FontFile != "" {
		data, err := os.ReadFile(opts.FontFile)
		if err != nil {
			return nil, fmt.Errorf("read font: %w", err)
		}
		regularData, boldData = data, data
		regularName, boldName = opts.FontFile, opts.FontFile
	}
	if opts.BoldFontFile != "" {
		data, err := os.ReadFile(opts.BoldFontFile)
		if err != nil {
			return nil, fmt.Errorf("read bold font: %w", err)
		}
		boldData, boldName = data, opts.BoldFontFile
	}
	regular, err := loadFace(regularData, regularName)
	if err != nil {
		return nil, err
	}
	bold, err := loadFace(boldData, boldName)
	if err != nil {
		return nil, err
	}
	return &Renderer{opts: opts, regular: regular, bold: bold}, nil
}

// FileName returns the download name of the timetable document.
func FileName(year int, month int) string {
	return "compact_timetable_" + strconv.Itoa(year) + "_" + strconv.Itoa(month) + ".pdf"
}

// Render writes the timetable document to w. It fails with ErrMissingGlyph
// rather than drawing a name the font cannot represent.
func (r *Renderer) Render(w io.Writer, tt model.Timetable) error {
	if err := r.checkGlyphs(tt); err != nil {
		return err
	}
	doc := r.build(tt)
	if err := doc.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return doc.Output(w)
}

// checkGlyphs verifies the bold face, used for the title, route headings and
// vehicle labels, covers every user-supplied name.
func (r *Renderer) checkGlyphs(tt model.Timetable) error {
	check := func(what, s string) error {
		if ch, ok := r.bold.missing(s); ok {
			return fmt.Errorf("%w for %q (U+%04X) in %s %q", ErrMissingGlyph, ch, ch, what, s)
		}
		return nil
	}
	if err := check("title", r.opts.Title); err != nil {
		return err
	}
	for _, rb := range tt.Routes {
		if err := check("route", rb.Route); err != nil {
			return err
		}
		for _, b := range rb.Blocks {
			if err := check("vehicle", b.Vehicle); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Renderer) build(tt model.Timetable) *fpdf.Fpdf {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddUTF8FontFromBytes(fontFamily, "", r.regular.data)
	doc.AddUTF8FontFromBytes(fontFamily, "B", r.bold.data)
	title := r.opts.Title
	doc.SetHeaderFunc(func() {
		doc.SetFont(fontFamily, "B", 14)
		doc.CellFormat(0, 8, title, "", 1, "C", false, 0, "")
		doc.Ln(2)
	})
	doc.SetAutoPageBreak(true, bottomMargin)
	doc.AddPage()

	month := tt.MonthName()
	doc.SetFont(fontFamily, "", 9)
	doc.CellFormat(0, 5, fmt.Sprintf("Month: %s   Year: %d", month, tt.Year), "", 1, "", false, 0, "")
	doc.Ln(2)
	doc.CellFormat(0, 5, "Notation: Green = Assigned vehicle  |  Red = Backup/Holiday (H)", "", 1, "", false, 0, "")
	doc.Ln(4)

	for _, rb := range tt.Routes {
		r.drawRoute(doc, rb, month)
	}
	return doc
}

func (r *Renderer) drawRoute(doc *fpdf.Fpdf, rb model.RouteBlocks, month string) {
	pageW, pageH := doc.GetPageSize()
	cols := r.opts.ColumnsPerRow
	boxW := (pageW - 2*marginSide - float64(cols-1)*gap) / float64(cols)

	if doc.GetY() > pageH-pageBreakMark {
		doc.AddPage()
	}
	doc.SetFont(fontFamily, "B", 12)
	doc.SetX(marginSide)
	doc.CellFormat(0, 6, "Route: "+rb.Route, "", 1, "", false, 0, "")
	doc.Ln(2)

	for start := 0; start < len(rb.Blocks); start += cols {
		end := start + cols
		if end > len(rb.Blocks) {
			end = len(rb.Blocks)
		}
		y := doc.GetY()
		if y+boxHeight > pageH-bottomMargin {
			doc.AddPage()
			y = doc.GetY()
		}
		x := marginSide
		for _, b := range rb.Blocks[start:end] {
			fill, text := assignedFill, assignedText
			if b.Holiday {
				fill, text = holidayFill, holidayText
			}
			doc.SetFillColor(fill.r, fill.g, fill.b)
			doc.Rect(x, y, boxW, boxHeight, "DF")

			doc.SetTextColor(text.r, text.g, text.b)
			doc.SetXY(x+1, y+2)
			doc.SetFont(fontFamily, "B", 9)
			doc.MultiCell(boxW-2, 5, b.Label(), "", "C", false)
			doc.SetXY(x+1, y+10)
			doc.SetFont(fontFamily, "", 8)
			doc.MultiCell(boxW-2, 4, fmt.Sprintf("%d-%d %s", b.Start, b.End, month), "", "C", false)

			doc.SetTextColor(0, 0, 0)
			x += boxW + gap
		}
		doc.SetXY(marginSide, y+boxHeight+rowGap)
	}
	doc.Ln(4)
	doc.SetTextColor(0, 0, 0)
}
