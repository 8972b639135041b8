// Package timetable exposes the timetable generator over HTTP: an upload
// form with an HTML preview, and direct PDF, CSV and JSON downloads.
package timetable

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/timetable/app/planner"
	"github.com/kilianp07/timetable/core/model"
	"github.com/kilianp07/timetable/core/scheduler"
	"github.com/kilianp07/timetable/infra/logger"
	"github.com/kilianp07/timetable/infra/pdf"
	"github.com/kilianp07/timetable/pkg/export"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// Generator runs the timetable pipeline.
type Generator interface {
	Generate(ctx context.Context, req planner.Request) (*planner.Result, error)
}

// Renderer draws a timetable document.
type Renderer interface {
	Render(w io.Writer, tt model.Timetable) error
}

// Deps gathers what the handlers need.
type Deps struct {
	Generator Generator
	Renderer  Renderer
	// Title is shown as the page heading.
	Title          string
	RouteColumn    string
	VehicleColumn  string
	DefaultYear    int
	MaxUploadBytes int64
	Log            logger.Logger
	// Now returns the current time; used to pre-select the period.
	Now func() time.Time
}

func (d *Deps) setDefaults() {
	if d.Title == "" {
		d.Title = "Vehicle-Route Timetable"
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 10 << 20
	}
	if d.Log == nil {
		d.Log = logger.NopLogger{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
}

// Register mounts every handler on mux.
func Register(mux *http.ServeMux, d Deps) {
	mux.Handle("/", NewFormHandler(d))
	mux.Handle("/timetable", NewPreviewHandler(d))
	mux.Handle("/api/timetable", NewJSONHandler(d))
	mux.Handle("/api/timetable/pdf", NewPDFHandler(d))
	mux.Handle("/api/timetable/summary.csv", NewSummaryHandler(d))
	mux.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok\n")
	}))
}

type monthOption struct {
	Number   int
	Name     string
	Selected bool
}

type formPage struct {
	Title         string
	Error         string
	RouteColumn   string
	VehicleColumn string
	MinYear       int
	MaxYear       int
	Year          int
	Months        []monthOption
}

type routeLine struct {
	Route string
	Line  string
}

type resultPage struct {
	formPage
	RunID      string
	MonthName  string
	PeriodYear int
	Routes     []routeLine
	Summary    []model.SummaryRow
	PDFName    string
	PDFURL     template.URL
	CSVName    string
	CSVURL     template.URL
}

func newFormPage(d Deps, year int, month time.Month) formPage {
	p := formPage{
		Title:         d.Title,
		RouteColumn:   d.RouteColumn,
		VehicleColumn: d.VehicleColumn,
		MinYear:       scheduler.MinYear,
		MaxYear:       scheduler.MaxYear,
		Year:          year,
	}
	for m := time.January; m <= time.December; m++ {
		p.Months = append(p.Months, monthOption{Number: int(m), Name: m.String(), Selected: m == month})
	}
	return p
}

// NewFormHandler serves the upload form via GET /.
func NewFormHandler(d Deps) http.Handler {
	d.setDefaults()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		now := d.Now()
		year := d.DefaultYear
		if year == 0 {
			year = now.Year()
		}
		renderPage(w, d.Log, http.StatusOK, "index.html", newFormPage(d, year, now.Month()))
	})
}

// NewPreviewHandler generates a timetable from the submitted form via
// POST /timetable and renders the block preview, the summary and the
// download links. Downloads are embedded as data URIs so nothing is kept
// on the server.
func NewPreviewHandler(d Deps) http.Handler {
	d.setDefaults()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		res, req, err := generate(w, r, d)
		if err != nil {
			year, month := req.Year, req.Month
			if year == 0 {
				year = d.Now().Year()
			}
			page := newFormPage(d, year, month)
			page.Error = err.Error()
			renderPage(w, d.Log, statusFor(err), "index.html", page)
			return
		}

		tt := res.Timetable()
		var pdfBuf, csvBuf bytes.Buffer
		if err := d.Renderer.Render(&pdfBuf, tt); err != nil {
			d.Log.Errorf("run %s: %v", res.RunID, err)
			if errors.Is(err, pdf.ErrMissingGlyph) {
				page := newFormPage(d, tt.Year, tt.Month)
				page.Error = err.Error()
				renderPage(w, d.Log, statusFor(err), "index.html", page)
				return
			}
			http.Error(w, "render pdf failed", http.StatusInternalServerError)
			return
		}
		if err := export.WriteSummaryCSV(&csvBuf, res.Summary); err != nil {
			d.Log.Errorf("run %s: %v", res.RunID, err)
			http.Error(w, "write summary failed", http.StatusInternalServerError)
			return
		}

		page := resultPage{
			formPage:   newFormPage(d, tt.Year, tt.Month),
			RunID:      res.RunID,
			MonthName:  tt.MonthName(),
			PeriodYear: tt.Year,
			Summary:    res.Summary,
			PDFName:    pdf.FileName(tt.Year, int(tt.Month)),
			PDFURL:     dataURI("application/pdf", pdfBuf.Bytes()),
			CSVName:    export.SummaryFileName(tt.Year, int(tt.Month)),
			CSVURL:     dataURI("text/csv", csvBuf.Bytes()),
		}
		for _, rb := range tt.Routes {
			page.Routes = append(page.Routes, routeLine{Route: rb.Route, Line: scheduler.PreviewLine(rb, tt.Month)})
		}
		renderPage(w, d.Log, http.StatusOK, "result.html", page)
	})
}

// NewPDFHandler returns the timetable document via POST /api/timetable/pdf.
func NewPDFHandler(d Deps) http.Handler {
	d.setDefaults()
	return download(d, "application/pdf", func(w io.Writer, res *planner.Result) (string, error) {
		tt := res.Timetable()
		return pdf.FileName(tt.Year, int(tt.Month)), d.Renderer.Render(w, tt)
	})
}

// NewSummaryHandler returns the vehicle summary via POST /api/timetable/summary.csv.
func NewSummaryHandler(d Deps) http.Handler {
	d.setDefaults()
	return download(d, "text/csv; charset=utf-8", func(w io.Writer, res *planner.Result) (string, error) {
		tt := res.Timetable()
		return export.SummaryFileName(tt.Year, int(tt.Month)), export.WriteSummaryCSV(w, res.Summary)
	})
}

// NewJSONHandler returns the timetable and summary via POST /api/timetable.
func NewJSONHandler(d Deps) http.Handler {
	d.setDefaults()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		res, _, err := generate(w, r, d)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := export.WriteJSON(w, export.Document{RunID: res.RunID, Timetable: res.Timetable(), Summary: res.Summary}); err != nil {
			d.Log.Errorf("run %s: encode json: %v", res.RunID, err)
		}
	})
}

func download(d Deps, contentType string, write func(io.Writer, *planner.Result) (string, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		res, _, err := generate(w, r, d)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		var buf bytes.Buffer
		name, err := write(&buf, res)
		if err != nil {
			d.Log.Errorf("run %s: %v", res.RunID, err)
			if errors.Is(err, pdf.ErrMissingGlyph) {
				http.Error(w, err.Error(), statusFor(err))
				return
			}
			http.Error(w, "render failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		if _, err := buf.WriteTo(w); err != nil {
			d.Log.Warnf("run %s: write response: %v", res.RunID, err)
		}
	})
}

// generate parses the multipart form and runs the generator. The returned
// request carries the parsed period even when generation fails.
func generate(w http.ResponseWriter, r *http.Request, d Deps) (*planner.Result, planner.Request, error) {
	req := planner.Request{Source: "web"}
	if r.ContentLength > d.MaxUploadBytes {
		return nil, req, &planner.InputError{Err: &http.MaxBytesError{Limit: d.MaxUploadBytes}}
	}
	r.Body = http.MaxBytesReader(w, r.Body, d.MaxUploadBytes)
	if err := r.ParseMultipartForm(d.MaxUploadBytes); err != nil {
		return nil, req, &planner.InputError{Err: fmt.Errorf("read upload: %w", err)}
	}
	defer func() {
		// Uploads larger than the in-memory limit are spooled to temp files.
		if err := r.MultipartForm.RemoveAll(); err != nil {
			d.Log.Warnf("remove upload temp files: %v", err)
		}
	}()

	year, err := strconv.Atoi(strings.TrimSpace(r.FormValue("year")))
	if err != nil {
		return nil, req, &planner.InputError{Err: fmt.Errorf("invalid year %q", r.FormValue("year"))}
	}
	req.Year = year
	month, err := model.ParseMonth(r.FormValue("month"))
	if err != nil {
		return nil, req, &planner.InputError{Err: err}
	}
	req.Month = month

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, req, &planner.InputError{Err: errors.New("no spreadsheet uploaded")}
	}
	defer func(f multipart.File) { _ = f.Close() }(file)
	req.File = file
	req.FileName = header.Filename

	res, err := d.Generator.Generate(r.Context(), req)
	return res, req, err
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case planner.IsInputError(err):
		return http.StatusBadRequest
	case errors.Is(err, pdf.ErrMissingGlyph):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func dataURI(mime string, data []byte) template.URL {
	return template.URL("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data))
}

func renderPage(w http.ResponseWriter, log logger.Logger, status int, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Errorf("render %s: %v", name, err)
		http.Error(w, "render page failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
