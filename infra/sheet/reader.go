// Package sheet reads the route and vehicle columns of an uploaded roster
// spreadsheet.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/kilianp07/timetable/core/model"
)

// Default column headers.
const (
	DefaultRouteColumn   = "RUTE NAME"
	DefaultVehicleColumn = "GADI_NUMBER"
)

var (
	// ErrMissingColumn is returned when a required header is absent.
	ErrMissingColumn = errors.New("missing column")
	// ErrUnsupportedFormat is returned for files that are neither xlsx nor csv.
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	// ErrEmptySheet is returned when the sheet has no header row.
	ErrEmptySheet = errors.New("empty spreadsheet")
	// ErrMalformed wraps decoding failures of the uploaded file.
	ErrMalformed = errors.New("malformed spreadsheet")
)

// Columns names the headers holding routes and vehicles.
type Columns struct {
	Route   string `json:"route_column"`
	Vehicle string `json:"vehicle_column"`
}

// SetDefaults applies the default headers.
func (c *Columns) SetDefaults() {
	if c.Route == "" {
		c.Route = DefaultRouteColumn
	}
	if c.Vehicle == "" {
		c.Vehicle = DefaultVehicleColumn
	}
}

// Validate rejects blank headers and a vehicle header equal to the route
// header once normalized.
func (c Columns) Validate() error {
	route, vehicle := header(c.Route), header(c.Vehicle)
	switch {
	case route == "":
		return errors.New("route_column must not be blank")
	case vehicle == "":
		return errors.New("vehicle_column must not be blank")
	case route == vehicle:
		return fmt.Errorf("route_column and vehicle_column are both %q", route)
	}
	return nil
}

// Reader decodes roster spreadsheets.
type Reader struct {
	Columns Columns
}

// NewReader returns a Reader looking up the given columns.
func NewReader(cols Columns) *Reader {
	cols.SetDefaults()
	return &Reader{Columns: cols}
}

// Read decodes the spreadsheet in r. The format is chosen from the file name
// extension: ".xlsx" reads the first worksheet, ".csv" a comma separated file.
// The first non-blank row holds the headers. Empty cells are skipped, so the route and
// vehicle lists may have different lengths.
func (rd *Reader) Read(r io.Reader, name string) (model.Roster, error) {
	var rows [][]string
	var err error
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(r)
	case ".csv":
		rows, err = readCSV(r)
	default:
		return model.Roster{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return model.Roster{}, err
	}
	return rd.extract(rows)
}

func (rd *Reader) extract(rows [][]string) (model.Roster, error) {
	if err := rd.Columns.Validate(); err != nil {
		return model.Roster{}, err
	}
	for len(rows) > 0 && blank(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return model.Roster{}, ErrEmptySheet
	}
	route, vehicle := header(rd.Columns.Route), header(rd.Columns.Vehicle)
	routeIdx, vehicleIdx := -1, -1
	for i, h := range rows[0] {
		switch header(h) {
		case route:
			if routeIdx < 0 {
				routeIdx = i
			}
		case vehicle:
			if vehicleIdx < 0 {
				vehicleIdx = i
			}
		}
	}
	if routeIdx < 0 {
		return model.Roster{}, fmt.Errorf("%w: %q", ErrMissingColumn, rd.Columns.Route)
	}
	if vehicleIdx < 0 {
		return model.Roster{}, fmt.Errorf("%w: %q", ErrMissingColumn, rd.Columns.Vehicle)
	}
	return model.Roster{
		Routes:   column(rows[1:], routeIdx),
		Vehicles: column(rows[1:], vehicleIdx),
	}, nil
}

// header normalizes a header cell. NFKC folds the non-breaking and
// full-width spaces spreadsheet editors tend to insert.
func header(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

func blank(row []string) bool {
	for _, c := range row {
		if header(c) != "" {
			return false
		}
	}
	return true
}

// column collects the non-empty cells at idx.
func column(rows [][]string, idx int) []string {
	var out []string
	for _, row := range rows {
		if idx >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[idx]); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer func() { _ = f.Close() }()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}
