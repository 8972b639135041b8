package sheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// workbook builds an xlsx file from rows, the first one being the header.
func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadXLSX(t *testing.T) {
	buf := workbook(t, [][]any{
		{"SR", " RUTE NAME ", "GADI_NUMBER"},
		{1, "Kolhapur", "MH09-1001"},
		{2, "Sangli", "MH09-1002"},
		{3, nil, "MH09-1003"},
		{4, "", 1004},
	})
	roster, err := NewReader(Columns{}).Read(buf, "routes.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []string{"Kolhapur", "Sangli"}, roster.Routes)
	assert.Equal(t, []string{"MH09-1001", "MH09-1002", "MH09-1003", "1004"}, roster.Vehicles)
}

func TestReadXLSXCustomColumns(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Vehicle", "Route"},
		{"V1", "R1"},
		{"V2"},
	})
	roster, err := NewReader(Columns{Route: "Route", Vehicle: "Vehicle"}).Read(buf, "ROSTER.XLSX")
	require.NoError(t, err)
	assert.Equal(t, []string{"R1"}, roster.Routes)
	assert.Equal(t, []string{"V1", "V2"}, roster.Vehicles)
}

func TestReadMissingColumn(t *testing.T) {
	buf := workbook(t, [][]any{{"RUTE NAME", "VEHICLE"}, {"R1", "V1"}})
	_, err := NewReader(Columns{}).Read(buf, "routes.xlsx")
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "GADI_NUMBER")

	buf = workbook(t, [][]any{{"ROUTE", "GADI_NUMBER"}, {"R1", "V1"}})
	_, err = NewReader(Columns{}).Read(buf, "routes.xlsx")
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "RUTE NAME")
}

func TestReadMalformedXLSX(t *testing.T) {
	_, err := NewReader(Columns{}).Read(strings.NewReader("not a zip"), "routes.xlsx")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestReadEmptySheet(t *testing.T) {
	buf := workbook(t, nil)
	_, err := NewReader(Columns{}).Read(buf, "routes.xlsx")
	assert.ErrorIs(t, err, ErrEmptySheet)
}

func TestReadCSV(t *testing.T) {
	data := "\ufeffRUTE NAME,GADI_NUMBER\nKolhapur,MH09-1001\n,MH09-1002\nSangli\n"
	roster, err := NewReader(Columns{}).Read(strings.NewReader(data), "routes.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"Kolhapur", "Sangli"}, roster.Routes)
	assert.Equal(t, []string{"MH09-1001", "MH09-1002"}, roster.Vehicles)
}

func TestReadUnsupported(t *testing.T) {
	_, err := NewReader(Columns{}).Read(strings.NewReader(""), "routes.ods")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = NewReader(Columns{}).Read(strings.NewReader(""), "routes")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadCSVNormalizesHeaderSpaces(t *testing.T) {
	data := "RUTE NAME,GADI_NUMBER　\nR1,V1\n,V2\n"
	roster, err := NewReader(Columns{}).Read(strings.NewReader(data), "routes.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"R1"}, roster.Routes)
	assert.Equal(t, []string{"V1", "V2"}, roster.Vehicles)
}

func TestReadXLSXSkipsLeadingBlankRows(t *testing.T) {
	buf := workbook(t, [][]any{
		{},
		{nil, " "},
		{"RUTE NAME", "GADI_NUMBER"},
		{"Kolhapur", "MH09-1001"},
		{"Sangli", "MH09-1002"},
	})
	roster, err := NewReader(Columns{}).Read(buf, "routes.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []string{"Kolhapur", "Sangli"}, roster.Routes)
	assert.Equal(t, []string{"MH09-1001", "MH09-1002"}, roster.Vehicles)
}

func TestReadCSVOnlyBlankRows(t *testing.T) {
	_, err := NewReader(Columns{}).Read(strings.NewReader(",\n , \n"), "routes.csv")
	assert.ErrorIs(t, err, ErrEmptySheet)
}

func TestColumnsValidate(t *testing.T) {
	c := Columns{}
	c.SetDefaults()
	assert.NoError(t, c.Validate())

	assert.Error(t, Columns{Route: "X", Vehicle: "X"}.Validate())
	assert.Error(t, Columns{Route: "BUS", Vehicle: " BUS\u00a0"}.Validate(), "equal once normalized")
	assert.Error(t, Columns{Route: " ", Vehicle: "V"}.Validate())
	assert.Error(t, Columns{Route: "R", Vehicle: ""}.Validate())

	buf := workbook(t, [][]any{{"X"}, {"R1"}})
	_, err := NewReader(Columns{Route: "X", Vehicle: "X"}).Read(buf, "routes.xlsx")
	assert.ErrorContains(t, err, "both")
}
