package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/timetable/app/planner"
	"github.com/kilianp07/timetable/core/model"
	"github.com/kilianp07/timetable/core/scheduler"
	"github.com/kilianp07/timetable/infra/logger"
	"github.com/kilianp07/timetable/infra/pdf"
	"github.com/kilianp07/timetable/infra/sheet"
	"github.com/kilianp07/timetable/pkg/export"
)

var (
	genInput string
	genYear  int
	genMonth string
	genOut   string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Build the timetable PDF and summary CSV from a spreadsheet",
	RunE:  runGenerate,
}

func init() {
	now := time.Now()
	generateCmd.Flags().StringVarP(&genInput, "input", "i", "", "roster spreadsheet (.xlsx or .csv)")
	generateCmd.Flags().IntVarP(&genYear, "year", "y", now.Year(), "timetable year")
	generateCmd.Flags().StringVarP(&genMonth, "month", "m", now.Month().String(), "timetable month, number or name")
	generateCmd.Flags().StringVarP(&genOut, "out", "o", ".", "output directory")
	_ = generateCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return err
	}
	month, err := model.ParseMonth(genMonth)
	if err != nil {
		return err
	}

	f, err := os.Open(genInput)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	renderer, err := pdf.NewRenderer(cfg.Timetable.PDF)
	if err != nil {
		return err
	}
	p := planner.New(
		sheet.NewReader(cfg.Timetable.Columns()),
		scheduler.New(cfg.Timetable.Holidays),
		nil,
		logger.New("generate"),
	)
	res, err := p.Generate(cmd.Context(), planner.Request{
		Source:   "cli",
		FileName: filepath.Base(genInput),
		File:     f,
		Year:     genYear,
		Month:    month,
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(genOut, 0o755); err != nil {
		return err
	}
	tt := res.Timetable()
	pdfPath := filepath.Join(genOut, pdf.FileName(tt.Year, int(tt.Month)))
	if err := writeFile(pdfPath, func(f *os.File) error {
		return renderer.Render(f, tt)
	}); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	csvPath := filepath.Join(genOut, export.SummaryFileName(tt.Year, int(tt.Month)))
	if err := writeFile(csvPath, func(f *os.File) error {
		return export.WriteSummaryCSV(f, res.Summary)
	}); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Compact block preview - %s %d\n", tt.MonthName(), tt.Year)
	for _, rb := range tt.Routes {
		fmt.Fprintf(out, "%s -> %s\n", rb.Route, scheduler.PreviewLine(rb, tt.Month))
	}
	fmt.Fprintf(out, "wrote %s\nwrote %s\n", pdfPath, csvPath)
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
