package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ledgerbot/internal/csvexport"
	"ledgerbot/internal/domain"
	"ledgerbot/internal/metrics"
	"ledgerbot/internal/port"
	"ledgerbot/internal/service"
	"ledgerbot/internal/sheets"
)

var (
	exportProject string
	exportSection string
	exportFormat  string
	exportOut     string
)

var exportCmd = &cobra.Command{
	Use:         "export",
	Short:       "Write the workbook, or one section of a project as CSV, to a local file",
	Annotations: map[string]string{"config": "sink"},
	RunE:        runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportProject, "project", "p", "", "project sheet for expense and income sections")
	exportCmd.Flags().StringVarP(&exportSection, "section", "s", string(csvexport.SectionExpense), "expense, income or request")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "csv or xlsx")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output path (defaults to a generated file name)")
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	sink, closeSink, err := newSink(ctx, &cfg.Sheets, log)
	if err != nil {
		return err
	}
	defer func() { _ = closeSink() }()

	switch exportFormat {
	case "xlsx":
		return exportWorkbook(ctx, sink)
	case "csv":
		return exportCSV(ctx, sink)
	default:
		return fmt.Errorf("%w: unknown format %q", domain.ErrValidation, exportFormat)
	}
}

func exportWorkbook(ctx context.Context, sink port.RecordSink) error {
	exports := service.NewExportService(sink, nil, service.ExportConfig{FileName: cfg.Export.FileName}, metrics.New(), log)
	res, err := exports.Export(ctx)
	if err != nil {
		return err
	}
	out := exportOut
	if out == "" {
		out = res.FileName
	}
	if err := os.WriteFile(out, res.Data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	log.Info("export: workbook written", zap.String("path", out), zap.Int("bytes", len(res.Data)))
	return nil
}

func exportCSV(ctx context.Context, sink port.RecordSink) error {
	section := csvexport.Section(exportSection)
	sheet := exportProject
	if section == csvexport.SectionRequest {
		sheet = cfg.Sheets.RequestSheet
	}
	if sheet == "" {
		return domain.ErrProjectRequired
	}

	out := exportOut
	if out == "" {
		out = csvexport.BuildFilename(sheet, section, time.Now())
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	defer f.Close()

	n, err := writeSectionCSV(ctx, sink, sheet, section, f)
	if err != nil {
		return err
	}
	log.Info("export: csv written", zap.String("path", out), zap.String("sheet", sheet), zap.Int("rows", n))
	return nil
}

func writeSectionCSV(ctx context.Context, sink port.RecordSink, sheet string, section csvexport.Section, w io.Writer) (int, error) {
	var rng string
	switch section {
	case csvexport.SectionExpense:
		rng = sheets.ExpenseRows
	case csvexport.SectionIncome:
		rng = sheets.IncomeRows
	case csvexport.SectionRequest:
		rng = sheets.RequestRows
	default:
		return 0, fmt.Errorf("%w: unknown section %q", domain.ErrValidation, section)
	}

	rows, err := sink.ReadRange(ctx, sheet, rng)
	if err != nil {
		return 0, err
	}

	cw, err := csvexport.NewWriter(w, section)
	if err != nil {
		return 0, err
	}
	if err := cw.WriteHeader(section); err != nil {
		return 0, err
	}
	n, err := cw.WriteRows(rows)
	if err != nil {
		return n, err
	}
	cw.Flush()
	return n, cw.Error()
}
