// Package google implements the record sink on top of the Google Sheets and Drive APIs.
package google

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"ledgerbot/internal/config"
	"ledgerbot/internal/domain"
	"ledgerbot/internal/port"
	"ledgerbot/internal/sheets"
)

const xlsxMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sink writes ledger rows into one spreadsheet.
type Sink struct {
	spreadsheetID string
	sheets        *gsheets.Service
	drive         *drive.Service
	log           *zap.Logger
}

var _ port.RecordSink = (*Sink)(nil)

// NewSink creates a Sink authenticated with the configured service account file.
func NewSink(ctx context.Context, cfg *config.SheetsConfig, log *zap.Logger) (*Sink, error) {
	return NewSinkWithOptions(ctx, cfg.SpreadsheetID, log,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(gsheets.SpreadsheetsScope, drive.DriveReadonlyScope),
	)
}

// NewSinkWithOptions creates a Sink with explicit client options (custom endpoint in tests).
func NewSinkWithOptions(ctx context.Context, spreadsheetID string, log *zap.Logger, opts ...option.ClientOption) (*Sink, error) {
	sheetsSvc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: creating sheets client: %v", domain.ErrConfiguration, err)
	}
	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: creating drive client: %v", domain.ErrConfiguration, err)
	}
	return &Sink{
		spreadsheetID: spreadsheetID,
		sheets:        sheetsSvc,
		drive:         driveSvc,
		log:           log,
	}, nil
}

func (s *Sink) Append(ctx context.Context, sheet, rangeHint string, row []any) (int, error) {
	vr := &gsheets.ValueRange{Values: [][]interface{}{row}}
	resp, err := s.sheets.Spreadsheets.Values.
		Append(s.spreadsheetID, sheets.A1(sheet, rangeHint), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return 0, external("append", err)
	}
	if resp.Updates == nil {
		return 0, fmt.Errorf("%w: append returned no update info", domain.ErrExternalService)
	}
	rowIndex, err := sheets.ParseUpdatedRow(resp.Updates.UpdatedRange)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrExternalService, err)
	}
	s.log.Debug("google.Sink.Append: row written",
		zap.String("sheet", sheet), zap.String("range", resp.Updates.UpdatedRange), zap.Int("row", rowIndex))
	return rowIndex, nil
}

func (s *Sink) CreateFromTemplate(ctx context.Context, template, name string, clear []string) error {
	ss, err := s.sheets.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return external("get spreadsheet", err)
	}

	var templateID int64
	found := false
	for _, sh := range ss.Sheets {
		if sh.Properties == nil {
			continue
		}
		switch sh.Properties.Title {
		case name:
			return domain.ErrDuplicateSheet
		case template:
			templateID = sh.Properties.SheetId
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%w: %q", domain.ErrTemplateNotFound, template)
	}

	copied, err := s.sheets.Spreadsheets.Sheets.CopyTo(s.spreadsheetID, templateID,
		&gsheets.CopySheetToAnotherSpreadsheetRequest{DestinationSpreadsheetId: s.spreadsheetID},
	).Context(ctx).Do()
	if err != nil {
		return external("copy template", err)
	}

	_, err = s.sheets.Spreadsheets.BatchUpdate(s.spreadsheetID, &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			UpdateSheetProperties: &gsheets.UpdateSheetPropertiesRequest{
				Properties: &gsheets.SheetProperties{
					SheetId:         copied.SheetId,
					Title:           name,
					ForceSendFields: []string{"SheetId"},
				},
				Fields: "title",
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return external("rename copy", err)
	}

	if len(clear) > 0 {
		ranges := make([]string, len(clear))
		for i, r := range clear {
			ranges[i] = sheets.A1(name, r)
		}
		_, err = s.sheets.Spreadsheets.Values.BatchClear(s.spreadsheetID,
			&gsheets.BatchClearValuesRequest{Ranges: ranges}).Context(ctx).Do()
		if err != nil {
			return external("clear ranges", err)
		}
	}

	s.log.Info("google.Sink.CreateFromTemplate: project created",
		zap.String("template", template), zap.String("name", name), zap.Int64("sheet_id", copied.SheetId))
	return nil
}

func (s *Sink) ListSheetNames(ctx context.Context) ([]string, error) {
	ss, err := s.sheets.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, external("list sheets", err)
	}
	names := make([]string, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			names = append(names, sh.Properties.Title)
		}
	}
	return names, nil
}

func (s *Sink) ReadRange(ctx context.Context, sheet, rng string) ([][]string, error) {
	vr, err := s.sheets.Spreadsheets.Values.Get(s.spreadsheetID, sheets.A1(sheet, rng)).Context(ctx).Do()
	if err != nil {
		return nil, external("read range", err)
	}
	rows := make([][]string, len(vr.Values))
	for i, r := range vr.Values {
		cells := make([]string, len(r))
		for j, c := range r {
			cells[j] = fmt.Sprint(c)
		}
		rows[i] = cells
	}
	return rows, nil
}

func (s *Sink) Export(ctx context.Context) ([]byte, error) {
	resp, err := s.drive.Files.Export(s.spreadsheetID, xlsxMimeType).Context(ctx).Download()
	if err != nil {
		return nil, external("export", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: export status %d", domain.ErrExternalService, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading export: %v", domain.ErrExternalService, err)
	}
	return data, nil
}

func external(op string, err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return fmt.Errorf("%w: sheets %s: status %d: %s", domain.ErrExternalService, op, gErr.Code, gErr.Message)
	}
	return fmt.Errorf("%w: sheets %s: %v", domain.ErrExternalService, op, err)
}
