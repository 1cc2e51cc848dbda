// Package xlsx implements the record sink on a local workbook file. It serves
// single-host deployments and development without a Google service account.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"sync"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/port"
)

var rangeRe = regexp.MustCompile(`^([A-Z]+)(\d*)(?::([A-Z]+)(\d*))?$`)

// cellRange is a parsed A1 range. A zero endRow means "to the last used row".
type cellRange struct {
	startCol, startRow int
	endCol, endRow     int
}

func parseRange(rng string) (cellRange, error) {
	m := rangeRe.FindStringSubmatch(rng)
	if m == nil {
		return cellRange{}, fmt.Errorf("bad range %q", rng)
	}
	var r cellRange
	var err error
	if r.startCol, err = excelize.ColumnNameToNumber(m[1]); err != nil {
		return cellRange{}, err
	}
	r.startRow = 1
	if m[2] != "" {
		r.startRow, _ = strconv.Atoi(m[2])
	}
	r.endCol = r.startCol
	if m[3] != "" {
		if r.endCol, err = excelize.ColumnNameToNumber(m[3]); err != nil {
			return cellRange{}, err
		}
	}
	if m[4] != "" {
		r.endRow, _ = strconv.Atoi(m[4])
	}
	return r, nil
}

// Sink stores rows in an excelize workbook and saves it after every change.
type Sink struct {
	mu   sync.Mutex
	file *excelize.File
	path string
	log  *zap.Logger
}

var _ port.RecordSink = (*Sink)(nil)

// OpenSink opens the workbook at path, or starts an empty one if it does not exist yet.
func OpenSink(path string, log *zap.Logger) (*Sink, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		log.Info("xlsx.OpenSink: workbook not found, starting empty", zap.String("path", path))
		return NewSink(excelize.NewFile(), path, log), nil
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening workbook %s: %v", domain.ErrConfiguration, path, err)
	}
	return NewSink(f, path, log), nil
}

// NewSink wraps an open workbook. An empty path keeps it in memory only.
func NewSink(f *excelize.File, path string, log *zap.Logger) *Sink {
	return &Sink{file: f, path: path, log: log}
}

func (s *Sink) Append(_ context.Context, sheet, rangeHint string, row []any) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, _ := s.file.GetSheetIndex(sheet); idx < 0 {
		return 0, fmt.Errorf("%w: sheet %q not found", domain.ErrExternalService, sheet)
	}
	r, err := parseRange(rangeHint)
	if err != nil {
		return 0, err
	}
	rows, err := s.file.GetRows(sheet)
	if err != nil {
		return 0, s.fail("read rows", err)
	}

	last := r.startRow - 1
	for i, cells := range rows {
		if i+1 >= r.startRow && hasValue(cells, r.startCol, r.endCol) {
			last = i + 1
		}
	}
	target := last + 1

	cell, err := excelize.CoordinatesToCellName(r.startCol, target)
	if err != nil {
		return 0, err
	}
	values := append([]any(nil), row...)
	if err := s.file.SetSheetRow(sheet, cell, &values); err != nil {
		return 0, s.fail("write row", err)
	}
	if err := s.save(); err != nil {
		return 0, err
	}
	s.log.Debug("xlsx.Sink.Append: row written", zap.String("sheet", sheet), zap.String("cell", cell))
	return target, nil
}

func (s *Sink) CreateFromTemplate(_ context.Context, template, name string, clear []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, _ := s.file.GetSheetIndex(name); idx >= 0 {
		return domain.ErrDuplicateSheet
	}
	from, _ := s.file.GetSheetIndex(template)
	if from < 0 {
		return fmt.Errorf("%w: %q", domain.ErrTemplateNotFound, template)
	}

	to, err := s.file.NewSheet(name)
	if err != nil {
		return s.fail("new sheet", err)
	}
	if err := s.file.CopySheet(from, to); err != nil {
		return s.fail("copy sheet", err)
	}

	rows, err := s.file.GetRows(name)
	if err != nil {
		return s.fail("read rows", err)
	}
	for _, rng := range clear {
		r, err := parseRange(rng)
		if err != nil {
			return err
		}
		end := r.endRow
		if end == 0 {
			end = len(rows)
		}
		for row := r.startRow; row <= end; row++ {
			for col := r.startCol; col <= r.endCol; col++ {
				cell, _ := excelize.CoordinatesToCellName(col, row)
				if err := s.file.SetCellValue(name, cell, nil); err != nil {
					return s.fail("clear cell", err)
				}
			}
		}
	}
	if err := s.save(); err != nil {
		return err
	}
	s.log.Info("xlsx.Sink.CreateFromTemplate: project created", zap.String("template", template), zap.String("name", name))
	return nil
}

func (s *Sink) ListSheetNames(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.GetSheetList(), nil
}

func (s *Sink) ReadRange(_ context.Context, sheet, rng string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, _ := s.file.GetSheetIndex(sheet); idx < 0 {
		return nil, fmt.Errorf("%w: sheet %q not found", domain.ErrExternalService, sheet)
	}
	r, err := parseRange(rng)
	if err != nil {
		return nil, err
	}
	rows, err := s.file.GetRows(sheet)
	if err != nil {
		return nil, s.fail("read rows", err)
	}

	var out [][]string
	for i, cells := range rows {
		rowNum := i + 1
		if rowNum < r.startRow || (r.endRow > 0 && rowNum > r.endRow) {
			continue
		}
		out = append(out, window(cells, r.startCol, r.endCol))
	}
	for len(out) > 0 && len(out[len(out)-1]) == 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (s *Sink) Export(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf, err := s.file.WriteToBuffer()
	if err != nil {
		return nil, s.fail("export", err)
	}
	return buf.Bytes(), nil
}

// Close releases the workbook.
func (s *Sink) Close() error {
	return s.file.Close()
}

func (s *Sink) save() error {
	if s.path == "" {
		return nil
	}
	if err := s.file.SaveAs(s.path); err != nil {
		return s.fail("save", err)
	}
	return nil
}

func (s *Sink) fail(op string, err error) error {
	return fmt.Errorf("%w: xlsx %s: %v", domain.ErrExternalService, op, err)
}

func hasValue(cells []string, startCol, endCol int) bool {
	for col := startCol; col <= endCol && col <= len(cells); col++ {
		if cells[col-1] != "" {
			return true
		}
	}
	return false
}

// window returns cells in [startCol, endCol] with trailing blanks dropped.
func window(cells []string, startCol, endCol int) []string {
	var out []string
	for col := startCol; col <= endCol && col <= len(cells); col++ {
		out = append(out, cells[col-1])
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}
