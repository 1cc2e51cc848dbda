package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/metrics"
	"ledgerbot/internal/port"
	"ledgerbot/internal/sheets"
)

// LedgerService is the dialogue's view of the spreadsheet: projects, commits and previews.
type LedgerService interface {
	Projects(ctx context.Context) ([]string, error)
	CreateProject(ctx context.Context, name string) (string, error)
	Commit(ctx context.Context, project string, d domain.Draft) (*domain.CommittedRef, error)
	Recent(ctx context.Context, project string) ([][]string, error)
}

// LedgerConfig names the template and intake sheets.
type LedgerConfig struct {
	Template     string
	RequestSheet string
}

type ledgerService struct {
	sink    port.RecordSink
	cfg     LedgerConfig
	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewLedgerService creates a new LedgerService implementation.
func NewLedgerService(sink port.RecordSink, cfg LedgerConfig, m *metrics.Metrics, log *zap.Logger) LedgerService {
	return &ledgerService{sink: sink, cfg: cfg, metrics: m, log: log}
}

func (s *ledgerService) Projects(ctx context.Context) ([]string, error) {
	names, err := s.sink.ListSheetNames(ctx)
	if err != nil {
		s.external("list_sheets", err)
		return nil, err
	}
	projects := make([]string, 0, len(names))
	for _, n := range names {
		if n != s.cfg.RequestSheet {
			projects = append(projects, n)
		}
	}
	return projects, nil
}

// CreateProject copies the template under name and returns the trimmed name.
func (s *ledgerService) CreateProject(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ErrEmptyProjectName
	}
	if err := s.sink.CreateFromTemplate(ctx, s.cfg.Template, name, sheets.TemplateClearRanges); err != nil {
		if !errors.Is(err, domain.ErrDuplicateSheet) {
			s.external("create_project", err)
		}
		return "", err
	}
	s.log.Info("service.LedgerService.CreateProject: project created", zap.String("project", name))
	return name, nil
}

// Commit appends a complete draft and reports where it landed.
func (s *ledgerService) Commit(ctx context.Context, project string, d domain.Draft) (*domain.CommittedRef, error) {
	p, err := sheets.Place(d, project, s.cfg.RequestSheet)
	if err != nil {
		return nil, err
	}
	row, err := s.sink.Append(ctx, p.Sheet, p.RangeHint, p.Row)
	if err != nil {
		s.external("append", err)
		return nil, err
	}
	s.metrics.Commits.WithLabelValues(string(d.Kind())).Inc()
	s.log.Info("service.LedgerService.Commit: record appended",
		zap.String("sheet", p.Sheet), zap.String("kind", string(d.Kind())), zap.Int("row", row))
	return &domain.CommittedRef{Sheet: p.Sheet, Kind: d.Kind(), Row: row}, nil
}

// Recent returns up to the last five expense rows of a project, oldest first.
func (s *ledgerService) Recent(ctx context.Context, project string) ([][]string, error) {
	if project == "" {
		return nil, domain.ErrProjectRequired
	}
	rows, err := s.sink.ReadRange(ctx, project, sheets.PreviewRange)
	if err != nil {
		s.external("read_range", err)
		return nil, err
	}
	var filled [][]string
	for _, r := range rows {
		if len(r) > 0 {
			filled = append(filled, r)
		}
	}
	if len(filled) > sheets.PreviewRows {
		filled = filled[len(filled)-sheets.PreviewRows:]
	}
	return filled, nil
}

func (s *ledgerService) external(op string, err error) {
	s.metrics.ExternalErrors.WithLabelValues(op).Inc()
	s.log.Error("service.LedgerService: sink call failed", zap.String("operation", op), zap.Error(err))
}
