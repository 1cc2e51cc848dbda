package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ledgerbot/internal/metrics"
	"ledgerbot/internal/port"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportResult is a workbook snapshot ready to send to a chat.
type ExportResult struct {
	FileName string
	Data     []byte
	// URL is a presigned link to the archived copy, empty when archiving is off or failed.
	URL string
}

// ExportService produces workbook exports.
type ExportService interface {
	Export(ctx context.Context) (*ExportResult, error)
}

// ExportConfig controls file naming and the optional archive.
type ExportConfig struct {
	FileName      string
	Bucket        string
	Prefix        string
	PresignExpiry int64
}

type exportService struct {
	sink    port.RecordSink
	storage port.ObjectStorage
	cfg     ExportConfig
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

// NewExportService creates a new ExportService. storage may be nil to skip archiving.
func NewExportService(sink port.RecordSink, storage port.ObjectStorage, cfg ExportConfig, m *metrics.Metrics, log *zap.Logger) ExportService {
	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = 3600
	}
	return &exportService{sink: sink, storage: storage, cfg: cfg, metrics: m, log: log, now: time.Now}
}

func (s *exportService) Export(ctx context.Context) (*ExportResult, error) {
	data, err := s.sink.Export(ctx)
	if err != nil {
		s.metrics.ExternalErrors.WithLabelValues("export").Inc()
		s.log.Error("service.ExportService.Export: export failed", zap.Error(err))
		return nil, err
	}
	result := &ExportResult{FileName: s.cfg.FileName, Data: data}

	if s.storage != nil {
		url, err := s.archive(ctx, data)
		if err != nil {
			// The document is still delivered; only the archive copy is lost.
			s.metrics.ExternalErrors.WithLabelValues("archive").Inc()
			s.log.Warn("service.ExportService.Export: archive failed", zap.Error(err))
		} else {
			result.URL = url
		}
	}
	return result, nil
}

func (s *exportService) archive(ctx context.Context, data []byte) (string, error) {
	key := path.Join(s.cfg.Prefix, s.now().UTC().Format("2006/01/02"), fmt.Sprintf("%s.xlsx", uuid.New()))
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(data),
		ContentType: xlsxContentType,
		FileName:    s.cfg.FileName,
	}); err != nil {
		return "", err
	}
	url, err := s.storage.GetPresignedURL(ctx, s.cfg.Bucket, key, s.cfg.PresignExpiry)
	if err != nil {
		return "", err
	}
	s.log.Info("service.ExportService.Export: export archived", zap.String("key", key))
	return url, nil
}
