package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ledgerbot/internal/port"
)

// MockRecordSink is a mock implementation of port.RecordSink.
type MockRecordSink struct {
	mock.Mock
}

var _ port.RecordSink = (*MockRecordSink)(nil)

func (m *MockRecordSink) Append(ctx context.Context, sheet, rangeHint string, row []any) (int, error) {
	args := m.Called(ctx, sheet, rangeHint, row)
	return args.Int(0), args.Error(1)
}

func (m *MockRecordSink) CreateFromTemplate(ctx context.Context, template, name string, clear []string) error {
	args := m.Called(ctx, template, name, clear)
	return args.Error(0)
}

func (m *MockRecordSink) ListSheetNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRecordSink) ReadRange(ctx context.Context, sheet, rng string) ([][]string, error) {
	args := m.Called(ctx, sheet, rng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]string), args.Error(1)
}

func (m *MockRecordSink) Export(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
