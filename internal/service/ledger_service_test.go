package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ledgerbot/internal/amount"
	"ledgerbot/internal/domain"
	"ledgerbot/internal/metrics"
	"ledgerbot/internal/service"
	"ledgerbot/internal/sheets"
	"ledgerbot/mocks"
)

const template = "Проект 1 (АмурМинералс)"

func newLedger(sink *mocks.MockRecordSink) (service.LedgerService, *metrics.Metrics) {
	m := metrics.New()
	return service.NewLedgerService(sink, service.LedgerConfig{Template: template, RequestSheet: "Лист1"}, m, zap.NewNop()), m
}

func expenseDraft() *domain.ExpenseDraft {
	a := amount.FromExclusive(decimal.NewFromInt(5000), amount.DefaultVATRate)
	comment := "гостиница"
	return &domain.ExpenseDraft{
		Date:     time.Date(2025, 5, 14, 0, 0, 0, 0, time.UTC),
		Category: "Проживание",
		Amounts:  &a,
		Comment:  &comment,
	}
}

func TestLedgerService_Commit_Expense(t *testing.T) {
	sink := new(mocks.MockRecordSink)
	svc, m := newLedger(sink)
	sink.On("Append", mock.Anything, "Объект", sheets.ExpenseRange,
		[]any{"2025-05-14", "Проживание", 5000.0, 6000.0, 1000.0, "гостиница"}).Return(17, nil)

	ref, err := svc.Commit(context.Background(), "Объект", expenseDraft())

	require.NoError(t, err)
	assert.Equal(t, &domain.CommittedRef{Sheet: "Объект", Kind: domain.KindExpense, Row: 17}, ref)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commits.WithLabelValues("expense")))
	sink.AssertExpectations(t)
}

func TestLedgerService_Commit_RequestGoesToIntakeSheet(t *testing.T) {
	sink := new(mocks.MockRecordSink)
	svc, _ := newLedger(sink)
	qty := 12
	amt := decimal.NewFromInt(12000)
	d := &domain.RequestDraft{
		Date: time.Date(2025, 5, 14, 0, 0, 0, 0, time.UTC),
		FIO:  "Иванов Иван Иванович", Role: "инженер", Quantity: &qty, Amount: &amt, Period: "май 2025",
	}
	sink.On("Append", mock.Anything, "Лист1", sheets.RequestRange,
		[]any{"Иванов Иван Иванович", "инженер", 12, 12000.0, "", "2025-05-14", "май 2025"}).Return(3, nil)

	ref, err := svc.Commit(context.Background(), "", d)

	require.NoError(t, err)
	assert.Equal(t, "Лист1", ref.Sheet)
	assert.Equal(t, domain.KindRequest, ref.Kind)
}

func TestLedgerService_Commit_IncompleteNeverWrites(t *testing.T) {
	sink := new(mocks.MockRecordSink)
	svc, _ := newLedger(sink)
	d := expenseDraft()
	d.Comment = nil

	_, err := svc.Commit(context.Background(), "Объект", d)

	assert.ErrorIs(t, err, domain.ErrIncompleteRecord)
	sink.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLedgerService_Commit_NoProject(t *testing.T) {
	sink := new(mocks.MockRecordSink)
	svc, _ := newLedger(sink)

	_, err := svc.Commit(context.Background(), "", expenseDraft())

	assert.ErrorIs(t, err, domain.ErrProjectRequired)
}

func TestLedgerService_Commit_SinkError(t *testing.T) {
	sink := new(mocks.MockRecordSink)
	svc, m := newLedger(sink)
	sink.On("Append", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(0, errors.Join(domain.ErrExternalService, errors.New("503")))

	_, err := svc.Commit(context.Background(), "Объект", expenseDraft())

	assert.ErrorIs(t, err, domain.ErrExternalService)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExternalErrors.WithLabelValues("append")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Commits.WithLabelValues("expense")))
}

func TestLedgerService_Projects_HidesIntakeSheet(t *testing.T) {
	sink := new(mocks.MockRecordSink)
	svc, _ := newLedger(sink)
	sink.On("ListSheetNames", mock.Anything).Return([]string{template, "Лист1", "Объект"}, nil)

	names, err := svc.Projects(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{template, "Объект"}, names)
}

func TestLedgerService_CreateProject(t *testing.T) {
	sink := new(mocks.MockRecordSink)
	svc, _ := newLedger(sink)
	sink.On("CreateFromTemplate", mock.Anything, template, "Объект", sheets.TemplateClearRanges).Return(nil)

	name, err := svc.CreateProject(context.Background(), "  Объект ")

	require.NoError(t, err)
	assert.Equal(t, "Объект", name)
}

func TestLedgerService_CreateProject_Errors(t *testing.T) {
	sink := new(mocks.MockRecordSink)
	svc, _ := newLedger(sink)

	_, err := svc.CreateProject(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyProjectName)
	assert.ErrorIs(t, err, domain.ErrValidation)

	sink.On("CreateFromTemplate", mock.Anything, template, "Дубль", mock.Anything).Return(domain.ErrDuplicateSheet)
	_, err = svc.CreateProject(context.Background(), "Дубль")
	assert.ErrorIs(t, err, domain.ErrDuplicateSheet)
}

func TestLedgerService_Recent(t *testing.T) {
	sink := new(mocks.MockRecordSink)
	svc, _ := newLedger(sink)
	rows := [][]string{{"1"}, {"2"}, {}, {"3"}, {"4"}, {"5"}, {"6"}, {"7"}}
	sink.On("ReadRange", mock.Anything, "Объект", sheets.PreviewRange).Return(rows, nil)

	got, err := svc.Recent(context.Background(), "Объект")

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"3"}, {"4"}, {"5"}, {"6"}, {"7"}}, got)
}

func TestLedgerService_Recent_NoProject(t *testing.T) {
	svc, _ := newLedger(new(mocks.MockRecordSink))

	_, err := svc.Recent(context.Background(), "")

	assert.ErrorIs(t, err, domain.ErrProjectRequired)
}
