package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"ledgerbot/internal/config"
	"ledgerbot/internal/csvexport"
	"ledgerbot/internal/domain"
	"ledgerbot/internal/sheets"
	"ledgerbot/internal/sheets/xlsx"
)

func TestNewSink_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.xlsx")

	sink, closeSink, err := newSink(context.Background(), &config.SheetsConfig{Provider: "xlsx", XLSXPath: path}, zap.NewNop())
	require.NoError(t, err)
	defer func() { _ = closeSink() }()

	names, err := sink.ListSheetNames(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, names)
}

func TestNewSink_UnknownProvider(t *testing.T) {
	_, _, err := newSink(context.Background(), &config.SheetsConfig{Provider: "csv"}, zap.NewNop())

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestNewArchive_DisabledReturnsNil(t *testing.T) {
	archive, err := newArchive(context.Background(), &config.ArchiveConfig{Provider: "noop"})

	require.NoError(t, err)
	assert.Nil(t, archive)
}

func TestReadEnvelope(t *testing.T) {
	t.Run("stdin", func(t *testing.T) {
		handleFile = ""
		raw, err := readEnvelope(strings.NewReader(`{"body":"{}"}`))
		require.NoError(t, err)
		assert.Equal(t, `{"body":"{}"}`, string(raw))
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "event.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"update_id":1}`), 0o600))
		handleFile = path
		defer func() { handleFile = "" }()

		raw, err := readEnvelope(strings.NewReader("ignored"))
		require.NoError(t, err)
		assert.Equal(t, `{"update_id":1}`, string(raw))
	})

	t.Run("missing file", func(t *testing.T) {
		handleFile = filepath.Join(t.TempDir(), "nope.json")
		defer func() { handleFile = "" }()

		_, err := readEnvelope(strings.NewReader(""))
		assert.Error(t, err)
	})
}

func TestHashPasswordCommand(t *testing.T) {
	var out bytes.Buffer
	hashPasswordCmd.SetOut(&out)

	err := hashPasswordCmd.RunE(hashPasswordCmd, []string{"secret"})

	require.NoError(t, err)
	hash := strings.TrimSpace(out.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret")))
}

func TestRootCommand_Subcommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}

	assert.Subset(t, names, []string{"serve", "handle", "poll", "webhook", "export", "hash-password"})
}

func TestWriteSectionCSV(t *testing.T) {
	ctx := context.Background()
	sink := xlsx.NewSink(excelize.NewFile(), "", zap.NewNop())
	require.NoError(t, sink.CreateFromTemplate(ctx, "Sheet1", "Объект", nil))
	_, err := sink.Append(ctx, "Объект", sheets.ExpenseRange, []any{"Дата", "Категория", "Без НДС", "С НДС", "НДС", "Комментарий"})
	require.NoError(t, err)
	_, err = sink.Append(ctx, "Объект", sheets.ExpenseRange, []any{"2025-05-14", "Проживание", 100, 120, 20, "отель"})
	require.NoError(t, err)
	_, err = sink.Append(ctx, "Объект", sheets.IncomeRange, []any{"2025-05-14", "Дата"})
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := writeSectionCSV(ctx, sink, "Объект", csvexport.SectionExpense, &buf)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, string(csvexport.BOM)+
		"Дата;Категория;Сумма без НДС;Сумма с НДС;НДС;Комментарий\n"+
		"2025-05-14;Проживание;100;120;20;отель\n", buf.String())
}

func TestWriteSectionCSV_UnknownSection(t *testing.T) {
	sink := xlsx.NewSink(excelize.NewFile(), "", zap.NewNop())

	_, err := writeSectionCSV(context.Background(), sink, "Sheet1", csvexport.Section("payroll"), &bytes.Buffer{})

	assert.ErrorIs(t, err, domain.ErrValidation)
}
