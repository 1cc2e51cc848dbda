package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerbot/internal/config"
	"ledgerbot/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "google", cfg.Sheets.Provider)
	assert.Equal(t, "Проект 1 (АмурМинералс)", cfg.Sheets.Template)
	assert.Equal(t, "Лист1", cfg.Sheets.RequestSheet)
	assert.InDelta(t, 0.20, cfg.VAT.Rate, 1e-9)
	assert.Equal(t, 10*time.Second, cfg.AI.Timeout)
	assert.InDelta(t, 0.3, cfg.AI.Temperature, 1e-9)
	assert.Equal(t, 1000, cfg.AI.MaxTokens)
	assert.Equal(t, "deepseek", cfg.AI.PrimaryConfig().Provider)
	assert.Equal(t, "Финансовый_отчет.xlsx", cfg.Export.FileName)
	assert.Equal(t, "noop", cfg.Export.Archive.Provider)
}

func TestLoad_LegacyEnvNames(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("SHEET_ID", "sheet-1")
	t.Setenv("BOT_PASSWORD", "secret")
	t.Setenv("DEEPSEEK_API_KEY", "sk-deep")
	t.Setenv("YANDEX_IAM_TOKEN", "iam")
	t.Setenv("YANDEX_FOLDER_ID", "folder")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, "sheet-1", cfg.Sheets.SpreadsheetID)
	assert.Equal(t, "secret", cfg.Auth.Password)
	assert.Equal(t, "sk-deep", cfg.AI.PrimaryConfig().APIKey)

	secondary := cfg.AI.SecondaryConfig()
	require.NotNil(t, secondary)
	assert.Equal(t, "yandexgpt", secondary.Provider)
	assert.Equal(t, "iam", secondary.APIKey)
	assert.Equal(t, "folder", secondary.FolderID)
}

func TestLoad_PrefixedWinsOverLegacy(t *testing.T) {
	t.Setenv("BOT_TOKEN", "legacy")
	t.Setenv("LEDGERBOT_TELEGRAM_TOKEN", "prefixed")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "prefixed", cfg.Telegram.Token)
}

func TestLoad_PortFromPlatform(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
}

func TestAIConfig_PrimaryConfig_ExplicitPrimary(t *testing.T) {
	cfg := config.AIConfig{
		Provider: "legacy-should-be-ignored",
		Primary: config.AIProviderConfig{
			Provider: "gemini",
			APIKey:   "g-key",
		},
	}

	primary := cfg.PrimaryConfig()

	assert.Equal(t, "gemini", primary.Provider)
	assert.Equal(t, "g-key", primary.APIKey)
}

func TestAIConfig_SecondaryAndTertiary_NotConfigured(t *testing.T) {
	cfg := config.AIConfig{Provider: "deepseek"}

	assert.Nil(t, cfg.SecondaryConfig())
	assert.Nil(t, cfg.TertiaryConfig())
}

func validConfig() *config.Config {
	return &config.Config{
		Telegram: config.TelegramConfig{Token: "t"},
		Auth:     config.AuthConfig{Password: "p"},
		Sheets:   config.SheetsConfig{Provider: "google", SpreadsheetID: "s", Template: "tpl"},
		VAT:      config.VATConfig{Rate: 0.2},
		Export:   config.ExportConfig{Archive: config.ArchiveConfig{Provider: "noop"}},
	}
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, validConfig().Validate(false))
}

func TestValidate_MissingFields(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.Token = ""
	cfg.Auth.Password = ""
	cfg.Sheets.SpreadsheetID = ""

	err := cfg.Validate(false)

	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "telegram.token")
	assert.Contains(t, err.Error(), "auth.password")
	assert.Contains(t, err.Error(), "sheets.spreadsheet_id")
}

func TestValidate_SinkOnlySkipsToken(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.Token = ""

	assert.NoError(t, cfg.Validate(true))
}

func TestValidate_HashIsEnough(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.Password = ""
	cfg.Auth.PasswordHash = "$2a$10$abc"

	assert.NoError(t, cfg.Validate(false))
}

func TestValidate_UnknownProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Sheets.Provider = "csv"

	assert.ErrorIs(t, cfg.Validate(false), domain.ErrConfiguration)
}

func TestValidate_RateOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.VAT.Rate = 1.5

	assert.ErrorIs(t, cfg.Validate(false), domain.ErrConfiguration)
}
