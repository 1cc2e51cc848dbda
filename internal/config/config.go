package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"ledgerbot/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Telegram TelegramConfig
	Auth     AuthConfig
	Sheets   SheetsConfig
	VAT      VATConfig
	AI       AIConfig
	Export   ExportConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Environment     string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelegramConfig holds messaging platform settings.
type TelegramConfig struct {
	Token         string `mapstructure:"token"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	WebhookURL    string `mapstructure:"webhook_url"`
	PollTimeout   int    `mapstructure:"poll_timeout"`
	Concurrency   int    `mapstructure:"concurrency"`
}

// AuthConfig holds the shared access secret. PasswordHash (bcrypt) wins over Password.
type AuthConfig struct {
	Password     string `mapstructure:"password"`
	PasswordHash string `mapstructure:"password_hash"`
}

// SheetsConfig selects and configures the record sink.
type SheetsConfig struct {
	Provider        string `mapstructure:"provider"`
	SpreadsheetID   string `mapstructure:"spreadsheet_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
	XLSXPath        string `mapstructure:"xlsx_path"`
	Template        string `mapstructure:"template"`
	RequestSheet    string `mapstructure:"request_sheet"`
}

// VATConfig holds the tax rate applied to amounts.
type VATConfig struct {
	Rate float64 `mapstructure:"rate"`
}

// AIProviderConfig holds settings for a single completion provider.
type AIProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	Endpoint     string `mapstructure:"endpoint"`
	FolderID     string `mapstructure:"folder_id"`
}

// AIConfig holds free-text extraction settings with multi-provider support.
type AIConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`

	// Legacy flat fields
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`

	Primary   AIProviderConfig `mapstructure:"primary"`
	Secondary AIProviderConfig `mapstructure:"secondary"`
	Tertiary  AIProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary provider config, falling back to legacy flat fields.
func (a *AIConfig) PrimaryConfig() *AIProviderConfig {
	if a.Primary.Provider != "" {
		return &a.Primary
	}
	return &AIProviderConfig{
		Provider:     a.Provider,
		APIKey:       a.APIKey,
		DefaultModel: a.DefaultModel,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (a *AIConfig) SecondaryConfig() *AIProviderConfig {
	if a.Secondary.Provider != "" {
		return &a.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (a *AIConfig) TertiaryConfig() *AIProviderConfig {
	if a.Tertiary.Provider != "" {
		return &a.Tertiary
	}
	return nil
}

// ExportConfig controls where workbook exports are archived.
type ExportConfig struct {
	FileName string        `mapstructure:"file_name"`
	Archive  ArchiveConfig `mapstructure:"archive"`
}

// ArchiveConfig holds S3 settings for the export archive. Provider is "noop" or "s3".
type ArchiveConfig struct {
	Provider      string `mapstructure:"provider"`
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Prefix        string `mapstructure:"prefix"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// Load reads configuration from environment variables with the LEDGERBOT_ prefix.
// The bare variable names used by older deployments (BOT_TOKEN, SHEET_ID, ...) are
// honoured as fallbacks.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LEDGERBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.environment", "development")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("telegram.poll_timeout", 60)
	v.SetDefault("telegram.concurrency", 8)

	v.SetDefault("sheets.provider", "google")
	v.SetDefault("sheets.credentials_file", "credentials.json")
	v.SetDefault("sheets.xlsx_path", "ledger.xlsx")
	v.SetDefault("sheets.template", "Проект 1 (АмурМинералс)")
	v.SetDefault("sheets.request_sheet", "Лист1")

	v.SetDefault("vat.rate", 0.20)

	v.SetDefault("ai.timeout", "10s")
	v.SetDefault("ai.temperature", 0.3)
	v.SetDefault("ai.max_tokens", 1000)
	v.SetDefault("ai.provider", "deepseek")
	v.SetDefault("ai.default_model", "")

	v.SetDefault("export.file_name", "Финансовый_отчет.xlsx")
	v.SetDefault("export.archive.provider", "noop")
	v.SetDefault("export.archive.region", "us-east-1")
	v.SetDefault("export.archive.prefix", "exports/")
	v.SetDefault("export.archive.presign_expiry", 3600)

	// Bind environment variables explicitly for nested keys. Extra names are
	// checked in order after the prefixed one.
	envBindings := map[string][]string{
		"server.port":                   {"LEDGERBOT_SERVER_PORT"},
		"server.read_timeout":           {"LEDGERBOT_SERVER_READ_TIMEOUT"},
		"server.write_timeout":          {"LEDGERBOT_SERVER_WRITE_TIMEOUT"},
		"server.shutdown_timeout":       {"LEDGERBOT_SERVER_SHUTDOWN_TIMEOUT"},
		"server.environment":            {"LEDGERBOT_SERVER_ENVIRONMENT"},
		"log.level":                     {"LEDGERBOT_LOG_LEVEL"},
		"log.format":                    {"LEDGERBOT_LOG_FORMAT"},
		"telegram.token":                {"LEDGERBOT_TELEGRAM_TOKEN", "BOT_TOKEN"},
		"telegram.webhook_secret":       {"LEDGERBOT_TELEGRAM_WEBHOOK_SECRET"},
		"telegram.webhook_url":          {"LEDGERBOT_TELEGRAM_WEBHOOK_URL"},
		"telegram.poll_timeout":         {"LEDGERBOT_TELEGRAM_POLL_TIMEOUT"},
		"telegram.concurrency":          {"LEDGERBOT_TELEGRAM_CONCURRENCY"},
		"auth.password":                 {"LEDGERBOT_AUTH_PASSWORD", "BOT_PASSWORD"},
		"auth.password_hash":            {"LEDGERBOT_AUTH_PASSWORD_HASH"},
		"sheets.provider":               {"LEDGERBOT_SHEETS_PROVIDER"},
		"sheets.spreadsheet_id":         {"LEDGERBOT_SHEETS_SPREADSHEET_ID", "SHEET_ID"},
		"sheets.credentials_file":       {"LEDGERBOT_SHEETS_CREDENTIALS_FILE", "GOOGLE_APPLICATION_CREDENTIALS"},
		"sheets.xlsx_path":              {"LEDGERBOT_SHEETS_XLSX_PATH"},
		"sheets.template":               {"LEDGERBOT_SHEETS_TEMPLATE"},
		"sheets.request_sheet":          {"LEDGERBOT_SHEETS_REQUEST_SHEET"},
		"vat.rate":                      {"LEDGERBOT_VAT_RATE"},
		"ai.timeout":                    {"LEDGERBOT_AI_TIMEOUT"},
		"ai.temperature":                {"LEDGERBOT_AI_TEMPERATURE"},
		"ai.max_tokens":                 {"LEDGERBOT_AI_MAX_TOKENS"},
		"ai.provider":                   {"LEDGERBOT_AI_PROVIDER"},
		"ai.api_key":                    {"LEDGERBOT_AI_API_KEY", "DEEPSEEK_API_KEY"},
		"ai.default_model":              {"LEDGERBOT_AI_DEFAULT_MODEL"},
		"ai.primary.provider":           {"LEDGERBOT_AI_PRIMARY_PROVIDER"},
		"ai.primary.api_key":            {"LEDGERBOT_AI_PRIMARY_API_KEY"},
		"ai.primary.default_model":      {"LEDGERBOT_AI_PRIMARY_DEFAULT_MODEL"},
		"ai.primary.endpoint":           {"LEDGERBOT_AI_PRIMARY_ENDPOINT"},
		"ai.primary.folder_id":          {"LEDGERBOT_AI_PRIMARY_FOLDER_ID"},
		"ai.secondary.provider":         {"LEDGERBOT_AI_SECONDARY_PROVIDER"},
		"ai.secondary.api_key":          {"LEDGERBOT_AI_SECONDARY_API_KEY", "YANDEX_IAM_TOKEN"},
		"ai.secondary.default_model":    {"LEDGERBOT_AI_SECONDARY_DEFAULT_MODEL"},
		"ai.secondary.endpoint":         {"LEDGERBOT_AI_SECONDARY_ENDPOINT"},
		"ai.secondary.folder_id":        {"LEDGERBOT_AI_SECONDARY_FOLDER_ID", "YANDEX_FOLDER_ID"},
		"ai.tertiary.provider":          {"LEDGERBOT_AI_TERTIARY_PROVIDER"},
		"ai.tertiary.api_key":           {"LEDGERBOT_AI_TERTIARY_API_KEY", "GEMINI_API_KEY"},
		"ai.tertiary.default_model":     {"LEDGERBOT_AI_TERTIARY_DEFAULT_MODEL"},
		"ai.tertiary.endpoint":          {"LEDGERBOT_AI_TERTIARY_ENDPOINT"},
		"ai.tertiary.folder_id":         {"LEDGERBOT_AI_TERTIARY_FOLDER_ID"},
		"export.file_name":              {"LEDGERBOT_EXPORT_FILE_NAME"},
		"export.archive.provider":       {"LEDGERBOT_EXPORT_ARCHIVE_PROVIDER"},
		"export.archive.region":         {"LEDGERBOT_EXPORT_ARCHIVE_REGION"},
		"export.archive.bucket":         {"LEDGERBOT_EXPORT_ARCHIVE_BUCKET"},
		"export.archive.prefix":         {"LEDGERBOT_EXPORT_ARCHIVE_PREFIX"},
		"export.archive.endpoint":       {"LEDGERBOT_EXPORT_ARCHIVE_ENDPOINT"},
		"export.archive.access_key":     {"LEDGERBOT_EXPORT_ARCHIVE_ACCESS_KEY"},
		"export.archive.secret_key":     {"LEDGERBOT_EXPORT_ARCHIVE_SECRET_KEY"},
		"export.archive.presign_expiry": {"LEDGERBOT_EXPORT_ARCHIVE_PRESIGN_EXPIRY"},
	}
	for key, envs := range envBindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}

	cfg := &Config{}

	// Cloud runtimes set PORT. Use it if LEDGERBOT_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("LEDGERBOT_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:            serverPort,
		ReadTimeout:     v.GetDuration("server.read_timeout"),
		WriteTimeout:    v.GetDuration("server.write_timeout"),
		ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		Environment:     v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Telegram = TelegramConfig{
		Token:         v.GetString("telegram.token"),
		WebhookSecret: v.GetString("telegram.webhook_secret"),
		WebhookURL:    v.GetString("telegram.webhook_url"),
		PollTimeout:   v.GetInt("telegram.poll_timeout"),
		Concurrency:   v.GetInt("telegram.concurrency"),
	}
	cfg.Auth = AuthConfig{
		Password:     v.GetString("auth.password"),
		PasswordHash: v.GetString("auth.password_hash"),
	}
	cfg.Sheets = SheetsConfig{
		Provider:        v.GetString("sheets.provider"),
		SpreadsheetID:   v.GetString("sheets.spreadsheet_id"),
		CredentialsFile: v.GetString("sheets.credentials_file"),
		XLSXPath:        v.GetString("sheets.xlsx_path"),
		Template:        v.GetString("sheets.template"),
		RequestSheet:    v.GetString("sheets.request_sheet"),
	}
	cfg.VAT = VATConfig{Rate: v.GetFloat64("vat.rate")}

	cfg.AI = AIConfig{
		Timeout:      v.GetDuration("ai.timeout"),
		Temperature:  v.GetFloat64("ai.temperature"),
		MaxTokens:    v.GetInt("ai.max_tokens"),
		Provider:     v.GetString("ai.provider"),
		APIKey:       v.GetString("ai.api_key"),
		DefaultModel: v.GetString("ai.default_model"),
		Primary:      providerConfig(v, "ai.primary"),
		Secondary:    providerConfig(v, "ai.secondary"),
		Tertiary:     providerConfig(v, "ai.tertiary"),
	}
	// A bare YANDEX_IAM_TOKEN deployment gets YandexGPT as the fallback provider.
	if cfg.AI.Secondary.Provider == "" && os.Getenv("YANDEX_IAM_TOKEN") != "" {
		cfg.AI.Secondary.Provider = "yandexgpt"
	}

	cfg.Export = ExportConfig{
		FileName: v.GetString("export.file_name"),
		Archive: ArchiveConfig{
			Provider:      v.GetString("export.archive.provider"),
			Region:        v.GetString("export.archive.region"),
			Bucket:        v.GetString("export.archive.bucket"),
			Prefix:        v.GetString("export.archive.prefix"),
			Endpoint:      v.GetString("export.archive.endpoint"),
			AccessKey:     v.GetString("export.archive.access_key"),
			SecretKey:     v.GetString("export.archive.secret_key"),
			PresignExpiry: v.GetInt64("export.archive.presign_expiry"),
		},
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, prefix string) AIProviderConfig {
	return AIProviderConfig{
		Provider:     v.GetString(prefix + ".provider"),
		APIKey:       v.GetString(prefix + ".api_key"),
		DefaultModel: v.GetString(prefix + ".default_model"),
		Endpoint:     v.GetString(prefix + ".endpoint"),
		FolderID:     v.GetString(prefix + ".folder_id"),
	}
}

// Validate checks the options every bot process needs. sinkOnly skips the
// messaging settings for commands that never talk to the platform.
func (c *Config) Validate(sinkOnly bool) error {
	var missing []string
	if !sinkOnly && c.Telegram.Token == "" {
		missing = append(missing, "telegram.token")
	}
	if c.Auth.Password == "" && c.Auth.PasswordHash == "" {
		missing = append(missing, "auth.password")
	}
	switch c.Sheets.Provider {
	case "google":
		if c.Sheets.SpreadsheetID == "" {
			missing = append(missing, "sheets.spreadsheet_id")
		}
	case "xlsx":
		if c.Sheets.XLSXPath == "" {
			missing = append(missing, "sheets.xlsx_path")
		}
	default:
		return fmt.Errorf("%w: unknown sheets provider %q", domain.ErrConfiguration, c.Sheets.Provider)
	}
	if c.Sheets.Template == "" {
		missing = append(missing, "sheets.template")
	}
	if c.VAT.Rate < 0 || c.VAT.Rate >= 1 {
		return fmt.Errorf("%w: vat.rate must be in [0, 1), got %v", domain.ErrConfiguration, c.VAT.Rate)
	}
	if c.Export.Archive.Provider == "s3" && c.Export.Archive.Bucket == "" {
		missing = append(missing, "export.archive.bucket")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", domain.ErrConfiguration, strings.Join(missing, ", "))
	}
	return nil
}
