package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Reviewer modes
const (
	ReviewModeConsole = "console"
	ReviewModeHTTP    = "http"
)

// Extractor kinds
const (
	ExtractorOpenAI  = "openai"
	ExtractorSidecar = "sidecar"
)

// Config holds all application configuration
type Config struct {
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Report   ReportConfig   `mapstructure:"report"`
	OCR      OCRConfig      `mapstructure:"ocr"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Review   ReviewConfig   `mapstructure:"review"`
	Lark     LarkConfig     `mapstructure:"lark"`
	Database DatabaseConfig `mapstructure:"database"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// PipelineConfig names the run inputs
type PipelineConfig struct {
	PolicyPath string   `mapstructure:"policy_path"`
	ImageDir   string   `mapstructure:"image_dir"`
	Extensions []string `mapstructure:"extensions"`
}

// ReportConfig holds report output settings
type ReportConfig struct {
	OutputPath              string `mapstructure:"output_path"`
	CountApprovedAsAccepted bool   `mapstructure:"count_approved_as_accepted"`
}

// OCRConfig selects the extractor
type OCRConfig struct {
	Extractor   string `mapstructure:"extractor"`
	MaxPDFPages int    `mapstructure:"max_pdf_pages"`
	PromptsPath string `mapstructure:"prompts_path"`
}

// OpenAIConfig holds OpenAI API configuration
type OpenAIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ReviewConfig selects how exceptions reach a human
type ReviewConfig struct {
	Mode         string           `mapstructure:"mode"`
	ReviewerName string           `mapstructure:"reviewer_name"`
	HTTP         HTTPReviewConfig `mapstructure:"http"`
}

// HTTPReviewConfig holds the review board server configuration
type HTTPReviewConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	PublicURL    string        `mapstructure:"public_url"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LarkConfig holds Lark notification configuration
type LarkConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	AppID         string `mapstructure:"app_id"`
	AppSecret     string `mapstructure:"app_secret"`
	ReceiveIDType string `mapstructure:"receive_id_type"`
	ReceiveID     string `mapstructure:"receive_id"`
}

// DatabaseConfig holds run ledger configuration
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// TracingConfig holds span export configuration
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
	OutputPath  string `mapstructure:"output_path"`
}

// NewViper returns a viper instance with defaults and environment bindings in place.
// Callers may bind command line flags onto it before LoadFrom.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvVars(v)
	return v
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	return LoadFrom(NewViper(), configPath)
}

// LoadFrom reads configPath into v, when given, and unmarshals the result
func LoadFrom(v *viper.Viper, configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Pipeline defaults
	v.SetDefault("pipeline.policy_path", "")
	v.SetDefault("pipeline.image_dir", "receipts")
	v.SetDefault("pipeline.extensions", []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".pdf"})

	// Report defaults
	v.SetDefault("report.output_path", "Expense_Status_Report.xlsx")
	v.SetDefault("report.count_approved_as_accepted", false)

	// OCR defaults
	v.SetDefault("ocr.extractor", ExtractorOpenAI)
	v.SetDefault("ocr.max_pdf_pages", 1)
	v.SetDefault("ocr.prompts_path", "")

	// OpenAI defaults
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.timeout", 60*time.Second)

	// Review defaults
	v.SetDefault("review.mode", ReviewModeConsole)
	v.SetDefault("review.reviewer_name", "")
	v.SetDefault("review.http.host", "127.0.0.1")
	v.SetDefault("review.http.port", 8090)
	v.SetDefault("review.http.public_url", "")
	v.SetDefault("review.http.read_timeout", 30*time.Second)
	v.SetDefault("review.http.write_timeout", 30*time.Second)

	// Lark defaults
	v.SetDefault("lark.enabled", false)
	v.SetDefault("lark.receive_id_type", "open_id")

	// Database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.path", "data/expense_review.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stderr")
	v.SetDefault("logger.format", "console")

	// Tracing defaults
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "expense-review")
	v.SetDefault("tracing.output_path", "stdout")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars(v *viper.Viper) {
	// Sensitive credentials from environment
	_ = v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("lark.app_id", "LARK_APP_ID")
	_ = v.BindEnv("lark.app_secret", "LARK_APP_SECRET")

	// Run inputs
	_ = v.BindEnv("pipeline.policy_path", "EXPENSE_POLICY_PATH")
	_ = v.BindEnv("pipeline.image_dir", "EXPENSE_IMAGE_DIR")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Pipeline.ImageDir) == "" {
		return fmt.Errorf("pipeline.image_dir is required")
	}
	if c.Report.OutputPath == "" {
		return fmt.Errorf("report.output_path is required")
	}

	switch c.OCR.Extractor {
	case ExtractorOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("openai.api_key is required for the openai extractor")
		}
	case ExtractorSidecar:
	default:
		return fmt.Errorf("ocr.extractor must be %q or %q, got %q", ExtractorOpenAI, ExtractorSidecar, c.OCR.Extractor)
	}

	switch c.Review.Mode {
	case ReviewModeConsole:
	case ReviewModeHTTP:
		if c.Review.HTTP.Port < 0 || c.Review.HTTP.Port > 65535 {
			return fmt.Errorf("review.http.port out of range: %d", c.Review.HTTP.Port)
		}
	default:
		return fmt.Errorf("review.mode must be %q or %q, got %q", ReviewModeConsole, ReviewModeHTTP, c.Review.Mode)
	}

	if c.Lark.Enabled {
		if c.Review.Mode != ReviewModeHTTP {
			return fmt.Errorf("lark notifications need review.mode %q", ReviewModeHTTP)
		}
		if c.Lark.AppID == "" {
			return fmt.Errorf("lark.app_id is required")
		}
		if c.Lark.AppSecret == "" {
			return fmt.Errorf("lark.app_secret is required")
		}
		if c.Lark.ReceiveID == "" {
			return fmt.Errorf("lark.receive_id is required")
		}
	}

	if c.Database.Enabled && c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	return nil
}
