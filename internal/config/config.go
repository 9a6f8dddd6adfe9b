package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Log     LogConfig
	CORS    CORSConfig
	Batch   BatchConfig
	Tax     TaxConfig
	Deduct  DeductConfig
	Archive ArchiveConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
	MaxUploadMB  int64         `mapstructure:"max_upload_mb"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// BatchConfig holds document pipeline settings.
type BatchConfig struct {
	Concurrency    int `mapstructure:"concurrency"`
	DocTimeoutSecs int `mapstructure:"doc_timeout_secs"`
}

// DocTimeout returns the per-document deadline as a duration.
func (b *BatchConfig) DocTimeout() time.Duration {
	return time.Duration(b.DocTimeoutSecs) * time.Second
}

// TaxConfig selects the tax-line aggregation policy. Mode "filtered" sums
// only the configured codes; mode "all" sums every line.
type TaxConfig struct {
	Aggregation     string `mapstructure:"aggregation"`
	TransferredCode string `mapstructure:"transferred_code"`
	WithheldCode    string `mapstructure:"withheld_code"`
}

// DeductConfig holds the deductibility policy data.
type DeductConfig struct {
	CashPaymentForm string   `mapstructure:"cash_payment_form"`
	CashLimit       float64  `mapstructure:"cash_limit"`
	ExcludedUsage   []string `mapstructure:"excluded_usage"`
}

// ArchiveConfig holds source-document archival settings. Backend "fs"
// copies under Root; backend "s3" uploads to the configured bucket.
type ArchiveConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Backend string `mapstructure:"backend"`
	Root    string `mapstructure:"root"`
	S3      S3Config
}

// S3Config holds AWS S3 settings for the archive backend.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// Load reads configuration from environment variables with the CFDIBOX_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CFDIBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_upload_mb", 100)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Batch defaults
	v.SetDefault("batch.concurrency", 8)
	v.SetDefault("batch.doc_timeout_secs", 30)

	// Tax defaults: IVA transferred (002), ISR withheld (001)
	v.SetDefault("tax.aggregation", "filtered")
	v.SetDefault("tax.transferred_code", "002")
	v.SetDefault("tax.withheld_code", "001")

	// Deductibility defaults
	v.SetDefault("deduct.cash_payment_form", "01")
	v.SetDefault("deduct.cash_limit", 2000.0)
	v.SetDefault("deduct.excluded_usage", "S01,CP01")

	// Archive defaults
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.backend", "fs")
	v.SetDefault("archive.root", "Facturas_Organizadas")
	v.SetDefault("archive.s3.region", "us-east-1")
	v.SetDefault("archive.s3.bucket", "cfdibox-archive")
	v.SetDefault("archive.s3.endpoint", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "CFDIBOX_SERVER_PORT",
		"server.read_timeout":      "CFDIBOX_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "CFDIBOX_SERVER_WRITE_TIMEOUT",
		"server.environment":       "CFDIBOX_SERVER_ENVIRONMENT",
		"server.max_upload_mb":     "CFDIBOX_SERVER_MAX_UPLOAD_MB",
		"log.level":                "CFDIBOX_LOG_LEVEL",
		"log.format":               "CFDIBOX_LOG_FORMAT",
		"cors.allowed_origins":     "CFDIBOX_CORS_ALLOWED_ORIGINS",
		"batch.concurrency":        "CFDIBOX_BATCH_CONCURRENCY",
		"batch.doc_timeout_secs":   "CFDIBOX_BATCH_DOC_TIMEOUT_SECS",
		"tax.aggregation":          "CFDIBOX_TAX_AGGREGATION",
		"tax.transferred_code":     "CFDIBOX_TAX_TRANSFERRED_CODE",
		"tax.withheld_code":        "CFDIBOX_TAX_WITHHELD_CODE",
		"deduct.cash_payment_form": "CFDIBOX_DEDUCT_CASH_PAYMENT_FORM",
		"deduct.cash_limit":        "CFDIBOX_DEDUCT_CASH_LIMIT",
		"deduct.excluded_usage":    "CFDIBOX_DEDUCT_EXCLUDED_USAGE",
		"archive.enabled":          "CFDIBOX_ARCHIVE_ENABLED",
		"archive.backend":          "CFDIBOX_ARCHIVE_BACKEND",
		"archive.root":             "CFDIBOX_ARCHIVE_ROOT",
		"archive.s3.region":        "CFDIBOX_ARCHIVE_S3_REGION",
		"archive.s3.bucket":        "CFDIBOX_ARCHIVE_S3_BUCKET",
		"archive.s3.endpoint":      "CFDIBOX_ARCHIVE_S3_ENDPOINT",
		"archive.s3.access_key":    "CFDIBOX_ARCHIVE_S3_ACCESS_KEY",
		"archive.s3.secret_key":    "CFDIBOX_ARCHIVE_S3_SECRET_KEY",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if CFDIBOX_SERVER_PORT
	// is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("CFDIBOX_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
		MaxUploadMB:  v.GetInt64("server.max_upload_mb"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Batch = BatchConfig{
		Concurrency:    v.GetInt("batch.concurrency"),
		DocTimeoutSecs: v.GetInt("batch.doc_timeout_secs"),
	}
	cfg.Tax = TaxConfig{
		Aggregation:     v.GetString("tax.aggregation"),
		TransferredCode: v.GetString("tax.transferred_code"),
		WithheldCode:    v.GetString("tax.withheld_code"),
	}
	cfg.Deduct = DeductConfig{
		CashPaymentForm: v.GetString("deduct.cash_payment_form"),
		CashLimit:       v.GetFloat64("deduct.cash_limit"),
		ExcludedUsage:   splitList(v.GetString("deduct.excluded_usage")),
	}
	cfg.Archive = ArchiveConfig{
		Enabled: v.GetBool("archive.enabled"),
		Backend: v.GetString("archive.backend"),
		Root:    v.GetString("archive.root"),
		S3: S3Config{
			Region:    v.GetString("archive.s3.region"),
			Bucket:    v.GetString("archive.s3.bucket"),
			Endpoint:  v.GetString("archive.s3.endpoint"),
			AccessKey: v.GetString("archive.s3.access_key"),
			SecretKey: v.GetString("archive.s3.secret_key"),
		},
	}

	return cfg, nil
}

// splitList parses a comma-separated string into trimmed non-empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
