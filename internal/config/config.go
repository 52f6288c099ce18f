package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dgallion1/freteiro/internal/tariff"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment variable, e.g. FRETEIRO_PROFILE.
const EnvPrefix = "FRETEIRO"

type Config struct {
	// Report header defaults
	Provider   string
	Profile    tariff.Profile
	ReportDate string // DD/MM/YYYY; empty means today

	// Output
	OutputDir string

	// Allowance policy
	HelperAllowance decimal.Decimal

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Input limits
	MaxUploadBytes int64

	// PDF
	PDFFallbackPdftotext bool
}

func defaults(v *viper.Viper) {
	v.SetDefault("provider", "")
	v.SetDefault("profile", string(tariff.ProfileVUC))
	v.SetDefault("report_date", "")
	v.SetDefault("output_dir", ".")
	v.SetDefault("helper_allowance", "80.00")
	v.SetDefault("worker_count", 4)
	v.SetDefault("max_queue_size", 100)
	v.SetDefault("max_upload_bytes", int64(52428800)) // 50MB
	v.SetDefault("pdf_fallback_pdftotext", true)
}

// Load reads configuration from FRETEIRO_* environment variables and, when
// path (or FRETEIRO_CONFIG) is set, from a config file in any format viper
// understands. Environment wins over the file.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	v := viper.New()
	defaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		Provider:             v.GetString("provider"),
		Profile:              tariff.Profile(strings.ToUpper(strings.TrimSpace(v.GetString("profile")))),
		ReportDate:           v.GetString("report_date"),
		OutputDir:            v.GetString("output_dir"),
		WorkerCount:          v.GetInt("worker_count"),
		MaxQueueSize:         v.GetInt("max_queue_size"),
		MaxUploadBytes:       v.GetInt64("max_upload_bytes"),
		PDFFallbackPdftotext: v.GetBool("pdf_fallback_pdftotext"),
	}

	allowance, err := decimal.NewFromString(strings.TrimSpace(v.GetString("helper_allowance")))
	if err != nil {
		return Config{}, fmt.Errorf("helper_allowance: %w", err)
	}
	cfg.HelperAllowance = allowance

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if !c.Profile.Valid() {
		return fmt.Errorf("profile: %w: %q", tariff.ErrUnknownProfile, c.Profile)
	}
	if c.HelperAllowance.IsNegative() {
		return errors.New("helper_allowance must not be negative")
	}
	return nil
}
