package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/eternals/internal/admission"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool

	// Line parser
	RulesFile            string
	ExtractionMode       string
	Precondition         string
	Buffering            bool
	ResetCourseOnCollege bool

	// Master data
	MasterFile  string
	MasterSheet string

	// Browser dashboard origins
	CORSOrigins []string
}

// LoadDotEnv reads the given .env files (".env" when none are named) into
// the process environment. Variables already set win. Missing files are
// not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("ETERNALS_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		RulesFile:            os.Getenv("RULES_FILE"),
		ExtractionMode:       envOr("EXTRACTION_MODE", string(admission.ModePattern)),
		Precondition:         envOr("PARSE_PRECONDITION", string(admission.RequireAnyHeader)),
		Buffering:            envBool("PARSE_BUFFERING", false),
		ResetCourseOnCollege: envBool("RESET_COURSE_ON_COLLEGE", false),

		MasterFile:  envOr("MASTER_FILE", "data/MASTER EXCEL.xlsx"),
		MasterSheet: envOr("MASTER_SHEET", "Sheet1"),

		CORSOrigins: envList("CORS_ORIGINS", []string{"http://localhost:5173", "http://127.0.0.1:5173"}),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("ETERNALS_API_KEY is required")
	}
	if _, err := c.ParseOptions(); err != nil {
		return err
	}
	return nil
}

// ParseOptions resolves the line parser settings.
func (c Config) ParseOptions() (admission.Options, error) {
	mode, err := admission.ParseMode(c.ExtractionMode)
	if err != nil {
		return admission.Options{}, fmt.Errorf("EXTRACTION_MODE: %w", err)
	}
	pre, err := admission.ParsePrecondition(c.Precondition)
	if err != nil {
		return admission.Options{}, fmt.Errorf("PARSE_PRECONDITION: %w", err)
	}
	return admission.Options{
		Mode:                 mode,
		Precondition:         pre,
		Buffering:            c.Buffering,
		ResetCourseOnCollege: c.ResetCourseOnCollege,
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma-separated value, dropping empty items.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
