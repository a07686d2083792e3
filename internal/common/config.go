package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/resume-parser/constants"
)

// Config holds all application configuration
type Config struct {
	Paths  PathsConfig  `yaml:"paths"`
	LLM    LLMConfig    `yaml:"llm"`
	OCR    OCRConfig    `yaml:"ocr"`
	Log    LogConfig    `yaml:"log"`
	Ledger LedgerConfig `yaml:"ledger"`
}

// PathsConfig holds the batch input and output directories
type PathsConfig struct {
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`
}

// LLMConfig holds structured-info service configuration
type LLMConfig struct {
	Model         string        `yaml:"model"`
	APIKey        string        `yaml:"api_key"`
	BaseURL       string        `yaml:"base_url"`
	Temperature   float32       `yaml:"temperature"`
	Timeout       time.Duration `yaml:"timeout"` // 0 = no client timeout
	ValidateShape bool          `yaml:"validate_shape"`
	SystemPrompt  string        `yaml:"system_prompt_file"` // optional override of the built-in prompt
	Skeleton      string        `yaml:"skeleton_file"`      // optional override of the built-in JSON template
}

// OCRConfig holds fallback rasterisation / OCR configuration
type OCRConfig struct {
	Enabled          bool   `yaml:"enabled"`
	Tesseract        string `yaml:"tesseract"`
	TessdataDir      string `yaml:"tessdata_dir"`
	Lang             string `yaml:"lang"`
	Pdftoppm         string `yaml:"pdftoppm"`
	DPI              int    `yaml:"dpi"`
	DocConverter     string `yaml:"doc_converter"`
	ArtifactCacheDir string `yaml:"artifact_cache_dir"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
	Dir    string `yaml:"dir"`    // optional log file directory
}

// LedgerConfig holds run-ledger database configuration
type LedgerConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	DialTimeout     time.Duration `yaml:"dial_timeout"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			InputDir:  getEnv("INPUT_DIR", "input_files"),
			OutputDir: getEnv("OUTPUT_DIR", "extracted_json"),
		},
		LLM: LLMConfig{
			Model:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:        getEnv("OPENAI_API_KEY", ""),
			BaseURL:       getEnv("OPENAI_BASE_URL", ""),
			Temperature:   getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:       getEnvAsDuration("OPENAI_TIMEOUT", 0),
			ValidateShape: getEnvAsBool("OPENAI_VALIDATE_SHAPE", false),
			SystemPrompt:  getEnv("SYSTEM_PROMPT_FILE", ""),
			Skeleton:      getEnv("SKELETON_FILE", ""),
		},
		OCR: OCRConfig{
			Enabled:          getEnvAsBool("OCR_ENABLED", false),
			Tesseract:        getEnv("TESSERACT", "tesseract"),
			TessdataDir:      getEnv("TESSDATA_PREFIX", ""),
			Lang:             getEnv("TESSERACT_LANG", "eng"),
			Pdftoppm:         getEnv("PDFTOPPM", "pdftoppm"),
			DPI:              getEnvAsInt("OCR_DPI", constants.RasterDPI),
			DocConverter:     getEnv("DOC_CONVERTER", ""),
			ArtifactCacheDir: getEnv("ARTIFACT_CACHE_DIR", "./tmp"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Dir:    getEnv("LOG_DIR", ""),
		},
		Ledger: LedgerConfig{
			DSN:             getEnv("LEDGER_DSN", ""),
			MaxConns:        getEnvAsInt32("LEDGER_MAX_CONNS", 4),
			MinConns:        getEnvAsInt32("LEDGER_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("LEDGER_MAX_CONN_LIFETIME", 30*time.Minute),
			DialTimeout:     getEnvAsDuration("LEDGER_DIAL_TIMEOUT", 3*time.Second),
		},
	}
}

// LoadFile overlays the YAML file at path onto c. Keys absent from the file keep their value.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return NewAppError(CodeConfig, "parse "+path, err)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks what the batch needs before any document is touched.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return NewAppError(CodeConfig, "OPENAI_API_KEY is required", ErrMissingCredentials)
	}
	if c.Paths.InputDir == "" {
		return NewAppError(CodeConfig, "input directory is required", ErrInvalidInput)
	}
	if c.Paths.OutputDir == "" {
		return NewAppError(CodeConfig, "output directory is required", ErrInvalidInput)
	}
	return nil
}
