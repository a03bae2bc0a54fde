package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/On-Jun9/HeicPipe/pkg/types"
)

// EnvPrefix is prepended to every environment variable read by ApplyEnv.
const EnvPrefix = "HEICPIPE_"

type Config struct {
	QualityPercent  int                  `yaml:"quality" json:"quality"`
	Recipient       string               `yaml:"recipient" json:"recipient"`
	OutputDir       string               `yaml:"output_dir" json:"output_dir"`
	ConflictPolicy  types.ConflictPolicy `yaml:"conflict_policy" json:"conflict_policy"`
	LogFile         string               `yaml:"log_file" json:"log_file"`
	LogJSON         bool                 `yaml:"log_json" json:"log_json"`
	DryRun          bool                 `yaml:"dry_run" json:"dry_run"`
	Verify          bool                 `yaml:"verify" json:"verify"`
	VipsPath        string               `yaml:"vips_path" json:"vips_path"`
	CodecTimeout    time.Duration        `yaml:"codec_timeout" json:"codec_timeout"`
	Addr            string               `yaml:"addr" json:"addr"`
	SessionTTL      time.Duration        `yaml:"session_ttl" json:"session_ttl"`
	UploadRateLimit float64              `yaml:"upload_rate_limit" json:"upload_rate_limit"`
	MaxUploadBytes  int64                `yaml:"max_upload_bytes" json:"max_upload_bytes"`
}

func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	stateDir := filepath.Join(homeDir, ".heicpipe")

	return &Config{
		QualityPercent:  90,
		OutputDir:       "converted",
		ConflictPolicy:  types.ConflictPolicyRename,
		LogFile:         filepath.Join(stateDir, "heicpipe.log"),
		LogJSON:         false,
		DryRun:          false,
		Verify:          false,
		CodecTimeout:    2 * time.Minute,
		Addr:            ":8080",
		SessionTTL:      30 * time.Minute,
		UploadRateLimit: 1,
		MaxUploadBytes:  512 << 20,
	}
}

func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv loads envFile (if it exists) into the process environment and
// overrides fields from HEICPIPE_* variables. Unparseable values are ignored.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	c.QualityPercent = getEnvAsInt("QUALITY", c.QualityPercent)
	c.Recipient = getEnv("RECIPIENT", c.Recipient)
	c.OutputDir = getEnv("OUTPUT_DIR", c.OutputDir)
	c.ConflictPolicy = types.ConflictPolicy(getEnv("CONFLICT_POLICY", string(c.ConflictPolicy)))
	c.LogFile = getEnv("LOG_FILE", c.LogFile)
	c.LogJSON = getEnvAsBool("LOG_JSON", c.LogJSON)
	c.VipsPath = getEnv("VIPS_PATH", c.VipsPath)
	c.CodecTimeout = getDuration("CODEC_TIMEOUT", c.CodecTimeout)
	c.Addr = getEnv("ADDR", c.Addr)
	c.SessionTTL = getDuration("SESSION_TTL", c.SessionTTL)
	c.MaxUploadBytes = getEnvAsInt64("MAX_UPLOAD_BYTES", c.MaxUploadBytes)
	if v := os.Getenv(EnvPrefix + "UPLOAD_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.UploadRateLimit = f
		}
	}

	return nil
}

// Quality returns the configured percentage as a conversion factor.
func (c *Config) Quality() (types.Quality, error) {
	q, err := types.QualityFromPercent(c.QualityPercent)
	if err != nil {
		return 0, &ValidationError{Field: "quality", Message: err.Error()}
	}
	return q, nil
}

func (c *Config) Validate() error {
	if _, err := c.Quality(); err != nil {
		return err
	}

	switch c.ConflictPolicy {
	case "":
		c.ConflictPolicy = types.ConflictPolicyRename
	case types.ConflictPolicySkip, types.ConflictPolicyRename, types.ConflictPolicyOverwrite:
	default:
		return &ValidationError{Field: "conflict_policy", Message: "must be one of skip, rename, overwrite"}
	}

	if c.OutputDir == "" {
		c.OutputDir = "converted"
	}
	if c.CodecTimeout <= 0 {
		c.CodecTimeout = 2 * time.Minute
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 30 * time.Minute
	}
	if c.UploadRateLimit <= 0 {
		c.UploadRateLimit = 1
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 512 << 20
	}
	if c.Addr == "" {
		c.Addr = ":8080"
	}

	return nil
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func getEnv(key, defaultVal string) string {
	if value := strings.TrimSpace(os.Getenv(EnvPrefix + key)); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}
