package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/snapetech/vidpicker/internal/pick"
)

// Config holds library, staging and host settings.
type Config struct {
	// Paths
	LibraryDir   string // directory scanned for video assets
	DocumentsDir string // application documents root; staging lives under it
	StagingSub   string // subdirectory of DocumentsDir holding durable copies
	TransientDir string // provider-owned scratch space; "" = os.TempDir()
	HistoryDB    string // sqlite path; "" = history disabled

	// Permission subsystem stand-in. Undetermined prompts on first use.
	AuthStatus   pick.AuthorizationStatus
	AllowLimited bool

	// Host
	MetricsAddr  string  // e.g. :9477; "" = no metrics listener
	TriggerRate  float64 // allowed pick triggers per second in serve mode; <= 0 = unlimited
	TriggerBurst int
	Player       string // external player command, e.g. "ffplay -autoexit"; "" = print path
}

// Load reads config from environment. Call LoadEnvFile(".env") before Load() to use a .env file.
func Load() *Config {
	c := &Config{
		LibraryDir:   getEnv("VIDPICKER_LIBRARY", "./library"),
		DocumentsDir: getEnv("VIDPICKER_DOCUMENTS", defaultDocuments()),
		StagingSub:   getEnv("VIDPICKER_STAGING_SUBDIR", "temp-dir"),
		TransientDir: os.Getenv("VIDPICKER_TRANSIENT_DIR"),
		HistoryDB:    os.Getenv("VIDPICKER_HISTORY_DB"),
		AuthStatus:   getEnvStatus("VIDPICKER_AUTH_STATUS", pick.StatusUndetermined),
		AllowLimited: getEnvBool("VIDPICKER_ALLOW_LIMITED", false),
		MetricsAddr:  os.Getenv("VIDPICKER_METRICS_ADDR"),
		TriggerRate:  getEnvFloat("VIDPICKER_TRIGGER_RATE", 1),
		TriggerBurst: getEnvInt("VIDPICKER_TRIGGER_BURST", 1),
		Player:       strings.TrimSpace(os.Getenv("VIDPICKER_PLAYER")),
	}
	if c.TriggerBurst < 1 {
		c.TriggerBurst = 1
	}
	return c
}

// Limiter returns the serve-mode trigger limiter, or nil when unlimited.
func (c *Config) Limiter() *rate.Limiter {
	if c.TriggerRate <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(c.TriggerRate), c.TriggerBurst)
}

// PlayerArgv splits Player into a binary and its leading arguments.
func (c *Config) PlayerArgv() (bin string, args []string) {
	f := strings.Fields(c.Player)
	if len(f) == 0 {
		return "", nil
	}
	return f[0], f[1:]
}

func defaultDocuments() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "./Documents"
	}
	return filepath.Join(home, "Documents")
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
	}
	return defaultVal
}

// getEnvStatus parses an authorization status token; unrecognized tokens fall back to defaultVal.
func getEnvStatus(key string, defaultVal pick.AuthorizationStatus) pick.AuthorizationStatus {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	if s, ok := pick.ParseStatus(v); ok {
		return s
	}
	return defaultVal
}
