package cli

import (
	"os"
	"path/filepath"
)

// Config holds CLI configuration
type Config struct {
	Host       string
	ConfigFile string
	CookieFile string
	Output     string
	Verbose    bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		Host:       getEnvOrDefault("RAIC_HOST", "https://russianaicup.ru"),
		ConfigFile: getEnvOrDefault("RAIC_CONFIG", "config.yaml"),
		CookieFile: getEnvOrDefault("RAIC_COOKIE_FILE", defaultCookieFile()),
		Output:     "text",
		Verbose:    false,
	}
}

func defaultCookieFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".raic/cookies.yaml"
	}
	return filepath.Join(home, ".raic", "cookies.yaml")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
