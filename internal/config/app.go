package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultAddr = ":8080"

func Addr() string {
	if addr, ok := os.LookupEnv("APP_ADDR"); ok && addr != "" {
		return addr
	}
	return defaultAddr
}

func BasePath() string {
	return strings.TrimSuffix(os.Getenv("APP_BASE_PATH"), "/")
}

// AllowedOrigins lists CORS_ALLOWED_ORIGINS; empty means any origin.
func AllowedOrigins() []string {
	return lookupList("CORS_ALLOWED_ORIGINS")
}

func Development() bool {
	development, ok := os.LookupEnv("DEVELOPMENT")
	if !ok {
		return false
	}
	return development != "0"
}

type Logging struct {
	Level logrus.Level
	File  string
}

func NewLogging() (*Logging, error) {
	level := logrus.InfoLevel
	if Development() {
		level = logrus.DebugLevel
	}
	if levelStr, ok := os.LookupEnv("LOG_LEVEL"); ok {
		var err error
		level, err = logrus.ParseLevel(levelStr)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
	}

	logging := &Logging{
		Level: level,
		File:  os.Getenv("LOG_FILE"),
	}

	return logging, nil
}

// readSecret returns the value of name, or the trimmed contents of the file
// named by name_FILE.
func readSecret(name string) (string, bool, error) {
	if value, ok := os.LookupEnv(name); ok {
		return value, true, nil
	}
	path, ok := os.LookupEnv(name + "_FILE")
	if !ok {
		return "", false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, fmt.Errorf("unable to read %s_FILE: %w", name, err)
	}
	return strings.TrimSpace(string(data)), true, nil
}

func lookupDuration(name string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return d, nil
}

func lookupInt(name string, fallback int) (int, error) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return fallback, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return i, nil
}

func lookupList(name string) []string {
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return nil
	}
	var list []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
