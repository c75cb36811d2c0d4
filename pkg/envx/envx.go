// Package envx reads service configuration from the environment.
package envx

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotenv loads variables from the given .env files (".env" when none are
// named) without overriding anything already set. Missing files are skipped.
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// String returns the value of key, or def when unset or empty.
func String(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}

// Int returns key parsed as an integer, or def when unset or unparsable.
func Int(key string, def int) int {
	value := os.Getenv(key)
	if value == "" {
		return def
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return def
}

// Int64 is Int for 64-bit values such as byte sizes.
func Int64(key string, def int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return def
	}

	if v, err := strconv.ParseInt(value, 10, 64); err == nil {
		return v
	}

	return def
}

// Bool returns key parsed with strconv.ParseBool, or def.
func Bool(key string, def bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return def
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return def
}

// Duration accepts Go durations ("1h", "30m", "90s") and, for backwards
// compatibility, a bare integer number of minutes.
func Duration(key string, def time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return def
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return def
}

// List splits a comma separated value, dropping blanks.
func List(key string, def []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return def
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
