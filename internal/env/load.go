package env

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// LoadEnv reads .env from the working directory when present.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Debug().Msg("No .env file found, assuming environment variables are set directly.")
	}
}

// GetEnv returns the value of key or def when it is unset or empty.
func GetEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return def
}

// GetInt returns key parsed as an integer. Unparsable values are logged and
// fall back to def.
func GetInt(key string, def int) int {
	val, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(val) == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		log.Warn().Str("key", key).Str("value", val).Msg("not an integer, using default")
		return def
	}
	return n
}

func GetBool(key string, def bool) bool {
	val, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(val) == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(val))
	if err != nil {
		log.Warn().Str("key", key).Str("value", val).Msg("not a boolean, using default")
		return def
	}
	return b
}
