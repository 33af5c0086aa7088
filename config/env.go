package config

import "os"

// GetEnv returns the value of an environment variable, or "" when unset.
// godotenv is loaded once in main before any GetEnv call.
func GetEnv(key string) string {
	return os.Getenv(key)
}
