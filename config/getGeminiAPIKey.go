package config

// GetGeminiAPIKey returns the Gemini key, or "" when the external
// column classifier is not configured.
func GetGeminiAPIKey() string {
	key := GetEnv("GEMINI_API_KEY")
	if key == "" {
		Logger.Warn("GEMINI_API_KEY not set, column mapping will rely on aliases and heuristics only")
	}
	return key
}
