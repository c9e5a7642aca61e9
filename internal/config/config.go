package config

import "os"

// Config holds application configuration
type Config struct {
	ServerPort    string
	AllowedOrigin string
	RedisAddr     string

	// Base URL of the spreadsheet CSV export; the per-level gid is appended
	// as a query parameter by the sheet client.
	SheetExportURL string

	// Form submission endpoints (write-only sinks).
	UserFormURL        string
	ResultFormURL      string
	WrongAnswerFormURL string
}

const sheetID = "1JYIJGzOYEgrvxQex5iJAu-MNeMKo2BCQ"

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		AllowedOrigin:  getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		SheetExportURL: getEnv("SHEET_EXPORT_URL", "https://docs.google.com/spreadsheets/d/"+sheetID+"/export?format=csv"),
		UserFormURL:    getEnv("USER_FORM_URL", formURL("1lwKxX193Z5H6j_h_lSH3bdS-pFd6rOvGt6doeBDvUZ8")),
		ResultFormURL:  getEnv("RESULT_FORM_URL", formURL("1L_C-gYJAcokzKyAr8Lw3uiN68H-O5Q6vEWPuz32hasY")),
		WrongAnswerFormURL: getEnv("WRONG_ANSWER_FORM_URL",
			formURL("1BaLnw3DR4BP-j8t4FN1bfnqihj_h7MATdOnUCcXGCDw")),
	}
}

func formURL(formID string) string {
	return "https://docs.google.com/forms/d/" + formID + "/formResponse"
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
