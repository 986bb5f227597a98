package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	AuthHMACSecret string
	AdminUser      string
	AdminPassHash  string // bcrypt

	CORSOrigins []string

	// Generative text model (OpenAI-compatible endpoint).
	ModelAPIKey  string
	ModelBaseURL string
	ModelName    string

	// Google Workspace access. Tokens are obtained via a refresh-token
	// grant; the interactive consent flow is out of scope here.
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRefreshToken string
	GoogleTokenURL     string // override for tests

	// Background automation.
	AutomationEnabled bool
	PollInterval      time.Duration
	ReminderLeadTime  time.Duration
	SummaryDelay      time.Duration
}

func FromEnv() Config {
	return Config{
		HTTPAddr:  envOr("HTTP_ADDR", ":8080"),
		PublicURL: strings.TrimSuffix(os.Getenv("PUBLIC_URL"), "/"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		AuthHMACSecret: envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		AdminUser:      envOr("ADMIN_USER", "teacher"),
		AdminPassHash:  envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000"),

		ModelAPIKey:  os.Getenv("MODEL_API_KEY"),
		ModelBaseURL: envOr("MODEL_BASE_URL", ""),
		ModelName:    envOr("MODEL_NAME", "gpt-4o"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRefreshToken: os.Getenv("GOOGLE_REFRESH_TOKEN"),
		GoogleTokenURL:     envOr("GOOGLE_TOKEN_URL", "https://oauth2.googleapis.com/token"),

		AutomationEnabled: envBool("AUTOMATION_ENABLED", true),
		PollInterval:      envDuration("AUTOMATION_POLL_INTERVAL", 5*time.Minute),
		ReminderLeadTime:  envDuration("REMINDER_LEAD_TIME", 15*time.Minute),
		SummaryDelay:      envDuration("SUMMARY_DELAY", 10*time.Minute),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Minute
	}
	return def
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
