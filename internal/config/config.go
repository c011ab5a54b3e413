package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Environment string
	BotToken    string
	// TelegramAPIURL is overridable for local Bot API servers and tests.
	TelegramAPIURL string
	DatabaseURL    string
	TablePrefix    string
	// UpdateMode selects how updates arrive: "polling" or "webhook".
	UpdateMode    string
	WebhookURL    string
	WebhookAddr   string
	WebhookSecret string
	PollTimeout   int // long poll timeout, seconds
	ReminderDays  []int
	ReminderHour  int // local time of the daily reminder run
	ReminderMin   int
	MaxDocuments  int
	MaxTemplates  int
	MaxFileSizeMB int
	// AllowedExtensions are lowercase with the leading dot, e.g. ".pdf".
	AllowedExtensions []string
	LogDir            string
	// Debug flags
	Debug bool
}

// defaultExtensions mirrors the file-type classification table: anything
// the bot can classify, it accepts.
var defaultExtensions = []string{
	".pdf",
	".doc", ".docx", ".odt", ".rtf",
	".xls", ".xlsx", ".ods",
	".ppt", ".pptx", ".odp",
	".jpg", ".jpeg", ".png", ".gif", ".webp",
	".zip", ".rar", ".7z",
	".txt",
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)

	return &Config{
		Environment:       env,
		BotToken:          getEnv("BOT_TOKEN", ""),
		TelegramAPIURL:    getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		TablePrefix:       tablePrefix,
		UpdateMode:        getEnv("UPDATE_MODE", "polling"),
		WebhookURL:        getEnv("WEBHOOK_URL", ""),
		WebhookAddr:       getEnv("WEBHOOK_LISTEN_ADDR", ":8080"),
		WebhookSecret:     getEnv("WEBHOOK_SECRET", ""),
		PollTimeout:       getEnvInt("POLL_TIMEOUT_SECONDS", 30),
		ReminderDays:      getEnvInts("REMINDER_DAYS", []int{0, 1, 3, 7, 30}),
		ReminderHour:      getEnvInt("REMINDER_HOUR", 9),
		ReminderMin:       getEnvInt("REMINDER_MINUTE", 0),
		MaxDocuments:      getEnvInt("MAX_DOCUMENTS_PER_USER", 100),
		MaxTemplates:      getEnvInt("MAX_TEMPLATES_PER_USER", 20),
		MaxFileSizeMB:     getEnvInt("MAX_FILE_SIZE_MB", 20),
		AllowedExtensions: getEnvList("ALLOWED_EXTENSIONS", defaultExtensions),
		LogDir:            getEnv("LOG_DIR", ""),
		// Debug defaults to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	case "dev":
		return "dev_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvInts parses a comma-separated list of integers. Malformed entries
// invalidate the whole value and the default is used instead.
func getEnvInts(key string, defaultValue []int) []int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return defaultValue
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getEnvList parses a comma-separated list, lowercasing entries and
// dropping empties.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
