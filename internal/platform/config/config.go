package config

import (
	"os"
	"strconv"
	"strings"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	// SiteDomain is embedded into links in outgoing email.
	SiteDomain string

	FromEmail            string
	NotificationSubject  string
	NotificationDaysBack int

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "openknesset"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	domain := os.Getenv("SITE_DOMAIN")
	if domain == "" {
		domain = "oknesset.org"
	}

	fromEmail := os.Getenv("DEFAULT_FROM_EMAIL")
	if fromEmail == "" {
		fromEmail = "email@example.com"
	}

	subject := os.Getenv("NOTIFICATION_SUBJECT")
	if subject == "" {
		subject = "Open Knesset Updates"
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		SiteDomain: domain,

		FromEmail:            fromEmail,
		NotificationSubject:  subject,
		NotificationDaysBack: envInt("NOTIFICATION_DAYS_BACK", 10),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     envInt("SMTP_PORT", 25),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
	}, nil
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
