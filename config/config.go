package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	JWTKey    string
	SaltRound int

	BaseURL   string // Public base URL used in certificate/verification links
	PublicDir string // Directory served as static files (certificate artifacts live here)

	SendgridApiKey string
	EmailSender    string
	EmailFromName  string

	CertApprovalRequired bool   // When true, new certificates start as PENDING and go through approval
	CertReminderCron     string // Cron spec for the pending-approval reminder job
	CertReminderAgeHours int    // Minimum age before a waiting certificate appears in the reminder digest

	ArtifactTimeoutSec int    // Timeout for the artifact reachability check
	CertFontPath       string // TTF used when rendering certificates (optional)
	CertLogoPath       string // Logo drawn on certificates (optional)
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		BaseURL:   getEnv("BASE_URL", "http://localhost:3000"),
		PublicDir: getEnv("PUBLIC_DIR", "./public"),

		SendgridApiKey: getEnv("SENDGRID_API_KEY", ""),
		EmailSender:    getEnv("EMAIL_SENDER", "no-reply@example.com"),
		EmailFromName:  getEnv("EMAIL_FROM_NAME", "LMS Academy"),

		CertApprovalRequired: getEnvBool("CERT_APPROVAL_REQUIRED", true),
		CertReminderCron:     getEnv("CERT_REMINDER_CRON", "0 * * * *"),
		CertReminderAgeHours: getEnvInt("CERT_REMINDER_AGE_HOURS", 48),

		ArtifactTimeoutSec: getEnvInt("ARTIFACT_TIMEOUT_SEC", 15),
		CertFontPath:       getEnv("CERT_FONT_PATH", ""),
		CertLogoPath:       getEnv("CERT_LOGO_PATH", ""),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.SendgridApiKey == "" {
		log.Println("Warning: SENDGRID_API_KEY not set. Outgoing email will fail.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

// getEnvBool retrieves an environment variable as a boolean or returns the default boolean value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return boolValue
}
