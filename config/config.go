package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ptminh/auth-server/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// SignupMode selects the admission policy for new accounts.
type SignupMode string

const (
	ModeOpen             SignupMode = "open"
	ModeInvite           SignupMode = "invite"
	ModeWaitlist         SignupMode = "waitlist"
	ModeInviteOrWaitlist SignupMode = "invite_or_waitlist"
	ModeClosed           SignupMode = "closed"
)

// AppConfig is loaded once at startup. The admission ledger and retrier
// take their settings from here instead of reading the environment
// themselves.
type AppConfig struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	SignupMode SignupMode

	RetryMaxAttempts int
	RetryBaseDelay   time.Duration

	JWTExpiry      time.Duration
	GoogleClientID string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	MailFrom string

	AllowedOrigins []string
	Port           string
}

var C AppConfig

// Load reads the configuration from environment variables into the
// package-level C.
func Load() AppConfig {
	C = AppConfig{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		SignupMode: parseSignupMode(os.Getenv("SIGNUP_MODE")),

		RetryMaxAttempts: envInt("RETRY_MAX_ATTEMPTS", 3),
		RetryBaseDelay:   time.Duration(envInt("RETRY_BASE_DELAY_MS", 200)) * time.Millisecond,

		JWTExpiry:      time.Duration(envInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: os.Getenv("SMTP_PORT"),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		MailFrom: os.Getenv("MAIL_FROM"),

		AllowedOrigins: splitOrigins(os.Getenv("ALLOWED_ORIGINS")),
		Port:           os.Getenv("PORT"),
	}
	if C.Port == "" {
		C.Port = "8080"
	}
	return C
}

func parseSignupMode(raw string) SignupMode {
	switch SignupMode(raw) {
	case ModeOpen, ModeInvite, ModeWaitlist, ModeInviteOrWaitlist, ModeClosed:
		return SignupMode(raw)
	}
	if raw == "" {
		return ModeOpen
	}
	log.Printf("unknown SIGNUP_MODE %q, falling back to closed", raw)
	return ModeClosed
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return v
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ConnectDB opens the PostgreSQL connection and migrates the tables.
// TranslateError maps driver unique-violations onto gorm.ErrDuplicatedKey,
// which the admission ledger relies on.
func ConnectDB() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		C.DBHost, C.DBUser, C.DBPassword, C.DBName, C.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.InviteCode{},
		&models.WaitlistEntry{},
		&models.PasswordResetToken{},
		&models.EmailVerificationToken{},
	)
	if err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	DB = db
	log.Println("Connected to PostgreSQL & migrated successfully")
}
