package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// PrivilegeIDs carries the numeric IDs of the well-known privilege rows.
// They are explicit configuration so the matrix builder and the authorization
// checker never depend on ambient environment lookups.
type PrivilegeIDs struct {
	SuperAdmin uint
	Admin      uint
	CS         uint
	Default    uint
}

// Config holds all environment-provided settings for the server and the seeders
type Config struct {
	Port      string
	DSN       string
	JWTSecret string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	OtpTTL          time.Duration

	Privileges PrivilegeIDs

	// Mail provider (OTP delivery)
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	// Admin bootstrap
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// Load reads configs/.env if present and builds the Config with sane defaults
func Load() *Config {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := getenv("DB_HOST", "localhost")
	dbPort := getenv("DB_PORT", "5432")
	dbUser := getenv("DB_USER", "postgres")
	dbPassword := getenv("DB_PASSWORD", "postgres")
	dbName := getenv("DB_NAME", "postgres")
	dbSslMode := getenv("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			log.Fatal("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only, never use in production
	}

	return &Config{
		Port:      getenv("PORT", "8080"),
		DSN:       dsn,
		JWTSecret: secret,

		AccessTokenTTL:  getenvDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		RefreshTokenTTL: getenvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		OtpTTL:          getenvDuration("OTP_TTL", 10*time.Minute),

		Privileges: PrivilegeIDs{
			SuperAdmin: getenvUint("SUPER_ADMIN_PRIVILEGE_ID", 1),
			Admin:      getenvUint("ADMIN_PRIVILEGE_ID", 2),
			CS:         getenvUint("CS_PRIVILEGE_ID", 3),
			Default:    getenvUint("DEFAULT_PRIVILEGE_ID", 4),
		},

		SMTPHost:     getenv("SMTP_HOST", "localhost"),
		SMTPPort:     int(getenvUint("SMTP_PORT", 587)),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getenv("MAIL_FROM", "no-reply@localhost"),

		AdminName:     getenv("ADMIN_NAME", "Super Admin"),
		AdminEmail:    getenv("ADMIN_EMAIL", "admin@localhost"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvUint(key string, fallback uint) uint {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		log.Printf("WARNING: invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return uint(parsed)
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("WARNING: invalid %s=%q, using default %s", key, v, fallback)
		return fallback
	}
	return parsed
}
