package service

import (
	"testing"
	"time"

	"wabackend/internal/config"
	"wabackend/internal/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Port:            "8080",
		JWTSecret:       "test_secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		OtpTTL:          10 * time.Minute,
		Privileges: config.PrivilegeIDs{
			SuperAdmin: 1,
			Admin:      2,
			CS:         3,
			Default:    4,
		},
		MailFrom:      "test@localhost",
		AdminName:     "Super Admin",
		AdminEmail:    "admin@localhost",
		AdminPassword: "admin-secret",
	}
}

// stubMailer records sent codes instead of dialing SMTP
type stubMailer struct {
	sentTo    []string
	lastCode  string
	shouldErr error
}

func (m *stubMailer) SendOtp(to, subject, code string) error {
	if m.shouldErr != nil {
		return m.shouldErr
	}
	m.sentTo = append(m.sentTo, to)
	m.lastCode = code
	return nil
}
