package middleware

import (
	"testing"
	"time"

	"wabackend/internal/database"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMiddleware(t *testing.T, secret string) {
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

	InitAccessMiddleware(db, []byte(secret))
	ClearMatrixCache()
}

func signToken(t *testing.T, secret string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":          "test-subject",
		"privilege_id": 4,
		"account_type": AccountTypeUser,
		"exp":          time.Now().Add(time.Hour).Unix(),
		"iat":          time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

// Token verification must use the secret handed in at initialization, not a
// second environment lookup.
func TestParseClaims_UsesConfiguredSecret(t *testing.T) {
	setupMiddleware(t, "configured-secret")

	claims, err := parseClaims(signToken(t, "configured-secret"))
	if err != nil {
		t.Fatalf("token signed with the configured secret must verify: %v", err)
	}
	if claims["sub"] != "test-subject" {
		t.Errorf("unexpected subject claim: %v", claims["sub"])
	}

	if _, err := parseClaims(signToken(t, "some-other-secret")); err == nil {
		t.Error("token signed with a different secret must be rejected")
	}
}

func TestCapabilitiesFor_UnseededPairDenies(t *testing.T) {
	setupMiddleware(t, "configured-secret")

	caps, err := capabilitiesFor(4, "order")
	if err != nil {
		t.Fatalf("missing row must not surface an error, got: %v", err)
	}
	if caps.Allows("read") || caps.Allows("edit") {
		t.Error("an unseeded matrix must deny every action")
	}
}
