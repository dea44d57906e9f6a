package service

import (
	"context"
	"testing"

	"wabackend/internal/repository"

	"gorm.io/gorm"
)

func newAuthServiceForTest(t *testing.T) (AuthService, *stubMailer, *gorm.DB) {
	db := setupTestDB(t)
	repo := repository.NewUserRepository(db)
	txManager := repository.NewTransactionManager(db)
	mailer := &stubMailer{}
	return NewAuthService(repo, txManager, mailer, testConfig()), mailer, db
}

func TestRegisterAndVerifyEmail(t *testing.T) {
	svc, mailer, _ := newAuthServiceForTest(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.IsVerified {
		t.Error("freshly registered account must be unverified")
	}
	if user.PrivilegeID != 4 {
		t.Errorf("expected default privilege 4, got %d", user.PrivilegeID)
	}
	if mailer.lastCode == "" {
		t.Fatal("expected an OTP code to be mailed")
	}

	// Login before verification must fail
	if _, _, err := svc.Login(ctx, LoginRequest{Email: "alice@example.com", Password: "secret123"}); err == nil {
		t.Error("login must fail before email verification")
	}

	// Wrong code must fail
	if err := svc.VerifyEmail(ctx, VerifyEmailRequest{Email: "alice@example.com", Code: "000000"}); err == nil {
		if mailer.lastCode != "000000" {
			t.Error("wrong code must be rejected")
		}
	}

	if err := svc.VerifyEmail(ctx, VerifyEmailRequest{Email: "alice@example.com", Code: mailer.lastCode}); err != nil {
		t.Fatalf("VerifyEmail failed: %v", err)
	}

	// Code is consumed; a second use must fail
	if err := svc.VerifyEmail(ctx, VerifyEmailRequest{Email: "alice@example.com", Code: mailer.lastCode}); err == nil {
		t.Error("consumed code must be rejected")
	}

	pair, resp, err := svc.Login(ctx, LoginRequest{Email: "alice@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("expected both tokens after login")
	}
	if !resp.IsVerified {
		t.Error("expected verified user in login response")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthServiceForTest(t)
	ctx := context.Background()

	req := RegisterRequest{Name: "Bob", Email: "bob@example.com", Password: "secret123"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := svc.Register(ctx, req); err == nil {
		t.Error("duplicate email must be rejected")
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	svc, mailer, _ := newAuthServiceForTest(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{Name: "Carol", Email: "carol@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := svc.VerifyEmail(ctx, VerifyEmailRequest{Email: "carol@example.com", Code: mailer.lastCode}); err != nil {
		t.Fatalf("VerifyEmail failed: %v", err)
	}

	pair, _, err := svc.Login(ctx, LoginRequest{Email: "carol@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if rotated.RefreshToken == pair.RefreshToken {
		t.Error("refresh must rotate the token")
	}

	// The old token is revoked
	if _, err := svc.Refresh(ctx, pair.RefreshToken); err == nil {
		t.Error("reused refresh token must be rejected")
	}
}

func TestResetPassword_RevokesSessions(t *testing.T) {
	svc, mailer, _ := newAuthServiceForTest(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{Name: "Dave", Email: "dave@example.com", Password: "oldpass1"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := svc.VerifyEmail(ctx, VerifyEmailRequest{Email: "dave@example.com", Code: mailer.lastCode}); err != nil {
		t.Fatalf("VerifyEmail failed: %v", err)
	}
	pair, _, err := svc.Login(ctx, LoginRequest{Email: "dave@example.com", Password: "oldpass1"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: "dave@example.com"}); err != nil {
		t.Fatalf("ForgotPassword failed: %v", err)
	}

	if err := svc.ResetPassword(ctx, ResetPasswordRequest{
		Email:       "dave@example.com",
		Code:        mailer.lastCode,
		NewPassword: "newpass1",
	}); err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}

	if _, _, err := svc.Login(ctx, LoginRequest{Email: "dave@example.com", Password: "oldpass1"}); err == nil {
		t.Error("old password must stop working")
	}
	if _, _, err := svc.Login(ctx, LoginRequest{Email: "dave@example.com", Password: "newpass1"}); err != nil {
		t.Errorf("new password should work: %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); err == nil {
		t.Error("reset must revoke outstanding refresh tokens")
	}
}

func TestForgotPassword_UnknownEmailSilent(t *testing.T) {
	svc, mailer, _ := newAuthServiceForTest(t)

	if err := svc.ForgotPassword(context.Background(), ForgotPasswordRequest{Email: "ghost@example.com"}); err != nil {
		t.Errorf("unknown email must not leak an error: %v", err)
	}
	if len(mailer.sentTo) != 0 {
		t.Error("no mail should be sent for unknown email")
	}
}
