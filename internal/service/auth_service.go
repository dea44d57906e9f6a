package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"wabackend/internal/config"
	"wabackend/internal/model"
	"wabackend/internal/repository"
	"wabackend/pkg/mailer"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DTOs for Request validation
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// DTO for returning User without exposing sensitive data
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	PrivilegeID uint      `json:"privilege_id"`
	Privilege   string    `json:"privilege,omitempty"`
	IsVerified  bool      `json:"is_verified"`
	CreatedAt   string    `json:"created_at"`
	UpdatedAt   string    `json:"updated_at"`
}

// AuthService covers registration, email verification, login and the
// credential recovery flows for tenant user accounts.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*UserResponse, error)
	VerifyEmail(ctx context.Context, req VerifyEmailRequest) error
	Login(ctx context.Context, req LoginRequest) (*TokenPair, *UserResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	GetMe(ctx context.Context, userID string) (*UserResponse, error)
}

type authService struct {
	repo      repository.UserRepository
	txManager repository.TransactionManager
	mailer    mailer.Mailer
	cfg       *config.Config
}

// NewAuthService returns a new instance of AuthService
func NewAuthService(repo repository.UserRepository, txManager repository.TransactionManager, m mailer.Mailer, cfg *config.Config) AuthService {
	return &authService{repo: repo, txManager: txManager, mailer: m, cfg: cfg}
}

// Helper: parse model to standard json API response
func mapUserToResponse(user *model.User) *UserResponse {
	resp := &UserResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Phone:       user.Phone,
		PrivilegeID: user.PrivilegeID,
		IsVerified:  user.IsVerified,
		CreatedAt:   user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   user.UpdatedAt.Format(time.RFC3339),
	}
	if user.Privilege != nil {
		resp.Privilege = user.Privilege.Name
	}
	return resp
}

// generateOtpCode produces a 6-digit numeric code
func generateOtpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func (s *authService) signAccessToken(subject string, privilegeID uint, accountType string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":          subject,
		"privilege_id": privilegeID,
		"account_type": accountType,
		"exp":          time.Now().Add(s.cfg.AccessTokenTTL).Unix(),
		"iat":          time.Now().Unix(),
	})
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *authService) issueTokenPair(ctx context.Context, user *model.User) (*TokenPair, error) {
	accessToken, err := s.signAccessToken(user.ID.String(), user.PrivilegeID, "user")
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	refresh := &model.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.cfg.RefreshTokenTTL),
	}
	if err := s.repo.CreateRefreshToken(ctx, refresh); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refresh.Token}, nil
}

func (s *authService) sendOtp(ctx context.Context, user *model.User, purpose, subject string) error {
	code, err := generateOtpCode()
	if err != nil {
		return errors.New("failed to generate verification code")
	}

	otp := &model.EmailOtp{
		UserID:    user.ID,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(s.cfg.OtpTTL),
	}
	if err := s.repo.CreateOtp(ctx, otp); err != nil {
		return err
	}

	if err := s.mailer.SendOtp(user.Email, subject, code); err != nil {
		// The code row stays usable if mail delivery is retried out of band
		log.Println("failed to send OTP mail:", err)
		return errors.New("failed to send verification email")
	}
	return nil
}

// Register creates an unverified account with the default privilege and mails
// out the verification code.
func (s *authService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, errors.New("email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &model.User{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Password:    string(hashedPassword),
		PrivilegeID: s.cfg.Privileges.Default,
		APIKey:      uuid.NewString(),
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, user); err != nil {
			return err
		}
		return s.sendOtp(txCtx, user, model.OtpPurposeVerifyEmail, "Verify your email")
	})
	if err != nil {
		return nil, err
	}

	return mapUserToResponse(user), nil
}

func (s *authService) VerifyEmail(ctx context.Context, req VerifyEmailRequest) error {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return errors.New("invalid email or code")
	}

	otp, err := s.repo.GetActiveOtp(ctx, user.ID, model.OtpPurposeVerifyEmail, req.Code)
	if err != nil {
		return errors.New("invalid email or code")
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.ConsumeOtp(txCtx, otp); err != nil {
			return err
		}
		user.IsVerified = true
		return s.repo.Update(txCtx, user)
	})
}

// Login authenticates a verified tenant account and issues a token pair
func (s *authService) Login(ctx context.Context, req LoginRequest) (*TokenPair, *UserResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, errors.New("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, nil, errors.New("invalid email or password")
	}

	if !user.IsVerified {
		return nil, nil, errors.New("email not verified")
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return pair, mapUserToResponse(user), nil
}

// Refresh rotates the refresh token: the presented token is deleted and a
// fresh pair is issued. A reused or expired token is rejected.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	stored, err := s.repo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}

	if time.Now().After(stored.ExpiresAt) {
		_ = s.repo.DeleteRefreshToken(ctx, refreshToken)
		return nil, errors.New("refresh token expired")
	}

	user, err := s.repo.GetByID(ctx, stored.UserID.String())
	if err != nil {
		return nil, errors.New("user not found")
	}

	var pair *TokenPair
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.DeleteRefreshToken(txCtx, refreshToken); err != nil {
			return err
		}
		var issueErr error
		pair, issueErr = s.issueTokenPair(txCtx, user)
		return issueErr
	})
	if err != nil {
		return nil, err
	}

	return pair, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.repo.DeleteRefreshToken(ctx, refreshToken)
}

// ForgotPassword mails a reset code. It reports success even for unknown
// emails so the endpoint cannot be used to probe which accounts exist.
func (s *authService) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil
	}
	return s.sendOtp(ctx, user, model.OtpPurposeResetPassword, "Reset your password")
}

// ResetPassword consumes a reset code, replaces the password and revokes
// every outstanding refresh token for the account.
func (s *authService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return errors.New("invalid email or code")
	}

	otp, err := s.repo.GetActiveOtp(ctx, user.ID, model.OtpPurposeResetPassword, req.Code)
	if err != nil {
		return errors.New("invalid email or code")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("failed to hash password")
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.ConsumeOtp(txCtx, otp); err != nil {
			return err
		}
		user.Password = string(hashedPassword)
		if err := s.repo.Update(txCtx, user); err != nil {
			return err
		}
		return s.repo.DeleteRefreshTokensForUser(txCtx, user.ID)
	})
}

func (s *authService) GetMe(ctx context.Context, userID string) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.New("user not found")
	}
	return mapUserToResponse(user), nil
}
