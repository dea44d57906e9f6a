package service

import (
	"context"
	"errors"
	"time"

	"wabackend/internal/config"
	"wabackend/internal/model"
	"wabackend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DTOs for Request validation
type CreateCSRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	DeviceID string `json:"device_id" binding:"required,uuid"`
}

type UpdateCSRequest struct {
	Password string `json:"password" binding:"omitempty,min=6"`
	DeviceID string `json:"device_id" binding:"omitempty,uuid"`
	IsActive *bool  `json:"is_active"`
}

type LoginCSRequest struct {
	OwnerEmail string `json:"owner_email" binding:"required,email"`
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type CreateDeviceRequest struct {
	Name string `json:"name" binding:"required"`
}

type CSResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	DeviceID uuid.UUID `json:"device_id"`
	Device   string    `json:"device,omitempty"`
	IsActive bool      `json:"is_active"`
	Created  string    `json:"created_at"`
}

// CustomerServiceService manages CS sub-accounts and device slots for a tenant
type CustomerServiceService interface {
	CreateCS(ctx context.Context, userID uuid.UUID, req CreateCSRequest) (*CSResponse, error)
	LoginCS(ctx context.Context, req LoginCSRequest) (*TokenPair, *CSResponse, error)
	GetCS(ctx context.Context, userID, csID uuid.UUID) (*CSResponse, error)
	ListCS(ctx context.Context, userID uuid.UUID, page, limit int) ([]CSResponse, int64, error)
	UpdateCS(ctx context.Context, userID, csID uuid.UUID, req UpdateCSRequest) (*CSResponse, error)

	CreateDevice(ctx context.Context, userID uuid.UUID, req CreateDeviceRequest) (*model.Device, error)
	ListDevices(ctx context.Context, userID uuid.UUID) ([]model.Device, error)
	SetDeviceStatus(ctx context.Context, userID, deviceID uuid.UUID, status string) (*model.Device, error)
}

type customerServiceService struct {
	repo     repository.CustomerServiceRepository
	userRepo repository.UserRepository
	subRepo  repository.SubscriptionRepository
	cfg      *config.Config
}

// NewCustomerServiceService returns a new instance of CustomerServiceService
func NewCustomerServiceService(
	repo repository.CustomerServiceRepository,
	userRepo repository.UserRepository,
	subRepo repository.SubscriptionRepository,
	cfg *config.Config,
) CustomerServiceService {
	return &customerServiceService{repo: repo, userRepo: userRepo, subRepo: subRepo, cfg: cfg}
}

func mapCSToResponse(cs *model.CustomerService) *CSResponse {
	resp := &CSResponse{
		ID:       cs.ID,
		Username: cs.Username,
		DeviceID: cs.DeviceID,
		IsActive: cs.IsActive,
		Created:  cs.CreatedAt.Format(time.RFC3339),
	}
	if cs.Device != nil {
		resp.Device = cs.Device.Name
	}
	return resp
}

// CreateCS provisions a sub-account under the caller's tenant. The target
// device must belong to the same tenant; usernames are unique per tenant,
// not globally.
func (s *customerServiceService) CreateCS(ctx context.Context, userID uuid.UUID, req CreateCSRequest) (*CSResponse, error) {
	deviceID, err := uuid.Parse(req.DeviceID)
	if err != nil {
		return nil, errors.New("invalid device id")
	}

	device, err := s.repo.GetDeviceByID(ctx, deviceID)
	if err != nil {
		return nil, errors.New("device not found")
	}
	if device.UserID != userID {
		return nil, errors.New("device does not belong to this account")
	}

	if _, err := s.repo.GetByUsername(ctx, userID, req.Username); err == nil {
		return nil, errors.New("username already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	cs := &model.CustomerService{
		UserID:      userID,
		DeviceID:    deviceID,
		Username:    req.Username,
		Password:    string(hashedPassword),
		PrivilegeID: s.cfg.Privileges.CS,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, cs); err != nil {
		return nil, err
	}

	return mapCSToResponse(cs), nil
}

// LoginCS authenticates a sub-account. The owner email scopes the username
// lookup since usernames only need to be unique within a tenant.
func (s *customerServiceService) LoginCS(ctx context.Context, req LoginCSRequest) (*TokenPair, *CSResponse, error) {
	owner, err := s.userRepo.GetByEmail(ctx, req.OwnerEmail)
	if err != nil {
		return nil, nil, errors.New("invalid credentials")
	}

	cs, err := s.repo.GetByUsername(ctx, owner.ID, req.Username)
	if err != nil {
		return nil, nil, errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cs.Password), []byte(req.Password)); err != nil {
		return nil, nil, errors.New("invalid credentials")
	}

	if !cs.IsActive {
		return nil, nil, errors.New("account is deactivated")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":          cs.ID.String(),
		"privilege_id": cs.PrivilegeID,
		"account_type": "cs",
		"exp":          time.Now().Add(s.cfg.AccessTokenTTL).Unix(),
		"iat":          time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, nil, errors.New("failed to generate token")
	}

	// CS sessions are short-lived; no refresh token is issued for them
	return &TokenPair{AccessToken: signed}, mapCSToResponse(cs), nil
}

func (s *customerServiceService) GetCS(ctx context.Context, userID, csID uuid.UUID) (*CSResponse, error) {
	cs, err := s.repo.GetByID(ctx, csID)
	if err != nil {
		return nil, errors.New("customer service account not found")
	}
	if cs.UserID != userID {
		return nil, errors.New("customer service account not found")
	}
	return mapCSToResponse(cs), nil
}

func (s *customerServiceService) ListCS(ctx context.Context, userID uuid.UUID, page, limit int) ([]CSResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	accounts, total, err := s.repo.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	var responses []CSResponse
	for i := range accounts {
		responses = append(responses, *mapCSToResponse(&accounts[i]))
	}
	return responses, total, nil
}

func (s *customerServiceService) UpdateCS(ctx context.Context, userID, csID uuid.UUID, req UpdateCSRequest) (*CSResponse, error) {
	cs, err := s.repo.GetByID(ctx, csID)
	if err != nil {
		return nil, errors.New("customer service account not found")
	}
	if cs.UserID != userID {
		return nil, errors.New("customer service account not found")
	}

	if req.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, errors.New("failed to hash password")
		}
		cs.Password = string(hashedPassword)
	}

	if req.DeviceID != "" {
		deviceID, err := uuid.Parse(req.DeviceID)
		if err != nil {
			return nil, errors.New("invalid device id")
		}
		device, err := s.repo.GetDeviceByID(ctx, deviceID)
		if err != nil {
			return nil, errors.New("device not found")
		}
		if device.UserID != userID {
			return nil, errors.New("device does not belong to this account")
		}
		cs.DeviceID = deviceID
	}

	if req.IsActive != nil {
		cs.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, cs); err != nil {
		return nil, err
	}

	return mapCSToResponse(cs), nil
}

// CreateDevice registers a device slot, respecting the tenant's plan limit
func (s *customerServiceService) CreateDevice(ctx context.Context, userID uuid.UUID, req CreateDeviceRequest) (*model.Device, error) {
	sub, err := s.subRepo.FindActiveSubscription(ctx, userID)
	if err == nil && sub.Plan != nil {
		count, err := s.repo.CountDevicesByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if count >= int64(sub.Plan.DeviceLimit) {
			return nil, errors.New("device limit reached for current plan")
		}
	}

	device := &model.Device{
		UserID: userID,
		Name:   req.Name,
		Status: model.DeviceStatusDisconnected,
	}
	if err := s.repo.CreateDevice(ctx, device); err != nil {
		return nil, err
	}
	return device, nil
}

func (s *customerServiceService) ListDevices(ctx context.Context, userID uuid.UUID) ([]model.Device, error) {
	return s.repo.ListDevicesByUser(ctx, userID)
}

func (s *customerServiceService) SetDeviceStatus(ctx context.Context, userID, deviceID uuid.UUID, status string) (*model.Device, error) {
	if status != model.DeviceStatusConnected && status != model.DeviceStatusDisconnected {
		return nil, errors.New("invalid device status")
	}

	device, err := s.repo.GetDeviceByID(ctx, deviceID)
	if err != nil {
		return nil, errors.New("device not found")
	}
	if device.UserID != userID {
		return nil, errors.New("device not found")
	}

	device.Status = status
	if err := s.repo.UpdateDevice(ctx, device); err != nil {
		return nil, err
	}
	return device, nil
}
