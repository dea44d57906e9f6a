package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"wabackend/internal/config"
	"wabackend/internal/model"
	"wabackend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for Request validation
type CreatePlanRequest struct {
	Name         string `json:"name" binding:"required"`
	Price        string `json:"price" binding:"required"`
	DurationDays int    `json:"duration_days" binding:"required,min=1"`
	DeviceLimit  int    `json:"device_limit" binding:"required,min=1"`
	MessageLimit int    `json:"message_limit" binding:"min=0"`
}

type UpdatePlanRequest struct {
	Name         string `json:"name"`
	Price        string `json:"price"`
	DurationDays int    `json:"duration_days" binding:"omitempty,min=1"`
	DeviceLimit  int    `json:"device_limit" binding:"omitempty,min=1"`
	MessageLimit int    `json:"message_limit" binding:"omitempty,min=0"`
	IsActive     *bool  `json:"is_active"`
}

type ProvisionUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
	PlanID   uint   `json:"plan_id" binding:"required"`
}

// SubscriptionService is the super-admin surface: the plan catalog, manual
// tenant provisioning and billing transaction administration.
type SubscriptionService interface {
	SeedDefaultPlans(ctx context.Context) error
	EnsureSuperAdmin(ctx context.Context) error

	CreatePlan(ctx context.Context, actorID uuid.UUID, req CreatePlanRequest) (*model.SubscriptionPlan, error)
	ListPlans(ctx context.Context, activeOnly bool) ([]model.SubscriptionPlan, error)
	UpdatePlan(ctx context.Context, actorID uuid.UUID, planID uint, req UpdatePlanRequest) (*model.SubscriptionPlan, error)
	DeletePlan(ctx context.Context, actorID uuid.UUID, planID uint) error

	ProvisionUser(ctx context.Context, actorID uuid.UUID, req ProvisionUserRequest) (*UserResponse, error)
	GetUserSubscription(ctx context.Context, userID uuid.UUID) (*model.Subscription, error)

	ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]model.Transaction, int64, error)
	MarkTransactionPaid(ctx context.Context, actorID, transactionID uuid.UUID) (*model.Transaction, error)
}

type subscriptionService struct {
	repo      repository.SubscriptionRepository
	userRepo  repository.UserRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	cfg       *config.Config
}

// NewSubscriptionService returns a new instance of SubscriptionService
func NewSubscriptionService(
	repo repository.SubscriptionRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	cfg *config.Config,
) SubscriptionService {
	return &subscriptionService{repo: repo, userRepo: userRepo, auditRepo: auditRepo, txManager: txManager, cfg: cfg}
}

// defaultPlans is the starter catalog created on first seed
var defaultPlans = []model.SubscriptionPlan{
	{Name: "Starter", Price: decimal.NewFromInt(0), DurationDays: 14, DeviceLimit: 1, MessageLimit: 100},
	{Name: "Basic", Price: decimal.NewFromInt(99000), DurationDays: 30, DeviceLimit: 1, MessageLimit: 5000},
	{Name: "Pro", Price: decimal.NewFromInt(249000), DurationDays: 30, DeviceLimit: 3, MessageLimit: 0},
	{Name: "Business", Price: decimal.NewFromInt(499000), DurationDays: 30, DeviceLimit: 10, MessageLimit: 0},
}

// SeedDefaultPlans inserts the starter catalog, skipping names already present
func (s *subscriptionService) SeedDefaultPlans(ctx context.Context) error {
	for _, p := range defaultPlans {
		plan := model.SubscriptionPlan{
			Name:         p.Name,
			Price:        p.Price,
			DurationDays: p.DurationDays,
			DeviceLimit:  p.DeviceLimit,
			MessageLimit: p.MessageLimit,
			IsActive:     true,
		}
		if err := s.repo.FindOrCreatePlan(ctx, &plan); err != nil {
			return fmt.Errorf("failed to seed plan %q: %w", p.Name, err)
		}
	}
	return nil
}

// EnsureSuperAdmin creates the configured super-admin account once. An
// existing account with the same email is never touched.
func (s *subscriptionService) EnsureSuperAdmin(ctx context.Context) error {
	if s.cfg.AdminPassword == "" {
		log.Println("ADMIN_PASSWORD not set, skipping super admin bootstrap")
		return nil
	}

	if _, err := s.userRepo.GetByEmail(ctx, s.cfg.AdminEmail); err == nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(s.cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &model.User{
		Name:        s.cfg.AdminName,
		Email:       s.cfg.AdminEmail,
		Password:    string(hashedPassword),
		PrivilegeID: s.cfg.Privileges.SuperAdmin,
		APIKey:      uuid.NewString(),
		IsVerified:  true,
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.userRepo.Create(txCtx, admin); err != nil {
			return err
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			Action:     model.ActionBootstrapAdmin,
			EntityID:   admin.ID.String(),
			EntityName: admin.Email,
			Details:    "{}",
		})
	})
}

func (s *subscriptionService) CreatePlan(ctx context.Context, actorID uuid.UUID, req CreatePlanRequest) (*model.SubscriptionPlan, error) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return nil, errors.New("invalid price")
	}

	if _, err := s.repo.FindPlanByName(ctx, req.Name); err == nil {
		return nil, errors.New("plan name already exists")
	}

	plan := &model.SubscriptionPlan{
		Name:         req.Name,
		Price:        price,
		DurationDays: req.DurationDays,
		DeviceLimit:  req.DeviceLimit,
		MessageLimit: req.MessageLimit,
		IsActive:     true,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreatePlan(txCtx, plan); err != nil {
			return err
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:     &actorID,
			Action:     model.ActionCreatePlan,
			EntityID:   fmt.Sprintf("%d", plan.ID),
			EntityName: plan.Name,
			Details:    auditDetails(map[string]interface{}{"price": price.String(), "duration_days": req.DurationDays}),
		})
	})
	if err != nil {
		return nil, err
	}

	return plan, nil
}

func (s *subscriptionService) ListPlans(ctx context.Context, activeOnly bool) ([]model.SubscriptionPlan, error) {
	return s.repo.ListPlans(ctx, activeOnly)
}

func (s *subscriptionService) UpdatePlan(ctx context.Context, actorID uuid.UUID, planID uint, req UpdatePlanRequest) (*model.SubscriptionPlan, error) {
	plan, err := s.repo.FindPlanByID(ctx, planID)
	if err != nil {
		return nil, errors.New("plan not found")
	}

	if req.Name != "" && req.Name != plan.Name {
		if _, err := s.repo.FindPlanByName(ctx, req.Name); err == nil {
			return nil, errors.New("plan name already exists")
		}
		plan.Name = req.Name
	}
	if req.Price != "" {
		price, err := decimal.NewFromString(req.Price)
		if err != nil || price.IsNegative() {
			return nil, errors.New("invalid price")
		}
		plan.Price = price
	}
	if req.DurationDays > 0 {
		plan.DurationDays = req.DurationDays
	}
	if req.DeviceLimit > 0 {
		plan.DeviceLimit = req.DeviceLimit
	}
	if req.MessageLimit > 0 {
		plan.MessageLimit = req.MessageLimit
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.UpdatePlan(txCtx, plan); err != nil {
			return err
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:     &actorID,
			Action:     model.ActionUpdatePlan,
			EntityID:   fmt.Sprintf("%d", plan.ID),
			EntityName: plan.Name,
			Details:    auditDetails(req),
		})
	})
	if err != nil {
		return nil, err
	}

	return plan, nil
}

// DeletePlan soft-deletes an unused plan. Plans with subscriptions stay, to
// keep billing history intact.
func (s *subscriptionService) DeletePlan(ctx context.Context, actorID uuid.UUID, planID uint) error {
	plan, err := s.repo.FindPlanByID(ctx, planID)
	if err != nil {
		return errors.New("plan not found")
	}

	count, err := s.repo.CountSubscriptionsByPlan(ctx, planID)
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("plan has subscriptions and cannot be deleted; deactivate it instead")
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.DeletePlan(txCtx, planID); err != nil {
			return err
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:     &actorID,
			Action:     model.ActionDeletePlan,
			EntityID:   fmt.Sprintf("%d", planID),
			EntityName: plan.Name,
			Details:    "{}",
		})
	})
}

// generateInvoiceNo produces numbers like TRX-20250115-00001. attempt shifts
// the sequence forward on collision retries.
func (s *subscriptionService) generateInvoiceNo(ctx context.Context, attempt int) (string, error) {
	prefix := fmt.Sprintf("TRX-%s-", time.Now().Format("20060102"))
	count, err := s.repo.CountTransactionsByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, count+1+int64(attempt)), nil
}

// ProvisionUser creates a verified tenant account with an active subscription
// and a pending billing transaction, all inside one transaction.
func (s *subscriptionService) ProvisionUser(ctx context.Context, actorID uuid.UUID, req ProvisionUserRequest) (*UserResponse, error) {
	plan, err := s.repo.FindPlanByID(ctx, req.PlanID)
	if err != nil {
		return nil, errors.New("plan not found")
	}
	if !plan.IsActive {
		return nil, errors.New("plan is not active")
	}

	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
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
		IsVerified:  true, // Admin-provisioned accounts skip email verification
	}

	for attempt := 0; ; attempt++ {
		err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			if err := s.userRepo.Create(txCtx, user); err != nil {
				return err
			}

			now := time.Now()
			sub := &model.Subscription{
				UserID:    user.ID,
				PlanID:    plan.ID,
				StartsAt:  now,
				ExpiresAt: now.AddDate(0, 0, plan.DurationDays),
				Status:    model.SubscriptionStatusActive,
			}
			if err := s.repo.CreateSubscription(txCtx, sub); err != nil {
				return err
			}

			invoiceNo, err := s.generateInvoiceNo(txCtx, attempt)
			if err != nil {
				return err
			}
			trx := &model.Transaction{
				InvoiceNo: invoiceNo,
				UserID:    user.ID,
				PlanID:    plan.ID,
				Amount:    plan.Price,
				Status:    model.TransactionStatusPending,
			}
			if err := s.repo.CreateTransaction(txCtx, trx); err != nil {
				return err
			}

			return s.auditRepo.Log(txCtx, &model.AuditLog{
				UserID:     &actorID,
				Action:     model.ActionProvisionUser,
				EntityID:   user.ID.String(),
				EntityName: user.Email,
				Details:    auditDetails(map[string]interface{}{"plan": plan.Name, "invoice_no": invoiceNo}),
			})
		})
		if err == nil {
			break
		}
		// An invoice sequence race rolls the whole provisioning back, so the
		// retry re-runs it with the sequence shifted forward.
		if attempt+1 < codeRetries && repository.IsDuplicateKey(err) {
			continue
		}
		return nil, err
	}

	return mapUserToResponse(user), nil
}

func (s *subscriptionService) GetUserSubscription(ctx context.Context, userID uuid.UUID) (*model.Subscription, error) {
	sub, err := s.repo.FindActiveSubscription(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("no active subscription")
		}
		return nil, err
	}

	// Expire lazily instead of running a background sweeper
	if time.Now().After(sub.ExpiresAt) {
		sub.Status = model.SubscriptionStatusExpired
		if err := s.repo.UpdateSubscription(ctx, sub); err != nil {
			return nil, err
		}
		return nil, errors.New("no active subscription")
	}

	return sub, nil
}

func (s *subscriptionService) ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]model.Transaction, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	return s.repo.ListTransactions(ctx, filter)
}

// MarkTransactionPaid settles a pending transaction and extends the tenant's
// subscription by the plan duration.
func (s *subscriptionService) MarkTransactionPaid(ctx context.Context, actorID, transactionID uuid.UUID) (*model.Transaction, error) {
	trx, err := s.repo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, errors.New("transaction not found")
	}

	if trx.Status == model.TransactionStatusPaid {
		return nil, errors.New("transaction is already paid")
	}

	plan, err := s.repo.FindPlanByID(ctx, trx.PlanID)
	if err != nil {
		return nil, errors.New("plan not found")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		now := time.Now()
		trx.Status = model.TransactionStatusPaid
		trx.PaidAt = &now
		if err := s.repo.UpdateTransaction(txCtx, trx); err != nil {
			return err
		}

		sub, err := s.repo.FindActiveSubscription(txCtx, trx.UserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sub = &model.Subscription{
				UserID:    trx.UserID,
				PlanID:    plan.ID,
				StartsAt:  now,
				ExpiresAt: now.AddDate(0, 0, plan.DurationDays),
				Status:    model.SubscriptionStatusActive,
			}
			return s.repo.CreateSubscription(txCtx, sub)
		}
		if err != nil {
			return err
		}

		// Extend from the current expiry when still active, from now otherwise
		base := sub.ExpiresAt
		if base.Before(now) {
			base = now
		}
		sub.ExpiresAt = base.AddDate(0, 0, plan.DurationDays)
		sub.Status = model.SubscriptionStatusActive
		if err := s.repo.UpdateSubscription(txCtx, sub); err != nil {
			return err
		}

		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:     &actorID,
			Action:     model.ActionMarkTransactionPaid,
			EntityID:   trx.ID.String(),
			EntityName: trx.InvoiceNo,
			Details:    auditDetails(map[string]interface{}{"amount": trx.Amount.String()}),
		})
	})
	if err != nil {
		return nil, err
	}

	return trx, nil
}
