package service

import (
	"context"
	"strings"
	"testing"

	"wabackend/internal/model"
	"wabackend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newSubscriptionServiceForTest(t *testing.T) (SubscriptionService, *gorm.DB) {
	db := setupTestDB(t)
	svc := NewSubscriptionService(
		repository.NewSubscriptionRepository(db),
		repository.NewUserRepository(db),
		repository.NewAuditRepository(db),
		repository.NewTransactionManager(db),
		testConfig(),
	)
	return svc, db
}

func TestSeedDefaultPlans_Idempotent(t *testing.T) {
	svc, _ := newSubscriptionServiceForTest(t)
	ctx := context.Background()

	if err := svc.SeedDefaultPlans(ctx); err != nil {
		t.Fatalf("first seed failed: %v", err)
	}
	plans, err := svc.ListPlans(ctx, false)
	if err != nil {
		t.Fatalf("ListPlans failed: %v", err)
	}
	first := len(plans)
	if first == 0 {
		t.Fatal("expected seeded plans")
	}

	if err := svc.SeedDefaultPlans(ctx); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	plans, _ = svc.ListPlans(ctx, false)
	if len(plans) != first {
		t.Errorf("reseed duplicated plans: %d then %d", first, len(plans))
	}
}

func TestEnsureSuperAdmin_Idempotent(t *testing.T) {
	svc, db := newSubscriptionServiceForTest(t)
	ctx := context.Background()

	if err := svc.EnsureSuperAdmin(ctx); err != nil {
		t.Fatalf("EnsureSuperAdmin failed: %v", err)
	}
	if err := svc.EnsureSuperAdmin(ctx); err != nil {
		t.Fatalf("second EnsureSuperAdmin failed: %v", err)
	}

	var count int64
	db.Model(&model.User{}).Where("email = ?", "admin@localhost").Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one admin account, got %d", count)
	}

	userRepo := repository.NewUserRepository(db)
	admin, err := userRepo.GetByEmail(ctx, "admin@localhost")
	if err != nil {
		t.Fatalf("admin lookup failed: %v", err)
	}
	if admin.PrivilegeID != 1 {
		t.Errorf("admin should carry the super admin privilege, got %d", admin.PrivilegeID)
	}
	if !admin.IsVerified {
		t.Error("bootstrap admin must be pre-verified")
	}
}

func TestProvisionUser_CreatesFullChain(t *testing.T) {
	svc, db := newSubscriptionServiceForTest(t)
	ctx := context.Background()

	if err := svc.SeedDefaultPlans(ctx); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	plans, _ := svc.ListPlans(ctx, true)
	actorID := uuid.New()

	user, err := svc.ProvisionUser(ctx, actorID, ProvisionUserRequest{
		Name:     "Tenant",
		Email:    "tenant@example.com",
		Password: "secret123",
		PlanID:   plans[1].ID,
	})
	if err != nil {
		t.Fatalf("ProvisionUser failed: %v", err)
	}
	if !user.IsVerified {
		t.Error("provisioned account must skip email verification")
	}

	sub, err := svc.GetUserSubscription(ctx, user.ID)
	if err != nil {
		t.Fatalf("expected an active subscription: %v", err)
	}
	if sub.Status != model.SubscriptionStatusActive {
		t.Errorf("expected ACTIVE subscription, got %s", sub.Status)
	}

	transactions, total, err := svc.ListTransactions(ctx, repository.TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 transaction, got %d", total)
	}
	if transactions[0].Status != model.TransactionStatusPending {
		t.Errorf("expected PENDING transaction, got %s", transactions[0].Status)
	}
	if !strings.HasPrefix(transactions[0].InvoiceNo, "TRX-") {
		t.Errorf("unexpected invoice number %q", transactions[0].InvoiceNo)
	}

	// Audit trail recorded
	var auditCount int64
	db.Model(&model.AuditLog{}).Where("action = ?", model.ActionProvisionUser).Count(&auditCount)
	if auditCount != 1 {
		t.Errorf("expected 1 provision audit entry, got %d", auditCount)
	}
}

func TestProvisionUser_RollsBackOnDuplicate(t *testing.T) {
	svc, db := newSubscriptionServiceForTest(t)
	ctx := context.Background()

	if err := svc.SeedDefaultPlans(ctx); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	plans, _ := svc.ListPlans(ctx, true)
	actorID := uuid.New()

	req := ProvisionUserRequest{
		Name:     "Tenant",
		Email:    "dup@example.com",
		Password: "secret123",
		PlanID:   plans[0].ID,
	}
	if _, err := svc.ProvisionUser(ctx, actorID, req); err != nil {
		t.Fatalf("first provisioning failed: %v", err)
	}
	if _, err := svc.ProvisionUser(ctx, actorID, req); err == nil {
		t.Fatal("duplicate email must be rejected")
	}

	var txCount int64
	db.Model(&model.Transaction{}).Count(&txCount)
	if txCount != 1 {
		t.Errorf("failed provisioning must not leave partial rows, got %d transactions", txCount)
	}
}

func TestMarkTransactionPaid_ExtendsSubscription(t *testing.T) {
	svc, _ := newSubscriptionServiceForTest(t)
	ctx := context.Background()

	if err := svc.SeedDefaultPlans(ctx); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	plans, _ := svc.ListPlans(ctx, true)
	actorID := uuid.New()

	user, err := svc.ProvisionUser(ctx, actorID, ProvisionUserRequest{
		Name:     "Tenant",
		Email:    "paid@example.com",
		Password: "secret123",
		PlanID:   plans[1].ID,
	})
	if err != nil {
		t.Fatalf("ProvisionUser failed: %v", err)
	}

	before, err := svc.GetUserSubscription(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserSubscription failed: %v", err)
	}

	transactions, _, _ := svc.ListTransactions(ctx, repository.TransactionFilter{})
	trx, err := svc.MarkTransactionPaid(ctx, actorID, transactions[0].ID)
	if err != nil {
		t.Fatalf("MarkTransactionPaid failed: %v", err)
	}
	if trx.Status != model.TransactionStatusPaid {
		t.Errorf("expected PAID, got %s", trx.Status)
	}
	if trx.PaidAt == nil {
		t.Error("PaidAt must be set")
	}

	after, err := svc.GetUserSubscription(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserSubscription failed: %v", err)
	}
	if !after.ExpiresAt.After(before.ExpiresAt) {
		t.Error("payment must extend the subscription expiry")
	}

	// Settling twice is rejected
	if _, err := svc.MarkTransactionPaid(ctx, actorID, transactions[0].ID); err == nil {
		t.Error("already paid transaction must be rejected")
	}
}

func TestDeletePlan_BlockedWhenSubscribed(t *testing.T) {
	svc, _ := newSubscriptionServiceForTest(t)
	ctx := context.Background()

	if err := svc.SeedDefaultPlans(ctx); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	plans, _ := svc.ListPlans(ctx, true)
	actorID := uuid.New()

	if _, err := svc.ProvisionUser(ctx, actorID, ProvisionUserRequest{
		Name:     "Tenant",
		Email:    "keeper@example.com",
		Password: "secret123",
		PlanID:   plans[0].ID,
	}); err != nil {
		t.Fatalf("ProvisionUser failed: %v", err)
	}

	if err := svc.DeletePlan(ctx, actorID, plans[0].ID); err == nil {
		t.Error("plan with subscriptions must not be deletable")
	}

	// An untouched plan can go
	if err := svc.DeletePlan(ctx, actorID, plans[2].ID); err != nil {
		t.Errorf("unused plan should be deletable: %v", err)
	}
}
