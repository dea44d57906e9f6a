package service

import (
	"context"
	"testing"
	"time"

	"wabackend/internal/model"
	"wabackend/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newCSServiceForTest(t *testing.T) (CustomerServiceService, *gorm.DB) {
	db := setupTestDB(t)
	svc := NewCustomerServiceService(
		repository.NewCustomerServiceRepository(db),
		repository.NewUserRepository(db),
		repository.NewSubscriptionRepository(db),
		testConfig(),
	)
	return svc, db
}

func seedTenant(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()

	hashed, _ := bcrypt.GenerateFromPassword([]byte("owner-secret"), bcrypt.DefaultCost)
	user := &model.User{
		Name:        "Owner",
		Email:       email,
		Password:    string(hashed),
		PrivilegeID: 4,
		APIKey:      uuid.NewString(),
		IsVerified:  true,
	}
	if err := repository.NewUserRepository(db).Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create tenant: %v", err)
	}
	return user
}

func seedDevice(t *testing.T, db *gorm.DB, userID uuid.UUID, name string) *model.Device {
	t.Helper()

	device := &model.Device{UserID: userID, Name: name, Status: model.DeviceStatusDisconnected}
	if err := repository.NewCustomerServiceRepository(db).CreateDevice(context.Background(), device); err != nil {
		t.Fatalf("failed to create device: %v", err)
	}
	return device
}

func TestCreateCS_RejectsForeignDevice(t *testing.T) {
	svc, db := newCSServiceForTest(t)
	ctx := context.Background()

	owner := seedTenant(t, db, "owner@example.com")
	other := seedTenant(t, db, "other@example.com")
	foreignDevice := seedDevice(t, db, other.ID, "Other phone")

	_, err := svc.CreateCS(ctx, owner.ID, CreateCSRequest{
		Username: "agent1",
		Password: "secret123",
		DeviceID: foreignDevice.ID.String(),
	})
	if err == nil {
		t.Fatal("expected rejection for a device owned by another tenant")
	}

	var count int64
	db.Model(&model.CustomerService{}).Count(&count)
	if count != 0 {
		t.Errorf("no account should have been created, got %d", count)
	}
}

func TestCreateCS_UsernameUniquePerTenant(t *testing.T) {
	svc, db := newCSServiceForTest(t)
	ctx := context.Background()

	ownerA := seedTenant(t, db, "a@example.com")
	ownerB := seedTenant(t, db, "b@example.com")
	deviceA := seedDevice(t, db, ownerA.ID, "Phone A")
	deviceB := seedDevice(t, db, ownerB.ID, "Phone B")

	if _, err := svc.CreateCS(ctx, ownerA.ID, CreateCSRequest{
		Username: "agent", Password: "secret123", DeviceID: deviceA.ID.String(),
	}); err != nil {
		t.Fatalf("first account failed: %v", err)
	}

	// Same username in the same tenant is a conflict
	if _, err := svc.CreateCS(ctx, ownerA.ID, CreateCSRequest{
		Username: "agent", Password: "secret123", DeviceID: deviceA.ID.String(),
	}); err == nil {
		t.Error("duplicate username within one tenant must be rejected")
	}

	// The same username under a different tenant is fine
	if _, err := svc.CreateCS(ctx, ownerB.ID, CreateCSRequest{
		Username: "agent", Password: "secret123", DeviceID: deviceB.ID.String(),
	}); err != nil {
		t.Errorf("same username under another tenant should be allowed: %v", err)
	}
}

func TestLoginCS_ScopedByOwnerEmail(t *testing.T) {
	svc, db := newCSServiceForTest(t)
	ctx := context.Background()

	owner := seedTenant(t, db, "login-owner@example.com")
	device := seedDevice(t, db, owner.ID, "Phone")

	created, err := svc.CreateCS(ctx, owner.ID, CreateCSRequest{
		Username: "agent", Password: "secret123", DeviceID: device.ID.String(),
	})
	if err != nil {
		t.Fatalf("CreateCS failed: %v", err)
	}

	pair, resp, err := svc.LoginCS(ctx, LoginCSRequest{
		OwnerEmail: "login-owner@example.com",
		Username:   "agent",
		Password:   "secret123",
	})
	if err != nil {
		t.Fatalf("LoginCS failed: %v", err)
	}
	if pair.AccessToken == "" {
		t.Error("expected an access token")
	}
	if pair.RefreshToken != "" {
		t.Error("sub-accounts must not receive refresh tokens")
	}
	if resp.ID != created.ID {
		t.Errorf("logged in as %s, expected %s", resp.ID, created.ID)
	}

	// Wrong owner email means the username resolves to nothing
	if _, _, err := svc.LoginCS(ctx, LoginCSRequest{
		OwnerEmail: "someone-else@example.com",
		Username:   "agent",
		Password:   "secret123",
	}); err == nil {
		t.Error("login under the wrong tenant must fail")
	}

	// Wrong password
	if _, _, err := svc.LoginCS(ctx, LoginCSRequest{
		OwnerEmail: "login-owner@example.com",
		Username:   "agent",
		Password:   "wrong-password",
	}); err == nil {
		t.Error("wrong password must fail")
	}
}

func TestLoginCS_DeactivatedAccountRejected(t *testing.T) {
	svc, db := newCSServiceForTest(t)
	ctx := context.Background()

	owner := seedTenant(t, db, "deact@example.com")
	device := seedDevice(t, db, owner.ID, "Phone")

	created, err := svc.CreateCS(ctx, owner.ID, CreateCSRequest{
		Username: "agent", Password: "secret123", DeviceID: device.ID.String(),
	})
	if err != nil {
		t.Fatalf("CreateCS failed: %v", err)
	}

	inactive := false
	if _, err := svc.UpdateCS(ctx, owner.ID, created.ID, UpdateCSRequest{IsActive: &inactive}); err != nil {
		t.Fatalf("UpdateCS failed: %v", err)
	}

	if _, _, err := svc.LoginCS(ctx, LoginCSRequest{
		OwnerEmail: "deact@example.com",
		Username:   "agent",
		Password:   "secret123",
	}); err == nil {
		t.Error("deactivated account must not log in")
	}
}

func TestGetCS_OwnerScoped(t *testing.T) {
	svc, db := newCSServiceForTest(t)
	ctx := context.Background()

	owner := seedTenant(t, db, "scope-a@example.com")
	stranger := seedTenant(t, db, "scope-b@example.com")
	device := seedDevice(t, db, owner.ID, "Phone")

	created, err := svc.CreateCS(ctx, owner.ID, CreateCSRequest{
		Username: "agent", Password: "secret123", DeviceID: device.ID.String(),
	})
	if err != nil {
		t.Fatalf("CreateCS failed: %v", err)
	}

	if _, err := svc.GetCS(ctx, owner.ID, created.ID); err != nil {
		t.Errorf("owner should see its own account: %v", err)
	}
	if _, err := svc.GetCS(ctx, stranger.ID, created.ID); err == nil {
		t.Error("another tenant must not see the account")
	}
}

func TestCreateDevice_PlanLimitEnforced(t *testing.T) {
	svc, db := newCSServiceForTest(t)
	ctx := context.Background()

	owner := seedTenant(t, db, "limited@example.com")

	subRepo := repository.NewSubscriptionRepository(db)
	plan := &model.SubscriptionPlan{Name: "Single", DurationDays: 30, DeviceLimit: 1, IsActive: true}
	if err := subRepo.FindOrCreatePlan(ctx, plan); err != nil {
		t.Fatalf("failed to create plan: %v", err)
	}
	now := time.Now()
	sub := &model.Subscription{
		UserID:    owner.ID,
		PlanID:    plan.ID,
		Status:    model.SubscriptionStatusActive,
		StartsAt:  now,
		ExpiresAt: now.AddDate(0, 1, 0),
	}
	if err := subRepo.CreateSubscription(ctx, sub); err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}

	if _, err := svc.CreateDevice(ctx, owner.ID, CreateDeviceRequest{Name: "First"}); err != nil {
		t.Fatalf("first device should fit the plan: %v", err)
	}
	if _, err := svc.CreateDevice(ctx, owner.ID, CreateDeviceRequest{Name: "Second"}); err == nil {
		t.Error("second device must exceed the single-device plan")
	}
}

func TestSetDeviceStatus_ValidatesInput(t *testing.T) {
	svc, db := newCSServiceForTest(t)
	ctx := context.Background()

	owner := seedTenant(t, db, "status@example.com")
	stranger := seedTenant(t, db, "status-b@example.com")
	device := seedDevice(t, db, owner.ID, "Phone")

	updated, err := svc.SetDeviceStatus(ctx, owner.ID, device.ID, model.DeviceStatusConnected)
	if err != nil {
		t.Fatalf("SetDeviceStatus failed: %v", err)
	}
	if updated.Status != model.DeviceStatusConnected {
		t.Errorf("expected CONNECTED, got %s", updated.Status)
	}

	if _, err := svc.SetDeviceStatus(ctx, owner.ID, device.ID, "SLEEPING"); err == nil {
		t.Error("unknown status must be rejected")
	}
	if _, err := svc.SetDeviceStatus(ctx, stranger.ID, device.ID, model.DeviceStatusDisconnected); err == nil {
		t.Error("another tenant must not touch the device")
	}
}
