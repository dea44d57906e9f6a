package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"wabackend/internal/model"
	"wabackend/internal/repository"
	"wabackend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// seedCSAccount creates a tenant, a device and a CS sub-account directly
// through the repositories
func seedCSAccount(t *testing.T, db *gorm.DB) *model.CustomerService {
	t.Helper()
	ctx := context.Background()

	userRepo := repository.NewUserRepository(db)
	csRepo := repository.NewCustomerServiceRepository(db)

	user := &model.User{
		Name:        "Owner",
		Email:       uuid.NewString() + "@example.com",
		Password:    "hashed",
		PrivilegeID: 4,
		APIKey:      uuid.NewString(),
		IsVerified:  true,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	device := &model.Device{UserID: user.ID, Name: "Main phone", Status: model.DeviceStatusConnected}
	if err := csRepo.CreateDevice(ctx, device); err != nil {
		t.Fatalf("failed to create device: %v", err)
	}

	cs := &model.CustomerService{
		UserID:      user.ID,
		DeviceID:    device.ID,
		Username:    "agent1",
		Password:    "hashed",
		PrivilegeID: 3,
		IsActive:    true,
	}
	if err := csRepo.Create(ctx, cs); err != nil {
		t.Fatalf("failed to create cs account: %v", err)
	}
	return cs
}

func newOrderServiceForTest(t *testing.T) (OrderService, *model.CustomerService, *gorm.DB) {
	db := setupTestDB(t)
	cs := seedCSAccount(t, db)

	svc := NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewCustomerServiceRepository(db),
		repository.NewAuditRepository(db),
		repository.NewTransactionManager(db),
		websocket.NewHub(),
	)
	return svc, cs, db
}

func TestCreateOrder_GeneratesSequentialCodes(t *testing.T) {
	svc, cs, _ := newOrderServiceForTest(t)
	ctx := context.Background()

	first, err := svc.CreateOrder(ctx, cs.ID, CreateOrderRequest{
		CustomerName:  "Buyer One",
		CustomerPhone: "+6281234567",
		Amount:        "150000",
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	prefix := "ORD-" + time.Now().Format("20060102") + "-"
	if !strings.HasPrefix(first.OrderCode, prefix) {
		t.Errorf("order code %q should start with %q", first.OrderCode, prefix)
	}
	if first.Status != model.OrderStatusPending {
		t.Errorf("new order must be PENDING, got %s", first.Status)
	}

	second, err := svc.CreateOrder(ctx, cs.ID, CreateOrderRequest{
		CustomerName:  "Buyer Two",
		CustomerPhone: "+6281234568",
		Amount:        "25000",
	})
	if err != nil {
		t.Fatalf("second CreateOrder failed: %v", err)
	}
	if first.OrderCode == second.OrderCode {
		t.Error("order codes must be unique")
	}
}

func TestCreateOrder_RejectsBadAmount(t *testing.T) {
	svc, cs, _ := newOrderServiceForTest(t)
	ctx := context.Background()

	if _, err := svc.CreateOrder(ctx, cs.ID, CreateOrderRequest{
		CustomerName:  "Buyer",
		CustomerPhone: "+62812",
		Amount:        "not-a-number",
	}); err == nil {
		t.Error("non-numeric amount must be rejected")
	}

	if _, err := svc.CreateOrder(ctx, cs.ID, CreateOrderRequest{
		CustomerName:  "Buyer",
		CustomerPhone: "+62812",
		Amount:        "-5",
	}); err == nil {
		t.Error("negative amount must be rejected")
	}
}

func TestUpdateOrderStatus_TerminalStatesAreFinal(t *testing.T) {
	svc, cs, _ := newOrderServiceForTest(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, cs.ID, CreateOrderRequest{
		CustomerName:  "Buyer",
		CustomerPhone: "+62812",
		Amount:        "10000",
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	updated, err := svc.UpdateOrderStatus(ctx, cs.ID, order.ID, UpdateOrderStatusRequest{Status: model.OrderStatusCompleted})
	if err != nil {
		t.Fatalf("UpdateOrderStatus failed: %v", err)
	}
	if updated.Status != model.OrderStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", updated.Status)
	}

	// A completed order can never change again
	if _, err := svc.UpdateOrderStatus(ctx, cs.ID, order.ID, UpdateOrderStatusRequest{Status: model.OrderStatusCanceled}); err == nil {
		t.Error("terminal order must reject further transitions")
	}
}

func TestUpdateOrderStatus_ScopedToOwner(t *testing.T) {
	svc, cs, db := newOrderServiceForTest(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, cs.ID, CreateOrderRequest{
		CustomerName:  "Buyer",
		CustomerPhone: "+62812",
		Amount:        "10000",
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	other := seedCSAccount(t, db)
	if _, err := svc.UpdateOrderStatus(ctx, other.ID, order.ID, UpdateOrderStatusRequest{Status: model.OrderStatusCompleted}); err == nil {
		t.Error("another CS account must not touch the order")
	}
}

func TestOrderMessages_UpsertAndRender(t *testing.T) {
	svc, cs, _ := newOrderServiceForTest(t)
	ctx := context.Background()

	msg, err := svc.UpsertOrderMessage(ctx, cs.ID, UpsertOrderMessageRequest{
		Stage: model.OrderStageCreated,
		Body:  "Hi {{customer_name}}, order {{order_code}} for {{amount}} received!",
	})
	if err != nil {
		t.Fatalf("UpsertOrderMessage failed: %v", err)
	}

	// Replacing the same stage must not create a second row
	msg2, err := svc.UpsertOrderMessage(ctx, cs.ID, UpsertOrderMessageRequest{
		Stage: model.OrderStageCreated,
		Body:  "Updated text for {{customer_name}}",
	})
	if err != nil {
		t.Fatalf("second UpsertOrderMessage failed: %v", err)
	}
	if msg.ID != msg2.ID {
		t.Error("upsert must reuse the existing stage row")
	}

	messages, err := svc.ListOrderMessages(ctx, cs.ID)
	if err != nil {
		t.Fatalf("ListOrderMessages failed: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected 1 message row, got %d", len(messages))
	}

	order, err := svc.CreateOrder(ctx, cs.ID, CreateOrderRequest{
		CustomerName:  "Budi",
		CustomerPhone: "+62812",
		Amount:        "10000",
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	rendered, err := svc.RenderStageMessage(ctx, cs.ID, order, model.OrderStageCreated)
	if err != nil {
		t.Fatalf("RenderStageMessage failed: %v", err)
	}
	if !strings.Contains(rendered, "Budi") {
		t.Errorf("rendered message should contain the customer name, got %q", rendered)
	}
	if strings.Contains(rendered, "{{") {
		t.Errorf("placeholders must be replaced, got %q", rendered)
	}
}

// A row that already holds the next sequence number (for instance from a
// racing create) makes the first insert collide on the unique order_code
// index; the create must shift the sequence and succeed instead of failing.
func TestCreateOrder_RetriesPastTakenSequence(t *testing.T) {
	svc, cs, db := newOrderServiceForTest(t)
	ctx := context.Background()

	prefix := "ORD-" + time.Now().Format("20060102") + "-"

	// One row holding sequence 2 while the count is 1, so the next create
	// computes sequence 2 and collides.
	taken := &model.Order{
		OrderCode:         prefix + "00002",
		CustomerServiceID: cs.ID,
		CustomerName:      "Racer",
		CustomerPhone:     "+6281111111",
		Amount:            decimal.NewFromInt(5000),
		Status:            model.OrderStatusPending,
	}
	if err := db.Create(taken).Error; err != nil {
		t.Fatalf("failed to seed colliding order: %v", err)
	}

	order, err := svc.CreateOrder(ctx, cs.ID, CreateOrderRequest{
		CustomerName:  "Buyer",
		CustomerPhone: "+6282222222",
		Amount:        "75000",
	})
	if err != nil {
		t.Fatalf("CreateOrder must retry past the taken sequence: %v", err)
	}
	if order.OrderCode == taken.OrderCode {
		t.Fatalf("order code %q collides with the existing row", order.OrderCode)
	}
	if order.OrderCode != prefix+"00003" {
		t.Errorf("expected the sequence shifted to %q, got %q", prefix+"00003", order.OrderCode)
	}
}
