package service

import (
	"context"
	"testing"
	"time"

	"wabackend/internal/model"
	"wabackend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newAnalyticsServiceForTest(t *testing.T) (AnalyticsService, *model.CustomerService) {
	db := setupTestDB(t)
	cs := seedCSAccount(t, db)

	orderRepo := repository.NewOrderRepository(db)
	for i, status := range []string{model.OrderStatusPending, model.OrderStatusCompleted} {
		order := &model.Order{
			OrderCode:         uuid.NewString()[:20],
			CustomerServiceID: cs.ID,
			CustomerName:      "Customer",
			CustomerPhone:     "+620000000",
			Amount:            decimal.NewFromInt(int64(10000 * (i + 1))),
			Status:            status,
		}
		if err := orderRepo.Create(context.Background(), order); err != nil {
			t.Fatalf("failed to seed order: %v", err)
		}
	}

	svc := NewAnalyticsService(
		repository.NewAnalyticsRepository(db),
		repository.NewCustomerServiceRepository(db),
	)
	return svc, cs
}

func TestGetOrderAnalytics_OwnerAndSelfAllowed(t *testing.T) {
	svc, cs := newAnalyticsServiceForTest(t)
	ctx := context.Background()

	// The CS account reads its own numbers
	analytics, err := svc.GetOrderAnalytics(ctx, cs.ID, cs.ID, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("CS account should read its own analytics: %v", err)
	}
	if len(analytics.StatusCounts) == 0 {
		t.Error("expected status counts for the seeded orders")
	}

	// The parent user reads the same numbers
	if _, err := svc.GetOrderAnalytics(ctx, cs.UserID, cs.ID, time.Time{}, time.Time{}); err != nil {
		t.Errorf("parent user should read its CS analytics: %v", err)
	}
}

func TestGetOrderAnalytics_StrangerDenied(t *testing.T) {
	svc, cs := newAnalyticsServiceForTest(t)
	ctx := context.Background()

	if _, err := svc.GetOrderAnalytics(ctx, uuid.New(), cs.ID, time.Time{}, time.Time{}); err == nil {
		t.Error("an unrelated caller must not read another tenant's analytics")
	}
}

func TestGetOrderAnalytics_RejectsInvertedRange(t *testing.T) {
	svc, cs := newAnalyticsServiceForTest(t)
	ctx := context.Background()

	end := time.Now().AddDate(0, 0, -7)
	start := time.Now()
	if _, err := svc.GetOrderAnalytics(ctx, cs.ID, cs.ID, start, end); err == nil {
		t.Error("end before start must be rejected")
	}
}
