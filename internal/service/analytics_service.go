package service

import (
	"context"
	"errors"
	"time"

	"wabackend/internal/repository"

	"github.com/google/uuid"
)

// OrderAnalytics bundles the per-CS order aggregations for one period
type OrderAnalytics struct {
	CustomerServiceID uuid.UUID                     `json:"customer_service_id"`
	Start             string                        `json:"start"`
	End               string                        `json:"end"`
	StatusCounts      []repository.OrderStatusCount `json:"status_counts"`
	DailyCounts       []repository.DailyOrderCount  `json:"daily_counts"`
}

// AnalyticsService aggregates order activity per CS account
type AnalyticsService interface {
	GetOrderAnalytics(ctx context.Context, callerID, customerServiceID uuid.UUID, start, end time.Time) (*OrderAnalytics, error)
}

type analyticsService struct {
	repo   repository.AnalyticsRepository
	csRepo repository.CustomerServiceRepository
}

// NewAnalyticsService returns a new instance of AnalyticsService
func NewAnalyticsService(repo repository.AnalyticsRepository, csRepo repository.CustomerServiceRepository) AnalyticsService {
	return &analyticsService{repo: repo, csRepo: csRepo}
}

func (s *analyticsService) GetOrderAnalytics(ctx context.Context, callerID, customerServiceID uuid.UUID, start, end time.Time) (*OrderAnalytics, error) {
	cs, err := s.csRepo.GetByID(ctx, customerServiceID)
	if err != nil {
		return nil, errors.New("customer service account not found")
	}
	// Only the CS account itself or its parent user may read its numbers
	if cs.ID != callerID && cs.UserID != callerID {
		return nil, errors.New("customer service account not found")
	}

	if end.IsZero() {
		end = time.Now()
	}
	if start.IsZero() {
		start = end.AddDate(0, -1, 0)
	}
	if end.Before(start) {
		return nil, errors.New("end date must be after start date")
	}

	statusCounts, err := s.repo.GetOrderStatusCounts(ctx, customerServiceID, start, end)
	if err != nil {
		return nil, err
	}

	dailyCounts, err := s.repo.GetDailyOrderCounts(ctx, customerServiceID, start, end)
	if err != nil {
		return nil, err
	}

	return &OrderAnalytics{
		CustomerServiceID: customerServiceID,
		Start:             start.Format("2006-01-02"),
		End:               end.Format("2006-01-02"),
		StatusCounts:      statusCounts,
		DailyCounts:       dailyCounts,
	}, nil
}
