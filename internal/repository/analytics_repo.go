package repository

import (
	"context"
	"fmt"
	"time"

	"wabackend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatusCount is one aggregation bucket of the per-CS order analytics
type OrderStatusCount struct {
	Status     string `json:"status"`
	OrderCount int    `json:"order_count"`
	TotalValue string `json:"total_value"`
}

// DailyOrderCount is the orders-per-day series for a CS account
type DailyOrderCount struct {
	Day        string `json:"day"`
	OrderCount int    `json:"order_count"`
}

type AnalyticsRepository interface {
	GetOrderStatusCounts(ctx context.Context, customerServiceID uuid.UUID, start, end time.Time) ([]OrderStatusCount, error)
	GetDailyOrderCounts(ctx context.Context, customerServiceID uuid.UUID, start, end time.Time) ([]DailyOrderCount, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) GetOrderStatusCounts(ctx context.Context, customerServiceID uuid.UUID, start, end time.Time) ([]OrderStatusCount, error) {
	var counts []OrderStatusCount
	if err := GetDB(ctx, r.db).Model(&model.Order{}).
		Select("status, COUNT(*) as order_count, COALESCE(CAST(SUM(amount) AS TEXT), '0') as total_value").
		Where("customer_service_id = ? AND created_at >= ? AND created_at <= ?", customerServiceID, start, end).
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate order statuses: %w", err)
	}
	return counts, nil
}

func (r *analyticsRepository) GetDailyOrderCounts(ctx context.Context, customerServiceID uuid.UUID, start, end time.Time) ([]DailyOrderCount, error) {
	var counts []DailyOrderCount
	if err := GetDB(ctx, r.db).Model(&model.Order{}).
		Select("CAST(DATE(created_at) AS TEXT) as day, COUNT(*) as order_count").
		Where("customer_service_id = ? AND created_at >= ? AND created_at <= ?", customerServiceID, start, end).
		Group("DATE(created_at)").
		Order("day asc").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate daily orders: %w", err)
	}
	return counts, nil
}
