package repository

import (
	"context"

	"wabackend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderFilter narrows order listings
type OrderFilter struct {
	CustomerServiceID uuid.UUID
	Status            string // empty for all
	Page              int
	Limit             int
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	Update(ctx context.Context, order *model.Order) error
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	CountByPrefix(ctx context.Context, prefix string) (int64, error)

	FindMessage(ctx context.Context, customerServiceID uuid.UUID, stage string) (*model.OrderMessage, error)
	ListMessages(ctx context.Context, customerServiceID uuid.UUID) ([]model.OrderMessage, error)
	SaveMessage(ctx context.Context, message *model.OrderMessage) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return GetDB(ctx, r.db).Create(order).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := GetDB(ctx, r.db).
		Preload("CustomerService").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	return GetDB(ctx, r.db).Save(order).Error
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Order{}).
		Where("customer_service_id = ?", filter.CustomerServiceID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *orderRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var total int64
	if err := GetDB(ctx, r.db).Model(&model.Order{}).
		Where("order_code LIKE ?", prefix+"%").
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *orderRepository) FindMessage(ctx context.Context, customerServiceID uuid.UUID, stage string) (*model.OrderMessage, error) {
	var message model.OrderMessage
	if err := GetDB(ctx, r.db).
		First(&message, "customer_service_id = ? AND stage = ?", customerServiceID, stage).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *orderRepository) ListMessages(ctx context.Context, customerServiceID uuid.UUID) ([]model.OrderMessage, error) {
	var messages []model.OrderMessage
	if err := GetDB(ctx, r.db).
		Where("customer_service_id = ?", customerServiceID).
		Order("stage asc").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *orderRepository) SaveMessage(ctx context.Context, message *model.OrderMessage) error {
	return GetDB(ctx, r.db).Save(message).Error
}
