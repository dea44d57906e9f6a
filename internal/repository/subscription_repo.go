package repository

import (
	"context"

	"wabackend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionFilter narrows billing transaction listings
type TransactionFilter struct {
	Status string // empty for all
	Page   int
	Limit  int
}

// SubscriptionRepository covers plans, subscriptions and billing transactions
type SubscriptionRepository interface {
	FindOrCreatePlan(ctx context.Context, plan *model.SubscriptionPlan) error
	CreatePlan(ctx context.Context, plan *model.SubscriptionPlan) error
	FindPlanByID(ctx context.Context, id uint) (*model.SubscriptionPlan, error)
	FindPlanByName(ctx context.Context, name string) (*model.SubscriptionPlan, error)
	ListPlans(ctx context.Context, activeOnly bool) ([]model.SubscriptionPlan, error)
	UpdatePlan(ctx context.Context, plan *model.SubscriptionPlan) error
	DeletePlan(ctx context.Context, id uint) error
	CountSubscriptionsByPlan(ctx context.Context, planID uint) (int64, error)

	CreateSubscription(ctx context.Context, sub *model.Subscription) error
	FindActiveSubscription(ctx context.Context, userID uuid.UUID) (*model.Subscription, error)
	UpdateSubscription(ctx context.Context, sub *model.Subscription) error

	CreateTransaction(ctx context.Context, trx *model.Transaction) error
	FindTransactionByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, int64, error)
	UpdateTransaction(ctx context.Context, trx *model.Transaction) error
	CountTransactionsByPrefix(ctx context.Context, prefix string) (int64, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) FindOrCreatePlan(ctx context.Context, plan *model.SubscriptionPlan) error {
	return GetDB(ctx, r.db).
		Where("name = ?", plan.Name).
		FirstOrCreate(plan).Error
}

func (r *subscriptionRepository) CreatePlan(ctx context.Context, plan *model.SubscriptionPlan) error {
	return GetDB(ctx, r.db).Create(plan).Error
}

func (r *subscriptionRepository) FindPlanByID(ctx context.Context, id uint) (*model.SubscriptionPlan, error) {
	var plan model.SubscriptionPlan
	if err := GetDB(ctx, r.db).First(&plan, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *subscriptionRepository) FindPlanByName(ctx context.Context, name string) (*model.SubscriptionPlan, error) {
	var plan model.SubscriptionPlan
	if err := GetDB(ctx, r.db).First(&plan, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *subscriptionRepository) ListPlans(ctx context.Context, activeOnly bool) ([]model.SubscriptionPlan, error) {
	var plans []model.SubscriptionPlan
	query := GetDB(ctx, r.db).Order("price asc")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *subscriptionRepository) UpdatePlan(ctx context.Context, plan *model.SubscriptionPlan) error {
	return GetDB(ctx, r.db).Save(plan).Error
}

func (r *subscriptionRepository) DeletePlan(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.SubscriptionPlan{}).Error
}

func (r *subscriptionRepository) CountSubscriptionsByPlan(ctx context.Context, planID uint) (int64, error) {
	var total int64
	if err := GetDB(ctx, r.db).Model(&model.Subscription{}).
		Where("plan_id = ?", planID).
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *subscriptionRepository) CreateSubscription(ctx context.Context, sub *model.Subscription) error {
	return GetDB(ctx, r.db).Create(sub).Error
}

func (r *subscriptionRepository) FindActiveSubscription(ctx context.Context, userID uuid.UUID) (*model.Subscription, error) {
	var sub model.Subscription
	if err := GetDB(ctx, r.db).
		Preload("Plan").
		Where("user_id = ? AND status = ?", userID, model.SubscriptionStatusActive).
		Order("expires_at desc").
		First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) UpdateSubscription(ctx context.Context, sub *model.Subscription) error {
	return GetDB(ctx, r.db).Save(sub).Error
}

func (r *subscriptionRepository) CreateTransaction(ctx context.Context, trx *model.Transaction) error {
	return GetDB(ctx, r.db).Create(trx).Error
}

func (r *subscriptionRepository) FindTransactionByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var trx model.Transaction
	if err := GetDB(ctx, r.db).Preload("Plan").Preload("User").First(&trx, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &trx, nil
}

func (r *subscriptionRepository) ListTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, int64, error) {
	var transactions []model.Transaction
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Transaction{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.
		Preload("Plan").Preload("User").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&transactions).Error; err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}

func (r *subscriptionRepository) UpdateTransaction(ctx context.Context, trx *model.Transaction) error {
	return GetDB(ctx, r.db).Save(trx).Error
}

func (r *subscriptionRepository) CountTransactionsByPrefix(ctx context.Context, prefix string) (int64, error) {
	var total int64
	if err := GetDB(ctx, r.db).Model(&model.Transaction{}).
		Where("invoice_no LIKE ?", prefix+"%").
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
