package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SubscriptionPlan is a catalog entry super admins sell subscriptions from
type SubscriptionPlan struct {
	ID           uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Price        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"price"`
	DurationDays int             `gorm:"not null" json:"duration_days"`
	DeviceLimit  int             `gorm:"not null;default:1" json:"device_limit"`
	MessageLimit int             `gorm:"not null;default:0" json:"message_limit"` // 0 means unlimited
	IsActive     bool            `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

// Subscription status constants
const (
	SubscriptionStatusActive  = "ACTIVE"
	SubscriptionStatusExpired = "EXPIRED"
)

// Subscription binds one user to a plan for a period
type Subscription struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User             `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
	PlanID    uint              `gorm:"not null;index" json:"plan_id"`
	Plan      *SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	StartsAt  time.Time         `gorm:"not null" json:"starts_at"`
	ExpiresAt time.Time         `gorm:"not null;index" json:"expires_at"`
	Status    string            `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	CreatedAt time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Transaction status constants
const (
	TransactionStatusPending = "PENDING"
	TransactionStatusPaid    = "PAID"
	TransactionStatusFailed  = "FAILED"
)

// Transaction is a billing record for one subscription purchase or renewal
type Transaction struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceNo string            `gorm:"type:varchar(30);uniqueIndex;not null" json:"invoice_no"`
	UserID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PlanID    uint              `gorm:"not null;index" json:"plan_id"`
	Plan      *SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	Amount    decimal.Decimal   `gorm:"type:decimal(18,4);not null" json:"amount"`
	Status    string            `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	PaidAt    *time.Time        `json:"paid_at"`
	CreatedAt time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
