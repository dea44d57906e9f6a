package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus constants
const (
	OrderStatusPending   = "PENDING"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCanceled  = "CANCELED"
)

// Order is a customer order handled by one CS account. Lifecycle is
// PENDING -> COMPLETED or PENDING -> CANCELED; both end states are terminal.
type Order struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	OrderCode         string           `gorm:"type:varchar(30);uniqueIndex;not null" json:"order_code"`
	CustomerServiceID uuid.UUID        `gorm:"type:uuid;not null;index" json:"customer_service_id"`
	CustomerService   *CustomerService `gorm:"foreignKey:CustomerServiceID" json:"customer_service,omitempty"`
	CustomerName      string           `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerPhone     string           `gorm:"type:varchar(20);not null" json:"customer_phone"`
	Amount            decimal.Decimal  `gorm:"type:decimal(18,4);not null" json:"amount"`
	Status            string           `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Note              string           `gorm:"type:text" json:"note"`
	CreatedAt         time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// Order message stages
const (
	OrderStageCreated   = "CREATED"
	OrderStageCompleted = "COMPLETED"
	OrderStageCanceled  = "CANCELED"
)

// OrderMessage is the per-CS notification text sent to the customer at one
// order stage. One row per (customer service, stage).
type OrderMessage struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerServiceID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_cs_stage" json:"customer_service_id"`
	CustomerService   *CustomerService `gorm:"foreignKey:CustomerServiceID;constraint:OnDelete:CASCADE;" json:"-"`
	Stage             string           `gorm:"type:varchar(20);not null;uniqueIndex:idx_cs_stage" json:"stage"`
	Body              string           `gorm:"type:text;not null" json:"body"`
	CreatedAt         time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m *OrderMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Template is a reusable message template owned by a tenant user
type Template struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Body      string         `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *Template) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
