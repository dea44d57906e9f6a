package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateOrder     = "CREATE_ORDER"
	ActionCompleteOrder   = "COMPLETE_ORDER"
	ActionCancelOrder     = "CANCEL_ORDER"
	ActionCreatePrivilege = "CREATE_PRIVILEGE"

	// Super-admin provisioning actions
	ActionProvisionUser       = "PROVISION_USER"
	ActionCreatePlan          = "CREATE_SUBSCRIPTION_PLAN"
	ActionUpdatePlan          = "UPDATE_SUBSCRIPTION_PLAN"
	ActionDeletePlan          = "DELETE_SUBSCRIPTION_PLAN"
	ActionMarkTransactionPaid = "MARK_TRANSACTION_PAID"

	// Seed actions
	ActionSeedPrivilegeMatrix = "SEED_PRIVILEGE_MATRIX"
	ActionBootstrapAdmin      = "BOOTSTRAP_ADMIN"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if seed script or automated job
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
