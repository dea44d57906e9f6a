package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Device status constants
const (
	DeviceStatusDisconnected = "DISCONNECTED"
	DeviceStatusConnected    = "CONNECTED"
)

// Device is a WhatsApp device slot owned by a tenant user. CS accounts are
// scoped to exactly one device.
type Device struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
	Name      string         `gorm:"type:varchar(100);not null" json:"name"`
	Status    string         `gorm:"type:varchar(20);not null;default:'DISCONNECTED'" json:"status"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (d *Device) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// CustomerService is a sub-account under a parent user and a device, carrying
// the cs privilege and therefore a restricted slice of the module matrix.
type CustomerService struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_cs_user_username,unique" json:"user_id"`
	User        *User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
	DeviceID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"device_id"`
	Device      *Device        `gorm:"foreignKey:DeviceID" json:"device,omitempty"`
	Username    string         `gorm:"type:varchar(100);not null;index:idx_cs_user_username,unique" json:"username"`
	Password    string         `gorm:"type:varchar(255);not null" json:"-"`
	PrivilegeID uint           `gorm:"not null;index" json:"privilege_id"`
	Privilege   *Privilege     `gorm:"foreignKey:PrivilegeID" json:"privilege,omitempty"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (cs *CustomerService) BeforeCreate(tx *gorm.DB) error {
	if cs.ID == uuid.Nil {
		cs.ID = uuid.New()
	}
	return nil
}
