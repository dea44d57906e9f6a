package model

import (
	"time"

	"wabackend/internal/access"
)

// Privilege name constants
const (
	PrivilegeSuperAdmin = "super admin"
	PrivilegeAdmin      = "admin"
	PrivilegeCS         = "cs"
	PrivilegeUser       = "user"
)

// Privilege represents a named role level attached to every account.
// The four rows are created once at bootstrap and never change afterwards.
type Privilege struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Module is an addressable feature area of the application, one per controller
type Module struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string    `gorm:"type:varchar(100);not null" json:"name"`
	ControllerKey string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"controller_key"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PrivilegeRole is the capability row linking one privilege to one module.
// Exactly one row exists per (privilege, module) pair after seeding.
type PrivilegeRole struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	ModuleID    uint       `gorm:"not null;uniqueIndex:idx_privilege_module" json:"module_id"`
	Module      *Module    `gorm:"foreignKey:ModuleID" json:"module,omitempty"`
	PrivilegeID uint       `gorm:"not null;uniqueIndex:idx_privilege_module" json:"privilege_id"`
	Privilege   *Privilege `gorm:"foreignKey:PrivilegeID" json:"privilege,omitempty"`
	IsVisible   bool       `gorm:"not null;default:false" json:"is_visible"`
	IsCreate    bool       `gorm:"not null;default:false" json:"is_create"`
	IsRead      bool       `gorm:"not null;default:false" json:"is_read"`
	IsEdit      bool       `gorm:"not null;default:false" json:"is_edit"`
	IsDelete    bool       `gorm:"not null;default:false" json:"is_delete"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// DefaultPrivileges lists the privilege levels in their canonical seed order
var DefaultPrivileges = []Privilege{
	{Name: PrivilegeSuperAdmin},
	{Name: PrivilegeAdmin},
	{Name: PrivilegeCS},
	{Name: PrivilegeUser},
}

// ClassOf maps a privilege name onto its rule class
func ClassOf(privilegeName string) access.Class {
	switch privilegeName {
	case PrivilegeSuperAdmin:
		return access.ClassSuperAdmin
	case PrivilegeAdmin:
		return access.ClassAdmin
	case PrivilegeCS:
		return access.ClassCS
	default:
		return access.ClassDefault
	}
}

// DefaultModules enumerates the available controllers. The seeder keeps the
// modules table in sync with this list.
var DefaultModules = []Module{
	{Name: "Session", ControllerKey: access.ModuleSession},
	{Name: "Message", ControllerKey: access.ModuleMessage},
	{Name: "Contact", ControllerKey: access.ModuleContact},
	{Name: "Group", ControllerKey: access.ModuleGroup},
	{Name: "Template", ControllerKey: access.ModuleTemplate},
	{Name: "Auto Reply", ControllerKey: access.ModuleAutoReply},
	{Name: "Broadcast", ControllerKey: access.ModuleBroadcast},
	{Name: "Campaign", ControllerKey: access.ModuleCampaign},
	{Name: "Menu", ControllerKey: access.ModuleMenu},
	{Name: "Privilege", ControllerKey: access.ModulePrivilege},
	{Name: "User", ControllerKey: access.ModuleUser},
	{Name: "Device", ControllerKey: access.ModuleDevice},
	{Name: "Customer Service", ControllerKey: access.ModuleCustomerService},
	{Name: "Order", ControllerKey: access.ModuleOrder},
	{Name: "Analytics", ControllerKey: access.ModuleAnalytics},
	{Name: "Subscription", ControllerKey: access.ModuleSubscription},
	{Name: "Subscription Plan", ControllerKey: access.ModuleSubscriptionPlan},
	{Name: "Transaction", ControllerKey: access.ModuleTransaction},
}
