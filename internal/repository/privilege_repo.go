package repository

import (
	"context"

	"wabackend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PrivilegeRepository is the data access layer for the privilege/module/role
// capability matrix.
type PrivilegeRepository interface {
	CreatePrivilege(ctx context.Context, privilege *model.Privilege) error
	FindOrCreatePrivilege(ctx context.Context, privilege *model.Privilege) error
	FindPrivilegeByID(ctx context.Context, id uint) (*model.Privilege, error)
	ListPrivileges(ctx context.Context) ([]model.Privilege, error)

	FindOrCreateModule(ctx context.Context, module *model.Module) error
	FindModuleByKey(ctx context.Context, controllerKey string) (*model.Module, error)
	ListModules(ctx context.Context) ([]model.Module, error)

	UpsertRole(ctx context.Context, role *model.PrivilegeRole) error
	DeleteStaleRoles(ctx context.Context, privilegeIDs, moduleIDs []uint) error
	FindRole(ctx context.Context, privilegeID, moduleID uint) (*model.PrivilegeRole, error)
	FindRoleByModuleKey(ctx context.Context, privilegeID uint, controllerKey string) (*model.PrivilegeRole, error)
	ListVisibleRoles(ctx context.Context, privilegeID uint) ([]model.PrivilegeRole, error)
	CountRoles(ctx context.Context) (int64, error)
}

type privilegeRepository struct {
	db *gorm.DB
}

func NewPrivilegeRepository(db *gorm.DB) PrivilegeRepository {
	return &privilegeRepository{db: db}
}

func (r *privilegeRepository) CreatePrivilege(ctx context.Context, privilege *model.Privilege) error {
	return GetDB(ctx, r.db).Create(privilege).Error
}

func (r *privilegeRepository) FindOrCreatePrivilege(ctx context.Context, privilege *model.Privilege) error {
	return GetDB(ctx, r.db).
		Where("name = ?", privilege.Name).
		FirstOrCreate(privilege).Error
}

func (r *privilegeRepository) FindPrivilegeByID(ctx context.Context, id uint) (*model.Privilege, error) {
	var privilege model.Privilege
	if err := GetDB(ctx, r.db).First(&privilege, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &privilege, nil
}

func (r *privilegeRepository) ListPrivileges(ctx context.Context) ([]model.Privilege, error) {
	var privileges []model.Privilege
	if err := GetDB(ctx, r.db).Order("id asc").Find(&privileges).Error; err != nil {
		return nil, err
	}
	return privileges, nil
}

func (r *privilegeRepository) FindOrCreateModule(ctx context.Context, module *model.Module) error {
	return GetDB(ctx, r.db).
		Where("controller_key = ?", module.ControllerKey).
		FirstOrCreate(module).Error
}

func (r *privilegeRepository) FindModuleByKey(ctx context.Context, controllerKey string) (*model.Module, error) {
	var module model.Module
	if err := GetDB(ctx, r.db).First(&module, "controller_key = ?", controllerKey).Error; err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *privilegeRepository) ListModules(ctx context.Context) ([]model.Module, error) {
	var modules []model.Module
	if err := GetDB(ctx, r.db).Order("id asc").Find(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

// UpsertRole writes one matrix cell; the unique (privilege_id, module_id)
// index makes re-runs update in place instead of duplicating rows.
func (r *privilegeRepository) UpsertRole(ctx context.Context, role *model.PrivilegeRole) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "privilege_id"}, {Name: "module_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"is_visible", "is_create", "is_read", "is_edit", "is_delete", "updated_at",
		}),
	}).Create(role).Error
}

// DeleteStaleRoles removes rows for pairs no longer in the catalog
func (r *privilegeRepository) DeleteStaleRoles(ctx context.Context, privilegeIDs, moduleIDs []uint) error {
	return GetDB(ctx, r.db).
		Where("privilege_id NOT IN ? OR module_id NOT IN ?", privilegeIDs, moduleIDs).
		Delete(&model.PrivilegeRole{}).Error
}

func (r *privilegeRepository) FindRole(ctx context.Context, privilegeID, moduleID uint) (*model.PrivilegeRole, error) {
	var role model.PrivilegeRole
	if err := GetDB(ctx, r.db).
		First(&role, "privilege_id = ? AND module_id = ?", privilegeID, moduleID).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *privilegeRepository) FindRoleByModuleKey(ctx context.Context, privilegeID uint, controllerKey string) (*model.PrivilegeRole, error) {
	var role model.PrivilegeRole
	if err := GetDB(ctx, r.db).
		Joins("JOIN modules ON modules.id = privilege_roles.module_id").
		Where("privilege_roles.privilege_id = ? AND modules.controller_key = ?", privilegeID, controllerKey).
		First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *privilegeRepository) ListVisibleRoles(ctx context.Context, privilegeID uint) ([]model.PrivilegeRole, error) {
	var roles []model.PrivilegeRole
	if err := GetDB(ctx, r.db).
		Preload("Module").
		Where("privilege_id = ? AND is_visible = ?", privilegeID, true).
		Order("module_id asc").
		Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *privilegeRepository) CountRoles(ctx context.Context) (int64, error) {
	var total int64
	if err := GetDB(ctx, r.db).Model(&model.PrivilegeRole{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
