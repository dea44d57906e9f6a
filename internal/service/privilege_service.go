package service

import (
	"context"
	"errors"

	"wabackend/internal/access"
	"wabackend/internal/model"
	"wabackend/internal/repository"

	"gorm.io/gorm"
)

// DTOs for Request validation
type CreatePrivilegeRequest struct {
	Name string `json:"name" binding:"required"`
}

// MenuEntry is one sidebar item derived from the caller's visible matrix rows
type MenuEntry struct {
	ModuleID      uint   `json:"module_id"`
	Name          string `json:"name"`
	ControllerKey string `json:"controller_key"`
	IsCreate      bool   `json:"is_create"`
	IsRead        bool   `json:"is_read"`
	IsEdit        bool   `json:"is_edit"`
	IsDelete      bool   `json:"is_delete"`
}

// SeedResult summarizes one matrix rebuild
type SeedResult struct {
	Privileges int   `json:"privileges"`
	Modules    int   `json:"modules"`
	Roles      int64 `json:"roles"`
}

// PrivilegeService owns the privilege/module capability matrix: seeding it,
// listing it, and answering authorization questions from it.
type PrivilegeService interface {
	SeedMatrix(ctx context.Context) (*SeedResult, error)
	ListPrivileges(ctx context.Context) ([]model.Privilege, error)
	CreatePrivilege(ctx context.Context, req CreatePrivilegeRequest) (*model.Privilege, error)
	ListModules(ctx context.Context) ([]model.Module, error)
	GetMenu(ctx context.Context, privilegeID uint) ([]MenuEntry, error)
	Can(ctx context.Context, privilegeID uint, moduleKey, action string) (bool, error)
}

type privilegeService struct {
	repo      repository.PrivilegeRepository
	txManager repository.TransactionManager
}

// NewPrivilegeService returns a new instance of PrivilegeService
func NewPrivilegeService(repo repository.PrivilegeRepository, txManager repository.TransactionManager) PrivilegeService {
	return &privilegeService{repo: repo, txManager: txManager}
}

// SeedMatrix rebuilds the full capability matrix inside one transaction.
// Privileges and modules are created in their canonical order if missing,
// every (privilege, module) cell is upserted from the rule tables, and rows
// for retired pairs are removed. Any failure rolls the whole rebuild back,
// so readers never observe a half-written matrix.
func (s *privilegeService) SeedMatrix(ctx context.Context) (*SeedResult, error) {
	result := &SeedResult{}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		privilegeIDs := make([]uint, 0, len(model.DefaultPrivileges))
		privileges := make([]model.Privilege, 0, len(model.DefaultPrivileges))
		for _, p := range model.DefaultPrivileges {
			privilege := model.Privilege{Name: p.Name}
			if err := s.repo.FindOrCreatePrivilege(txCtx, &privilege); err != nil {
				return err
			}
			privilegeIDs = append(privilegeIDs, privilege.ID)
			privileges = append(privileges, privilege)
		}

		moduleIDs := make([]uint, 0, len(model.DefaultModules))
		modules := make([]model.Module, 0, len(model.DefaultModules))
		for _, m := range model.DefaultModules {
			module := model.Module{Name: m.Name, ControllerKey: m.ControllerKey}
			if err := s.repo.FindOrCreateModule(txCtx, &module); err != nil {
				return err
			}
			moduleIDs = append(moduleIDs, module.ID)
			modules = append(modules, module)
		}

		for _, privilege := range privileges {
			class := model.ClassOf(privilege.Name)
			for _, module := range modules {
				caps := access.Evaluate(class, module.ControllerKey)
				role := &model.PrivilegeRole{
					PrivilegeID: privilege.ID,
					ModuleID:    module.ID,
					IsVisible:   caps.Visible,
					IsCreate:    caps.Create,
					IsRead:      caps.Read,
					IsEdit:      caps.Edit,
					IsDelete:    caps.Delete,
				}
				if err := s.repo.UpsertRole(txCtx, role); err != nil {
					return err
				}
			}
		}

		if err := s.repo.DeleteStaleRoles(txCtx, privilegeIDs, moduleIDs); err != nil {
			return err
		}

		roleCount, err := s.repo.CountRoles(txCtx)
		if err != nil {
			return err
		}

		result.Privileges = len(privileges)
		result.Modules = len(modules)
		result.Roles = roleCount
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *privilegeService) ListPrivileges(ctx context.Context) ([]model.Privilege, error) {
	return s.repo.ListPrivileges(ctx)
}

func (s *privilegeService) CreatePrivilege(ctx context.Context, req CreatePrivilegeRequest) (*model.Privilege, error) {
	privilege := &model.Privilege{Name: req.Name}
	if err := s.repo.CreatePrivilege(ctx, privilege); err != nil {
		return nil, errors.New("privilege already exists or could not be created")
	}
	return privilege, nil
}

func (s *privilegeService) ListModules(ctx context.Context) ([]model.Module, error) {
	return s.repo.ListModules(ctx)
}

// GetMenu returns the sidebar entries for one privilege: the modules whose
// matrix row is marked visible, with the remaining flags attached so the
// frontend can grey out actions.
func (s *privilegeService) GetMenu(ctx context.Context, privilegeID uint) ([]MenuEntry, error) {
	roles, err := s.repo.ListVisibleRoles(ctx, privilegeID)
	if err != nil {
		return nil, err
	}

	entries := make([]MenuEntry, 0, len(roles))
	for _, role := range roles {
		if role.Module == nil {
			continue
		}
		entries = append(entries, MenuEntry{
			ModuleID:      role.ModuleID,
			Name:          role.Module.Name,
			ControllerKey: role.Module.ControllerKey,
			IsCreate:      role.IsCreate,
			IsRead:        role.IsRead,
			IsEdit:        role.IsEdit,
			IsDelete:      role.IsDelete,
		})
	}

	return entries, nil
}

// Can answers one authorization question from the persisted matrix. A pair
// with no row answers false rather than erroring: an unseeded or unknown
// module never grants access.
func (s *privilegeService) Can(ctx context.Context, privilegeID uint, moduleKey, action string) (bool, error) {
	role, err := s.repo.FindRoleByModuleKey(ctx, privilegeID, moduleKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	caps := access.Capabilities{
		Visible: role.IsVisible,
		Create:  role.IsCreate,
		Read:    role.IsRead,
		Edit:    role.IsEdit,
		Delete:  role.IsDelete,
	}
	return caps.Allows(action), nil
}
