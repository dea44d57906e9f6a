package service

import (
	"context"
	"testing"

	"wabackend/internal/access"
	"wabackend/internal/model"
	"wabackend/internal/repository"
)

func newPrivilegeServiceForTest(t *testing.T) (PrivilegeService, repository.PrivilegeRepository) {
	db := setupTestDB(t)
	repo := repository.NewPrivilegeRepository(db)
	txManager := repository.NewTransactionManager(db)
	return NewPrivilegeService(repo, txManager), repo
}

func TestSeedMatrix_OneRowPerPair(t *testing.T) {
	svc, repo := newPrivilegeServiceForTest(t)
	ctx := context.Background()

	result, err := svc.SeedMatrix(ctx)
	if err != nil {
		t.Fatalf("SeedMatrix failed: %v", err)
	}

	want := int64(result.Privileges * result.Modules)
	if result.Roles != want {
		t.Errorf("expected %d role rows, got %d", want, result.Roles)
	}

	total, err := repo.CountRoles(ctx)
	if err != nil {
		t.Fatalf("CountRoles failed: %v", err)
	}
	if total != want {
		t.Errorf("expected %d rows in table, got %d", want, total)
	}
}

func TestSeedMatrix_Idempotent(t *testing.T) {
	svc, repo := newPrivilegeServiceForTest(t)
	ctx := context.Background()

	if _, err := svc.SeedMatrix(ctx); err != nil {
		t.Fatalf("first SeedMatrix failed: %v", err)
	}
	firstCount, _ := repo.CountRoles(ctx)

	result, err := svc.SeedMatrix(ctx)
	if err != nil {
		t.Fatalf("second SeedMatrix failed: %v", err)
	}

	if result.Roles != firstCount {
		t.Errorf("reseed changed row count: first %d, second %d", firstCount, result.Roles)
	}

	// Content must be identical to the pure rule evaluation
	privileges, _ := repo.ListPrivileges(ctx)
	modules, _ := repo.ListModules(ctx)
	for _, privilege := range privileges {
		class := model.ClassOf(privilege.Name)
		for _, module := range modules {
			caps := access.Evaluate(class, module.ControllerKey)
			role, err := repo.FindRole(ctx, privilege.ID, module.ID)
			if err != nil {
				t.Fatalf("missing role for %s/%s: %v", privilege.Name, module.ControllerKey, err)
			}
			got := access.Capabilities{
				Visible: role.IsVisible,
				Create:  role.IsCreate,
				Read:    role.IsRead,
				Edit:    role.IsEdit,
				Delete:  role.IsDelete,
			}
			if got != caps {
				t.Errorf("%s/%s: stored %+v, rules say %+v", privilege.Name, module.ControllerKey, got, caps)
			}
		}
	}
}

func TestSeedMatrix_SpecificCells(t *testing.T) {
	svc, repo := newPrivilegeServiceForTest(t)
	ctx := context.Background()

	if _, err := svc.SeedMatrix(ctx); err != nil {
		t.Fatalf("SeedMatrix failed: %v", err)
	}

	privileges, _ := repo.ListPrivileges(ctx)
	byName := make(map[string]uint)
	for _, p := range privileges {
		byName[p.Name] = p.ID
	}

	// Default user on the privilege module: read yes, writes no
	role, err := repo.FindRoleByModuleKey(ctx, byName[model.PrivilegeUser], access.ModulePrivilege)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if !role.IsVisible || !role.IsRead {
		t.Errorf("default user should see and read privilege module, got %+v", role)
	}
	if role.IsCreate || role.IsEdit || role.IsDelete {
		t.Errorf("default user must not write privilege module, got %+v", role)
	}

	// Admin on subscriptionPlan: all five false
	role, err = repo.FindRoleByModuleKey(ctx, byName[model.PrivilegeAdmin], access.ModuleSubscriptionPlan)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if role.IsVisible || role.IsCreate || role.IsRead || role.IsEdit || role.IsDelete {
		t.Errorf("admin on subscriptionPlan must be all false, got %+v", role)
	}

	// CS on order: all five true
	role, err = repo.FindRoleByModuleKey(ctx, byName[model.PrivilegeCS], access.ModuleOrder)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if !role.IsVisible || !role.IsCreate || !role.IsRead || !role.IsEdit || !role.IsDelete {
		t.Errorf("cs on order must be all true, got %+v", role)
	}
}

func TestCan_FailClosed(t *testing.T) {
	svc, _ := newPrivilegeServiceForTest(t)
	ctx := context.Background()

	if _, err := svc.SeedMatrix(ctx); err != nil {
		t.Fatalf("SeedMatrix failed: %v", err)
	}

	// Unknown module key: deny without error
	ok, err := svc.Can(ctx, 4, "nonexistent", access.ActionRead)
	if err != nil {
		t.Fatalf("missing row must not surface an error, got: %v", err)
	}
	if ok {
		t.Error("missing row must deny")
	}

	// Unknown privilege: same
	ok, err = svc.Can(ctx, 999, access.ModuleOrder, access.ActionRead)
	if err != nil {
		t.Fatalf("missing row must not surface an error, got: %v", err)
	}
	if ok {
		t.Error("unknown privilege must deny")
	}

	// Seeded pair answers from the matrix
	ok, err = svc.Can(ctx, 3, access.ModuleOrder, access.ActionDelete)
	if err != nil {
		t.Fatalf("Can failed: %v", err)
	}
	if !ok {
		t.Error("cs should delete orders")
	}
}

func TestGetMenu_OnlyVisibleRows(t *testing.T) {
	svc, repo := newPrivilegeServiceForTest(t)
	ctx := context.Background()

	if _, err := svc.SeedMatrix(ctx); err != nil {
		t.Fatalf("SeedMatrix failed: %v", err)
	}

	privileges, _ := repo.ListPrivileges(ctx)
	var adminID uint
	for _, p := range privileges {
		if p.Name == model.PrivilegeAdmin {
			adminID = p.ID
		}
	}

	entries, err := svc.GetMenu(ctx, adminID)
	if err != nil {
		t.Fatalf("GetMenu failed: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("admin menu should not be empty")
	}
	for _, e := range entries {
		if e.ControllerKey == access.ModuleSubscriptionPlan {
			t.Error("subscriptionPlan must not appear in the admin menu")
		}
	}
}

// The billing admin routes (transaction listing and settlement, audit trail)
// are guarded by the subscriptionPlan module. Seeding must keep that module
// denied to every class below super admin, or any tenant could settle their
// own invoices.
func TestCan_BillingAdminReservedToSuperAdmin(t *testing.T) {
	svc, repo := newPrivilegeServiceForTest(t)
	ctx := context.Background()

	if _, err := svc.SeedMatrix(ctx); err != nil {
		t.Fatalf("SeedMatrix failed: %v", err)
	}

	privileges, _ := repo.ListPrivileges(ctx)
	byName := make(map[string]uint)
	for _, p := range privileges {
		byName[p.Name] = p.ID
	}

	for _, name := range []string{model.PrivilegeUser, model.PrivilegeCS, model.PrivilegeAdmin} {
		for _, action := range []string{access.ActionRead, access.ActionEdit} {
			ok, err := svc.Can(ctx, byName[name], access.ModuleSubscriptionPlan, action)
			if err != nil {
				t.Fatalf("Can failed for %s/%s: %v", name, action, err)
			}
			if ok {
				t.Errorf("%s must not hold %s on the billing admin module", name, action)
			}
		}
	}

	ok, err := svc.Can(ctx, byName[model.PrivilegeSuperAdmin], access.ModuleSubscriptionPlan, access.ActionEdit)
	if err != nil {
		t.Fatalf("Can failed: %v", err)
	}
	if !ok {
		t.Error("super admin must hold edit on the billing admin module")
	}
}
