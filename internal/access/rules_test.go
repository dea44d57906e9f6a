package access

import "testing"

func TestEvaluate_SuperAdminGetsEverything(t *testing.T) {
	for _, key := range []string{ModuleSession, ModulePrivilege, ModuleSubscriptionPlan, ModuleOrder} {
		caps := Evaluate(ClassSuperAdmin, key)
		if !caps.Visible || !caps.Create || !caps.Read || !caps.Edit || !caps.Delete {
			t.Errorf("super admin on %s: expected all flags true, got %+v", key, caps)
		}
	}
}

func TestEvaluate_CSAccessibleModuleAllTrue(t *testing.T) {
	caps := Evaluate(ClassCS, ModuleOrder)
	if !caps.Visible || !caps.Create || !caps.Read || !caps.Edit || !caps.Delete {
		t.Errorf("cs on order: expected all flags true, got %+v", caps)
	}
}

func TestEvaluate_CSOutsideItsSet(t *testing.T) {
	// Session escape hatch: create/edit only
	caps := Evaluate(ClassCS, ModuleSession)
	if caps.Visible || !caps.Create || caps.Read || !caps.Edit || caps.Delete {
		t.Errorf("cs on session: got %+v", caps)
	}

	// Always-readable module: read only
	caps = Evaluate(ClassCS, ModuleContact)
	if caps.Visible || caps.Create || !caps.Read || caps.Edit || caps.Delete {
		t.Errorf("cs on contact: got %+v", caps)
	}

	// Neither: nothing
	caps = Evaluate(ClassCS, ModuleUser)
	if caps.Visible || caps.Create || caps.Read || caps.Edit || caps.Delete {
		t.Errorf("cs on user: expected all flags false, got %+v", caps)
	}
}

func TestEvaluate_SuperAdminOnlyInvisibleToOthers(t *testing.T) {
	for _, class := range []Class{ClassDefault, ClassAdmin} {
		caps := Evaluate(class, ModuleSubscriptionPlan)
		if caps.Visible || caps.Create || caps.Read || caps.Edit || caps.Delete {
			t.Errorf("class %d on subscriptionPlan: expected all flags false, got %+v", class, caps)
		}
	}
}

func TestEvaluate_DefaultUserOnPrivilegeModule(t *testing.T) {
	// Write-excluded: visible and readable but never writable
	caps := Evaluate(ClassDefault, ModulePrivilege)
	if !caps.Visible {
		t.Error("privilege module should be visible to default user")
	}
	if !caps.Read {
		t.Error("privilege module should be readable by default user")
	}
	if caps.Create || caps.Edit || caps.Delete {
		t.Errorf("privilege module must not be writable by default user, got %+v", caps)
	}
}

func TestEvaluate_DefaultUserRegularModule(t *testing.T) {
	caps := Evaluate(ClassDefault, ModuleBroadcast)
	if !caps.Visible || !caps.Create || !caps.Read || !caps.Edit || !caps.Delete {
		t.Errorf("default user on broadcast: expected all flags true, got %+v", caps)
	}
}

func TestEvaluate_AdminRestrictedWrites(t *testing.T) {
	// Admin sees most modules but only writes via the session escape hatch
	caps := Evaluate(ClassAdmin, ModuleSession)
	if !caps.Visible || !caps.Create || !caps.Edit {
		t.Errorf("admin on session: got %+v", caps)
	}
	if caps.Delete {
		t.Error("session escape hatch must not grant delete")
	}

	caps = Evaluate(ClassAdmin, ModuleOrder)
	if !caps.Visible {
		t.Error("admin should see the order module")
	}
	if caps.Create || caps.Read || caps.Edit || caps.Delete {
		t.Errorf("admin on order: expected no action flags, got %+v", caps)
	}

	caps = Evaluate(ClassAdmin, ModuleTemplate)
	if !caps.Read {
		t.Error("admin should read always-readable modules")
	}
}

func TestCapabilities_Allows(t *testing.T) {
	caps := Capabilities{Visible: true, Read: true}

	if !caps.Allows(ActionVisible) || !caps.Allows(ActionRead) {
		t.Error("expected visible and read to be allowed")
	}
	if caps.Allows(ActionCreate) || caps.Allows(ActionEdit) || caps.Allows(ActionDelete) {
		t.Error("expected write actions to be denied")
	}
	if caps.Allows("unknown") {
		t.Error("unknown action must be denied")
	}
}
