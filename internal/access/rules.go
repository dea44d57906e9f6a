package access

// Package access holds the capability rules that decide what each privilege
// level may do on each application module. The rules are plain data plus a
// pure evaluation function so the full matrix can be recomputed (and tested)
// without touching the database.

// Class buckets a privilege into one of the four rule groups.
type Class int

const (
	ClassDefault Class = iota // regular user account
	ClassCS                   // customer-service sub-account
	ClassAdmin
	ClassSuperAdmin
)

// Controller keys, one per feature area
const (
	ModuleSession          = "session"
	ModuleMessage          = "message"
	ModuleContact          = "contact"
	ModuleGroup            = "group"
	ModuleTemplate         = "template"
	ModuleAutoReply        = "autoReply"
	ModuleBroadcast        = "broadcast"
	ModuleCampaign         = "campaign"
	ModuleMenu             = "menu"
	ModulePrivilege        = "privilege"
	ModuleUser             = "user"
	ModuleDevice           = "device"
	ModuleCustomerService  = "customerService"
	ModuleOrder            = "order"
	ModuleAnalytics        = "analytics"
	ModuleSubscription     = "subscription"
	ModuleSubscriptionPlan = "subscriptionPlan"
	ModuleTransaction      = "transaction"
)

// csAccessible lists the modules a customer-service account can work with.
var csAccessible = map[string]bool{
	ModuleMessage:         true,
	ModuleAutoReply:       true,
	ModuleBroadcast:       true,
	ModuleCampaign:        true,
	ModuleAnalytics:       true,
	ModuleCustomerService: true,
	ModuleOrder:           true,
}

// superAdminOnly lists the modules hidden from everyone below super admin.
var superAdminOnly = map[string]bool{
	ModuleSubscriptionPlan: true,
}

// alwaysReadable modules are readable by every privilege level.
var alwaysReadable = map[string]bool{
	ModuleContact:  true,
	ModuleGroup:    true,
	ModuleTemplate: true,
}

// writeExcluded modules are excluded from create/edit/delete for the default
// privilege. Read is intentionally NOT excluded here; that asymmetry is
// recorded business behavior, not an oversight.
var writeExcluded = map[string]bool{
	ModuleMenu:      true,
	ModulePrivilege: true,
}

// Capabilities is one cell row of the privilege/module matrix.
type Capabilities struct {
	Visible bool
	Create  bool
	Read    bool
	Edit    bool
	Delete  bool
}

// Evaluate derives the capability flags for one (privilege class, module) pair.
func Evaluate(class Class, moduleKey string) Capabilities {
	if class == ClassSuperAdmin {
		return Capabilities{Visible: true, Create: true, Read: true, Edit: true, Delete: true}
	}

	if class == ClassCS {
		if csAccessible[moduleKey] {
			return Capabilities{Visible: true, Create: true, Read: true, Edit: true, Delete: true}
		}
		// Outside its set a CS account still gets create/edit on the session
		// module and read on the always-readable modules.
		return Capabilities{
			Create: moduleKey == ModuleSession,
			Read:   alwaysReadable[moduleKey],
			Edit:   moduleKey == ModuleSession,
		}
	}

	// Admin and default user share the visibility rule: everything except
	// the super-admin-only modules.
	caps := Capabilities{Visible: !superAdminOnly[moduleKey]}

	if class == ClassDefault {
		allowed := !superAdminOnly[moduleKey]
		writable := allowed && !writeExcluded[moduleKey]
		caps.Create = writable || moduleKey == ModuleSession
		caps.Read = allowed || alwaysReadable[moduleKey]
		caps.Edit = caps.Create
		caps.Delete = writable
		return caps
	}

	// Admin: create/edit only via the session escape hatch, read only on the
	// always-readable modules.
	caps.Create = moduleKey == ModuleSession
	caps.Read = alwaysReadable[moduleKey]
	caps.Edit = moduleKey == ModuleSession
	return caps
}

// Actions understood by the authorization middleware.
const (
	ActionVisible = "visible"
	ActionCreate  = "create"
	ActionRead    = "read"
	ActionEdit    = "edit"
	ActionDelete  = "delete"
)

// Allows maps an action name onto the matching capability flag.
func (c Capabilities) Allows(action string) bool {
	switch action {
	case ActionVisible:
		return c.Visible
	case ActionCreate:
		return c.Create
	case ActionRead:
		return c.Read
	case ActionEdit:
		return c.Edit
	case ActionDelete:
		return c.Delete
	default:
		return false
	}
}
