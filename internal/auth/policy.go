package auth

import "github.com/crucial707/landscape-lab/internal/models"

// Operation names a protected action. Every operation must have a declared Rule.
type Operation string

const (
	OpProjectCreate     Operation = "project.create"
	OpProjectUpdate     Operation = "project.update"
	OpProjectDelete     Operation = "project.delete"
	OpProjectUpload     Operation = "project.upload"
	OpProjectVersion    Operation = "project.version"
	OpProjectStatistics Operation = "project.statistics"

	OpPlantCreate     Operation = "plant.create"
	OpPlantUpdate     Operation = "plant.update"
	OpPlantImage      Operation = "plant.image"
	OpPlantDelete     Operation = "plant.delete"
	OpPlantStatistics Operation = "plant.statistics"

	OpMaterialCreate     Operation = "material.create"
	OpMaterialUpdate     Operation = "material.update"
	OpMaterialImage      Operation = "material.image"
	OpMaterialDelete     Operation = "material.delete"
	OpMaterialStatistics Operation = "material.statistics"

	OpUserRead       Operation = "user.read"
	OpUserList       Operation = "user.list"
	OpUserManage     Operation = "user.manage"
	OpUserDeactivate Operation = "user.deactivate"
	OpAuditRead      Operation = "audit.read"
)

type Rule int

const (
	// RuleAuthenticated allows any active, authenticated user.
	RuleAuthenticated Rule = iota + 1
	// RuleOwnerOrAdmin allows the resource owner or an administrator.
	RuleOwnerOrAdmin
	// RuleAdminOnly allows administrators regardless of ownership.
	RuleAdminOnly
)

func (r Rule) String() string {
	switch r {
	case RuleAuthenticated:
		return "authenticated"
	case RuleOwnerOrAdmin:
		return "owner-or-admin"
	case RuleAdminOnly:
		return "admin-only"
	default:
		return "undeclared"
	}
}

var rules = map[Operation]Rule{
	OpProjectCreate:     RuleAuthenticated,
	OpProjectUpdate:     RuleOwnerOrAdmin,
	OpProjectDelete:     RuleOwnerOrAdmin,
	OpProjectUpload:     RuleOwnerOrAdmin,
	OpProjectVersion:    RuleOwnerOrAdmin,
	OpProjectStatistics: RuleAdminOnly,

	OpPlantCreate:     RuleOwnerOrAdmin,
	OpPlantUpdate:     RuleOwnerOrAdmin,
	OpPlantImage:      RuleOwnerOrAdmin,
	OpPlantDelete:     RuleAdminOnly,
	OpPlantStatistics: RuleAdminOnly,

	OpMaterialCreate:     RuleOwnerOrAdmin,
	OpMaterialUpdate:     RuleOwnerOrAdmin,
	OpMaterialImage:      RuleOwnerOrAdmin,
	OpMaterialDelete:     RuleAdminOnly,
	OpMaterialStatistics: RuleAdminOnly,

	OpUserRead:       RuleOwnerOrAdmin,
	OpUserList:       RuleAdminOnly,
	OpUserManage:     RuleAdminOnly,
	OpUserDeactivate: RuleAdminOnly,
	OpAuditRead:      RuleAdminOnly,
}

// RuleFor returns the rule declared for op.
func RuleFor(op Operation) (Rule, bool) {
	r, ok := rules[op]
	return r, ok
}

// CanMutate reports whether an actor may change a resource owned by ownerID.
func CanMutate(actorID, ownerID int, actorIsAdmin bool) bool {
	return actorIsAdmin || actorID == ownerID
}

func RequireAdmin(actor *models.User) bool {
	return actor != nil && actor.IsAdmin
}

// Check applies the rule declared for op. ownerID is ignored by rules that do
// not look at ownership. Undeclared operations are always denied.
func Check(actor *models.User, op Operation, ownerID int) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	rule, ok := rules[op]
	if !ok {
		return ErrForbidden
	}
	var allowed bool
	switch rule {
	case RuleAuthenticated:
		allowed = true
	case RuleOwnerOrAdmin:
		allowed = CanMutate(actor.ID, ownerID, actor.IsAdmin)
	case RuleAdminOnly:
		allowed = RequireAdmin(actor)
	}
	if !allowed {
		return ErrForbidden
	}
	return nil
}
