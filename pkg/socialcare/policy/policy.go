// Package policy holds the authorization decisions for the back office.
//
// Every function is a pure predicate over an actor whose global roles and
// organization memberships have already been materialized (see
// membership.Store.Actor); there is no ambient current-user state and no
// I/O. Decisions are booleans only — callers translate a false into a
// generic access-denied response without revealing which rule failed.
//
// The rules keep three trust tiers apart: global admin (sees and does
// everything), manager of a specific organization (administers that one
// organization), and plain member (sees the organizations they belong to).
// A manager of organization A holds no power over organization B.
package policy

import (
	"github.com/projeto-conselho-da-comunidade/social-care-app-back/pkg/socialcare/models"
)

// Action enumerates the organization operations subject to authorization.
type Action string

const (
	ActionViewAny           Action = "viewAny"
	ActionView              Action = "view"
	ActionViewYours         Action = "viewYours"
	ActionCreate            Action = "create"
	ActionUpdate            Action = "update"
	ActionDelete            Action = "delete"
	ActionAssociateUsers    Action = "associateUsers"
	ActionDisassociateUsers Action = "disassociateUsers"
)

// ViewAny reports whether the actor may list all organizations.
func ViewAny(actor *models.User) bool {
	return actor.IsAdmin()
}

// View reports whether the actor may see one organization: admins, or any
// member of it regardless of role.
func View(actor *models.User, org *models.Organization) bool {
	if org == nil {
		return false
	}
	return actor.IsAdmin() || actor.IsMemberOf(org.ID)
}

// ViewYours reports whether the actor may use the self-service "my
// organizations" view: managers of at least one organization.
func ViewYours(actor *models.User) bool {
	return actor.HasRoleAnywhere(models.RoleManager)
}

// Create reports whether the actor may create organizations.
func Create(actor *models.User) bool {
	return actor.IsAdmin()
}

// Update reports whether the actor may change one organization: admins, or
// managers of that specific organization.
func Update(actor *models.User, org *models.Organization) bool {
	if org == nil {
		return false
	}
	return actor.IsAdmin() || actor.HasOrgRole(org.ID, models.RoleManager)
}

// Delete reports whether the actor may delete one organization. Managers
// cannot delete their own organization.
func Delete(actor *models.User, org *models.Organization) bool {
	if org == nil {
		return false
	}
	return actor.IsAdmin()
}

// AssociateUsers reports whether the actor may add members, same rule as
// Update.
func AssociateUsers(actor *models.User, org *models.Organization) bool {
	return Update(actor, org)
}

// DisassociateUsers reports whether the actor may remove members, same rule
// as Update.
func DisassociateUsers(actor *models.User, org *models.Organization) bool {
	return Update(actor, org)
}

// Allows dispatches an action to its decision function. org may be nil for
// the actions that are not organization-scoped. Unknown actions deny.
func Allows(action Action, actor *models.User, org *models.Organization) bool {
	switch action {
	case ActionViewAny:
		return ViewAny(actor)
	case ActionView:
		return View(actor, org)
	case ActionViewYours:
		return ViewYours(actor)
	case ActionCreate:
		return Create(actor)
	case ActionUpdate:
		return Update(actor, org)
	case ActionDelete:
		return Delete(actor, org)
	case ActionAssociateUsers:
		return AssociateUsers(actor, org)
	case ActionDisassociateUsers:
		return DisassociateUsers(actor, org)
	default:
		return false
	}
}
