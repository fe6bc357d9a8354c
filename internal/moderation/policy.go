package moderation

import "github.com/zahin-dev/comment-hub/backend/internal/models"

// Actor identifies the user attempting a moderation action.
type Actor struct {
	UID  string
	Role models.Role
}

// Policy decides which moderation actions an actor may take. The default is
// the strict rule: the actor must hold admin privileges and strictly outrank
// the target, and may never target themselves through the moderation paths.
type Policy struct {
	// AllowPeerAction relaxes the rank check so admins may act on other
	// admins. Superadmins stay immune either way.
	AllowPeerAction bool
}

// CanModerate reports whether the actor may admin-delete the target user's
// comments or ban them.
func (p Policy) CanModerate(actor Actor, targetUID string, targetRole models.Role) bool {
	if !actor.Role.IsModerator() || actor.UID == targetUID {
		return false
	}
	if p.AllowPeerAction {
		return targetRole != models.RoleSuperAdmin
	}
	return actor.Role.Level() > targetRole.Level()
}

// CanPin reports whether the actor may pin or unpin comments.
func (p Policy) CanPin(actor Actor) bool {
	return actor.Role.IsModerator()
}
