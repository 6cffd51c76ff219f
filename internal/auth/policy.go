package auth

import "github.com/farmconnect-dev/farmconnect/internal/types"

// Authorization policy for resource-level checks. Handlers and services go
// through these helpers instead of comparing role strings inline.

func IsAdmin(role types.Role) bool {
	return role == types.RoleAdmin
}

// CanManageCrop reports whether the actor may update or delete a crop.
// Mutating queries additionally carry the owner predicate, so this check
// never stands alone between a read and a write.
func CanManageCrop(actorID uint, role types.Role, farmerID uint) bool {
	return IsAdmin(role) || actorID == farmerID
}

func CanViewOrder(actorID uint, role types.Role, buyerID, farmerID uint) bool {
	return IsAdmin(role) || actorID == buyerID || actorID == farmerID
}

func CanCreateAlert(role types.Role) bool {
	return role == types.RoleFarmer || role == types.RoleAdmin
}

// CanDeleteAlert: the original creator or an admin. Admin-issued alerts have
// no creator and can only be removed by admins.
func CanDeleteAlert(actorID uint, role types.Role, creatorID *uint) bool {
	if IsAdmin(role) {
		return true
	}
	return creatorID != nil && *creatorID == actorID
}

// CanDeleteForumContent: owner only. Admins deliberately have no override
// on forum deletions.
func CanDeleteForumContent(actorID, ownerID uint) bool {
	return actorID == ownerID
}
