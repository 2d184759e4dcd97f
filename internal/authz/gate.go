package authz

import (
	"github.com/storeratings/ratehub/internal/apperr"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleStoreOwner Role = "store_owner"
	RoleUser       Role = "user"
)

func ValidRole(s string) bool {
	switch Role(s) {
	case RoleAdmin, RoleStoreOwner, RoleUser:
		return true
	}
	return false
}

type Permission string

const (
	PermSubmitRating     Permission = "rating:submit"
	PermManageOwnRating  Permission = "rating:manage_own"
	PermRatingHistory    Permission = "rating:history"
	PermViewStoreRatings Permission = "store:view_ratings"
	PermViewOwnStore     Permission = "store:view_own"
	PermUpdateProfile    Permission = "profile:update"
	PermViewDashboard    Permission = "admin:dashboard"
	PermManageUsers      Permission = "admin:users"
	PermDeleteUser       Permission = "admin:users:delete"
	PermManageStores     Permission = "admin:stores"
)

// Roles are a flat enumeration: every protected operation names its allowed
// roles explicitly, and admin is not implicitly a member of any list.
var allowlists = map[Permission][]Role{
	PermSubmitRating:     {RoleUser, RoleStoreOwner},
	PermManageOwnRating:  {RoleUser, RoleStoreOwner},
	PermRatingHistory:    {RoleUser, RoleStoreOwner},
	PermViewStoreRatings: {RoleStoreOwner},
	PermViewOwnStore:     {RoleStoreOwner},
	PermUpdateProfile:    {RoleUser, RoleStoreOwner},
	PermViewDashboard:    {RoleAdmin},
	PermManageUsers:      {RoleAdmin},
	PermDeleteUser:       {RoleAdmin},
	PermManageStores:     {RoleAdmin},
}

// Permissions that additionally require the caller to be the registered owner
// of the store under access.
var ownershipScoped = map[Permission]bool{
	PermViewStoreRatings: true,
}

// Permissions an authenticated caller may never apply to their own account.
var selfForbidden = map[Permission]bool{
	PermDeleteUser: true,
}

type Caller struct {
	ID   uint
	Role Role
}

// Resource describes the target of an ownership- or self-scoped operation.
// StoreOwnerID is the registered owner of the store under access, nil when the
// store has no owner. TargetUserID is the account a user-management action is
// aimed at.
type Resource struct {
	StoreOwnerID *uint
	TargetUserID uint
}

// Authorize decides whether caller may perform the operation guarded by perm.
// It is a pure function over its inputs; resource may be nil for operations
// without ownership or self-action rules.
func Authorize(caller Caller, perm Permission, resource *Resource) error {
	allowed, ok := allowlists[perm]

	if !ok {
		return apperr.InsufficientRole()
	}

	roleAllowed := false

	for _, role := range allowed {
		if caller.Role == role {
			roleAllowed = true
			break
		}
	}

	if !roleAllowed {
		return apperr.InsufficientRole()
	}

	if ownershipScoped[perm] {
		// A store with no owner denies ownership to everyone.
		if resource == nil || resource.StoreOwnerID == nil || *resource.StoreOwnerID != caller.ID {
			return apperr.NotOwner()
		}
	}

	if selfForbidden[perm] && resource != nil && resource.TargetUserID == caller.ID {
		return apperr.SelfActionForbidden()
	}

	return nil
}
