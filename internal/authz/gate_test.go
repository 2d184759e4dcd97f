package authz

import (
	"errors"
	"testing"

	"github.com/storeratings/ratehub/internal/apperr"
)

func codeOf(t *testing.T, err error) string {
	t.Helper()

	var apiErr *apperr.Error

	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *apperr.Error, got %T (%v)", err, err)
	}

	return apiErr.Code
}

func TestAuthorizeRoleAllowlists(t *testing.T) {
	cases := []struct {
		name     string
		role     Role
		perm     Permission
		wantCode string
	}{
		{"user may submit ratings", RoleUser, PermSubmitRating, ""},
		{"store owner may submit ratings", RoleStoreOwner, PermSubmitRating, ""},
		{"admin may not submit ratings", RoleAdmin, PermSubmitRating, apperr.CodeInsufficientRole},
		{"admin may manage users", RoleAdmin, PermManageUsers, ""},
		{"user may not manage users", RoleUser, PermManageUsers, apperr.CodeInsufficientRole},
		{"store owner may not view dashboard", RoleStoreOwner, PermViewDashboard, apperr.CodeInsufficientRole},
		{"user may update profile", RoleUser, PermUpdateProfile, ""},
		{"admin may not update profile", RoleAdmin, PermUpdateProfile, apperr.CodeInsufficientRole},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(Caller{ID: 1, Role: tc.role}, tc.perm, nil)

			if tc.wantCode == "" {
				if err != nil {
					t.Fatalf("expected allow, got %v", err)
				}
				return
			}

			if err == nil {
				t.Fatalf("expected deny with code %q, got allow", tc.wantCode)
			}

			if got := codeOf(t, err); got != tc.wantCode {
				t.Fatalf("expected code %q, got %q", tc.wantCode, got)
			}
		})
	}
}

func TestAuthorizeOwnershipScoped(t *testing.T) {
	ownerID := uint(7)

	err := Authorize(Caller{ID: 7, Role: RoleStoreOwner}, PermViewStoreRatings, &Resource{StoreOwnerID: &ownerID})

	if err != nil {
		t.Fatalf("registered owner should be allowed, got %v", err)
	}

	err = Authorize(Caller{ID: 8, Role: RoleStoreOwner}, PermViewStoreRatings, &Resource{StoreOwnerID: &ownerID})

	if codeOf(t, err) != apperr.CodeNotOwner {
		t.Fatalf("expected not_owner for a different store owner, got %v", err)
	}
}

func TestAuthorizeUnownedStoreDeniesEveryone(t *testing.T) {
	err := Authorize(Caller{ID: 7, Role: RoleStoreOwner}, PermViewStoreRatings, &Resource{StoreOwnerID: nil})

	if codeOf(t, err) != apperr.CodeNotOwner {
		t.Fatalf("expected not_owner for unowned store, got %v", err)
	}

	err = Authorize(Caller{ID: 7, Role: RoleStoreOwner}, PermViewStoreRatings, nil)

	if codeOf(t, err) != apperr.CodeNotOwner {
		t.Fatalf("expected not_owner without resource context, got %v", err)
	}
}

func TestAuthorizeSelfDeleteForbidden(t *testing.T) {
	err := Authorize(Caller{ID: 3, Role: RoleAdmin}, PermDeleteUser, &Resource{TargetUserID: 3})

	if codeOf(t, err) != apperr.CodeSelfActionForbidden {
		t.Fatalf("expected self_action_forbidden, got %v", err)
	}

	err = Authorize(Caller{ID: 3, Role: RoleAdmin}, PermDeleteUser, &Resource{TargetUserID: 4})

	if err != nil {
		t.Fatalf("deleting another user should be allowed, got %v", err)
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{"admin", "user", "store_owner"} {
		if !ValidRole(role) {
			t.Fatalf("expected %q to be valid", role)
		}
	}

	if ValidRole("superuser") {
		t.Fatal("expected superuser to be invalid")
	}
}
