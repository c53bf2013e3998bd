package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleUser, RoleVendor, RoleMaster, RoleSupport} {
		require.True(t, r.Valid(), r.String())
	}
	require.False(t, Role(-1).Valid())
	require.False(t, Role(4).Valid())
}

func TestRoleString(t *testing.T) {
	require.Equal(t, "user", RoleUser.String())
	require.Equal(t, "vendor", RoleVendor.String())
	require.Equal(t, "master", RoleMaster.String())
	require.Equal(t, "support", RoleSupport.String())
	require.Equal(t, "unknown", Role(42).String())
}

func TestRoleCapabilities(t *testing.T) {
	cases := []struct {
		role          Role
		manageCatalog bool
		manageOrders  bool
		manageUsers   bool
		moderate      bool
		support       bool
	}{
		{RoleUser, false, false, false, false, false},
		{RoleVendor, true, true, false, false, false},
		{RoleMaster, true, true, true, true, true},
		{RoleSupport, false, false, false, false, true},
	}
	for _, tc := range cases {
		require.Equal(t, tc.manageCatalog, tc.role.CanManageCatalog(), tc.role.String())
		require.Equal(t, tc.manageOrders, tc.role.CanManageOrders(), tc.role.String())
		require.Equal(t, tc.manageUsers, tc.role.CanManageUsers(), tc.role.String())
		require.Equal(t, tc.moderate, tc.role.CanModerate(), tc.role.String())
		require.Equal(t, tc.support, tc.role.IsSupport(), tc.role.String())
	}
}
