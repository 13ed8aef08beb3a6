package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" Manager ")
	require.NoError(t, err)
	assert.Equal(t, RoleManager, role)

	role, err = ParseRole("staff")
	require.NoError(t, err)
	assert.Equal(t, RoleStaff, role)

	for _, bad := range []string{"", "owner", "admin"} {
		_, err := ParseRole(bad)
		assert.Error(t, err, bad)
	}
}

func TestRoleCapabilities(t *testing.T) {
	assert.True(t, RoleStaff.Can(CapRecordSales))
	assert.True(t, RoleStaff.Can(CapViewLedger))
	assert.False(t, RoleStaff.Can(CapViewReports))
	assert.False(t, RoleStaff.Can(CapManageStaff))

	for _, c := range []Capability{CapRecordSales, CapViewLedger, CapViewReports, CapManageStaff} {
		assert.True(t, RoleManager.Can(c), c)
	}
	assert.False(t, Role("barista").Can(CapRecordSales))
}
