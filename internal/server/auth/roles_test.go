package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	r, err = ParseRole("user")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, r)

	for _, s := range []string{"", "Admin", "root", " user"} {
		_, err := ParseRole(s)
		assert.Error(t, err, s)
	}
}

func TestPolicy_Permits(t *testing.T) {
	admin := Allow(RoleAdmin)
	assert.True(t, admin.Permits(RoleAdmin))
	assert.False(t, admin.Permits(RoleUser))

	both := Allow(RoleAdmin, RoleUser)
	assert.True(t, both.Permits(RoleAdmin))
	assert.True(t, both.Permits(RoleUser))
	assert.False(t, both.Permits(Role("root")))
	assert.Equal(t, []Role{RoleAdmin, RoleUser}, both.Roles())
	assert.Equal(t, "admin|user", both.String())
}

func TestPolicy_ZeroValueDeniesAll(t *testing.T) {
	var p Policy
	assert.False(t, p.Permits(RoleAdmin))
	assert.False(t, p.Permits(RoleUser))
	assert.False(t, p.Permits(""))
	assert.Empty(t, p.Roles())
	assert.Equal(t, "deny-all", p.String())
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), Principal{SubjectID: "alice", Role: RoleUser})
	p, ok := PrincipalFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "alice", p.SubjectID)
	assert.Equal(t, RoleUser, p.Role)
}
