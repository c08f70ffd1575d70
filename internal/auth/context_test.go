package auth_test

import (
	"context"
	"testing"

	"github.com/agencydesk/commerce-api/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContextRoundTrip(t *testing.T) {
	user := &auth.UserContext{
		UserID:      "user-123",
		DisplayName: "Test User",
		Email:       "test@agencydesk.io",
		Roles:       []string{auth.RoleSales},
	}

	ctx := auth.WithUserContext(context.Background(), user)
	got, ok := auth.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, user, got)
}

func TestFromContextMissing(t *testing.T) {
	_, ok := auth.FromContext(context.Background())
	assert.False(t, ok)
}

func TestMustFromContextPanics(t *testing.T) {
	assert.Panics(t, func() {
		auth.MustFromContext(context.Background())
	})
}

func TestHasRole(t *testing.T) {
	user := &auth.UserContext{Roles: []string{auth.RoleSales, "Viewer"}}

	assert.True(t, user.HasRole(auth.RoleSales))
	assert.True(t, user.HasRole("VIEWER"), "role check is case insensitive")
	assert.False(t, user.HasRole(auth.RoleAdmin))
	assert.True(t, user.HasAnyRole(auth.RoleAdmin, auth.RoleSales))
	assert.False(t, user.HasAnyRole(auth.RoleAdmin, auth.RoleSystem))
}

func TestIsAdminAndCanWrite(t *testing.T) {
	tests := []struct {
		name     string
		roles    []string
		isAdmin  bool
		canWrite bool
	}{
		{"admin", []string{auth.RoleAdmin}, true, true},
		{"system", []string{auth.RoleSystem}, true, true},
		{"sales", []string{auth.RoleSales}, false, true},
		{"viewer", []string{auth.RoleViewer}, false, false},
		{"no roles", nil, false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			user := &auth.UserContext{Roles: tc.roles}
			assert.Equal(t, tc.isAdmin, user.IsAdmin())
			assert.Equal(t, tc.canWrite, user.CanWrite())
		})
	}
}
