package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserUnmarshalLegacyIsActive(t *testing.T) {
	var active, inactive User
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","isActive":true,"roles":["user"]}`), &active))
	require.NoError(t, json.Unmarshal([]byte(`{"id":"2","isActive":false,"roles":["user"]}`), &inactive))

	assert.Equal(t, StatusActive, active.Status)
	assert.Equal(t, StatusInactive, inactive.Status)
}

func TestUserUnmarshalPrefersStatusEnum(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","isActive":true,"status":"pending"}`), &u))
	assert.Equal(t, StatusPending, u.Status)
}

func TestUserUnmarshalDropsUnknownRoles(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","roles":["admin","superuser","moderator"]}`), &u))
	assert.Equal(t, []Role{RoleAdmin, RoleModerator}, u.Roles)
	assert.True(t, u.HasRole(RoleAdmin))
	assert.False(t, u.HasRole(RoleUser))
}

func TestUserUnmarshalSingleRoleField(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","role":"moderator","firstName":"Ada","lastName":"Lovelace"}`), &u))
	assert.Equal(t, []Role{RoleModerator}, u.Roles)
	assert.Equal(t, "Ada Lovelace", u.FullName())
}
