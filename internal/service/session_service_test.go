package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-portal/internal/dispatch"
	"github.com/noah-isme/alumni-portal/internal/models"
	"github.com/noah-isme/alumni-portal/internal/permission"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("upstream-secret"))
	require.NoError(t, err)
	return token
}

func TestSessionServiceCachesResolvedUser(t *testing.T) {
	remote := &mockRemote{current: &plainUser}
	svc := NewSessionService(remote, newMemoryCache(), time.Minute, nil)
	token := signedToken(t, time.Now().Add(time.Hour))

	first, err := svc.Resolve(context.Background(), token)
	require.NoError(t, err)
	second, err := svc.Resolve(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, plainUser.ID, first.User.ID)
	assert.Equal(t, plainUser.ID, second.User.ID)
	assert.Equal(t, token, second.Token)
	assert.False(t, second.ExpiresAt.IsZero())
	assert.Equal(t, 1, remote.currentCalls)
}

func TestSessionServiceRejectsExpiredTokenWithoutUpstreamCall(t *testing.T) {
	remote := &mockRemote{current: &plainUser}
	svc := NewSessionService(remote, newMemoryCache(), time.Minute, nil)

	_, err := svc.Resolve(context.Background(), signedToken(t, time.Now().Add(-time.Minute)))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
	assert.Zero(t, remote.currentCalls)
}

func TestSessionServiceAcceptsOpaqueTokens(t *testing.T) {
	remote := &mockRemote{current: &plainUser}
	svc := NewSessionService(remote, newMemoryCache(), time.Minute, nil)

	sess, err := svc.Resolve(context.Background(), "opaque-token")
	require.NoError(t, err)
	assert.True(t, sess.ExpiresAt.IsZero())
}

func TestSessionServiceRejectsBlockedAccounts(t *testing.T) {
	blocked := plainUser
	blocked.Status = models.StatusBlocked
	svc := NewSessionService(&mockRemote{current: &blocked}, newMemoryCache(), time.Minute, nil)

	_, err := svc.Resolve(context.Background(), "opaque-token")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestSessionServicePropagatesUpstreamRejection(t *testing.T) {
	remote := &mockRemote{currentErr: appErrors.Clone(appErrors.ErrUnauthorized, "Invalid token")}
	svc := NewSessionService(remote, newMemoryCache(), time.Minute, nil)

	_, err := svc.Resolve(context.Background(), "opaque-token")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	_, err = svc.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
	assert.Equal(t, 1, remote.currentCalls)
}

func TestSessionServiceInvalidateForcesRefresh(t *testing.T) {
	remote := &mockRemote{current: &plainUser}
	svc := NewSessionService(remote, newMemoryCache(), time.Minute, nil)

	_, err := svc.Resolve(context.Background(), "opaque-token")
	require.NoError(t, err)

	renamed := plainUser
	renamed.FirstName = "Renamed"
	remote.current = &renamed
	svc.Invalidate(context.Background(), "opaque-token")

	sess, err := svc.Resolve(context.Background(), "opaque-token")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", sess.User.FirstName)
	assert.Equal(t, 2, remote.currentCalls)
}

func TestSessionServiceDropsTargetSessionsAfterBlock(t *testing.T) {
	remote := &mockRemote{current: &plainUser, users: map[string]models.User{plainUser.ID: plainUser}}
	sessions := NewSessionService(remote, newMemoryCache(), time.Minute, nil)
	ctx := context.Background()

	for _, token := range []string{"phone-token", "laptop-token", "phone-token"} {
		_, err := sessions.Resolve(ctx, token)
		require.NoError(t, err)
	}
	require.Equal(t, 2, remote.currentCalls)

	directory := NewDirectoryService(remote, dispatch.New(remote, nil, sessions), nil)
	result, err := directory.Act(ctx, sessionFor(adminUser), plainUser.ID, permission.ActionBlock, true, nil)
	require.NoError(t, err)
	assert.True(t, result.OK)

	blocked := plainUser
	blocked.Status = models.StatusBlocked
	remote.current = &blocked

	_, err = sessions.Resolve(ctx, "phone-token")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	_, err = sessions.Resolve(ctx, "laptop-token")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Equal(t, 4, remote.currentCalls)
}

func TestSessionServiceKeepsSessionsForOtherNotifications(t *testing.T) {
	remote := &mockRemote{current: &plainUser}
	sessions := NewSessionService(remote, newMemoryCache(), time.Minute, nil)
	ctx := context.Background()

	_, err := sessions.Resolve(ctx, "opaque-token")
	require.NoError(t, err)

	notifications := []dispatch.Notification{
		{Level: dispatch.LevelError, Action: dispatch.Action{Kind: dispatch.KindUpdateStatus, Entity: models.EntityUser, TargetID: plainUser.ID}},
		{Level: dispatch.LevelSuccess, Action: dispatch.Action{Kind: dispatch.KindUpdateStatus, Entity: models.EntityPost, TargetID: plainUser.ID}},
		{Level: dispatch.LevelSuccess, Action: dispatch.Action{Kind: dispatch.KindUpdateRole, Entity: models.EntityUser, TargetID: adminUser.ID}},
	}
	for _, n := range notifications {
		sessions.Notify(ctx, n)
	}

	_, err = sessions.Resolve(ctx, "opaque-token")
	require.NoError(t, err)
	assert.Equal(t, 1, remote.currentCalls)

	sessions.Notify(ctx, dispatch.Notification{Level: dispatch.LevelSuccess, Action: dispatch.Action{Kind: dispatch.KindUpdateRole, Entity: models.EntityUser, TargetID: plainUser.ID}})
	_, err = sessions.Resolve(ctx, "opaque-token")
	require.NoError(t, err)
	assert.Equal(t, 2, remote.currentCalls)
}
