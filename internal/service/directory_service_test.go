package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-portal/internal/dispatch"
	"github.com/noah-isme/alumni-portal/internal/dto"
	"github.com/noah-isme/alumni-portal/internal/listing"
	"github.com/noah-isme/alumni-portal/internal/models"
	"github.com/noah-isme/alumni-portal/internal/permission"
	"github.com/noah-isme/alumni-portal/internal/view"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
)

func directoryFixture() (*mockRemote, *DirectoryService, *recordingNotifier) {
	pending := models.User{ID: "u-pending", FirstName: "Pen", Status: models.StatusPending, Roles: []models.Role{models.RoleUser}}
	active := models.User{ID: "u-active", FirstName: "Act", Status: models.StatusActive, Roles: []models.Role{models.RoleUser}}
	remote := &mockRemote{users: map[string]models.User{
		pending.ID:   pending,
		active.ID:    active,
		adminUser.ID: adminUser,
	}}
	remote.listUsers = func(d listing.Descriptor) (models.Page[models.User], error) {
		items := []models.User{pending, active, adminUser}
		return pageOf(items, d.Page, d.Limit, 95), nil
	}
	notifier := &recordingNotifier{}
	svc := NewDirectoryService(remote, dispatch.New(remote, nil, notifier), nil)
	return remote, svc, notifier
}

func TestDirectoryPageRequiresManageUsers(t *testing.T) {
	remote, svc, _ := directoryFixture()

	_, err := svc.Page(context.Background(), sessionFor(plainUser), listing.Descriptor{Page: 1, Limit: 10})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Zero(t, remote.userCallCount())

	_, err = svc.Page(context.Background(), nil, listing.Descriptor{Page: 1, Limit: 10})
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestDirectoryPageRendersEveryRow(t *testing.T) {
	_, svc, _ := directoryFixture()

	page, err := svc.Page(context.Background(), sessionFor(modUser), listing.Descriptor{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, view.PhaseReady, page.Phase)
	require.Len(t, page.Rows, 3)

	assert.NotEmpty(t, page.Rows[0].Actions)
	assert.Empty(t, page.Rows[1].Actions)
	assert.Equal(t, view.PlaceholderNoActions, page.Rows[1].Placeholder)
	assert.Equal(t, view.PlaceholderProtected, page.Rows[2].Placeholder)
	assert.Equal(t, 10, page.Pagination.TotalPages)
}

func TestDirectoryPageClampsPastTheEnd(t *testing.T) {
	remote, svc, _ := directoryFixture()

	page, err := svc.Page(context.Background(), sessionFor(adminUser), listing.Descriptor{Page: 11, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, page.Query.Page)
	require.Len(t, remote.userCalls, 2)
	assert.Equal(t, 10, remote.userCalls[1].Page)
}

func TestDirectoryDetailNotFoundView(t *testing.T) {
	_, svc, _ := directoryFixture()

	detail, err := svc.Detail(context.Background(), sessionFor(adminUser), "missing")
	require.NoError(t, err)
	assert.Nil(t, detail.User)
	require.NotNil(t, detail.NotFound)
	assert.Equal(t, DirectoryBackLink, detail.NotFound.BackLink)

	detail, err = svc.Detail(context.Background(), sessionFor(adminUser), adminUser.ID)
	require.NoError(t, err)
	assert.Equal(t, view.PlaceholderProtected, detail.Placeholder)
}

func TestDirectoryModeratorCannotActOnActiveUser(t *testing.T) {
	remote, svc, _ := directoryFixture()

	_, err := svc.Act(context.Background(), sessionFor(modUser), "u-active", permission.ActionDeactivate, false, nil)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Empty(t, remote.mutations)
}

func TestDirectoryDestructiveActionNeedsConfirmation(t *testing.T) {
	remote, svc, _ := directoryFixture()

	_, err := svc.Act(context.Background(), sessionFor(adminUser), "u-active", permission.ActionDelete, false, nil)
	assert.ErrorIs(t, err, appErrors.ErrConfirmationNeeded)
	assert.Empty(t, remote.mutations)

	res, err := svc.Act(context.Background(), sessionFor(adminUser), "u-active", permission.ActionDelete, true, nil)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, []string{"delete:users:u-active"}, remote.mutations)
}

func TestDirectoryPerformRefetchesCurrentPage(t *testing.T) {
	remote, svc, notifier := directoryFixture()
	d := listing.Descriptor{Page: 2, Limit: 10, Status: "pending"}

	resp, err := svc.Perform(context.Background(), sessionFor(modUser), "u-pending", dto.ActionRequest{Action: permission.ActionApprove}, d)
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, "User status updated", resp.Message)
	require.NotNil(t, resp.Page)
	assert.Equal(t, 2, resp.Page.Query.Page)
	assert.Equal(t, []string{"status:users:u-pending:active"}, remote.mutations)
	require.Len(t, notifier.items, 1)
	assert.Equal(t, dispatch.LevelSuccess, notifier.items[0].Level)
	assert.Equal(t, modUser.ID, notifier.items[0].ActorID)
}

func TestDirectoryPerformFailureSkipsRefetch(t *testing.T) {
	remote, svc, notifier := directoryFixture()
	remote.mutateErr = appErrors.Clone(appErrors.ErrConflict, "User was modified by someone else")

	resp, err := svc.Perform(context.Background(), sessionFor(adminUser), "u-active", dto.ActionRequest{Action: permission.ActionBlock, Confirmed: true}, listing.Descriptor{Page: 1, Limit: 10})
	require.Error(t, err)
	assert.False(t, resp.OK)
	assert.Equal(t, "User was modified by someone else", resp.Message)
	assert.Nil(t, resp.Page)
	assert.Zero(t, remote.userCallCount())
	require.Len(t, notifier.items, 1)
	assert.Equal(t, dispatch.LevelError, notifier.items[0].Level)
}

func TestDirectoryActOnMissingTarget(t *testing.T) {
	_, svc, _ := directoryFixture()

	res, err := svc.Act(context.Background(), sessionFor(adminUser), "ghost", permission.ActionApprove, false, nil)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Equal(t, "User not found", res.Message)
}

func TestExportServiceWalksPages(t *testing.T) {
	remote := &mockRemote{}
	remote.listUsers = func(d listing.Descriptor) (models.Page[models.User], error) {
		items := make([]models.User, 0, 2)
		for i := 0; i < 2; i++ {
			items = append(items, models.User{ID: fmt.Sprintf("u-%d-%d", d.Page, i), FirstName: "Alum", Email: "a@example.com", IsGraduated: true, GraduationYear: intPtr(2010)})
		}
		return pageOf(items, d.Page, d.Limit, 6), nil
	}
	svc := NewExportService(remote, ExportConfig{MaxPages: 10, PageSize: 2}, nil, nil, nil)

	file, err := svc.Directory(context.Background(), sessionFor(adminUser), listing.Descriptor{Page: 4, Status: "active"}, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 6, file.Rows)
	assert.False(t, file.Truncated)
	assert.Contains(t, file.Filename, ".csv")
	assert.Contains(t, string(file.Data), "Graduated 2010")
	require.Len(t, remote.userCalls, 3)
	for i, call := range remote.userCalls {
		assert.Equal(t, i+1, call.Page)
		assert.Equal(t, "active", call.Status)
	}
}

func TestExportServiceTruncatesAtMaxPages(t *testing.T) {
	remote := &mockRemote{}
	remote.listUsers = func(d listing.Descriptor) (models.Page[models.User], error) {
		return pageOf([]models.User{{ID: "x"}}, d.Page, d.Limit, 1000), nil
	}
	svc := NewExportService(remote, ExportConfig{MaxPages: 2, PageSize: 1}, nil, nil, nil)

	file, err := svc.Directory(context.Background(), sessionFor(adminUser), listing.Descriptor{}, ExportFormatPDF)
	require.NoError(t, err)
	assert.True(t, file.Truncated)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Len(t, remote.userCalls, 2)
}

func TestExportServiceRejectsUnknownFormatAndPlainUsers(t *testing.T) {
	svc := NewExportService(&mockRemote{}, ExportConfig{}, nil, nil, nil)

	_, err := svc.Directory(context.Background(), sessionFor(adminUser), listing.Descriptor{}, "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Directory(context.Background(), sessionFor(plainUser), listing.Descriptor{}, ExportFormatCSV)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}
