package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capstone/internal/dto"
	"capstone/internal/model"
	"capstone/pkg/constants"
	pkgErrors "capstone/pkg/errors"
)

func TestUpsertUser(t *testing.T) {
	e := newTestEnv(t)
	admin := e.fx.Admin("admin")
	x := e.fx.Student("x")

	name := "Somchai"
	created, err := e.svc.User.UpsertUser(e.ctx, as(admin), &dto.UpsertUserRequest{
		Username:    "somchai",
		DisplayName: &name,
		Role:        constants.RoleStudent,
	})
	require.NoError(t, err)
	assert.Equal(t, constants.RoleStudent, created.Role)
	require.NotNil(t, created.DisplayName)
	assert.Equal(t, "Somchai", *created.DisplayName)

	// 同名用户更新角色而不是新建
	updated, err := e.svc.User.UpsertUser(e.ctx, as(admin), &dto.UpsertUserRequest{
		Username: "somchai",
		Role:     constants.RoleAdvisor,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, constants.RoleAdvisor, updated.Role)
	assert.Equal(t, int64(1), e.fx.Count(&model.User{}, "username = ?", "somchai"))

	_, err = e.svc.User.UpsertUser(e.ctx, as(x), &dto.UpsertUserRequest{Username: "other", Role: constants.RoleAdmin})
	assert.Equal(t, pkgErrors.KindForbidden, pkgErrors.KindOf(err))
}

func TestResolveCaller(t *testing.T) {
	e := newTestEnv(t)
	a := e.fx.Advisor("a")

	caller, err := e.svc.User.Resolve(e.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, caller.UserID)
	assert.Equal(t, constants.RoleAdvisor, caller.Role)

	_, err = e.svc.User.Resolve(e.ctx, 9999)
	assert.Equal(t, pkgErrors.KindUnauthorized, pkgErrors.KindOf(err))

	_, err = e.svc.User.GetUser(e.ctx, as(a), 9999)
	assert.Equal(t, pkgErrors.KindNotFound, pkgErrors.KindOf(err))
}

func TestNotificationsInbox(t *testing.T) {
	e := newTestEnv(t)
	x := e.fx.Student("x")
	y := e.fx.Student("y")
	section := e.preProjectSection(t, x, y)
	team := e.teamOf(t, section, x)

	_, err := e.svc.Team.InviteMember(e.ctx, as(x), team.ID, &dto.InviteMemberRequest{UserID: y.ID})
	require.NoError(t, err)

	inbox, err := e.svc.Notification.ListMine(e.ctx, as(y), true)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, constants.NotificationTypeInvitation, inbox[0].Type)
	assert.False(t, inbox[0].Read)
	require.NotNil(t, inbox[0].TeamID)
	assert.Equal(t, team.ID, *inbox[0].TeamID)

	err = e.svc.Notification.MarkRead(e.ctx, as(x), inbox[0].ID)
	assert.Equal(t, pkgErrors.KindNotFound, pkgErrors.KindOf(err))

	require.NoError(t, e.svc.Notification.MarkRead(e.ctx, as(y), inbox[0].ID))

	unread, err := e.svc.Notification.ListMine(e.ctx, as(y), true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	all, err := e.svc.Notification.ListMine(e.ctx, as(y), false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Read)

	err = e.svc.Notification.MarkRead(e.ctx, as(y), inbox[0].ID)
	assert.Equal(t, pkgErrors.KindNotFound, pkgErrors.KindOf(err))
}
