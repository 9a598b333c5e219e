package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capstone/internal/dto"
	"capstone/internal/model"
	"capstone/pkg/constants"
	pkgErrors "capstone/pkg/errors"
)

func ageInvitation(t *testing.T, e *testEnv, id int64, age time.Duration) {
	t.Helper()
	require.NoError(t, e.db.Model(&model.Invitation{}).Where("id = ?", id).
		Update("created_at", time.Now().Add(-age)).Error)
}

func TestListPendingInvitations(t *testing.T) {
	e := newTestEnv(t)
	x := e.fx.Student("x")
	y := e.fx.Student("y")
	z := e.fx.Student("z")
	section := e.preProjectSection(t, x, y, z)
	tx := e.teamOf(t, section, x)
	ty := e.teamOf(t, section, y)

	fromX, err := e.svc.Team.InviteMember(e.ctx, as(x), tx.ID, &dto.InviteMemberRequest{UserID: z.ID})
	require.NoError(t, err)
	_, err = e.svc.Team.InviteMember(e.ctx, as(y), ty.ID, &dto.InviteMemberRequest{UserID: z.ID})
	require.NoError(t, err)

	pending, err := e.svc.Invitation.ListPending(e.ctx, as(z))
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	ageInvitation(t, e, fromX.ID, DefaultOptions().InvitationTTL+time.Hour)

	pending, err = e.svc.Invitation.ListPending(e.ctx, as(z))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, ty.ID, pending[0].TeamID)

	_, err = e.svc.Invitation.Accept(e.ctx, as(z), fromX.ID)
	assert.Equal(t, pkgErrors.KindNotFound, pkgErrors.KindOf(err))

	others, err := e.svc.Invitation.ListPending(e.ctx, as(x))
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestPurgeExpiredInvitations(t *testing.T) {
	e := newTestEnv(t)
	x := e.fx.Student("x")
	y := e.fx.Student("y")
	z := e.fx.Student("z")
	section := e.preProjectSection(t, x, y, z)
	team := e.teamOf(t, section, x)

	stale, err := e.svc.Team.InviteMember(e.ctx, as(x), team.ID, &dto.InviteMemberRequest{UserID: y.ID})
	require.NoError(t, err)
	fresh, err := e.svc.Team.InviteMember(e.ctx, as(x), team.ID, &dto.InviteMemberRequest{UserID: z.ID})
	require.NoError(t, err)
	ageInvitation(t, e, stale.ID, 30*24*time.Hour)

	deleted, err := e.svc.Invitation.PurgeExpired(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Zero(t, e.fx.Count(&model.Invitation{}, "id = ?", stale.ID))
	assert.Equal(t, int64(1), e.fx.Count(&model.Invitation{}, "id = ?", fresh.ID))

	// 过期邀请清理后可以重新邀请
	_, err = e.svc.Team.InviteMember(e.ctx, as(x), team.ID, &dto.InviteMemberRequest{UserID: y.ID})
	require.NoError(t, err)
}

func TestPurgeKeepsAcceptedInvitations(t *testing.T) {
	e := newTestEnv(t)
	x := e.fx.Student("x")
	y := e.fx.Student("y")
	section := e.preProjectSection(t, x, y)
	team := e.teamOf(t, section, x)

	inv, err := e.svc.Team.InviteMember(e.ctx, as(x), team.ID, &dto.InviteMemberRequest{UserID: y.ID})
	require.NoError(t, err)
	_, err = e.svc.Invitation.Accept(e.ctx, as(y), inv.ID)
	require.NoError(t, err)
	ageInvitation(t, e, inv.ID, 30*24*time.Hour)

	deleted, err := e.svc.Invitation.PurgeExpired(e.ctx)
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.Equal(t, int64(1), e.fx.Count(&model.Invitation{}, "id = ? AND status = ?", inv.ID, constants.InvitationStatusAccepted))
}
