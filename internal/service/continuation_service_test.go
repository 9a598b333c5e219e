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

// 管理员将T1续接到2/2568学期, 只迁移T1并复制其成员的选课记录
func TestContinueToProject(t *testing.T) {
	e := newTestEnv(t)
	admin := e.fx.Admin("admin")
	x := e.fx.Student("x")
	y := e.fx.Student("y")
	z := e.fx.Student("z")
	a := e.fx.Advisor("a")
	section := e.preProjectSection(t, x, y, z)
	nextTerm := e.fx.Term(2568, 2)

	t1 := e.teamOf(t, section, x, y)
	t2 := e.teamOf(t, section, z)
	p := e.approvedProject(t, t1, x, a, "P")

	resp, err := e.svc.Continuation.ContinueToProject(e.ctx, as(admin), section.ID, &dto.ContinueSectionRequest{
		TermID:  nextTerm.ID,
		TeamIDs: []int64{t1.ID},
	})
	require.NoError(t, err)

	newSection := resp.Section
	assert.NotEqual(t, section.ID, newSection.ID)
	assert.Equal(t, constants.CourseTypeProject, newSection.CourseType)
	assert.Equal(t, nextTerm.ID, newSection.TermID)
	assert.Equal(t, section.MinTeamSize, newSection.MinTeamSize)
	assert.Equal(t, section.MaxTeamSize, newSection.MaxTeamSize)
	assert.Equal(t, section.SectionCode, newSection.SectionCode)
	require.NotNil(t, newSection.ContinuedFromID)
	assert.Equal(t, section.ID, *newSection.ContinuedFromID)
	assert.Equal(t, int64(1), resp.TeamsMoved)
	assert.Equal(t, int64(2), resp.EnrollmentsCopied)

	moved, err := e.svc.Team.GetTeam(e.ctx, as(admin), t1.ID)
	require.NoError(t, err)
	assert.Equal(t, newSection.ID, moved.SectionID)
	assert.Equal(t, t1.GroupNumber, moved.GroupNumber)
	assert.Equal(t, t1.CohortTermID, moved.CohortTermID)
	require.NotNil(t, moved.Project)
	assert.Equal(t, p.ID, moved.Project.ID)
	assert.Equal(t, constants.ProjectStatusApproved, moved.Project.Status)

	assert.Equal(t, int64(2), e.fx.Count(&model.Enrollment{}, "section_id = ?", newSection.ID))
	assert.Zero(t, e.fx.Count(&model.Enrollment{}, "section_id = ? AND user_id = ?", newSection.ID, z.ID))
	assert.Equal(t, int64(3), e.fx.Count(&model.Enrollment{}, "section_id = ?", section.ID))

	untouched, err := e.svc.Team.GetTeam(e.ctx, as(admin), t2.ID)
	require.NoError(t, err)
	assert.Equal(t, section.ID, untouched.SectionID)
}

func TestContinueToProjectIsIdempotent(t *testing.T) {
	e := newTestEnv(t)
	admin := e.fx.Admin("admin")
	x := e.fx.Student("x")
	y := e.fx.Student("y")
	section := e.preProjectSection(t, x, y)
	nextTerm := e.fx.Term(2568, 2)
	t1 := e.teamOf(t, section, x, y)

	req := &dto.ContinueSectionRequest{TermID: nextTerm.ID, TeamIDs: []int64{t1.ID}}
	first, err := e.svc.Continuation.ContinueToProject(e.ctx, as(admin), section.ID, req)
	require.NoError(t, err)

	second, err := e.svc.Continuation.ContinueToProject(e.ctx, as(admin), section.ID, req)
	require.NoError(t, err)
	assert.Equal(t, first.Section.ID, second.Section.ID)
	assert.Zero(t, second.TeamsMoved)
	assert.Zero(t, second.EnrollmentsCopied)

	assert.Equal(t, int64(2), e.fx.Count(&model.Enrollment{}, "section_id = ?", first.Section.ID))
	assert.Equal(t, int64(1), e.fx.Count(&model.Section{}, "continued_from_id = ?", section.ID))
}

func TestContinueAllTeamsInBatches(t *testing.T) {
	e := newTestEnv(t)
	admin := e.fx.Admin("admin")
	x := e.fx.Student("x")
	y := e.fx.Student("y")
	section := e.preProjectSection(t, x, y)
	nextTerm := e.fx.Term(2568, 2)
	t1 := e.teamOf(t, section, x)
	e.teamOf(t, section, y)

	first, err := e.svc.Continuation.ContinueToProject(e.ctx, as(admin), section.ID, &dto.ContinueSectionRequest{
		TermID:  nextTerm.ID,
		TeamIDs: []int64{t1.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.TeamsMoved)

	// 不指定团队时迁移剩余全部团队, 已续接的团队不重复计数
	rest, err := e.svc.Continuation.ContinueToProject(e.ctx, as(admin), section.ID, &dto.ContinueSectionRequest{TermID: nextTerm.ID})
	require.NoError(t, err)
	assert.Equal(t, first.Section.ID, rest.Section.ID)
	assert.Equal(t, int64(1), rest.TeamsMoved)
	assert.Equal(t, int64(1), rest.EnrollmentsCopied)
	assert.Zero(t, e.fx.Count(&model.Team{}, "section_id = ?", section.ID))
}

func TestContinueToProjectPreconditions(t *testing.T) {
	e := newTestEnv(t)
	admin := e.fx.Admin("admin")
	x := e.fx.Student("x")
	section := e.preProjectSection(t, x)
	nextTerm := e.fx.Term(2568, 2)
	projectSection := e.fx.Section(nextTerm, "CP-02", constants.CourseTypeProject)

	_, err := e.svc.Continuation.ContinueToProject(e.ctx, as(x), section.ID, &dto.ContinueSectionRequest{TermID: nextTerm.ID})
	assert.Equal(t, pkgErrors.KindForbidden, pkgErrors.KindOf(err))

	_, err = e.svc.Continuation.ContinueToProject(e.ctx, as(admin), projectSection.ID, &dto.ContinueSectionRequest{TermID: nextTerm.ID})
	assert.Equal(t, pkgErrors.KindInvalidTransition, pkgErrors.KindOf(err))

	_, err = e.svc.Continuation.ContinueToProject(e.ctx, as(admin), section.ID, &dto.ContinueSectionRequest{TermID: 9999})
	assert.Equal(t, pkgErrors.KindNotFound, pkgErrors.KindOf(err))

	_, err = e.svc.Continuation.ContinueToProject(e.ctx, as(admin), section.ID, &dto.ContinueSectionRequest{TermID: nextTerm.ID})
	assert.Equal(t, pkgErrors.KindEmptySelection, pkgErrors.KindOf(err))

	team := e.teamOf(t, section, x)
	_, err = e.svc.Continuation.ContinueToProject(e.ctx, as(admin), section.ID, &dto.ContinueSectionRequest{
		TermID:  nextTerm.ID,
		TeamIDs: []int64{team.ID + 100},
	})
	assert.Equal(t, pkgErrors.KindEmptySelection, pkgErrors.KindOf(err))

	// 失败的续接不留下新班级
	assert.Equal(t, int64(0), e.fx.Count(&model.Section{}, "continued_from_id = ?", section.ID))
}

// 续接后待处理邀请随团队迁移, 在新班级接受时一并关闭同班级的其他邀请
func TestContinueToProjectMovesPendingInvitations(t *testing.T) {
	e := newTestEnv(t)
	admin := e.fx.Admin("admin")
	x := e.fx.Student("x")
	w := e.fx.Student("w")
	y := e.fx.Student("y")
	z := e.fx.Student("z")
	section := e.preProjectSection(t, x, w, y, z)
	nextTerm := e.fx.Term(2568, 2)

	t1 := e.teamOf(t, section, x)
	t2 := e.teamOf(t, section, y)
	t3 := e.teamOf(t, section, w)
	inv1, err := e.svc.Team.InviteMember(e.ctx, as(x), t1.ID, &dto.InviteMemberRequest{UserID: z.ID})
	require.NoError(t, err)
	inv2, err := e.svc.Team.InviteMember(e.ctx, as(y), t2.ID, &dto.InviteMemberRequest{UserID: z.ID})
	require.NoError(t, err)
	inv3, err := e.svc.Team.InviteMember(e.ctx, as(w), t3.ID, &dto.InviteMemberRequest{UserID: z.ID})
	require.NoError(t, err)

	resp, err := e.svc.Continuation.ContinueToProject(e.ctx, as(admin), section.ID, &dto.ContinueSectionRequest{
		TermID:  nextTerm.ID,
		TeamIDs: []int64{t1.ID, t3.ID},
	})
	require.NoError(t, err)
	newSectionID := resp.Section.ID

	assert.Equal(t, int64(1), e.fx.Count(&model.Invitation{}, "id = ? AND section_id = ?", inv1.ID, newSectionID))
	assert.Equal(t, int64(1), e.fx.Count(&model.Invitation{}, "id = ? AND section_id = ?", inv3.ID, newSectionID))
	assert.Equal(t, int64(1), e.fx.Count(&model.Invitation{}, "id = ? AND section_id = ?", inv2.ID, section.ID))

	var newSection model.Section
	require.NoError(t, e.db.First(&newSection, newSectionID).Error)
	e.fx.Enroll(&newSection, z)

	_, err = e.svc.Invitation.Accept(e.ctx, as(z), inv1.ID)
	require.NoError(t, err)

	assert.Zero(t, e.fx.Count(&model.Invitation{}, "id = ?", inv3.ID))
	assert.Equal(t, int64(1), e.fx.Count(&model.Invitation{}, "id = ? AND status = ?", inv2.ID, constants.InvitationStatusPending))
}

func TestContinueToProjectRollsBackOnFailure(t *testing.T) {
	e := newTestEnv(t)
	admin := e.fx.Admin("admin")
	x := e.fx.Student("x")
	y := e.fx.Student("y")
	a := e.fx.Advisor("a")
	section := e.preProjectSection(t, x, y)
	nextTerm := e.fx.Term(2568, 2)

	t1 := e.teamOf(t, section, x, y)
	p := e.approvedProject(t, t1, x, a, "P")

	failWrites(t, e.db, model.TeamTableName)

	_, err := e.svc.Continuation.ContinueToProject(e.ctx, as(admin), section.ID, &dto.ContinueSectionRequest{
		TermID:  nextTerm.ID,
		TeamIDs: []int64{t1.ID},
	})
	require.Error(t, err)

	assert.Zero(t, e.fx.Count(&model.Section{}, "continued_from_id = ?", section.ID))
	assert.Zero(t, e.fx.Count(&model.Enrollment{}, "section_id <> ?", section.ID))
	assert.Equal(t, int64(1), e.fx.Count(&model.Team{}, "id = ? AND section_id = ?", t1.ID, section.ID))
	assert.Equal(t, int64(2), e.fx.Count(&model.TeamMember{}, "team_id = ?", t1.ID))
	assert.Equal(t, int64(1), e.fx.Count(&model.Project{}, "id = ? AND status = ?", p.ID, constants.ProjectStatusApproved))
}
