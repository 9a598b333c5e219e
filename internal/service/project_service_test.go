package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"capstone/internal/adapter/notification"
	"capstone/internal/dto"
	"capstone/internal/model"
	"capstone/pkg/constants"
	pkgErrors "capstone/pkg/errors"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, msg *notification.Message) error {
	return m.Called(msg).Error(0)
}

func TestCreateAndEditProject(t *testing.T) {
	e := newTestEnv(t)
	x := e.fx.Student("x")
	y := e.fx.Student("y")
	section := e.preProjectSection(t, x, y)
	team := e.teamOf(t, section, x)

	project := e.projectOf(t, team, x, "智能图书馆")
	assert.Equal(t, constants.ProjectStatusDraft, project.Status)

	_, err := e.svc.Project.CreateProject(e.ctx, as(x), team.ID, &dto.CreateProjectRequest{ProjectName: "第二个"})
	assert.Equal(t, pkgErrors.KindConflict, pkgErrors.KindOf(err))

	_, err = e.svc.Project.CreateProject(e.ctx, as(y), team.ID, &dto.CreateProjectRequest{ProjectName: "别人的"})
	assert.Equal(t, pkgErrors.KindForbidden, pkgErrors.KindOf(err))

	eng := "Smart Library"
	name := "智慧图书馆"
	updated, err := e.svc.Project.EditProject(e.ctx, as(x), project.ID, &dto.UpdateProjectRequest{
		ProjectName:    &name,
		ProjectNameEng: &eng,
	})
	require.NoError(t, err)
	assert.Equal(t, name, updated.ProjectName)
	require.NotNil(t, updated.ProjectNameEng)
	assert.Equal(t, eng, *updated.ProjectNameEng)
}

func TestProjectNameRequired(t *testing.T) {
	e := newTestEnv(t)
	x := e.fx.Student("x")
	section := e.preProjectSection(t, x)
	team := e.teamOf(t, section, x)

	_, err := e.svc.Project.CreateProject(e.ctx, as(x), team.ID, &dto.CreateProjectRequest{ProjectName: "  "})
	assert.Equal(t, pkgErrors.KindBadRequest, pkgErrors.KindOf(err))
	assert.Zero(t, e.fx.Count(&model.Project{}, "team_id = ?", team.ID))

	project := e.projectOf(t, team, x, "智能图书馆")
	blank := ""
	_, err = e.svc.Project.EditProject(e.ctx, as(x), project.ID, &dto.UpdateProjectRequest{ProjectName: &blank})
	assert.Equal(t, pkgErrors.KindBadRequest, pkgErrors.KindOf(err))

	stored, err := e.svc.Project.GetProject(e.ctx, as(x), project.ID)
	require.NoError(t, err)
	assert.Equal(t, "智能图书馆", stored.ProjectName)
}

// 教师A名下两个项目通过后达到上限, 第三个团队选择A失败
func TestAdvisorCapacity(t *testing.T) {
	e := newTestEnv(t)
	x := e.fx.Student("x")
	p := e.fx.Student("p")
	q := e.fx.Student("q")
	a := e.fx.Advisor("a")
	section := e.preProjectSection(t, x, p, q)

	t1 := e.teamOf(t, section, x)
	t2 := e.teamOf(t, section, p)
	t3 := e.teamOf(t, section, q)

	p1 := e.projectOf(t, t1, x, "P1")
	attached, err := e.svc.Advisor.AttachAdvisor(e.ctx, as(x), p1.ID, &dto.AttachAdvisorRequest{AdvisorID: a.ID})
	require.NoError(t, err)
	assert.Equal(t, constants.ProjectStatusPending, attached.Status)
	require.NotNil(t, attached.AdvisorID)
	assert.Equal(t, a.ID, *attached.AdvisorID)

	decided, err := e.svc.Project.Decide(e.ctx, as(a), p1.ID, &dto.DecideRequest{Decision: constants.DecisionApproved})
	require.NoError(t, err)
	assert.Equal(t, constants.ProjectStatusApproved, decided.Status)

	e.approvedProject(t, t2, p, a, "P2")

	advisors, err := e.svc.Advisor.ListAvailableAdvisors(e.ctx, as(q), nil)
	require.NoError(t, err)
	require.Len(t, advisors, 1)
	assert.Equal(t, int64(2), advisors[0].CurrentLoad)
	assert.False(t, advisors[0].CanSelect)
	assert.NotEmpty(t, advisors[0].Reason)

	p3 := e.projectOf(t, t3, q, "P3")
	_, err = e.svc.Advisor.AttachAdvisor(e.ctx, as(q), p3.ID, &dto.AttachAdvisorRequest{AdvisorID: a.ID})
	assert.Equal(t, pkgErrors.KindCapacityExceeded, pkgErrors.KindOf(err))

	got, err := e.svc.Project.GetProject(e.ctx, as(q), p3.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.ProjectStatusDraft, got.Status)
	assert.Nil(t, got.AdvisorID)
}

// 并发审批同一教师名下多个待审批项目, 通过数不超过上限
func TestConcurrentApprovalsRespectCapacity(t *testing.T) {
	e := newTestEnv(t)
	a := e.fx.Advisor("a")
	students := []*model.User{e.fx.Student("s1"), e.fx.Student("s2"), e.fx.Student("s3"), e.fx.Student("s4")}
	section := e.preProjectSection(t, students...)

	projects := make([]*dto.ProjectResponse, len(students))
	for i, s := range students {
		team := e.teamOf(t, section, s)
		projects[i] = e.projectOf(t, team, s, s.Username)
		_, err := e.svc.Advisor.AttachAdvisor(e.ctx, as(s), projects[i].ID, &dto.AttachAdvisorRequest{AdvisorID: a.ID})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(projects))
	for i, p := range projects {
		wg.Add(1)
		go func(i int, projectID int64) {
			defer wg.Done()
			_, errs[i] = e.svc.Project.Decide(e.ctx, as(a), projectID, &dto.DecideRequest{Decision: constants.DecisionApproved})
		}(i, p.ID)
	}
	wg.Wait()

	var approved, rejected int
	for _, err := range errs {
		if err == nil {
			approved++
			continue
		}
		assert.Equal(t, pkgErrors.KindCapacityExceeded, pkgErrors.KindOf(err))
		rejected++
	}
	assert.Equal(t, 2, approved)
	assert.Equal(t, 2, rejected)
	assert.Equal(t, int64(2), e.fx.Count(&model.Project{}, "status = ?", constants.ProjectStatusApproved))
}

func TestPendingAttachmentsDoNotCountAgainstCapacity(t *testing.T) {
	e := newTestEnv(t)
	a := e.fx.Advisor("a")
	students := []*model.User{e.fx.Student("s1"), e.fx.Student("s2"), e.fx.Student("s3")}
	section := e.preProjectSection(t, students...)

	var wg sync.WaitGroup
	errs := make([]error, len(students))
	projects := make([]*dto.ProjectResponse, len(students))
	for i, s := range students {
		team := e.teamOf(t, section, s)
		projects[i] = e.projectOf(t, team, s, s.Username)
	}
	for i, s := range students {
		wg.Add(1)
		go func(i int, s *model.User) {
			defer wg.Done()
			_, errs[i] = e.svc.Advisor.AttachAdvisor(e.ctx, as(s), projects[i].ID, &dto.AttachAdvisorRequest{AdvisorID: a.ID})
		}(i, s)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int64(3), e.fx.Count(&model.ProjectAdvisor{}, "advisor_id = ?", a.ID))
}

func TestDecidePreconditions(t *testing.T) {
	e := newTestEnv(t)
	x := e.fx.Student("x")
	a := e.fx.Advisor("a")
	b := e.fx.Advisor("b")
	section := e.preProjectSection(t, x)
	team := e.teamOf(t, section, x)
	project := e.projectOf(t, team, x, "P")

	_, err := e.svc.Project.Decide(e.ctx, as(a), project.ID, &dto.DecideRequest{Decision: constants.DecisionApproved})
	assert.Equal(t, pkgErrors.KindForbidden, pkgErrors.KindOf(err), "未分配的教师不能审批")

	_, err = e.svc.Advisor.AttachAdvisor(e.ctx, as(x), project.ID, &dto.AttachAdvisorRequest{AdvisorID: a.ID})
	require.NoError(t, err)

	_, err = e.svc.Project.Decide(e.ctx, as(b), project.ID, &dto.DecideRequest{Decision: constants.DecisionApproved})
	assert.Equal(t, pkgErrors.KindForbidden, pkgErrors.KindOf(err))

	_, err = e.svc.Project.Decide(e.ctx, as(x), project.ID, &dto.DecideRequest{Decision: constants.DecisionApproved})
	assert.Equal(t, pkgErrors.KindForbidden, pkgErrors.KindOf(err), "学生没有审批权限")

	comment := "范围过大"
	rejected, err := e.svc.Project.Decide(e.ctx, as(a), project.ID, &dto.DecideRequest{Decision: constants.DecisionRejected, Comment: &comment})
	require.NoError(t, err)
	assert.Equal(t, constants.ProjectStatusRejected, rejected.Status)

	_, err = e.svc.Project.Decide(e.ctx, as(a), project.ID, &dto.DecideRequest{Decision: constants.DecisionApproved})
	assert.Equal(t, pkgErrors.KindInvalidTransition, pkgErrors.KindOf(err))
}

func TestRejectedProjectReattachKeepsHistory(t *testing.T) {
	e := newTestEnv(t)
	x := e.fx.Student("x")
	a := e.fx.Advisor("a")
	b := e.fx.Advisor("b")
	section := e.preProjectSection(t, x)
	team := e.teamOf(t, section, x)
	project := e.projectOf(t, team, x, "P")

	_, err := e.svc.Advisor.AttachAdvisor(e.ctx, as(x), project.ID, &dto.AttachAdvisorRequest{AdvisorID: a.ID})
	require.NoError(t, err)
	comment := "请补充可行性分析"
	_, err = e.svc.Project.Decide(e.ctx, as(a), project.ID, &dto.DecideRequest{Decision: constants.DecisionRejected, Comment: &comment})
	require.NoError(t, err)

	_, err = e.svc.Advisor.DetachAdvisor(e.ctx, as(x), project.ID)
	assert.Equal(t, pkgErrors.KindInvalidTransition, pkgErrors.KindOf(err))

	reattached, err := e.svc.Advisor.AttachAdvisor(e.ctx, as(x), project.ID, &dto.AttachAdvisorRequest{AdvisorID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, constants.ProjectStatusPending, reattached.Status)
	assert.Equal(t, b.ID, *reattached.AdvisorID)
	assert.Equal(t, int64(1), e.fx.Count(&model.ProjectAdvisor{}, "project_id = ?", project.ID))

	got, err := e.svc.Project.GetProject(e.ctx, as(x), project.ID)
	require.NoError(t, err)
	require.Len(t, got.Reviews, 1)
	assert.Equal(t, constants.DecisionRejected, got.Reviews[0].Decision)
	assert.Equal(t, a.ID, got.Reviews[0].AdvisorID)
	require.NotNil(t, got.LastReviewComment)
	assert.Equal(t, comment, *got.LastReviewComment)

	_, err = e.svc.Project.Decide(e.ctx, as(a), project.ID, &dto.DecideRequest{Decision: constants.DecisionApproved})
	assert.Equal(t, pkgErrors.KindForbidden, pkgErrors.KindOf(err), "原教师不再能审批")
}

func TestDetachAdvisor(t *testing.T) {
	e := newTestEnv(t)
	x := e.fx.Student("x")
	a := e.fx.Advisor("a")
	section := e.preProjectSection(t, x)
	team := e.teamOf(t, section, x)
	project := e.projectOf(t, team, x, "P")

	_, err := e.svc.Advisor.DetachAdvisor(e.ctx, as(x), project.ID)
	assert.Equal(t, pkgErrors.KindInvalidTransition, pkgErrors.KindOf(err))

	_, err = e.svc.Advisor.AttachAdvisor(e.ctx, as(x), project.ID, &dto.AttachAdvisorRequest{AdvisorID: a.ID})
	require.NoError(t, err)

	detached, err := e.svc.Advisor.DetachAdvisor(e.ctx, as(x), project.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.ProjectStatusDraft, detached.Status)
	assert.Nil(t, detached.AdvisorID)
	assert.Zero(t, e.fx.Count(&model.ProjectAdvisor{}, "project_id = ?", project.ID))
}

func TestApprovedProjectIsTerminal(t *testing.T) {
	e := newTestEnv(t)
	x := e.fx.Student("x")
	a := e.fx.Advisor("a")
	b := e.fx.Advisor("b")
	section := e.preProjectSection(t, x)
	team := e.teamOf(t, section, x)
	project := e.approvedProject(t, team, x, a, "P")

	name := "改名"
	_, err := e.svc.Project.EditProject(e.ctx, as(x), project.ID, &dto.UpdateProjectRequest{ProjectName: &name})
	assert.Equal(t, pkgErrors.KindForbidden, pkgErrors.KindOf(err))

	err = e.svc.Project.DeleteProject(e.ctx, as(x), project.ID)
	assert.Equal(t, pkgErrors.KindForbidden, pkgErrors.KindOf(err))

	_, err = e.svc.Advisor.AttachAdvisor(e.ctx, as(x), project.ID, &dto.AttachAdvisorRequest{AdvisorID: b.ID})
	assert.Equal(t, pkgErrors.KindForbidden, pkgErrors.KindOf(err))

	_, err = e.svc.Advisor.DetachAdvisor(e.ctx, as(x), project.ID)
	assert.Equal(t, pkgErrors.KindForbidden, pkgErrors.KindOf(err))

	_, err = e.svc.Project.Decide(e.ctx, as(a), project.ID, &dto.DecideRequest{Decision: constants.DecisionRejected})
	assert.Equal(t, pkgErrors.KindInvalidTransition, pkgErrors.KindOf(err))
}

func TestDeleteProject(t *testing.T) {
	e := newTestEnv(t)
	x := e.fx.Student("x")
	a := e.fx.Advisor("a")
	section := e.preProjectSection(t, x)
	team := e.teamOf(t, section, x)
	project := e.projectOf(t, team, x, "P")
	_, err := e.svc.Advisor.AttachAdvisor(e.ctx, as(x), project.ID, &dto.AttachAdvisorRequest{AdvisorID: a.ID})
	require.NoError(t, err)

	require.NoError(t, e.svc.Project.DeleteProject(e.ctx, as(x), project.ID))
	assert.Zero(t, e.fx.Count(&model.Project{}, "id = ?", project.ID))
	assert.Zero(t, e.fx.Count(&model.ProjectAdvisor{}, "project_id = ?", project.ID))
	assert.Equal(t, int64(1), e.fx.Count(&model.Team{}, "id = ?", team.ID))

	// 删除后可以重新创建
	e.projectOf(t, team, x, "P2")
}

func TestListAvailableAdvisorsSorted(t *testing.T) {
	e := newTestEnv(t)
	a := e.fx.Advisor("a")
	b := e.fx.Advisor("b")
	c := e.fx.Advisor("c")
	x := e.fx.Student("x")
	y := e.fx.Student("y")
	section := e.preProjectSection(t, x, y)

	e.approvedProject(t, e.teamOf(t, section, x), x, a, "P1")
	yTeam := e.teamOf(t, section, y)
	pending := e.projectOf(t, yTeam, y, "P2")
	_, err := e.svc.Advisor.AttachAdvisor(e.ctx, as(y), pending.ID, &dto.AttachAdvisorRequest{AdvisorID: c.ID})
	require.NoError(t, err)

	list, err := e.svc.Advisor.ListAvailableAdvisors(e.ctx, as(y), &pending.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, b.ID, list[0].Advisor.ID)
	assert.Equal(t, c.ID, list[1].Advisor.ID)
	assert.Equal(t, a.ID, list[2].Advisor.ID)
	assert.Equal(t, int64(1), list[2].CurrentLoad)
	assert.Equal(t, "当前指导教师", list[1].Reason)
	for _, item := range list {
		assert.True(t, item.CanSelect)
	}
}

func TestAttachNotifiesAdvisorAfterCommit(t *testing.T) {
	n := new(mockNotifier)
	e := newTestEnvWithNotifier(t, n)
	x := e.fx.Student("x")
	a := e.fx.Advisor("a")
	section := e.preProjectSection(t, x)
	team := e.teamOf(t, section, x)
	project := e.projectOf(t, team, x, "P")

	n.On("Send", mock.MatchedBy(func(msg *notification.Message) bool {
		return msg.UserID == a.ID && msg.Type == constants.NotificationTypeAdvisorAttach
	})).Return(nil).Once()

	_, err := e.svc.Advisor.AttachAdvisor(e.ctx, as(x), project.ID, &dto.AttachAdvisorRequest{AdvisorID: a.ID})
	require.NoError(t, err)
	n.AssertExpectations(t)

	assert.Equal(t, int64(1), e.fx.Count(&model.Notification{}, "user_id = ? AND project_id = ?", a.ID, project.ID))
}
