package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"capstone/internal/adapter/notification"
	"capstone/internal/dto"
	"capstone/internal/model"
	"capstone/internal/pkg/testutil"
	"capstone/pkg/constants"
)

type testEnv struct {
	ctx context.Context
	db  *gorm.DB
	fx  *testutil.Fixture
	svc *Services
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithNotifier(t, notification.NewLogNotifier(zap.NewNop()))
}

func newTestEnvWithNotifier(t *testing.T, notifier notification.Notifier) *testEnv {
	db := testutil.NewDB(t)
	return &testEnv{
		ctx: context.Background(),
		db:  db,
		fx:  testutil.NewFixture(t, db),
		svc: NewServices(db, notifier, DefaultOptions(), zap.NewNop()),
	}
}

func as(u *model.User) *dto.Caller {
	return &dto.Caller{UserID: u.ID, Role: u.Role}
}

// preProjectSection 创建 1/2568 学期的预备阶段班级并为学生选课
func (e *testEnv) preProjectSection(t *testing.T, students ...*model.User) *model.Section {
	term := e.fx.Term(2568, 1)
	section := e.fx.Section(term, "CP-01", constants.CourseTypePreProject)
	e.fx.Enroll(section, students...)
	return section
}

// teamOf 学生创建团队并邀请其他成员加入
func (e *testEnv) teamOf(t *testing.T, section *model.Section, creator *model.User, others ...*model.User) *dto.TeamResponse {
	t.Helper()
	team, err := e.svc.Team.CreateTeam(e.ctx, as(creator), &dto.CreateTeamRequest{SectionID: &section.ID})
	require.NoError(t, err)
	for _, u := range others {
		inv, err := e.svc.Team.InviteMember(e.ctx, as(creator), team.ID, &dto.InviteMemberRequest{UserID: u.ID})
		require.NoError(t, err)
		team, err = e.svc.Invitation.Accept(e.ctx, as(u), inv.ID)
		require.NoError(t, err)
	}
	return team
}

// projectOf 为团队创建项目
func (e *testEnv) projectOf(t *testing.T, team *dto.TeamResponse, member *model.User, name string) *dto.ProjectResponse {
	t.Helper()
	project, err := e.svc.Project.CreateProject(e.ctx, as(member), team.ID, &dto.CreateProjectRequest{ProjectName: name})
	require.NoError(t, err)
	return project
}

// approvedProject 创建项目, 选择指导教师并审批通过
func (e *testEnv) approvedProject(t *testing.T, team *dto.TeamResponse, member, advisor *model.User, name string) *dto.ProjectResponse {
	t.Helper()
	project := e.projectOf(t, team, member, name)
	_, err := e.svc.Advisor.AttachAdvisor(e.ctx, as(member), project.ID, &dto.AttachAdvisorRequest{AdvisorID: advisor.ID})
	require.NoError(t, err)
	project, err = e.svc.Project.Decide(e.ctx, as(advisor), project.ID, &dto.DecideRequest{Decision: constants.DecisionApproved})
	require.NoError(t, err)
	return project
}

// failWrites 对指定表的删除与更新注入错误, 用于验证事务整体回滚
func failWrites(t *testing.T, db *gorm.DB, table string) {
	t.Helper()
	inject := func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(errors.New("injected failure"))
		}
	}
	require.NoError(t, db.Callback().Delete().Before("gorm:delete").Register("test:fail_delete", inject))
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test:fail_update", inject))
}
