package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"capstone/internal/adapter/notification"
	"capstone/internal/core/cascade"
	"capstone/internal/dto"
	"capstone/internal/model"
	"capstone/internal/pkg/auth"
	"capstone/internal/pkg/metrics"
	"capstone/internal/repository"
	"capstone/pkg/constants"
	pkgErrors "capstone/pkg/errors"
)

type TeamService interface {
	CreateTeam(ctx context.Context, caller *dto.Caller, req *dto.CreateTeamRequest) (*dto.TeamResponse, error)
	InviteMember(ctx context.Context, caller *dto.Caller, teamID int64, req *dto.InviteMemberRequest) (*dto.InvitationResponse, error)
	AcceptInvitation(ctx context.Context, caller *dto.Caller, invitationID int64) (*dto.TeamResponse, error)
	RejectInvitation(ctx context.Context, caller *dto.Caller, invitationID int64) error
	RemoveMember(ctx context.Context, caller *dto.Caller, teamID, userID int64) error
	LeaveTeam(ctx context.Context, caller *dto.Caller, teamID int64) (*dto.LeaveTeamResponse, error)
	DeleteTeam(ctx context.Context, caller *dto.Caller, teamID int64) error
	GetTeam(ctx context.Context, caller *dto.Caller, teamID int64) (*dto.TeamResponse, error)
	ListTeams(ctx context.Context, caller *dto.Caller, sectionID *int64) ([]*dto.TeamResponse, error)
	MyTeam(ctx context.Context, caller *dto.Caller) (*dto.TeamResponse, error)
}

type teamService struct {
	db       *gorm.DB
	notifier notification.Notifier
	opts     Options
	logger   *zap.Logger
}

func NewTeamService(db *gorm.DB, notifier notification.Notifier, opts Options, logger *zap.Logger) TeamService {
	return &teamService{
		db:       db,
		notifier: notifier,
		opts:     opts,
		logger:   logger,
	}
}

// teamScope 成员变更时加锁读取的团队上下文
type teamScope struct {
	team    *model.Team
	section *model.Section
	project *model.Project
}

// lockTeam 依次锁定班级行和团队行并加载项目
// 班级行与 CreateTeam 共用, 同一班级内的成员变更由此串行化, 加锁顺序固定为先班级后团队
func lockTeam(repos *repository.Repository, teamID int64) (*teamScope, error) {
	current, err := repos.Team.FindByID(teamID)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, pkgErrors.Newf(pkgErrors.ErrNotFound, "团队不存在")
		}
		return nil, err
	}
	section, err := repos.Section.FindByID(current.SectionID, repository.WithLock())
	if err != nil {
		return nil, err
	}
	team, err := repos.Team.FindByID(teamID, repository.WithLock())
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, pkgErrors.Newf(pkgErrors.ErrNotFound, "团队不存在")
		}
		return nil, err
	}
	if team.SectionID != section.ID {
		return nil, pkgErrors.Newf(pkgErrors.ErrConflict, "团队所在班级已变更, 请重试")
	}
	scope := &teamScope{team: team, section: section}
	project, err := repos.Project.FindByTeamID(team.ID)
	if err == nil {
		scope.project = project
	} else if !errors.Is(err, pkgErrors.ErrRecordNotFound) {
		return nil, err
	}
	return scope, nil
}

func (sc *teamScope) projectApproved() bool {
	return sc.project != nil && sc.project.Status == constants.ProjectStatusApproved
}

// checkMembershipChange 成员变更的公共前置条件
func (sc *teamScope) checkMembershipChange(caller *dto.Caller) error {
	if sc.projectApproved() {
		return pkgErrors.ErrProjectApproved
	}
	if sc.section.TeamLocked && !auth.IsAdmin(caller) {
		return pkgErrors.ErrTeamLocked
	}
	return nil
}

func requireMember(repos *repository.Repository, caller *dto.Caller, teamID int64) error {
	if auth.IsAdmin(caller) {
		return nil
	}
	ok, err := repos.TeamMember.IsMember(teamID, caller.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return pkgErrors.ErrNotTeamMember
	}
	return nil
}

func (s *teamService) CreateTeam(ctx context.Context, caller *dto.Caller, req *dto.CreateTeamRequest) (*dto.TeamResponse, error) {
	if err := auth.Require(caller, auth.PermTeamCreate); err != nil {
		return nil, err
	}
	if caller.Role != constants.RoleStudent {
		return nil, pkgErrors.Newf(pkgErrors.ErrForbidden, "仅学生可以创建团队")
	}

	var team *model.Team
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepository(tx)

		section, err := s.resolveSection(repos, caller.UserID, req.SectionID)
		if err != nil {
			return err
		}
		if section.TeamLocked {
			return pkgErrors.ErrTeamLocked
		}

		teamed, err := repos.TeamMember.HasTeamInSection(caller.UserID, section.ID)
		if err != nil {
			return err
		}
		if teamed {
			return pkgErrors.ErrAlreadyTeamed
		}

		groupNumber, err := repos.Team.NextGroupNumber(section.TermID, s.opts.GroupNumberWidth)
		if err != nil {
			return err
		}

		team = &model.Team{
			SectionID:    section.ID,
			CohortTermID: section.TermID,
			GroupNumber:  groupNumber,
			Name:         req.Name,
		}
		if err := repos.Team.Create(team); err != nil {
			return err
		}
		return repos.TeamMember.Create(&model.TeamMember{TeamID: team.ID, UserID: caller.UserID})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("创建团队",
		zap.Int64("team_id", team.ID),
		zap.Int64("section_id", team.SectionID),
		zap.String("group_number", team.GroupNumber),
		zap.Int64("creator_id", caller.UserID))

	return s.GetTeam(ctx, caller, team.ID)
}

// resolveSection 锁定目标班级, 与删除班级互斥
func (s *teamService) resolveSection(repos *repository.Repository, userID int64, sectionID *int64) (*model.Section, error) {
	if sectionID == nil {
		latest, err := repos.Section.FindLatestEnrolledUnlocked(userID)
		if err != nil {
			if errors.Is(err, pkgErrors.ErrRecordNotFound) {
				return nil, pkgErrors.ErrNoSectionAvailable
			}
			return nil, err
		}
		sectionID = &latest.ID
	}

	section, err := repos.Section.FindByID(*sectionID, repository.WithLock())
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, pkgErrors.ErrNoSectionAvailable
		}
		return nil, err
	}
	enrolled, err := repos.Enrollment.Exists(userID, section.ID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, pkgErrors.ErrNotEnrolled
	}
	return section, nil
}

func (s *teamService) InviteMember(ctx context.Context, caller *dto.Caller, teamID int64, req *dto.InviteMemberRequest) (*dto.InvitationResponse, error) {
	if err := auth.Require(caller, auth.PermTeamMember); err != nil {
		return nil, err
	}

	var invitation *model.Invitation
	var outbox []*model.Notification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepository(tx)

		scope, err := lockTeam(repos, teamID)
		if err != nil {
			return err
		}
		if err := requireMember(repos, caller, teamID); err != nil {
			return err
		}
		if err := scope.checkMembershipChange(caller); err != nil {
			return err
		}

		candidate, err := repos.User.FindByID(req.UserID)
		if err != nil {
			if errors.Is(err, pkgErrors.ErrRecordNotFound) {
				return pkgErrors.Newf(pkgErrors.ErrNotFound, "被邀请用户不存在")
			}
			return err
		}
		if candidate.Role != constants.RoleStudent {
			return pkgErrors.Newf(pkgErrors.ErrBadRequest, "只能邀请学生加入团队")
		}

		teamed, err := repos.TeamMember.HasTeamInSection(candidate.ID, scope.section.ID)
		if err != nil {
			return err
		}
		if teamed {
			return pkgErrors.ErrAlreadyTeamed
		}
		enrolled, err := repos.Enrollment.Exists(candidate.ID, scope.section.ID)
		if err != nil {
			return err
		}
		if !enrolled {
			return pkgErrors.ErrNotEnrolled
		}

		count, err := repos.TeamMember.Count(teamID)
		if err != nil {
			return err
		}
		if count >= int64(scope.section.MaxTeamSize) {
			return pkgErrors.ErrTeamFull
		}

		if _, err := repos.Invitation.FindPending(teamID, candidate.ID); err == nil {
			return pkgErrors.Newf(pkgErrors.ErrConflict, "已向该学生发送过邀请")
		} else if !errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return err
		}

		invitation = &model.Invitation{
			TeamID:    teamID,
			SectionID: scope.section.ID,
			InviterID: caller.UserID,
			InviteeID: candidate.ID,
			Status:    constants.InvitationStatusPending,
		}
		if err := repos.Invitation.Create(invitation); err != nil {
			return err
		}

		outbox = []*model.Notification{
			newNotification(candidate.ID, constants.NotificationTypeInvitation,
				"入队邀请",
				fmt.Sprintf("您收到加入团队 %s 的邀请", scope.team.GroupNumber),
				int64Ptr(teamID), nil,
				map[string]interface{}{"invitation_id": invitation.ID, "inviter_id": caller.UserID}),
		}
		return repos.Notification.CreateBatch(outbox)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("发送入队邀请",
		zap.Int64("team_id", teamID),
		zap.Int64("invitation_id", invitation.ID),
		zap.Int64("invitee_id", invitation.InviteeID))
	notification.Deliver(ctx, s.notifier, s.logger, outbox)

	return toInvitationResponse(invitation, s.opts.InvitationTTL), nil
}

func (s *teamService) AcceptInvitation(ctx context.Context, caller *dto.Caller, invitationID int64) (*dto.TeamResponse, error) {
	if err := auth.Require(caller, auth.PermInvitationRespond); err != nil {
		return nil, err
	}

	var teamID int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepository(tx)

		invitation, err := repos.Invitation.FindByID(invitationID)
		if err != nil {
			if errors.Is(err, pkgErrors.ErrRecordNotFound) {
				return pkgErrors.Newf(pkgErrors.ErrNotFound, "邀请不存在或已被撤回")
			}
			return err
		}
		if invitation.InviteeID != caller.UserID {
			return pkgErrors.Newf(pkgErrors.ErrForbidden, "只能处理发给自己的邀请")
		}
		if invitation.Status != constants.InvitationStatusPending {
			return pkgErrors.Newf(pkgErrors.ErrConflict, "邀请已处理")
		}
		if invitation.Expired(now(), s.opts.InvitationTTL) {
			return pkgErrors.Newf(pkgErrors.ErrNotFound, "邀请已过期")
		}

		scope, err := lockTeam(repos, invitation.TeamID)
		if err != nil {
			return err
		}
		if err := scope.checkMembershipChange(caller); err != nil {
			return err
		}

		// 接受时重新检查, 邀请发出后可能已加入其他团队
		teamed, err := repos.TeamMember.HasTeamInSection(caller.UserID, scope.section.ID)
		if err != nil {
			return err
		}
		if teamed {
			return pkgErrors.Newf(pkgErrors.ErrConflict, "您在本班级已加入其他团队")
		}
		enrolled, err := repos.Enrollment.Exists(caller.UserID, scope.section.ID)
		if err != nil {
			return err
		}
		if !enrolled {
			return pkgErrors.ErrNotEnrolled
		}
		count, err := repos.TeamMember.Count(scope.team.ID)
		if err != nil {
			return err
		}
		if count >= int64(scope.section.MaxTeamSize) {
			return pkgErrors.ErrTeamFull
		}

		if err := repos.TeamMember.Create(&model.TeamMember{TeamID: scope.team.ID, UserID: caller.UserID}); err != nil {
			return err
		}
		affected, err := repos.Invitation.MarkAccepted(invitation.ID, now())
		if err != nil {
			return err
		}
		if affected == 0 {
			return pkgErrors.Newf(pkgErrors.ErrConflict, "邀请已处理")
		}
		if _, err := repos.Invitation.DeletePendingForInviteeInSection(caller.UserID, scope.section.ID, invitation.ID); err != nil {
			return err
		}

		teamID = scope.team.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("接受入队邀请",
		zap.Int64("team_id", teamID),
		zap.Int64("invitation_id", invitationID),
		zap.Int64("user_id", caller.UserID))

	return s.GetTeam(ctx, caller, teamID)
}

func (s *teamService) RejectInvitation(ctx context.Context, caller *dto.Caller, invitationID int64) error {
	if err := auth.Require(caller, auth.PermInvitationRespond); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepository(tx)

		invitation, err := repos.Invitation.FindByID(invitationID)
		if err != nil {
			if errors.Is(err, pkgErrors.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if invitation.InviteeID != caller.UserID {
			return pkgErrors.Newf(pkgErrors.ErrForbidden, "只能处理发给自己的邀请")
		}
		if invitation.Status != constants.InvitationStatusPending {
			return pkgErrors.Newf(pkgErrors.ErrConflict, "邀请已处理")
		}
		_, err = repos.Invitation.Delete(invitation.ID)
		return err
	})
}

func (s *teamService) RemoveMember(ctx context.Context, caller *dto.Caller, teamID, userID int64) error {
	if err := auth.Require(caller, auth.PermTeamMember); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepository(tx)

		scope, err := lockTeam(repos, teamID)
		if err != nil {
			return err
		}
		if err := requireMember(repos, caller, teamID); err != nil {
			return err
		}
		if err := scope.checkMembershipChange(caller); err != nil {
			return err
		}

		isMember, err := repos.TeamMember.IsMember(teamID, userID)
		if err != nil {
			return err
		}
		if !isMember {
			return pkgErrors.Newf(pkgErrors.ErrNotFound, "该用户不是团队成员")
		}
		count, err := repos.TeamMember.Count(teamID)
		if err != nil {
			return err
		}
		if count <= 1 {
			return pkgErrors.ErrMinimumMembers
		}

		_, err = repos.TeamMember.Delete(teamID, userID)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("移除团队成员",
		zap.Int64("team_id", teamID),
		zap.Int64("user_id", userID),
		zap.Int64("operator_id", caller.UserID))
	return nil
}

func (s *teamService) LeaveTeam(ctx context.Context, caller *dto.Caller, teamID int64) (*dto.LeaveTeamResponse, error) {
	if err := auth.Require(caller, auth.PermTeamMember); err != nil {
		return nil, err
	}

	resp := &dto.LeaveTeamResponse{TeamID: teamID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepository(tx)

		scope, err := lockTeam(repos, teamID)
		if err != nil {
			return err
		}
		isMember, err := repos.TeamMember.IsMember(teamID, caller.UserID)
		if err != nil {
			return err
		}
		if !isMember {
			return pkgErrors.ErrNotTeamMember
		}
		if err := scope.checkMembershipChange(caller); err != nil {
			return err
		}

		count, err := repos.TeamMember.Count(teamID)
		if err != nil {
			return err
		}
		if count > 1 {
			_, err = repos.TeamMember.Delete(teamID, caller.UserID)
			return err
		}

		// 最后一名成员退出, 团队连同项目一并删除
		if _, err := cascade.DeleteTeams(tx, []int64{teamID}); err != nil {
			return err
		}
		resp.TeamDeleted = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if resp.TeamDeleted {
		metrics.TeamsDeleted.WithLabelValues(constants.TeamDeleteReasonLastMember).Inc()
	}
	s.logger.Info("退出团队",
		zap.Int64("team_id", teamID),
		zap.Int64("user_id", caller.UserID),
		zap.Bool("team_deleted", resp.TeamDeleted))
	return resp, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, caller *dto.Caller, teamID int64) error {
	if err := auth.Require(caller, auth.PermTeamDelete); err != nil {
		return err
	}

	var result *cascade.Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepository(tx)
		if _, err := lockTeam(repos, teamID); err != nil {
			return err
		}
		var err error
		result, err = cascade.DeleteTeams(tx, []int64{teamID})
		return err
	})
	if err != nil {
		return err
	}

	metrics.TeamsDeleted.WithLabelValues(constants.TeamDeleteReasonAdmin).Inc()
	s.logger.Info("删除团队",
		zap.Int64("team_id", teamID),
		zap.Int64("operator_id", caller.UserID),
		zap.Int64("projects", result.Projects),
		zap.Int64("members", result.Members))
	return nil
}

func (s *teamService) GetTeam(ctx context.Context, caller *dto.Caller, teamID int64) (*dto.TeamResponse, error) {
	if err := auth.Require(caller, auth.PermTeamView); err != nil {
		return nil, err
	}
	repo := repository.NewTeamRepository(s.db.WithContext(ctx))
	team, err := repo.FindByID(teamID, teamPreloads()...)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, pkgErrors.Newf(pkgErrors.ErrNotFound, "团队不存在")
		}
		return nil, err
	}
	return toTeamResponse(team), nil
}

func (s *teamService) ListTeams(ctx context.Context, caller *dto.Caller, sectionID *int64) ([]*dto.TeamResponse, error) {
	if err := auth.Require(caller, auth.PermTeamView); err != nil {
		return nil, err
	}
	teams, err := repository.NewTeamRepository(s.db.WithContext(ctx)).List(sectionID)
	if err != nil {
		return nil, err
	}
	responses := make([]*dto.TeamResponse, len(teams))
	for i, team := range teams {
		responses[i] = toTeamResponse(team)
	}
	return responses, nil
}

func (s *teamService) MyTeam(ctx context.Context, caller *dto.Caller) (*dto.TeamResponse, error) {
	if err := auth.Require(caller, auth.PermTeamView); err != nil {
		return nil, err
	}
	team, err := repository.NewTeamRepository(s.db.WithContext(ctx)).FindByMember(caller.UserID, teamPreloads()...)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, pkgErrors.Newf(pkgErrors.ErrNotFound, "您还没有加入团队")
		}
		return nil, err
	}
	return toTeamResponse(team), nil
}

func teamPreloads() []repository.QueryOption {
	return []repository.QueryOption{
		repository.WithPreload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }),
		repository.WithPreload("Members.User"),
		repository.WithPreload("Project"),
		repository.WithPreload("Project.Advisor"),
	}
}
