package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"capstone/internal/adapter/notification"
	"capstone/internal/core/cascade"
	"capstone/internal/core/projectflow"
	"capstone/internal/dto"
	"capstone/internal/model"
	"capstone/internal/pkg/auth"
	"capstone/internal/pkg/metrics"
	"capstone/internal/repository"
	"capstone/pkg/constants"
	pkgErrors "capstone/pkg/errors"
)

type ProjectService interface {
	CreateProject(ctx context.Context, caller *dto.Caller, teamID int64, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error)
	EditProject(ctx context.Context, caller *dto.Caller, projectID int64, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error)
	Decide(ctx context.Context, caller *dto.Caller, projectID int64, req *dto.DecideRequest) (*dto.ProjectResponse, error)
	DeleteProject(ctx context.Context, caller *dto.Caller, projectID int64) error
	GetProject(ctx context.Context, caller *dto.Caller, projectID int64) (*dto.ProjectResponse, error)
	ListPendingReviews(ctx context.Context, caller *dto.Caller) ([]*dto.ProjectResponse, error)
}

type projectService struct {
	db       *gorm.DB
	flow     *projectflow.Machine
	notifier notification.Notifier
	opts     Options
	logger   *zap.Logger
}

func NewProjectService(db *gorm.DB, flow *projectflow.Machine, notifier notification.Notifier, opts Options, logger *zap.Logger) ProjectService {
	return &projectService{
		db:       db,
		flow:     flow,
		notifier: notifier,
		opts:     opts,
		logger:   logger,
	}
}

// checkProjectName 项目名称为必填项, 不依赖 HTTP 层校验
func checkProjectName(name string) error {
	if strings.TrimSpace(name) == "" {
		return pkgErrors.Newf(pkgErrors.ErrBadRequest, "项目名称不能为空")
	}
	return nil
}

// lockProject 锁定项目行
func lockProject(repos *repository.Repository, projectID int64) (*model.Project, error) {
	project, err := repos.Project.FindByID(projectID, repository.WithLock())
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, pkgErrors.Newf(pkgErrors.ErrNotFound, "项目不存在")
		}
		return nil, err
	}
	return project, nil
}

func (s *projectService) CreateProject(ctx context.Context, caller *dto.Caller, teamID int64, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	if err := auth.Require(caller, auth.PermProjectWrite); err != nil {
		return nil, err
	}
	if err := checkProjectName(req.ProjectName); err != nil {
		return nil, err
	}

	var project *model.Project
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepository(tx)

		scope, err := lockTeam(repos, teamID)
		if err != nil {
			return err
		}
		if err := requireMember(repos, caller, teamID); err != nil {
			return err
		}
		if scope.project != nil {
			return pkgErrors.ErrProjectExists
		}

		project = &model.Project{
			TeamID:         teamID,
			ProjectName:    req.ProjectName,
			ProjectNameEng: req.ProjectNameEng,
			ProjectType:    req.ProjectType,
			Description:    req.Description,
			Status:         constants.ProjectStatusDraft,
		}
		return repos.Project.Create(project)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("创建项目",
		zap.Int64("project_id", project.ID),
		zap.Int64("team_id", teamID),
		zap.Int64("creator_id", caller.UserID))
	return toProjectResponse(project), nil
}

func (s *projectService) EditProject(ctx context.Context, caller *dto.Caller, projectID int64, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	if err := auth.Require(caller, auth.PermProjectWrite); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepository(tx)

		project, err := lockProject(repos, projectID)
		if err != nil {
			return err
		}
		if err := requireMember(repos, caller, project.TeamID); err != nil {
			return err
		}
		if project.Status == constants.ProjectStatusApproved {
			return pkgErrors.ErrProjectApproved
		}

		fields := map[string]interface{}{}
		if req.ProjectName != nil {
			if err := checkProjectName(*req.ProjectName); err != nil {
				return err
			}
			fields["projectname"] = *req.ProjectName
		}
		if req.ProjectNameEng != nil {
			fields["projectname_eng"] = req.ProjectNameEng
		}
		if req.ProjectType != nil {
			fields["project_type"] = req.ProjectType
		}
		if req.Description != nil {
			fields["description"] = req.Description
		}
		return repos.Project.UpdateFields(projectID, fields)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("编辑项目", zap.Int64("project_id", projectID), zap.Int64("operator_id", caller.UserID))
	return s.GetProject(ctx, caller, projectID)
}

func (s *projectService) Decide(ctx context.Context, caller *dto.Caller, projectID int64, req *dto.DecideRequest) (*dto.ProjectResponse, error) {
	if err := auth.Require(caller, auth.PermProjectDecide); err != nil {
		return nil, err
	}

	var event projectflow.Event
	switch req.Decision {
	case constants.DecisionApproved:
		event = projectflow.EventApprove
	case constants.DecisionRejected:
		event = projectflow.EventReject
	default:
		return nil, pkgErrors.Newf(pkgErrors.ErrBadRequest, "无效的审批结果: %s", req.Decision)
	}

	var outbox []*model.Notification
	var from string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepository(tx)

		project, err := lockProject(repos, projectID)
		if err != nil {
			return err
		}
		link, err := repos.ProjectAdvisor.FindByProjectID(projectID)
		if err != nil && !errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return err
		}
		if link == nil || link.AdvisorID != caller.UserID {
			return pkgErrors.Newf(pkgErrors.ErrForbidden, "仅项目当前的指导教师可以审批")
		}
		if project.Status != constants.ProjectStatusPending {
			return pkgErrors.Newf(pkgErrors.ErrInvalidTransition, "项目当前状态为%s, 不能审批",
				constants.ProjectStatusToString(project.Status))
		}

		if req.Decision == constants.DecisionApproved {
			// 锁定教师行后重新计数, 并发审批同一教师的多个项目时串行化
			if _, err := repos.User.FindByID(caller.UserID, repository.WithLock()); err != nil {
				return err
			}
			load, err := repos.ProjectAdvisor.CountApprovedByAdvisor(caller.UserID)
			if err != nil {
				return err
			}
			if load >= int64(s.opts.MaxAdvisorProjects) {
				metrics.CapacityRejections.Inc()
				return pkgErrors.Newf(pkgErrors.ErrCapacityExceeded, "您已指导 %d 个已通过项目, 达到上限 %d",
					load, s.opts.MaxAdvisorProjects)
			}
		}

		from = project.Status
		if err := s.flow.Apply(tx, project, req.Decision, event, map[string]interface{}{
			"last_review_comment": req.Comment,
		}); err != nil {
			return err
		}

		snapshot, err := json.Marshal(map[string]interface{}{
			"projectname":     project.ProjectName,
			"projectname_eng": project.ProjectNameEng,
			"project_type":    project.ProjectType,
			"description":     project.Description,
		})
		if err != nil {
			return pkgErrors.Wrap(pkgErrors.CodeInternalError, "生成审批快照失败", err)
		}
		if err := repos.ProjectReview.Create(&model.ProjectReview{
			ProjectID: projectID,
			AdvisorID: caller.UserID,
			Decision:  req.Decision,
			Comment:   req.Comment,
			Snapshot:  datatypes.JSON(snapshot),
			DecidedAt: now(),
		}); err != nil {
			return err
		}

		memberIDs, err := repos.TeamMember.ListUserIDs([]int64{project.TeamID})
		if err != nil {
			return err
		}
		for _, uid := range memberIDs {
			outbox = append(outbox, newNotification(uid, constants.NotificationTypeDecision,
				"项目审批结果",
				fmt.Sprintf("项目 %s 审批结果: %s", project.ProjectName, constants.ProjectStatusToString(req.Decision)),
				int64Ptr(project.TeamID), int64Ptr(projectID),
				map[string]interface{}{"decision": req.Decision, "advisor_id": caller.UserID}))
		}
		return repos.Notification.CreateBatch(outbox)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("项目审批",
		zap.Int64("project_id", projectID),
		zap.Int64("advisor_id", caller.UserID),
		zap.String("from", from),
		zap.String("decision", req.Decision))
	notification.Deliver(ctx, s.notifier, s.logger, outbox)

	return s.GetProject(ctx, caller, projectID)
}

func (s *projectService) DeleteProject(ctx context.Context, caller *dto.Caller, projectID int64) error {
	if err := auth.Require(caller, auth.PermProjectWrite); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepository(tx)

		project, err := lockProject(repos, projectID)
		if err != nil {
			return err
		}
		if err := requireMember(repos, caller, project.TeamID); err != nil {
			return err
		}
		if project.Status == constants.ProjectStatusApproved {
			return pkgErrors.ErrProjectApproved
		}
		_, err = cascade.DeleteProjects(tx, []int64{projectID})
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("删除项目", zap.Int64("project_id", projectID), zap.Int64("operator_id", caller.UserID))
	return nil
}

func (s *projectService) GetProject(ctx context.Context, caller *dto.Caller, projectID int64) (*dto.ProjectResponse, error) {
	if err := auth.Require(caller, auth.PermProjectView); err != nil {
		return nil, err
	}
	repos := repository.NewRepository(s.db.WithContext(ctx))

	project, err := repos.Project.FindByID(projectID, repository.WithPreload("Advisor"))
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, pkgErrors.Newf(pkgErrors.ErrNotFound, "项目不存在")
		}
		return nil, err
	}
	reviews, err := repos.ProjectReview.ListByProject(projectID)
	if err != nil {
		return nil, err
	}

	resp := toProjectResponse(project)
	for _, r := range reviews {
		resp.Reviews = append(resp.Reviews, &dto.ReviewResponse{
			AdvisorID: r.AdvisorID,
			Decision:  r.Decision,
			Comment:   r.Comment,
			DecidedAt: formatTime(r.DecidedAt),
		})
	}
	return resp, nil
}

// ListPendingReviews 当前指导教师待审批的项目
func (s *projectService) ListPendingReviews(ctx context.Context, caller *dto.Caller) ([]*dto.ProjectResponse, error) {
	if err := auth.Require(caller, auth.PermProjectDecide); err != nil {
		return nil, err
	}
	projects, err := repository.NewProjectRepository(s.db.WithContext(ctx)).ListPendingByAdvisor(caller.UserID)
	if err != nil {
		return nil, err
	}
	responses := make([]*dto.ProjectResponse, len(projects))
	for i, p := range projects {
		responses[i] = toProjectResponse(p)
	}
	return responses, nil
}
