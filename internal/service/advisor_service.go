package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"capstone/internal/adapter/notification"
	"capstone/internal/core/projectflow"
	"capstone/internal/dto"
	"capstone/internal/model"
	"capstone/internal/pkg/auth"
	"capstone/internal/pkg/metrics"
	"capstone/internal/repository"
	"capstone/pkg/constants"
	pkgErrors "capstone/pkg/errors"
)

// AdvisorService 指导教师分配, 负责名额仲裁
type AdvisorService interface {
	AttachAdvisor(ctx context.Context, caller *dto.Caller, projectID int64, req *dto.AttachAdvisorRequest) (*dto.ProjectResponse, error)
	DetachAdvisor(ctx context.Context, caller *dto.Caller, projectID int64) (*dto.ProjectResponse, error)
	ListAvailableAdvisors(ctx context.Context, caller *dto.Caller, projectID *int64) ([]*dto.AdvisorAvailability, error)
}

type advisorService struct {
	db       *gorm.DB
	flow     *projectflow.Machine
	notifier notification.Notifier
	opts     Options
	logger   *zap.Logger
}

func NewAdvisorService(db *gorm.DB, flow *projectflow.Machine, notifier notification.Notifier, opts Options, logger *zap.Logger) AdvisorService {
	return &advisorService{
		db:       db,
		flow:     flow,
		notifier: notifier,
		opts:     opts,
		logger:   logger,
	}
}

func (s *advisorService) AttachAdvisor(ctx context.Context, caller *dto.Caller, projectID int64, req *dto.AttachAdvisorRequest) (*dto.ProjectResponse, error) {
	if err := auth.Require(caller, auth.PermAdvisorSelect); err != nil {
		return nil, err
	}

	var project *model.Project
	var outbox []*model.Notification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepository(tx)

		var err error
		project, err = lockProject(repos, projectID)
		if err != nil {
			return err
		}
		if err := requireMember(repos, caller, project.TeamID); err != nil {
			return err
		}
		if err := s.flow.Check(project.Status, constants.ProjectStatusPending, projectflow.EventAttachAdvisor); err != nil {
			return err
		}

		// 锁定教师行, 同一教师的名额检查与写入串行化
		advisor, err := repos.User.FindByID(req.AdvisorID, repository.WithLock())
		if err != nil {
			if errors.Is(err, pkgErrors.ErrRecordNotFound) {
				return pkgErrors.Newf(pkgErrors.ErrNotFound, "指导教师不存在")
			}
			return err
		}
		if advisor.Role != constants.RoleAdvisor {
			return pkgErrors.Newf(pkgErrors.ErrBadRequest, "所选用户不是指导教师")
		}

		load, err := repos.ProjectAdvisor.CountApprovedByAdvisor(advisor.ID)
		if err != nil {
			return err
		}
		if load >= int64(s.opts.MaxAdvisorProjects) {
			metrics.CapacityRejections.Inc()
			return pkgErrors.Newf(pkgErrors.ErrCapacityExceeded, "指导教师 %s 已指导 %d 个已通过项目, 达到上限",
				advisor.Username, load)
		}

		if _, err := repos.ProjectAdvisor.DeleteByProjectID(projectID); err != nil {
			return err
		}
		if err := repos.ProjectAdvisor.Create(&model.ProjectAdvisor{ProjectID: projectID, AdvisorID: advisor.ID}); err != nil {
			return err
		}
		if err := s.flow.Apply(tx, project, constants.ProjectStatusPending, projectflow.EventAttachAdvisor, nil); err != nil {
			return err
		}

		outbox = []*model.Notification{
			newNotification(advisor.ID, constants.NotificationTypeAdvisorAttach,
				"新的指导申请",
				fmt.Sprintf("项目 %s 申请由您指导", project.ProjectName),
				int64Ptr(project.TeamID), int64Ptr(projectID),
				map[string]interface{}{"requested_by": caller.UserID}),
		}
		return repos.Notification.CreateBatch(outbox)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("选择指导教师",
		zap.Int64("project_id", projectID),
		zap.Int64("advisor_id", req.AdvisorID),
		zap.Int64("operator_id", caller.UserID))
	notification.Deliver(ctx, s.notifier, s.logger, outbox)

	return s.reload(ctx, projectID)
}

func (s *advisorService) DetachAdvisor(ctx context.Context, caller *dto.Caller, projectID int64) (*dto.ProjectResponse, error) {
	if err := auth.Require(caller, auth.PermAdvisorSelect); err != nil {
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
		if err := s.flow.Check(project.Status, constants.ProjectStatusDraft, projectflow.EventDetachAdvisor); err != nil {
			return err
		}
		if _, err := repos.ProjectAdvisor.DeleteByProjectID(projectID); err != nil {
			return err
		}
		return s.flow.Apply(tx, project, constants.ProjectStatusDraft, projectflow.EventDetachAdvisor, nil)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("移除指导教师", zap.Int64("project_id", projectID), zap.Int64("operator_id", caller.UserID))
	return s.reload(ctx, projectID)
}

func (s *advisorService) ListAvailableAdvisors(ctx context.Context, caller *dto.Caller, projectID *int64) ([]*dto.AdvisorAvailability, error) {
	if err := auth.Require(caller, auth.PermAdvisorView); err != nil {
		return nil, err
	}
	repos := repository.NewRepository(s.db.WithContext(ctx))

	var currentAdvisorID int64
	if projectID != nil {
		link, err := repos.ProjectAdvisor.FindByProjectID(*projectID)
		if err == nil {
			currentAdvisorID = link.AdvisorID
		} else if !errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, err
		}
	}

	advisors, err := repos.User.ListByRole(constants.RoleAdvisor)
	if err != nil {
		return nil, err
	}
	loads, err := repos.ProjectAdvisor.CountApprovedByAdvisors(lo.Map(advisors, func(u *model.User, _ int) int64 {
		return u.ID
	}))
	if err != nil {
		return nil, err
	}

	limit := int64(s.opts.MaxAdvisorProjects)
	result := lo.Map(advisors, func(u *model.User, _ int) *dto.AdvisorAvailability {
		load := loads[u.ID]
		item := &dto.AdvisorAvailability{
			Advisor:     toUserBrief(u),
			CurrentLoad: load,
			CanSelect:   load < limit,
		}
		switch {
		case !item.CanSelect:
			item.Reason = fmt.Sprintf("已指导 %d 个已通过项目, 达到上限", load)
		case u.ID == currentAdvisorID:
			item.Reason = "当前指导教师"
		}
		return item
	})

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CurrentLoad != result[j].CurrentLoad {
			return result[i].CurrentLoad < result[j].CurrentLoad
		}
		return result[i].Advisor.ID < result[j].Advisor.ID
	})
	return result, nil
}

func (s *advisorService) reload(ctx context.Context, projectID int64) (*dto.ProjectResponse, error) {
	project, err := repository.NewProjectRepository(s.db.WithContext(ctx)).FindByID(projectID, repository.WithPreload("Advisor"))
	if err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}
