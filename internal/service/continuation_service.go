package service

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"capstone/internal/dto"
	"capstone/internal/model"
	"capstone/internal/pkg/auth"
	"capstone/internal/pkg/metrics"
	"capstone/internal/repository"
	"capstone/pkg/constants"
	pkgErrors "capstone/pkg/errors"
)

// ContinuationService 将预备阶段班级的团队续接到新学期的毕业设计班级
type ContinuationService interface {
	ContinueToProject(ctx context.Context, caller *dto.Caller, sectionID int64, req *dto.ContinueSectionRequest) (*dto.ContinueSectionResponse, error)
}

type continuationService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewContinuationService(db *gorm.DB, logger *zap.Logger) ContinuationService {
	return &continuationService{db: db, logger: logger}
}

func (s *continuationService) ContinueToProject(ctx context.Context, caller *dto.Caller, sectionID int64, req *dto.ContinueSectionRequest) (*dto.ContinueSectionResponse, error) {
	if err := auth.Require(caller, auth.PermContinue); err != nil {
		return nil, err
	}

	var target *model.Section
	var moved, copied int64
	var reused bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepository(tx)

		old, err := repos.Section.FindByID(sectionID, repository.WithLock())
		if err != nil {
			if errors.Is(err, pkgErrors.ErrRecordNotFound) {
				return pkgErrors.Newf(pkgErrors.ErrNotFound, "班级不存在")
			}
			return err
		}
		if old.CourseType != constants.CourseTypePreProject {
			return pkgErrors.Newf(pkgErrors.ErrInvalidTransition, "只有预备阶段班级可以续接")
		}
		term, err := repos.Term.FindByID(req.TermID)
		if err != nil {
			if errors.Is(err, pkgErrors.ErrRecordNotFound) {
				return pkgErrors.Newf(pkgErrors.ErrNotFound, "学期不存在")
			}
			return err
		}

		target, reused, err = s.targetSection(repos, old, term)
		if err != nil {
			return err
		}

		// 已续接到目标班级的团队也计入选择, 重复执行时不会报空选择
		teams, err := repos.Team.ListForContinuation([]int64{old.ID, target.ID}, req.TeamIDs)
		if err != nil {
			return err
		}
		if len(teams) == 0 {
			return pkgErrors.ErrEmptySelection
		}

		memberIDs := lo.Uniq(lo.FlatMap(teams, func(t *model.Team, _ int) []int64 {
			return lo.Map(t.Members, func(m model.TeamMember, _ int) int64 { return m.UserID })
		}))

		sourceEnrollments, err := repos.Enrollment.ListBySectionAndUsers(old.ID, memberIDs)
		if err != nil {
			return err
		}
		existing, err := repos.Enrollment.ListBySectionAndUsers(target.ID, memberIDs)
		if err != nil {
			return err
		}
		already := lo.SliceToMap(existing, func(e *model.Enrollment) (int64, struct{}) {
			return e.UserID, struct{}{}
		})

		enrolledAt := time.Now()
		missing := lo.FilterMap(sourceEnrollments, func(e *model.Enrollment, _ int) (*model.Enrollment, bool) {
			if _, ok := already[e.UserID]; ok {
				return nil, false
			}
			return &model.Enrollment{UserID: e.UserID, SectionID: target.ID, EnrolledAt: enrolledAt}, true
		})
		if copied, err = repos.Enrollment.CreateIgnoreDuplicates(missing); err != nil {
			return err
		}

		toMove := lo.FilterMap(teams, func(t *model.Team, _ int) (int64, bool) {
			return t.ID, t.SectionID == old.ID
		})
		if moved, err = repos.Team.MoveToSection(toMove, target.ID); err != nil {
			return err
		}
		_, err = repos.Invitation.MovePendingToSection(toMove, target.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.ContinuationTeamsMoved.Add(float64(moved))
	s.logger.Info("班级续接",
		zap.Int64("section_id", sectionID),
		zap.Int64("target_section_id", target.ID),
		zap.Bool("reused", reused),
		zap.Int64("teams_moved", moved),
		zap.Int64("enrollments_copied", copied))

	section, err := repository.NewSectionRepository(s.db.WithContext(ctx)).FindByID(target.ID, repository.WithPreload("Term"))
	if err != nil {
		return nil, err
	}
	return &dto.ContinueSectionResponse{
		Section:           toSectionResponse(section),
		TeamsMoved:        moved,
		EnrollmentsCopied: copied,
	}, nil
}

// targetSection 复用已续接的班级, 不存在时按原班级属性新建
func (s *continuationService) targetSection(repos *repository.Repository, old *model.Section, term *model.Term) (*model.Section, bool, error) {
	existing, err := repos.Section.FindContinuation(old.ID, term.ID)
	if err == nil {
		// 与目标班级内的建队和入队互斥
		if existing, err = repos.Section.FindByID(existing.ID, repository.WithLock()); err != nil {
			return nil, false, err
		}
		return existing, true, nil
	}
	if !errors.Is(err, pkgErrors.ErrRecordNotFound) {
		return nil, false, err
	}

	section := &model.Section{
		TermID:          term.ID,
		SectionCode:     old.SectionCode,
		CourseType:      constants.CourseTypeProject,
		StudyType:       old.StudyType,
		MinTeamSize:     old.MinTeamSize,
		MaxTeamSize:     old.MaxTeamSize,
		ProjectDeadline: old.ProjectDeadline,
		TeamLocked:      old.TeamLocked,
		ContinuedFromID: &old.ID,
	}
	if err := repos.Section.Create(section); err != nil {
		return nil, false, err
	}
	return section, false, nil
}
