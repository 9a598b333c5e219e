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
	"capstone/internal/repository"
	"capstone/pkg/constants"
	pkgErrors "capstone/pkg/errors"
)

type SectionService interface {
	CreateSection(ctx context.Context, caller *dto.Caller, req *dto.CreateSectionRequest) (*dto.SectionResponse, error)
	UpdateSection(ctx context.Context, caller *dto.Caller, sectionID int64, req *dto.UpdateSectionRequest) (*dto.SectionResponse, error)
	SetTeamLock(ctx context.Context, caller *dto.Caller, sectionID int64, locked bool) (*dto.SectionResponse, error)
	DeleteSection(ctx context.Context, caller *dto.Caller, sectionID int64) error
	ListSections(ctx context.Context, caller *dto.Caller, query *dto.ListSectionsQuery) ([]*dto.SectionResponse, error)
	GetSection(ctx context.Context, caller *dto.Caller, sectionID int64) (*dto.SectionResponse, error)
	Enroll(ctx context.Context, caller *dto.Caller, sectionID int64, req *dto.EnrollRequest) (*dto.EnrollResponse, error)
	ListEnrollments(ctx context.Context, caller *dto.Caller, sectionID int64) ([]*dto.EnrollmentResponse, error)
}

type sectionService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewSectionService(db *gorm.DB, logger *zap.Logger) SectionService {
	return &sectionService{db: db, logger: logger}
}

func findSection(repos *repository.Repository, sectionID int64, opts ...repository.QueryOption) (*model.Section, error) {
	section, err := repos.Section.FindByID(sectionID, opts...)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, pkgErrors.Newf(pkgErrors.ErrNotFound, "班级不存在")
		}
		return nil, err
	}
	return section, nil
}

func (s *sectionService) CreateSection(ctx context.Context, caller *dto.Caller, req *dto.CreateSectionRequest) (*dto.SectionResponse, error) {
	if err := auth.Require(caller, auth.PermSectionManage); err != nil {
		return nil, err
	}
	if err := validateTeamSize(req.MinTeamSize, req.MaxTeamSize); err != nil {
		return nil, err
	}

	repos := repository.NewRepository(s.db.WithContext(ctx))
	term, err := repos.Term.FindByID(req.TermID)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, pkgErrors.Newf(pkgErrors.ErrNotFound, "学期不存在")
		}
		return nil, err
	}

	section := &model.Section{
		TermID:          term.ID,
		SectionCode:     req.SectionCode,
		CourseType:      req.CourseType,
		StudyType:       req.StudyType,
		MinTeamSize:     req.MinTeamSize,
		MaxTeamSize:     req.MaxTeamSize,
		ProjectDeadline: req.ProjectDeadline,
	}
	if err := repos.Section.Create(section); err != nil {
		return nil, err
	}
	section.Term = term

	s.logger.Info("创建班级",
		zap.Int64("section_id", section.ID),
		zap.String("section_code", section.SectionCode),
		zap.String("course_type", section.CourseType),
		zap.String("term", term.Label()))
	return toSectionResponse(section), nil
}

func (s *sectionService) UpdateSection(ctx context.Context, caller *dto.Caller, sectionID int64, req *dto.UpdateSectionRequest) (*dto.SectionResponse, error) {
	if err := auth.Require(caller, auth.PermSectionManage); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepository(tx)
		section, err := findSection(repos, sectionID, repository.WithLock())
		if err != nil {
			return err
		}

		if req.SectionCode != nil {
			section.SectionCode = *req.SectionCode
		}
		if req.StudyType != nil {
			section.StudyType = *req.StudyType
		}
		if req.MinTeamSize != nil {
			section.MinTeamSize = *req.MinTeamSize
		}
		if req.MaxTeamSize != nil {
			section.MaxTeamSize = *req.MaxTeamSize
		}
		if req.ProjectDeadline != nil {
			section.ProjectDeadline = req.ProjectDeadline
		}
		if err := validateTeamSize(section.MinTeamSize, section.MaxTeamSize); err != nil {
			return err
		}
		return repos.Section.Update(section)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("更新班级", zap.Int64("section_id", sectionID))
	return s.GetSection(ctx, caller, sectionID)
}

func (s *sectionService) SetTeamLock(ctx context.Context, caller *dto.Caller, sectionID int64, locked bool) (*dto.SectionResponse, error) {
	if err := auth.Require(caller, auth.PermSectionManage); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepository(tx)
		section, err := findSection(repos, sectionID, repository.WithLock())
		if err != nil {
			return err
		}
		section.TeamLocked = locked
		return repos.Section.Update(section)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("设置班级团队锁定", zap.Int64("section_id", sectionID), zap.Bool("locked", locked))
	return s.GetSection(ctx, caller, sectionID)
}

// DeleteSection 锁定班级行后检查引用, 与并发创建团队互斥
func (s *sectionService) DeleteSection(ctx context.Context, caller *dto.Caller, sectionID int64) error {
	if err := auth.Require(caller, auth.PermSectionManage); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepository(tx)
		if _, err := findSection(repos, sectionID, repository.WithLock()); err != nil {
			return err
		}

		teams, err := repos.Section.CountTeams(sectionID)
		if err != nil {
			return err
		}
		enrollments, err := repos.Section.CountEnrollments(sectionID)
		if err != nil {
			return err
		}
		if teams > 0 || enrollments > 0 {
			return pkgErrors.Newf(pkgErrors.ErrConflict, "班级下还有 %d 个团队、%d 条选课记录, 不能删除", teams, enrollments)
		}
		return repos.Section.Delete(sectionID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("删除班级", zap.Int64("section_id", sectionID))
	return nil
}

func (s *sectionService) ListSections(ctx context.Context, caller *dto.Caller, query *dto.ListSectionsQuery) ([]*dto.SectionResponse, error) {
	if err := auth.Require(caller, auth.PermCatalogView); err != nil {
		return nil, err
	}
	sections, err := repository.NewSectionRepository(s.db.WithContext(ctx)).List(query.TermID, query.CourseType)
	if err != nil {
		return nil, err
	}
	return lo.Map(sections, func(sec *model.Section, _ int) *dto.SectionResponse {
		return toSectionResponse(sec)
	}), nil
}

func (s *sectionService) GetSection(ctx context.Context, caller *dto.Caller, sectionID int64) (*dto.SectionResponse, error) {
	if err := auth.Require(caller, auth.PermCatalogView); err != nil {
		return nil, err
	}
	section, err := findSection(repository.NewRepository(s.db.WithContext(ctx)), sectionID, repository.WithPreload("Term"))
	if err != nil {
		return nil, err
	}
	return toSectionResponse(section), nil
}

// Enroll 批量选课, 已选过的跳过
func (s *sectionService) Enroll(ctx context.Context, caller *dto.Caller, sectionID int64, req *dto.EnrollRequest) (*dto.EnrollResponse, error) {
	if err := auth.Require(caller, auth.PermEnroll); err != nil {
		return nil, err
	}
	userIDs := lo.Uniq(req.UserIDs)

	var created int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepository(tx)
		if _, err := findSection(repos, sectionID); err != nil {
			return err
		}

		users, err := repos.User.FindByIDs(userIDs)
		if err != nil {
			return err
		}
		found := lo.Map(users, func(u *model.User, _ int) int64 { return u.ID })
		if missing := lo.Without(userIDs, found...); len(missing) > 0 {
			return pkgErrors.Newf(pkgErrors.ErrNotFound, "用户不存在: %v", missing)
		}
		if nonStudents := lo.Filter(users, func(u *model.User, _ int) bool {
			return u.Role != constants.RoleStudent
		}); len(nonStudents) > 0 {
			return pkgErrors.Newf(pkgErrors.ErrBadRequest, "只能为学生选课: %s", nonStudents[0].Username)
		}

		existing, err := repos.Enrollment.ListBySectionAndUsers(sectionID, userIDs)
		if err != nil {
			return err
		}
		enrolled := lo.Map(existing, func(e *model.Enrollment, _ int) int64 { return e.UserID })

		enrolledAt := time.Now()
		enrollments := lo.Map(lo.Without(userIDs, enrolled...), func(uid int64, _ int) *model.Enrollment {
			return &model.Enrollment{UserID: uid, SectionID: sectionID, EnrolledAt: enrolledAt}
		})
		created, err = repos.Enrollment.CreateIgnoreDuplicates(enrollments)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("批量选课",
		zap.Int64("section_id", sectionID),
		zap.Int("requested", len(userIDs)),
		zap.Int64("created", created))
	return &dto.EnrollResponse{SectionID: sectionID, Requested: len(userIDs), Created: created}, nil
}

func (s *sectionService) ListEnrollments(ctx context.Context, caller *dto.Caller, sectionID int64) ([]*dto.EnrollmentResponse, error) {
	if err := auth.Require(caller, auth.PermCatalogView); err != nil {
		return nil, err
	}
	repos := repository.NewRepository(s.db.WithContext(ctx))
	if _, err := findSection(repos, sectionID); err != nil {
		return nil, err
	}
	enrollments, err := repos.Enrollment.ListBySection(sectionID)
	if err != nil {
		return nil, err
	}
	return lo.Map(enrollments, func(e *model.Enrollment, _ int) *dto.EnrollmentResponse {
		return &dto.EnrollmentResponse{
			UserID:     e.UserID,
			SectionID:  e.SectionID,
			User:       toUserBrief(e.User),
			EnrolledAt: formatTime(e.EnrolledAt),
		}
	}), nil
}

func validateTeamSize(minSize, maxSize int) error {
	if minSize <= 0 || maxSize <= 0 || minSize > maxSize {
		return pkgErrors.Newf(pkgErrors.ErrBadRequest, "团队人数范围无效: %d..%d", minSize, maxSize)
	}
	return nil
}
