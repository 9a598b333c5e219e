package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"capstone/internal/dto"
	"capstone/internal/model"
	"capstone/internal/pkg/auth"
	"capstone/internal/repository"
	pkgErrors "capstone/pkg/errors"
)

type TermService interface {
	CreateTerm(ctx context.Context, caller *dto.Caller, req *dto.CreateTermRequest) (*dto.TermResponse, error)
	ListTerms(ctx context.Context, caller *dto.Caller) ([]*dto.TermResponse, error)
	DeleteTerm(ctx context.Context, caller *dto.Caller, termID int64) error
}

type termService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewTermService(db *gorm.DB, logger *zap.Logger) TermService {
	return &termService{db: db, logger: logger}
}

func (s *termService) CreateTerm(ctx context.Context, caller *dto.Caller, req *dto.CreateTermRequest) (*dto.TermResponse, error) {
	if err := auth.Require(caller, auth.PermTermManage); err != nil {
		return nil, err
	}
	repo := repository.NewTermRepository(s.db.WithContext(ctx))

	if _, err := repo.FindByYearSemester(req.AcademicYear, req.Semester); err == nil {
		return nil, pkgErrors.Newf(pkgErrors.ErrRecordExists, "学期 %d/%d 已存在", req.Semester, req.AcademicYear)
	} else if !errors.Is(err, pkgErrors.ErrRecordNotFound) {
		return nil, err
	}

	term := &model.Term{AcademicYear: req.AcademicYear, Semester: req.Semester}
	if err := repo.Create(term); err != nil {
		return nil, err
	}
	s.logger.Info("创建学期", zap.Int64("term_id", term.ID), zap.String("label", term.Label()))
	return toTermResponse(term), nil
}

func (s *termService) ListTerms(ctx context.Context, caller *dto.Caller) ([]*dto.TermResponse, error) {
	if err := auth.Require(caller, auth.PermCatalogView); err != nil {
		return nil, err
	}
	terms, err := repository.NewTermRepository(s.db.WithContext(ctx)).List()
	if err != nil {
		return nil, err
	}
	responses := make([]*dto.TermResponse, len(terms))
	for i, t := range terms {
		responses[i] = toTermResponse(t)
	}
	return responses, nil
}

// DeleteTerm 学期被班级引用后不可删除
func (s *termService) DeleteTerm(ctx context.Context, caller *dto.Caller, termID int64) error {
	if err := auth.Require(caller, auth.PermTermManage); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repository.NewTermRepository(tx)
		if _, err := repo.FindByID(termID); err != nil {
			if errors.Is(err, pkgErrors.ErrRecordNotFound) {
				return pkgErrors.Newf(pkgErrors.ErrNotFound, "学期不存在")
			}
			return err
		}
		count, err := repo.CountSections(termID)
		if err != nil {
			return err
		}
		if count > 0 {
			return pkgErrors.Newf(pkgErrors.ErrConflict, "学期下还有 %d 个班级, 不能删除", count)
		}
		return repo.Delete(termID)
	})
}
