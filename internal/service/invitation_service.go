package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"capstone/internal/dto"
	"capstone/internal/model"
	"capstone/internal/pkg/auth"
	"capstone/internal/repository"
)

// InvitationService 邀请信箱, 接受/拒绝委托给 TeamService
type InvitationService interface {
	ListPending(ctx context.Context, caller *dto.Caller) ([]*dto.InvitationResponse, error)
	Accept(ctx context.Context, caller *dto.Caller, invitationID int64) (*dto.TeamResponse, error)
	Reject(ctx context.Context, caller *dto.Caller, invitationID int64) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type invitationService struct {
	db     *gorm.DB
	teams  TeamService
	opts   Options
	logger *zap.Logger
}

func NewInvitationService(db *gorm.DB, teams TeamService, opts Options, logger *zap.Logger) InvitationService {
	return &invitationService{
		db:     db,
		teams:  teams,
		opts:   opts,
		logger: logger,
	}
}

func (s *invitationService) ListPending(ctx context.Context, caller *dto.Caller) ([]*dto.InvitationResponse, error) {
	if err := auth.Require(caller, auth.PermInvitationView); err != nil {
		return nil, err
	}
	invitations, err := repository.NewInvitationRepository(s.db.WithContext(ctx)).ListPendingForInvitee(caller.UserID)
	if err != nil {
		return nil, err
	}

	current := now()
	responses := make([]*dto.InvitationResponse, 0, len(invitations))
	for _, invitation := range invitations {
		if invitation.Expired(current, s.opts.InvitationTTL) {
			continue
		}
		responses = append(responses, toInvitationResponse(invitation, s.opts.InvitationTTL))
	}
	return responses, nil
}

func (s *invitationService) Accept(ctx context.Context, caller *dto.Caller, invitationID int64) (*dto.TeamResponse, error) {
	return s.teams.AcceptInvitation(ctx, caller, invitationID)
}

func (s *invitationService) Reject(ctx context.Context, caller *dto.Caller, invitationID int64) error {
	return s.teams.RejectInvitation(ctx, caller, invitationID)
}

// PurgeExpired 清理过期的待处理邀请, 由定时任务调用
func (s *invitationService) PurgeExpired(ctx context.Context) (int64, error) {
	if s.opts.InvitationTTL <= 0 {
		return 0, nil
	}
	before := now().Add(-s.opts.InvitationTTL)
	deleted, err := repository.NewInvitationRepository(s.db.WithContext(ctx)).DeletePendingCreatedBefore(before)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("清理过期邀请", zap.Int64("deleted", deleted), zap.Time("before", before))
	}
	return deleted, nil
}

func toInvitationResponse(invitation *model.Invitation, ttl time.Duration) *dto.InvitationResponse {
	resp := &dto.InvitationResponse{
		ID:        invitation.ID,
		TeamID:    invitation.TeamID,
		SectionID: invitation.SectionID,
		InviteeID: invitation.InviteeID,
		Status:    invitation.Status,
		CreatedAt: formatTime(invitation.CreatedAt),
	}
	if invitation.Team != nil {
		resp.GroupNumber = invitation.Team.GroupNumber
	}
	if invitation.Inviter != nil {
		resp.Inviter = toUserBrief(invitation.Inviter)
	} else {
		resp.Inviter = &dto.UserBrief{ID: invitation.InviterID}
	}
	if ttl > 0 {
		resp.ExpiresAt = formatTime(invitation.CreatedAt.Add(ttl))
	}
	return resp
}
