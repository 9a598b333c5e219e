package service

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"capstone/internal/adapter/notification"
	"capstone/internal/core/projectflow"
)

// Services 业务服务集合
type Services struct {
	User         UserService
	Term         TermService
	Section      SectionService
	Team         TeamService
	Invitation   InvitationService
	Project      ProjectService
	Advisor      AdvisorService
	Continuation ContinuationService
	Notification NotificationService
}

// NewServices 组装全部服务, 项目状态机在服务间共享
func NewServices(db *gorm.DB, notifier notification.Notifier, opts Options, logger *zap.Logger) *Services {
	flow := projectflow.NewMachine()
	teams := NewTeamService(db, notifier, opts, logger)

	return &Services{
		User:         NewUserService(db, logger),
		Term:         NewTermService(db, logger),
		Section:      NewSectionService(db, logger),
		Team:         teams,
		Invitation:   NewInvitationService(db, teams, opts, logger),
		Project:      NewProjectService(db, flow, notifier, opts, logger),
		Advisor:      NewAdvisorService(db, flow, notifier, opts, logger),
		Continuation: NewContinuationService(db, logger),
		Notification: NewNotificationService(db),
	}
}
