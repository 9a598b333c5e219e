package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
// 事务内通过 NewRepository(tx) 获得绑定到同一事务的实例
type Repository struct {
	User           UserRepository
	Term           TermRepository
	Section        SectionRepository
	Enrollment     EnrollmentRepository
	Team           TeamRepository
	TeamMember     TeamMemberRepository
	Invitation     InvitationRepository
	Project        ProjectRepository
	ProjectAdvisor ProjectAdvisorRepository
	ProjectReview  ProjectReviewRepository
	Notification   NotificationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:           NewUserRepository(db),
		Term:           NewTermRepository(db),
		Section:        NewSectionRepository(db),
		Enrollment:     NewEnrollmentRepository(db),
		Team:           NewTeamRepository(db),
		TeamMember:     NewTeamMemberRepository(db),
		Invitation:     NewInvitationRepository(db),
		Project:        NewProjectRepository(db),
		ProjectAdvisor: NewProjectAdvisorRepository(db),
		ProjectReview:  NewProjectReviewRepository(db),
		Notification:   NewNotificationRepository(db),
	}
}
