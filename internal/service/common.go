package service

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"capstone/internal/dto"
	"capstone/internal/model"
	"capstone/internal/pkg/config"
	"capstone/pkg/constants"
)

// Options 业务规则参数
type Options struct {
	MaxAdvisorProjects int
	GroupNumberWidth   int
	InvitationTTL      time.Duration
}

// DefaultOptions 默认业务规则
func DefaultOptions() Options {
	return Options{
		MaxAdvisorProjects: constants.DefaultMaxAdvisorProjects,
		GroupNumberWidth:   constants.DefaultGroupNumberWidth,
		InvitationTTL:      14 * 24 * time.Hour,
	}
}

// OptionsFromConfig 由配置生成业务规则
func OptionsFromConfig(cfg *config.CapstoneConfig) Options {
	cfg.Normalize()
	return Options{
		MaxAdvisorProjects: cfg.MaxAdvisorProjects,
		GroupNumberWidth:   cfg.GroupNumberWidth,
		InvitationTTL:      cfg.InvitationTTLDuration(),
	}
}

var now = time.Now

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func toUserBrief(u *model.User) *dto.UserBrief {
	if u == nil {
		return nil
	}
	return &dto.UserBrief{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        u.Role,
	}
}

func toTermResponse(t *model.Term) *dto.TermResponse {
	if t == nil {
		return nil
	}
	return &dto.TermResponse{
		ID:           t.ID,
		AcademicYear: t.AcademicYear,
		Semester:     t.Semester,
		Label:        t.Label(),
	}
}

func toSectionResponse(s *model.Section) *dto.SectionResponse {
	return &dto.SectionResponse{
		ID:              s.ID,
		TermID:          s.TermID,
		Term:            toTermResponse(s.Term),
		SectionCode:     s.SectionCode,
		CourseType:      s.CourseType,
		StudyType:       s.StudyType,
		MinTeamSize:     s.MinTeamSize,
		MaxTeamSize:     s.MaxTeamSize,
		ProjectDeadline: formatTimePtr(s.ProjectDeadline),
		TeamLocked:      s.TeamLocked,
		ContinuedFromID: s.ContinuedFromID,
		CreatedAt:       formatTime(s.CreatedAt),
	}
}

func toProjectResponse(p *model.Project) *dto.ProjectResponse {
	if p == nil {
		return nil
	}
	resp := &dto.ProjectResponse{
		ID:                p.ID,
		TeamID:            p.TeamID,
		ProjectName:       p.ProjectName,
		ProjectNameEng:    p.ProjectNameEng,
		ProjectType:       p.ProjectType,
		Description:       p.Description,
		Status:            p.Status,
		StatusName:        constants.ProjectStatusToString(p.Status),
		LastReviewComment: p.LastReviewComment,
		CreatedAt:         formatTime(p.CreatedAt),
		UpdatedAt:         formatTime(p.UpdatedAt),
	}
	if p.Advisor != nil {
		advisorID := p.Advisor.AdvisorID
		resp.AdvisorID = &advisorID
	}
	return resp
}

func toTeamResponse(t *model.Team) *dto.TeamResponse {
	members := make([]*dto.UserBrief, 0, len(t.Members))
	for i := range t.Members {
		m := t.Members[i]
		if m.User != nil {
			members = append(members, toUserBrief(m.User))
		} else {
			members = append(members, &dto.UserBrief{ID: m.UserID})
		}
	}
	return &dto.TeamResponse{
		ID:           t.ID,
		SectionID:    t.SectionID,
		CohortTermID: t.CohortTermID,
		GroupNumber:  t.GroupNumber,
		Name:         t.Name,
		Members:      members,
		Project:      toProjectResponse(t.Project),
		CreatedAt:    formatTime(t.CreatedAt),
	}
}

// newNotification 构造发件箱记录
func newNotification(userID int64, notifyType, title, content string, teamID, projectID *int64, payload map[string]interface{}) *model.Notification {
	n := &model.Notification{
		UserID:    userID,
		TeamID:    teamID,
		ProjectID: projectID,
		Type:      notifyType,
		Title:     title,
		Content:   content,
	}
	if len(payload) > 0 {
		if data, err := json.Marshal(payload); err == nil {
			n.Payload = datatypes.JSON(data)
		}
	}
	return n
}

func int64Ptr(v int64) *int64 {
	return &v
}
