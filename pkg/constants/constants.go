package constants

import "fmt"

// 用户角色（由身份目录下发, 以 users 表为准）
const (
	RoleStudent = "STUDENT"
	RoleAdvisor = "ADVISOR"
	RoleAdmin   = "ADMIN"
)

// ProjectStatus 项目状态
const (
	ProjectStatusDraft    = "DRAFT"    // 草稿, 未选择指导教师
	ProjectStatusPending  = "PENDING"  // 已选择指导教师, 待审批
	ProjectStatusApproved = "APPROVED" // 已通过, 终态
	ProjectStatusRejected = "REJECTED" // 已驳回, 可重新选择指导教师
)

var projectStatusName = map[string]string{
	ProjectStatusDraft:    "草稿",
	ProjectStatusPending:  "待审批",
	ProjectStatusApproved: "已通过",
	ProjectStatusRejected: "已驳回",
}

// ProjectStatusToString 状态 → 展示名称
func ProjectStatusToString(status string) string {
	if name, ok := projectStatusName[status]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%s)", status)
}

// 审批决定
const (
	DecisionApproved = ProjectStatusApproved
	DecisionRejected = ProjectStatusRejected
)

// 课程阶段
const (
	CourseTypePreProject = "PRE_PROJECT"
	CourseTypeProject    = "PROJECT"
)

// 邀请状态, 拒绝时直接删除
const (
	InvitationStatusPending  = "PENDING"
	InvitationStatusAccepted = "ACCEPTED"
)

// 通知类型
const (
	NotificationTypeInvitation    = "team_invitation"
	NotificationTypeAdvisorAttach = "advisor_attached"
	NotificationTypeDecision      = "project_decision"
)

// 团队删除原因（指标标签）
const (
	TeamDeleteReasonLastMember = "last_member_left"
	TeamDeleteReasonAdmin      = "admin_delete"
)

// 默认值
const (
	DefaultMaxAdvisorProjects = 2
	DefaultGroupNumberWidth   = 3
)

// JWT 相关
const (
	CallerContextKey = "caller"
	JWTTypeAccess    = "access"
)

// HTTP Header
const (
	HeaderAuthorization = "Authorization"
	HeaderBearerPrefix  = "Bearer "
	HeaderRequestID     = "X-Request-ID"
)
