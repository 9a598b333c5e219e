package errors

import (
	stderrors "errors"
	"fmt"
)

// 错误码
const (
	CodeSuccess            = 200
	CodeBadRequest         = 400
	CodeUnauthorized       = 401
	CodeForbidden          = 403
	CodeNotFound           = 404
	CodeConflict           = 409
	CodeCapacityExceeded   = 4091
	CodeAlreadyTeamed      = 4092
	CodeInvalidTransition  = 4093
	CodeMinimumMembers     = 4221
	CodeEmptySelection     = 4222
	CodeNoSectionAvailable = 4223
	CodeNotEnrolled        = 4224
	CodeInternalError      = 500
	CodeDatabaseError      = 501
	CodeValidationError    = 503
)

// Kind 错误类别（机器可判定）
type Kind string

const (
	KindUnauthorized       Kind = "Unauthorized"
	KindForbidden          Kind = "Forbidden"
	KindNotFound           Kind = "NotFound"
	KindConflict           Kind = "Conflict"
	KindCapacityExceeded   Kind = "CapacityExceeded"
	KindInvalidTransition  Kind = "InvalidTransition"
	KindMinimumMembers     Kind = "MinimumMembers"
	KindEmptySelection     Kind = "EmptySelection"
	KindNoSectionAvailable Kind = "NoSectionAvailable"
	KindAlreadyTeamed      Kind = "AlreadyTeamed"
	KindNotEnrolled        Kind = "NotEnrolled"
	KindBadRequest         Kind = "BadRequest"
	KindInternal           Kind = "Internal"
)

// AppError 应用错误
type AppError struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按 Kind 匹配, errors.Is(err, ErrForbidden) 对同类错误均成立
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New 创建新错误
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kindOfCode(code),
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kindOfCode(code),
		Message: message,
		Err:     err,
	}
}

// Newf 基于预定义错误生成带具体信息的错误, 保留 Code/Kind
func Newf(base *AppError, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    base.Code,
		Kind:    base.Kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// KindOf 提取错误类别, 非 AppError 视为 Internal
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// As 提取 AppError
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := stderrors.As(err, &appErr)
	return appErr, ok
}

func kindOfCode(code int) Kind {
	switch code {
	case CodeBadRequest, CodeValidationError:
		return KindBadRequest
	case CodeUnauthorized:
		return KindUnauthorized
	case CodeForbidden:
		return KindForbidden
	case CodeNotFound:
		return KindNotFound
	case CodeConflict:
		return KindConflict
	case CodeCapacityExceeded:
		return KindCapacityExceeded
	case CodeAlreadyTeamed:
		return KindAlreadyTeamed
	case CodeInvalidTransition:
		return KindInvalidTransition
	case CodeMinimumMembers:
		return KindMinimumMembers
	case CodeEmptySelection:
		return KindEmptySelection
	case CodeNoSectionAvailable:
		return KindNoSectionAvailable
	case CodeNotEnrolled:
		return KindNotEnrolled
	default:
		return KindInternal
	}
}

// 预定义错误
var (
	ErrBadRequest      = New(CodeBadRequest, "请求参数错误")
	ErrUnauthorized    = New(CodeUnauthorized, "未授权")
	ErrForbidden       = New(CodeForbidden, "禁止访问")
	ErrNotFound        = New(CodeNotFound, "资源不存在")
	ErrConflict        = New(CodeConflict, "资源冲突")
	ErrInternalError   = New(CodeInternalError, "内部服务器错误")
	ErrDatabaseError   = New(CodeDatabaseError, "数据库错误")
	ErrValidationError = New(CodeValidationError, "数据验证失败")

	ErrInvalidToken   = New(CodeUnauthorized, "无效的Token")
	ErrTokenExpired   = New(CodeUnauthorized, "Token已过期")
	ErrRecordNotFound = New(CodeNotFound, "记录不存在")
	ErrRecordExists   = New(CodeConflict, "记录已存在")

	// 具体业务错误
	ErrCapacityExceeded   = New(CodeCapacityExceeded, "指导教师已达到可指导项目上限")
	ErrInvalidTransition  = New(CodeInvalidTransition, "当前状态不允许该操作")
	ErrMinimumMembers     = New(CodeMinimumMembers, "团队至少需要保留一名成员")
	ErrEmptySelection     = New(CodeEmptySelection, "没有符合条件的团队")
	ErrNoSectionAvailable = New(CodeNoSectionAvailable, "没有可用的课程班级")
	ErrAlreadyTeamed      = New(CodeAlreadyTeamed, "该学生在本班级已有团队")
	ErrNotEnrolled        = New(CodeNotEnrolled, "该学生未选修本班级")
	ErrProjectApproved    = New(CodeForbidden, "项目已审批通过, 不允许修改")
	ErrTeamLocked         = New(CodeForbidden, "班级已锁定团队, 不允许变更成员")
	ErrNotTeamMember      = New(CodeForbidden, "您不是该团队成员")
	ErrTeamFull           = New(CodeConflict, "团队人数已达上限")
	ErrProjectExists      = New(CodeConflict, "团队已有项目")
)
