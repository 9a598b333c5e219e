package auth

import (
	"strings"

	"capstone/internal/dto"
	"capstone/pkg/constants"
	pkgErrors "capstone/pkg/errors"
)

// Role 内置角色
type Role string

const (
	RoleStudent Role = constants.RoleStudent
	RoleAdvisor Role = constants.RoleAdvisor
	RoleAdmin   Role = constants.RoleAdmin
)

// Permission 内置权限
type Permission string

const (
	PermTermManage    Permission = "catalog:term:manage"
	PermSectionManage Permission = "catalog:section:manage"
	PermCatalogView   Permission = "catalog:view"
	PermEnroll        Permission = "enrollment:manage"
	PermContinue      Permission = "continuation:run"
	PermUserManage    Permission = "user:manage"

	PermTeamCreate Permission = "team:create"
	PermTeamMember Permission = "team:member"
	PermTeamView   Permission = "team:view"
	PermTeamDelete Permission = "team:delete"

	PermInvitationView    Permission = "invitation:view"
	PermInvitationRespond Permission = "invitation:respond"
	PermNotificationView  Permission = "notification:view"

	PermProjectWrite  Permission = "project:write"
	PermProjectView   Permission = "project:view"
	PermProjectDecide Permission = "project:decide"

	PermAdvisorSelect Permission = "advisor:select"
	PermAdvisorView   Permission = "advisor:view"
)

// RolePermissions 每个角色拥有的权限集合
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		"*",
	},
	RoleStudent: {
		"catalog:view",
		"team:create",
		"team:member",
		"team:view",
		"invitation:*",
		"notification:view",
		"project:write",
		"project:view",
		"advisor:*",
	},
	RoleAdvisor: {
		"catalog:view",
		"team:view",
		"project:view",
		"project:decide",
		"advisor:view",
		"notification:view",
	},
}

// Allow 判断角色是否拥有所需权限，支持通配符
func Allow(role string, need Permission) bool {
	for _, p := range RolePermissions[Role(role)] {
		if match(p, need) {
			return true
		}
	}
	return false
}

// Require 能力检查, 在每个核心操作之前调用
func Require(caller *dto.Caller, need Permission) error {
	if caller == nil || caller.UserID <= 0 {
		return pkgErrors.ErrUnauthorized
	}
	if !Allow(caller.Role, need) {
		return pkgErrors.Newf(pkgErrors.ErrForbidden, "角色 %s 无权执行 %s", caller.Role, need)
	}
	return nil
}

// IsAdmin 是否管理员
func IsAdmin(caller *dto.Caller) bool {
	return caller != nil && caller.Role == constants.RoleAdmin
}

// match 逐段比较, "*" 匹配其后剩余所有段
func match(have, need Permission) bool {
	if have == "*" || have == need {
		return true
	}

	haveParts := strings.Split(string(have), ":")
	needParts := strings.Split(string(need), ":")

	for i, part := range haveParts {
		if part == "*" {
			return i < len(needParts)
		}
		if i >= len(needParts) || part != needParts[i] {
			return false
		}
	}
	return len(haveParts) == len(needParts)
}
