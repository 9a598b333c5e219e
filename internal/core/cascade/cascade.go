package cascade

import (
	"gorm.io/gorm"

	"capstone/internal/model"
	pkgErrors "capstone/pkg/errors"
)

// Result 级联删除统计
type Result struct {
	Projects    int64 `json:"projects"`
	Tasks       int64 `json:"tasks"`
	Members     int64 `json:"members"`
	Teams       int64 `json:"teams"`
	Invitations int64 `json:"invitations"`
}

// DeleteProjects 按子先父后的顺序删除项目及其下属数据, 调用方负责开启事务
// 顺序: Grade, Notification, ProjectAdvisor, ProjectReview, TaskAssignment, Comment, Attachment, Task, Project
func DeleteProjects(tx *gorm.DB, projectIDs []int64) (*Result, error) {
	result := &Result{}
	if len(projectIDs) == 0 {
		return result, nil
	}

	var taskIDs []int64
	if err := tx.Model(&model.Task{}).Where("project_id IN ?", projectIDs).Pluck("id", &taskIDs).Error; err != nil {
		return nil, wrap("查询项目任务失败", err)
	}

	steps := []struct {
		msg   string
		model interface{}
		query string
		args  []int64
	}{
		{"删除项目成绩失败", &model.Grade{}, "project_id IN ?", projectIDs},
		{"删除项目通知失败", &model.Notification{}, "project_id IN ?", projectIDs},
		{"删除指导教师关联失败", &model.ProjectAdvisor{}, "project_id IN ?", projectIDs},
		{"删除审批记录失败", &model.ProjectReview{}, "project_id IN ?", projectIDs},
		{"删除任务分配失败", &model.TaskAssignment{}, "task_id IN ?", taskIDs},
		{"删除任务评论失败", &model.Comment{}, "task_id IN ?", taskIDs},
		{"删除任务附件失败", &model.Attachment{}, "task_id IN ?", taskIDs},
	}
	for _, step := range steps {
		if len(step.args) == 0 {
			continue
		}
		if err := tx.Where(step.query, step.args).Delete(step.model).Error; err != nil {
			return nil, wrap(step.msg, err)
		}
	}

	res := tx.Where("project_id IN ?", projectIDs).Delete(&model.Task{})
	if res.Error != nil {
		return nil, wrap("删除项目任务失败", res.Error)
	}
	result.Tasks = res.RowsAffected

	res = tx.Where("id IN ?", projectIDs).Delete(&model.Project{})
	if res.Error != nil {
		return nil, wrap("删除项目失败", res.Error)
	}
	result.Projects = res.RowsAffected
	return result, nil
}

// DeleteTeams 删除团队及其项目、邀请、通知与成员, 调用方负责开启事务
func DeleteTeams(tx *gorm.DB, teamIDs []int64) (*Result, error) {
	if len(teamIDs) == 0 {
		return &Result{}, nil
	}

	var projectIDs []int64
	if err := tx.Model(&model.Project{}).Where("team_id IN ?", teamIDs).Pluck("id", &projectIDs).Error; err != nil {
		return nil, wrap("查询团队项目失败", err)
	}

	result, err := DeleteProjects(tx, projectIDs)
	if err != nil {
		return nil, err
	}

	if err := tx.Where("team_id IN ?", teamIDs).Delete(&model.Notification{}).Error; err != nil {
		return nil, wrap("删除团队通知失败", err)
	}

	res := tx.Where("team_id IN ?", teamIDs).Delete(&model.Invitation{})
	if res.Error != nil {
		return nil, wrap("删除团队邀请失败", res.Error)
	}
	result.Invitations = res.RowsAffected

	res = tx.Where("team_id IN ?", teamIDs).Delete(&model.TeamMember{})
	if res.Error != nil {
		return nil, wrap("删除团队成员失败", res.Error)
	}
	result.Members = res.RowsAffected

	res = tx.Where("id IN ?", teamIDs).Delete(&model.Team{})
	if res.Error != nil {
		return nil, wrap("删除团队失败", res.Error)
	}
	result.Teams = res.RowsAffected
	return result, nil
}

func wrap(msg string, err error) error {
	return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, msg, err)
}
