package projectflow

import (
	"capstone/internal/model"
	"capstone/internal/pkg/metrics"
	"capstone/internal/repository"
	pkgErrors "capstone/pkg/errors"
	"capstone/pkg/constants"

	"gorm.io/gorm"
)

// Machine 项目状态机, 不依赖 HTTP 上下文
type Machine struct {
	transitions map[string]map[string]StateTransition
}

func NewMachine() *Machine {
	m := &Machine{
		transitions: make(map[string]map[string]StateTransition),
	}
	m.registerTransitions()
	return m
}

// Lookup 返回 from -> to 的流转定义
func (m *Machine) Lookup(from, to string) (StateTransition, bool) {
	t, ok := m.transitions[from][to]
	return t, ok
}

// Check 校验 event 是否允许 from -> to
func (m *Machine) Check(from, to string, event Event) error {
	if from == constants.ProjectStatusApproved {
		return pkgErrors.ErrProjectApproved
	}
	t, ok := m.Lookup(from, to)
	if !ok || t.Event != event {
		return pkgErrors.Newf(pkgErrors.ErrInvalidTransition, "项目状态不允许从 %s 变更为 %s",
			constants.ProjectStatusToString(from), constants.ProjectStatusToString(to))
	}
	return nil
}

// Apply 在事务 tx 中执行状态流转, 状态条件更新防止并发覆盖
// extra 为随状态一同写入的字段
func (m *Machine) Apply(tx *gorm.DB, project *model.Project, to string, event Event, extra map[string]interface{}) error {
	from := project.Status
	if err := m.Check(from, to, event); err != nil {
		return err
	}

	affected, err := repository.NewProjectRepository(tx).ChangeStatus(project.ID, from, to, extra)
	if err != nil {
		return err
	}
	if affected == 0 {
		return pkgErrors.Newf(pkgErrors.ErrConflict, "项目状态已被其他操作修改, 请刷新后重试")
	}

	project.Status = to
	if from != to {
		metrics.ProjectTransitions.WithLabelValues(from, to).Inc()
	}
	return nil
}
