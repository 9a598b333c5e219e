package projectflow

import "capstone/pkg/constants"

// Event 触发状态流转的动作
type Event string

const (
	EventAttachAdvisor Event = "attach_advisor" // 选择指导教师
	EventDetachAdvisor Event = "detach_advisor" // 移除指导教师
	EventApprove       Event = "approve"        // 审批通过
	EventReject        Event = "reject"         // 审批驳回
)

type StateTransition struct {
	From  string
	To    string
	Event Event
}

func (m *Machine) registerTransitions() {
	var transitions = []StateTransition{
		// 草稿 -> 待审批
		{
			From:  constants.ProjectStatusDraft,
			To:    constants.ProjectStatusPending,
			Event: EventAttachAdvisor,
		},
		// 待审批 -> 待审批（更换指导教师）
		{
			From:  constants.ProjectStatusPending,
			To:    constants.ProjectStatusPending,
			Event: EventAttachAdvisor,
		},
		// 已驳回 -> 待审批（重新选择指导教师）
		{
			From:  constants.ProjectStatusRejected,
			To:    constants.ProjectStatusPending,
			Event: EventAttachAdvisor,
		},
		// 待审批 -> 草稿
		{
			From:  constants.ProjectStatusPending,
			To:    constants.ProjectStatusDraft,
			Event: EventDetachAdvisor,
		},
		// 待审批 -> 已通过
		{
			From:  constants.ProjectStatusPending,
			To:    constants.ProjectStatusApproved,
			Event: EventApprove,
		},
		// 待审批 -> 已驳回
		{
			From:  constants.ProjectStatusPending,
			To:    constants.ProjectStatusRejected,
			Event: EventReject,
		},
	}

	for _, t := range transitions {
		if _, ok := m.transitions[t.From]; !ok {
			m.transitions[t.From] = make(map[string]StateTransition)
		}
		m.transitions[t.From][t.To] = t
	}
}
