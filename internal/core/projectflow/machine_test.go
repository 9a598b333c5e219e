package projectflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	pkgErrors "capstone/pkg/errors"
	"capstone/pkg/constants"
)

func TestMachineCheck(t *testing.T) {
	m := NewMachine()

	tests := []struct {
		name  string
		from  string
		to    string
		event Event
		kind  pkgErrors.Kind
	}{
		{"草稿选择教师", constants.ProjectStatusDraft, constants.ProjectStatusPending, EventAttachAdvisor, ""},
		{"待审批更换教师", constants.ProjectStatusPending, constants.ProjectStatusPending, EventAttachAdvisor, ""},
		{"驳回后重新选择", constants.ProjectStatusRejected, constants.ProjectStatusPending, EventAttachAdvisor, ""},
		{"待审批移除教师", constants.ProjectStatusPending, constants.ProjectStatusDraft, EventDetachAdvisor, ""},
		{"审批通过", constants.ProjectStatusPending, constants.ProjectStatusApproved, EventApprove, ""},
		{"审批驳回", constants.ProjectStatusPending, constants.ProjectStatusRejected, EventReject, ""},
		{"草稿不能审批", constants.ProjectStatusDraft, constants.ProjectStatusApproved, EventApprove, pkgErrors.KindInvalidTransition},
		{"驳回不能移除教师", constants.ProjectStatusRejected, constants.ProjectStatusDraft, EventDetachAdvisor, pkgErrors.KindInvalidTransition},
		{"驳回不能再次审批", constants.ProjectStatusRejected, constants.ProjectStatusApproved, EventApprove, pkgErrors.KindInvalidTransition},
		{"事件不匹配", constants.ProjectStatusPending, constants.ProjectStatusDraft, EventAttachAdvisor, pkgErrors.KindInvalidTransition},
		{"已通过为终态", constants.ProjectStatusApproved, constants.ProjectStatusDraft, EventDetachAdvisor, pkgErrors.KindForbidden},
		{"已通过不能换教师", constants.ProjectStatusApproved, constants.ProjectStatusPending, EventAttachAdvisor, pkgErrors.KindForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Check(tt.from, tt.to, tt.event)
			if tt.kind == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.kind, pkgErrors.KindOf(err))
		})
	}
}

func TestApprovedHasNoOutgoingTransition(t *testing.T) {
	m := NewMachine()
	for _, to := range []string{
		constants.ProjectStatusDraft,
		constants.ProjectStatusPending,
		constants.ProjectStatusRejected,
		constants.ProjectStatusApproved,
	} {
		_, ok := m.Lookup(constants.ProjectStatusApproved, to)
		assert.False(t, ok, to)
	}
}
