package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"capstone/internal/dto"
	"capstone/internal/pkg/config"
)

type mockInvitations struct {
	mock.Mock
}

func (m *mockInvitations) ListPending(ctx context.Context, caller *dto.Caller) ([]*dto.InvitationResponse, error) {
	args := m.Called(caller)
	return args.Get(0).([]*dto.InvitationResponse), args.Error(1)
}

func (m *mockInvitations) Accept(ctx context.Context, caller *dto.Caller, invitationID int64) (*dto.TeamResponse, error) {
	args := m.Called(caller, invitationID)
	return args.Get(0).(*dto.TeamResponse), args.Error(1)
}

func (m *mockInvitations) Reject(ctx context.Context, caller *dto.Caller, invitationID int64) error {
	return m.Called(caller, invitationID).Error(0)
}

func (m *mockInvitations) PurgeExpired(ctx context.Context) (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func TestSweepInvitations(t *testing.T) {
	invitations := &mockInvitations{}
	invitations.On("PurgeExpired").Return(int64(3), nil).Once()

	s := NewScheduler(invitations, zap.NewNop())
	deleted, err := s.SweepInvitations()
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	invitations.AssertExpectations(t)
}

func TestStartRegistersSweep(t *testing.T) {
	s := NewScheduler(&mockInvitations{}, zap.NewNop())
	require.NoError(t, s.Start(&config.SchedulerConfig{InvitationSweep: "0 0 3 * * *"}))
	defer s.Stop()

	assert.Contains(t, s.Entries(), jobInvitationSweep)
}

func TestStartRejectsBadExpression(t *testing.T) {
	s := NewScheduler(&mockInvitations{}, zap.NewNop())
	assert.Error(t, s.Start(&config.SchedulerConfig{InvitationSweep: "not a cron"}))
}
