package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"capstone/internal/model"
	"capstone/internal/pkg/config"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, msg *Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func TestFromModel(t *testing.T) {
	teamID := int64(7)
	n := &model.Notification{
		UserID:  3,
		TeamID:  &teamID,
		Type:    "invitation",
		Title:   "入队邀请",
		Payload: datatypes.JSON(`{"invitation_id": 11}`),
	}
	n.ID = 5

	msg := FromModel(n)
	assert.Equal(t, int64(5), msg.ID)
	assert.Equal(t, int64(3), msg.UserID)
	assert.Equal(t, &teamID, msg.TeamID)
	assert.EqualValues(t, 11, msg.Extra["invitation_id"])
}

func TestMultiNotifierContinuesAfterFailure(t *testing.T) {
	first := new(mockNotifier)
	second := new(mockNotifier)
	first.On("Send", mock.Anything, mock.Anything).Return(errors.New("boom"))
	second.On("Send", mock.Anything, mock.Anything).Return(nil)

	m := NewMultiNotifier(zap.NewNop(), first, second)
	err := m.Send(context.Background(), &Message{UserID: 1})

	assert.Error(t, err)
	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestDeliverSendsEveryNotification(t *testing.T) {
	n := new(mockNotifier)
	n.On("Send", mock.Anything, mock.MatchedBy(func(msg *Message) bool { return msg.UserID == 1 })).Return(nil).Once()
	n.On("Send", mock.Anything, mock.MatchedBy(func(msg *Message) bool { return msg.UserID == 2 })).Return(errors.New("down")).Once()

	Deliver(context.Background(), n, zap.NewNop(), []*model.Notification{
		{UserID: 1, Type: "decision"},
		{UserID: 2, Type: "decision"},
	})

	n.AssertExpectations(t)
}

func TestNewNotifier(t *testing.T) {
	logger := zap.NewNop()

	n, err := NewNotifier(&config.NotificationConfig{Enabled: false}, nil, logger)
	require.NoError(t, err)
	assert.IsType(t, noopNotifier{}, n)

	n, err = NewNotifier(&config.NotificationConfig{Enabled: true, Provider: "log"}, nil, logger)
	require.NoError(t, err)
	assert.IsType(t, &LogNotifier{}, n)

	_, err = NewNotifier(&config.NotificationConfig{Enabled: true, Provider: "redis"}, nil, logger)
	assert.Error(t, err)

	_, err = NewNotifier(&config.NotificationConfig{Enabled: true, Provider: "lark"}, nil, logger)
	assert.Error(t, err)
}
