package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"capstone/internal/model"
	"capstone/internal/pkg/config"
)

// Message 投递的通知消息
type Message struct {
	ID        int64                  `json:"id"`
	UserID    int64                  `json:"user_id"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Content   string                 `json:"content"`
	TeamID    *int64                 `json:"team_id,omitempty"`
	ProjectID *int64                 `json:"project_id,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

// FromModel 发件箱记录 → 消息
func FromModel(n *model.Notification) *Message {
	msg := &Message{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Content:   n.Content,
		TeamID:    n.TeamID,
		ProjectID: n.ProjectID,
		Timestamp: n.CreatedAt,
	}
	if len(n.Payload) > 0 {
		_ = json.Unmarshal(n.Payload, &msg.Extra)
	}
	return msg
}

// Notifier 通知器接口, 仅负责投递, 状态已在发件箱中持久化
type Notifier interface {
	Send(ctx context.Context, msg *Message) error
}

// Deliver 事务提交后投递发件箱记录, 失败只记录日志
func Deliver(ctx context.Context, n Notifier, logger *zap.Logger, notifications []*model.Notification) {
	if n == nil {
		return
	}
	for _, item := range notifications {
		if err := n.Send(ctx, FromModel(item)); err != nil {
			logger.Warn("通知投递失败",
				zap.Int64("notification_id", item.ID),
				zap.Int64("user_id", item.UserID),
				zap.Error(err))
		}
	}
}

// ============= Redis 通知器 =============

// RedisNotifier 通过 Redis Pub/Sub 发布通知, 由外部投递服务订阅
type RedisNotifier struct {
	client  redis.UniversalClient
	channel string
	logger  *zap.Logger
}

// NewRedisNotifier 创建Redis通知器
func NewRedisNotifier(client redis.UniversalClient, channel string, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{
		client:  client,
		channel: channel,
		logger:  logger,
	}
}

// Send 发布到频道
func (n *RedisNotifier) Send(ctx context.Context, msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel, data).Err(); err != nil {
		return fmt.Errorf("发布通知失败: %w", err)
	}
	n.logger.Debug("Redis通知发布成功",
		zap.String("channel", n.channel),
		zap.String("type", msg.Type),
		zap.Int64("user_id", msg.UserID))
	return nil
}

// ============= 多通知器 =============

// MultiNotifier 多通知器(支持同时发送到多个渠道)
type MultiNotifier struct {
	notifiers []Notifier
	logger    *zap.Logger
}

// NewMultiNotifier 创建多通知器
func NewMultiNotifier(logger *zap.Logger, notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{
		notifiers: notifiers,
		logger:    logger,
	}
}

// Send 发送到所有通知器
func (m *MultiNotifier) Send(ctx context.Context, msg *Message) error {
	var lastErr error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, msg); err != nil {
			m.logger.Error("发送通知失败", zap.Error(err))
			lastErr = err
			// 继续发送其他通知器
		}
	}
	return lastErr
}

// ============= 日志通知器(仅记录日志,不发送实际通知) =============

// LogNotifier 日志通知器
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier 创建日志通知器
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{
		logger: logger,
	}
}

// Send 记录通知到日志
func (n *LogNotifier) Send(ctx context.Context, msg *Message) error {
	n.logger.Info("📢 通知",
		zap.String("type", msg.Type),
		zap.Int64("user_id", msg.UserID),
		zap.String("title", msg.Title),
		zap.String("content", msg.Content),
		zap.Any("extra", msg.Extra))
	return nil
}

// ============= 空通知器 =============

type noopNotifier struct{}

func (noopNotifier) Send(context.Context, *Message) error { return nil }

// NewNotifier 按配置创建通知器, rdb 为空时 redis 渠道不可用
func NewNotifier(cfg *config.NotificationConfig, rdb redis.UniversalClient, logger *zap.Logger) (Notifier, error) {
	if !cfg.Enabled {
		return noopNotifier{}, nil
	}
	switch cfg.Provider {
	case "", "log":
		return NewLogNotifier(logger), nil
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("通知渠道 redis 需要启用 redis 配置")
		}
		return NewRedisNotifier(rdb, cfg.Channel, logger), nil
	case "multi":
		if rdb == nil {
			return NewLogNotifier(logger), nil
		}
		return NewMultiNotifier(logger, NewLogNotifier(logger), NewRedisNotifier(rdb, cfg.Channel, logger)), nil
	default:
		return nil, fmt.Errorf("不支持的通知渠道: %s", cfg.Provider)
	}
}
