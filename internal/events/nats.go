package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/wfunc/switcher-game/internal/config"
	apperrors "github.com/wfunc/switcher-game/internal/errors"
	"go.uber.org/zap"
)

// NATSPublisher 把对局事件发布到 NATS，主题为 <prefix>.<game_id>
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
	logger *zap.Logger
}

// ConnectNATS 按配置连接 NATS
func ConnectNATS(cfg config.NATSConfig, logger *zap.Logger) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.Timeout(cfg.Timeout),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS连接断开", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS重新连接", zap.String("url", nc.ConnectedUrl()))
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrBrokerConnect, "url=%s", cfg.URL)
	}
	logger.Info("NATS连接成功", zap.String("url", cfg.URL))
	return NewNATSPublisher(nc, cfg.SubjectPrefix, logger), nil
}

// NewNATSPublisher 使用已有连接创建发布者
func NewNATSPublisher(nc *nats.Conn, prefix string, logger *zap.Logger) *NATSPublisher {
	return &NATSPublisher{nc: nc, prefix: prefix, logger: logger}
}

// Subject 事件对应的主题
func Subject(prefix string, gameID uint) string {
	return fmt.Sprintf("%s.%d", prefix, gameID)
}

func (p *NATSPublisher) Publish(ctx context.Context, evt GameEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrMessageFormat)
	}
	if err := p.nc.Publish(Subject(p.prefix, evt.GameID), payload); err != nil {
		return apperrors.Wrap(err, apperrors.ErrBrokerPublish)
	}
	return nil
}

// Close 发送完缓冲中的消息后关闭连接
func (p *NATSPublisher) Close() error {
	return p.nc.Drain()
}
