package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "monoracle-go/internal/errors"
	"monoracle-go/pkg/monoracle"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQConfig 描述 RabbitMQ 投递参数。
type RabbitMQConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
	Durable    bool
}

// amqpChannel is the subset of *amqp.Channel used for publishing.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQPublisher publishes records as JSON messages.
type RabbitMQPublisher struct {
	conn       *amqp.Connection
	ch         amqpChannel
	exchange   string
	routingKey string
	durable    bool
}

// NewRabbitMQPublisher 连接 RabbitMQ，并在配置了 exchange 时声明 topic exchange。
// 未配置 exchange 时通过默认 exchange 直接投递到同名队列。
func NewRabbitMQPublisher(cfg RabbitMQConfig) (*RabbitMQPublisher, error) {
	if cfg.URL == "" {
		return nil, apperrors.New(apperrors.CodeConfiguration, "RabbitMQ URL 不能为空")
	}
	routingKey := cfg.RoutingKey
	if routingKey == "" {
		routingKey = "monoracle.records"
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePublishFailure, err, "连接 RabbitMQ 失败")
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, apperrors.Wrap(apperrors.CodePublishFailure, err, "创建 RabbitMQ channel 失败")
	}

	if cfg.Exchange != "" {
		err = ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeTopic, cfg.Durable, !cfg.Durable, false, false, nil)
	} else {
		_, err = ch.QueueDeclare(routingKey, cfg.Durable, !cfg.Durable, false, false, nil)
	}
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, apperrors.Wrap(apperrors.CodePublishFailure, err, "声明 RabbitMQ 目标失败")
	}

	return &RabbitMQPublisher{
		conn:       conn,
		ch:         ch,
		exchange:   cfg.Exchange,
		routingKey: routingKey,
		durable:    cfg.Durable,
	}, nil
}

// Publish 将记录以 JSON 形式投递到 RabbitMQ。
func (p *RabbitMQPublisher) Publish(ctx context.Context, requestID string, rec *monoracle.Record) error {
	if p == nil || p.ch == nil {
		return apperrors.New(apperrors.CodePublishFailure, "RabbitMQ 发布器未初始化")
	}
	msg, err := buildPublishing(requestID, rec, p.durable, time.Now())
	if err != nil {
		return err
	}
	if err := p.ch.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, msg); err != nil {
		return apperrors.Wrap(apperrors.CodePublishFailure, err, "投递记录失败",
			apperrors.WithMetadata("request_id", requestID))
	}
	return nil
}

// Close 关闭 RabbitMQ 连接。
func (p *RabbitMQPublisher) Close() error {
	if p == nil {
		return nil
	}
	var err error
	if p.ch != nil {
		err = p.ch.Close()
	}
	if p.conn != nil {
		err = errors.Join(err, p.conn.Close())
	}
	return err
}

func buildPublishing(requestID string, rec *monoracle.Record, persistent bool, now time.Time) (amqp.Publishing, error) {
	if rec == nil {
		return amqp.Publishing{}, apperrors.New(apperrors.CodeInvalidArgument, "记录不能为空")
	}
	body, err := json.Marshal(encodable(rec))
	if err != nil {
		return amqp.Publishing{}, apperrors.Wrap(apperrors.CodePublishFailure, err, "序列化记录失败")
	}
	mode := amqp.Transient
	if persistent {
		mode = amqp.Persistent
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: mode,
		MessageId:    requestID,
		Timestamp:    now,
		Type:         "monoracle.record",
		Headers: amqp.Table{
			"creator_wallet":   rec.CreatorWallet,
			"last_update_time": fmt.Sprintf("%d", rec.LastUpdateTime),
		},
		Body: body,
	}, nil
}
