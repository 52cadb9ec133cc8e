// Package publish delivers fetched Monoracle records to their destination.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sync"

	"monoracle-go/internal/config"
	apperrors "monoracle-go/internal/errors"
	"monoracle-go/pkg/monoracle"
)

// Publisher delivers a record fetched under requestID.
type Publisher interface {
	Publish(ctx context.Context, requestID string, rec *monoracle.Record) error
	Close() error
}

// New builds the publisher selected by cfg.Driver. Records published by the
// stdout driver are written to out.
func New(cfg config.PublisherConfig, out io.Writer) (Publisher, error) {
	switch cfg.Driver {
	case "", "stdout":
		return NewWriterPublisher(out), nil
	case "rabbitmq":
		pub, err := NewRabbitMQPublisher(RabbitMQConfig{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			Durable:    cfg.RabbitMQ.Durable,
		})
		if err != nil {
			return nil, err
		}
		return pub, nil
	default:
		return nil, apperrors.New(apperrors.CodeConfiguration, fmt.Sprintf("未知的输出驱动: %s", cfg.Driver))
	}
}

// WriterPublisher writes indented JSON records to an io.Writer.
type WriterPublisher struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewWriterPublisher returns a publisher writing to w.
func NewWriterPublisher(w io.Writer) *WriterPublisher {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return &WriterPublisher{enc: enc}
}

// Publish encodes rec as a single JSON document.
func (p *WriterPublisher) Publish(_ context.Context, _ string, rec *monoracle.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enc.Encode(encodable(rec)); err != nil {
		return apperrors.Wrap(apperrors.CodePublishFailure, err, "写入记录失败")
	}
	return nil
}

// Close is a no-op; the writer is owned by the caller.
func (p *WriterPublisher) Close() error {
	return nil
}

// encodable returns a shallow copy of rec whose payload holds no NaN or ±Inf
// numbers. Those become null, the way JSON.stringify renders them.
func encodable(rec *monoracle.Record) *monoracle.Record {
	if rec == nil {
		return nil
	}
	out := *rec
	out.Data = finite(rec.Data)
	return &out
}

func finite(v any) any {
	switch v := v.(type) {
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return nil
		}
		return v
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, item := range v {
			m[k] = finite(item)
		}
		return m
	case []any:
		s := make([]any, len(v))
		for i, item := range v {
			s[i] = finite(item)
		}
		return s
	default:
		return v
	}
}
