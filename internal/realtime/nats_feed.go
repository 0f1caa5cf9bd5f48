package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/logging"
	"skywatch/crewdeck/internal/metrics"
)

const (
	natsSubjectPrefix = "realtime."
	natsFlushTimeout  = 5 * time.Second
)

// NATSFeed carries changes over NATS core subjects, one per table
type NATSFeed struct {
	conn    *nats.Conn
	metrics *metrics.MetricsRegistry
}

// NewNATSFeed connects to url. Reconnects are handled by the nats client.
func NewNATSFeed(url string, m *metrics.MetricsRegistry) (*NATSFeed, error) {
	conn, err := nats.Connect(url,
		nats.Name("crewdeck"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logging.Warn("NATS disconnected", "error", err.Error())
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logging.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return &NATSFeed{conn: conn, metrics: m}, nil
}

func natsSubject(table constants.Table) string {
	return natsSubjectPrefix + table.String()
}

func (f *NATSFeed) Publish(ctx context.Context, c Change) error {
	payload, err := encodeChange(c)
	if err != nil {
		return err
	}
	if err := f.conn.Publish(natsSubject(c.Table), payload); err != nil {
		return fmt.Errorf("failed to publish change on %s: %w", c.Table, err)
	}
	return nil
}

func (f *NATSFeed) Subscribe(ctx context.Context, table constants.Table, h Handler) (func() error, error) {
	sub, err := f.conn.Subscribe(natsSubject(table), func(msg *nats.Msg) {
		c, err := decodeChange(msg.Data)
		if err != nil {
			f.metrics.RealtimeError(table.String(), "decode")
			logging.Warn("Dropping undecodable change", "table", table.String(), "error", err.Error())
			return
		}
		h(c)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", table, err)
	}
	// make sure the server registered the interest before returning
	if err := f.conn.FlushTimeout(natsFlushTimeout); err != nil {
		_ = sub.Unsubscribe()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", table, err)
	}

	var once sync.Once
	var unsubErr error
	return func() error {
		once.Do(func() { unsubErr = sub.Unsubscribe() })
		return unsubErr
	}, nil
}

func (f *NATSFeed) Ping(ctx context.Context) error {
	if !f.conn.IsConnected() {
		return fmt.Errorf("nats: %s", f.conn.Status())
	}
	return f.conn.FlushTimeout(natsFlushTimeout)
}

func (f *NATSFeed) Close() error {
	f.conn.Close()
	return nil
}
