package bridge

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/xlab/closer"
	"go.uber.org/zap"
)

// NewRedisPool dials the feed's redis instance.
func NewRedisPool(addr string, logger *zap.SugaredLogger) *redis.Pool {
	pool := &redis.Pool{
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", addr)
		},
		DialContext: func(ctx context.Context) (redis.Conn, error) {
			return redis.DialContext(ctx, "tcp", addr)
		},
	}

	closer.Bind(func() {
		if err := pool.Close(); err != nil {
			logger.Errorw("Failed closing redis pool", "err", err)
		}
	})

	return pool
}

type feedMessage struct {
	Event string   `json:"event"`
	Extra *Payload `json:"extra"`
}

// Run subscribes to the push-event channel and dispatches every message
// until the context ends. Connection failures reconnect with a flat
// backoff; a missed message is recovered by the next scheduled refetch.
func (b *Bridge) Run(ctx context.Context, pool *redis.Pool, channel string) {
	for {
		if err := b.consume(ctx, pool, channel); err != nil {
			b.logger.Errorw("feed subscription lost", "channel", channel, "err", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

func (b *Bridge) consume(ctx context.Context, pool *redis.Pool, channel string) error {
	conn, err := pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	psc := redis.PubSubConn{Conn: conn}
	if err := psc.Subscribe(channel); err != nil {
		return err
	}
	defer psc.Unsubscribe(channel)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		switch msg := psc.Receive().(type) {
		case redis.Message:
			b.dispatch(ctx, msg.Data)
		case redis.Subscription:
			b.logger.Infow("feed subscription changed", "channel", msg.Channel, "kind", msg.Kind)
		case error:
			return msg
		}
	}
}

func (b *Bridge) dispatch(ctx context.Context, data []byte) {
	msg := &feedMessage{}
	if err := json.Unmarshal(data, msg); err != nil {
		b.logger.Errorw("malformed feed message", "err", err)
		return
	}

	kind, ok := ParseKind(msg.Event)
	if !ok {
		b.logger.Debugw("ignoring unknown feed event", "event", msg.Event)
		return
	}

	payload := msg.Extra
	if payload == nil {
		payload = &Payload{}
	}

	if err := b.Handle(ctx, kind, payload); err != nil {
		b.logger.Errorw("push event handling failed", "event", msg.Event, "item", payload.Item, "err", err)
	}
}
