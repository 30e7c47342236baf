package host

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const latestTTL = 24 * time.Hour

// RedisStream carries snapshots over a Redis pub/sub channel so the
// host push endpoint and the bridge may run in different processes. The
// latest snapshot is also kept under "<channel>:latest" for replay.
type RedisStream struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisStream binds a stream to channel.
func NewRedisStream(client *redis.Client, channel string, logger *zap.Logger) *RedisStream {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStream{client: client, channel: channel, logger: logger}
}

func (s *RedisStream) latestKey() string {
	return s.channel + ":latest"
}

// Publish stores c as the latest snapshot and broadcasts it.
func (s *RedisStream) Publish(ctx context.Context, c Context) error {
	payload, err := EncodeContext(ctx, c)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.latestKey(), payload, latestTTL)
		pipe.Publish(ctx, s.channel, payload)
		return nil
	})
	return err
}

// Subscribe replays the latest snapshot, then forwards every published
// one. handler runs on the subscription's reader goroutine.
func (s *RedisStream) Subscribe(handler func(Context)) Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	pubsub := s.client.Subscribe(ctx, s.channel)

	go func() {
		if _, err := pubsub.Receive(ctx); err != nil {
			if ctx.Err() == nil {
				s.logger.Warn("host context subscribe failed", zap.String("channel", s.channel), zap.Error(err))
			}
			return
		}

		if raw, err := s.client.Get(ctx, s.latestKey()).Bytes(); err == nil {
			s.deliver(raw, handler)
		} else if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			s.logger.Warn("host context replay failed", zap.Error(err))
		}

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				s.deliver([]byte(msg.Payload), handler)
			}
		}
	}()

	return subscriptionFunc(func() {
		cancel()
		_ = pubsub.Close()
	})
}

func (s *RedisStream) deliver(raw []byte, handler func(Context)) {
	c, err := DecodeContext(raw)
	if err != nil {
		s.logger.Warn("dropping malformed host context", zap.Error(err))
		return
	}
	handler(c)
}

var (
	_ Stream    = (*RedisStream)(nil)
	_ Publisher = (*RedisStream)(nil)
)
