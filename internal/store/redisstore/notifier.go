// Package redisstore carries schema version-change notifications between
// server instances that share a database.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	versionChannel = "codeassist:schema:version-change"
	versionKey     = "codeassist:schema:version"
)

type Store struct {
	client *redis.Client
	logger *zap.Logger
}

type versionChange struct {
	Instance string `json:"instance"`
	Version  int    `json:"version"`
}

func New(ctx context.Context, addr, password string, db int, logger *zap.Logger) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewFromClient(client, logger), nil
}

func NewFromClient(client *redis.Client, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{client: client, logger: logger.Named("redis")}
}

func (s *Store) Close() error {
	return s.client.Close()
}

// PublishVersionChange records the new version and tells subscribers.
func (s *Store) PublishVersionChange(ctx context.Context, instanceID string, version int) error {
	body, err := json.Marshal(versionChange{Instance: instanceID, Version: version})
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, versionKey, version, 0).Err(); err != nil {
		return err
	}
	return s.client.Publish(ctx, versionChannel, body).Err()
}

// Version returns the last published schema version, 0 if none.
func (s *Store) Version(ctx context.Context) (int, error) {
	v, err := s.client.Get(ctx, versionKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(v)
}

// Listen calls onChange for every version change published by another
// instance until ctx is done. The subscription is active once Listen
// returns; the returned channel is closed when listening stops.
func (s *Store) Listen(ctx context.Context, instanceID string, onChange func(version int)) (<-chan struct{}, error) {
	sub := s.client.Subscribe(ctx, versionChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var vc versionChange
				if err := json.Unmarshal([]byte(msg.Payload), &vc); err != nil {
					s.logger.Warn("bad version change payload", zap.Error(err))
					continue
				}
				if vc.Instance == instanceID {
					continue
				}
				onChange(vc.Version)
			}
		}
	}()
	return done, nil
}
