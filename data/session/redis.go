package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"papertrade/config"
	"papertrade/utils"

	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("session not found")

// RedisSession maps opaque session tokens to user IDs.
type RedisSession struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisSession(redisClient *redis.Client, cfg *config.Config) *RedisSession {
	return &RedisSession{redis: redisClient, cfg: cfg}
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

func (s *RedisSession) SetSession(ctx context.Context, token string, userID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	err := s.redis.Set(ctx, sessionKey(token), userID, s.cfg.SessionExpiration).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func (s *RedisSession) GetSession(ctx context.Context, token string) (userID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	res, err := s.redis.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return 0, err
	}

	userID, err = strconv.ParseInt(res, 10, 64)
	if err != nil {
		slog.Error("can't parse userID from session", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("value", res))
		return 0, err
	}

	return userID, nil
}

func (s *RedisSession) DeleteSession(ctx context.Context, token string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	err := s.redis.Del(ctx, sessionKey(token)).Err()
	if err != nil {
		slog.Error("failed on redis.Del", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	return nil
}
