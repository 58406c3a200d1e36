package logger

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisSlowThreshold = 100 * time.Millisecond

// RedisLoggerHook 记录 Redis 错误与慢命令
type RedisLoggerHook struct{}

func NewRedisLogger() *RedisLoggerHook {
	return &RedisLoggerHook{}
}

// expectedRedisErr 业务上可预期的错误不记录
// evalsha 首次执行返回 NOSCRIPT 后客户端会自动退回 eval
func expectedRedisErr(cmdName string, err error) bool {
	if errors.Is(err, redis.Nil) {
		return true
	}
	msg := err.Error()
	switch cmdName {
	case "evalsha":
		return strings.HasPrefix(msg, "NOSCRIPT")
	case "client":
		return strings.Contains(msg, "setinfo")
	}
	return false
}

func redisArgs(cmd redis.Cmder) string {
	switch cmd.Name() {
	case "auth", "hello":
		return "[PROTECTED]"
	}
	return fmt.Sprint(cmd.Args())
}

func (s *RedisLoggerHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		start := time.Now()
		conn, err := next(ctx, network, addr)
		if err != nil {
			log.ErrorContext(ctx, "Redis Dial Error",
				log.String("addr", addr),
				log.Duration("latency", time.Since(start)),
				log.Any("err", err),
			)
		}
		return conn, err
	}
}

func (s *RedisLoggerHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		elapsed := time.Since(start)

		switch {
		case err != nil && !expectedRedisErr(cmd.Name(), err):
			log.ErrorContext(ctx, "Redis Error",
				log.String("command", cmd.Name()),
				log.String("args", redisArgs(cmd)),
				log.Duration("latency", elapsed),
				log.Any("err", err),
			)
		case err == nil && elapsed > redisSlowThreshold:
			log.WarnContext(ctx, "Redis Slow",
				log.String("command", cmd.Name()),
				log.String("args", redisArgs(cmd)),
				log.Duration("latency", elapsed),
			)
		}
		return err
	}
}

// ProcessPipelineHook 列表缓存写入与失效走 pipeline
func (s *RedisLoggerHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		elapsed := time.Since(start)

		names := make([]string, 0, len(cmds))
		for _, c := range cmds {
			names = append(names, c.Name())
		}

		switch {
		case err != nil && !errors.Is(err, redis.Nil):
			log.ErrorContext(ctx, "Redis Pipeline Error",
				log.String("commands", strings.Join(names, ",")),
				log.Duration("latency", elapsed),
				log.Any("err", err),
			)
		case err == nil && elapsed > redisSlowThreshold:
			log.WarnContext(ctx, "Redis Pipeline Slow",
				log.String("commands", strings.Join(names, ",")),
				log.Duration("latency", elapsed),
			)
		}
		return err
	}
}
