package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"exam_site_backend/internal/util"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// SubmissionGuard 串行化同一用户的提交。成绩编号精确到秒，并发提交会互相冲突
type SubmissionGuard interface {
	Acquire(ctx context.Context, userID uint) (release func(), err error)
}

type RedisSubmissionGuard struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisSubmissionGuard(client *redis.Client, ttl time.Duration) *RedisSubmissionGuard {
	return &RedisSubmissionGuard{Client: client, TTL: ttl}
}

func submissionLockKey(userID uint) string {
	return fmt.Sprintf("exam:submit:lock:%d", userID)
}

func (g *RedisSubmissionGuard) Acquire(ctx context.Context, userID uint) (func(), error) {
	key := submissionLockKey(userID)
	token := uuid.NewString()
	ok, err := g.Client.SetNX(ctx, key, token, g.TTL).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrSubmissionInProgress
	}
	return func() {
		// 只删除自己持有的锁
		val, err := g.Client.Get(context.Background(), key).Result()
		if err == nil && val == token {
			g.Client.Del(context.Background(), key)
		}
	}, nil
}

// LocalSubmissionGuard 单实例部署或未启用 Redis 时使用
type LocalSubmissionGuard struct {
	mu     sync.Mutex
	active map[uint]struct{}
}

func NewLocalSubmissionGuard() *LocalSubmissionGuard {
	return &LocalSubmissionGuard{active: make(map[uint]struct{})}
}

func (g *LocalSubmissionGuard) Acquire(ctx context.Context, userID uint) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[userID]; busy {
		return nil, util.ErrSubmissionInProgress
	}
	g.active[userID] = struct{}{}
	return func() {
		g.mu.Lock()
		delete(g.active, userID)
		g.mu.Unlock()
	}, nil
}
