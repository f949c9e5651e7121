package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rubrics_backend/internal/util"
	"rubrics_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 仅当 token 匹配时删除，避免释放已被他人重新获取的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// InstanceLock 串行化同一评分实例的保存。Redis 可用时跨进程生效，否则退化为进程内锁
type InstanceLock struct {
	Redis  *redis.Client
	Prefix string
	TTL    time.Duration

	mu    sync.Mutex
	local map[uint]struct{}
}

func NewInstanceLock(rdb *redis.Client, prefix string, ttl time.Duration) *InstanceLock {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if prefix == "" {
		prefix = "rubrics"
	}
	return &InstanceLock{
		Redis:  rdb,
		Prefix: prefix,
		TTL:    ttl,
		local:  make(map[uint]struct{}),
	}
}

func (l *InstanceLock) key(instanceID uint) string {
	return fmt.Sprintf("%s:instance:%d:lock", l.Prefix, instanceID)
}

// Acquire 不等待；实例已被占用时返回 util.ErrInstanceBusy
func (l *InstanceLock) Acquire(ctx context.Context, instanceID uint) (func(), error) {
	if l.Redis == nil {
		return l.acquireLocal(instanceID)
	}

	key := l.key(instanceID)
	token := uuid.NewString()
	ok, err := l.Redis.SetNX(ctx, key, token, l.TTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock for instance %d: %w", instanceID, err)
	}
	if !ok {
		return nil, util.ErrInstanceBusy
	}

	return func() {
		// 请求上下文可能已取消，释放时使用独立的上下文
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.Redis, []string{key}, token).Err(); err != nil {
			logger.Log.Warn("Failed to release instance lock",
				zap.Uint("instanceID", instanceID),
				zap.Error(err))
		}
	}, nil
}

func (l *InstanceLock) acquireLocal(instanceID uint) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, held := l.local[instanceID]; held {
		return nil, util.ErrInstanceBusy
	}
	l.local[instanceID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.local, instanceID)
			l.mu.Unlock()
		})
	}, nil
}
