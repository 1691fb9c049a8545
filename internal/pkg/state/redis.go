// internal/pkg/state/redis.go
package state

import (
	"context"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"eventshop/internal/pkg/redis"
)

const casScriptName = "state_compare_and_set"

// 版本令牌就是读到的原始值：值未变则写入，ARGV[1] 为空表示 key 必须不存在
const casScript = `
local current = redis.call('GET', KEYS[1])
if ARGV[1] == '' then
  if current then
    return 0
  end
elseif current ~= ARGV[1] then
  return 0
end
redis.call('SET', KEYS[1], ARGV[2])
return 1
`

// RedisStore 把记录保存为 Redis 字符串
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) (*RedisStore, error) {
	if err := client.LoadScriptFromContent(casScriptName, casScript); err != nil {
		return nil, err
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.GetClient().Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "redis get %s", key)
	}
	return value, true, nil
}

func (s *RedisStore) GetVersioned(ctx context.Context, key string) ([]byte, string, bool, error) {
	value, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return nil, "", found, err
	}
	return value, string(value), true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.GetClient().Set(ctx, key, value, 0).Err(); err != nil {
		return errors.Wrapf(err, "redis set %s", key)
	}
	return nil
}

func (s *RedisStore) CompareAndSet(ctx context.Context, key string, value []byte, version string) (bool, error) {
	res, err := s.client.RunScript(ctx, casScriptName, []string{key}, version, string(value))
	if err != nil {
		return false, errors.Wrapf(err, "redis compare-and-set %s", key)
	}
	n, ok := res.(int64)
	if !ok {
		return false, errors.Errorf("redis compare-and-set %s: unexpected reply %T", key, res)
	}
	return n == 1, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.GetClient().Del(ctx, key).Err(); err != nil {
		return errors.Wrapf(err, "redis del %s", key)
	}
	return nil
}
