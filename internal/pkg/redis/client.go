// internal/pkg/redis/client.go
package redis

import (
	"context"
	"fmt"
	"sync"

	goredis "github.com/redis/go-redis/v9"
)

// Client 封装了 go-redis 客户端，并管理命名的 Lua 脚本
type Client struct {
	client goredis.UniversalClient

	mu      sync.RWMutex
	scripts map[string]*goredis.Script
}

// NewClient 连接 Redis。多个地址时使用集群模式。
func NewClient(ctx context.Context, addrs []string, password string, db int) (*Client, error) {
	if len(addrs) == 0 {
		return nil, fmt.Errorf("redis: no address configured")
	}
	c := goredis.NewUniversalClient(&goredis.UniversalOptions{
		Addrs:    addrs,
		Password: password,
		DB:       db,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis: ping %v: %w", addrs, err)
	}
	return NewClientFrom(c), nil
}

// NewClientFrom 包装一个已经创建好的客户端（测试中传入 redismock）
func NewClientFrom(c goredis.UniversalClient) *Client {
	return &Client{
		client:  c,
		scripts: make(map[string]*goredis.Script),
	}
}

// GetClient 暴露底层客户端，用于 pipeline 等高级操作
func (c *Client) GetClient() goredis.UniversalClient {
	return c.client
}

// LoadScriptFromContent 以 name 注册一段 Lua 脚本
func (c *Client) LoadScriptFromContent(name, content string) error {
	if content == "" {
		return fmt.Errorf("redis: script %q is empty", name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scripts[name] = goredis.NewScript(content)
	return nil
}

// Script 返回已注册的脚本
func (c *Client) Script(name string) (*goredis.Script, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.scripts[name]
	return s, ok
}

// RunScript 执行已注册的脚本，优先使用 EVALSHA，脚本未缓存时回退到 EVAL
func (c *Client) RunScript(ctx context.Context, name string, keys []string, args ...interface{}) (interface{}, error) {
	script, ok := c.Script(name)
	if !ok {
		return nil, fmt.Errorf("redis: script %q not loaded", name)
	}
	return script.Run(ctx, c.client, keys, args...).Result()
}

func (c *Client) Close() error {
	return c.client.Close()
}
