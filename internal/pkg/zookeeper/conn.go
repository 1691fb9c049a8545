// internal/pkg/zookeeper/conn.go
package zookeeper

import (
	"context"
	"fmt"
	"time"

	"github.com/go-zookeeper/zk"

	"eventshop/internal/pkg/logger"
)

// Conn 包装 ZooKeeper 连接
type Conn struct {
	*zk.Conn
}

// Connect 建立 ZooKeeper 会话，并在后台记录会话事件
func Connect(ctx context.Context, servers []string, sessionTimeout time.Duration) (*Conn, error) {
	if len(servers) == 0 {
		return nil, fmt.Errorf("zookeeper: no servers configured")
	}
	c, events, err := zk.Connect(servers, sessionTimeout, zk.WithLogInfo(false))
	if err != nil {
		return nil, fmt.Errorf("zookeeper: connect %v: %w", servers, err)
	}
	go func() {
		for ev := range events {
			if ev.State == zk.StateExpired || ev.State == zk.StateDisconnected {
				logger.Ctx(ctx).Warn().Str("state", ev.State.String()).Msg("zookeeper session state changed")
			}
		}
	}()
	return &Conn{Conn: c}, nil
}
