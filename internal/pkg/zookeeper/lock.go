// internal/pkg/zookeeper/lock.go
package zookeeper

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
)

const (
	lockRoot = "/distributed_locks" // 所有分布式锁的根节点
)

var ErrLockTimeout = errors.New("timeout waiting for lock")

// DistributedLock 定义了一个分布式锁对象
type DistributedLock struct {
	conn     *Conn  // ZooKeeper连接
	path     string // 锁的路径，例如 /distributed_locks/inventory:prod-001
	lockNode string // 成功获取锁后，自己创建的节点路径
	wait     time.Duration
}

// NewDistributedLock 创建一个新的分布式锁实例，并确保锁路径存在
func NewDistributedLock(conn *Conn, resourceID string, wait time.Duration) (*DistributedLock, error) {
	lockPath := lockRoot + "/" + resourceID
	for _, p := range []string{lockRoot, lockPath} {
		if err := ensureNode(conn, p); err != nil {
			return nil, err
		}
	}
	return &DistributedLock{conn: conn, path: lockPath, wait: wait}, nil
}

func ensureNode(conn *Conn, path string) error {
	exists, _, err := conn.Exists(path)
	if err != nil {
		return fmt.Errorf("check node %s: %w", path, err)
	}
	if exists {
		return nil
	}
	_, err = conn.Create(path, []byte(""), 0, zk.WorldACL(zk.PermAll))
	if err != nil && !errors.Is(err, zk.ErrNodeExists) {
		return fmt.Errorf("create node %s: %w", path, err)
	}
	return nil
}

// Lock 尝试获取锁，如果获取不到则阻塞等待，直到 ctx 结束或等待超时
func (l *DistributedLock) Lock(ctx context.Context) error {
	// 1. 在锁路径下创建一个临时顺序节点
	nodePath, err := l.conn.CreateProtectedEphemeralSequential(l.path+"/lock-", []byte(""), zk.WorldACL(zk.PermAll))
	if err != nil {
		return fmt.Errorf("failed to create sequential node: %w", err)
	}
	l.lockNode = nodePath
	myNodeName := strings.TrimPrefix(nodePath, l.path+"/")

	deadline := time.NewTimer(l.wait)
	defer deadline.Stop()

	for {
		// 2. 获取锁路径下的所有子节点
		children, _, err := l.conn.Children(l.path)
		if err != nil {
			l.abandon()
			return fmt.Errorf("failed to get children nodes: %w", err)
		}

		// 3. 判断自己是否是最小的节点
		prev, isFirst, found := predecessor(children, myNodeName)
		if !found {
			l.abandon()
			return errors.New("own lock node disappeared, session probably expired")
		}
		if isFirst {
			return nil
		}

		// 4. 不是最小节点，监听前一个节点
		exists, _, eventChan, err := l.conn.ExistsW(l.path + "/" + prev)
		if err != nil {
			l.abandon()
			return fmt.Errorf("failed to watch previous node: %w", err)
		}
		if !exists {
			continue
		}

		select {
		case <-eventChan:
			// 前一个节点有变化，重新竞争
		case <-ctx.Done():
			l.abandon()
			return ctx.Err()
		case <-deadline.C:
			l.abandon()
			return ErrLockTimeout
		}
	}
}

// Unlock 释放锁
func (l *DistributedLock) Unlock() error {
	if l.lockNode == "" {
		return errors.New("no lock to unlock")
	}
	err := l.conn.Delete(l.lockNode, -1)
	if err != nil && !errors.Is(err, zk.ErrNoNode) {
		return fmt.Errorf("failed to delete lock node: %w", err)
	}
	l.lockNode = ""
	return nil
}

func (l *DistributedLock) abandon() {
	_ = l.Unlock()
}

// predecessor 按顺序号排序子节点，返回 mine 的前一个节点。
// protected 节点名带有随机前缀，所以不能直接按字符串排序。
func predecessor(children []string, mine string) (prev string, isFirst bool, found bool) {
	sorted := append([]string(nil), children...)
	sort.Slice(sorted, func(i, j int) bool {
		return sequenceOf(sorted[i]) < sequenceOf(sorted[j])
	})
	for i, child := range sorted {
		if child != mine {
			continue
		}
		if i == 0 {
			return "", true, true
		}
		return sorted[i-1], false, true
	}
	return "", false, false
}

// sequenceOf 取节点名末尾 10 位顺序号
func sequenceOf(name string) string {
	if len(name) < 10 {
		return name
	}
	return name[len(name)-10:]
}
