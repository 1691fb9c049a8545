// internal/pkg/state/dapr.go
package state

import (
	"context"

	dapr "github.com/dapr/go-sdk/client"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DaprStateClient 是 dapr.Client 中状态管理相关的子集
type DaprStateClient interface {
	GetState(ctx context.Context, storeName, key string, meta map[string]string) (*dapr.StateItem, error)
	SaveState(ctx context.Context, storeName, key string, data []byte, meta map[string]string, so ...dapr.StateOption) error
	SaveStateWithETag(ctx context.Context, storeName, key string, data []byte, etag string, meta map[string]string, so ...dapr.StateOption) error
	DeleteState(ctx context.Context, storeName, key string, meta map[string]string) error
}

// DaprStore 通过 sidecar 的状态组件读写记录，版本令牌使用组件返回的 ETag
type DaprStore struct {
	client    DaprStateClient
	storeName string
}

func NewDaprStore(client DaprStateClient, storeName string) *DaprStore {
	return &DaprStore{client: client, storeName: storeName}
}

func (s *DaprStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, _, found, err := s.GetVersioned(ctx, key)
	return value, found, err
}

func (s *DaprStore) GetVersioned(ctx context.Context, key string) ([]byte, string, bool, error) {
	item, err := s.client.GetState(ctx, s.storeName, key, nil)
	if err != nil {
		return nil, "", false, errors.Wrapf(err, "dapr get state %s/%s", s.storeName, key)
	}
	// sidecar 对不存在的 key 返回空值
	if item == nil || len(item.Value) == 0 {
		return nil, "", false, nil
	}
	return item.Value, item.Etag, true, nil
}

func (s *DaprStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.SaveState(ctx, s.storeName, key, value, nil); err != nil {
		return errors.Wrapf(err, "dapr save state %s/%s", s.storeName, key)
	}
	return nil
}

func (s *DaprStore) CompareAndSet(ctx context.Context, key string, value []byte, version string) (bool, error) {
	err := s.client.SaveStateWithETag(ctx, s.storeName, key, value, version, nil,
		dapr.WithConcurrency(dapr.StateConcurrencyFirstWrite),
		dapr.WithConsistency(dapr.StateConsistencyStrong),
	)
	if err == nil {
		return true, nil
	}
	// ETag 不匹配时 sidecar 返回 Aborted
	if st, ok := status.FromError(err); ok && st.Code() == codes.Aborted {
		return false, nil
	}
	return false, errors.Wrapf(err, "dapr save state with etag %s/%s", s.storeName, key)
}

func (s *DaprStore) Delete(ctx context.Context, key string) error {
	if err := s.client.DeleteState(ctx, s.storeName, key, nil); err != nil {
		return errors.Wrapf(err, "dapr delete state %s/%s", s.storeName, key)
	}
	return nil
}
