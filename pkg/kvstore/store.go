package kvstore

import (
	"context"
	"errors"
	"sort"
	"strings"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is a string-keyed store where every write replaces the whole value.
// There is no versioning or locking: the last write to a key wins.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// prefixedStore 키 네임스페이스 래퍼
type prefixedStore struct {
	inner  Store
	prefix string
}

// Prefixed returns a Store that sees only the keys of inner starting with prefix.
// Keys are returned without the prefix.
func Prefixed(inner Store, prefix string) Store {
	return &prefixedStore{inner: inner, prefix: prefix}
}

func (s *prefixedStore) Get(ctx context.Context, key string) (string, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *prefixedStore) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s *prefixedStore) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, s.prefix+key)
}

func (s *prefixedStore) Keys(ctx context.Context) ([]string, error) {
	all, err := s.inner.Keys(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(all))
	for _, k := range all {
		if strings.HasPrefix(k, s.prefix) {
			keys = append(keys, strings.TrimPrefix(k, s.prefix))
		}
	}
	sort.Strings(keys)
	return keys, nil
}
