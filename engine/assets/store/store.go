package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-redis/redis/v9"
)

// Store keeps compiled blobs and source documents under slash separated keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Missing is returned by Get when the key does not exist.
var Missing = errors.New("asset missing")

// FSStore stores every key as a file below its root directory.
type FSStore string

func (f FSStore) Path(key string) string {
	return filepath.Join(string(f), filepath.FromSlash(key))
}

func (f FSStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.Path(key))
	if os.IsNotExist(err) {
		return nil, Missing
	}
	return data, err
}

func (f FSStore) Set(ctx context.Context, key string, data []byte) error {
	target := f.Path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	// write next to the target and rename so readers never see half a file
	tmp, err := os.CreateTemp(filepath.Dir(target), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), target)
}

func (f FSStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(f.Path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// ModTime reports when key was last written.
func (f FSStore) ModTime(key string) (time.Time, bool) {
	s, err := os.Stat(f.Path(key))
	if err != nil {
		return time.Time{}, false
	}
	return s.ModTime(), true
}

const (
	DefaultPrefix = "assets"
	DefaultExpiry = time.Duration(1 * time.Hour)
)

// RedisStore shares compiled blobs between machines.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if ttl <= 0 {
		ttl = DefaultExpiry
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// DialRedis connects to addr and checks the connection.
func DialRedis(ctx context.Context, addr string, db int, prefix string, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis at %s: %w", addr, err)
	}
	return NewRedisStore(client, prefix, ttl), nil
}

func (r *RedisStore) key(id string) string {
	return fmt.Sprintf("%s-%s", r.prefix, id)
}

func (r *RedisStore) Get(ctx context.Context, id string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err == redis.Nil {
		return nil, Missing
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *RedisStore) Set(ctx context.Context, id string, data []byte) error {
	return r.client.Set(ctx, r.key(id), data, r.ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

var _ Store = FSStore("")
var _ Store = (*RedisStore)(nil)
