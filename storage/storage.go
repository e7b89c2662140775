// Package storage provides the key-value string backends that annotations
// are persisted to. Every backend stores opaque string values under string
// keys; callers own the encoding.
package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Backend is a key-value string store.
//
// Get reports ok=false when the key has never been written.
type Backend interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Type  string // memory, file, sqlite or redis
	Path  string // file and sqlite
	Redis RedisOptions
}

// Open returns the backend named by opts.Type.
func Open(opts Options) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Type)) {
	case "memory", "mem":
		return NewMemory(), nil
	case "file", "":
		if opts.Path == "" {
			return nil, fmt.Errorf("storage: file backend needs a path")
		}
		return NewFile(opts.Path), nil
	case "sqlite":
		if opts.Path == "" {
			return nil, fmt.Errorf("storage: sqlite backend needs a path")
		}
		return NewSQLite(opts.Path)
	case "redis":
		return NewRedis(opts.Redis)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q (want memory|file|sqlite|redis)", opts.Type)
	}
}

// Memory keeps values in process memory only.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Close() error {
	return nil
}
