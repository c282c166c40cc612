// Package local is an in-process implementation of the backend capability
// port. It interprets the four conditional-write scripts directly under one
// mutex, which gives the same single-key atomicity redis provides via EVAL.
// Intended for tests and single-process setups; nothing is persisted.
package local

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	be "github.com/unkn0wn-root/casbucket/backend"
	"github.com/unkn0wn-root/casbucket/internal/script"
)

type entry struct {
	v   []byte
	exp time.Time // zero => no TTL
}

// Store is a mutex-guarded map with lazy TTL expiry.
type Store struct {
	mu sync.Mutex
	m  map[string]entry
}

var _ be.Backend = (*Store)(nil)

func New() *Store {
	return &Store{m: make(map[string]entry)}
}

func (s *Store) Get(_ context.Context, key []byte) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(string(key))
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), e.v...), true, nil
}

func (s *Store) Eval(_ context.Context, scr string, key []byte, args ...any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := string(key)
	switch scr {
	case script.CreateIfAbsent:
		v, err := argBytes(args, 0)
		if err != nil {
			return nil, err
		}
		return s.create(k, v, 0), nil

	case script.CreateIfAbsentTTL:
		v, err := argBytes(args, 0)
		if err != nil {
			return nil, err
		}
		px, err := argMillis(args, 1)
		if err != nil {
			return nil, err
		}
		return s.create(k, v, px), nil

	case script.CompareAndSwap:
		expect, err := argBytes(args, 0)
		if err != nil {
			return nil, err
		}
		v, err := argBytes(args, 1)
		if err != nil {
			return nil, err
		}
		return s.swap(k, expect, v, 0), nil

	case script.CompareAndSwapTTL:
		expect, err := argBytes(args, 0)
		if err != nil {
			return nil, err
		}
		v, err := argBytes(args, 1)
		if err != nil {
			return nil, err
		}
		px, err := argMillis(args, 2)
		if err != nil {
			return nil, err
		}
		return s.swap(k, expect, v, px), nil
	}
	return nil, fmt.Errorf("local backend: unknown script %q", scr)
}

func (s *Store) Del(_ context.Context, key []byte) error {
	s.mu.Lock()
	delete(s.m, string(key))
	s.mu.Unlock()
	return nil
}

func (s *Store) Close(context.Context) error { return nil }

// live returns the entry unless missing or expired. Expired entries are
// removed on the spot, mirroring redis lazy expiry. Callers hold mu.
func (s *Store) live(k string) (entry, bool) {
	e, ok := s.m[k]
	if !ok {
		return entry{}, false
	}
	if !e.exp.IsZero() && time.Now().After(e.exp) {
		delete(s.m, k)
		return entry{}, false
	}
	return e, true
}

func (s *Store) create(k string, v []byte, px int64) int64 {
	if _, ok := s.live(k); ok {
		return 0
	}
	s.put(k, v, px)
	return 1
}

func (s *Store) swap(k string, expect, v []byte, px int64) int64 {
	e, ok := s.live(k)
	if !ok || !bytes.Equal(e.v, expect) {
		return 0
	}
	s.put(k, v, px)
	return 1
}

func (s *Store) put(k string, v []byte, px int64) {
	var exp time.Time
	if px > 0 {
		exp = time.Now().Add(time.Duration(px) * time.Millisecond)
	}
	s.m[k] = entry{v: append([]byte(nil), v...), exp: exp}
}

func argBytes(args []any, i int) ([]byte, error) {
	if i >= len(args) {
		return nil, fmt.Errorf("local backend: missing script arg %d", i)
	}
	switch v := args[i].(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}
	return nil, fmt.Errorf("local backend: arg %d: expected bytes, got %T", i, args[i])
}

func argMillis(args []any, i int) (int64, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("local backend: missing script arg %d", i)
	}
	switch v := args[i].(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("local backend: arg %d: %w", i, err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("local backend: arg %d: expected integer, got %T", i, args[i])
}
