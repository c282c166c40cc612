// Package redis adapts go-redis clients to the backend capability port.
// Two named adapters share identical protocol behavior: Client for a pooled
// single-node connection, Cluster for redis cluster. Script evaluation runs
// through EVAL, which redis executes atomically per key.
package redis

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	be "github.com/unkn0wn-root/casbucket/backend"
)

var ErrNilClient = errors.New("redis backend: nil client")

// base carries the shared semantics; Client and Cluster differ only in the
// concrete client type they accept.
type base struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

func (b *base) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	v, err := b.rdb.Get(ctx, string(key)).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // absent
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return v, true, nil
}

func (b *base) Eval(ctx context.Context, script string, key []byte, args ...any) (any, error) {
	res, err := b.rdb.Eval(ctx, script, []string{string(key)}, args...).Result()
	if err == goredis.Nil {
		// null reply is a valid falsy script result, not an error
		return nil, nil
	}
	return res, err
}

func (b *base) Del(ctx context.Context, key []byte) error {
	return b.rdb.Del(ctx, string(key)).Err()
}

// Close releases the underlying client only when this adapter owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (b *base) Close(context.Context) error {
	if b.closeClient {
		if err := b.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

// Client adapts a pooled single-node *redis.Client.
type Client struct{ base }

var _ be.Backend = (*Client)(nil)

type Config struct {
	Client      *goredis.Client
	CloseClient bool // set true only if this adapter exclusively owns the client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Client{base{rdb: cfg.Client, closeClient: cfg.CloseClient}}, nil
}

// Cluster adapts a *redis.ClusterClient. Single-key scripts route to the
// slot owner, so per-key atomicity holds exactly as on a single node.
type Cluster struct{ base }

var _ be.Backend = (*Cluster)(nil)

type ClusterConfig struct {
	Client      *goredis.ClusterClient
	CloseClient bool
}

func NewCluster(cfg ClusterConfig) (*Cluster, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Cluster{base{rdb: cfg.Client, closeClient: cfg.CloseClient}}, nil
}
