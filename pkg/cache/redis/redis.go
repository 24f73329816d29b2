// Package redis dials the cache that holds generation and export
// progress records.
package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type ConnectionInfo struct {
	Addr        string
	Password    string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
}

// Client is the underlying go-redis client; callers wrap it with their
// own key prefixing (see internal/clients).
type Client = goredis.Client

// NewRedisConnection opens a client and verifies the server with a ping
// before handing it out. Zero timeouts get working defaults so a sparse
// config cannot produce a client that blocks forever.
func NewRedisConnection(info ConnectionInfo) (*Client, error) {
	if info.DialTimeout == 0 {
		info.DialTimeout = 10 * time.Second
	}
	if info.Timeout == 0 {
		info.Timeout = 5 * time.Second
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         info.Addr,
		Password:     info.Password,
		DB:           info.DB,
		MaxRetries:   info.MaxRetries,
		DialTimeout:  info.DialTimeout,
		ReadTimeout:  info.Timeout,
		WriteTimeout: info.Timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), info.DialTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func Close(c *Client) {
	if c == nil {
		return
	}
	_ = c.Close()
}
