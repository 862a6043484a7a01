package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ErrScriptNotLoaded is returned when EvalShaByName is called for an unknown script
var ErrScriptNotLoaded = errors.New("script not loaded")

// Config holds Redis connection configuration
type Config struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Host:         "localhost",
		Port:         6379,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Addr returns host:port
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Client wraps a go-redis client and keeps a registry of loaded Lua scripts
type Client struct {
	client *goredis.Client

	mu      sync.RWMutex
	scripts map[string]script
}

type script struct {
	sha  string
	body string
}

// NewClient connects to Redis and verifies the connection
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr(), err)
	}

	return NewFromClient(rdb), nil
}

// NewFromClient wraps an existing go-redis client
func NewFromClient(rdb *goredis.Client) *Client {
	return &Client{
		client:  rdb,
		scripts: make(map[string]script),
	}
}

// Client returns the underlying go-redis client
func (c *Client) Client() *goredis.Client {
	return c.client
}

// Get returns the value of key
func (c *Client) Get(ctx context.Context, key string) *goredis.StringCmd {
	return c.client.Get(ctx, key)
}

// Set sets key to value with an optional expiration
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd {
	return c.client.Set(ctx, key, value, expiration)
}

// SetNX sets key to value only when key does not exist
func (c *Client) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.BoolCmd {
	return c.client.SetNX(ctx, key, value, expiration)
}

// Eval runs a Lua script
func (c *Client) Eval(ctx context.Context, body string, keys []string, args ...interface{}) *goredis.Cmd {
	return c.client.Eval(ctx, body, keys, args...)
}

// LoadScript loads a Lua script into Redis and registers it under name
func (c *Client) LoadScript(ctx context.Context, name, body string) (string, error) {
	sha, err := c.client.ScriptLoad(ctx, body).Result()
	if err != nil {
		return "", fmt.Errorf("failed to load script %s: %w", name, err)
	}

	c.mu.Lock()
	c.scripts[name] = script{sha: sha, body: body}
	c.mu.Unlock()

	return sha, nil
}

// EvalShaByName runs a previously loaded script by name. When Redis has
// flushed its script cache the script is reloaded once.
func (c *Client) EvalShaByName(ctx context.Context, name string, keys []string, args ...interface{}) *goredis.Cmd {
	c.mu.RLock()
	s, ok := c.scripts[name]
	c.mu.RUnlock()

	if !ok {
		cmd := goredis.NewCmd(ctx)
		cmd.SetErr(fmt.Errorf("%w: %s", ErrScriptNotLoaded, name))
		return cmd
	}

	cmd := c.client.EvalSha(ctx, s.sha, keys, args...)
	if err := cmd.Err(); err != nil && strings.HasPrefix(err.Error(), "NOSCRIPT") {
		if _, loadErr := c.LoadScript(ctx, name, s.body); loadErr != nil {
			return cmd
		}
		return c.client.EvalSha(ctx, s.sha, keys, args...)
	}
	return cmd
}

// Ping checks the connection
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the client
func (c *Client) Close() error {
	return c.client.Close()
}
