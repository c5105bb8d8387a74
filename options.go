package shelfquery

import "time"

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver    string // "memory", "valkey", "redis" or "bolt"
	addrs     []string
	password  string
	path      string
	keyPrefix string

	minSearchLength  int
	readinessTimeout time.Duration
}

// WithMemory keeps the catalog in process memory. This is the default.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "memory"
	})
}

// WithValkey configures the client to store the catalog in Valkey.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to store the catalog in Redis with RedisJSON.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithBolt configures the client to store the catalog in a bbolt file.
func WithBolt(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "bolt"
		c.path = path
	})
}

// WithKeyPrefix sets the key namespace used by the Redis and Valkey drivers.
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithMinSearchLength sets the minimum trimmed term length for global search.
func WithMinSearchLength(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.minSearchLength = n
	})
}

// WithReadinessTimeout bounds how long New waits for the database.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}
