package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/turtacn/smilescombine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/smilescombine/pkg/errors"
)

var (
	ErrLockNotAcquired = errors.New(errors.ErrCodeConflict, "library run already in progress")
	ErrLockNotHeld     = errors.New(errors.ErrCodeConflict, "lock not held by this owner")
)

// RunLock guards a single library name so that two runs never write the same
// output concurrently.
type RunLock interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

type LockOption func(*lockConfig)

func WithLockTTL(ttl time.Duration) LockOption {
	return func(c *lockConfig) { c.ttl = ttl }
}

// WithWatchdog controls whether a held lock is extended every ttl/3 until
// Unlock.  It is on by default.
func WithWatchdog(enabled bool) LockOption {
	return func(c *lockConfig) { c.watchdog = enabled }
}

type lockConfig struct {
	ttl      time.Duration
	watchdog bool
}

// Locker hands out run locks keyed by library name.
type Locker struct {
	client *Client
	prefix string
	logger logging.Logger
}

func NewLocker(client *Client, prefix string, log logging.Logger) *Locker {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Locker{client: client, prefix: prefix, logger: log}
}

// ForLibrary returns a lock for the named library.  Each call returns a lock
// with a fresh owner token.
func (f *Locker) ForLibrary(name string, opts ...LockOption) RunLock {
	cfg := lockConfig{
		ttl:      30 * time.Second,
		watchdog: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &runMutex{
		client: f.client,
		key:    f.prefix + "lock:library:" + name,
		value:  uuid.New().String(),
		config: cfg,
		logger: f.logger.With(logging.String("library", name)),
	}
}

type runMutex struct {
	client         *Client
	key            string
	value          string
	config         lockConfig
	logger         logging.Logger
	watchdogCancel context.CancelFunc
	watchdogDone   chan struct{}
}

var unlockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

var extendScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("PEXPIRE", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

func (m *runMutex) TryLock(ctx context.Context) (bool, error) {
	ok, err := m.client.SetNX(ctx, m.key, m.value, m.config.ttl).Result()
	if err != nil && err != redis.Nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to set lock")
	}
	if ok && m.config.watchdog {
		m.startWatchdog()
	}
	return ok, nil
}

func (m *runMutex) Unlock(ctx context.Context) error {
	m.stopWatchdog()
	res, err := unlockScript.Run(ctx, m.client.GetUnderlyingClient(), []string{m.key}, m.value).Int64()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to release lock")
	}
	if res == 0 {
		return ErrLockNotHeld
	}
	return nil
}

func (m *runMutex) extend(ctx context.Context, ttl time.Duration) (bool, error) {
	res, err := extendScript.Run(ctx, m.client.GetUnderlyingClient(), []string{m.key}, m.value, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (m *runMutex) startWatchdog() {
	ctx, cancel := context.WithCancel(context.Background())
	m.watchdogCancel = cancel
	m.watchdogDone = make(chan struct{})
	go m.runWatchdog(ctx, m.config.ttl/3)
}

func (m *runMutex) stopWatchdog() {
	if m.watchdogCancel != nil {
		m.watchdogCancel()
		<-m.watchdogDone
		m.watchdogCancel = nil
	}
}

func (m *runMutex) runWatchdog(ctx context.Context, interval time.Duration) {
	defer close(m.watchdogDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ok, err := m.extend(ctx, m.config.ttl)
			if err != nil {
				if ctx.Err() == nil {
					m.logger.Error("Watchdog failed to extend lock", logging.Err(err))
				}
				return
			}
			if !ok {
				m.logger.Warn("Watchdog lost lock")
				return
			}
		}
	}
}

//Personal.AI order the ending
