package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// LogOnThrottle cuenta intentos fallidos de log-on por clave y bloquea la clave al llegar al maximo.
// Un log-on con la password correcta limpia el contador.
type LogOnThrottle interface {
	Blocked(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// throttleKey combina email y IP del cliente; sin IP la clave es solo el email.
func throttleKey(email, clientIP string) string {
	clientIP = strings.TrimSpace(clientIP)
	if clientIP == "" {
		return email
	}
	return email + "|" + clientIP
}

type failureWindow struct {
	count     int
	expiresAt time.Time
}

type memoryLogOnThrottle struct {
	mu          sync.Mutex
	window      time.Duration
	maxFailures int
	failures    map[string]failureWindow
	lastSweep   time.Time
}

// NewLogOnThrottle crea un throttle en memoria de ventana fija, que arranca con el primer fallo.
func NewLogOnThrottle(window time.Duration, maxFailures int) LogOnThrottle {
	if maxFailures <= 0 {
		maxFailures = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &memoryLogOnThrottle{
		window:      window,
		maxFailures: maxFailures,
		failures:    make(map[string]failureWindow),
	}
}

func (t *memoryLogOnThrottle) Blocked(_ context.Context, key string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	w, ok := t.failures[key]
	if !ok {
		return false, nil
	}
	if !time.Now().Before(w.expiresAt) {
		delete(t.failures, key)
		return false, nil
	}
	return w.count >= t.maxFailures, nil
}

func (t *memoryLogOnThrottle) RecordFailure(_ context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	t.sweep(now)
	w, ok := t.failures[key]
	if !ok || !now.Before(w.expiresAt) {
		w = failureWindow{expiresAt: now.Add(t.window)}
	}
	w.count++
	t.failures[key] = w
	return nil
}

func (t *memoryLogOnThrottle) Reset(_ context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, key)
	return nil
}

// sweep descarta ventanas vencidas, como mucho una vez por ventana.
func (t *memoryLogOnThrottle) sweep(now time.Time) {
	if now.Sub(t.lastSweep) < t.window {
		return
	}
	for k, w := range t.failures {
		if !now.Before(w.expiresAt) {
			delete(t.failures, k)
		}
	}
	t.lastSweep = now
}

// El TTL se fija solo con el primer fallo: la ventana no se extiende con fallos posteriores.
const redisRecordFailureScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisThrottleClient interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisLogOnThrottle struct {
	client      redisThrottleClient
	window      time.Duration
	maxFailures int
	prefix      string
}

// NewRedisLogOnThrottle comparte los contadores de fallos entre instancias.
func NewRedisLogOnThrottle(client *redis.Client, window time.Duration, maxFailures int) LogOnThrottle {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if maxFailures <= 0 {
		maxFailures = 1
	}
	return &redisLogOnThrottle{
		client:      client,
		window:      window,
		maxFailures: maxFailures,
		prefix:      "logon:failures:",
	}
}

func (t *redisLogOnThrottle) Blocked(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	n, err := t.client.Get(ctx, t.prefix+key).Int()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return n >= t.maxFailures, nil
}

func (t *redisLogOnThrottle) RecordFailure(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	seconds := int(t.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	return t.client.Eval(ctx, redisRecordFailureScript, []string{t.prefix + key}, seconds).Err()
}

func (t *redisLogOnThrottle) Reset(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return t.client.Del(ctx, t.prefix+key).Err()
}
