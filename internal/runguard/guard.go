package runguard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

// ErrRunInProgress is returned when another holder owns the key.
var ErrRunInProgress = eris.New("a run for this key is already in progress")

// Guard grants exclusive ownership of a key for the duration of a run.
type Guard interface {
	// Acquire returns a release function, or ErrRunInProgress when the key is held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// Memory is an in-process Guard.
type Memory struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

// NewMemory constructs an empty in-process guard.
func NewMemory() *Memory {
	return &Memory{held: make(map[string]time.Time), now: time.Now}
}

func (m *Memory) Acquire(_ context.Context, key string, ttl time.Duration) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if expires, ok := m.held[key]; ok && now.Before(expires) {
		return nil, eris.Wrapf(ErrRunInProgress, "key %s", key)
	}

	expires := now.Add(ttl)
	m.held[key] = expires

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if current, ok := m.held[key]; ok && current.Equal(expires) {
				delete(m.held, key)
			}
		})
	}, nil
}

// releaseScript deletes the key only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Guard shared by every process pointed at the same Redis.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis constructs a Redis-backed guard from a redis:// URL.
func NewRedis(redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, eris.Wrap(err, "parsing REDIS_URL")
	}
	return NewRedisFromClient(redis.NewClient(opts)), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client redis.UniversalClient) *Redis {
	return &Redis{client: client, prefix: "neuralpost:run:"}
}

// Ping verifies connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return eris.Wrap(r.client.Ping(ctx).Err(), "pinging redis")
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	fullKey := r.prefix + key

	ok, err := r.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, eris.Wrapf(err, "acquiring run guard %s", key)
	}
	if !ok {
		return nil, eris.Wrapf(ErrRunInProgress, "key %s", key)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = releaseScript.Run(releaseCtx, r.client, []string{fullKey}, token).Err()
		})
	}, nil
}
