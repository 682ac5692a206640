package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dharmasatrya/fareradar/internal/models"
)

// Entry is the cached, pre-filter result of a search. Filters and sort order
// are applied on every read so they are not part of the key.
type Entry struct {
	Offers   []models.ScoredOffer  `json:"offers"`
	Market   models.MarketStats    `json:"market"`
	Metadata models.SearchMetadata `json:"metadata"`
}

type Cache interface {
	Get(ctx context.Context, req models.SearchRequest) (*Entry, bool)
	Set(ctx context.Context, req models.SearchRequest, entry *Entry) error
	Close() error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     "localhost",
		Port:     "6379",
		Password: "",
		DB:       0,
		TTL:      5 * time.Minute,
	}
}

func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisCache{
		client: client,
		ttl:    cfg.TTL,
	}, nil
}

func (c *RedisCache) Get(ctx context.Context, req models.SearchRequest) (*Entry, bool) {
	data, err := c.client.Get(ctx, Key(req)).Bytes()
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	return &entry, true
}

func (c *RedisCache) Set(ctx context.Context, req models.SearchRequest, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, Key(req), data, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// MemoryCache is a process-local cache. Expiry is checked on read against the
// injected clock.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

func NewMemoryCache(ttl time.Duration, now func() time.Time) *MemoryCache {
	if now == nil {
		now = time.Now
	}
	return &MemoryCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]memoryEntry),
	}
}

func (c *MemoryCache) Get(_ context.Context, req models.SearchRequest) (*Entry, bool) {
	key := Key(req)

	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && !c.now().Before(e.expires) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()
	if !ok {
		return nil, false
	}

	// Stored encoded so callers never share slices with the cache.
	var entry Entry
	if err := json.Unmarshal(e.data, &entry); err != nil {
		return nil, false
	}
	return &entry, true
}

func (c *MemoryCache) Set(_ context.Context, req models.SearchRequest, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[Key(req)] = memoryEntry{data: data, expires: c.now().Add(c.ttl)}
	return nil
}

func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryCache) Close() error {
	return nil
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, req models.SearchRequest) (*Entry, bool) {
	return nil, false
}

func (c *NoOpCache) Set(ctx context.Context, req models.SearchRequest, entry *Entry) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

// Key identifies a search by route, date, party composition, cabin, currency
// and whether self-transfer itineraries were requested. Scores depend on
// whether minors travel, so the composition is keyed, not the head count.
func Key(req models.SearchRequest) string {
	keyData := struct {
		Origin        string
		Destination   string
		DepartureDate string
		Adults        int
		Children      int
		Infants       int
		CabinClass    string
		Currency      string
		SelfTransfer  bool
	}{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: req.DepartureDate,
		Adults:        req.Adults,
		Children:      req.Children,
		Infants:       req.Infants,
		CabinClass:    req.CabinClass,
		Currency:      req.Currency,
		SelfTransfer:  req.SelfTransfer,
	}

	data, _ := json.Marshal(keyData)
	hash := sha256.Sum256(data)
	return "fareradar:search:" + hex.EncodeToString(hash[:])
}
