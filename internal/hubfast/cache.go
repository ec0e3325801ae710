package hubfast

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Source is the read surface of the hub a cache can sit in front of.
type Source interface {
	ListShards(ctx context.Context, year, month int) ([]ShardInfo, error)
	FetchRows(ctx context.Context, shard string, offset, length int) (*RowsPage, error)
}

// CachedClient decorates a Source with a Redis page cache. Caching is an
// external collaborator's concern: the loader stays cache-free and callers
// opt in by wrapping the client. Cache misses and cache failures both fall
// through to the source; a broken cache never fails a fetch.
type CachedClient struct {
	src Source
	rdb *redis.Client
	ns  string
	ttl time.Duration
}

func NewCachedClient(src Source, redisURL, namespace string, ttl time.Duration) (*CachedClient, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("redis url required for hub cache")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &CachedClient{src: src, rdb: rdb, ns: strings.TrimSpace(namespace), ttl: ttl}, nil
}

func (c *CachedClient) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func (c *CachedClient) keyTree(year, month int) string {
	return "hub:tree:" + c.ns + ":" + strconv.Itoa(year) + "-" + strconv.Itoa(month)
}

func (c *CachedClient) keyRows(shard string, offset, length int) string {
	return fmt.Sprintf("hub:rows:%s:%s:%d:%d", c.ns, shard, offset, length)
}

func (c *CachedClient) ListShards(ctx context.Context, year, month int) ([]ShardInfo, error) {
	key := c.keyTree(year, month)
	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var shards []ShardInfo
		if jerr := json.Unmarshal(raw, &shards); jerr == nil && len(shards) > 0 {
			return shards, nil
		}
	}
	shards, err := c.src.ListShards(ctx, year, month)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(shards); err == nil {
		_ = c.rdb.Set(ctx, key, raw, c.ttl).Err()
	}
	return shards, nil
}

func (c *CachedClient) FetchRows(ctx context.Context, shard string, offset, length int) (*RowsPage, error) {
	key := c.keyRows(shard, offset, length)
	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var page RowsPage
		if jerr := json.Unmarshal(raw, &page); jerr == nil {
			return &page, nil
		}
	}
	page, err := c.src.FetchRows(ctx, shard, offset, length)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(page); err == nil {
		_ = c.rdb.Set(ctx, key, raw, c.ttl).Err()
	}
	return page, nil
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
