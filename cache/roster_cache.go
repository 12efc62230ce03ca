package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/party-bets/models"
	"github.com/Dosada05/party-bets/repositories"
	"github.com/Dosada05/party-bets/services"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const rosterKey = "partybets:roster"

// kv is the part of *redis.Client the cache needs.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RosterCache keeps the whole member list in redis under one key. Lookups are
// answered from it; ids the cached list does not know are checked against the
// repository, and a hit there drops the key. Redis failures fall back to the
// repository.
type RosterCache struct {
	client     kv
	memberRepo repositories.MemberRepository
	ttl        time.Duration
	log        *zap.Logger
}

var _ services.Roster = (*RosterCache)(nil)

// NewClient parses REDIS_URL and checks the connection.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func NewRosterCache(client *redis.Client, memberRepo repositories.MemberRepository, ttl time.Duration, log *zap.Logger) *RosterCache {
	return newRosterCache(client, memberRepo, ttl, log)
}

func newRosterCache(client kv, memberRepo repositories.MemberRepository, ttl time.Duration, log *zap.Logger) *RosterCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &RosterCache{client: client, memberRepo: memberRepo, ttl: ttl, log: log}
}

func (c *RosterCache) Members(ctx context.Context) ([]models.Member, error) {
	raw, err := c.client.Get(ctx, rosterKey).Bytes()
	switch {
	case err == nil:
		var members []models.Member
		jsonErr := json.Unmarshal(raw, &members)
		if jsonErr == nil {
			return members, nil
		}
		c.log.Warn("corrupt roster in cache, reloading", zap.Error(jsonErr))
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn("roster cache read failed, using database", zap.Error(err))
	}

	members, err := c.memberRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", services.ErrPersistence, err)
	}

	payload, err := json.Marshal(members)
	if err != nil {
		c.log.Warn("failed to encode roster for cache", zap.Error(err))
		return members, nil
	}
	if err := c.client.Set(ctx, rosterKey, payload, c.ttl).Err(); err != nil {
		c.log.Warn("roster cache write failed", zap.Error(err))
	}
	return members, nil
}

func (c *RosterCache) Lookup(ctx context.Context, ids []int64) (models.Roster, error) {
	members, err := c.Members(ctx)
	if err != nil {
		return nil, err
	}
	all := models.NewRoster(members)

	found := make(models.Roster, len(ids))
	var missing []int64
	for _, id := range ids {
		if m, ok := all[id]; ok {
			found[id] = m
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return found, nil
	}

	// Members may have been added after the cache was filled.
	fresh, err := c.memberRepo.GetByIDs(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", services.ErrPersistence, err)
	}
	if len(fresh) == 0 {
		return found, nil
	}
	for _, m := range fresh {
		found[m.ID] = m
	}
	c.log.Info("roster grew since it was cached, dropping cached copy", zap.Int("new_members", len(fresh)))
	if err := c.client.Del(ctx, rosterKey).Err(); err != nil {
		c.log.Warn("roster cache invalidation failed", zap.Error(err))
	}
	return found, nil
}
