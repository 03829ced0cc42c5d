// Package redisstore publishes the catalog into Redis so API servers can load
// it without access to the build machine's disk.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/meur/stadiumforge/internal/logging"
	"github.com/meur/stadiumforge/internal/models"
	"github.com/meur/stadiumforge/internal/redis"
	"github.com/meur/stadiumforge/internal/storage/jsonfile"
)

var storeLog = logging.Module("redisstore")

// DefaultPrefix namespaces every key written by the publisher
const DefaultPrefix = "stadium"

// ErrNotPublished is returned by Fetch when no catalog has been published
var ErrNotPublished = errors.New("catalog not published")

// Publisher reads and writes one catalog under a key prefix
type Publisher struct {
	client redis.Client
	prefix string
}

// NewPublisher creates a Publisher; an empty prefix uses DefaultPrefix
func NewPublisher(client redis.Client, prefix string) (*Publisher, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Publisher{client: client, prefix: prefix}, nil
}

// ItemsKey holds the items array
func (p *Publisher) ItemsKey() string { return p.prefix + ":items" }

// HeroesKey holds the heroes array
func (p *Publisher) HeroesKey() string { return p.prefix + ":heroes" }

// MetaKey holds the manifest
func (p *Publisher) MetaKey() string { return p.prefix + ":meta" }

// Channel receives the generatedAt stamp after each publish
func (p *Publisher) Channel() string { return p.prefix + ":updates" }

// Publish writes the three catalog keys in one MULTI/EXEC and announces the
// new manifest on Channel.
func (p *Publisher) Publish(ctx context.Context, items []models.Item, heroes []models.Hero, m models.Manifest) error {
	itemsData, err := jsonfile.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode items: %w", err)
	}
	heroesData, err := jsonfile.Marshal(heroes)
	if err != nil {
		return fmt.Errorf("failed to encode heroes: %w", err)
	}
	metaData, err := jsonfile.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	_, err = p.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, p.ItemsKey(), itemsData, 0)
		pipe.Set(ctx, p.HeroesKey(), heroesData, 0)
		pipe.Set(ctx, p.MetaKey(), metaData, 0)
		pipe.Publish(ctx, p.Channel(), m.GeneratedAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to publish catalog: %w", err)
	}

	storeLog.Info().
		Str("prefix", p.prefix).
		Int("items", len(items)).
		Int("heroes", len(heroes)).
		Str("generatedAt", m.GeneratedAt).
		Msg("published catalog")
	return nil
}

// Fetch reads back a published catalog
func (p *Publisher) Fetch(ctx context.Context) ([]models.Item, []models.Hero, models.Manifest, error) {
	var (
		items  []models.Item
		heroes []models.Hero
		m      models.Manifest
	)

	vals, err := p.client.MGet(ctx, p.ItemsKey(), p.HeroesKey(), p.MetaKey()).Result()
	if err != nil {
		return nil, nil, m, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	targets := []any{&items, &heroes, &m}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			return nil, nil, m, ErrNotPublished
		}
		if err := jsonfile.Unmarshal([]byte(s), targets[i]); err != nil {
			return nil, nil, m, fmt.Errorf("failed to decode catalog: %w", err)
		}
	}
	return items, heroes, m, nil
}

// Subscribe listens for publish announcements. Close the returned PubSub when
// done.
func (p *Publisher) Subscribe(ctx context.Context) *goredis.PubSub {
	return p.client.Subscribe(ctx, p.Channel())
}
