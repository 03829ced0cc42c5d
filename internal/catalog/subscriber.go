package catalog

import (
	"context"
	"fmt"

	"github.com/meur/stadiumforge/internal/storage/redisstore"
)

// Subscriber reloads a Catalog each time a build announces a new publish
type Subscriber struct {
	catalog  *Catalog
	pub      *redisstore.Publisher
	reloaded chan struct{}
}

// NewSubscriber creates a Subscriber on pub's update channel
func NewSubscriber(c *Catalog, pub *redisstore.Publisher) *Subscriber {
	return &Subscriber{catalog: c, pub: pub}
}

// Run listens until ctx is done
func (s *Subscriber) Run(ctx context.Context) error {
	ps := s.pub.Subscribe(ctx)
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", s.pub.Channel(), err)
	}
	catalogLog.Info().Str("channel", s.pub.Channel()).Msg("following catalog publishes")

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil

		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			catalogLog.Debug().Str("generatedAt", msg.Payload).Msg("catalog published")
			if err := s.catalog.Reload(ctx); err != nil {
				catalogLog.Error().Err(err).Msg("reload failed, keeping previous catalog")
				continue
			}
			if s.reloaded != nil {
				select {
				case s.reloaded <- struct{}{}:
				default:
				}
			}
		}
	}
}
