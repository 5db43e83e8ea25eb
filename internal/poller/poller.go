// Package poller consumes order-completed events and empties the paying
// user's cart. Clearing happens here, after the order is durably recorded,
// rather than inline in the verify handler.
package poller

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/coderarham/storefront/internal/cache"
	"github.com/coderarham/storefront/internal/publisher"
	"github.com/coderarham/storefront/internal/repository"
	"github.com/segmentio/kafka-go"
)

// messageReader is the slice of *kafka.Reader the poller needs; tests
// substitute a fake.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Poller struct {
	repo   repository.CartRepository
	reader messageReader
	cache  cache.CartCache
}

func NewPoller(repo repository.CartRepository, cartCache cache.CartCache, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    publisher.Topic,
		GroupID:  "storefront-cart-clear",
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{repo, reader, cartCache}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		p.consumeAndClearCart(ctx)
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		log.Printf("error closing kafka reader: %v", err)
	}
}

// consumeAndClearCart handles one message. Clearing is idempotent, so a
// redelivered event is harmless; a malformed payload is logged and skipped.
func (p *Poller) consumeAndClearCart(ctx context.Context) {
	m, err := p.reader.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("error reading message: %v", err)
		}
		return
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(m.Value, &payload); err != nil {
		log.Printf("error parsing message: %v", err)
		return
	}
	userID, ok := payload["user_id"].(string)
	if !ok || userID == "" {
		log.Printf("missing or invalid user_id in event payload")
		return
	}

	if _, err := p.repo.ClearCart(ctx, userID); err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		log.Printf("failed to clear cart for user %s: %v", userID, err)
	}

	if err := p.cache.Delete(ctx, userID); err != nil {
		log.Printf("failed to delete cached cart for user %s: %v", userID, err)
	}
}
