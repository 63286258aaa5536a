package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fabocv/santi-pos/internal/events"
	"github.com/fabocv/santi-pos/internal/sale"
)

// saleMessage is the queued envelope for a finalized sale awaiting upload.
type saleMessage struct {
	VoucherID   int64           `json:"voucherId"`
	Payload     json.RawMessage `json:"payload"`
	Attempt     int             `json:"attempt"`
	MaxAttempts int             `json:"maxAttempts"`
	AvailableAt int64           `json:"availableAt"`
}

// Enqueuer stores finalized sales in the Redis-backed pending queue until the
// sync worker pushes them to the backend. The till works offline; the queue is
// the durability boundary.
type Enqueuer struct {
	R           *redis.Client
	Prefix      string
	DedupTTL    time.Duration
	MaxAttempts int
}

// Enqueue inserts a voucher into the pending queue. Each voucher is enqueued
// at most once within the deduplication window.
func (e Enqueuer) Enqueue(ctx context.Context, voucher sale.Voucher) error {
	if e.R == nil {
		return errors.New("sync: redis client not configured")
	}
	payload, err := json.Marshal(voucher)
	if err != nil {
		return err
	}
	msg := saleMessage{
		VoucherID:   voucher.ID,
		Payload:     payload,
		MaxAttempts: e.MaxAttempts,
		AvailableAt: time.Now().UnixNano(),
	}
	if msg.MaxAttempts <= 0 {
		msg.MaxAttempts = 10
	}

	dedupKey := fmt.Sprintf("%s:dedup:%d", e.prefix(), voucher.ID)
	ttl := e.DedupTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	ok, err := e.R.SetNX(ctx, dedupKey, "1", ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return e.R.ZAdd(ctx, pendingKey(e.prefix()), redis.Z{Score: float64(msg.AvailableAt), Member: raw}).Err()
}

func (e Enqueuer) prefix() string {
	if e.Prefix == "" {
		return "sync"
	}
	return e.Prefix
}

func pendingKey(prefix string) string { return prefix + ":pending" }
func deadKey(prefix string) string    { return prefix + ":dead" }

// Notifier subscribes the enqueuer to sale.finalized events.
func Notifier(e Enqueuer) events.Notifier {
	return events.NotifierFunc(func(ctx context.Context, ev events.Event) error {
		if ev.Topic != events.TopicSaleFinalized {
			return nil
		}
		var voucher sale.Voucher
		if err := json.Unmarshal(ev.Payload, &voucher); err != nil {
			return fmt.Errorf("sync: decode voucher: %w", err)
		}
		return e.Enqueue(ctx, voucher)
	})
}
