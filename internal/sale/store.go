package sale

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fabocv/santi-pos/internal/events"
)

// VoucherStore keeps the last finalized voucher in Redis so a reprint
// survives a till restart. Best-effort, like every collaborator.
type VoucherStore struct {
	R   *redis.Client
	Key string
	TTL time.Duration
}

func (s VoucherStore) key() string {
	if s.Key == "" {
		return "sale:last"
	}
	return s.Key
}

// SaveLast overwrites the stored voucher.
func (s VoucherStore) SaveLast(ctx context.Context, v Voucher) error {
	if s.R == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.R.Set(ctx, s.key(), data, s.TTL).Err()
}

// LoadLast reads the stored voucher. It reports whether one existed.
func (s VoucherStore) LoadLast(ctx context.Context) (Voucher, bool, error) {
	if s.R == nil {
		return Voucher{}, false, nil
	}
	data, err := s.R.Get(ctx, s.key()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return Voucher{}, false, nil
		}
		return Voucher{}, false, err
	}
	var v Voucher
	if err := json.Unmarshal(data, &v); err != nil {
		return Voucher{}, false, err
	}
	return v, true, nil
}

// StoreNotifier subscribes the voucher store to sale.finalized events.
func StoreNotifier(s VoucherStore) events.Notifier {
	return events.NotifierFunc(func(ctx context.Context, ev events.Event) error {
		if ev.Topic != events.TopicSaleFinalized {
			return nil
		}
		var voucher Voucher
		if err := json.Unmarshal(ev.Payload, &voucher); err != nil {
			return fmt.Errorf("sale: decode voucher: %w", err)
		}
		return s.SaveLast(ctx, voucher)
	})
}
