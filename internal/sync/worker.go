package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Worker drains the pending-sales queue and pushes each voucher to the remote
// POS backend. Delivery is best-effort with exponential backoff; sales that
// exhaust their attempts land in a dead-letter list for manual replay.
type Worker struct {
	R          *redis.Client
	Prefix     string
	BackendURL string
	HTTP       *http.Client
	RetryBase  time.Duration
	Logger     *zerolog.Logger
}

// Run processes the queue until the context is cancelled.
func (w Worker) Run(ctx context.Context) error {
	if err := w.check(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		processed, err := w.Drain(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		if processed == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(250 * time.Millisecond):
			}
		}
	}
}

// Drain processes every sale currently due and returns how many it handled.
func (w Worker) Drain(ctx context.Context) (int, error) {
	if err := w.check(); err != nil {
		return 0, err
	}
	prefix := w.prefix()
	key := pendingKey(prefix)
	processed := 0
	for {
		if depth, err := w.R.ZCard(ctx, key).Result(); err == nil {
			queueDepth.Set(float64(depth))
		}
		res, err := w.R.ZPopMin(ctx, key, 1).Result()
		if err != nil {
			if err == redis.Nil {
				return processed, nil
			}
			return processed, err
		}
		if len(res) == 0 {
			return processed, nil
		}
		member, ok := res[0].Member.(string)
		if !ok {
			continue
		}
		var msg saleMessage
		if err := json.Unmarshal([]byte(member), &msg); err != nil {
			w.logger().Error().Err(err).Msg("drop undecodable sync message")
			continue
		}
		if msg.AvailableAt > time.Now().UnixNano() {
			// Not due yet; push it back and stop this pass.
			_ = w.R.ZAdd(ctx, key, redis.Z{Score: float64(msg.AvailableAt), Member: member}).Err()
			return processed, nil
		}
		msg.Attempt++
		w.process(ctx, msg)
		processed++
	}
}

func (w Worker) process(ctx context.Context, msg saleMessage) {
	err := w.push(ctx, msg.Payload)
	if err == nil {
		observeOutcome("synced")
		w.logger().Info().Int64("voucher_id", msg.VoucherID).Int("attempt", msg.Attempt).Msg("sale_synced")
		return
	}

	if msg.MaxAttempts > 0 && msg.Attempt >= msg.MaxAttempts {
		observeOutcome("dead")
		raw, marshalErr := json.Marshal(msg)
		if marshalErr == nil {
			_ = w.R.LPush(ctx, deadKey(w.prefix()), raw).Err()
		}
		w.logger().Error().Err(err).Int64("voucher_id", msg.VoucherID).Msg("sale sync dead-lettered")
		return
	}

	observeOutcome("retried")
	msg.AvailableAt = time.Now().Add(w.backoff(msg.Attempt)).UnixNano()
	raw, marshalErr := json.Marshal(msg)
	if marshalErr != nil {
		return
	}
	_ = w.R.ZAdd(ctx, pendingKey(w.prefix()), redis.Z{Score: float64(msg.AvailableAt), Member: raw}).Err()
	w.logger().Warn().Err(err).Int64("voucher_id", msg.VoucherID).Int("attempt", msg.Attempt).Msg("sale sync retry scheduled")
}

func (w Worker) push(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.BackendURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	client := w.HTTP
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sync: backend returned %s", resp.Status)
	}
	return nil
}

func (w Worker) backoff(attempt int) time.Duration {
	base := w.RetryBase
	if base <= 0 {
		base = time.Second
	}
	delay := base << uint(attempt-1)
	if delay > time.Minute {
		delay = time.Minute
	}
	return delay
}

func (w Worker) check() error {
	if w.R == nil {
		return errors.New("sync: worker redis client not configured")
	}
	if w.BackendURL == "" {
		return errors.New("sync: backend url not configured")
	}
	return nil
}

func (w Worker) prefix() string {
	if w.Prefix == "" {
		return "sync"
	}
	return w.Prefix
}

func (w Worker) logger() *zerolog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	nop := zerolog.Nop()
	return &nop
}
