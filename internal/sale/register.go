package sale

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fabocv/santi-pos/internal/catalog"
	"github.com/fabocv/santi-pos/internal/events"
	"github.com/fabocv/santi-pos/internal/pricing"
)

// Precondition violations. The register leaves its state untouched when
// returning any of these.
var (
	ErrInvalidSlot       = errors.New("sale: slot must be 0 or 1")
	ErrInvalidWeight     = errors.New("sale: weight must be positive")
	ErrInvalidIndex      = errors.New("sale: no line item at that index")
	ErrEmptyCart         = errors.New("sale: cannot open checkout on an empty cart")
	ErrCheckoutPending   = errors.New("sale: a checkout is already pending")
	ErrNoCheckoutPending = errors.New("sale: no checkout is pending")
	ErrNegativeCash      = errors.New("sale: cash tendered cannot be negative")
)

// SlotCount is fixed by the till hardware: two sale slots, one active.
const SlotCount = 2

// Register owns the two sale sessions and drives the finalization state
// machine. Every mutation commits in memory before any collaborator is
// notified; collaborator failures never roll a session back.
type Register struct {
	mu            sync.Mutex
	slots         [SlotCount]*Session
	active        int
	lastVoucher   *Voucher
	lastVoucherID int64

	bus    *events.Bus
	logger zerolog.Logger
	now    func() time.Time
}

// RegisterConfig groups Register dependencies.
type RegisterConfig struct {
	Bus    *events.Bus
	Logger zerolog.Logger
	Now    func() time.Time
}

// NewRegister creates the two empty sessions with slot 0 active.
func NewRegister(cfg RegisterConfig) *Register {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	r := &Register{bus: cfg.Bus, logger: cfg.Logger, now: now}
	for i := range r.slots {
		r.slots[i] = &Session{ID: i, State: StateOpen}
	}
	return r
}

// Snapshot returns copies of both sessions and the active slot index.
func (r *Register) Snapshot() ([SlotCount]Session, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out [SlotCount]Session
	for i, s := range r.slots {
		out[i] = s.snapshot()
	}
	return out, r.active
}

// Active returns a copy of the active session.
func (r *Register) Active() Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slots[r.active].snapshot()
}

// Switch changes the active slot. Rejected while a checkout is pending so a
// half-entered payment can never leak between carts. Neither session's items
// are touched.
func (r *Register) Switch(slot int) (Session, error) {
	if slot < 0 || slot >= SlotCount {
		return Session{}, ErrInvalidSlot
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slots[r.active].State == StateCheckoutPending {
		return Session{}, ErrCheckoutPending
	}
	r.active = slot
	return r.slots[r.active].snapshot(), nil
}

// AddItem appends a weighed line to the active session and recomputes its total.
func (r *Register) AddItem(product catalog.Product, weightGrams int64) (Session, error) {
	if weightGrams <= 0 {
		return Session{}, ErrInvalidWeight
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	session := r.slots[r.active]
	if session.State != StateOpen {
		return Session{}, ErrCheckoutPending
	}
	session.Items = append(session.Items, LineItem{
		Product:     product,
		WeightGrams: weightGrams,
		Subtotal:    pricing.LineSubtotal(weightGrams, product.PricePerKg),
	})
	session.recompute()
	return session.snapshot(), nil
}

// RemoveItem drops the line at the given index, rebuilding the item list.
func (r *Register) RemoveItem(index int) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session := r.slots[r.active]
	if session.State != StateOpen {
		return Session{}, ErrCheckoutPending
	}
	if index < 0 || index >= len(session.Items) {
		return Session{}, ErrInvalidIndex
	}
	items := make([]LineItem, 0, len(session.Items)-1)
	items = append(items, session.Items[:index]...)
	items = append(items, session.Items[index+1:]...)
	session.Items = items
	session.recompute()
	return session.snapshot(), nil
}

// OpenCheckout freezes the active session while the operator enters cash.
// Requires at least one line item and no checkout already pending.
func (r *Register) OpenCheckout() (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session := r.slots[r.active]
	if session.State == StateCheckoutPending {
		return Session{}, ErrCheckoutPending
	}
	if len(session.Items) == 0 {
		return Session{}, ErrEmptyCart
	}
	session.State = StateCheckoutPending
	return session.snapshot(), nil
}

// CancelCheckout discards the pending cash entry and reopens the session.
// Committed line items are untouched; no partial voucher is produced.
func (r *Register) CancelCheckout() (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session := r.slots[r.active]
	if session.State != StateCheckoutPending {
		return Session{}, ErrNoCheckoutPending
	}
	session.State = StateOpen
	return session.snapshot(), nil
}

// Preview computes the payment breakdown for a tendered cash amount without
// committing anything. Used while the operator is typing.
func (r *Register) Preview(cashTendered pricing.Money) (pricing.Split, error) {
	if cashTendered < 0 {
		return pricing.Split{}, ErrNegativeCash
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	session := r.slots[r.active]
	if session.State != StateCheckoutPending {
		return pricing.Split{}, ErrNoCheckoutPending
	}
	return pricing.ComputeSplit(session.Total, cashTendered), nil
}

// Finalize closes the pending checkout: it computes the split, captures the
// voucher, clears the session (same ID), and only then notifies collaborators
// through the event bus. Any non-negative cash amount is accepted; a card
// remainder is recorded, never rejected.
func (r *Register) Finalize(ctx context.Context, cashTendered pricing.Money, operatorID string) (Voucher, error) {
	if cashTendered < 0 {
		return Voucher{}, ErrNegativeCash
	}

	r.mu.Lock()
	session := r.slots[r.active]
	if session.State != StateCheckoutPending {
		r.mu.Unlock()
		return Voucher{}, ErrNoCheckoutPending
	}

	split := pricing.ComputeSplit(session.Total, cashTendered)
	voucher := Voucher{
		ID:           r.nextVoucherID(),
		SessionID:    session.ID,
		Items:        append([]LineItem(nil), session.Items...),
		Subtotal:     session.Total,
		TotalToPay:   split.TotalToPay,
		PaymentCash:  split.CashTendered,
		PaymentCard:  split.CardAmount,
		Change:       split.Change,
		RoundingDiff: split.RoundingDiff,
		Method:       split.Method(),
		OperatorID:   operatorID,
		Timestamp:    r.now(),
	}

	session.Items = nil
	session.recompute()
	session.State = StateOpen
	r.lastVoucher = &voucher
	r.mu.Unlock()

	observeSale(voucher)

	r.logger.Info().
		Int64("voucher_id", voucher.ID).
		Int("session_id", voucher.SessionID).
		Int64("total", voucher.TotalToPay).
		Str("method", string(voucher.Method)).
		Str("operator_id", voucher.OperatorID).
		Msg("sale_finalized")

	if r.bus != nil {
		if _, err := r.bus.Emit(ctx, events.TopicSaleFinalized, voucher); err != nil {
			// The sale is already committed; collaborators are best-effort.
			r.logger.Error().Err(err).Int64("voucher_id", voucher.ID).Msg("emit sale.finalized")
		}
	}
	return voucher, nil
}

// RestoreLastVoucher seeds the last-voucher slot from a persisted snapshot,
// typically on boot. Later voucher ids stay monotonic relative to it.
func (r *Register) RestoreLastVoucher(v Voucher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastVoucher = &v
	if v.ID > r.lastVoucherID {
		r.lastVoucherID = v.ID
	}
}

// LastVoucher returns the most recently finalized voucher, when one exists.
func (r *Register) LastVoucher() (Voucher, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastVoucher == nil {
		return Voucher{}, false
	}
	v := *r.lastVoucher
	v.Items = append([]LineItem(nil), r.lastVoucher.Items...)
	return v, true
}

// nextVoucherID derives a strictly monotonic id from the clock. Callers hold r.mu.
func (r *Register) nextVoucherID() int64 {
	id := r.now().UnixMilli()
	if id <= r.lastVoucherID {
		id = r.lastVoucherID + 1
	}
	r.lastVoucherID = id
	return id
}
