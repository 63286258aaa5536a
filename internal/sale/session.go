package sale

import (
	"time"

	"github.com/fabocv/santi-pos/internal/catalog"
	"github.com/fabocv/santi-pos/internal/pricing"
)

// State is the checkout lifecycle of a session.
type State string

const (
	// StateOpen accepts line items.
	StateOpen State = "OPEN"
	// StateCheckoutPending awaits a cash amount; items are frozen.
	StateCheckoutPending State = "CHECKOUT_PENDING"
)

// LineItem is a weighed product committed to a session. Immutable once
// appended; removal rebuilds the item list rather than mutating in place.
type LineItem struct {
	Product     catalog.Product `json:"product"`
	WeightGrams int64           `json:"weightGrams"`
	Subtotal    pricing.Money   `json:"subtotal"`
}

// Session is one of the two concurrent carts-in-progress. Total is always
// recomputed from the items, never drifted.
type Session struct {
	ID    int           `json:"id"`
	Items []LineItem    `json:"items"`
	Total pricing.Money `json:"total"`
	State State         `json:"state"`
}

func (s *Session) recompute() {
	var total pricing.Money
	for _, item := range s.Items {
		total += item.Subtotal
	}
	s.Total = total
}

func (s *Session) snapshot() Session {
	copied := *s
	copied.Items = append([]LineItem(nil), s.Items...)
	return copied
}

// Voucher is the immutable record of a finalized sale, kept for receipt
// rendering and offline sync.
type Voucher struct {
	ID           int64                 `json:"id"`
	SessionID    int                   `json:"sessionId"`
	Items        []LineItem            `json:"items"`
	Subtotal     pricing.Money         `json:"subtotal"`
	TotalToPay   pricing.Money         `json:"totalToPay"`
	PaymentCash  pricing.Money         `json:"paymentCash"`
	PaymentCard  pricing.Money         `json:"paymentCard"`
	Change       pricing.Money         `json:"change"`
	RoundingDiff pricing.Money         `json:"roundingDiff"`
	Method       pricing.PaymentMethod `json:"method"`
	OperatorID   string                `json:"operatorId"`
	Timestamp    time.Time             `json:"timestamp"`
}
