package receipt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fabocv/santi-pos/internal/events"
	"github.com/fabocv/santi-pos/internal/pricing"
	"github.com/fabocv/santi-pos/internal/sale"
)

const width = 40

// Render formats a voucher as a fixed-width text receipt for a 40-column
// thermal printer.
func Render(v sale.Voucher) []byte {
	var b bytes.Buffer
	center(&b, "SANTI POS")
	center(&b, "Carniceria")
	line(&b)
	row(&b, "BOLETA", fmt.Sprintf("%d", v.ID))
	row(&b, "FECHA", v.Timestamp.Format("02-01-2006 15:04"))
	if v.OperatorID != "" {
		row(&b, "OPERADOR", v.OperatorID)
	}
	line(&b)
	for _, item := range v.Items {
		b.WriteString(item.Product.Name)
		b.WriteByte('\n')
		row(&b, fmt.Sprintf("  %dg x $%d/kg", item.WeightGrams, item.Product.PricePerKg), money(item.Subtotal))
	}
	line(&b)
	row(&b, "SUBTOTAL", money(v.Subtotal))
	if v.RoundingDiff != 0 {
		row(&b, "REDONDEO", money(v.RoundingDiff))
	}
	row(&b, "TOTAL", money(v.TotalToPay))
	line(&b)
	switch v.Method {
	case pricing.MethodCard:
		row(&b, "TARJETA", money(v.PaymentCard))
	case pricing.MethodMixed:
		row(&b, "EFECTIVO", money(v.PaymentCash))
		row(&b, "TARJETA", money(v.PaymentCard))
	default:
		row(&b, "EFECTIVO", money(v.PaymentCash))
		row(&b, "VUELTO", money(v.Change))
	}
	line(&b)
	center(&b, "GRACIAS POR SU COMPRA")
	return b.Bytes()
}

func money(m pricing.Money) string {
	return fmt.Sprintf("$%d", m)
}

func line(b *bytes.Buffer) {
	b.WriteString(strings.Repeat("-", width))
	b.WriteByte('\n')
}

func center(b *bytes.Buffer, s string) {
	if pad := (width - len(s)) / 2; pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	b.WriteString(s)
	b.WriteByte('\n')
}

func row(b *bytes.Buffer, left, right string) {
	gap := width - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	b.WriteString(left)
	b.WriteString(strings.Repeat(" ", gap))
	b.WriteString(right)
	b.WriteByte('\n')
}

// Printer delivers a rendered receipt. Best-effort: failures are logged by
// the caller and never reach the sale core.
type Printer interface {
	Print(ctx context.Context, v sale.Voucher) error
}

// LogPrinter writes receipts to the structured log, standing in for the
// thermal printer on development tills.
type LogPrinter struct {
	Logger zerolog.Logger
}

// Print implements Printer.
func (p LogPrinter) Print(_ context.Context, v sale.Voucher) error {
	p.Logger.Info().
		Int64("voucher_id", v.ID).
		Str("receipt", string(Render(v))).
		Msg("receipt_printed")
	return nil
}

// Notifier subscribes a printer to sale.finalized events.
func Notifier(p Printer) events.Notifier {
	return events.NotifierFunc(func(ctx context.Context, ev events.Event) error {
		if ev.Topic != events.TopicSaleFinalized {
			return nil
		}
		var voucher sale.Voucher
		if err := json.Unmarshal(ev.Payload, &voucher); err != nil {
			return fmt.Errorf("receipt: decode voucher: %w", err)
		}
		return p.Print(ctx, voucher)
	})
}
