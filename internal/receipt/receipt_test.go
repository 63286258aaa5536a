package receipt_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/fabocv/santi-pos/internal/catalog"
	"github.com/fabocv/santi-pos/internal/events"
	"github.com/fabocv/santi-pos/internal/pricing"
	"github.com/fabocv/santi-pos/internal/receipt"
	"github.com/fabocv/santi-pos/internal/sale"
)

func sampleVoucher() sale.Voucher {
	return sale.Voucher{
		ID:        1748770200000,
		SessionID: 0,
		Items: []sale.LineItem{
			{
				Product:     catalog.Product{Code: "100", Name: "Trutro de Pollo", PricePerKg: 2990, Category: catalog.CategoryPollo},
				WeightGrams: 500,
				Subtotal:    1495,
			},
		},
		Subtotal:     1495,
		TotalToPay:   1500,
		PaymentCash:  2000,
		Change:       500,
		RoundingDiff: 5,
		Method:       pricing.MethodCash,
		OperatorID:   "op-2",
		Timestamp:    time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestRender(t *testing.T) {
	text := string(receipt.Render(sampleVoucher()))
	require.Contains(t, text, "SANTI POS")
	require.Contains(t, text, "Trutro de Pollo")
	require.Contains(t, text, "500g x $2990/kg")
	require.Contains(t, text, "$1495")
	require.Contains(t, text, "REDONDEO")
	require.Contains(t, text, "$1500")
	require.Contains(t, text, "VUELTO")
	require.Contains(t, text, "$500")
	require.Contains(t, text, "op-2")
}

func TestRenderMixedShowsBothLegs(t *testing.T) {
	v := sampleVoucher()
	v.TotalToPay = 1495
	v.PaymentCash = 1000
	v.PaymentCard = 495
	v.Change = 0
	v.RoundingDiff = 0
	v.Method = pricing.MethodMixed

	text := string(receipt.Render(v))
	require.Contains(t, text, "EFECTIVO")
	require.Contains(t, text, "TARJETA")
	require.NotContains(t, text, "REDONDEO")
}

func TestNotifierPrintsFinalizedSales(t *testing.T) {
	var printed []sale.Voucher
	printer := printerFunc(func(_ context.Context, v sale.Voucher) error {
		printed = append(printed, v)
		return nil
	})

	bus := &events.Bus{}
	bus.Subscribe(receipt.Notifier(printer))

	_, err := bus.Emit(context.Background(), events.TopicSaleFinalized, sampleVoucher())
	require.NoError(t, err)
	require.Len(t, printed, 1)
	require.EqualValues(t, 1748770200000, printed[0].ID)

	_, err = bus.Emit(context.Background(), events.TopicPriceUpdated, map[string]any{"code": "100"})
	require.NoError(t, err)
	require.Len(t, printed, 1, "only finalized sales are printed")
}

func TestLastHandler(t *testing.T) {
	reg := sale.NewRegister(sale.RegisterConfig{Logger: zerolog.Nop()})
	handler := &receipt.Handler{Register: reg}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/receipt", nil)
	rec := httptest.NewRecorder()
	handler.Last(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)

	product := catalog.Product{Code: "100", Name: "Trutro de Pollo", PricePerKg: 2990, Category: catalog.CategoryPollo}
	_, err := reg.AddItem(product, 500)
	require.NoError(t, err)
	_, err = reg.OpenCheckout()
	require.NoError(t, err)
	_, err = reg.Finalize(context.Background(), 1500, "op-2")
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	handler.Last(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Trutro de Pollo")
}

type printerFunc func(ctx context.Context, v sale.Voucher) error

func (f printerFunc) Print(ctx context.Context, v sale.Voucher) error { return f(ctx, v) }
