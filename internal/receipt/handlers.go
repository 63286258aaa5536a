package receipt

import (
	"net/http"

	"github.com/fabocv/santi-pos/internal/common"
	"github.com/fabocv/santi-pos/internal/sale"
)

// Handler re-renders the most recent voucher for reprints.
type Handler struct {
	Register *sale.Register
}

// Last serves the last finalized sale as a plain-text receipt.
func (h *Handler) Last(w http.ResponseWriter, r *http.Request) {
	if h.Register == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "register not configured", nil)
		return
	}
	voucher, ok := h.Register.LastVoucher()
	if !ok {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "no sale has been finalized yet", nil)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(Render(voucher))
}
