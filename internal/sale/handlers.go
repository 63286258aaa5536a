package sale

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fabocv/santi-pos/internal/catalog"
	"github.com/fabocv/santi-pos/internal/common"
	"github.com/fabocv/santi-pos/internal/pricing"
)

// Catalog is the lookup boundary the register needs from the product catalog.
type Catalog interface {
	Lookup(code string) (catalog.Product, bool)
}

// Handler maps operator input events onto register transitions. Each endpoint
// performs exactly one core state transition.
type Handler struct {
	Register *Register
	Catalog  Catalog
	Validate *validator.Validate
}

// State returns both sessions and the active slot.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	if h.Register == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "register not configured", nil)
		return
	}
	slots, active := h.Register.Snapshot()
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"slots":  slots[:],
			"active": active,
		},
	})
}

type switchRequest struct {
	Slot *int `json:"slot" validate:"required,min=0,max=1"`
}

// Switch activates the other sale slot.
func (h *Handler) Switch(w http.ResponseWriter, r *http.Request) {
	if h.Register == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "register not configured", nil)
		return
	}
	var payload switchRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "slot must be 0 or 1", nil)
		return
	}
	session, err := h.Register.Switch(*payload.Slot)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": session})
}

type addItemRequest struct {
	Code        string `json:"code" validate:"required"`
	WeightGrams int64  `json:"weightGrams" validate:"required,gt=0"`
}

// AddItem resolves a product code and commits a weighed line to the active session.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	if h.Register == nil || h.Catalog == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "register not configured", nil)
		return
	}
	var payload addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "code and a positive weightGrams are required", nil)
		return
	}
	product, ok := h.Catalog.Lookup(payload.Code)
	if !ok {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
		return
	}
	session, err := h.Register.AddItem(product, payload.WeightGrams)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": session})
}

// RemoveItem drops the line item at the index in the URL.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if h.Register == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "register not configured", nil)
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid line index", nil)
		return
	}
	session, err := h.Register.RemoveItem(index)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": session})
}

// OpenCheckout freezes the active session for payment entry.
func (h *Handler) OpenCheckout(w http.ResponseWriter, r *http.Request) {
	if h.Register == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "register not configured", nil)
		return
	}
	session, err := h.Register.OpenCheckout()
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": session})
}

// CancelCheckout reopens the active session, keeping its items.
func (h *Handler) CancelCheckout(w http.ResponseWriter, r *http.Request) {
	if h.Register == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "register not configured", nil)
		return
	}
	session, err := h.Register.CancelCheckout()
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": session})
}

type cashRequest struct {
	CashTendered *pricing.Money `json:"cashTendered" validate:"required,min=0"`
}

// Preview returns the payment breakdown for a cash amount without committing.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	if h.Register == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "register not configured", nil)
		return
	}
	payload, ok := h.decodeCash(w, r)
	if !ok {
		return
	}
	split, err := h.Register.Preview(*payload.CashTendered)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": splitResponse(split)})
}

// Confirm finalizes the pending checkout and returns the voucher.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	if h.Register == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "register not configured", nil)
		return
	}
	payload, ok := h.decodeCash(w, r)
	if !ok {
		return
	}
	operatorID, _ := common.OperatorID(r.Context())
	voucher, err := h.Register.Finalize(r.Context(), *payload.CashTendered, operatorID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": voucher})
}

func (h *Handler) decodeCash(w http.ResponseWriter, r *http.Request) (cashRequest, bool) {
	var payload cashRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return payload, false
	}
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "cashTendered must be a non-negative integer", nil)
		return payload, false
	}
	return payload, true
}

func (h *Handler) validate(v any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(v)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidSlot), errors.Is(err, ErrInvalidWeight), errors.Is(err, ErrNegativeCash):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, ErrInvalidIndex):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrCheckoutPending), errors.Is(err, ErrNoCheckoutPending):
		common.JSONError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unexpected register error", nil)
	}
}

func splitResponse(s pricing.Split) map[string]any {
	return map[string]any{
		"totalToPay":   s.TotalToPay,
		"roundedTotal": s.RoundedTotal,
		"cashTendered": s.CashTendered,
		"cardAmount":   s.CardAmount,
		"change":       s.Change,
		"roundingDiff": s.RoundingDiff,
		"method":       s.Method(),
	}
}
