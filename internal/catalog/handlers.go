package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fabocv/santi-pos/internal/common"
	"github.com/fabocv/santi-pos/internal/pricing"
)

// Handler wires the catalog service to HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

// List returns catalog products, optionally filtered by code prefix (?q=).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	products := h.Svc.Search(r.URL.Query().Get("q"))
	common.JSON(w, http.StatusOK, map[string]any{"data": products})
}

// Get resolves a single product by code. A miss is a plain 404, not a failure.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	code := chi.URLParam(r, "code")
	product, ok := h.Svc.Lookup(code)
	if !ok {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": product})
}

type updatePriceRequest struct {
	PricePerKg pricing.Money `json:"pricePerKg" validate:"required,gt=0"`
}

// UpdatePrice changes a product price. Admin only; emits an audit record.
func (h *Handler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	role, _ := common.OperatorRole(r.Context())
	if role != "ADMIN" {
		common.JSONError(w, http.StatusForbidden, "FORBIDDEN", "price updates require an admin operator", nil)
		return
	}
	var payload updatePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "pricePerKg must be positive", nil)
			return
		}
	}
	operatorID, _ := common.OperatorID(r.Context())
	change, err := h.Svc.UpdatePrice(r.Context(), chi.URLParam(r, "code"), payload.PricePerKg, operatorID)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownProduct):
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
		case errors.Is(err, ErrPriceUnchanged):
			common.JSONError(w, http.StatusConflict, "PRICE_UNCHANGED", "new price equals the current price", nil)
		case errors.Is(err, ErrInvalidPrice):
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "pricePerKg must be positive", nil)
		default:
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to update price", nil)
		}
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": change})
}
