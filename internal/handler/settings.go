package handler

import (
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

type settingsDTO struct {
	Currency string `json:"currency"`
	ShopID   string `json:"shop_id,omitempty"`
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	dto := settingsDTO{Currency: h.engine.Active().Code}
	if h.settings != nil {
		id, err := h.settings.ShopID(r.Context())
		if err != nil {
			zctx.From(r.Context()).Error("Reading shop setting failed", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}
		dto.ShopID = id
	}
	respondJSON(w, http.StatusOK, dto)
}

type setShopRequest struct {
	ShopID string `json:"shop_id"`
}

func (h *Handler) setShop(w http.ResponseWriter, r *http.Request) {
	var req setShopRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ShopID == "" {
		respondError(w, http.StatusUnprocessableEntity, "invalid_shop", "shop_id is required")
		return
	}
	if h.settings != nil {
		if err := h.settings.SetShopID(r.Context(), req.ShopID); err != nil {
			zctx.From(r.Context()).Error("Persisting shop setting failed", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}
	}
	respondJSON(w, http.StatusOK, settingsDTO{
		Currency: h.engine.Active().Code,
		ShopID:   req.ShopID,
	})
}
