package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/hbadiar77-commits/satina-mama/internal/currency"
)

type currencyDTO struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	Symbol         string `json:"symbol"`
	SymbolPosition string `json:"symbol_position"`
	Decimals       int32  `json:"decimals"`
	Rate           string `json:"rate,omitempty"`
	Active         bool   `json:"active"`
}

func currencyToDTO(c currency.Currency, rates currency.RateTable, active currency.Currency) currencyDTO {
	dto := currencyDTO{
		Code:           c.Code,
		Name:           c.Name,
		Symbol:         c.Symbol,
		SymbolPosition: string(c.Position),
		Decimals:       c.Decimals,
		Active:         c.Code == active.Code,
	}
	if rate, ok := rates.Rate(c.Code); ok {
		dto.Rate = rate.String()
	}
	return dto
}

func (h *Handler) listCurrencies(w http.ResponseWriter, _ *http.Request) {
	rates := h.engine.Rates()
	active := h.engine.Active()

	all := currency.All()
	out := make([]currencyDTO, len(all))
	for i, c := range all {
		out[i] = currencyToDTO(c, rates, active)
	}
	respondJSON(w, http.StatusOK, out)
}

type switchCurrencyRequest struct {
	Code string `json:"code"`
}

func (h *Handler) switchCurrency(w http.ResponseWriter, r *http.Request) {
	var req switchCurrencyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !h.engine.Switch(r.Context(), req.Code) {
		respondError(w, http.StatusUnprocessableEntity, "unknown_currency", "unknown currency code")
		return
	}
	respondJSON(w, http.StatusOK, currencyToDTO(h.engine.Active(), h.engine.Rates(), h.engine.Active()))
}

type convertResponse struct {
	Amount    string `json:"amount"`
	From      string `json:"from"`
	To        string `json:"to"`
	Converted string `json:"converted"`
	Formatted string `json:"formatted"`
}

func (h *Handler) convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	amount, err := decimal.NewFromString(q.Get("amount"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount", "amount must be a decimal number")
		return
	}

	from := q.Get("from")
	if from == "" {
		from = currency.BaseCode
	}
	to := q.Get("to")
	if to == "" {
		to = h.engine.Active().Code
	}
	if _, ok := currency.Known(from); !ok {
		respondError(w, http.StatusUnprocessableEntity, "unknown_currency", "unknown source currency")
		return
	}
	if _, ok := currency.Known(to); !ok {
		respondError(w, http.StatusUnprocessableEntity, "unknown_currency", "unknown target currency")
		return
	}

	converted := h.engine.ConvertAuthoritative(r.Context(), amount, from, to)
	respondJSON(w, http.StatusOK, convertResponse{
		Amount:    amount.String(),
		From:      from,
		To:        to,
		Converted: converted.String(),
		Formatted: h.engine.Format(converted, to),
	})
}
