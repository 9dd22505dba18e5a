// Package handler exposes the register operations over HTTP: currency
// listing and switching, cart sessions, and the receipt journal.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hbadiar77-commits/satina-mama/internal/checkout"
	"github.com/hbadiar77-commits/satina-mama/internal/currency"
)

// ReceiptLister reads back journaled receipts for reprint.
type ReceiptLister interface {
	Recent(ctx context.Context, limit int) ([]checkout.Receipt, error)
}

// SettingsStore persists which shop this terminal sells for.
type SettingsStore interface {
	ShopID(ctx context.Context) (string, error)
	SetShopID(ctx context.Context, id string) error
}

// Handler serves the register API.
type Handler struct {
	engine   *currency.Engine
	checkout *checkout.Service
	receipts ReceiptLister
	settings SettingsStore
}

// New creates a Handler. receipts and settings may be nil; the receipts
// endpoint then answers with an empty journal and the shop selection is
// session-only.
func New(engine *currency.Engine, svc *checkout.Service, receipts ReceiptLister, settings SettingsStore) *Handler {
	return &Handler{
		engine:   engine,
		checkout: svc,
		receipts: receipts,
		settings: settings,
	}
}

// Routes mounts every register endpoint on a fresh chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Route("/currencies", func(r chi.Router) {
			r.Get("/", h.listCurrencies)
			r.Put("/active", h.switchCurrency)
			r.Get("/convert", h.convert)
		})

		r.Route("/carts", func(r chi.Router) {
			r.Post("/", h.openCart)
			r.Route("/{cartID}", func(r chi.Router) {
				r.Get("/", h.getCart)
				r.Delete("/", h.closeCart)
				r.Post("/items", h.addItem)
				r.Delete("/items", h.clearCart)
				r.Put("/items/{productID}", h.setQuantity)
				r.Delete("/items/{productID}", h.removeItem)
				r.Put("/discount", h.setDiscount)
				r.Put("/customer", h.linkCustomer)
				r.Post("/checkout", h.submit)
			})
		})

		r.Get("/receipts", h.listReceipts)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.getSettings)
			r.Put("/shop", h.setShop)
		})
	})

	return r
}

func cartID(r *http.Request) string {
	return chi.URLParam(r, "cartID")
}
