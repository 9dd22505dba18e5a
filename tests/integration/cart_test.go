//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestCart_OpenAndClose(t *testing.T) {
	cart := openCart(t)
	if len(cart.Lines) != 0 {
		t.Errorf("new cart should be empty, got %d lines", len(cart.Lines))
	}

	resp := doRequest(t, http.MethodDelete, "/api/carts/"+cart.ID, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("close cart: got %d, want 204", resp.StatusCode)
	}

	gone := doGet(t, "/api/carts/"+cart.ID)
	defer gone.Body.Close()
	if gone.StatusCode != http.StatusNotFound {
		t.Errorf("closed cart: got %d, want 404", gone.StatusCode)
	}
}

func TestCart_NotFound(t *testing.T) {
	resp := doGet(t, "/api/carts/00000000-0000-0000-0000-000000000000")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown cart: got %d, want 404", resp.StatusCode)
	}
	if e := decodeJSON[errorResponse](t, resp); e.Code != "cart_not_found" {
		t.Errorf("error code: got %q, want %q", e.Code, "cart_not_found")
	}
}

func TestCart_AddItemShopDown(t *testing.T) {
	// Product resolution needs the shop API, which is unreachable here:
	// the gateway must answer with a gateway error, not hang or 500.
	cart := openCart(t)

	resp := doRequest(t, http.MethodPost, "/api/carts/"+cart.ID+"/items",
		map[string]string{"product_id": "p1"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError && resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("add item with shop down: got %d, want 500 or 502", resp.StatusCode)
	}
}

func TestCart_DiscountValidation(t *testing.T) {
	cart := openCart(t)

	ok := doRequest(t, http.MethodPut, "/api/carts/"+cart.ID+"/discount", map[string]int{"percent": 25})
	defer ok.Body.Close()
	if ok.StatusCode != http.StatusOK {
		t.Fatalf("set discount: got %d, want 200", ok.StatusCode)
	}
	if got := decodeJSON[cartResponse](t, ok).DiscountPercent; got != "25" {
		t.Errorf("discount percent: got %q, want %q", got, "25")
	}

	bad := doRequest(t, http.MethodPut, "/api/carts/"+cart.ID+"/discount", map[string]int{"percent": 120})
	defer bad.Body.Close()
	if bad.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("invalid discount: got %d, want 422", bad.StatusCode)
	}
}

func TestCart_CheckoutEmpty(t *testing.T) {
	cart := openCart(t)

	resp := doRequest(t, http.MethodPost, "/api/carts/"+cart.ID+"/checkout", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty checkout: got %d, want 400", resp.StatusCode)
	}
	if e := decodeJSON[errorResponse](t, resp); e.Code != "empty_cart" {
		t.Errorf("error code: got %q, want %q", e.Code, "empty_cart")
	}
}

func TestReceipts_EmptyJournal(t *testing.T) {
	resp := doGet(t, "/api/receipts")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list receipts: got %d, want 200", resp.StatusCode)
	}
	if receipts := decodeJSON[[]map[string]any](t, resp); len(receipts) != 0 {
		t.Errorf("receipt journal should be empty, got %d entries", len(receipts))
	}
}
