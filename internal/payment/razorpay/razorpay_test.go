package razorpay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAndValidateConfig(t *testing.T) {
	cfg, err := ParseConfig(map[string]interface{}{
		"key_id":       " rzp_test_abc ",
		"key_secret":   " secret123 ",
		"checkout_url": "https://shop.example.com/pay",
	})
	if err != nil {
		t.Fatalf("parse config failed: %v", err)
	}
	if cfg.KeyID != "rzp_test_abc" {
		t.Fatalf("unexpected key id: %s", cfg.KeyID)
	}
	if cfg.BaseURL != defaultBaseURL {
		t.Fatalf("unexpected default base url: %s", cfg.BaseURL)
	}
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("validate config failed: %v", err)
	}
}

func TestValidateConfigMissingSecret(t *testing.T) {
	err := ValidateConfig(&Config{KeyID: "rzp_test_abc"})
	if !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected config invalid, got %v", err)
	}
}

func TestVerifySignature(t *testing.T) {
	client, err := NewClient(&Config{KeyID: "rzp_test_abc", KeySecret: "secret123"})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}

	sig := SignPayment("order_abc", "pay_xyz", "secret123")
	if err := client.VerifySignature("order_abc", "pay_xyz", sig); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}

	if err := client.VerifySignature("order_abc", "pay_xyz", "deadbeef"); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected signature invalid, got %v", err)
	}
	if err := client.VerifySignature("order_other", "pay_xyz", sig); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected signature invalid for wrong order, got %v", err)
	}
}

func TestCreateOrderAmountConversion(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/orders" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "rzp_test_abc" || pass != "secret123" {
			t.Fatalf("unexpected basic auth: %s/%s", user, pass)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request failed: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       "order_abc",
			"amount":   57500,
			"currency": "INR",
			"receipt":  "NX1001",
			"status":   StatusCreated,
		})
	}))
	defer server.Close()

	client, err := NewClient(&Config{
		KeyID:       "rzp_test_abc",
		KeySecret:   "secret123",
		BaseURL:     server.URL,
		CheckoutURL: "https://shop.example.com/pay",
	})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}

	order, err := client.CreateOrder(context.Background(), CreateOrderRequest{
		Amount:   decimal.RequireFromString("575.00"),
		Currency: "inr",
		Receipt:  "NX1001",
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if received["amount"] != float64(57500) {
		t.Fatalf("expected amount 57500 paise, got %v", received["amount"])
	}
	if received["currency"] != "INR" {
		t.Fatalf("expected currency INR, got %v", received["currency"])
	}
	if order.ID != "order_abc" {
		t.Fatalf("unexpected order id: %s", order.ID)
	}
	if order.RedirectURL != "https://shop.example.com/pay?gateway_order=order_abc" {
		t.Fatalf("unexpected redirect url: %s", order.RedirectURL)
	}
}

func TestCreateOrderRejectsSubPaiseAmount(t *testing.T) {
	client, err := NewClient(&Config{KeyID: "rzp_test_abc", KeySecret: "secret123"})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	_, err = client.CreateOrder(context.Background(), CreateOrderRequest{
		Amount:   decimal.RequireFromString("10.005"),
		Currency: "INR",
	})
	if !errors.Is(err, ErrAmountInvalid) {
		t.Fatalf("expected amount invalid, got %v", err)
	}
	_, err = client.CreateOrder(context.Background(), CreateOrderRequest{
		Amount:   decimal.Zero,
		Currency: "INR",
	})
	if !errors.Is(err, ErrAmountInvalid) {
		t.Fatalf("expected amount invalid for zero amount, got %v", err)
	}
}

func TestFetchOrderStatusPrefersCaptured(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/orders/order_abc/payments" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"count": 2,
			"items": []map[string]interface{}{
				{"id": "pay_failed", "status": StatusFailed},
				{"id": "pay_ok", "status": StatusCaptured},
			},
		})
	}))
	defer server.Close()

	client, err := NewClient(&Config{KeyID: "rzp_test_abc", KeySecret: "secret123", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}

	status, paymentID, err := client.FetchOrderStatus(context.Background(), "order_abc")
	if err != nil {
		t.Fatalf("fetch order status failed: %v", err)
	}
	if status != StatusCaptured {
		t.Fatalf("expected captured, got %s", status)
	}
	if paymentID != "pay_ok" {
		t.Fatalf("expected pay_ok, got %s", paymentID)
	}
}

func TestFetchOrderStatusNoPayments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"count": 0,
			"items": []map[string]interface{}{},
		})
	}))
	defer server.Close()

	client, err := NewClient(&Config{KeyID: "rzp_test_abc", KeySecret: "secret123", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}

	status, paymentID, err := client.FetchOrderStatus(context.Background(), "order_abc")
	if err != nil {
		t.Fatalf("fetch order status failed: %v", err)
	}
	if status != StatusCreated {
		t.Fatalf("expected created, got %s", status)
	}
	if paymentID != "" {
		t.Fatalf("expected empty payment id, got %s", paymentID)
	}
}
