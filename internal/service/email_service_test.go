package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nexacart/internal/config"
	"github.com/nexacart/internal/constants"
	"github.com/nexacart/internal/models"

	"github.com/shopspring/decimal"
)

func TestSendOrderConfirmationDisabled(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{Enabled: false})
	order := &models.Order{
		OrderNo:  "NX-TEST-1",
		Email:    "buyer@example.com",
		Total:    models.NewMoneyFromDecimal(decimal.NewFromInt(1260)),
		Currency: "INR",
	}
	if err := svc.SendOrderConfirmation(order); !errors.Is(err, ErrEmailServiceDisabled) {
		t.Fatalf("expected ErrEmailServiceDisabled, got %v", err)
	}
}

func TestPaymentMethodLabel(t *testing.T) {
	if got := paymentMethodLabel("en-US", constants.PaymentMethodCOD); got != "Cash on Delivery" {
		t.Fatalf("unexpected cod label: %s", got)
	}
	if got := paymentMethodLabel("zh-CN", constants.PaymentMethodBankTransfer); got != "银行转账" {
		t.Fatalf("unexpected bank transfer label: %s", got)
	}
	if got := paymentMethodLabel("en-US", "unknown_method"); got != "unknown_method" {
		t.Fatalf("unknown method should pass through, got %s", got)
	}
}

func TestBuildEmailMessage(t *testing.T) {
	msg := buildEmailMessage("shop@example.com", "buyer@example.com", "Order NX-1 confirmed", "body text")
	if !strings.Contains(msg, "To: buyer@example.com\r\n") {
		t.Fatalf("message missing recipient: %s", msg)
	}
	if !strings.Contains(msg, "Content-Type: text/plain; charset=UTF-8\r\n") {
		t.Fatalf("message missing content type: %s", msg)
	}
	if !strings.HasSuffix(msg, "body text") {
		t.Fatalf("message missing body: %s", msg)
	}
}

func TestShipmentNotificationContent(t *testing.T) {
	shipped := time.Now()
	order := &models.Order{
		OrderNo:     "NX-SHIP-1",
		Email:       "buyer@example.com",
		TrackingID:  "AWB123456",
		CourierName: "Delhivery",
		ShippedAt:   &shipped,
	}
	svc := NewEmailService(&config.EmailConfig{Enabled: false})
	// 服务未启用时只校验入参与错误语义，内容构造由 i18n 保障
	if err := svc.SendShipmentNotification(order); !errors.Is(err, ErrEmailServiceDisabled) {
		t.Fatalf("expected ErrEmailServiceDisabled, got %v", err)
	}
	if err := svc.SendShipmentNotification(nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for nil order, got %v", err)
	}
}

func TestIsEmailRecipientRejected(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "smtp_550_no_such_recipient",
			err:  errors.New("550 No such recipient here"),
			want: true,
		},
		{
			name: "smtp_user_unknown",
			err:  errors.New("SMTP 5.1.1 user unknown"),
			want: true,
		},
		{
			name: "smtp_550_mailbox_unavailable",
			err:  errors.New("550 mailbox unavailable"),
			want: true,
		},
		{
			name: "network_timeout",
			err:  errors.New("dial tcp timeout"),
			want: false,
		},
		{
			name: "nil_error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isEmailRecipientRejected(tt.err); got != tt.want {
				t.Fatalf("isEmailRecipientRejected() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeEmailSendError(t *testing.T) {
	rejected := errors.New("550 No such recipient here")
	if got := normalizeEmailSendError(rejected); !errors.Is(got, ErrEmailRecipientRejected) {
		t.Fatalf("normalizeEmailSendError() expected ErrEmailRecipientRejected, got %v", got)
	}

	networkErr := errors.New("dial tcp timeout")
	if got := normalizeEmailSendError(networkErr); !errors.Is(got, networkErr) {
		t.Fatalf("normalizeEmailSendError() should keep original error, got %v", got)
	}

	if got := normalizeEmailSendError(nil); got != nil {
		t.Fatalf("normalizeEmailSendError(nil) should be nil, got %v", got)
	}
}
