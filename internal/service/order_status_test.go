package service

import (
	"testing"

	"github.com/nexacart/internal/constants"
)

func TestIsTransitionAllowed(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"pending_to_processing", constants.OrderStatusPending, constants.OrderStatusProcessing, true},
		{"pending_to_failed", constants.OrderStatusPending, constants.OrderStatusFailed, true},
		{"pending_to_completed_skips_processing", constants.OrderStatusPending, constants.OrderStatusCompleted, false},
		{"processing_to_completed", constants.OrderStatusProcessing, constants.OrderStatusCompleted, true},
		{"processing_to_cancelled", constants.OrderStatusProcessing, constants.OrderStatusCancelled, true},
		{"processing_back_to_pending", constants.OrderStatusProcessing, constants.OrderStatusPending, false},
		{"completed_is_terminal", constants.OrderStatusCompleted, constants.OrderStatusProcessing, false},
		{"cancelled_is_terminal", constants.OrderStatusCancelled, constants.OrderStatusProcessing, false},
		{"failed_is_terminal", constants.OrderStatusFailed, constants.OrderStatusProcessing, false},
		{"same_state_is_noop", constants.OrderStatusProcessing, constants.OrderStatusProcessing, true},
		{"same_terminal_state_is_noop", constants.OrderStatusCompleted, constants.OrderStatusCompleted, true},
		{"normalizes_case_and_whitespace", " Pending ", "PROCESSING", true},
		{"unknown_source_rejected", "shipped", constants.OrderStatusCompleted, false},
		{"unknown_target_rejected", constants.OrderStatusPending, "archived", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTransitionAllowed(tt.from, tt.to); got != tt.want {
				t.Fatalf("isTransitionAllowed(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestIsPaymentTransitionAllowed(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"pending_to_completed", constants.PaymentStatusPending, constants.PaymentStatusCompleted, true},
		{"pending_to_failed", constants.PaymentStatusPending, constants.PaymentStatusFailed, true},
		{"pending_to_refunded_skips_capture", constants.PaymentStatusPending, constants.PaymentStatusRefunded, false},
		{"completed_to_refunded", constants.PaymentStatusCompleted, constants.PaymentStatusRefunded, true},
		{"completed_back_to_pending", constants.PaymentStatusCompleted, constants.PaymentStatusPending, false},
		{"failed_to_completed_late_capture", constants.PaymentStatusFailed, constants.PaymentStatusCompleted, true},
		{"refunded_is_terminal", constants.PaymentStatusRefunded, constants.PaymentStatusCompleted, false},
		{"same_state_is_noop", constants.PaymentStatusCompleted, constants.PaymentStatusCompleted, true},
		{"normalizes_case", "Completed", "REFUNDED", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isPaymentTransitionAllowed(tt.from, tt.to); got != tt.want {
				t.Fatalf("isPaymentTransitionAllowed(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
