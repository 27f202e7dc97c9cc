package service

import (
	"strings"

	"github.com/nexacart/internal/constants"
)

// allowedTransitions 订单状态闭合迁移表。
// completed / cancelled / failed 为终态，不允许再迁出。
var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusProcessing: true,
		constants.OrderStatusFailed:     true,
	},
	constants.OrderStatusProcessing: {
		constants.OrderStatusCompleted: true,
		constants.OrderStatusCancelled: true,
	},
}

// isTransitionAllowed 校验订单状态迁移是否合法（原状态保持不变视为合法）
func isTransitionAllowed(from, to string) bool {
	from = strings.ToLower(strings.TrimSpace(from))
	to = strings.ToLower(strings.TrimSpace(to))
	if from == to {
		return true
	}
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// allowedPaymentTransitions 支付状态迁移表。completed/refunded 之外均为可迁出态。
var allowedPaymentTransitions = map[string]map[string]bool{
	constants.PaymentStatusPending: {
		constants.PaymentStatusCompleted: true,
		constants.PaymentStatusFailed:    true,
	},
	constants.PaymentStatusCompleted: {
		constants.PaymentStatusRefunded: true,
	},
	constants.PaymentStatusFailed: {
		constants.PaymentStatusCompleted: true,
	},
}

// isPaymentTransitionAllowed 校验支付状态迁移是否合法
func isPaymentTransitionAllowed(from, to string) bool {
	from = strings.ToLower(strings.TrimSpace(from))
	to = strings.ToLower(strings.TrimSpace(to))
	if from == to {
		return true
	}
	next, ok := allowedPaymentTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}
