package service

import (
	"context"
	"strings"
	"time"

	"github.com/nexacart/internal/constants"
	"github.com/nexacart/internal/logger"
	"github.com/nexacart/internal/models"
	"github.com/nexacart/internal/queue"
	"github.com/nexacart/internal/repository"
)

// PaymentVerifier 网关验签与状态查询抽象
type PaymentVerifier interface {
	VerifySignature(gatewayOrderID, paymentID, signature string) error
	FetchOrderStatus(ctx context.Context, gatewayOrderID string) (status, paymentID string, err error)
}

// PaymentService 支付对账服务。
// 同步验签与异步回调两个入口收敛到同一状态迁移逻辑。
type PaymentService struct {
	orderRepo    repository.OrderRepository
	cartRepo     repository.CartRepository
	verifier     PaymentVerifier
	emailService *EmailService
	queueClient  *queue.Client
}

// NewPaymentService 创建支付对账服务
func NewPaymentService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository, verifier PaymentVerifier, emailService *EmailService, queueClient *queue.Client) *PaymentService {
	return &PaymentService{
		orderRepo:    orderRepo,
		cartRepo:     cartRepo,
		verifier:     verifier,
		emailService: emailService,
		queueClient:  queueClient,
	}
}

// VerifyPaymentInput 同步验签输入
type VerifyPaymentInput struct {
	GatewayOrderID string
	PaymentID      string
	Signature      string
}

// VerifyPayment 同步验签入口。签名校验先于任何状态变更，
// 签名不合法时订单保持原状。
func (s *PaymentService) VerifyPayment(input VerifyPaymentInput) (*models.Order, error) {
	gatewayOrderID := strings.TrimSpace(input.GatewayOrderID)
	paymentID := strings.TrimSpace(input.PaymentID)
	if gatewayOrderID == "" || paymentID == "" || strings.TrimSpace(input.Signature) == "" {
		return nil, ErrInvalidInput
	}
	if s.verifier == nil {
		return nil, ErrPaymentNotConfigured
	}

	log := logger.S().With(
		"gateway_order_id", gatewayOrderID,
		"payment_id", paymentID,
	)
	log.Infow("payment_verify_received")

	if err := s.verifier.VerifySignature(gatewayOrderID, paymentID, input.Signature); err != nil {
		log.Warnw("payment_signature_rejected", "error", err)
		return nil, ErrPaymentSignatureInvalid
	}

	order, err := s.orderRepo.GetByPaymentRef(gatewayOrderID)
	if err != nil {
		log.Errorw("payment_order_fetch_failed", "error", err)
		return nil, err
	}
	if order == nil {
		log.Warnw("payment_order_not_found")
		return nil, ErrOrderNotFound
	}

	return s.applyPaymentResult(order, constants.PaymentStatusCompleted, paymentID)
}

// HandleCallback 异步回调入口：按内部交易 ID 定位订单，
// 向网关查询当前状态后对账。
func (s *PaymentService) HandleCallback(ctx context.Context, transactionID string) (*models.Order, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, ErrInvalidInput
	}
	if s.verifier == nil {
		return nil, ErrPaymentNotConfigured
	}

	log := logger.S().With("transaction_id", transactionID)
	log.Infow("payment_callback_received")

	order, err := s.orderRepo.GetByTransactionID(transactionID)
	if err != nil {
		log.Errorw("payment_callback_order_fetch_failed", "error", err)
		return nil, err
	}
	if order == nil {
		log.Warnw("payment_callback_order_not_found")
		return nil, ErrOrderNotFound
	}
	if order.PaymentRef == "" {
		log.Warnw("payment_callback_missing_payment_ref", "order_id", order.ID)
		return nil, ErrOrderNotFound
	}

	gatewayStatus, paymentID, err := s.verifier.FetchOrderStatus(ctx, order.PaymentRef)
	if err != nil {
		log.Errorw("payment_callback_gateway_query_failed", "order_id", order.ID, "error", err)
		return nil, err
	}

	normalized := normalizeGatewayStatus(gatewayStatus)
	if normalized == "" {
		// 网关仍在处理中，保持现状
		log.Infow("payment_callback_still_pending", "order_id", order.ID, "gateway_status", gatewayStatus)
		return order, nil
	}
	return s.applyPaymentResult(order, normalized, paymentID)
}

// normalizeGatewayStatus 将网关侧词汇归一化到四态支付状态；
// 仍在进行中的状态返回空串。
func normalizeGatewayStatus(gatewayStatus string) string {
	switch strings.ToLower(strings.TrimSpace(gatewayStatus)) {
	case constants.RazorpayStatusCaptured, constants.RazorpayStatusAuthorized, "paid":
		return constants.PaymentStatusCompleted
	case constants.RazorpayStatusFailed:
		return constants.PaymentStatusFailed
	case constants.RazorpayStatusRefunded:
		return constants.PaymentStatusRefunded
	default:
		return ""
	}
}

// applyPaymentResult 对账核心：迁移表校验后写入订单/支付状态，
// 成功后触发清购物车与确认邮件副作用。重复回调幂等。
func (s *PaymentService) applyPaymentResult(order *models.Order, paymentStatus, paymentID string) (*models.Order, error) {
	log := logger.S().With(
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"target_payment_status", paymentStatus,
	)
	if paymentID != "" {
		log = log.With("payment_id", paymentID)
	}

	// 幂等处理：已到目标状态的重复通知不再写库，仅补偿副作用
	if order.PaymentStatus == paymentStatus {
		log.Infow("payment_result_idempotent", "current_status", order.Status)
		if paymentStatus == constants.PaymentStatusCompleted {
			s.dispatchPostPaymentEffects(order)
		}
		return order, nil
	}

	targetStatus := order.Status
	switch paymentStatus {
	case constants.PaymentStatusCompleted:
		targetStatus = constants.OrderStatusProcessing
	case constants.PaymentStatusFailed:
		targetStatus = constants.OrderStatusFailed
	}

	if !isTransitionAllowed(order.Status, targetStatus) {
		log.Warnw("payment_status_transition_rejected",
			"current_status", order.Status,
			"target_status", targetStatus,
		)
		return nil, ErrStatusTransition
	}
	if !isPaymentTransitionAllowed(order.PaymentStatus, paymentStatus) {
		log.Warnw("payment_payment_transition_rejected",
			"current_payment_status", order.PaymentStatus,
			"target_payment_status", paymentStatus,
		)
		return nil, ErrStatusTransition
	}

	now := time.Now()
	updates := map[string]interface{}{
		"payment_status": paymentStatus,
		"updated_at":     now,
	}
	if paymentStatus == constants.PaymentStatusCompleted {
		updates["paid_at"] = now
	}
	if err := s.orderRepo.UpdateStatus(order.ID, targetStatus, updates); err != nil {
		log.Errorw("payment_result_apply_failed", "error", err)
		return nil, err
	}

	previousStatus := order.Status
	order.Status = targetStatus
	order.PaymentStatus = paymentStatus
	order.UpdatedAt = now
	if paymentStatus == constants.PaymentStatusCompleted {
		order.PaidAt = &now
		s.dispatchPostPaymentEffects(order)
	}

	log.Infow("payment_result_applied",
		"previous_status", previousStatus,
		"new_status", order.Status,
	)
	return order, nil
}

// dispatchPostPaymentEffects 支付确认后的副作用：清空下单会话的购物车
// （幂等，空购物车清空是 no-op）并发送确认邮件。对调用方的响应
// 不依赖这里的结果。
func (s *PaymentService) dispatchPostPaymentEffects(order *models.Order) {
	if s.queueClient != nil && s.queueClient.Enabled() {
		if err := s.queueClient.EnqueueOrderCartClear(queue.OrderCartClearPayload{
			OrderID:   order.ID,
			SessionID: order.SessionID,
			UserID:    order.UserID,
		}); err != nil {
			logger.Warnw("payment_enqueue_cart_clear_failed", "order_id", order.ID, "error", err)
			s.clearCartInline(order)
		}
		if err := s.queueClient.EnqueueOrderEmail(queue.OrderEmailPayload{OrderID: order.ID}); err != nil {
			logger.Warnw("payment_enqueue_email_failed", "order_id", order.ID, "error", err)
			s.sendConfirmationInline(order)
		}
		return
	}
	s.clearCartInline(order)
	s.sendConfirmationInline(order)
}

func (s *PaymentService) clearCartInline(order *models.Order) {
	owner := repository.CartOwner{SessionID: order.SessionID, UserID: order.UserID}
	if err := s.cartRepo.ClearByOwner(owner); err != nil {
		logger.Warnw("payment_cart_clear_failed",
			"order_id", order.ID,
			"session_id", order.SessionID,
			"user_id", order.UserID,
			"error", err,
		)
	}
}

func (s *PaymentService) sendConfirmationInline(order *models.Order) {
	if s.emailService == nil {
		return
	}
	if err := s.emailService.SendOrderConfirmation(order); err != nil {
		logger.Warnw("payment_confirmation_email_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"error", err,
		)
	}
}
