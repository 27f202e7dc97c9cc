package service

import (
	"strings"
	"time"

	"github.com/nexacart/internal/constants"
	"github.com/nexacart/internal/logger"
	"github.com/nexacart/internal/models"
	"github.com/nexacart/internal/repository"
)

// OrderService 订单查询与管理服务
type OrderService struct {
	orderRepo repository.OrderRepository
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo}
}

// GetByID 获取订单详情（管理端）
func (s *OrderService) GetByID(id uint) (*models.Order, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetByIDAndUser 获取用户自己的订单详情
func (s *OrderService) GetByIDAndUser(id, userID uint) (*models.Order, error) {
	if id == 0 || userID == 0 {
		return nil, ErrInvalidInput
	}
	order, err := s.orderRepo.GetByIDAndUser(id, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetByOrderNoForGuest 游客按订单号查单，需同时提供下单邮箱防止遍历
func (s *OrderService) GetByOrderNoForGuest(orderNo, email string) (*models.Order, error) {
	orderNo = strings.TrimSpace(orderNo)
	email = strings.ToLower(strings.TrimSpace(email))
	if orderNo == "" || email == "" {
		return nil, ErrInvalidInput
	}
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil || !strings.EqualFold(order.Email, email) {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListByUser 用户订单列表
func (s *OrderService) ListByUser(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if filter.UserID == 0 {
		return nil, 0, ErrInvalidInput
	}
	return s.orderRepo.ListByUser(filter)
}

// ListAdmin 管理端订单列表
func (s *OrderService) ListAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

// UpdateOrderStatus 管理端修改订单状态，迁移表之外的变更一律拒绝
func (s *OrderService) UpdateOrderStatus(id uint, targetStatus string) (*models.Order, error) {
	targetStatus = strings.ToLower(strings.TrimSpace(targetStatus))
	if id == 0 || targetStatus == "" {
		return nil, ErrInvalidInput
	}

	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status == targetStatus {
		return order, nil
	}
	if !isTransitionAllowed(order.Status, targetStatus) {
		logger.Warnw("order_status_transition_rejected",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"current_status", order.Status,
			"target_status", targetStatus,
		)
		return nil, ErrStatusTransition
	}

	now := time.Now()
	updates := map[string]interface{}{"updated_at": now}
	if err := s.orderRepo.UpdateStatus(order.ID, targetStatus, updates); err != nil {
		return nil, err
	}

	previousStatus := order.Status
	order.Status = targetStatus
	order.UpdatedAt = now
	logger.Infow("order_status_updated",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"previous_status", previousStatus,
		"new_status", targetStatus,
	)
	return order, nil
}

// ConfirmOfflinePayment 管理端核销线下收款（COD 回款/银行转账到账）
func (s *OrderService) ConfirmOfflinePayment(id uint) (*models.Order, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.PaymentMethod == constants.PaymentMethodRazorpay {
		return nil, ErrPaymentMethodInvalid
	}
	if order.PaymentStatus == constants.PaymentStatusCompleted {
		return order, nil
	}
	if !isPaymentTransitionAllowed(order.PaymentStatus, constants.PaymentStatusCompleted) {
		return nil, ErrStatusTransition
	}

	now := time.Now()
	updates := map[string]interface{}{
		"payment_status": constants.PaymentStatusCompleted,
		"paid_at":        now,
		"updated_at":     now,
	}
	if err := s.orderRepo.UpdateStatus(order.ID, order.Status, updates); err != nil {
		return nil, err
	}

	order.PaymentStatus = constants.PaymentStatusCompleted
	order.PaidAt = &now
	order.UpdatedAt = now
	logger.Infow("order_offline_payment_confirmed",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"payment_method", order.PaymentMethod,
	)
	return order, nil
}
