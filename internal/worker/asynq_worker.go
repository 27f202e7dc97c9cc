package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/nexacart/internal/logger"
	"github.com/nexacart/internal/provider"
	"github.com/nexacart/internal/queue"
	"github.com/nexacart/internal/repository"
	"github.com/nexacart/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderEmail, c.handleOrderEmail)
	mux.HandleFunc(queue.TaskOrderCartClear, c.handleOrderCartClear)
	mux.HandleFunc(queue.TaskShipmentEmail, c.handleShipmentEmail)
}

func (c *Consumer) handleOrderEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_email_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_email_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_email_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_order_email_skip_email_service_nil", "order_id", order.ID, "order_no", order.OrderNo)
		return nil
	}
	if err := c.EmailService.SendOrderConfirmation(order); err != nil {
		if errors.Is(err, service.ErrEmailServiceDisabled) || errors.Is(err, service.ErrEmailServiceNotConfigured) {
			logger.Debugw("worker_order_email_skip_disabled", "order_id", order.ID)
			return nil
		}
		if errors.Is(err, service.ErrEmailRecipientRejected) || errors.Is(err, service.ErrInvalidEmail) {
			// 收件人问题重试无意义
			logger.Warnw("worker_order_email_recipient_rejected", "order_id", order.ID, "error", err)
			return nil
		}
		logger.Warnw("worker_order_email_send_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleOrderCartClear(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_cart_clear_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderCartClearPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_cart_clear_unmarshal_failed", "error", err)
		return err
	}
	if payload.SessionID == "" && payload.UserID == 0 {
		logger.Debugw("worker_cart_clear_skip_empty_owner", "order_id", payload.OrderID)
		return nil
	}
	owner := repository.CartOwner{SessionID: payload.SessionID, UserID: payload.UserID}
	// 清空为幂等操作，重复投递无副作用
	if err := c.CartRepo.ClearByOwner(owner); err != nil {
		logger.Warnw("worker_cart_clear_failed",
			"order_id", payload.OrderID,
			"session_id", payload.SessionID,
			"user_id", payload.UserID,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleShipmentEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_shipment_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ShipmentEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_shipment_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_shipment_email_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_shipment_email_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_shipment_email_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	if order.TrackingID == "" {
		logger.Debugw("worker_shipment_email_skip_not_shipped", "order_id", order.ID)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_shipment_email_skip_email_service_nil", "order_id", order.ID, "order_no", order.OrderNo)
		return nil
	}
	if err := c.EmailService.SendShipmentNotification(order); err != nil {
		if errors.Is(err, service.ErrEmailServiceDisabled) || errors.Is(err, service.ErrEmailServiceNotConfigured) {
			logger.Debugw("worker_shipment_email_skip_disabled", "order_id", order.ID)
			return nil
		}
		if errors.Is(err, service.ErrEmailRecipientRejected) || errors.Is(err, service.ErrInvalidEmail) {
			logger.Warnw("worker_shipment_email_recipient_rejected", "order_id", order.ID, "error", err)
			return nil
		}
		logger.Warnw("worker_shipment_email_send_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"error", err,
		)
		return err
	}
	return nil
}
