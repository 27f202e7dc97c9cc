package queue

import (
	"encoding/json"

	"github.com/nexacart/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderEmail 订单确认邮件任务
	TaskOrderEmail = constants.TaskOrderEmail
	// TaskOrderCartClear 下单后清空购物车任务
	TaskOrderCartClear = constants.TaskOrderCartClear
	// TaskShipmentEmail 发货通知邮件任务
	TaskShipmentEmail = constants.TaskShipmentEmail
)

// OrderEmailPayload 订单确认邮件任务载荷
type OrderEmailPayload struct {
	OrderID uint `json:"order_id"`
}

// OrderCartClearPayload 清空购物车任务载荷
type OrderCartClearPayload struct {
	OrderID   uint   `json:"order_id"`
	SessionID string `json:"session_id"`
	UserID    uint   `json:"user_id"`
}

// ShipmentEmailPayload 发货通知邮件任务载荷
type ShipmentEmailPayload struct {
	OrderID uint `json:"order_id"`
}

// NewOrderEmailTask 创建订单确认邮件任务
func NewOrderEmailTask(payload OrderEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderEmail, body), nil
}

// NewOrderCartClearTask 创建清空购物车任务
func NewOrderCartClearTask(payload OrderCartClearPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderCartClear, body), nil
}

// NewShipmentEmailTask 创建发货通知邮件任务
func NewShipmentEmailTask(payload ShipmentEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskShipmentEmail, body), nil
}
