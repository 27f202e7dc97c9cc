package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/nexacart/internal/constants"
	"github.com/nexacart/internal/logger"
	"github.com/nexacart/internal/models"
	"github.com/nexacart/internal/queue"
	"github.com/nexacart/internal/shipping/shiprocket"
)

// CourierGateway 承运商聚合接口
type CourierGateway interface {
	CreateShipment(ctx context.Context, req shiprocket.CreateShipmentRequest) (*shiprocket.CreateShipmentResult, error)
	AssignAWB(ctx context.Context, shipmentID int64) (awbCode, courierName string, err error)
	Track(ctx context.Context, awbCode string) (*shiprocket.TrackingResult, error)
}

// ShipmentService 发货服务：创建面单、分配运单号、查询轨迹
type ShipmentService struct {
	orderRepo    orderRepoForShipment
	courier      CourierGateway
	emailService *EmailService
	queueClient  *queue.Client
}

type orderRepoForShipment interface {
	GetByID(id uint) (*models.Order, error)
	UpdateStatus(id uint, status string, updates map[string]interface{}) error
}

// NewShipmentService 创建发货服务
func NewShipmentService(orderRepo orderRepoForShipment, courier CourierGateway, emailService *EmailService, queueClient *queue.Client) *ShipmentService {
	return &ShipmentService{
		orderRepo:    orderRepo,
		courier:      courier,
		emailService: emailService,
		queueClient:  queueClient,
	}
}

// ShipmentAddress 发货地址（承运商上送格式）
type ShipmentAddress struct {
	Line    string
	City    string
	State   string
	Pincode string
	Country string
}

// pincodeTailPattern 兜底解析时匹配串尾的 6 位邮编
var pincodeTailPattern = regexp.MustCompile(`(\d{6})\s*$`)

// Dispatch 为订单创建面单并分配运单号。仅允许 processing 状态的订单发货；
// 已有运单号的重复调用直接返回当前订单。承运商侧错误原样向上传递。
func (s *ShipmentService) Dispatch(ctx context.Context, orderID uint) (*models.Order, error) {
	if orderID == 0 {
		return nil, ErrInvalidInput
	}
	if s.courier == nil {
		return nil, ErrCourierNotConfigured
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if len(order.Items) == 0 {
		return nil, ErrOrderHasNoItems
	}
	if order.TrackingID != "" {
		logger.Infow("shipment_already_dispatched",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"tracking_id", order.TrackingID,
		)
		return order, nil
	}
	if order.Status != constants.OrderStatusProcessing {
		logger.Warnw("shipment_dispatch_rejected",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"status", order.Status,
		)
		return nil, ErrStatusTransition
	}

	address := resolveShipmentAddress(order)
	request := buildShipmentRequest(order, address)

	result, err := s.courier.CreateShipment(ctx, request)
	if err != nil {
		logger.Errorw("shipment_create_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"error", err,
		)
		return nil, err
	}

	awbCode, courierName := result.AWBCode, result.CourierName
	if awbCode == "" {
		awbCode, courierName, err = s.courier.AssignAWB(ctx, result.ShipmentID)
		if err != nil {
			logger.Errorw("shipment_awb_assign_failed",
				"order_id", order.ID,
				"order_no", order.OrderNo,
				"shipment_id", result.ShipmentID,
				"error", err,
			)
			return nil, err
		}
	}

	now := time.Now()
	updates := map[string]interface{}{
		"tracking_id":  awbCode,
		"courier_name": courierName,
		"shipment_id":  fmt.Sprintf("%d", result.ShipmentID),
		"shipped_at":   now,
		"updated_at":   now,
	}
	if err := s.orderRepo.UpdateStatus(order.ID, order.Status, updates); err != nil {
		logger.Errorw("shipment_persist_failed",
			"order_id", order.ID,
			"tracking_id", awbCode,
			"error", err,
		)
		return nil, err
	}

	order.TrackingID = awbCode
	order.CourierName = courierName
	order.ShipmentID = fmt.Sprintf("%d", result.ShipmentID)
	order.ShippedAt = &now
	order.UpdatedAt = now

	logger.Infow("shipment_dispatched",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"tracking_id", awbCode,
		"courier_name", courierName,
	)

	s.dispatchShipmentNotification(order)
	return order, nil
}

// Track 查询订单物流轨迹
func (s *ShipmentService) Track(ctx context.Context, orderID uint) (*shiprocket.TrackingResult, error) {
	if orderID == 0 {
		return nil, ErrInvalidInput
	}
	if s.courier == nil {
		return nil, ErrCourierNotConfigured
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.TrackingID == "" {
		return nil, ErrInvalidInput
	}
	return s.courier.Track(ctx, order.TrackingID)
}

// resolveShipmentAddress 构造发货地址。结构化字段优先；
// 历史订单只有整段文本时走兜底解析。
func resolveShipmentAddress(order *models.Order) ShipmentAddress {
	country := strings.TrimSpace(order.ShippingCtry)
	if country == "" {
		country = constants.ShipmentCountryDefault
	}
	if strings.TrimSpace(order.ShippingCity) != "" && strings.TrimSpace(order.ShippingZip) != "" {
		state := strings.TrimSpace(order.ShippingState)
		if state == "" {
			state = constants.ShipmentFallbackState
		}
		return ShipmentAddress{
			Line:    strings.TrimSpace(order.ShippingAddr),
			City:    strings.TrimSpace(order.ShippingCity),
			State:   state,
			Pincode: strings.TrimSpace(order.ShippingZip),
			Country: country,
		}
	}
	address := parseFreeformAddress(order.ShippingAddr)
	address.Country = country
	return address
}

// parseFreeformAddress 从整段地址文本中启发式提取城市/邦/邮编：
// 串尾 6 位数字视为邮编，去掉邮编后按逗号取末两段作为城市与邦。
// 提取不到的字段回退到默认揽收区域，保证面单始终能创建。
func parseFreeformAddress(raw string) ShipmentAddress {
	address := ShipmentAddress{
		Line:    strings.TrimSpace(raw),
		City:    constants.ShipmentFallbackCity,
		State:   constants.ShipmentFallbackState,
		Pincode: constants.ShipmentFallbackPincode,
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		return address
	}

	if match := pincodeTailPattern.FindStringSubmatch(text); match != nil {
		address.Pincode = match[1]
		text = strings.TrimRight(strings.TrimSpace(strings.TrimSuffix(text, match[0])), ",-")
		text = strings.TrimSpace(text)
	}

	segments := make([]string, 0, 8)
	for _, segment := range strings.Split(text, ",") {
		segment = strings.TrimSpace(segment)
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	switch {
	case len(segments) >= 3:
		address.City = segments[len(segments)-2]
		address.State = segments[len(segments)-1]
		address.Line = strings.Join(segments[:len(segments)-2], ", ")
	case len(segments) == 2:
		address.City = segments[len(segments)-1]
		address.Line = segments[0]
	case len(segments) == 1:
		address.Line = segments[0]
	}
	return address
}

func buildShipmentRequest(order *models.Order, address ShipmentAddress) shiprocket.CreateShipmentRequest {
	items := make([]shiprocket.ShipmentItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, shiprocket.ShipmentItem{
			Name:  item.ProductName,
			SKU:   fmt.Sprintf("P%d", item.ProductID),
			Units: item.Quantity,
			Price: item.UnitPrice.String(),
		})
	}

	paymentMethod := "Prepaid"
	if order.PaymentMethod == constants.PaymentMethodCOD {
		paymentMethod = "COD"
	}

	return shiprocket.CreateShipmentRequest{
		OrderNo:       order.OrderNo,
		OrderDate:     order.CreatedAt,
		CustomerName:  customerNameFromEmail(order.Email),
		Email:         order.Email,
		Phone:         order.Phone,
		Address:       address.Line,
		City:          address.City,
		State:         address.State,
		Pincode:       address.Pincode,
		Country:       address.Country,
		PaymentMethod: paymentMethod,
		SubTotal:      order.Total.String(),
		Items:         items,
	}
}

// customerNameFromEmail 订单未单独留姓名时以邮箱前缀代替
func customerNameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	if email != "" {
		return email
	}
	return "Customer"
}

// dispatchShipmentNotification 发货通知副作用，失败不影响发货结果
func (s *ShipmentService) dispatchShipmentNotification(order *models.Order) {
	if s.queueClient != nil && s.queueClient.Enabled() {
		if err := s.queueClient.EnqueueShipmentEmail(queue.ShipmentEmailPayload{OrderID: order.ID}); err != nil {
			logger.Warnw("shipment_enqueue_email_failed", "order_id", order.ID, "error", err)
			s.sendShipmentEmailInline(order)
		}
		return
	}
	s.sendShipmentEmailInline(order)
}

func (s *ShipmentService) sendShipmentEmailInline(order *models.Order) {
	if s.emailService == nil {
		return
	}
	if err := s.emailService.SendShipmentNotification(order); err != nil {
		logger.Warnw("shipment_notification_email_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"error", err,
		)
	}
}
