package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/nexacart/internal/constants"
	"github.com/nexacart/internal/logger"
	"github.com/nexacart/internal/models"
	"github.com/nexacart/internal/payment/razorpay"
	"github.com/nexacart/internal/queue"
	"github.com/nexacart/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentGateway 支付网关抽象（创建网关订单，返回跳转目标）
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req razorpay.CreateOrderRequest) (*razorpay.GatewayOrder, error)
}

// CheckoutService 结算服务：购物车快照、计价、下单与支付分支
type CheckoutService struct {
	orderRepo      repository.OrderRepository
	cartRepo       repository.CartRepository
	productRepo    repository.ProductRepository
	settingService *SettingService
	emailService   *EmailService
	queueClient    *queue.Client
	gateway        PaymentGateway
}

// NewCheckoutService 创建结算服务
func NewCheckoutService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository, productRepo repository.ProductRepository, settingService *SettingService, emailService *EmailService, queueClient *queue.Client, gateway PaymentGateway) *CheckoutService {
	return &CheckoutService{
		orderRepo:      orderRepo,
		cartRepo:       cartRepo,
		productRepo:    productRepo,
		settingService: settingService,
		emailService:   emailService,
		queueClient:    queueClient,
		gateway:        gateway,
	}
}

// CheckoutInput 结算请求输入
type CheckoutInput struct {
	Owner           repository.CartOwner
	Email           string
	Phone           string
	ShippingAddress string
	ShippingCity    string
	ShippingState   string
	ShippingZip     string
	ShippingCountry string
	PaymentMethod   string
	Notes           string
}

// CheckoutResult 结算结果：COD/转账直接确认，网关方式携带跳转信息
type CheckoutResult struct {
	Order       *models.Order `json:"order"`
	OrderNo     string        `json:"order_no"`
	RedirectURL string        `json:"redirect_url,omitempty"`
	PaymentID   string        `json:"payment_id,omitempty"`
}

// OrderItemDraft 购物车快照产出的订单项草稿（下单时定价，后续不再回查商品）
type OrderItemDraft struct {
	ProductID    uint
	ProductName  string
	UnitPrice    models.Money
	Quantity     int
	Subtotal     models.Money
	VariantLabel string
}

// BuildCartSnapshot 构建购物车快照。逐行解析商品与规格价格覆盖，
// 商品缺失会使整个结算失败而不是静默丢行；快照保持加入顺序。
func (s *CheckoutService) BuildCartSnapshot(owner repository.CartOwner) ([]OrderItemDraft, error) {
	items, err := s.cartRepo.ListByOwner(owner)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	drafts := make([]OrderItemDraft, 0, len(items))
	for _, item := range items {
		product := item.Product
		if product == nil || product.ID == 0 {
			p, err := s.productRepo.GetByID(item.ProductID)
			if err != nil {
				return nil, err
			}
			product = p
		}
		if product == nil {
			return nil, ErrProductNotFound
		}

		unitPrice := product.PriceAmount
		if raw, ok := product.VariantPrice(item.VariantLabel); ok {
			parsed, err := models.NewMoneyFromString(raw)
			if err != nil {
				logger.Warnw("variant_price_override_invalid",
					"product_id", product.ID,
					"variant_label", item.VariantLabel,
					"raw", raw,
				)
			} else {
				unitPrice = parsed
			}
		}

		lineTotal := unitPrice.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity)))
		drafts = append(drafts, OrderItemDraft{
			ProductID:    product.ID,
			ProductName:  product.Name,
			UnitPrice:    unitPrice,
			Quantity:     item.Quantity,
			Subtotal:     models.NewMoneyFromDecimal(lineTotal),
			VariantLabel: item.VariantLabel,
		})
	}
	return drafts, nil
}

// Checkout 结算主流程：校验 → 快照 → 计价 → 事务内落单 → 支付分支。
// 订单与订单项在同一事务内提交；购物车清空与确认邮件作为可重试的
// 异步副作用，失败不影响已提交的订单结果。
func (s *CheckoutService) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	if err := validateCheckoutInput(&input); err != nil {
		return nil, err
	}

	drafts, err := s.BuildCartSnapshot(input.Owner)
	if err != nil {
		return nil, err
	}

	lines := make([]PricedLine, 0, len(drafts))
	for _, draft := range drafts {
		lines = append(lines, PricedLine{UnitPrice: draft.UnitPrice, Quantity: draft.Quantity})
	}
	totals := CalculateTotals(lines, s.settingService.GetCheckoutSettings(), models.Money{})

	orderNo, err := s.generateUniqueOrderNo()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := &models.Order{
		OrderNo:       orderNo,
		UserID:        input.Owner.UserID,
		SessionID:     input.Owner.SessionID,
		Email:         input.Email,
		Phone:         input.Phone,
		Status:        constants.OrderStatusPending,
		PaymentStatus: constants.PaymentStatusPending,
		PaymentMethod: input.PaymentMethod,
		TransactionID: uuid.NewString(),
		Currency:      s.settingService.GetSiteCurrency(),
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Shipping:      totals.Shipping,
		Discount:      totals.Discount,
		Total:         totals.Total,
		ShippingAddr:  input.ShippingAddress,
		ShippingCity:  input.ShippingCity,
		ShippingState: input.ShippingState,
		ShippingZip:   input.ShippingZip,
		ShippingCtry:  input.ShippingCountry,
		Notes:         input.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	items := make([]models.OrderItem, 0, len(drafts))
	for _, draft := range drafts {
		items = append(items, models.OrderItem{
			ProductID:    draft.ProductID,
			ProductName:  draft.ProductName,
			UnitPrice:    draft.UnitPrice,
			Quantity:     draft.Quantity,
			Subtotal:     draft.Subtotal,
			VariantLabel: draft.VariantLabel,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	// 订单与订单项原子提交，不存在只有订单没有订单项的中间态
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		return s.orderRepo.WithTx(tx).Create(order, items)
	})
	if err != nil {
		logger.Errorw("checkout_order_create_failed", "order_no", orderNo, "error", err)
		return nil, fmt.Errorf("create order: %w", err)
	}
	order.Items = items

	switch input.PaymentMethod {
	case constants.PaymentMethodRazorpay:
		return s.continueWithGateway(ctx, order)
	case constants.PaymentMethodCOD, constants.PaymentMethodBankTransfer:
		return s.confirmOffline(order)
	default:
		return nil, ErrPaymentMethodInvalid
	}
}

// continueWithGateway 网关分支：创建网关订单并返回跳转信息。
// 购物车此时不清空，支付确认后由对账流程清理。
func (s *CheckoutService) continueWithGateway(ctx context.Context, order *models.Order) (*CheckoutResult, error) {
	if s.gateway == nil {
		return nil, ErrPaymentNotConfigured
	}
	gwOrder, err := s.gateway.CreateOrder(ctx, razorpay.CreateOrderRequest{
		Amount:   order.Total.Decimal,
		Currency: order.Currency,
		Receipt:  order.OrderNo,
	})
	if err != nil {
		logger.Errorw("checkout_gateway_order_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"error", err,
		)
		return nil, fmt.Errorf("gateway order: %w", err)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"payment_ref": gwOrder.ID,
		"updated_at":  now,
	}
	if err := s.orderRepo.UpdateStatus(order.ID, order.Status, updates); err != nil {
		logger.Errorw("checkout_payment_ref_store_failed",
			"order_id", order.ID,
			"payment_ref", gwOrder.ID,
			"error", err,
		)
		return nil, err
	}
	order.PaymentRef = gwOrder.ID
	order.UpdatedAt = now

	logger.Infow("checkout_gateway_redirect",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"payment_ref", gwOrder.ID,
	)
	return &CheckoutResult{
		Order:       order,
		OrderNo:     order.OrderNo,
		RedirectURL: gwOrder.RedirectURL,
		PaymentID:   gwOrder.ID,
	}, nil
}

// confirmOffline COD/银行转账分支：订单直接进入 processing，
// 支付状态保持 pending（货到付款/转账到账后人工核销）。
func (s *CheckoutService) confirmOffline(order *models.Order) (*CheckoutResult, error) {
	now := time.Now()
	if !isTransitionAllowed(order.Status, constants.OrderStatusProcessing) {
		return nil, ErrStatusTransition
	}
	updates := map[string]interface{}{
		"updated_at": now,
	}
	if err := s.orderRepo.UpdateStatus(order.ID, constants.OrderStatusProcessing, updates); err != nil {
		logger.Errorw("checkout_offline_confirm_failed", "order_id", order.ID, "error", err)
		return nil, err
	}
	order.Status = constants.OrderStatusProcessing
	order.UpdatedAt = now

	s.dispatchPostCheckoutEffects(order)

	logger.Infow("checkout_offline_confirmed",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"payment_method", order.PaymentMethod,
	)
	return &CheckoutResult{Order: order, OrderNo: order.OrderNo}, nil
}

// dispatchPostCheckoutEffects 下单副作用：清购物车 + 确认邮件。
// 优先进队列重试；队列不可用时降级为尽力而为的同步执行，
// 失败仅记录日志，不改变已提交的订单结果。
func (s *CheckoutService) dispatchPostCheckoutEffects(order *models.Order) {
	if s.queueClient != nil && s.queueClient.Enabled() {
		if err := s.queueClient.EnqueueOrderCartClear(queue.OrderCartClearPayload{
			OrderID:   order.ID,
			SessionID: order.SessionID,
			UserID:    order.UserID,
		}); err != nil {
			logger.Warnw("checkout_enqueue_cart_clear_failed", "order_id", order.ID, "error", err)
			s.clearCartInline(order)
		}
		if err := s.queueClient.EnqueueOrderEmail(queue.OrderEmailPayload{OrderID: order.ID}); err != nil {
			logger.Warnw("checkout_enqueue_email_failed", "order_id", order.ID, "error", err)
			s.sendConfirmationInline(order)
		}
		return
	}
	s.clearCartInline(order)
	s.sendConfirmationInline(order)
}

func (s *CheckoutService) clearCartInline(order *models.Order) {
	owner := repository.CartOwner{SessionID: order.SessionID, UserID: order.UserID}
	if err := s.cartRepo.ClearByOwner(owner); err != nil {
		logger.Warnw("checkout_cart_clear_failed",
			"order_id", order.ID,
			"session_id", order.SessionID,
			"user_id", order.UserID,
			"error", err,
		)
	}
}

func (s *CheckoutService) sendConfirmationInline(order *models.Order) {
	if s.emailService == nil {
		return
	}
	if err := s.emailService.SendOrderConfirmation(order); err != nil {
		logger.Warnw("checkout_confirmation_email_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"error", err,
		)
	}
}

func validateCheckoutInput(input *CheckoutInput) error {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Phone = strings.TrimSpace(input.Phone)
	input.ShippingAddress = strings.TrimSpace(input.ShippingAddress)
	input.ShippingCity = strings.TrimSpace(input.ShippingCity)
	input.ShippingState = strings.TrimSpace(input.ShippingState)
	input.ShippingZip = strings.TrimSpace(input.ShippingZip)
	input.ShippingCountry = strings.TrimSpace(input.ShippingCountry)
	input.PaymentMethod = strings.ToLower(strings.TrimSpace(input.PaymentMethod))
	input.Notes = strings.TrimSpace(input.Notes)

	if input.Owner.UserID == 0 && input.Owner.SessionID == "" {
		return ErrInvalidInput
	}
	if input.Email == "" || input.Phone == "" || input.ShippingAddress == "" ||
		input.ShippingCity == "" || input.ShippingState == "" || input.ShippingZip == "" {
		return ErrInvalidInput
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return ErrInvalidInput
	}
	if input.ShippingCountry == "" {
		input.ShippingCountry = constants.ShipmentCountryDefault
	}
	switch input.PaymentMethod {
	case constants.PaymentMethodRazorpay, constants.PaymentMethodCOD, constants.PaymentMethodBankTransfer:
	default:
		return ErrPaymentMethodInvalid
	}
	return nil
}

// generateUniqueOrderNo 生成订单编号并校验占用，冲突时重试
func (s *CheckoutService) generateUniqueOrderNo() (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		orderNo := generateOrderNo()
		count, err := s.orderRepo.CountByOrderNo(orderNo)
		if err != nil {
			return "", err
		}
		if count == 0 {
			return orderNo, nil
		}
	}
	return "", fmt.Errorf("order number space exhausted")
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("NX%s%s", now, randNumeric(8))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}
