package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/nexacart/internal/constants"
	"github.com/nexacart/internal/models"
	"github.com/nexacart/internal/payment/razorpay"
	"github.com/nexacart/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakePaymentGateway struct {
	calls   int
	lastReq razorpay.CreateOrderRequest
	order   *razorpay.GatewayOrder
	err     error
}

func (f *fakePaymentGateway) CreateOrder(_ context.Context, req razorpay.CreateOrderRequest) (*razorpay.GatewayOrder, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.order, nil
}

func newCheckoutServiceForTest(db *gorm.DB, gateway PaymentGateway) *CheckoutService {
	return NewCheckoutService(
		repository.NewOrderRepository(db),
		repository.NewCartRepository(db),
		repository.NewProductRepository(db),
		NewSettingService(repository.NewSettingRepository(db)),
		nil,
		nil,
		gateway,
	)
}

func validCheckoutInput(owner repository.CartOwner, method string) CheckoutInput {
	return CheckoutInput{
		Owner:           owner,
		Email:           "buyer@example.com",
		Phone:           "+919876543210",
		ShippingAddress: "14 MG Road, Indiranagar",
		ShippingCity:    "Bengaluru",
		ShippingState:   "Karnataka",
		ShippingZip:     "560038",
		PaymentMethod:   method,
	}
}

func TestCheckoutCODConfirmsOrderAndClearsCart(t *testing.T) {
	db := setupTestDB(t, "checkout_cod")
	seedCheckoutConfig(t, db)

	product := seedTestProduct(t, db, &models.Product{
		Slug:        "wireless-earbuds-pro",
		Name:        "Wireless Earbuds Pro",
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(1200)),
		IsActive:    true,
	})
	owner := repository.CartOwner{SessionID: "sess-cod"}
	seedTestCartItem(t, db, &models.CartItem{
		SessionID: owner.SessionID,
		ProductID: product.ID,
		Quantity:  1,
	})

	svc := newCheckoutServiceForTest(db, nil)
	result, err := svc.Checkout(context.Background(), validCheckoutInput(owner, constants.PaymentMethodCOD))
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	order := result.Order
	if order.Status != constants.OrderStatusProcessing {
		t.Fatalf("cod order status want processing got %s", order.Status)
	}
	if order.PaymentStatus != constants.PaymentStatusPending {
		t.Fatalf("cod payment status want pending got %s", order.PaymentStatus)
	}
	if order.Subtotal.String() != "1200.00" || order.Tax.String() != "60.00" ||
		order.Shipping.String() != "0.00" || order.Total.String() != "1260.00" {
		t.Fatalf("unexpected totals: subtotal=%s tax=%s shipping=%s total=%s",
			order.Subtotal, order.Tax, order.Shipping, order.Total)
	}
	if result.RedirectURL != "" {
		t.Fatalf("cod checkout should not produce a redirect, got %s", result.RedirectURL)
	}

	// 订单与订单项已持久化
	stored, err := repository.NewOrderRepository(db).GetByOrderNo(result.OrderNo)
	if err != nil || stored == nil {
		t.Fatalf("stored order fetch failed: order=%v err=%v", stored, err)
	}
	if len(stored.Items) != 1 {
		t.Fatalf("stored order items want 1 got %d", len(stored.Items))
	}
	if stored.Items[0].ProductName != product.Name {
		t.Fatalf("order item name want %s got %s", product.Name, stored.Items[0].ProductName)
	}
	if stored.TransactionID == "" {
		t.Fatalf("order should carry an internal transaction id")
	}

	// 购物车已清空
	items, err := repository.NewCartRepository(db).ListByOwner(owner)
	if err != nil {
		t.Fatalf("list cart failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("cart should be cleared after cod checkout, got %d items", len(items))
	}
}

func TestCheckoutGatewayStoresPaymentRefAndKeepsCart(t *testing.T) {
	db := setupTestDB(t, "checkout_gateway")
	seedCheckoutConfig(t, db)

	product := seedTestProduct(t, db, &models.Product{
		Slug:        "smart-fitness-band",
		Name:        "Smart Fitness Band",
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(1799)),
		IsActive:    true,
	})
	owner := repository.CartOwner{SessionID: "sess-gw"}
	seedTestCartItem(t, db, &models.CartItem{
		SessionID: owner.SessionID,
		ProductID: product.ID,
		Quantity:  1,
	})

	gateway := &fakePaymentGateway{order: &razorpay.GatewayOrder{
		ID:          "order_NXFAKE123",
		RedirectURL: "https://checkout.example.com/?order_id=order_NXFAKE123",
	}}
	svc := newCheckoutServiceForTest(db, gateway)

	result, err := svc.Checkout(context.Background(), validCheckoutInput(owner, constants.PaymentMethodRazorpay))
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if gateway.calls != 1 {
		t.Fatalf("gateway CreateOrder calls want 1 got %d", gateway.calls)
	}
	if gateway.lastReq.Receipt != result.OrderNo {
		t.Fatalf("gateway receipt want %s got %s", result.OrderNo, gateway.lastReq.Receipt)
	}
	if !gateway.lastReq.Amount.Equal(result.Order.Total.Decimal) {
		t.Fatalf("gateway amount want %s got %s", result.Order.Total, gateway.lastReq.Amount)
	}
	if result.RedirectURL == "" || result.PaymentID != "order_NXFAKE123" {
		t.Fatalf("gateway checkout should return redirect info, got url=%q payment_id=%q",
			result.RedirectURL, result.PaymentID)
	}

	// 订单停留在 pending，网关引用已写库
	stored, err := repository.NewOrderRepository(db).GetByPaymentRef("order_NXFAKE123")
	if err != nil || stored == nil {
		t.Fatalf("stored order fetch by payment_ref failed: order=%v err=%v", stored, err)
	}
	if stored.Status != constants.OrderStatusPending || stored.PaymentStatus != constants.PaymentStatusPending {
		t.Fatalf("gateway order should stay pending/pending, got %s/%s", stored.Status, stored.PaymentStatus)
	}

	// 支付确认前购物车保留
	items, err := repository.NewCartRepository(db).ListByOwner(owner)
	if err != nil {
		t.Fatalf("list cart failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("cart should survive until payment confirmation, got %d items", len(items))
	}
}

func TestCheckoutGatewayNotConfigured(t *testing.T) {
	db := setupTestDB(t, "checkout_gateway_missing")
	seedCheckoutConfig(t, db)

	product := seedTestProduct(t, db, &models.Product{
		Slug:        "steel-bottle",
		Name:        "Steel Bottle",
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(899)),
		IsActive:    true,
	})
	owner := repository.CartOwner{SessionID: "sess-nogw"}
	seedTestCartItem(t, db, &models.CartItem{SessionID: owner.SessionID, ProductID: product.ID, Quantity: 1})

	svc := newCheckoutServiceForTest(db, nil)
	_, err := svc.Checkout(context.Background(), validCheckoutInput(owner, constants.PaymentMethodRazorpay))
	if !errors.Is(err, ErrPaymentNotConfigured) {
		t.Fatalf("expected ErrPaymentNotConfigured, got %v", err)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	db := setupTestDB(t, "checkout_empty_cart")
	seedCheckoutConfig(t, db)

	svc := newCheckoutServiceForTest(db, nil)
	_, err := svc.Checkout(context.Background(), validCheckoutInput(repository.CartOwner{SessionID: "sess-empty"}, constants.PaymentMethodCOD))
	if !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}
}

func TestCheckoutInvalidPaymentMethod(t *testing.T) {
	db := setupTestDB(t, "checkout_bad_method")
	svc := newCheckoutServiceForTest(db, nil)
	_, err := svc.Checkout(context.Background(), validCheckoutInput(repository.CartOwner{SessionID: "sess-bad"}, "upi_qr"))
	if !errors.Is(err, ErrPaymentMethodInvalid) {
		t.Fatalf("expected ErrPaymentMethodInvalid, got %v", err)
	}
}

func TestBuildCartSnapshotVariantPriceOverride(t *testing.T) {
	db := setupTestDB(t, "checkout_variant_override")

	product := seedTestProduct(t, db, &models.Product{
		Slug:        "earbuds-variant",
		Name:        "Earbuds",
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(2499)),
		VariantsJSON: models.JSON{
			"White":  "2599",
			"Broken": "not-a-price",
		},
		IsActive: true,
	})
	owner := repository.CartOwner{SessionID: "sess-variant"}
	seedTestCartItem(t, db, &models.CartItem{
		SessionID:    owner.SessionID,
		ProductID:    product.ID,
		VariantLabel: "White",
		Quantity:     2,
	})
	seedTestCartItem(t, db, &models.CartItem{
		SessionID:    owner.SessionID,
		ProductID:    product.ID,
		VariantLabel: "Broken",
		Quantity:     1,
	})

	svc := newCheckoutServiceForTest(db, nil)
	drafts, err := svc.BuildCartSnapshot(owner)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("drafts want 2 got %d", len(drafts))
	}
	if drafts[0].UnitPrice.String() != "2599.00" {
		t.Fatalf("variant override price want 2599.00 got %s", drafts[0].UnitPrice)
	}
	if drafts[0].Subtotal.String() != "5198.00" {
		t.Fatalf("variant line subtotal want 5198.00 got %s", drafts[0].Subtotal)
	}
	// 无法解析的覆盖价回落到基础售价
	if drafts[1].UnitPrice.String() != "2499.00" {
		t.Fatalf("invalid override should fall back to base price, got %s", drafts[1].UnitPrice)
	}
}

func TestValidateCheckoutInput(t *testing.T) {
	base := func() CheckoutInput {
		return validCheckoutInput(repository.CartOwner{SessionID: "sess-1"}, constants.PaymentMethodCOD)
	}

	tests := []struct {
		name    string
		mutate  func(*CheckoutInput)
		wantErr error
	}{
		{"valid", func(in *CheckoutInput) {}, nil},
		{"missing_owner", func(in *CheckoutInput) { in.Owner = repository.CartOwner{} }, ErrInvalidInput},
		{"missing_email", func(in *CheckoutInput) { in.Email = "  " }, ErrInvalidInput},
		{"malformed_email", func(in *CheckoutInput) { in.Email = "not-an-email" }, ErrInvalidInput},
		{"missing_phone", func(in *CheckoutInput) { in.Phone = "" }, ErrInvalidInput},
		{"missing_address", func(in *CheckoutInput) { in.ShippingAddress = "" }, ErrInvalidInput},
		{"missing_city", func(in *CheckoutInput) { in.ShippingCity = "" }, ErrInvalidInput},
		{"missing_zip", func(in *CheckoutInput) { in.ShippingZip = "" }, ErrInvalidInput},
		{"unknown_method", func(in *CheckoutInput) { in.PaymentMethod = "crypto" }, ErrPaymentMethodInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := base()
			tt.mutate(&input)
			err := validateCheckoutInput(&input)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v got %v", tt.wantErr, err)
			}
		})
	}

	t.Run("normalizes_fields_and_defaults_country", func(t *testing.T) {
		input := base()
		input.Email = "  Buyer@Example.COM "
		input.PaymentMethod = " COD "
		input.ShippingCountry = ""
		if err := validateCheckoutInput(&input); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if input.Email != "buyer@example.com" {
			t.Fatalf("email should be lowercased, got %s", input.Email)
		}
		if input.PaymentMethod != constants.PaymentMethodCOD {
			t.Fatalf("payment method should be normalized, got %s", input.PaymentMethod)
		}
		if input.ShippingCountry != constants.ShipmentCountryDefault {
			t.Fatalf("country should default to %s, got %s", constants.ShipmentCountryDefault, input.ShippingCountry)
		}
	})
}

func TestGenerateOrderNoFormat(t *testing.T) {
	orderNo := generateOrderNo()
	if !strings.HasPrefix(orderNo, "NX") {
		t.Fatalf("order no should carry NX prefix, got %s", orderNo)
	}
	// NX + 14 位时间戳 + 8 位随机数字
	if len(orderNo) != 24 {
		t.Fatalf("order no length want 24 got %d (%s)", len(orderNo), orderNo)
	}
	for _, r := range orderNo[2:] {
		if r < '0' || r > '9' {
			t.Fatalf("order no suffix should be numeric, got %s", orderNo)
		}
	}
}

func TestOrderItemsSnapshotSurvivesProductChanges(t *testing.T) {
	db := setupTestDB(t, "checkout_snapshot_immutable")
	seedCheckoutConfig(t, db)

	product := seedTestProduct(t, db, &models.Product{
		Slug:        "steel-bottle",
		Name:        "Steel Bottle 1L",
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(650)),
		IsActive:    true,
	})
	owner := repository.CartOwner{SessionID: "sess-snapshot"}
	seedTestCartItem(t, db, &models.CartItem{
		SessionID: owner.SessionID,
		ProductID: product.ID,
		Quantity:  2,
	})

	svc := newCheckoutServiceForTest(db, nil)
	result, err := svc.Checkout(context.Background(), validCheckoutInput(owner, constants.PaymentMethodCOD))
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	// 下单后改价、改名再删除商品，订单项快照不受影响
	product.Name = "Steel Bottle 1L (v2)"
	product.PriceAmount = models.NewMoneyFromDecimal(decimal.NewFromInt(999))
	if err := db.Save(product).Error; err != nil {
		t.Fatalf("update product failed: %v", err)
	}
	if err := db.Delete(&models.Product{}, product.ID).Error; err != nil {
		t.Fatalf("delete product failed: %v", err)
	}

	stored, err := repository.NewOrderRepository(db).GetByOrderNo(result.OrderNo)
	if err != nil || stored == nil {
		t.Fatalf("stored order fetch failed: order=%v err=%v", stored, err)
	}
	if len(stored.Items) != 1 {
		t.Fatalf("stored order items want 1 got %d", len(stored.Items))
	}
	item := stored.Items[0]
	if item.ProductName != "Steel Bottle 1L" {
		t.Fatalf("snapshot name should be frozen, got %s", item.ProductName)
	}
	if item.UnitPrice.String() != "650.00" || item.Subtotal.String() != "1300.00" {
		t.Fatalf("snapshot price should be frozen, got unit=%s subtotal=%s", item.UnitPrice, item.Subtotal)
	}
}

func TestGenerateOrderNoConcurrentUniqueness(t *testing.T) {
	const workers = 8
	const perWorker = 25

	var mu sync.Mutex
	seen := make(map[string]struct{}, workers*perWorker)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				orderNo := generateOrderNo()
				mu.Lock()
				seen[orderNo] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Fatalf("order numbers should be unique, got %d distinct out of %d", len(seen), workers*perWorker)
	}
}
