package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nexacart/internal/constants"
	"github.com/nexacart/internal/models"
	"github.com/nexacart/internal/shipping/shiprocket"

	"github.com/shopspring/decimal"
)

type fakeShipmentOrderRepo struct {
	order       *models.Order
	getErr      error
	updateErr   error
	lastStatus  string
	lastUpdates map[string]interface{}
	updateCalls int
}

func (f *fakeShipmentOrderRepo) GetByID(id uint) (*models.Order, error) {
	return f.order, f.getErr
}

func (f *fakeShipmentOrderRepo) UpdateStatus(id uint, status string, updates map[string]interface{}) error {
	f.updateCalls++
	f.lastStatus = status
	f.lastUpdates = updates
	return f.updateErr
}

type fakeCourier struct {
	createResult *shiprocket.CreateShipmentResult
	createErr    error
	awbCode      string
	courierName  string
	assignErr    error
	tracking     *shiprocket.TrackingResult
	trackErr     error

	lastRequest shiprocket.CreateShipmentRequest
	createCalls int
	assignCalls int
}

func (f *fakeCourier) CreateShipment(_ context.Context, req shiprocket.CreateShipmentRequest) (*shiprocket.CreateShipmentResult, error) {
	f.createCalls++
	f.lastRequest = req
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createResult, nil
}

func (f *fakeCourier) AssignAWB(_ context.Context, shipmentID int64) (string, string, error) {
	f.assignCalls++
	if f.assignErr != nil {
		return "", "", f.assignErr
	}
	return f.awbCode, f.courierName, nil
}

func (f *fakeCourier) Track(_ context.Context, awbCode string) (*shiprocket.TrackingResult, error) {
	if f.trackErr != nil {
		return nil, f.trackErr
	}
	return f.tracking, nil
}

func processingOrderForDispatch() *models.Order {
	return &models.Order{
		ID:            7,
		OrderNo:       "NX202608290002000001",
		Email:         "buyer@example.com",
		Phone:         "+919876543210",
		Status:        constants.OrderStatusProcessing,
		PaymentStatus: constants.PaymentStatusCompleted,
		PaymentMethod: constants.PaymentMethodRazorpay,
		Currency:      "INR",
		Total:         models.NewMoneyFromDecimal(decimal.NewFromInt(1260)),
		ShippingAddr:  "14 MG Road, Indiranagar",
		ShippingCity:  "Bengaluru",
		ShippingState: "Karnataka",
		ShippingZip:   "560038",
		ShippingCtry:  "India",
		CreatedAt:     time.Now(),
		Items: []models.OrderItem{
			{ProductID: 3, ProductName: "Wireless Earbuds Pro", UnitPrice: money("1200"), Quantity: 1, Subtotal: money("1200")},
		},
	}
}

func TestDispatchAssignsAWBFromCreate(t *testing.T) {
	repo := &fakeShipmentOrderRepo{order: processingOrderForDispatch()}
	courier := &fakeCourier{createResult: &shiprocket.CreateShipmentResult{
		ShipmentID:  90001,
		AWBCode:     "AWB0001",
		CourierName: "Delhivery",
	}}
	svc := NewShipmentService(repo, courier, nil, nil)

	order, err := svc.Dispatch(context.Background(), 7)
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if courier.assignCalls != 0 {
		t.Fatalf("awb already present, AssignAWB should not be called")
	}
	if order.TrackingID != "AWB0001" || order.CourierName != "Delhivery" {
		t.Fatalf("unexpected tracking info: %s/%s", order.TrackingID, order.CourierName)
	}
	if order.ShipmentID != "90001" {
		t.Fatalf("shipment id want 90001 got %s", order.ShipmentID)
	}
	if order.ShippedAt == nil {
		t.Fatalf("shipped_at should be set")
	}
	// 发货不改变订单状态
	if repo.lastStatus != constants.OrderStatusProcessing {
		t.Fatalf("dispatch should persist status %s, got %s", constants.OrderStatusProcessing, repo.lastStatus)
	}
	if repo.lastUpdates["tracking_id"] != "AWB0001" {
		t.Fatalf("tracking_id should be persisted, got %v", repo.lastUpdates["tracking_id"])
	}

	req := courier.lastRequest
	if req.OrderNo != order.OrderNo || req.City != "Bengaluru" || req.Pincode != "560038" {
		t.Fatalf("unexpected shipment request: %+v", req)
	}
	if req.PaymentMethod != "Prepaid" {
		t.Fatalf("razorpay order should ship as Prepaid, got %s", req.PaymentMethod)
	}
	if len(req.Items) != 1 || req.Items[0].Units != 1 {
		t.Fatalf("unexpected shipment items: %+v", req.Items)
	}
}

func TestDispatchFallsBackToAssignAWB(t *testing.T) {
	repo := &fakeShipmentOrderRepo{order: processingOrderForDispatch()}
	courier := &fakeCourier{
		createResult: &shiprocket.CreateShipmentResult{ShipmentID: 90002},
		awbCode:      "AWB0002",
		courierName:  "Bluedart",
	}
	svc := NewShipmentService(repo, courier, nil, nil)

	order, err := svc.Dispatch(context.Background(), 7)
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if courier.assignCalls != 1 {
		t.Fatalf("AssignAWB calls want 1 got %d", courier.assignCalls)
	}
	if order.TrackingID != "AWB0002" || order.CourierName != "Bluedart" {
		t.Fatalf("unexpected tracking info: %s/%s", order.TrackingID, order.CourierName)
	}
}

func TestDispatchCODOrderShipsAsCOD(t *testing.T) {
	order := processingOrderForDispatch()
	order.PaymentMethod = constants.PaymentMethodCOD
	repo := &fakeShipmentOrderRepo{order: order}
	courier := &fakeCourier{createResult: &shiprocket.CreateShipmentResult{ShipmentID: 90003, AWBCode: "AWB0003", CourierName: "Delhivery"}}
	svc := NewShipmentService(repo, courier, nil, nil)

	if _, err := svc.Dispatch(context.Background(), 7); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if courier.lastRequest.PaymentMethod != "COD" {
		t.Fatalf("cod order should ship as COD, got %s", courier.lastRequest.PaymentMethod)
	}
}

func TestDispatchIdempotentWhenAlreadyShipped(t *testing.T) {
	order := processingOrderForDispatch()
	order.TrackingID = "AWB-EXISTING"
	repo := &fakeShipmentOrderRepo{order: order}
	courier := &fakeCourier{}
	svc := NewShipmentService(repo, courier, nil, nil)

	got, err := svc.Dispatch(context.Background(), 7)
	if err != nil {
		t.Fatalf("repeat dispatch should succeed, got %v", err)
	}
	if got.TrackingID != "AWB-EXISTING" {
		t.Fatalf("existing tracking id should be returned, got %s", got.TrackingID)
	}
	if courier.createCalls != 0 {
		t.Fatalf("no new shipment should be created, got %d calls", courier.createCalls)
	}
	if repo.updateCalls != 0 {
		t.Fatalf("no update should happen, got %d calls", repo.updateCalls)
	}
}

func TestDispatchRejectsWrongStatus(t *testing.T) {
	for _, status := range []string{
		constants.OrderStatusPending,
		constants.OrderStatusCancelled,
		constants.OrderStatusFailed,
	} {
		order := processingOrderForDispatch()
		order.Status = status
		svc := NewShipmentService(&fakeShipmentOrderRepo{order: order}, &fakeCourier{}, nil, nil)
		if _, err := svc.Dispatch(context.Background(), 7); !errors.Is(err, ErrStatusTransition) {
			t.Fatalf("dispatch from %s should be rejected, got %v", status, err)
		}
	}
}

func TestDispatchRejectsOrderWithoutItems(t *testing.T) {
	order := processingOrderForDispatch()
	order.Items = nil
	svc := NewShipmentService(&fakeShipmentOrderRepo{order: order}, &fakeCourier{}, nil, nil)
	if _, err := svc.Dispatch(context.Background(), 7); !errors.Is(err, ErrOrderHasNoItems) {
		t.Fatalf("expected ErrOrderHasNoItems, got %v", err)
	}
}

func TestDispatchCourierNotConfigured(t *testing.T) {
	svc := NewShipmentService(&fakeShipmentOrderRepo{order: processingOrderForDispatch()}, nil, nil, nil)
	if _, err := svc.Dispatch(context.Background(), 7); !errors.Is(err, ErrCourierNotConfigured) {
		t.Fatalf("expected ErrCourierNotConfigured, got %v", err)
	}
}

func TestTrackRequiresTrackingID(t *testing.T) {
	order := processingOrderForDispatch()
	svc := NewShipmentService(&fakeShipmentOrderRepo{order: order}, &fakeCourier{}, nil, nil)
	if _, err := svc.Track(context.Background(), 7); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("track without awb should fail, got %v", err)
	}

	order.TrackingID = "AWB0009"
	courier := &fakeCourier{tracking: &shiprocket.TrackingResult{AWBCode: "AWB0009", CurrentStatus: "In Transit"}}
	svc = NewShipmentService(&fakeShipmentOrderRepo{order: order}, courier, nil, nil)
	result, err := svc.Track(context.Background(), 7)
	if err != nil {
		t.Fatalf("track failed: %v", err)
	}
	if result.CurrentStatus != "In Transit" {
		t.Fatalf("unexpected tracking status: %s", result.CurrentStatus)
	}
}

func TestParseFreeformAddress(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantLine    string
		wantCity    string
		wantState   string
		wantPincode string
	}{
		{
			name:        "full_address_with_pincode",
			raw:         "14 MG Road, Indiranagar, Bengaluru, Karnataka 560038",
			wantLine:    "14 MG Road, Indiranagar",
			wantCity:    "Bengaluru",
			wantState:   "Karnataka",
			wantPincode: "560038",
		},
		{
			name:        "two_segments",
			raw:         "221B Baker Street, Pune - 411001",
			wantLine:    "221B Baker Street",
			wantCity:    "Pune",
			wantState:   constants.ShipmentFallbackState,
			wantPincode: "411001",
		},
		{
			name:        "single_segment_no_pincode",
			raw:         "Plot 5 Industrial Estate",
			wantLine:    "Plot 5 Industrial Estate",
			wantCity:    constants.ShipmentFallbackCity,
			wantState:   constants.ShipmentFallbackState,
			wantPincode: constants.ShipmentFallbackPincode,
		},
		{
			name:        "empty_falls_back_entirely",
			raw:         "  ",
			wantLine:    "",
			wantCity:    constants.ShipmentFallbackCity,
			wantState:   constants.ShipmentFallbackState,
			wantPincode: constants.ShipmentFallbackPincode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFreeformAddress(tt.raw)
			if got.Line != tt.wantLine {
				t.Fatalf("line want %q got %q", tt.wantLine, got.Line)
			}
			if got.City != tt.wantCity {
				t.Fatalf("city want %q got %q", tt.wantCity, got.City)
			}
			if got.State != tt.wantState {
				t.Fatalf("state want %q got %q", tt.wantState, got.State)
			}
			if got.Pincode != tt.wantPincode {
				t.Fatalf("pincode want %q got %q", tt.wantPincode, got.Pincode)
			}
		})
	}
}

func TestResolveShipmentAddressPrefersStructuredFields(t *testing.T) {
	order := processingOrderForDispatch()
	address := resolveShipmentAddress(order)
	if address.City != "Bengaluru" || address.State != "Karnataka" || address.Pincode != "560038" {
		t.Fatalf("structured fields should win: %+v", address)
	}

	// 历史订单只有整段文本
	order.ShippingCity = ""
	order.ShippingZip = ""
	order.ShippingAddr = "5 Park Street, Kolkata, West Bengal 700016"
	address = resolveShipmentAddress(order)
	if address.City != "Kolkata" || address.State != "West Bengal" || address.Pincode != "700016" {
		t.Fatalf("freeform fallback should parse trailing fields: %+v", address)
	}
	if address.Country != constants.ShipmentCountryDefault {
		t.Fatalf("country should default to %s, got %s", constants.ShipmentCountryDefault, address.Country)
	}
}

func TestCustomerNameFromEmail(t *testing.T) {
	if got := customerNameFromEmail("buyer@example.com"); got != "buyer" {
		t.Fatalf("want buyer got %s", got)
	}
	if got := customerNameFromEmail("no-at-sign"); got != "no-at-sign" {
		t.Fatalf("want no-at-sign got %s", got)
	}
	if got := customerNameFromEmail(""); got != "Customer" {
		t.Fatalf("want Customer got %s", got)
	}
}
