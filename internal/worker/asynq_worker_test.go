package worker

import (
	"context"
	"fmt"
	"testing"

	"github.com/nexacart/internal/config"
	"github.com/nexacart/internal/models"
	"github.com/nexacart/internal/provider"
	"github.com/nexacart/internal/queue"
	"github.com/nexacart/internal/repository"
	"github.com/nexacart/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupWorkerDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database failed: %v", err)
	}
	previous := models.DB
	models.DB = db
	t.Cleanup(func() {
		models.DB = previous
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	if err := models.AutoMigrate(); err != nil {
		t.Fatalf("migrate test database failed: %v", err)
	}
	return db
}

func newTestConsumer(db *gorm.DB) *Consumer {
	return NewConsumer(&provider.Container{
		OrderRepo:    repository.NewOrderRepository(db),
		CartRepo:     repository.NewCartRepository(db),
		EmailService: service.NewEmailService(&config.EmailConfig{Enabled: false}),
	})
}

func TestHandleOrderCartClear(t *testing.T) {
	db := setupWorkerDB(t, "cart_clear")
	consumer := newTestConsumer(db)

	product := &models.Product{Slug: "p1", Name: "Product", IsActive: true}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product failed: %v", err)
	}
	if err := db.Create(&models.CartItem{SessionID: "sess-w1", ProductID: product.ID, Quantity: 2}).Error; err != nil {
		t.Fatalf("seed cart item failed: %v", err)
	}

	task, err := queue.NewOrderCartClearTask(queue.OrderCartClearPayload{OrderID: 1, SessionID: "sess-w1"})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleOrderCartClear(context.Background(), task); err != nil {
		t.Fatalf("cart clear failed: %v", err)
	}

	items, err := repository.NewCartRepository(db).ListByOwner(repository.CartOwner{SessionID: "sess-w1"})
	if err != nil {
		t.Fatalf("list cart failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("cart should be cleared, got %d items", len(items))
	}

	// 重复投递幂等
	if err := consumer.handleOrderCartClear(context.Background(), task); err != nil {
		t.Fatalf("repeated cart clear should be a no-op, got %v", err)
	}
}

func TestHandleOrderCartClearSkipsEmptyOwner(t *testing.T) {
	db := setupWorkerDB(t, "cart_clear_empty")
	consumer := newTestConsumer(db)

	task, err := queue.NewOrderCartClearTask(queue.OrderCartClearPayload{OrderID: 1})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleOrderCartClear(context.Background(), task); err != nil {
		t.Fatalf("empty owner should be skipped, got %v", err)
	}
}

func TestHandleOrderCartClearMalformedPayload(t *testing.T) {
	db := setupWorkerDB(t, "cart_clear_bad_payload")
	consumer := newTestConsumer(db)

	task := asynq.NewTask(queue.TaskOrderCartClear, []byte("{not json"))
	if err := consumer.handleOrderCartClear(context.Background(), task); err == nil {
		t.Fatalf("malformed payload should fail the task")
	}
}

func TestHandleOrderEmailSkipSemantics(t *testing.T) {
	db := setupWorkerDB(t, "order_email")
	consumer := newTestConsumer(db)

	order := &models.Order{
		OrderNo:       "NXW0001",
		Email:         "buyer@example.com",
		Phone:         "+919876543210",
		Status:        "processing",
		PaymentStatus: "completed",
		PaymentMethod: "cod",
		TransactionID: "txn-w-1",
		Currency:      "INR",
		ShippingAddr:  "14 MG Road",
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order failed: %v", err)
	}

	// 邮件服务未启用时吞掉错误，不触发无意义的重试
	task, err := queue.NewOrderEmailTask(queue.OrderEmailPayload{OrderID: order.ID})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleOrderEmail(context.Background(), task); err != nil {
		t.Fatalf("disabled email service should not fail the task, got %v", err)
	}

	// 订单不存在同样跳过
	missing, err := queue.NewOrderEmailTask(queue.OrderEmailPayload{OrderID: 9999})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleOrderEmail(context.Background(), missing); err != nil {
		t.Fatalf("missing order should be skipped, got %v", err)
	}

	// 无效负载跳过
	zero, err := queue.NewOrderEmailTask(queue.OrderEmailPayload{})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleOrderEmail(context.Background(), zero); err != nil {
		t.Fatalf("zero order id should be skipped, got %v", err)
	}
}

func TestHandleShipmentEmailSkipsUnshippedOrder(t *testing.T) {
	db := setupWorkerDB(t, "shipment_email")
	consumer := newTestConsumer(db)

	order := &models.Order{
		OrderNo:       "NXW0002",
		Email:         "buyer@example.com",
		Phone:         "+919876543210",
		Status:        "processing",
		PaymentStatus: "completed",
		PaymentMethod: "razorpay",
		TransactionID: "txn-w-2",
		Currency:      "INR",
		ShippingAddr:  "14 MG Road",
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order failed: %v", err)
	}

	task, err := queue.NewShipmentEmailTask(queue.ShipmentEmailPayload{OrderID: order.ID})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleShipmentEmail(context.Background(), task); err != nil {
		t.Fatalf("order without tracking id should be skipped, got %v", err)
	}
}
