package service

import (
	"fmt"
	"testing"

	"github.com/nexacart/internal/constants"
	"github.com/nexacart/internal/models"
	"github.com/nexacart/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB 为单个测试打开独立的共享内存库并接管全局连接，
// 测试结束后还原。name 需要全局唯一，避免用例之间串库。
func setupTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
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

// seedCheckoutConfig 写入测试结算参数：税率 5%，运费 49，满 999 免运费
func seedCheckoutConfig(t *testing.T, db *gorm.DB) {
	t.Helper()
	if _, err := repository.NewSettingRepository(db).Upsert(constants.SettingKeyCheckoutConfig, models.JSON{
		constants.SettingFieldTaxRate:               "5",
		constants.SettingFieldShippingRate:          "49",
		constants.SettingFieldFreeShippingThreshold: "999",
	}); err != nil {
		t.Fatalf("seed checkout config failed: %v", err)
	}
}

func seedTestProduct(t *testing.T, db *gorm.DB, product *models.Product) *models.Product {
	t.Helper()
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product failed: %v", err)
	}
	return product
}

func seedTestCartItem(t *testing.T, db *gorm.DB, item *models.CartItem) *models.CartItem {
	t.Helper()
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("seed cart item failed: %v", err)
	}
	return item
}
