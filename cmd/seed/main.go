package main

import (
	"fmt"

	"github.com/nexacart/internal/config"
	"github.com/nexacart/internal/constants"
	"github.com/nexacart/internal/logger"
	"github.com/nexacart/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加分类
	categories := []models.Category{
		{Slug: "electronics", Name: "Electronics", SortOrder: 300},
		{Slug: "home-kitchen", Name: "Home & Kitchen", SortOrder: 200},
		{Slug: "fashion", Name: "Fashion", SortOrder: 100},
	}

	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&cat).Error; err != nil {
				stdLog.Printf("Failed to create category %s: %v", cat.Slug, err)
			} else {
				stdLog.Printf("Created category: %s", cat.Slug)
			}
		} else {
			stdLog.Printf("Category already exists: %s", cat.Slug)
		}
	}

	categoryIDs := map[string]uint{}
	var categoryList []models.Category
	if err := models.DB.Where("slug IN ?", []string{"electronics", "home-kitchen", "fashion"}).Find(&categoryList).Error; err != nil {
		stdLog.Printf("Failed to load categories: %v", err)
	}
	for _, cat := range categoryList {
		categoryIDs[cat.Slug] = cat.ID
	}
	electronicsID := categoryIDs["electronics"]
	homeKitchenID := categoryIDs["home-kitchen"]
	fashionID := categoryIDs["fashion"]

	// 添加商品
	products := []models.Product{
		{
			Slug:        "wireless-earbuds-pro",
			Name:        "Wireless Earbuds Pro",
			Description: "Bluetooth 5.3, active noise cancellation, 30-hour battery with charging case.",
			SKU:         "NXC-EB-001",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(2499)),
			VariantsJSON: models.JSON(map[string]interface{}{
				"Black": "2499",
				"White": "2599",
			}),
			CategoryID: electronicsID,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1590658268037-6bf12165a8df?w=800",
			}),
			Tags:          models.StringArray([]string{"audio", "wireless"}),
			StockQuantity: 120,
			WeightGrams:   180,
			IsActive:      true,
			SortOrder:     300,
		},
		{
			Slug:        "smart-fitness-band",
			Name:        "Smart Fitness Band",
			Description: "Heart rate and SpO2 monitoring, 14-day battery, 5ATM water resistance.",
			SKU:         "NXC-FB-002",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(1799)),
			CategoryID:  electronicsID,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1579586337278-3befd40fd17a?w=800",
			}),
			Tags:          models.StringArray([]string{"wearable", "fitness"}),
			StockQuantity: 80,
			WeightGrams:   60,
			IsActive:      true,
			SortOrder:     280,
		},
		{
			Slug:        "stainless-steel-bottle",
			Name:        "Stainless Steel Bottle 1L",
			Description: "Double-wall vacuum insulated, keeps drinks hot for 12 hours and cold for 24.",
			SKU:         "NXC-HK-003",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(899)),
			VariantsJSON: models.JSON(map[string]interface{}{
				"500ml": "699",
				"1L":    "899",
			}),
			CategoryID: homeKitchenID,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1602143407151-7111542de6e8?w=800",
			}),
			Tags:          models.StringArray([]string{"kitchen", "bottle"}),
			StockQuantity: 200,
			WeightGrams:   450,
			IsActive:      true,
			SortOrder:     260,
		},
		{
			Slug:        "cotton-crew-tshirt",
			Name:        "Cotton Crew Neck T-Shirt",
			Description: "100% combed cotton, pre-shrunk, regular fit.",
			SKU:         "NXC-FS-004",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(599)),
			VariantsJSON: models.JSON(map[string]interface{}{
				"S": "599",
				"M": "599",
				"L": "649",
			}),
			CategoryID: fashionID,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=800",
			}),
			Tags:          models.StringArray([]string{"apparel", "cotton"}),
			StockQuantity: 300,
			WeightGrams:   200,
			IsActive:      true,
			SortOrder:     240,
		},
		{
			Slug:          "ceramic-dinner-set",
			Name:          "Ceramic Dinner Set (18 pc)",
			Description:   "Microwave-safe glazed ceramic dinner set for six.",
			SKU:           "NXC-HK-005",
			PriceAmount:   models.NewMoneyFromDecimal(decimal.NewFromInt(3499)),
			CategoryID:    homeKitchenID,
			Images:        models.StringArray([]string{"https://images.unsplash.com/photo-1578991624414-276ef23a534f?w=800"}),
			Tags:          models.StringArray([]string{"kitchen", "dining"}),
			StockQuantity: 0,
			WeightGrams:   6000,
			IsActive:      true,
			SortOrder:     220,
		},
		{
			Slug:          "retired-usb-hub",
			Name:          "USB-C Hub (Retired)",
			Description:   "Discontinued listing kept for order history.",
			SKU:           "NXC-EB-006",
			PriceAmount:   models.NewMoneyFromDecimal(decimal.NewFromInt(1299)),
			CategoryID:    electronicsID,
			Images:        models.StringArray([]string{}),
			Tags:          models.StringArray([]string{"accessory"}),
			StockQuantity: 10,
			WeightGrams:   90,
			IsActive:      false,
			SortOrder:     0,
		},
	}

	for _, prod := range products {
		if prod.CategoryID == 0 {
			stdLog.Printf("Skip product %s: category_id missing", prod.Slug)
			continue
		}
		var existing models.Product
		if err := models.DB.Where("slug = ?", prod.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&prod).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", prod.Slug, err)
			} else {
				stdLog.Printf("Created product: %s", prod.Slug)
			}
		} else {
			existing.Name = prod.Name
			existing.Description = prod.Description
			existing.SKU = prod.SKU
			existing.PriceAmount = prod.PriceAmount
			existing.VariantsJSON = prod.VariantsJSON
			existing.CategoryID = prod.CategoryID
			existing.Images = prod.Images
			existing.Tags = prod.Tags
			existing.StockQuantity = prod.StockQuantity
			existing.WeightGrams = prod.WeightGrams
			existing.IsActive = prod.IsActive
			existing.SortOrder = prod.SortOrder
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update product %s: %v", prod.Slug, err)
			} else {
				stdLog.Printf("Updated product: %s", prod.Slug)
			}
		}
	}

	// 写入结算配置与站点配置
	settings := map[string]map[string]interface{}{
		constants.SettingKeySiteConfig: {
			"site_name": "NexaCart",
			"currency":  "INR",
			"contact": map[string]string{
				"email":    "support@nexacart.in",
				"whatsapp": "https://wa.me/919000000000",
			},
		},
		constants.SettingKeyCheckoutConfig: {
			constants.SettingFieldTaxRate:               "5",
			constants.SettingFieldShippingRate:          "49",
			constants.SettingFieldFreeShippingThreshold: "999",
		},
	}

	for key, value := range settings {
		var setting models.Setting
		if err := models.DB.Where("key = ?", key).First(&setting).Error; err != nil {
			setting = models.Setting{
				Key:       key,
				ValueJSON: models.JSON(value),
			}
			if err := models.DB.Create(&setting).Error; err != nil {
				stdLog.Printf("Failed to create setting %s: %v", key, err)
			} else {
				stdLog.Printf("Created setting: %s", key)
			}
		} else {
			setting.ValueJSON = models.JSON(value)
			if err := models.DB.Save(&setting).Error; err != nil {
				stdLog.Printf("Failed to update setting %s: %v", key, err)
			} else {
				stdLog.Printf("Updated setting: %s", key)
			}
		}
	}

	fmt.Println("\n✅ Seed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 3 Categories")
	fmt.Println("- 6 Products (1 out of stock, 1 inactive)")
	fmt.Println("- Site and checkout configuration")
}
