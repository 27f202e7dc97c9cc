package service

import (
	"context"
	"errors"
	"testing"

	"github.com/nexacart/internal/constants"
	"github.com/nexacart/internal/models"
	"github.com/nexacart/internal/repository"

	"gorm.io/gorm"
)

func newProductServiceForTest(db *gorm.DB) *ProductService {
	return NewProductService(repository.NewProductRepository(db), repository.NewCategoryRepository(db), repository.NewCartRepository(db))
}

func seedTestCategory(t *testing.T, db *gorm.DB, slug, name string) *models.Category {
	t.Helper()
	category := &models.Category{Slug: slug, Name: name}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("seed category failed: %v", err)
	}
	return category
}

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"wireless-earbuds-pro", "wireless-earbuds-pro", false},
		{"  Wireless-Earbuds  ", "wireless-earbuds", false},
		{"a1-b2-c3", "a1-b2-c3", false},
		{"", "", true},
		{"   ", "", true},
		{"has space", "", true},
		{"Ünïcode", "", true},
		{"-leading-dash", "", true},
		{"trailing-dash-", "", true},
		{"double--dash", "", true},
	}

	for _, tt := range tests {
		got, err := normalizeSlug(tt.raw)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("normalizeSlug(%q) expected ErrInvalidInput, got %v", tt.raw, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("normalizeSlug(%q) unexpected error: %v", tt.raw, err)
		}
		if got != tt.want {
			t.Fatalf("normalizeSlug(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestProductCreateValidations(t *testing.T) {
	db := setupTestDB(t, "product_create")
	svc := newProductServiceForTest(db)
	category := seedTestCategory(t, db, "electronics", "Electronics")

	valid := ProductInput{
		CategoryID: category.ID,
		Slug:       "wireless-earbuds-pro",
		Name:       "Wireless Earbuds Pro",
		Price:      "2499",
	}

	product, err := svc.Create(valid)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !product.IsActive {
		t.Fatalf("is_active should default to true")
	}
	if product.PriceAmount.String() != "2499.00" {
		t.Fatalf("price want 2499.00 got %s", product.PriceAmount)
	}

	// slug 占用
	if _, err := svc.Create(valid); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("duplicate slug should be rejected, got %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*ProductInput)
		wantErr error
	}{
		{"empty_name", func(in *ProductInput) { in.Slug = "p2"; in.Name = " " }, ErrInvalidInput},
		{"empty_price", func(in *ProductInput) { in.Slug = "p3"; in.Price = "" }, ErrInvalidInput},
		{"negative_price", func(in *ProductInput) { in.Slug = "p4"; in.Price = "-1" }, ErrInvalidInput},
		{"negative_stock", func(in *ProductInput) { in.Slug = "p5"; in.StockQuantity = -1 }, ErrInvalidInput},
		{"unknown_category", func(in *ProductInput) { in.Slug = "p6"; in.CategoryID = 999 }, ErrCategoryNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid
			tt.mutate(&input)
			if _, err := svc.Create(input); !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v got %v", tt.wantErr, err)
			}
		})
	}
}

func TestProductUpdateKeepsOwnSlug(t *testing.T) {
	db := setupTestDB(t, "product_update")
	svc := newProductServiceForTest(db)
	category := seedTestCategory(t, db, "electronics", "Electronics")

	first, err := svc.Create(ProductInput{CategoryID: category.ID, Slug: "first", Name: "First", Price: "100"})
	if err != nil {
		t.Fatalf("create first failed: %v", err)
	}
	if _, err := svc.Create(ProductInput{CategoryID: category.ID, Slug: "second", Name: "Second", Price: "200"}); err != nil {
		t.Fatalf("create second failed: %v", err)
	}

	// 自己的 slug 不算占用
	updated, err := svc.Update(first.ID, ProductInput{CategoryID: category.ID, Slug: "first", Name: "First Renamed", Price: "150"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "First Renamed" || updated.PriceAmount.String() != "150.00" {
		t.Fatalf("update not applied: %s %s", updated.Name, updated.PriceAmount)
	}

	// 改成他人的 slug 被拒绝
	if _, err := svc.Update(first.ID, ProductInput{CategoryID: category.ID, Slug: "second", Name: "First", Price: "100"}); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("foreign slug should be rejected, got %v", err)
	}
}

func TestProductSetActiveAndPublicVisibility(t *testing.T) {
	db := setupTestDB(t, "product_visibility")
	svc := newProductServiceForTest(db)
	category := seedTestCategory(t, db, "electronics", "Electronics")

	product, err := svc.Create(ProductInput{CategoryID: category.ID, Slug: "visible", Name: "Visible", Price: "100"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.GetBySlug("visible"); err != nil {
		t.Fatalf("active product should be publicly visible: %v", err)
	}

	if _, err := svc.SetActive(product.ID, false); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if _, err := svc.GetBySlug("visible"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("inactive product should be hidden from storefront, got %v", err)
	}

	// 后台仍可见
	if _, err := svc.GetByID(product.ID); err != nil {
		t.Fatalf("inactive product should stay visible to admin: %v", err)
	}
}

func TestProductDeleteSoft(t *testing.T) {
	db := setupTestDB(t, "product_delete")
	svc := newProductServiceForTest(db)
	category := seedTestCategory(t, db, "electronics", "Electronics")

	product, err := svc.Create(ProductInput{CategoryID: category.ID, Slug: "to-delete", Name: "To Delete", Price: "100"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Delete(product.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.GetByID(product.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("deleted product should be gone, got %v", err)
	}
	if err := svc.Delete(product.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("repeated delete should report not found, got %v", err)
	}
}

func TestProductDeleteClearsCartReferences(t *testing.T) {
	db := setupTestDB(t, "product_delete_cart_refs")
	seedCheckoutConfig(t, db)
	svc := newProductServiceForTest(db)
	category := seedTestCategory(t, db, "electronics", "Electronics")

	doomed, err := svc.Create(ProductInput{CategoryID: category.ID, Slug: "doomed", Name: "Doomed", Price: "300"})
	if err != nil {
		t.Fatalf("create doomed product failed: %v", err)
	}
	kept, err := svc.Create(ProductInput{CategoryID: category.ID, Slug: "kept", Name: "Kept", Price: "1200"})
	if err != nil {
		t.Fatalf("create kept product failed: %v", err)
	}

	owner := repository.CartOwner{SessionID: "sess-del"}
	seedTestCartItem(t, db, &models.CartItem{SessionID: owner.SessionID, ProductID: doomed.ID, Quantity: 1})
	seedTestCartItem(t, db, &models.CartItem{SessionID: owner.SessionID, ProductID: kept.ID, Quantity: 1})
	seedTestCartItem(t, db, &models.CartItem{SessionID: "sess-other", ProductID: doomed.ID, Quantity: 2})

	if err := svc.Delete(doomed.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	// 所有会话里对已删商品的引用一并清理
	items, err := repository.NewCartRepository(db).ListByOwner(owner)
	if err != nil {
		t.Fatalf("list cart failed: %v", err)
	}
	if len(items) != 1 || items[0].ProductID != kept.ID {
		t.Fatalf("stale cart rows should be removed, got %d items", len(items))
	}
	otherItems, err := repository.NewCartRepository(db).ListByOwner(repository.CartOwner{SessionID: "sess-other"})
	if err != nil {
		t.Fatalf("list other cart failed: %v", err)
	}
	if len(otherItems) != 0 {
		t.Fatalf("other session cart should be emptied, got %d items", len(otherItems))
	}

	// 清理之后剩余商品照常可以结算
	checkout := newCheckoutServiceForTest(db, nil)
	result, err := checkout.Checkout(context.Background(), validCheckoutInput(owner, constants.PaymentMethodCOD))
	if err != nil {
		t.Fatalf("checkout after product delete failed: %v", err)
	}
	if len(result.Order.Items) != 1 || result.Order.Items[0].ProductID != kept.ID {
		t.Fatalf("order should contain only the surviving product, got %+v", result.Order.Items)
	}
}

func TestCategoryDeleteInUse(t *testing.T) {
	db := setupTestDB(t, "category_delete")
	productSvc := newProductServiceForTest(db)
	categorySvc := NewCategoryService(repository.NewCategoryRepository(db))

	category, err := categorySvc.Create(CategoryInput{Slug: "fashion", Name: "Fashion"})
	if err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	if _, err := productSvc.Create(ProductInput{CategoryID: category.ID, Slug: "tshirt", Name: "T-Shirt", Price: "599"}); err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	if err := categorySvc.Delete(category.ID); !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("category with products should not be deletable, got %v", err)
	}

	empty, err := categorySvc.Create(CategoryInput{Slug: "empty", Name: "Empty"})
	if err != nil {
		t.Fatalf("create empty category failed: %v", err)
	}
	if err := categorySvc.Delete(empty.ID); err != nil {
		t.Fatalf("empty category delete failed: %v", err)
	}
}

func TestCategorySlugUniqueness(t *testing.T) {
	db := setupTestDB(t, "category_slug")
	svc := NewCategoryService(repository.NewCategoryRepository(db))

	if _, err := svc.Create(CategoryInput{Slug: "electronics", Name: "Electronics"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(CategoryInput{Slug: "Electronics", Name: "Dup"}); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("case-insensitive duplicate slug should be rejected, got %v", err)
	}
	if _, err := svc.Create(CategoryInput{Slug: "bad slug", Name: "Bad"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("invalid slug should be rejected, got %v", err)
	}
}
