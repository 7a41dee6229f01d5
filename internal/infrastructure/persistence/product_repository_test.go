package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stocklink/backend/internal/domain/catalog"
	"github.com/stocklink/backend/internal/domain/shared"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&catalog.Product{}, &catalog.Settings{}))
	return db
}

func mustCreateProduct(t *testing.T, db *gorm.DB, name, barcode string) *catalog.Product {
	t.Helper()

	p, err := catalog.NewProduct(name, barcode)
	require.NoError(t, err)
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestGormProductRepository_FindByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	created := mustCreateProduct(t, db, "Sparkling Water", "1001")

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sparkling Water", found.Name)
	assert.Equal(t, "1001", found.Barcode)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormProductRepository_FindByBarcode(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	mustCreateProduct(t, db, "Sparkling Water", "1001")

	found, err := repo.FindByBarcode(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, "Sparkling Water", found.Name)

	_, err = repo.FindByBarcode(ctx, "9999")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.FindByBarcode(ctx, "")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, shared.ErrNotFound)
}

func TestGormProductRepository_FindAll_OrdersByName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	mustCreateProduct(t, db, "Zucchini", "3")
	mustCreateProduct(t, db, "Apples", "1")
	mustCreateProduct(t, db, "Mangos", "2")

	products, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "Apples", products[0].Name)
	assert.Equal(t, "Mangos", products[1].Name)
	assert.Equal(t, "Zucchini", products[2].Name)
}

func TestGormProductRepository_FindByIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	a := mustCreateProduct(t, db, "Apples", "1")
	mustCreateProduct(t, db, "Mangos", "2")
	z := mustCreateProduct(t, db, "Zucchini", "3")

	products, err := repo.FindByIDs(ctx, []uuid.UUID{z.ID, a.ID})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Apples", products[0].Name)
	assert.Equal(t, "Zucchini", products[1].Name)

	products, err = repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestGormProductRepository_SaveAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	p, err := catalog.NewProduct("Orange Juice", "2001")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, p))

	perCase := 6
	require.NoError(t, p.Update("Orange Juice 1L", nil, &perCase))
	require.NoError(t, repo.Save(ctx, p))

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Orange Juice 1L", found.Name)
	require.NotNil(t, found.QuantityPerCase)
	assert.Equal(t, 6, *found.QuantityPerCase)

	require.NoError(t, repo.Delete(ctx, p.ID))
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), shared.ErrNotFound)
}

func TestGormProductRepository_DeleteAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	mustCreateProduct(t, db, "Apples", "1")
	mustCreateProduct(t, db, "Mangos", "2")

	deleted, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	products, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestGormProductRepository_ClearField(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	p1 := mustCreateProduct(t, db, "Apples", "1")
	p2 := mustCreateProduct(t, db, "Mangos", "2")
	qty := 5
	p1.AvailableQuantity = &qty
	p2.AvailableQuantity = &qty
	require.NoError(t, db.Save(p1).Error)
	require.NoError(t, db.Save(p2).Error)

	cleared, err := repo.ClearField(ctx, catalog.FieldAvailableQuantity)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cleared)

	found, err := repo.FindByID(ctx, p1.ID)
	require.NoError(t, err)
	assert.Nil(t, found.AvailableQuantity)

	_, err = repo.ClearField(ctx, catalog.SyncField("name"))
	assert.Error(t, err)
}

func TestGormProductRepository_BatchUpdateField(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	a := mustCreateProduct(t, db, "Apples", "1001")
	m := mustCreateProduct(t, db, "Mangos", "1002")

	t.Run("updates integer field by barcode", func(t *testing.T) {
		updated, err := repo.BatchUpdateField(ctx, catalog.FieldAvailableQuantity, map[string]decimal.Decimal{
			"1001": decimal.NewFromInt(42),
			"1002": decimal.NewFromInt(7),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), updated)

		found, err := repo.FindByID(ctx, a.ID)
		require.NoError(t, err)
		require.NotNil(t, found.AvailableQuantity)
		assert.Equal(t, 42, *found.AvailableQuantity)
	})

	t.Run("updates price field with decimals intact", func(t *testing.T) {
		updated, err := repo.BatchUpdateField(ctx, catalog.FieldPrice, map[string]decimal.Decimal{
			"1002": decimal.NewFromFloat(3.45),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), updated)

		found, err := repo.FindByID(ctx, m.ID)
		require.NoError(t, err)
		require.NotNil(t, found.Price)
		assert.True(t, found.Price.Equal(decimal.NewFromFloat(3.45)))
	})

	t.Run("skips unknown barcodes", func(t *testing.T) {
		updated, err := repo.BatchUpdateField(ctx, catalog.FieldLastPeriodSold, map[string]decimal.Decimal{
			"1001":    decimal.NewFromInt(12),
			"unknown": decimal.NewFromInt(99),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), updated)
	})

	t.Run("empty update map is a no-op", func(t *testing.T) {
		updated, err := repo.BatchUpdateField(ctx, catalog.FieldPrice, nil)
		require.NoError(t, err)
		assert.Zero(t, updated)
	})

	t.Run("rejects non-sync field", func(t *testing.T) {
		_, err := repo.BatchUpdateField(ctx, catalog.SyncField("barcode"), map[string]decimal.Decimal{
			"1001": decimal.NewFromInt(1),
		})
		assert.Error(t, err)
	})
}
