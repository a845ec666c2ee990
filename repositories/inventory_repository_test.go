package repositories

import (
	"fmt"
	"testing"

	"warehouse-app/controllers/helpers"
	"warehouse-app/migration"
	"warehouse-app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, migration.Migrate(db))
	return db
}

func seedBoxAndSku(t *testing.T, db *gorm.DB) (*models.Box, *models.Sku) {
	t.Helper()

	shelf := models.Shelf{Code: "SH-01", Name: "Default Shelf", IsActive: true}
	require.NoError(t, db.Create(&shelf).Error)
	box := models.Box{Code: "B-0001", Ordinal: 1, ShelfId: shelf.ID}
	require.NoError(t, db.Create(&box).Error)
	sku := models.Sku{Code: "SKU-A", Name: "Widget"}
	require.NoError(t, db.Create(&sku).Error)
	return &box, &sku
}

func TestIncrementStockCreatesRow(t *testing.T) {
	db := newTestDB(t)
	repo := NewInventoryRepository(db)
	box, sku := seedBoxAndSku(t, db)

	before, after, err := repo.IncrementStock(box.ID, sku.ID, 5,
		models.MovementBatchInbound, models.RefBatchInboundOrder, 100, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, before)
	assert.Equal(t, 5, after)

	var row models.InventoryBoxSku
	require.NoError(t, db.Where("box_id = ? AND sku_id = ?", box.ID, sku.ID).First(&row).Error)
	assert.Equal(t, 5, row.Qty)
}

func TestIncrementStockUpdatesExistingRow(t *testing.T) {
	db := newTestDB(t)
	repo := NewInventoryRepository(db)
	box, sku := seedBoxAndSku(t, db)

	_, _, err := repo.IncrementStock(box.ID, sku.ID, 5,
		models.MovementBatchInbound, models.RefBatchInboundOrder, 100, 1)
	require.NoError(t, err)

	before, after, err := repo.IncrementStock(box.ID, sku.ID, 3,
		models.MovementPlainInbound, models.RefInboundOrder, 200, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, before)
	assert.Equal(t, 8, after)

	var count int64
	require.NoError(t, db.Model(&models.InventoryBoxSku{}).
		Where("box_id = ? AND sku_id = ?", box.ID, sku.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count, "one ledger row per (box, sku)")
}

func TestIncrementStockNegativeDelta(t *testing.T) {
	db := newTestDB(t)
	repo := NewInventoryRepository(db)
	box, sku := seedBoxAndSku(t, db)

	_, _, err := repo.IncrementStock(box.ID, sku.ID, 5,
		models.MovementBatchInbound, models.RefBatchInboundOrder, 100, 1)
	require.NoError(t, err)

	before, after, err := repo.IncrementStock(box.ID, sku.ID, -2,
		models.MovementAdjustment, models.RefManual, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, before)
	assert.Equal(t, 3, after)
}

func TestIncrementStockRejectsNegativeBalance(t *testing.T) {
	db := newTestDB(t)
	repo := NewInventoryRepository(db)
	box, sku := seedBoxAndSku(t, db)

	_, _, err := repo.IncrementStock(box.ID, sku.ID, 2,
		models.MovementBatchInbound, models.RefBatchInboundOrder, 100, 1)
	require.NoError(t, err)

	_, _, err = repo.IncrementStock(box.ID, sku.ID, -3,
		models.MovementAdjustment, models.RefManual, 0, 1)
	require.Error(t, err)
	appErr, ok := err.(*helpers.AppError)
	require.True(t, ok)
	assert.Equal(t, helpers.CodeConflict, appErr.Code)

	// the failed delta leaves the quantity and the movement log untouched
	var row models.InventoryBoxSku
	require.NoError(t, db.Where("box_id = ? AND sku_id = ?", box.ID, sku.ID).First(&row).Error)
	assert.Equal(t, 2, row.Qty)

	count, err := repo.CountMovements(models.RefManual, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestIncrementStockAppendsMovements(t *testing.T) {
	db := newTestDB(t)
	repo := NewInventoryRepository(db)
	box, sku := seedBoxAndSku(t, db)

	for i := 0; i < 3; i++ {
		_, _, err := repo.IncrementStock(box.ID, sku.ID, 1,
			models.MovementBatchInbound, models.RefBatchInboundOrder, 100, 1)
		require.NoError(t, err)
	}

	count, err := repo.CountMovements(models.RefBatchInboundOrder, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	var movements []models.StockMovement
	require.NoError(t, db.Where("ref_type = ? AND ref_id = ?",
		models.RefBatchInboundOrder, 100).Find(&movements).Error)
	for _, m := range movements {
		assert.Equal(t, models.MovementBatchInbound, m.MovementType)
		assert.Equal(t, box.ID, m.BoxId)
		assert.Equal(t, sku.ID, m.SkuId)
		assert.Equal(t, 1, m.QtyDelta)
	}
}

func TestGetStockListOrdering(t *testing.T) {
	db := newTestDB(t)
	repo := NewInventoryRepository(db)

	shelf := models.Shelf{Code: "SH-01", Name: "Default Shelf", IsActive: true}
	require.NoError(t, db.Create(&shelf).Error)

	// insert out of ordinal order on purpose
	box2 := models.Box{Code: "B-0002", Ordinal: 2, ShelfId: shelf.ID}
	box1 := models.Box{Code: "B-0001", Ordinal: 1, ShelfId: shelf.ID}
	require.NoError(t, db.Create(&box2).Error)
	require.NoError(t, db.Create(&box1).Error)
	skuB := models.Sku{Code: "SKU-B", Name: "Gadget"}
	skuA := models.Sku{Code: "SKU-A", Name: "Widget"}
	require.NoError(t, db.Create(&skuB).Error)
	require.NoError(t, db.Create(&skuA).Error)

	for _, pair := range []struct {
		box *models.Box
		sku *models.Sku
		qty int
	}{
		{&box2, &skuA, 4},
		{&box1, &skuB, 2},
		{&box1, &skuA, 7},
	} {
		_, _, err := repo.IncrementStock(pair.box.ID, pair.sku.ID, pair.qty,
			models.MovementPlainInbound, models.RefInboundOrder, 1, 1)
		require.NoError(t, err)
	}

	stocks, err := repo.GetStockList()
	require.NoError(t, err)
	require.Len(t, stocks, 3)

	assert.Equal(t, "B-0001", stocks[0].BoxCode)
	assert.Equal(t, "SKU-A", stocks[0].SkuCode)
	assert.Equal(t, 7, stocks[0].Qty)
	assert.Equal(t, "SH-01", stocks[0].Shelf)
	assert.Equal(t, "B-0001", stocks[1].BoxCode)
	assert.Equal(t, "SKU-B", stocks[1].SkuCode)
	assert.Equal(t, "B-0002", stocks[2].BoxCode)
	assert.Equal(t, 4, stocks[2].Qty)
}
