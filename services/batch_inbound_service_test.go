package services

import (
	"fmt"
	"testing"
	"time"

	"warehouse-app/controllers/helpers"
	"warehouse-app/migration"
	"warehouse-app/models"
	"warehouse-app/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
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
	require.NoError(t, db.Create(&models.Shelf{Code: "SH-01", Name: "Default Shelf", IsActive: true}).Error)
	return db
}

func buildWorkbook(t *testing.T, rows [][]interface{}) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for c, h := range []string{"Box", "SKU", "Qty"} {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, h))
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	return f
}

func appCode(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := err.(*helpers.AppError)
	require.True(t, ok, "expected *helpers.AppError, got %T: %v", err, err)
	return appErr.Code
}

func TestReserveRange(t *testing.T) {
	db := newTestDB(t)
	svc := NewBatchInboundService(db)

	order, err := svc.ReserveRange(ReserveInput{BatchNo: "007", BoxCount: 3}, 1)
	require.NoError(t, err)

	expectedNo := fmt.Sprintf("BINB-%s-7-3", time.Now().Format("20060102"))
	assert.Equal(t, expectedNo, order.OrderNo)
	assert.Equal(t, "7", order.BatchNo)
	assert.Equal(t, models.BatchOrderWaitingUpload, order.Status)
	assert.Equal(t, 1, order.RangeStart)
	assert.Equal(t, 3, order.RangeEnd)
	assert.Equal(t, []string{"B-0001", "B-0002", "B-0003"}, []string(order.CollectedBoxCodes))

	var auditCount int64
	require.NoError(t, db.Model(&models.OperationAuditLog{}).
		Where("entity_type = ? AND event_type = ?", "batch_inbound_order", "batch_inbound.reserve").
		Count(&auditCount).Error)
	assert.EqualValues(t, 1, auditCount)
}

func TestReserveRangeInvalidBatchNo(t *testing.T) {
	db := newTestDB(t)
	svc := NewBatchInboundService(db)

	for _, batchNo := range []string{"", "0", "000", "7a", "-3"} {
		_, err := svc.ReserveRange(ReserveInput{BatchNo: batchNo, BoxCount: 2}, 1)
		require.Error(t, err, "batch no %q", batchNo)
		assert.Equal(t, helpers.CodeValidation, appCode(t, err))
	}
}

func TestReserveRangeSkipsLiveReservations(t *testing.T) {
	db := newTestDB(t)
	svc := NewBatchInboundService(db)

	first, err := svc.ReserveRange(ReserveInput{BatchNo: "1", BoxCount: 3}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, first.RangeStart)

	second, err := svc.ReserveRange(ReserveInput{BatchNo: "2", BoxCount: 2}, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, second.RangeStart)
	assert.Equal(t, 5, second.RangeEnd)
}

func TestReserveRangeDuplicateOrderNo(t *testing.T) {
	db := newTestDB(t)
	svc := NewBatchInboundService(db)

	_, err := svc.ReserveRange(ReserveInput{BatchNo: "7", BoxCount: 3}, 1)
	require.NoError(t, err)

	// same batch number and box count on the same day collide on order no
	_, err = svc.ReserveRange(ReserveInput{BatchNo: "7", BoxCount: 3}, 1)
	require.Error(t, err)
	assert.Equal(t, helpers.CodeConflict, appCode(t, err))
}

func TestUploadSpreadsheetMismatch(t *testing.T) {
	db := newTestDB(t)
	svc := NewBatchInboundService(db)

	order, err := svc.ReserveRange(ReserveInput{BatchNo: "7", BoxCount: 3}, 1)
	require.NoError(t, err)

	f := buildWorkbook(t, [][]interface{}{
		{"B-0001", "SKU-A", 5},
		{"B-0002", "SKU-A", 2},
	})
	_, err = svc.UploadSpreadsheet(order.ID, f, "partial.xlsx", 1)
	require.Error(t, err)
	assert.Equal(t, helpers.CodeConflict, appCode(t, err))
	assert.Contains(t, err.Error(), "missing: B-0003")
	assert.Contains(t, err.Error(), "unexpected: -")

	// failed upload leaves the order untouched
	detail, err := svc.GetOrderDetail(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BatchOrderWaitingUpload, detail.Order.Status)
	assert.Empty(t, detail.Items)
}

func uploadFullSheet(t *testing.T, svc *BatchInboundService, order *models.BatchInboundOrder) *OrderDetail {
	t.Helper()

	f := buildWorkbook(t, [][]interface{}{
		{"B-0001", "SKU-A", 5},
		{"B-0002", "SKU-A", 2},
		{"B-0003", "SKU-B", 7},
	})
	detail, err := svc.UploadSpreadsheet(order.ID, f, "batch7.xlsx", 1)
	require.NoError(t, err)
	return detail
}

func TestUploadSpreadsheet(t *testing.T) {
	db := newTestDB(t)
	svc := NewBatchInboundService(db)

	order, err := svc.ReserveRange(ReserveInput{BatchNo: "7", BoxCount: 3}, 1)
	require.NoError(t, err)

	detail := uploadFullSheet(t, svc, order)
	assert.Equal(t, models.BatchOrderWaitingInbound, detail.Order.Status)
	assert.Equal(t, "batch7.xlsx", detail.Order.UploadedFileName)
	require.Len(t, detail.Items, 3)
	for _, item := range detail.Items {
		assert.Equal(t, models.BatchItemPending, item.Status)
	}

	// re-upload before confirmation replaces the item set wholesale
	f := buildWorkbook(t, [][]interface{}{
		{"B-0001", "SKU-C", 1},
		{"B-0002", "SKU-C", 1},
		{"B-0003", "SKU-C", 1},
	})
	detail, err = svc.UploadSpreadsheet(order.ID, f, "batch7-v2.xlsx", 1)
	require.NoError(t, err)
	require.Len(t, detail.Items, 3)
	for _, item := range detail.Items {
		assert.Equal(t, "SKU-C", item.SkuCode)
	}
}

func TestConfirmBeforeUpload(t *testing.T) {
	db := newTestDB(t)
	svc := NewBatchInboundService(db)

	order, err := svc.ReserveRange(ReserveInput{BatchNo: "7", BoxCount: 1}, 1)
	require.NoError(t, err)

	_, err = svc.ConfirmAll(order.ID, 1)
	require.Error(t, err)
	assert.Equal(t, helpers.CodeIllegalState, appCode(t, err))
}

func TestConfirmAll(t *testing.T) {
	db := newTestDB(t)
	svc := NewBatchInboundService(db)
	inventory := repositories.NewInventoryRepository(db)

	order, err := svc.ReserveRange(ReserveInput{BatchNo: "7", BoxCount: 3}, 1)
	require.NoError(t, err)
	uploadFullSheet(t, svc, order)

	result, err := svc.ConfirmAll(order.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.BatchOrderConfirmed, result.Status)
	assert.False(t, result.Idempotent)
	assert.Equal(t, 3, result.ChangedRows)
	assert.True(t, result.StatusBecameConfirmed)

	stocks, err := inventory.GetStockList()
	require.NoError(t, err)
	require.Len(t, stocks, 3)
	assert.Equal(t, "B-0001", stocks[0].BoxCode)
	assert.Equal(t, "SKU-A", stocks[0].SkuCode)
	assert.Equal(t, 5, stocks[0].Qty)
	assert.Equal(t, "SH-01", stocks[0].Shelf)

	movements, err := inventory.CountMovements(models.RefBatchInboundOrder, order.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, movements)

	// second confirm is a no-op: no new movements, no new stock
	result, err = svc.ConfirmAll(order.ID, 1)
	require.NoError(t, err)
	assert.True(t, result.Idempotent)
	assert.Equal(t, 0, result.ChangedRows)
	assert.False(t, result.StatusBecameConfirmed)

	movements, err = inventory.CountMovements(models.RefBatchInboundOrder, order.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, movements)
}

func TestConfirmItemAndBox(t *testing.T) {
	db := newTestDB(t)
	svc := NewBatchInboundService(db)
	inventory := repositories.NewInventoryRepository(db)

	order, err := svc.ReserveRange(ReserveInput{BatchNo: "7", BoxCount: 3}, 1)
	require.NoError(t, err)
	detail := uploadFullSheet(t, svc, order)

	result, err := svc.ConfirmItem(order.ID, int64(detail.Items[0].ID), 1)
	require.NoError(t, err)
	assert.Equal(t, models.BatchOrderWaitingInbound, result.Status)
	assert.Equal(t, 1, result.ChangedRows)

	// confirming the same item again changes nothing
	result, err = svc.ConfirmItem(order.ID, int64(detail.Items[0].ID), 1)
	require.NoError(t, err)
	assert.True(t, result.Idempotent)
	assert.Equal(t, 0, result.ChangedRows)

	// box codes are accepted in any spelling
	result, err = svc.ConfirmBox(order.ID, "b_0002", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ChangedRows)
	assert.Equal(t, models.BatchOrderWaitingInbound, result.Status)

	result, err = svc.ConfirmBox(order.ID, "B-0002", 1)
	require.NoError(t, err)
	assert.True(t, result.Idempotent)

	_, err = svc.ConfirmBox(order.ID, "not-a-box", 1)
	require.Error(t, err)
	assert.Equal(t, helpers.CodeValidation, appCode(t, err))

	// the last box flips the order into confirmed
	result, err = svc.ConfirmBox(order.ID, "B-0003", 1)
	require.NoError(t, err)
	assert.Equal(t, models.BatchOrderConfirmed, result.Status)
	assert.True(t, result.StatusBecameConfirmed)

	movements, err := inventory.CountMovements(models.RefBatchInboundOrder, order.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, movements)
}

func TestConfirmItemNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewBatchInboundService(db)

	order, err := svc.ReserveRange(ReserveInput{BatchNo: "7", BoxCount: 1}, 1)
	require.NoError(t, err)
	f := buildWorkbook(t, [][]interface{}{{"B-0001", "SKU-A", 1}})
	_, err = svc.UploadSpreadsheet(order.ID, f, "one.xlsx", 1)
	require.NoError(t, err)

	_, err = svc.ConfirmItem(order.ID, 999999, 1)
	require.Error(t, err)
	assert.Equal(t, helpers.CodeNotFound, appCode(t, err))
}

func TestUploadAfterConfirm(t *testing.T) {
	db := newTestDB(t)
	svc := NewBatchInboundService(db)

	order, err := svc.ReserveRange(ReserveInput{BatchNo: "7", BoxCount: 3}, 1)
	require.NoError(t, err)
	uploadFullSheet(t, svc, order)
	_, err = svc.ConfirmAll(order.ID, 1)
	require.NoError(t, err)

	f := buildWorkbook(t, [][]interface{}{
		{"B-0001", "SKU-A", 1},
		{"B-0002", "SKU-A", 1},
		{"B-0003", "SKU-A", 1},
	})
	_, err = svc.UploadSpreadsheet(order.ID, f, "late.xlsx", 1)
	require.Error(t, err)
	assert.Equal(t, helpers.CodeIllegalState, appCode(t, err))
}

func TestDeleteOrderReleasesRange(t *testing.T) {
	db := newTestDB(t)
	svc := NewBatchInboundService(db)

	order, err := svc.ReserveRange(ReserveInput{BatchNo: "7", BoxCount: 3}, 1)
	require.NoError(t, err)
	uploadFullSheet(t, svc, order)

	voided, err := svc.DeleteOrder(order.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.BatchOrderVoid, voided.Status)

	detail, err := svc.GetOrderDetail(order.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Items)

	// the freed ordinals are available again
	next, err := svc.ReserveRange(ReserveInput{BatchNo: "8", BoxCount: 2}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, next.RangeStart)

	// a void order is terminal
	_, err = svc.DeleteOrder(order.ID, 1)
	require.Error(t, err)
	assert.Equal(t, helpers.CodeIllegalState, appCode(t, err))
	_, err = svc.ConfirmAll(order.ID, 1)
	require.Error(t, err)
	assert.Equal(t, helpers.CodeIllegalState, appCode(t, err))
}

func TestDeleteConfirmedOrder(t *testing.T) {
	db := newTestDB(t)
	svc := NewBatchInboundService(db)

	order, err := svc.ReserveRange(ReserveInput{BatchNo: "7", BoxCount: 3}, 1)
	require.NoError(t, err)
	uploadFullSheet(t, svc, order)
	_, err = svc.ConfirmAll(order.ID, 1)
	require.NoError(t, err)

	_, err = svc.DeleteOrder(order.ID, 1)
	require.Error(t, err)
	assert.Equal(t, helpers.CodeIllegalState, appCode(t, err))
}

func TestConfirmedOrderKeepsOrdinalsOccupied(t *testing.T) {
	db := newTestDB(t)
	svc := NewBatchInboundService(db)

	order, err := svc.ReserveRange(ReserveInput{BatchNo: "7", BoxCount: 2}, 1)
	require.NoError(t, err)
	uploadedSheet := buildWorkbook(t, [][]interface{}{
		{"B-0001", "SKU-A", 1},
		{"B-0002", "SKU-A", 1},
	})
	_, err = svc.UploadSpreadsheet(order.ID, uploadedSheet, "two.xlsx", 1)
	require.NoError(t, err)
	_, err = svc.ConfirmAll(order.ID, 1)
	require.NoError(t, err)

	// confirmed boxes exist in the master table and stay occupied
	next, err := svc.ReserveRange(ReserveInput{BatchNo: "8", BoxCount: 2}, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, next.RangeStart)
}

func TestUpdateLogisticsRefs(t *testing.T) {
	db := newTestDB(t)
	svc := NewBatchInboundService(db)

	order, err := svc.ReserveRange(ReserveInput{BatchNo: "7", BoxCount: 1}, 1)
	require.NoError(t, err)

	updated, err := svc.UpdateLogisticsRefs(order.ID, LogisticsRefsInput{
		LogisticsNo:   "SF1234567890",
		CourierRemark: "fragile",
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, "SF1234567890", updated.LogisticsNo)
	assert.Equal(t, "fragile", updated.CourierRemark)

	_, err = svc.DeleteOrder(order.ID, 1)
	require.NoError(t, err)

	_, err = svc.UpdateLogisticsRefs(order.ID, LogisticsRefsInput{LogisticsNo: "x"}, 1)
	require.Error(t, err)
	assert.Equal(t, helpers.CodeIllegalState, appCode(t, err))
}

func TestListOrders(t *testing.T) {
	db := newTestDB(t)
	svc := NewBatchInboundService(db)

	order, err := svc.ReserveRange(ReserveInput{BatchNo: "7", BoxCount: 3}, 1)
	require.NoError(t, err)
	uploadFullSheet(t, svc, order)
	_, err = svc.ConfirmBox(order.ID, "B-0001", 1)
	require.NoError(t, err)

	summaries, err := svc.ListOrders()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, order.OrderNo, summaries[0].OrderNo)
	assert.Equal(t, models.BatchOrderWaitingInbound, summaries[0].Status)
	assert.Equal(t, 2, summaries[0].PendingItems)
	assert.Equal(t, 1, summaries[0].ConfirmedItems)
}

func TestAuditRowsCarryRequestID(t *testing.T) {
	db := newTestDB(t)
	svc := NewBatchInboundService(db).WithRequestID("req-42")

	order, err := svc.ReserveRange(ReserveInput{BatchNo: "7", BoxCount: 1}, 1)
	require.NoError(t, err)

	var entry models.OperationAuditLog
	require.NoError(t, db.Where("event_type = ?", "batch_inbound.reserve").First(&entry).Error)
	assert.Equal(t, "req-42", entry.RequestId)
	assert.Equal(t, fmt.Sprintf("%d", order.ID), entry.EntityId)

	f := buildWorkbook(t, [][]interface{}{{"B-0001", "SKU-A", 1}})
	_, err = svc.UploadSpreadsheet(order.ID, f, "one.xlsx", 1)
	require.NoError(t, err)
	_, err = svc.ConfirmAll(order.ID, 1)
	require.NoError(t, err)

	var blank int64
	require.NoError(t, db.Model(&models.OperationAuditLog{}).
		Where("request_id <> ?", "req-42").Count(&blank).Error)
	assert.EqualValues(t, 0, blank, "every audit row carries the correlation id")
}

func TestGetOrderDetailNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewBatchInboundService(db)

	_, err := svc.GetOrderDetail(123456)
	require.Error(t, err)
	assert.Equal(t, helpers.CodeNotFound, appCode(t, err))
}
