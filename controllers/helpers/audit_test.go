package helpers

import (
	"testing"
	"time"

	"warehouse-app/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNormalizeSnapshotScalars(t *testing.T) {
	assert.Nil(t, NormalizeSnapshot(nil))
	assert.Equal(t, "9007199254740993", NormalizeSnapshot(int64(9007199254740993)))
	assert.Equal(t, "42", NormalizeSnapshot(types.SnowflakeID(42)))
	assert.Equal(t, []string{"B-0001", "B-0002"}, NormalizeSnapshot(types.StringList{"B-0001", "B-0002"}))
	assert.Equal(t, "hello", NormalizeSnapshot("hello"))
	assert.Equal(t, 3, NormalizeSnapshot(3))
}

func TestNormalizeSnapshotTime(t *testing.T) {
	ts := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-08-28T10:30:00Z", NormalizeSnapshot(ts))
	assert.Nil(t, NormalizeSnapshot(time.Time{}))
	assert.Nil(t, NormalizeSnapshot((*time.Time)(nil)))
	assert.Equal(t, "2026-08-28T10:30:00Z", NormalizeSnapshot(&ts))
}

type auditStamp struct {
	ID int64 `json:"id"`
}

func TestNormalizeSnapshotStruct(t *testing.T) {
	type order struct {
		auditStamp
		OrderNo   string     `json:"order_no"`
		Secret    string     `json:"-"`
		DeletedAt *time.Time `json:"deleted_at"`
		internal  int
	}

	got := NormalizeSnapshot(order{
		auditStamp: auditStamp{ID: 7},
		OrderNo:    "BINB-20260828-7-3",
		Secret:     "hidden",
	})

	m, ok := got.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "7", m["id"])
	assert.Equal(t, "BINB-20260828-7-3", m["order_no"])
	_, hasSecret := m["Secret"]
	assert.False(t, hasSecret)
	_, hasDeleted := m["deleted_at"]
	assert.False(t, hasDeleted, "nil fields are dropped")
	_, hasInternal := m["internal"]
	assert.False(t, hasInternal)
}

func TestNormalizeSnapshotGormModelEmbed(t *testing.T) {
	type row struct {
		gorm.Model
		Code string `json:"code"`
	}

	got := NormalizeSnapshot(row{Model: gorm.Model{ID: 42}, Code: "B-0001"})
	m, ok := got.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "B-0001", m["code"])
	assert.EqualValues(t, 42, m["ID"])
	_, hasDeleted := m["DeletedAt"]
	assert.False(t, hasDeleted)
}

func TestNormalizeSnapshotUnexportedEmbed(t *testing.T) {
	type hidden struct {
		Token string
	}
	type wrapper struct {
		hidden
		Name string `json:"name"`
	}

	// embeds of unexported types cannot be read; they are dropped
	// without panicking and the exported siblings survive
	got := NormalizeSnapshot(wrapper{hidden: hidden{Token: "x"}, Name: "shelf"})
	m, ok := got.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "shelf", m["name"])
	_, hasToken := m["Token"]
	assert.False(t, hasToken)
}

func TestNormalizeSnapshotMapDropsNils(t *testing.T) {
	got := NormalizeSnapshot(map[string]interface{}{
		"qty":   int64(5),
		"empty": nil,
	})

	m, ok := got.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "5", m["qty"])
	_, hasEmpty := m["empty"]
	assert.False(t, hasEmpty)
}

func TestChangedFieldsSingleDifference(t *testing.T) {
	before := map[string]interface{}{"a": 1, "b": "x"}
	after := map[string]interface{}{"a": 1, "b": "y"}

	changes := ChangedFields(before, after)
	require.Len(t, changes, 1)
	assert.Equal(t, "b", changes[0].Field)
	assert.Equal(t, "x", changes[0].Before)
	assert.Equal(t, "y", changes[0].After)
}

func TestChangedFieldsAddedAndRemovedKeys(t *testing.T) {
	before := map[string]interface{}{"status": "waiting_upload", "file": "a.xlsx"}
	after := map[string]interface{}{"status": "waiting_inbound", "remark": "ok"}

	changes := ChangedFields(before, after)
	require.Len(t, changes, 3)

	byField := make(map[string]FieldChange)
	for _, c := range changes {
		byField[c.Field] = c
	}

	assert.Equal(t, "a.xlsx", byField["file"].Before)
	assert.Nil(t, byField["file"].After)
	assert.Nil(t, byField["remark"].Before)
	assert.Equal(t, "ok", byField["remark"].After)
	assert.Equal(t, "waiting_upload", byField["status"].Before)
	assert.Equal(t, "waiting_inbound", byField["status"].After)
}

func TestChangedFieldsIdentical(t *testing.T) {
	snap := map[string]interface{}{"a": 1, "b": "x"}
	assert.Empty(t, ChangedFields(snap, snap))
}

func TestChangedFieldsNilSides(t *testing.T) {
	after := map[string]interface{}{"order_no": "BINB-20260828-7-3"}

	changes := ChangedFields(nil, after)
	require.Len(t, changes, 1)
	assert.Equal(t, "order_no", changes[0].Field)

	changes = ChangedFields(after, nil)
	require.Len(t, changes, 1)
	assert.Nil(t, changes[0].After)
}
