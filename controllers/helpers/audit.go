package helpers

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"warehouse-app/models"
	"warehouse-app/types"

	"gorm.io/gorm"
)

// FieldChange is one entry of the changed-fields diff on an audit row.
type FieldChange struct {
	Field  string      `json:"field"`
	Before interface{} `json:"before"`
	After  interface{} `json:"after"`
}

// NormalizeSnapshot converts a value into plain JSON-compatible form:
// int64-sized integers become decimal strings, timestamps become
// ISO-8601 text, structs and maps are walked recursively and nil-valued
// fields are dropped.
func NormalizeSnapshot(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return x.UTC().Format(time.RFC3339)
	case *time.Time:
		if x == nil {
			return nil
		}
		return NormalizeSnapshot(*x)
	case types.SnowflakeID:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case types.StringList:
		return []string(x)
	case gorm.DeletedAt:
		return nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return NormalizeSnapshot(rv.Elem().Interface())
	case reflect.Struct:
		return normalizeStruct(rv)
	case reflect.Map:
		out := make(map[string]interface{})
		for _, key := range rv.MapKeys() {
			normalized := NormalizeSnapshot(rv.MapIndex(key).Interface())
			if normalized == nil {
				continue
			}
			out[fmt.Sprintf("%v", key.Interface())] = normalized
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]interface{}, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out = append(out, NormalizeSnapshot(rv.Index(i).Interface()))
		}
		return out
	}

	return v
}

func normalizeStruct(rv reflect.Value) map[string]interface{} {
	out := make(map[string]interface{})
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		fv := rv.Field(i)
		if field.Anonymous {
			// flatten embedded structs (gorm.Model and friends); embeds
			// of unexported types are unreadable through reflection
			if !fv.CanInterface() {
				continue
			}
			if nested, ok := NormalizeSnapshot(fv.Interface()).(map[string]interface{}); ok {
				for k, v := range nested {
					out[k] = v
				}
			}
			continue
		}
		if field.PkgPath != "" { // unexported
			continue
		}

		name := field.Name
		if tag := field.Tag.Get("json"); tag != "" {
			tagName := strings.Split(tag, ",")[0]
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}

		normalized := NormalizeSnapshot(fv.Interface())
		if normalized == nil {
			continue
		}
		out[name] = normalized
	}
	return out
}

// ChangedFields diffs two snapshots: the symmetric key union of the
// normalized before/after maps, keeping only keys whose serialized
// values differ. Unchanged keys never appear.
func ChangedFields(before, after interface{}) []FieldChange {
	bm := asMap(NormalizeSnapshot(before))
	am := asMap(NormalizeSnapshot(after))

	keySet := make(map[string]bool)
	for k := range bm {
		keySet[k] = true
	}
	for k := range am {
		keySet[k] = true
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var changes []FieldChange
	for _, k := range keys {
		bj, _ := json.Marshal(bm[k])
		aj, _ := json.Marshal(am[k])
		if string(bj) != string(aj) {
			changes = append(changes, FieldChange{Field: k, Before: bm[k], After: am[k]})
		}
	}
	return changes
}

func asMap(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

// RecordOperation inserts one append-only audit row. A nil before marks
// a creation and a nil after marks a deletion; both are serialized as an
// explicit JSON null.
func RecordOperation(db *gorm.DB, entityType string, entityId interface{}, action, eventType string, before, after interface{}, operator int, requestId, remark string) error {
	beforeJson, err := json.Marshal(NormalizeSnapshot(before))
	if err != nil {
		return err
	}
	afterJson, err := json.Marshal(NormalizeSnapshot(after))
	if err != nil {
		return err
	}
	changedJson, err := json.Marshal(ChangedFields(before, after))
	if err != nil {
		return err
	}

	record := models.OperationAuditLog{
		EntityType:    entityType,
		EntityId:      fmt.Sprintf("%v", entityId),
		Action:        action,
		EventType:     eventType,
		BeforeJson:    string(beforeJson),
		AfterJson:     string(afterJson),
		ChangedFields: string(changedJson),
		OperatorId:    operator,
		RequestId:     requestId,
		Remark:        remark,
	}

	return db.Create(&record).Error
}
