package helpers

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"warehouse-app/types"

	"github.com/xuri/excelize/v2"
	"golang.org/x/exp/maps"
)

// BatchLine is one normalized (box, sku, qty) line after merging.
type BatchLine struct {
	BoxOrdinal  int    `json:"box_ordinal"`
	BoxCode     string `json:"box_code"`
	SkuCode     string `json:"sku_code"`
	Quantity    int    `json:"quantity"`
	SourceRowNo int    `json:"source_row_no"`
}

// Header aliases per column role. Matching is case, whitespace and
// separator insensitive.
var headerAliases = map[string][]string{
	"box": {"箱号", "箱子编号", "box", "boxcode", "boxno", "boxnumber"},
	"sku": {"sku", "skucode", "商品编码", "商品编号", "货号", "itemcode", "productcode"},
	"qty": {"数量", "qty", "count", "quantity"},
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, sep := range []string{" ", "\t", "_", "-"} {
		s = strings.ReplaceAll(s, sep, "")
	}
	return s
}

func resolveHeaderRole(cell string) string {
	normalized := normalizeHeader(cell)
	for role, aliases := range headerAliases {
		for _, alias := range aliases {
			if normalized == alias {
				return role
			}
		}
	}
	return ""
}

func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// ParseBatchInboundSheet reads the first sheet into merged batch lines.
// Row validation collects every bad row into one error; partial success
// is not permitted. The header is row 1, data starts at row 2.
func ParseBatchInboundSheet(f *excelize.File) ([]BatchLine, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewValidationError("no sheets found in the uploaded file")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, NewValidationError("failed to read rows from the uploaded file")
	}
	if len(rows) < 2 {
		return nil, NewValidationError("the sheet must contain a header row and at least one data row")
	}

	boxCol, skuCol, qtyCol := -1, -1, -1
	for i, cell := range rows[0] {
		switch resolveHeaderRole(cell) {
		case "box":
			boxCol = i
		case "sku":
			skuCol = i
		case "qty":
			qtyCol = i
		}
	}
	if boxCol < 0 || skuCol < 0 || qtyCol < 0 {
		missing := []string{}
		if boxCol < 0 {
			missing = append(missing, "box code")
		}
		if skuCol < 0 {
			missing = append(missing, "sku code")
		}
		if qtyCol < 0 {
			missing = append(missing, "quantity")
		}
		return nil, NewValidationError("header row is missing required columns: " + strings.Join(missing, ", "))
	}

	merged := make(map[string]*BatchLine)
	var rowErrs []string

	for i, row := range rows[1:] {
		rowNum := i + 2 // header is row 1

		ordinal := DecodeBoxCode(cellAt(row, boxCol))
		if ordinal == 0 {
			rowErrs = append(rowErrs, fmt.Sprintf("row %d: invalid box code %q", rowNum, cellAt(row, boxCol)))
		}

		skuCode := strings.TrimSpace(cellAt(row, skuCol))
		if skuCode == "" {
			rowErrs = append(rowErrs, fmt.Sprintf("row %d: sku code is empty", rowNum))
		}

		qty, qtyErr := strconv.Atoi(strings.TrimSpace(cellAt(row, qtyCol)))
		if qtyErr != nil || qty <= 0 {
			rowErrs = append(rowErrs, fmt.Sprintf("row %d: quantity %q must be a positive integer", rowNum, cellAt(row, qtyCol)))
		}

		if ordinal == 0 || skuCode == "" || qtyErr != nil || qty <= 0 {
			continue
		}

		boxCode := EncodeBoxCode(ordinal)
		key := boxCode + "|" + skuCode
		if line, ok := merged[key]; ok {
			// rows are scanned in order, the first occurrence keeps
			// the source row number
			line.Quantity += qty
		} else {
			merged[key] = &BatchLine{
				BoxOrdinal:  ordinal,
				BoxCode:     boxCode,
				SkuCode:     skuCode,
				Quantity:    qty,
				SourceRowNo: rowNum,
			}
		}
	}

	if len(rowErrs) > 0 {
		return nil, NewValidationError("spreadsheet contains invalid rows: " + strings.Join(rowErrs, "; "))
	}

	lines := make([]BatchLine, 0, len(merged))
	for _, line := range merged {
		lines = append(lines, *line)
	}
	sort.Slice(lines, func(a, b int) bool {
		if lines[a].BoxOrdinal != lines[b].BoxOrdinal {
			return lines[a].BoxOrdinal < lines[b].BoxOrdinal
		}
		return lines[a].SkuCode < lines[b].SkuCode
	})

	return lines, nil
}

// ReconcileBoxCodes checks exact set equality between the uploaded box
// codes and the reserved codes. Both directions are reported: reserved
// codes absent from the upload and uploaded codes outside the
// reservation, with "-" standing in for an empty list.
func ReconcileBoxCodes(lines []BatchLine, reserved types.StringList) error {
	uploaded := make(map[string]bool)
	for _, line := range lines {
		uploaded[line.BoxCode] = true
	}

	missingSet := make(map[string]bool)
	for _, code := range reserved {
		if !uploaded[code] {
			missingSet[code] = true
		}
	}
	unexpectedSet := make(map[string]bool)
	for code := range uploaded {
		if !reserved.Contains(code) {
			unexpectedSet[code] = true
		}
	}

	if len(missingSet) == 0 && len(unexpectedSet) == 0 {
		return nil
	}

	missing := maps.Keys(missingSet)
	unexpected := maps.Keys(unexpectedSet)
	sort.Strings(missing)
	sort.Strings(unexpected)

	return NewConflict(fmt.Sprintf(
		"uploaded box codes do not match the reservation, missing: %s, unexpected: %s",
		joinOrDash(missing), joinOrDash(unexpected)))
}

func joinOrDash(codes []string) string {
	if len(codes) == 0 {
		return "-"
	}
	return strings.Join(codes, ",")
}
