package helpers

import (
	"fmt"
)

// FindFreeRange returns the start of the smallest window
// [start, start+count-1] fully disjoint from the occupied ordinal set,
// scanning from 1 upward. First-fit only; freed gaps are reused in scan
// order, nothing is coalesced or persisted.
func FindFreeRange(occupied map[int]bool, count int) (int, error) {
	if count < 1 {
		return 0, NewValidationError("box count must be a positive integer")
	}

	run := 0
	for ord := 1; ord <= MaxBoxOrdinal; ord++ {
		if occupied[ord] {
			run = 0
			continue
		}
		run++
		if run == count {
			return ord - count + 1, nil
		}
	}

	return 0, NewCapacityError(fmt.Sprintf("no contiguous range of %d free box codes below %s", count, EncodeBoxCode(MaxBoxOrdinal)))
}
