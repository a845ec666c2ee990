package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeBoxCode(t *testing.T) {
	cases := []struct {
		input    string
		expected int
	}{
		{"B-0001", 1},
		{"b-0001", 1},
		{"B0001", 1},
		{"B_0012", 12},
		{"B 7", 7},
		{"42", 42},
		{" B-0042 ", 42},
		{"B-123456", 123456},
		{"999999", 999999},
		{"B-10001", 10001},
		{"", 0},
		{"B-", 0},
		{"B-0000", 0},
		{"0", 0},
		{"B--1", 0},
		{"BX-0001", 0},
		{"1234567", 0},
		{"box one", 0},
		{"B-12a", 0},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, DecodeBoxCode(tc.input), "input %q", tc.input)
	}
}

func TestEncodeBoxCode(t *testing.T) {
	assert.Equal(t, "B-0001", EncodeBoxCode(1))
	assert.Equal(t, "B-0042", EncodeBoxCode(42))
	assert.Equal(t, "B-9999", EncodeBoxCode(9999))
	assert.Equal(t, "B-10000", EncodeBoxCode(10000))
	assert.Equal(t, "B-123456", EncodeBoxCode(123456))
}

func TestBoxCodeRoundTrip(t *testing.T) {
	for _, ord := range []int{1, 99, 9999, 10000, 999999} {
		assert.Equal(t, ord, DecodeBoxCode(EncodeBoxCode(ord)))
	}
}
