package colorconv

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromValues(t *testing.T) {
	tests := []struct {
		name string
		in   []any
		want RGB
	}{
		{"ints", []any{255, 128, 0}, RGB{255, 128, 0}},
		{"floats truncate", []any{12.9, 0.5, 254.99}, RGB{12, 0, 254}},
		{"mixed widths", []any{uint8(1), int64(2), float32(3)}, RGB{1, 2, 3}},
		{"bools are numeric", []any{true, false, 1}, RGB{1, 0, 1}},
		{"json numbers", []any{json.Number("10"), json.Number("20"), json.Number("30")}, RGB{10, 20, 30}},
		{"json number exponent and fraction", []any{json.Number("12.5"), json.Number("1e2"), json.Number("2.55e2")}, RGB{12, 100, 255}},
		{"out of range wraps", []any{256, 300, -1}, RGB{0, 44, 255}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromValues(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFromValuesRejectsNonNumeric(t *testing.T) {
	for _, in := range [][]any{
		{"255", 0, 0},
		{0, nil, 0},
		{0, 0, []int{1}},
		{json.Number("abc"), 0, 0},
	} {
		_, err := FromValues(in)
		require.ErrorIs(t, err, ErrTypeConversion, "input %v", in)
	}
}

func TestFromValuesWrongLength(t *testing.T) {
	_, err := FromValues([]any{1, 2})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTypeConversion)
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want RGB
	}{
		{"#ff0000", RGB{255, 0, 0}},
		{"0000ff", RGB{0, 0, 255}},
		{"#f80", RGB{255, 136, 0}},
		{"12, 34,56", RGB{12, 34, 56}},
		{"  #FFFFFF ", RGB{255, 255, 255}},
	}

	for _, tc := range tests {
		got, err := Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "#12", "zzzzzz", "1,2", "1,2,x", "1,2,300"} {
		_, err := Parse(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestHex(t *testing.T) {
	assert.Equal(t, "#ff8000", RGB{255, 128, 0}.Hex())
	assert.Equal(t, "#000000", RGB{}.String())
}
