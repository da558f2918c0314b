package numeric

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToNumber(t *testing.T) {
	tests := []struct {
		in   any
		name string
		want float64
	}{
		{name: "thousands and percent", in: "1,234.5%", want: 1234.5},
		{name: "empty", in: "", want: 0},
		{name: "letters", in: "abc", want: 0},
		{name: "nil", in: nil, want: 0},
		{name: "surrounding whitespace", in: "  0.0123 ", want: 0.0123},
		{name: "dash placeholder", in: "-", want: 0},
		{name: "negative", in: "-0.5", want: -0.5},
		{name: "float passthrough", in: 0.15, want: 0.15},
		{name: "int", in: 3, want: 3},
		{name: "nan string", in: "NaN", want: 0},
		{name: "infinity string", in: "inf", want: 0},
		{name: "bool", in: true, want: 0},
		{name: "hex float", in: "0x1p-2", want: 0},
		{name: "signed hex", in: "-0X10", want: 0},
		{name: "leading zero decimal", in: "0.25", want: 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToNumber(tt.in))
		})
	}
}

func TestToNullable(t *testing.T) {
	assert.Nil(t, ToNullable(""))
	assert.Nil(t, ToNullable("  % "))
	assert.Nil(t, ToNullable(nil))
	assert.Nil(t, ToNullable("n/a"))

	zero := ToNullable("0")
	require.NotNil(t, zero)
	assert.Equal(t, 0.0, *zero)

	v := ToNullable("1,000")
	require.NotNil(t, v)
	assert.Equal(t, 1000.0, *v)
}

func TestToNullable_DecodedJSON(t *testing.T) {
	var row map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"a": 0.1, "b": "0.2", "c": null}`), &row))

	assert.Equal(t, 0.1, *ToNullable(row["a"]))
	assert.Equal(t, 0.2, *ToNullable(row["b"]))
	assert.Nil(t, ToNullable(row["c"]))
	assert.Nil(t, ToNullable(row["missing"]))
}

func TestEqual(t *testing.T) {
	one, other := 1.0, 1.0
	two := 2.0

	assert.True(t, Equal(nil, nil))
	assert.True(t, Equal(&one, &other))
	assert.False(t, Equal(&one, &two))
	assert.False(t, Equal(nil, &one))
	assert.False(t, Equal(&one, nil))
}
