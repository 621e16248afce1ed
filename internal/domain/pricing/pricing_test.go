package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectivePrice(t *testing.T) {
	tests := []struct {
		name  string
		base  int64
		dt    DiscountType
		value int64
		want  int64
	}{
		{"no discount", 100, DiscountNone, 0, 100},
		{"money discount", 100, DiscountMoney, 10, 90},
		{"money discount full price", 100, DiscountMoney, 100, 0},
		{"money discount exceeding price clamps at zero", 100, DiscountMoney, 150, 0},
		{"percent zero", 100, DiscountPercent, 0, 100},
		{"percent 18", 100, DiscountPercent, 18, 82},
		{"percent 100", 100, DiscountPercent, 100, 0},
		{"percent rounds half up", 150, DiscountPercent, 33, 100},            // 49.5 -> 50
		{"percent rounds fractional reduction", 103, DiscountPercent, 33, 69}, // 33.99 -> 34
		{"zero base", 0, DiscountPercent, 50, 0},
		{"negative base clamps", -5, DiscountNone, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectivePrice(tt.base, tt.dt, tt.value))
		})
	}
}

func TestEffectivePrice_Bounds(t *testing.T) {
	// Money discount within [0, base] never yields a negative price.
	for _, d := range []int64{0, 1, 50, 99, 100} {
		got := EffectivePrice(100, DiscountMoney, d)
		assert.Equal(t, int64(100-d), got)
		assert.GreaterOrEqual(t, got, int64(0))
	}

	// Percent discount within [0, 100] stays within [0, base].
	for _, p := range []int64{0, 1, 25, 50, 99, 100} {
		got := EffectivePrice(200, DiscountPercent, p)
		assert.GreaterOrEqual(t, got, int64(0))
		assert.LessOrEqual(t, got, int64(200))
	}
}

func TestValidateDiscount(t *testing.T) {
	require.NoError(t, ValidateDiscount(100, DiscountMoney, 100))
	require.NoError(t, ValidateDiscount(100, DiscountPercent, 100))
	require.NoError(t, ValidateDiscount(100, DiscountNone, 0))

	assert.ErrorIs(t, ValidateDiscount(100, DiscountMoney, 101), ErrDiscountExceedsPrice)
	assert.ErrorIs(t, ValidateDiscount(100, DiscountPercent, 101), ErrPercentOutOfRange)
	assert.ErrorIs(t, ValidateDiscount(100, DiscountMoney, -1), ErrNegativeDiscount)
}
