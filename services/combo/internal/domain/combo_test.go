package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultComboConfig())
	require.NoError(t, err)
	return e
}

func TestCalculateComboDiscount(t *testing.T) {
	e := newDefaultEngine(t)

	tests := []struct {
		count int
		want  int64
	}{
		{0, 0},
		{2, 0},
		{3, 1000},
		{4, 1000},
		{5, 1500},
		{6, 1500},
		{7, 2000},
		{10, 2000},
		{25, 2000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.CalculateComboDiscount(10000, tt.count), "count=%d", tt.count)
	}
}

func TestCalculateComboDiscount_RoundsHalfAwayFromZero(t *testing.T) {
	e := newDefaultEngine(t)

	// 10% of 2345 is 234.5
	assert.Equal(t, int64(235), e.CalculateComboDiscount(2345, 3))
	// 15% of 1001 is 150.15
	assert.Equal(t, int64(150), e.CalculateComboDiscount(1001, 5))
	assert.Equal(t, int64(0), e.CalculateComboDiscount(0, 7))
}

func TestComboSavingsPercentage(t *testing.T) {
	e := newDefaultEngine(t)

	assert.Equal(t, 0.0, e.ComboSavingsPercentage(2))
	assert.Equal(t, 10.0, e.ComboSavingsPercentage(3))
	assert.Equal(t, 15.0, e.ComboSavingsPercentage(5))
	assert.Equal(t, 20.0, e.ComboSavingsPercentage(9))
}

func TestTierSelection_DuplicateThresholdLastWins(t *testing.T) {
	cfg := DefaultComboConfig()
	cfg.Tiers = Tiers{
		{MinProducts: 3, Discount: decimal.RequireFromString("0.10")},
		{MinProducts: 5, Discount: decimal.RequireFromString("0.15")},
		{MinProducts: 5, Discount: decimal.RequireFromString("0.18")},
	}
	e, err := NewEngine(cfg)
	require.NoError(t, err)

	assert.Equal(t, int64(1800), e.CalculateComboDiscount(10000, 5))
	assert.Equal(t, 18.0, e.ComboSavingsPercentage(6))
	assert.Equal(t, int64(1000), e.CalculateComboDiscount(10000, 4))
}

func TestTierSelection_UnorderedConfig(t *testing.T) {
	cfg := DefaultComboConfig()
	cfg.Tiers = Tiers{
		{MinProducts: 7, Discount: decimal.RequireFromString("0.20")},
		{MinProducts: 3, Discount: decimal.RequireFromString("0.10")},
		{MinProducts: 5, Discount: decimal.RequireFromString("0.15")},
	}
	e, err := NewEngine(cfg)
	require.NoError(t, err)

	assert.Equal(t, int64(1000), e.CalculateComboDiscount(10000, 4))
	assert.Equal(t, int64(1500), e.CalculateComboDiscount(10000, 6))
	assert.Equal(t, int64(2000), e.CalculateComboDiscount(10000, 8))
	// Config keeps the caller's order.
	assert.Equal(t, 7, e.Config().Tiers[0].MinProducts)
}

func TestIsValidCombo(t *testing.T) {
	e := newDefaultEngine(t)

	t.Run("price below minimum", func(t *testing.T) {
		v := e.IsValidCombo(1500, 4, []string{"Electronics"})
		assert.False(t, v.Valid)
		require.Len(t, v.Errors, 1)
		assert.Equal(t, "Combo total must be at least 2000", v.Errors[0])
	})

	t.Run("too few products", func(t *testing.T) {
		v := e.IsValidCombo(3000, 2, []string{"Electronics"})
		assert.False(t, v.Valid)
		require.Len(t, v.Errors, 1)
		assert.Equal(t, "Combo must contain at least 3 products", v.Errors[0])
	})

	t.Run("too many products", func(t *testing.T) {
		v := e.IsValidCombo(3000, 11, nil)
		assert.False(t, v.Valid)
		assert.Equal(t, []string{"Combo can contain at most 10 products"}, v.Errors)
	})

	t.Run("unknown category", func(t *testing.T) {
		v := e.IsValidCombo(3000, 4, []string{"NotARealCategory"})
		assert.False(t, v.Valid)
		require.Len(t, v.Errors, 1)
		assert.Contains(t, v.Errors[0], "NotARealCategory")
	})

	t.Run("disallowed categories share one error", func(t *testing.T) {
		v := e.IsValidCombo(3000, 4, []string{"Toys", "Electronics", "Garden"})
		assert.Equal(t, []string{"Categories not allowed in combos: Toys, Garden"}, v.Errors)
	})

	t.Run("all violations reported", func(t *testing.T) {
		v := e.IsValidCombo(100, 1, []string{"Toys"})
		assert.False(t, v.Valid)
		assert.Len(t, v.Errors, 3)
	})

	t.Run("valid", func(t *testing.T) {
		v := e.IsValidCombo(3000, 4, []string{"Electronics", "Fashion"})
		assert.True(t, v.Valid)
		assert.NotNil(t, v.Errors)
		assert.Empty(t, v.Errors)
	})

	t.Run("boundaries are inclusive", func(t *testing.T) {
		assert.True(t, e.IsValidCombo(2000, 3, nil).Valid)
		assert.True(t, e.IsValidCombo(2000, 10, []string{"Home & Kitchen"}).Valid)
	})

	t.Run("category match is exact", func(t *testing.T) {
		assert.False(t, e.IsValidCombo(3000, 4, []string{"electronics"}).Valid)
	})
}

func TestQualifiesForFreeShipping(t *testing.T) {
	e := newDefaultEngine(t)

	assert.False(t, e.QualifiesForFreeShipping(4999))
	assert.True(t, e.QualifiesForFreeShipping(5000))
}

func TestQuote(t *testing.T) {
	e := newDefaultEngine(t)

	q := e.Quote(10000, 5, []string{"Books"})
	assert.True(t, q.Validation.Valid)
	assert.Equal(t, int64(1500), q.Discount)
	assert.Equal(t, int64(8500), q.FinalPrice)
	assert.Equal(t, 15.0, q.SavingsPercentage)
	assert.True(t, q.FreeShipping)

	// Discount would take 5500 below the shipping threshold.
	q = e.Quote(5500, 3, nil)
	assert.Equal(t, int64(550), q.Discount)
	assert.False(t, q.FreeShipping)

	q = e.Quote(10000, 2, nil)
	assert.False(t, q.Validation.Valid)
	assert.Zero(t, q.Discount)
	assert.Zero(t, q.SavingsPercentage)
	assert.Equal(t, int64(10000), q.FinalPrice)
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	cfg := DefaultComboConfig()
	cfg.Tiers = nil
	cfg.MaxProducts = 1

	_, err := NewEngine(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one discount tier is required")
	assert.Contains(t, err.Error(), "max products (1) must be >= min products (3)")
}

func TestEngine_ConfigIsCopy(t *testing.T) {
	e := newDefaultEngine(t)

	cfg := e.Config()
	cfg.AllowedCategories[0] = "Toys"
	cfg.Tiers[0].MinProducts = 1

	assert.True(t, e.IsValidCombo(3000, 4, []string{"Electronics"}).Valid)
	assert.Equal(t, int64(0), e.CalculateComboDiscount(10000, 2))
}
