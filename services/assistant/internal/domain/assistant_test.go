package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func products(n int) []ProductContext {
	out := make([]ProductContext, n)
	for i := range out {
		out[i] = ProductContext{ID: fmt.Sprintf("p-%d", i+1), Name: fmt.Sprintf("Product %d", i+1)}
	}
	return out
}

func TestFilterKnown(t *testing.T) {
	known := products(8)

	got := FilterKnown([]string{"p-3", "ghost", "p-1", "p-3", "p-7", "p-2", "p-8", "p-5"}, known)

	assert.Equal(t, []string{"p-3", "p-1", "p-7", "p-2", "p-8"}, got)
}

func TestFilterKnown_NoneKnown(t *testing.T) {
	got := FilterKnown([]string{"x", "y"}, products(2))

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFirstIDs(t *testing.T) {
	assert.Equal(t, []string{"p-1", "p-2", "p-3", "p-4", "p-5"}, FirstIDs(products(9)))
	assert.Equal(t, []string{"p-1", "p-2"}, FirstIDs(products(2)))
	assert.Empty(t, FirstIDs(nil))
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleSystem.Valid())
	assert.False(t, Role("tool").Valid())
}

func TestProductContext_Line(t *testing.T) {
	was := int64(12999)
	p := ProductContext{
		ID: "p-1", Name: "Blender", Category: "Home & Kitchen",
		Price: 9905, OriginalPrice: &was, Rating: 4.3, Description: "700W",
	}

	assert.Equal(t, "- [p-1] Blender | Home & Kitchen | 99.05 (was 129.99) | rating 4.3 | out of stock | 700W", p.Line())
}
