package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodeID(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		page     int
		product  string
		expected string
	}{
		{
			name:     "Simple product name",
			category: CategoryKitchen,
			page:     1,
			product:  "Kitchen Layout 1-1",
			expected: "kitchen_1_kitchen_layout_1_1",
		},
		{
			name:     "Special characters replaced",
			category: CategoryBedroom,
			page:     12,
			product:  "Queen Bed (Oak/Walnut)",
			expected: "bedroom_12_queen_bed__oak_walnut_",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NodeID(tt.category, tt.page, tt.product))
		})
	}
}

func TestNodeIDDeterministic(t *testing.T) {
	a := NodeID(CategoryKitchen, 3, "Urban Hob Station")
	b := NodeID(CategoryKitchen, 3, "Urban Hob Station")
	assert.Equal(t, a, b)
}
