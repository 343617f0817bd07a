package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// NodeID derives the stable upsert key for a product entry from its category,
// source page and product name. The same inputs always yield the same ID.
func NodeID(category Category, page int, product string) string {
	clean := strings.ToLower(nonAlphanumeric.ReplaceAllString(product, "_"))
	return fmt.Sprintf("%s_%d_%s", category, page, clean)
}
