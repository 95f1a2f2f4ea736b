package types

// CategoryLink is a product page found on a category listing
type CategoryLink struct {
	Category string
	URL      string
}

// ProductRecord holds the fields scraped from one product page.
// A nil field means its element was not on the page.
type ProductRecord struct {
	Category    string
	URL         string
	Brand       *string
	Name        *string
	Ingredients *string
}

// SkippedRecord is a product page that reported itself unavailable
type SkippedRecord struct {
	Category string
	URL      string
}

// Text returns a pointer to s, for filling optional record fields.
func Text(s string) *string {
	return &s
}

// Value dereferences an optional field, returning "" when absent.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
