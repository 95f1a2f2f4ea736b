package table

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-scripts/prodcrawl/internal/types"
)

var (
	linkHeader    = []string{"category", "URL"}
	productHeader = []string{"Category", "URL", "Brand", "Product Name", "Ingredients"}
	skippedHeader = []string{"Category", "URL"}
)

// WriteCategoryLinks writes the Link Collector output, replacing any existing file.
func WriteCategoryLinks(path string, links []types.CategoryLink) error {
	rows := make([][]string, 0, len(links))
	for _, l := range links {
		rows = append(rows, []string{l.Category, l.URL})
	}
	return writeTable(path, linkHeader, rows)
}

// WriteProducts writes the successful records. Absent fields become empty cells.
func WriteProducts(path string, records []types.ProductRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Category,
			r.URL,
			types.Value(r.Brand),
			types.Value(r.Name),
			types.Value(r.Ingredients),
		})
	}
	return writeTable(path, productHeader, rows)
}

// WriteSkipped writes the records of unavailable products.
func WriteSkipped(path string, records []types.SkippedRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Category, r.URL})
	}
	return writeTable(path, skippedHeader, rows)
}

func writeTable(path string, header []string, rows [][]string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows to %s: %w", path, err)
	}

	return file.Close()
}
