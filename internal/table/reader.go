// Package table reads and writes the delimited files exchanged between
// the two pipelines.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-scripts/prodcrawl/internal/types"
)

// ReadCategoryLinks reads a category,URL table from path.
func ReadCategoryLinks(path string) ([]types.CategoryLink, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	links, err := DecodeCategoryLinks(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return links, nil
}

// DecodeCategoryLinks parses a table with a header row naming a category
// and a URL column (matched case-insensitively, extra columns ignored).
// Rows whose URL is empty are dropped.
func DecodeCategoryLinks(r io.Reader) ([]types.CategoryLink, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	categoryCol, urlCol := -1, -1
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		switch name {
		case "category":
			categoryCol = i
		case "url":
			urlCol = i
		}
	}
	if categoryCol < 0 || urlCol < 0 {
		return nil, fmt.Errorf("header %v must contain category and URL columns", header)
	}

	var links []types.CategoryLink
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		url := strings.TrimSpace(cell(row, urlCol))
		if url == "" {
			continue
		}
		links = append(links, types.CategoryLink{
			Category: strings.TrimSpace(cell(row, categoryCol)),
			URL:      url,
		})
	}
	return links, nil
}

// FilterCategory keeps the links of one category. An empty category keeps all.
func FilterCategory(links []types.CategoryLink, category string) []types.CategoryLink {
	if category == "" {
		return links
	}
	var kept []types.CategoryLink
	for _, l := range links {
		if l.Category == category {
			kept = append(kept, l)
		}
	}
	return kept
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
