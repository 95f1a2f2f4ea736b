package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/go-scripts/prodcrawl/internal/types"
)

// Selectors locate the product fields in a rendered page
type Selectors struct {
	Name              string
	Brand             string
	Ingredients       string
	UnavailableMarker string
}

// Page is what one product page yields
type Page struct {
	Unavailable bool
	Name        *string
	Brand       *string
	Ingredients *string
}

// Parse reads a rendered product page. When any text node contains the
// unavailability marker the page is reported as unavailable and no field
// is extracted.
func Parse(source string, sel Selectors) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(source))
	if err != nil {
		return Page{}, fmt.Errorf("parse html: %w", err)
	}

	if sel.UnavailableMarker != "" && containsText(doc.Nodes, sel.UnavailableMarker) {
		return Page{Unavailable: true}, nil
	}

	return Page{
		Name:        firstText(doc, sel.Name),
		Brand:       firstText(doc, sel.Brand),
		Ingredients: ingredients(doc, sel.Ingredients),
	}, nil
}

// firstText returns the trimmed text of the first match, or nil when
// nothing matches. A match with no text gives an empty string.
func firstText(doc *goquery.Document, selector string) *string {
	if selector == "" {
		return nil
	}
	s := doc.Find(selector).First()
	if s.Length() == 0 {
		return nil
	}
	return types.Text(strings.TrimSpace(s.Text()))
}

// ingredients joins the text of every div nested in the first container,
// in document order, skipping divs without text.
func ingredients(doc *goquery.Document, selector string) *string {
	if selector == "" {
		return nil
	}
	container := doc.Find(selector).First()
	if container.Length() == 0 {
		return nil
	}

	var texts []string
	container.Find("div").Each(func(_ int, div *goquery.Selection) {
		if t := strippedText(div.Nodes[0]); t != "" {
			texts = append(texts, t)
		}
	})
	if len(texts) == 0 {
		return nil
	}
	return types.Text(strings.Join(texts, " "))
}

// strippedText concatenates every descendant text node of n, each trimmed,
// without a separator.
func strippedText(n *html.Node) string {
	var b strings.Builder
	for d := range n.Descendants() {
		if d.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(d.Data))
		}
	}
	return b.String()
}

// containsText reports whether a single text or comment node below roots
// contains marker. Text split across elements does not match.
func containsText(roots []*html.Node, marker string) bool {
	for _, root := range roots {
		for n := range root.Descendants() {
			if (n.Type == html.TextNode || n.Type == html.CommentNode) && strings.Contains(n.Data, marker) {
				return true
			}
		}
	}
	return false
}
