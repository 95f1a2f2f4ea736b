// Package browsertest provides a scripted browser.Browser for tests.
package browsertest

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-scripts/prodcrawl/internal/browser"
)

// Page is the scripted state of one URL
type Page struct {
	// HTML is returned by HTML().
	HTML string
	// Counts are returned by successive Count calls after navigating here;
	// the last value repeats once the script runs out.
	Counts []int
	// Blocks holds the raw hrefs of the anchors in each listing block.
	Blocks [][]string
	// Anchor reports whether ScrollIntoView finds its target.
	Anchor bool

	NavigateErr error
	WaitErr     error
	HTMLErr     error
	// Panic, when non-nil, makes HTML() panic with this value.
	Panic any
}

// Fake is an in-memory browser.Browser. Unknown URLs behave as blank pages.
type Fake struct {
	Pages map[string]*Page

	// Navigations records every URL passed to Navigate, in order.
	Navigations []string
	// Scrolls records every ScrollBy delta, in order.
	Scrolls []int
	// ReadsBeforeLinks records, for each Links call, how many Count calls
	// were made on the current page before it.
	ReadsBeforeLinks []int
	// Scripts records every script passed to Evaluate, in order.
	Scripts []string

	current string
	reads   int
}

var _ browser.Browser = (*Fake)(nil)

// New returns an empty Fake
func New() *Fake {
	return &Fake{Pages: make(map[string]*Page)}
}

// Add scripts url and returns the Fake for chaining.
func (f *Fake) Add(url string, p *Page) *Fake {
	f.Pages[url] = p
	return f
}

func (f *Fake) page() *Page {
	if p, ok := f.Pages[f.current]; ok {
		return p
	}
	return &Page{}
}

func (f *Fake) Navigate(url string) error {
	f.Navigations = append(f.Navigations, url)
	f.current = url
	f.reads = 0
	return f.page().NavigateErr
}

func (f *Fake) WaitReady(string, time.Duration) error {
	return f.page().WaitErr
}

func (f *Fake) Count(string) (int, error) {
	p := f.page()
	f.reads++
	if len(p.Counts) == 0 {
		return 0, nil
	}
	i := min(f.reads-1, len(p.Counts)-1)
	return p.Counts[i], nil
}

func (f *Fake) ScrollBy(dy int) error {
	f.Scrolls = append(f.Scrolls, dy)
	return nil
}

func (f *Fake) ScrollIntoView(selector string) error {
	if !f.page().Anchor {
		return fmt.Errorf("%w: %s", browser.ErrNotFound, selector)
	}
	return nil
}

func (f *Fake) Links(_ string, marker string) ([][]string, error) {
	f.ReadsBeforeLinks = append(f.ReadsBeforeLinks, f.reads)

	blocks := make([][]string, 0, len(f.page().Blocks))
	for _, anchors := range f.page().Blocks {
		var kept []string
		for _, href := range anchors {
			if strings.Contains(href, marker) {
				kept = append(kept, href)
			}
		}
		blocks = append(blocks, kept)
	}
	return blocks, nil
}

func (f *Fake) HTML() (string, error) {
	p := f.page()
	if p.Panic != nil {
		panic(p.Panic)
	}
	return p.HTML, p.HTMLErr
}

// Evaluate records script. res is left untouched.
func (f *Fake) Evaluate(script string, _ any) error {
	f.Scripts = append(f.Scripts, script)
	return nil
}

// Visited reports whether url was navigated to.
func (f *Fake) Visited(url string) bool {
	for _, u := range f.Navigations {
		if u == url {
			return true
		}
	}
	return false
}
