// Package browser wraps a single chromedp session behind the small set of
// page primitives the pipelines need.
package browser

import (
	"errors"
	"math/rand/v2"
	"time"
)

var (
	// ErrSessionStart is returned when the browser cannot be launched.
	ErrSessionStart = errors.New("browser session failed to start")
	// ErrNotFound is returned when a selector matches nothing.
	ErrNotFound = errors.New("element not found")
)

// Browser is the page capability the pipelines drive. Implementations are
// bound to one tab and are not safe for concurrent use.
type Browser interface {
	// Navigate loads url in the tab.
	Navigate(url string) error
	// WaitReady blocks until selector is present in the DOM or timeout elapses.
	WaitReady(selector string, timeout time.Duration) error
	// Count returns how many elements currently match selector.
	Count(selector string) (int, error)
	// ScrollBy scrolls the window vertically by dy pixels.
	ScrollBy(dy int) error
	// ScrollIntoView scrolls the first element matching selector into view.
	// It returns ErrNotFound when nothing matches.
	ScrollIntoView(selector string) error
	// Links returns, for every element matching blockSelector, the resolved
	// href of each anchor inside it whose href attribute contains marker.
	Links(blockSelector, marker string) ([][]string, error)
	// HTML returns the rendered document markup.
	HTML() (string, error)
	// Evaluate runs a script in the page and stores its result in res.
	Evaluate(script string, res any) error
}

// PickUserAgent returns a random entry of pool, or "" for an empty pool so
// Chrome keeps its own user agent.
func PickUserAgent(pool []string, intn func(int) int) string {
	if len(pool) == 0 {
		return ""
	}
	if intn == nil {
		intn = rand.IntN
	}
	return pool[intn(len(pool))]
}
