package progress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerCountsAndDraws(t *testing.T) {
	var out bytes.Buffer
	tr := NewTracker(&out, "Scraping products")

	tr.SetTotal(4)
	assert.Equal(t, 0.0, tr.Percent())

	tr.Increment()
	tr.Increment()
	assert.Equal(t, 0.5, tr.Percent())
	assert.Contains(t, out.String(), "Scraping products")
	assert.Contains(t, out.String(), "2/4")

	tr.Increment()
	tr.Increment()
	assert.Equal(t, 1.0, tr.Percent())
	assert.True(t, strings.HasSuffix(out.String(), "\n"), "bar ends with a newline once complete")
}

func TestNilTypesAreSilent(t *testing.T) {
	tr := NewTracker(nil, "ignored")
	assert.Nil(t, tr)
	tr.SetTotal(3)
	tr.Increment()
	assert.Equal(t, 0.0, tr.Percent())

	sp := NewSpinner(nil)
	assert.Nil(t, sp)
	sp.Page("cleanser", 1, "https://shop.test")
	sp.Blocks("cleanser", 1, 10, 2, 7)
	sp.Stop()
}

func TestSpinnerLifecycle(t *testing.T) {
	var out bytes.Buffer
	sp := NewSpinner(&out)

	sp.Page("cleanser", 2, "https://shop.test/shop/cleanser?currentPage=2")
	sp.Blocks("cleanser", 2, 12, 3, 7)
	sp.Stop()
}

func TestFormatURL(t *testing.T) {
	short := "https://shop.test/a"
	assert.Equal(t, short, formatURL(short))

	long := "https://www.sephora.com/shop/eye-treatment-dark-circle-treatment?currentPage=12"
	got := formatURL(long)
	assert.LessOrEqual(t, len(got), 60)
	assert.True(t, strings.HasPrefix(got, "www.sephora.com..."))
	assert.True(t, strings.HasSuffix(got, "currentPage=12"))
}

func TestSummary(t *testing.T) {
	got := Summary("Scraping complete.", "products: 3", "skipped: 1")

	assert.Contains(t, got, "Scraping complete.")
	assert.Contains(t, got, "products: 3")
	assert.Contains(t, got, "skipped: 1")
}

func TestBreakdown(t *testing.T) {
	b := NewBreakdown("products", "skipped", "failed")
	b.Add("cleanser", 0)
	b.Add("face-mask", 1)
	b.Add("cleanser", 0)
	b.Add("cleanser", 2)
	b.Add("cleanser", 9)

	assert.Equal(t, 2, b.Count("cleanser", 0))
	assert.Equal(t, 1, b.Count("cleanser", 2))
	assert.Equal(t, 0, b.Count("lip-balm", 0))

	var out bytes.Buffer
	b.Render(&out)
	rendered := out.String()

	assert.Contains(t, strings.ToLower(rendered), "products")
	assert.Contains(t, strings.ToLower(rendered), "total")
	assert.Less(t, strings.Index(rendered, "cleanser"), strings.Index(rendered, "face-mask"), "first-seen order")
}

func TestBreakdownRendersNothingWhenEmpty(t *testing.T) {
	var out bytes.Buffer
	NewBreakdown("links").Render(&out)
	assert.Empty(t, out.String())

	NewBreakdown("links").Render(nil)
}

func TestTrackerClear(t *testing.T) {
	var out bytes.Buffer
	tr := NewTracker(&out, "Scraping products")

	tr.Clear()
	assert.Empty(t, out.String(), "nothing to clear before the bar is drawn")

	tr.SetTotal(2)
	tr.Increment()
	out.Reset()
	tr.Clear()
	assert.Equal(t, "\r\x1b[K", out.String())

	tr.Increment()
	out.Reset()
	tr.Clear()
	assert.Empty(t, out.String(), "a finished bar stays on screen")

	var nilTracker *Tracker
	nilTracker.Clear()
}
