package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/prodcrawl/internal/browser"
	"github.com/go-scripts/prodcrawl/internal/browser/browsertest"
)

const (
	shopBase = "https://shop.test/shop"
	product  = "https://shop.test/product/"
)

// testConfigYAML removes every collector pause so runs finish immediately.
const testConfigYAML = `
collector:
  base_url: https://shop.test/shop
  page_settle: 0s
  nudge_settle: 0s
  scroll_settle: 0s
`

type harness struct {
	dir     string
	globals *Globals
	deps    *deps
	stdout  bytes.Buffer
	opened  []browser.Options
	closed  int
}

func newHarness(t *testing.T, ctx context.Context, b browser.Browser) *harness {
	t.Helper()
	h := &harness{dir: t.TempDir()}

	cfgPath := filepath.Join(h.dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(testConfigYAML), 0o644))

	h.globals = &Globals{Config: cfgPath, LogLevel: "error", Quiet: true}
	h.deps = &deps{
		ctx: ctx,
		open: func(_ context.Context, opts browser.Options) (browser.Browser, func(), error) {
			h.opened = append(h.opened, opts)
			return b, func() { h.closed++ }, nil
		},
		stdout: &h.stdout,
		stderr: &bytes.Buffer{},
	}
	return h
}

func (h *harness) path(name string) string {
	return filepath.Join(h.dir, name)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestCollectWritesLinksAfterSuccessfulRun(t *testing.T) {
	fake := browsertest.New().
		Add(shopBase+"/cleanser?currentPage=1", &browsertest.Page{
			Counts: []int{2},
			Blocks: [][]string{{product + "a-P1"}, {product + "b-P2"}},
		}).
		Add(shopBase+"/cleanser?currentPage=2", &browsertest.Page{Counts: []int{0}})
	h := newHarness(t, context.Background(), fake)

	cmd := &CollectCmd{Output: h.path("out/links.csv"), Categories: []string{"cleanser"}}
	require.NoError(t, cmd.Run(h.globals, h.deps))

	assert.Equal(t, "category,URL\ncleanser,"+product+"a-P1\ncleanser,"+product+"b-P2\n", readFile(t, h.path("out/links.csv")))
	assert.Contains(t, h.stdout.String(), "Link collection complete.")
	assert.Equal(t, 1, h.closed)
}

func TestCollectFailureLeavesNoOutputFile(t *testing.T) {
	boom := errors.New("net::ERR_CONNECTION_RESET")
	fake := browsertest.New().
		Add(shopBase+"/cleanser?currentPage=1", &browsertest.Page{
			Counts: []int{1},
			Blocks: [][]string{{product + "a-P1"}},
		}).
		Add(shopBase+"/cleanser?currentPage=2", &browsertest.Page{NavigateErr: boom})
	h := newHarness(t, context.Background(), fake)

	cmd := &CollectCmd{Output: h.path("links.csv"), Categories: []string{"cleanser"}}
	err := cmd.Run(h.globals, h.deps)

	assert.ErrorIs(t, err, boom)
	_, statErr := os.Stat(h.path("links.csv"))
	assert.ErrorIs(t, statErr, os.ErrNotExist)
	assert.Equal(t, 1, h.closed, "browser is released on failure too")
}

func TestCollectWindowMode(t *testing.T) {
	tests := []struct {
		name         string
		headless     bool
		wantHeadless bool
	}{
		{name: "visible window by default", headless: false, wantHeadless: false},
		{name: "headless on request", headless: true, wantHeadless: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := browsertest.New()
			h := newHarness(t, context.Background(), fake)

			cmd := &CollectCmd{Output: h.path("links.csv"), Categories: []string{"cleanser"}, Headless: tt.headless}
			require.NoError(t, cmd.Run(h.globals, h.deps))

			require.Len(t, h.opened, 1)
			assert.Equal(t, tt.wantHeadless, h.opened[0].Headless)
		})
	}
}

const extractInput = `category,URL
cleanser,https://shop.test/product/a-P1
face-mask,https://shop.test/product/m-P2
cleanser,
cleanser,
cleanser,https://shop.test/product/b-P3
`

func writeInput(t *testing.T, h *harness) string {
	t.Helper()
	path := h.path("urls.csv")
	require.NoError(t, os.WriteFile(path, []byte(extractInput), 0o644))
	return path
}

func TestExtractVisitsOnlyNonEmptyURLs(t *testing.T) {
	fake := browsertest.New()
	h := newHarness(t, context.Background(), fake)

	cmd := &ExtractCmd{
		Input:          writeInput(t, h),
		ProductsOutput: h.path("products.csv"),
		SkippedOutput:  h.path("skipped.csv"),
	}
	require.NoError(t, cmd.Run(h.globals, h.deps))

	assert.Equal(t, []string{product + "a-P1", product + "m-P2", product + "b-P3"}, fake.Navigations)
	assert.Contains(t, h.stdout.String(), "Scraping complete.")
	// extraction runs headless by default
	require.Len(t, h.opened, 1)
	assert.True(t, h.opened[0].Headless)
}

func TestExtractCategoryFilterLimitsVisits(t *testing.T) {
	fake := browsertest.New().
		Add(product+"a-P1", &browsertest.Page{HTML: `<span data-at="product_name">A</span>`}).
		Add(product+"b-P3", &browsertest.Page{HTML: `<p>Sorry, this product is not available</p>`})
	h := newHarness(t, context.Background(), fake)

	cmd := &ExtractCmd{
		Input:          writeInput(t, h),
		ProductsOutput: h.path("products.csv"),
		SkippedOutput:  h.path("skipped.csv"),
		Category:       "cleanser",
	}
	require.NoError(t, cmd.Run(h.globals, h.deps))

	assert.Equal(t, []string{product + "a-P1", product + "b-P3"}, fake.Navigations)
	assert.Equal(t, "Category,URL,Brand,Product Name,Ingredients\ncleanser,"+product+"a-P1,,A,\n", readFile(t, h.path("products.csv")))
	assert.Equal(t, "Category,URL\ncleanser,"+product+"b-P3\n", readFile(t, h.path("skipped.csv")))
}

// cancelOnNavigate cancels the run as soon as the first page is requested.
type cancelOnNavigate struct {
	*browsertest.Fake
	cancel context.CancelFunc
}

func (c *cancelOnNavigate) Navigate(url string) error {
	err := c.Fake.Navigate(url)
	c.cancel()
	return err
}

func TestExtractInterruptedStillWritesBothFiles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fake := browsertest.New().
		Add(product+"a-P1", &browsertest.Page{HTML: `<a data-at="brand_name">Acme</a>`})
	h := newHarness(t, ctx, &cancelOnNavigate{Fake: fake, cancel: cancel})

	cmd := &ExtractCmd{
		Input:          writeInput(t, h),
		ProductsOutput: h.path("products.csv"),
		SkippedOutput:  h.path("skipped.csv"),
	}
	err := cmd.Run(h.globals, h.deps)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{product + "a-P1"}, fake.Navigations)
	assert.Equal(t, "Category,URL,Brand,Product Name,Ingredients\ncleanser,"+product+"a-P1,Acme,,\n", readFile(t, h.path("products.csv")))
	assert.Equal(t, "Category,URL\n", readFile(t, h.path("skipped.csv")))
	assert.NotContains(t, h.stdout.String(), "Scraping complete.")
	assert.Equal(t, 1, h.closed)
}

func TestExtractMissingInputIsFatal(t *testing.T) {
	fake := browsertest.New()
	h := newHarness(t, context.Background(), fake)

	cmd := &ExtractCmd{Input: h.path("absent.csv")}
	err := cmd.Run(h.globals, h.deps)

	assert.ErrorContains(t, err, "read input")
	assert.Empty(t, h.opened, "no browser is started without input")
}
