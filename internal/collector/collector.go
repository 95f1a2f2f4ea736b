// Package collector implements the Link Collector: it pages through
// category listings and gathers product page URLs.
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/prodcrawl/internal/browser"
	"github.com/go-scripts/prodcrawl/internal/config"
	"github.com/go-scripts/prodcrawl/internal/progress"
	"github.com/go-scripts/prodcrawl/internal/types"
)

// Collector drives one browser through category listings
type Collector struct {
	browser browser.Browser
	cfg     config.Collector
	log     *log.Logger
	spinner *progress.Spinner
}

// New creates a Collector. spinner may be nil.
func New(b browser.Browser, cfg config.Collector, logger *log.Logger, spinner *progress.Spinner) *Collector {
	return &Collector{
		browser: b,
		cfg:     cfg,
		log:     logger,
		spinner: spinner,
	}
}

// Run scrapes every category in order. Each category gets its own seen set,
// so a URL listed under two categories is kept once per category.
//
// Without IsolatePages the first error ends the run. With it, the failing
// category is logged and the next one starts. Links gathered before an
// error are returned either way.
func (c *Collector) Run(ctx context.Context, categories []string) ([]types.CategoryLink, error) {
	defer c.spinner.Stop()

	var all []types.CategoryLink
	for _, category := range categories {
		seen := make(map[string]struct{})
		links, err := c.ScrapeCategory(ctx, category, seen)
		all = append(all, links...)
		if err == nil {
			c.log.Info("Finished category", "category", category, "links", len(links))
			continue
		}

		if !c.cfg.IsolatePages || ctx.Err() != nil {
			return all, err
		}
		c.spinner.Stop()
		c.log.Error("Category aborted, continuing with next", "category", category, "links", len(links), "err", err)
	}
	return all, nil
}

// ScrapeCategory pages through one category until MaxPages or the first
// page without product blocks. Every new product URL is added to seen and
// returned in discovery order.
func (c *Collector) ScrapeCategory(ctx context.Context, category string, seen map[string]struct{}) ([]types.CategoryLink, error) {
	var links []types.CategoryLink

	for page := 1; page <= c.cfg.MaxPages; page++ {
		pageURL := c.PageURL(category, page)
		c.pageLog("Loading page", "category", category, "page", page, "url", pageURL)
		c.spinner.Page(category, page, pageURL)

		count, err := c.loadPage(ctx, category, page, pageURL)
		if err != nil {
			return links, fmt.Errorf("category %q page %d: %w", category, page, err)
		}

		c.pageLog("Collected products", "category", category, "page", page, "blocks", count)
		if count == 0 {
			c.log.Info("No products found, stopping pagination", "category", category, "page", page)
			break
		}

		blocks, err := c.browser.Links(c.cfg.BlockSelector, c.cfg.ProductPathMarker)
		if err != nil {
			return links, fmt.Errorf("category %q page %d: extract links: %w", category, page, err)
		}

		added := 0
		for _, anchors := range blocks {
			for _, href := range anchors {
				if href == "" {
					continue
				}
				if _, ok := seen[href]; ok {
					continue
				}
				seen[href] = struct{}{}
				links = append(links, types.CategoryLink{Category: category, URL: href})
				added++
			}
		}
		c.log.Debug("New product links", "category", category, "page", page, "added", added)
	}

	return links, nil
}

// PageURL builds the listing URL of one page of a category
func (c *Collector) PageURL(category string, page int) string {
	return fmt.Sprintf("%s/%s?currentPage=%d", c.cfg.BaseURL, category, page)
}

// loadPage navigates to a listing page and scrolls until the number of
// product blocks has stopped changing. It returns that final count.
func (c *Collector) loadPage(ctx context.Context, category string, page int, pageURL string) (int, error) {
	if err := c.browser.Navigate(pageURL); err != nil {
		return 0, fmt.Errorf("navigate: %w", err)
	}
	if err := pause(ctx, c.cfg.PageSettle); err != nil {
		return 0, err
	}

	// a one pixel scroll wakes up the lazy loader
	if err := c.browser.ScrollBy(1); err != nil {
		return 0, fmt.Errorf("scroll: %w", err)
	}
	if err := pause(ctx, c.cfg.NudgeSettle); err != nil {
		return 0, err
	}

	return c.waitStable(ctx, category, page)
}

// waitStable counts product blocks after every scroll step and returns once
// the count has been the same for StableReads consecutive reads.
func (c *Collector) waitStable(ctx context.Context, category string, page int) (int, error) {
	previous, current, unchanged := -1, 0, 0

	for unchanged < c.cfg.StableReads {
		n, err := c.browser.Count(c.cfg.BlockSelector)
		if err != nil {
			return 0, fmt.Errorf("count blocks: %w", err)
		}
		current = n

		if current == previous {
			unchanged++
		} else {
			unchanged = 0
		}
		previous = current
		c.spinner.Blocks(category, page, current, unchanged, c.cfg.StableReads)

		if err := c.browser.ScrollBy(c.cfg.ScrollStep); err != nil {
			return 0, fmt.Errorf("scroll: %w", err)
		}
		if err := pause(ctx, c.cfg.ScrollSettle); err != nil {
			return 0, err
		}
	}

	return current, nil
}

// pageLog reports per-page progress, at debug level while the spinner shows it
func (c *Collector) pageLog(msg string, keyvals ...any) {
	if c.spinner != nil {
		c.log.Debug(msg, keyvals...)
		return
	}
	c.log.Info(msg, keyvals...)
}

// pause sleeps for d or until ctx is done
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
