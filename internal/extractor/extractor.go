// Package extractor implements the Detail Extractor: it visits product
// pages and pulls name, brand and ingredients out of the rendered HTML.
package extractor

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/prodcrawl/internal/browser"
	"github.com/go-scripts/prodcrawl/internal/config"
	"github.com/go-scripts/prodcrawl/internal/progress"
	"github.com/go-scripts/prodcrawl/internal/types"
)

// Result is the outcome of an extraction run
type Result struct {
	Records []types.ProductRecord
	Skipped []types.SkippedRecord
	// Failed lists the items dropped after an error. They are logged and
	// never written to a table.
	Failed []*ItemError
}

// Extractor visits product pages one after another with a single browser
type Extractor struct {
	browser   browser.Browser
	cfg       config.Extractor
	selectors Selectors
	log       *log.Logger
	tracker   *progress.Tracker
}

// New creates an Extractor. tracker may be nil.
func New(b browser.Browser, cfg config.Extractor, logger *log.Logger, tracker *progress.Tracker) *Extractor {
	return &Extractor{
		browser: b,
		cfg:     cfg,
		selectors: Selectors{
			Name:              cfg.NameSelector,
			Brand:             cfg.BrandSelector,
			Ingredients:       cfg.IngredientsSelector,
			UnavailableMarker: cfg.UnavailableMarker,
		},
		log:     logger,
		tracker: tracker,
	}
}

// Run visits every item in order. A failing item is logged and recorded in
// Result.Failed; only cancellation of ctx ends the loop early, in which case
// the partial Result is returned together with ctx's error.
func (e *Extractor) Run(ctx context.Context, items []types.CategoryLink) (Result, error) {
	var res Result
	e.tracker.SetTotal(len(items))

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		e.itemLog("Scraping", "category", item.Category, "url", item.URL)
		page, itemErr := e.processItem(item)

		switch {
		case itemErr != nil:
			e.logFailure(itemErr)
			res.Failed = append(res.Failed, itemErr)
		case page.Unavailable:
			e.itemLog("Skipping unavailable product", "url", item.URL)
			res.Skipped = append(res.Skipped, types.SkippedRecord{Category: item.Category, URL: item.URL})
		default:
			res.Records = append(res.Records, types.ProductRecord{
				Category:    item.Category,
				URL:         item.URL,
				Brand:       page.Brand,
				Name:        page.Name,
				Ingredients: page.Ingredients,
			})
		}
		e.tracker.Increment()
	}

	e.log.Info("Extraction finished",
		"products", len(res.Records),
		"skipped", len(res.Skipped),
		"failed", len(res.Failed),
	)
	return res, nil
}

// processItem visits one product page. Panics are turned into an ItemError
// carrying the stack.
func (e *Extractor) processItem(item types.CategoryLink) (page Page, itemErr *ItemError) {
	defer func() {
		if r := recover(); r != nil {
			itemErr = newItemError(item.Category, item.URL, StagePanic, fmt.Errorf("%v", r))
			itemErr.Stack = debug.Stack()
		}
	}()

	if err := e.browser.Navigate(item.URL); err != nil {
		return Page{}, newItemError(item.Category, item.URL, StageNavigate, err)
	}
	if err := e.browser.WaitReady(e.cfg.ReadySelector, e.cfg.ReadyTimeout); err != nil {
		return Page{}, newItemError(item.Category, item.URL, StageWait, err)
	}

	// the ingredients panel only renders once scrolled into view
	if e.cfg.IngredientsAnchor != "" {
		if err := e.browser.ScrollIntoView(e.cfg.IngredientsAnchor); err != nil {
			e.log.Debug("Ingredients anchor not scrolled", "url", item.URL, "err", err)
		}
	}

	source, err := e.browser.HTML()
	if err != nil {
		return Page{}, newItemError(item.Category, item.URL, StageHTML, err)
	}

	page, err = Parse(source, e.selectors)
	if err != nil {
		return Page{}, newItemError(item.Category, item.URL, StageParse, err)
	}
	return page, nil
}

// itemLog reports per-item progress. While the progress bar is drawn it is
// logged at debug level so the two do not overwrite each other.
func (e *Extractor) itemLog(msg string, keyvals ...any) {
	if e.tracker != nil {
		e.log.Debug(msg, keyvals...)
		return
	}
	e.log.Info(msg, keyvals...)
}

func (e *Extractor) logFailure(ie *ItemError) {
	e.tracker.Clear()
	if ie.Stack != nil {
		e.log.Error("Error scraping", "url", ie.URL, "stage", ie.Stage, "err", ie.Err, "stack", string(ie.Stack))
		return
	}
	e.log.Error("Error scraping", "url", ie.URL, "stage", ie.Stage, "err", ie.Err)
}
