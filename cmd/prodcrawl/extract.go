package main

import (
	"fmt"

	"github.com/go-scripts/prodcrawl/internal/extractor"
	"github.com/go-scripts/prodcrawl/internal/progress"
	"github.com/go-scripts/prodcrawl/internal/table"
)

// ExtractCmd runs the Detail Extractor
type ExtractCmd struct {
	Input          string `help:"CSV file with category,URL rows" short:"i"`
	ProductsOutput string `help:"CSV file for extracted products" name:"products-output"`
	SkippedOutput  string `help:"CSV file for unavailable products" name:"skipped-output"`
	Category       string `help:"Only visit links of this category"`
}

// Run implements the extract command. Both tables are written even when the
// run is interrupted, and the interruption is still reported as an error.
func (c *ExtractCmd) Run(g *Globals, rt *deps) error {
	env, err := g.setup(rt)
	if err != nil {
		return err
	}

	cfg := env.cfg
	if c.Input != "" {
		cfg.Extractor.Input = c.Input
	}
	if c.ProductsOutput != "" {
		cfg.Extractor.ProductsOutput = c.ProductsOutput
	}
	if c.SkippedOutput != "" {
		cfg.Extractor.SkippedOutput = c.SkippedOutput
	}
	if c.Category != "" {
		cfg.Extractor.Category = c.Category
	}
	if err := cfg.ValidateExtractor(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	items, err := table.ReadCategoryLinks(cfg.Extractor.Input)
	if err != nil {
		return fmt.Errorf("read input %s: %w", cfg.Extractor.Input, err)
	}
	items = table.FilterCategory(items, cfg.Extractor.Category)
	env.log.Info("Loaded product links", "input", cfg.Extractor.Input, "items", len(items), "category", cfg.Extractor.Category)

	b, closeBrowser, err := env.openBrowser(cfg.Browser.Headless)
	if err != nil {
		return err
	}
	defer closeBrowser()

	ex := extractor.New(b, cfg.Extractor, env.log, progress.NewTracker(env.progress, "Scraping products"))
	res, runErr := ex.Run(env.ctx, items)
	if runErr != nil {
		env.log.Warn("Extraction interrupted, saving partial results", "err", runErr)
	}

	if err := table.WriteProducts(cfg.Extractor.ProductsOutput, res.Records); err != nil {
		return fmt.Errorf("write products: %w", err)
	}
	if err := table.WriteSkipped(cfg.Extractor.SkippedOutput, res.Skipped); err != nil {
		return fmt.Errorf("write skipped: %w", err)
	}
	if runErr != nil {
		return fmt.Errorf("extraction interrupted: %w", runErr)
	}

	breakdown := progress.NewBreakdown("products", "skipped", "failed")
	for _, r := range res.Records {
		breakdown.Add(r.Category, 0)
	}
	for _, r := range res.Skipped {
		breakdown.Add(r.Category, 1)
	}
	for _, f := range res.Failed {
		breakdown.Add(f.Category, 2)
	}

	fmt.Fprintln(env.stdout, progress.Summary("Scraping complete.",
		fmt.Sprintf("products: %d", len(res.Records)),
		fmt.Sprintf("skipped:  %d", len(res.Skipped)),
		fmt.Sprintf("failed:   %d", len(res.Failed)),
	))
	breakdown.Render(env.stdout)
	return nil
}
