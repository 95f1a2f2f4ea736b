package main

import (
	"fmt"

	"github.com/go-scripts/prodcrawl/internal/collector"
	"github.com/go-scripts/prodcrawl/internal/progress"
	"github.com/go-scripts/prodcrawl/internal/table"
)

// CollectCmd runs the Link Collector
type CollectCmd struct {
	Output       string   `help:"CSV file to write the links to" short:"o"`
	Categories   []string `help:"Categories to scrape, comma separated" short:"c"`
	MaxPages     int      `help:"Maximum listing pages per category"`
	StableReads  int      `help:"Unchanged block counts required before reading links"`
	IsolatePages bool     `help:"Log a failing category and continue with the next one"`
	Headless     bool     `help:"Collect without a visible window (listings may load incompletely)"`
}

// Run implements the collect command. The links file is only written once
// every category has been scraped; a failed run leaves it untouched.
func (c *CollectCmd) Run(g *Globals, rt *deps) error {
	env, err := g.setup(rt)
	if err != nil {
		return err
	}

	cfg := env.cfg
	if c.Output != "" {
		cfg.Collector.Output = c.Output
	}
	if len(c.Categories) > 0 {
		cfg.Collector.Categories = c.Categories
	}
	if c.MaxPages != 0 {
		cfg.Collector.MaxPages = c.MaxPages
	}
	if c.StableReads != 0 {
		cfg.Collector.StableReads = c.StableReads
	}
	if c.IsolatePages {
		cfg.Collector.IsolatePages = true
	}
	if c.Headless {
		cfg.Collector.Headed = false
	}
	if err := cfg.ValidateCollector(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	b, closeBrowser, err := env.openBrowser(cfg.CollectorHeadless())
	if err != nil {
		return err
	}
	defer closeBrowser()

	env.log.Info("Collecting product links",
		"categories", len(cfg.Collector.Categories),
		"max_pages", cfg.Collector.MaxPages,
		"headless", cfg.CollectorHeadless(),
	)

	col := collector.New(b, cfg.Collector, env.log, progress.NewSpinner(env.progress))
	links, err := col.Run(env.ctx, cfg.Collector.Categories)
	if err != nil {
		return fmt.Errorf("collect links: %w", err)
	}

	if err := table.WriteCategoryLinks(cfg.Collector.Output, links); err != nil {
		return fmt.Errorf("write links: %w", err)
	}

	breakdown := progress.NewBreakdown("links")
	for _, l := range links {
		breakdown.Add(l.Category, 0)
	}

	fmt.Fprintln(env.stdout, progress.Summary("Link collection complete.",
		fmt.Sprintf("links: %d", len(links)),
		fmt.Sprintf("output: %s", cfg.Collector.Output),
	))
	breakdown.Render(env.stdout)
	return nil
}
