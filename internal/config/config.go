// Package config holds the settings for both pipelines.
//
// Values are layered in this order, later layers winning:
//
//  1. Default()
//  2. the YAML file passed to Load (skipped when it does not exist)
//  3. environment variables named by `env` struct tags, after .env files
//     have been loaded
//  4. command line flags, applied by the caller
//
// Example config.yaml:
//
//	browser:
//	  headless: true
//	collector:
//	  categories: [cleanser, face-mask]
//	  max_pages: 10
//	extractor:
//	  ready_timeout: 15s
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration of a prodcrawl run
type Config struct {
	Browser   Browser   `yaml:"browser"`
	Collector Collector `yaml:"collector"`
	Extractor Extractor `yaml:"extractor"`
}

// Browser configures the automation session
type Browser struct {
	Headless       bool          `yaml:"headless" env:"PRODCRAWL_HEADLESS"`
	ExecPath       string        `yaml:"exec_path" env:"PRODCRAWL_CHROME_PATH"`
	UserAgents     []string      `yaml:"user_agents" env:"PRODCRAWL_USER_AGENTS"`
	AcceptLanguage string        `yaml:"accept_language" env:"PRODCRAWL_ACCEPT_LANGUAGE"`
	ActionTimeout  time.Duration `yaml:"action_timeout" env:"PRODCRAWL_ACTION_TIMEOUT"`
}

// Collector configures the Link Collector
type Collector struct {
	BaseURL           string        `yaml:"base_url" env:"PRODCRAWL_BASE_URL"`
	Categories        []string      `yaml:"categories" env:"PRODCRAWL_CATEGORIES"`
	MaxPages          int           `yaml:"max_pages" env:"PRODCRAWL_MAX_PAGES"`
	StableReads       int           `yaml:"stable_reads" env:"PRODCRAWL_STABLE_READS"`
	ScrollStep        int           `yaml:"scroll_step" env:"PRODCRAWL_SCROLL_STEP"`
	PageSettle        time.Duration `yaml:"page_settle" env:"PRODCRAWL_PAGE_SETTLE"`
	NudgeSettle       time.Duration `yaml:"nudge_settle" env:"PRODCRAWL_NUDGE_SETTLE"`
	ScrollSettle      time.Duration `yaml:"scroll_settle" env:"PRODCRAWL_SCROLL_SETTLE"`
	BlockSelector     string        `yaml:"block_selector" env:"PRODCRAWL_BLOCK_SELECTOR"`
	ProductPathMarker string        `yaml:"product_path_marker" env:"PRODCRAWL_PRODUCT_PATH_MARKER"`
	Output            string        `yaml:"output" env:"PRODCRAWL_LINKS_OUTPUT"`
	// IsolatePages logs a failing page and moves on to the next category
	// instead of aborting the run.
	IsolatePages bool `yaml:"isolate_pages" env:"PRODCRAWL_ISOLATE_PAGES"`
	// Headed shows the browser window while collecting. Listings only lazy
	// load all product blocks in a visible window.
	Headed bool `yaml:"headed" env:"PRODCRAWL_COLLECT_HEADED"`
}

// Extractor configures the Detail Extractor
type Extractor struct {
	Input               string        `yaml:"input" env:"PRODCRAWL_INPUT"`
	ProductsOutput      string        `yaml:"products_output" env:"PRODCRAWL_PRODUCTS_OUTPUT"`
	SkippedOutput       string        `yaml:"skipped_output" env:"PRODCRAWL_SKIPPED_OUTPUT"`
	Category            string        `yaml:"category" env:"PRODCRAWL_CATEGORY"`
	ReadySelector       string        `yaml:"ready_selector"`
	ReadyTimeout        time.Duration `yaml:"ready_timeout" env:"PRODCRAWL_READY_TIMEOUT"`
	IngredientsAnchor   string        `yaml:"ingredients_anchor"`
	IngredientsSelector string        `yaml:"ingredients_selector"`
	NameSelector        string        `yaml:"name_selector"`
	BrandSelector       string        `yaml:"brand_selector"`
	UnavailableMarker   string        `yaml:"unavailable_marker"`
}

// DefaultUserAgents is the pool a session picks its user agent from
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/116.0.5845.96 Safari/537.36",
}

// DefaultCategories are the listing categories scraped when none are configured
var DefaultCategories = []string{
	"cleanser",
	"facial-treatments",
	"moisturizing-cream-oils-mists",
	"lip-balm-lip-care",
	"face-mask",
	"sunscreen-sun-protection",
	"eye-treatment-dark-circle-treatment",
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Browser: Browser{
			Headless:       true,
			UserAgents:     append([]string(nil), DefaultUserAgents...),
			AcceptLanguage: "en-US,en;q=0.9",
			ActionTimeout:  2 * time.Minute,
		},
		Collector: Collector{
			BaseURL:           "https://www.sephora.com/shop",
			Categories:        append([]string(nil), DefaultCategories...),
			MaxPages:          50,
			StableReads:       7,
			ScrollStep:        300,
			PageSettle:        4 * time.Second,
			NudgeSettle:       500 * time.Millisecond,
			ScrollSettle:      1500 * time.Millisecond,
			BlockSelector:     "div.css-11ifn8v.e15t7owz0",
			ProductPathMarker: "/product/",
			Output:            "data/product_urls_full.csv",
			Headed:            true,
		},
		Extractor: Extractor{
			Input:               "data/product_urls.csv",
			ProductsOutput:      "data/product_data.csv",
			SkippedOutput:       "data/product_skipped.csv",
			ReadySelector:       "body",
			ReadyTimeout:        15 * time.Second,
			IngredientsAnchor:   "#ingredients",
			IngredientsSelector: "div#ingredients",
			NameSelector:        `span[data-at="product_name"]`,
			BrandSelector:       `a[data-at="brand_name"]`,
			UnavailableMarker:   "Sorry, this product is not available",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path and the
// environment. A missing file is not an error; an unreadable or
// malformed one is.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("load environment files: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CollectorHeadless reports whether the Link Collector runs Chrome headless.
// Browser.Headless false always wins.
func (c *Config) CollectorHeadless() bool {
	return c.Browser.Headless && !c.Collector.Headed
}

// ValidateCollector reports settings that would make the Link Collector misbehave
func (c *Config) ValidateCollector() error {
	col := c.Collector
	var errs []error
	if col.BaseURL == "" {
		errs = append(errs, errors.New("collector.base_url is required"))
	}
	if len(col.Categories) == 0 {
		errs = append(errs, errors.New("collector.categories must not be empty"))
	}
	if col.MaxPages < 1 {
		errs = append(errs, fmt.Errorf("collector.max_pages must be positive, got %d", col.MaxPages))
	}
	if col.StableReads < 1 {
		errs = append(errs, fmt.Errorf("collector.stable_reads must be positive, got %d", col.StableReads))
	}
	if col.BlockSelector == "" {
		errs = append(errs, errors.New("collector.block_selector is required"))
	}
	if col.Output == "" {
		errs = append(errs, errors.New("collector.output is required"))
	}
	if col.PageSettle < 0 || col.NudgeSettle < 0 || col.ScrollSettle < 0 {
		errs = append(errs, errors.New("collector settle durations must not be negative"))
	}
	return errors.Join(errs...)
}

// ValidateExtractor reports settings that would make the Detail Extractor misbehave
func (c *Config) ValidateExtractor() error {
	ex := c.Extractor
	var errs []error
	if ex.Input == "" {
		errs = append(errs, errors.New("extractor.input is required"))
	}
	if ex.ProductsOutput == "" || ex.SkippedOutput == "" {
		errs = append(errs, errors.New("extractor outputs are required"))
	}
	if ex.ReadyTimeout <= 0 {
		errs = append(errs, fmt.Errorf("extractor.ready_timeout must be positive, got %v", ex.ReadyTimeout))
	}
	if ex.UnavailableMarker == "" {
		errs = append(errs, errors.New("extractor.unavailable_marker is required"))
	}
	return errors.Join(errs...)
}
