// Command prodcrawl collects product links from category listings and
// extracts product details from the collected pages.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/go-scripts/prodcrawl/internal/browser"
	"github.com/go-scripts/prodcrawl/internal/config"
)

// Globals are the flags shared by every command
type Globals struct {
	Config     string `help:"Path to configuration file" default:"config.yaml" type:"path"`
	LogLevel   string `help:"Log level (debug, info, warn, error)" default:"info" enum:"debug,info,warn,error"`
	Quiet      bool   `help:"Hide progress output" short:"q"`
	Headed     bool   `help:"Show the browser window"`
	ChromePath string `help:"Path to the Chrome binary" name:"chrome-path"`
}

// CLI is the root command line
type CLI struct {
	Globals

	Collect CollectCmd `cmd:"" help:"Collect product links from category listing pages"`
	Extract ExtractCmd `cmd:"" help:"Extract product details from collected links"`
}

// opener starts the browser a command drives. The returned func releases it.
type opener func(ctx context.Context, opts browser.Options) (browser.Browser, func(), error)

// deps carries the process-level collaborators of a command
type deps struct {
	ctx    context.Context
	open   opener
	stdout io.Writer
	stderr io.Writer
}

func openSession(ctx context.Context, opts browser.Options) (browser.Browser, func(), error) {
	s, err := browser.NewSession(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

// runEnv is what every command needs once flags are parsed
type runEnv struct {
	*deps
	cfg      *config.Config
	log      *log.Logger
	progress io.Writer
}

func (g *Globals) setup(rt *deps) (*runEnv, error) {
	level, err := log.ParseLevel(g.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := log.NewWithOptions(rt.stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "prodcrawl",
		Level:           level,
	}).With("run", uuid.NewString())

	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if g.Headed {
		cfg.Browser.Headless = false
	}
	if g.ChromePath != "" {
		cfg.Browser.ExecPath = g.ChromePath
	}

	env := &runEnv{deps: rt, cfg: cfg, log: logger}
	if !g.Quiet {
		env.progress = rt.stderr
	}
	return env, nil
}

func (env *runEnv) openBrowser(headless bool) (browser.Browser, func(), error) {
	return env.open(env.ctx, browser.Options{
		Headless:       headless,
		ExecPath:       env.cfg.Browser.ExecPath,
		UserAgents:     env.cfg.Browser.UserAgents,
		AcceptLanguage: env.cfg.Browser.AcceptLanguage,
		ActionTimeout:  env.cfg.Browser.ActionTimeout,
		Logger:         env.log,
	})
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("prodcrawl"),
		kong.Description("Scrape product links and details from a rendered storefront."),
		kong.UsageOnError(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := kctx.Run(&cli.Globals, &deps{
		ctx:    ctx,
		open:   openSession,
		stdout: os.Stdout,
		stderr: os.Stderr,
	})
	stop()
	kctx.FatalIfErrorf(err)
}
