package main

import (
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("prodcrawl"), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)

	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, kctx
}

func TestParseCollect(t *testing.T) {
	cli, kctx := parse(t, "collect", "--categories", "cleanser,face-mask", "--max-pages", "3", "--isolate-pages", "-q")

	assert.Equal(t, "collect", kctx.Command())
	assert.Equal(t, []string{"cleanser", "face-mask"}, cli.Collect.Categories)
	assert.Equal(t, 3, cli.Collect.MaxPages)
	assert.True(t, cli.Collect.IsolatePages)
	assert.True(t, cli.Quiet)
	assert.Equal(t, "info", cli.LogLevel)
}

func TestParseExtract(t *testing.T) {
	cli, kctx := parse(t, "extract", "-i", "links.csv", "--category", "cleanser", "--log-level", "debug", "--headed")

	assert.Equal(t, "extract", kctx.Command())
	assert.Equal(t, "links.csv", cli.Extract.Input)
	assert.Equal(t, "cleanser", cli.Extract.Category)
	assert.Equal(t, "debug", cli.LogLevel)
	assert.True(t, cli.Headed)
}

func TestParseRejectsUnknownLogLevel(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Exit(func(int) {}))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"extract", "--log-level", "loud"})
	assert.Error(t, err)
}
