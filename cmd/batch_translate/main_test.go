package main

import (
	"context"
	"errors"
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/urfave/cli/v2"

	"paper-translator/internal/config"
	"paper-translator/internal/results"
	"paper-translator/internal/types"
)

func TestExitCode(t *testing.T) {
	clean := results.NewReport("in", "out")
	clean.Add(results.DocumentResult{Name: "a.pdf", Status: results.StatusProcessed})

	withFailure := results.NewReport("in", "out")
	withFailure.Add(results.DocumentResult{Name: "a.pdf", Status: results.StatusFailed})

	tests := []struct {
		name   string
		report *results.Report
		err    error
		want   int
	}{
		{"clean run", clean, nil, exitOK},
		{"document failed", withFailure, nil, exitFailed},
		{"missing input directory", nil, types.NewAppError(types.ErrFilesystem, "cannot read input directory", nil), exitFatal},
		{"interrupted", clean, context.Canceled, exitFailed},
		{"unexpected error", nil, errors.New("boom"), exitFatal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.report, tt.err))
		})
	}
}

func TestApplyFlags(t *testing.T) {
	app := &cli.App{Flags: []cli.Flag{
		&cli.StringFlag{Name: "input"},
		&cli.StringFlag{Name: "output"},
		&cli.IntFlag{Name: "chunk-max"},
		&cli.BoolFlag{Name: "refresh-markup"},
		&cli.StringFlag{Name: "log-level"},
	}}
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range app.Flags {
		f.Apply(set)
	}
	if err := set.Parse([]string{"--input", "/papers", "--chunk-max", "1200", "--refresh-markup"}); err != nil {
		t.Fatal(err)
	}
	c := cli.NewContext(app, set, nil)

	cfg := &config.Config{InputDir: "input_pdf", OutputDir: "output_pdf", ChunkMaxChars: 5000, LogLevel: "info"}
	applyFlags(c, cfg)

	assert.Equal(t, "/papers", cfg.InputDir)
	assert.Equal(t, "output_pdf", cfg.OutputDir, "unset flags keep the environment value")
	assert.Equal(t, 1200, cfg.ChunkMaxChars)
	assert.True(t, cfg.RefreshMarkup)
	assert.Equal(t, "info", cfg.LogLevel)
}
