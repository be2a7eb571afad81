// Package commands implements the pdfview CLI actions.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/tsawler/pdfview"
	"github.com/tsawler/pdfview/internal/config"
	"github.com/tsawler/pdfview/internal/logger"
	"github.com/tsawler/pdfview/search"
)

// AppContext holds what every command needs
type AppContext struct {
	Config config.Config
	Logger *slog.Logger
}

// NewAppContext loads the configuration from envFile and the environment
// and sets up logging.
func NewAppContext(envFile string) (*AppContext, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &AppContext{
		Config: cfg,
		Logger: logger.New(cfg.Logger()),
	}, nil
}

// ViewerOptions returns viewer options from the configuration with any
// command line overrides applied.
func (ac *AppContext) ViewerOptions(cmd *cli.Command) pdfview.Options {
	opts := pdfview.DefaultOptions()
	opts.ViewWidth = ac.Config.ViewWidth
	opts.TileSize = ac.Config.TileSize
	opts.ExtractTimeout = ac.Config.ExtractTimeout
	opts.OCRLanguage = ac.Config.OCRLanguage
	opts.Logger = ac.Logger
	opts.Match = search.MatchOptions{
		ContextBefore: ac.Config.ContextBefore,
		ContextAfter:  ac.Config.ContextAfter,
	}

	if cmd.IsSet("width") {
		opts.ViewWidth = cmd.Float("width")
	}
	if cmd.IsSet("context-before") {
		opts.Match.ContextBefore = int(cmd.Int("context-before"))
	}
	if cmd.IsSet("context-after") {
		opts.Match.ContextAfter = int(cmd.Int("context-after"))
	}
	if cmd.IsSet("ocr-language") {
		opts.OCRLanguage = cmd.String("ocr-language")
	}
	return opts
}

// OpenViewer opens the document named by the first argument
func (ac *AppContext) OpenViewer(cmd *cli.Command) (*pdfview.Viewer, error) {
	if cmd.NArg() < 1 {
		return nil, fmt.Errorf("a document path is required")
	}
	return pdfview.NewViewer(cmd.Args().First(), ac.ViewerOptions(cmd))
}

func searchViewer(ctx context.Context, v *pdfview.Viewer, query string) ([]search.Result, error) {
	results, err := v.SearchSync(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return results, nil
}
