package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/tsawler/pdfview/cmd/pdfview/commands"
)

func envFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "env",
		Usage: "path to an environment file",
		Value: ".env",
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "pdfview",
		Usage: "tiled PDF rendering and text search",
		Commands: []*cli.Command{
			{
				Name:      "frames",
				Usage:     "print the page layout of a document",
				ArgsUsage: "<document>",
				Flags: []cli.Flag{
					envFlag(),
					&cli.FloatFlag{
						Name:  "width",
						Usage: "view width in points (default from PDFVIEW_VIEW_WIDTH)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "print the layout as JSON",
					},
				},
				Action: commands.FramesAction,
			},
			{
				Name:      "search",
				Usage:     "search a document for a phrase",
				ArgsUsage: "<document> <query>",
				Flags: []cli.Flag{
					envFlag(),
					&cli.IntFlag{
						Name:  "context-before",
						Usage: "characters of context before each match",
					},
					&cli.IntFlag{
						Name:  "context-after",
						Usage: "characters of context after each match",
					},
					&cli.StringFlag{
						Name:  "ocr-language",
						Usage: "tesseract language for scanned pages",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "print results as JSON",
					},
				},
				Action: commands.SearchAction,
			},
			{
				Name:      "render",
				Usage:     "render a page to PNG",
				ArgsUsage: "<document>",
				Flags: []cli.Flag{
					envFlag(),
					&cli.IntFlag{
						Name:  "page",
						Usage: "1-based page number",
						Value: 1,
					},
					&cli.FloatFlag{
						Name:  "zoom",
						Usage: "pixels per point",
						Value: 1,
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "output file (default <document>-<page>.png)",
					},
					&cli.StringFlag{
						Name:  "query",
						Usage: "highlight the matches of this query",
					},
				},
				Action: commands.RenderAction,
			},
			{
				Name:      "serve",
				Usage:     "start the HTTP viewer API",
				ArgsUsage: "[document...]",
				Flags: []cli.Flag{
					envFlag(),
					&cli.StringFlag{
						Name:  "addr",
						Usage: "listen address (default from PDFVIEW_ADDR)",
					},
				},
				Action: commands.ServeAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
