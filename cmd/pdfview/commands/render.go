package commands

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
)

// RenderAction renders one page to a PNG file, optionally highlighting the
// matches of a query.
func RenderAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(cmd.String("env"))
	if err != nil {
		return err
	}

	v, err := appCtx.OpenViewer(cmd)
	if err != nil {
		return err
	}
	defer v.Close()

	page := int(cmd.Int("page"))
	zoom := cmd.Float("zoom")

	if q := cmd.String("query"); q != "" {
		results, err := searchViewer(ctx, v, q)
		if err != nil {
			return err
		}
		appCtx.Logger.Info("highlighting matches", "query", q, "results", len(results))
	}

	img, err := v.RenderPage(page, zoom)
	if err != nil {
		return fmt.Errorf("render page %d: %w", page, err)
	}

	out := cmd.String("out")
	if out == "" {
		base := strings.TrimSuffix(filepath.Base(cmd.Args().First()), filepath.Ext(cmd.Args().First()))
		out = fmt.Sprintf("%s-%d.png", base, page)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	b := img.Bounds()
	fmt.Printf("Wrote %s (%dx%d)\n", out, b.Dx(), b.Dy())
	return nil
}
