package commands

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/tsawler/pdfview/internal/testpdf"
	"github.com/tsawler/pdfview/search"
)

func writeSample(t *testing.T) string {
	t.Helper()
	data := testpdf.Build("/MediaBox [0 0 612 792]",
		testpdf.Page{Stream: testpdf.Text("Hello World", 10, 72, 700)},
		testpdf.Page{Stream: testpdf.Text("again World", 10, 72, 700)},
	)
	path := filepath.Join(t.TempDir(), "sample.pdf")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func envFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PDFVIEW_LOG_LEVEL=error\nPDFVIEW_VIEW_WIDTH=612\n"), 0o644))
	return path
}

func TestQuoteContext(t *testing.T) {
	tests := []struct {
		name string
		r    search.Result
		want string
	}{
		{"middle", search.Result{Context: "say hello there", MatchStart: 4, MatchEnd: 9}, "say [hello] there"},
		{"newline", search.Result{Context: "a\nb", MatchStart: 2, MatchEnd: 3}, "a [b]"},
		{"out of range", search.Result{Context: "abc", MatchStart: 2, MatchEnd: 10}, "ab[c]"},
		{"unicode", search.Result{Context: "über", MatchStart: 0, MatchEnd: 1}, "[ü]ber"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, quoteContext(tt.r))
		})
	}
}

func TestSearchAction(t *testing.T) {
	path := writeSample(t)
	newCmd := func() *cli.Command {
		return &cli.Command{
			Name: "search",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "env"},
				&cli.IntFlag{Name: "context-before"},
				&cli.IntFlag{Name: "context-after"},
				&cli.BoolFlag{Name: "json"},
			},
			Action: SearchAction,
		}
	}

	err := newCmd().Run(context.Background(), []string{"search", "--env", envFile(t), "--json", path, "world"})
	assert.NoError(t, err)

	err = newCmd().Run(context.Background(), []string{"search", "--env", envFile(t), path})
	assert.Error(t, err)
}

func TestRenderAction(t *testing.T) {
	path := writeSample(t)
	out := filepath.Join(t.TempDir(), "page.png")
	newCmd := func() *cli.Command {
		return &cli.Command{
			Name: "render",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "env"},
				&cli.IntFlag{Name: "page", Value: 1},
				&cli.FloatFlag{Name: "zoom", Value: 1},
				&cli.StringFlag{Name: "out"},
				&cli.StringFlag{Name: "query"},
			},
			Action: RenderAction,
		}
	}

	args := []string{"render", "--env", envFile(t), "--page", "2", "--zoom", "0.5", "--out", out, "--query", "again", path}
	require.NoError(t, newCmd().Run(context.Background(), args))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 306, img.Bounds().Dx())
	assert.Equal(t, 396, img.Bounds().Dy())

	args = []string{"render", "--env", envFile(t), "--page", "7", "--out", out, path}
	assert.Error(t, newCmd().Run(context.Background(), args))
}

func TestOpenViewerRequiresPath(t *testing.T) {
	cmd := &cli.Command{
		Name:  "frames",
		Flags: []cli.Flag{&cli.StringFlag{Name: "env"}, &cli.FloatFlag{Name: "width"}},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			appCtx, err := NewAppContext(cmd.String("env"))
			if err != nil {
				return err
			}
			_, err = appCtx.OpenViewer(cmd)
			return err
		},
	}
	assert.Error(t, cmd.Run(context.Background(), []string{"frames", "--env", envFile(t)}))
}

func TestViewerOptionsOverrides(t *testing.T) {
	var got float64
	var before int
	cmd := &cli.Command{
		Name: "frames",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env"},
			&cli.FloatFlag{Name: "width"},
			&cli.IntFlag{Name: "context-before"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			appCtx, err := NewAppContext(cmd.String("env"))
			if err != nil {
				return err
			}
			opts := appCtx.ViewerOptions(cmd)
			got = opts.ViewWidth
			before = opts.Match.ContextBefore
			return nil
		},
	}
	args := []string{"frames", "--env", envFile(t), "--width", "300", "--context-before", "3"}
	require.NoError(t, cmd.Run(context.Background(), args))
	assert.Equal(t, 300.0, got)
	assert.Equal(t, 3, before)
}
