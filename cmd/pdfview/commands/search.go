package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/tsawler/pdfview/search"
)

// SearchAction searches a document and prints the matches
func SearchAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(cmd.String("env"))
	if err != nil {
		return err
	}
	if cmd.NArg() < 2 {
		return fmt.Errorf("usage: pdfview search <document> <query>")
	}
	query := cmd.Args().Get(1)

	v, err := appCtx.OpenViewer(cmd)
	if err != nil {
		return err
	}
	defer v.Close()

	results, err := searchViewer(ctx, v, query)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	displayResults(results)
	return nil
}

func displayResults(results []search.Result) {
	if len(results) > 0 {
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Page", "Position", "Context", "Parts")
		for _, r := range results {
			table.Append(
				fmt.Sprintf("%d", r.Page),
				fmt.Sprintf("%d-%d", r.StartPosition, r.EndPosition),
				quoteContext(r),
				fmt.Sprintf("%d", len(r.Parts)),
			)
		}
		table.Render()
		fmt.Println()
	}
	fmt.Println(search.Summary(results))
}

// quoteContext brackets the match inside the result context
func quoteContext(r search.Result) string {
	ctx := []rune(r.Context)
	start := min(max(r.MatchStart, 0), len(ctx))
	end := min(max(r.MatchEnd, start), len(ctx))

	var b strings.Builder
	b.WriteString(string(ctx[:start]))
	b.WriteString("[")
	b.WriteString(string(ctx[start:end]))
	b.WriteString("]")
	b.WriteString(string(ctx[end:]))
	return strings.ReplaceAll(b.String(), "\n", " ")
}
