package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/tsawler/pdfview/geometry"
)

// FramesAction prints the page frames of a document
func FramesAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(cmd.String("env"))
	if err != nil {
		return err
	}

	v, err := appCtx.OpenViewer(cmd)
	if err != nil {
		return err
	}
	defer v.Close()

	layout := v.Layout()
	if cmd.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(layout)
	}

	displayFrames(layout, v.Renderer().PageBoxes())
	return nil
}

func displayFrames(layout geometry.Layout, boxes []geometry.PageBox) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Page", "Rotation", "X", "Y", "Width", "Height", "Status")

	for _, f := range layout.Frames {
		rotation := "-"
		if f.Page-1 < len(boxes) {
			rotation = fmt.Sprintf("%d", boxes[f.Page-1].Rotation)
		}
		status := "ok"
		if f.Degraded {
			status = "degraded"
		}
		table.Append(
			fmt.Sprintf("%d", f.Page),
			rotation,
			fmt.Sprintf("%.2f", f.Rect.X),
			fmt.Sprintf("%.2f", f.Rect.Y),
			fmt.Sprintf("%.2f", f.Rect.Width),
			fmt.Sprintf("%.2f", f.Rect.Height),
			status,
		)
	}
	table.Render()

	w, h := layout.ContentSize()
	fmt.Printf("\nContent size: %.2f x %.2f\n", w, h)
	if len(layout.Warnings) > 0 {
		fmt.Println("Warnings:", geometry.FormatWarnings(layout.Warnings))
	}
}
