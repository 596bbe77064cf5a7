// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package main

import (
	"context"
	"os"

	"github.com/archcanvas/archcanvas/internal/pkg/must"
	"github.com/archcanvas/archcanvas/pkg/layout"
	"github.com/archcanvas/archcanvas/pkg/model"
	"github.com/spf13/cobra"
)

var layoutCmd = &cobra.Command{
	Use:   "layout PROJECT VIEW",
	Short: "Print the laid-out nodes and edges of a view",
	Long: `Print the laid-out nodes and edges of a view.
Stored positions are used if every node has one, otherwise the view is laid out automatically.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		_, r := layoutView(args[0], args[1])
		newPrinter(os.Stdout).Print(r)
	},
}

var forceFlag *bool

func init() {
	forceFlag = rootCmd.PersistentFlags().Bool("force", false, "Lay out automatically, ignoring stored positions")
	rootCmd.AddCommand(layoutCmd)
}

// layoutView fetches and lays out a view.
func layoutView(project, view string) (*model.View, *layout.Result) {
	b, cfg := newBackend()
	v := must.Must1(b.GetView(context.Background(), project, view))
	return v, must.Must1(cfg.Engine().LayoutView(v, layout.Options{Force: *forceFlag}))
}
