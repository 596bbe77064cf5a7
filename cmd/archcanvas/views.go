// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package main

import (
	"context"
	"os"

	"github.com/archcanvas/archcanvas/internal/pkg/must"
	"github.com/spf13/cobra"
)

var viewsCmd = &cobra.Command{
	Use:   "views PROJECT",
	Short: "List the views of a project",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		b, _ := newBackend()
		views := must.Must1(b.GetViewSummaries(context.Background(), args[0]))
		newPrinter(os.Stdout).Print(views)
	},
}

func init() {
	rootCmd.AddCommand(viewsCmd)
}
