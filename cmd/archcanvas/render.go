// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package main

import (
	"context"
	"io"
	"os"

	"github.com/archcanvas/archcanvas/internal/pkg/enumflag"
	"github.com/archcanvas/archcanvas/internal/pkg/must"
	"github.com/archcanvas/archcanvas/pkg/layout"
	"github.com/archcanvas/archcanvas/pkg/mcp"
	"github.com/archcanvas/archcanvas/pkg/render"
	"github.com/archcanvas/archcanvas/pkg/shape"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render PROJECT VIEW",
	Short: "Render a view as SVG or Graphviz DOT",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		b, cfg := newBackend()
		v := must.Must1(b.GetView(context.Background(), args[0], args[1]))
		var w io.Writer = os.Stdout
		if *renderFile != "" && *renderFile != "-" {
			f := must.Must1(os.Create(*renderFile))
			defer func() { must.Must(f.Close()) }()
			w = f
		}
		if formatFlag.String() == mcp.FormatDOT {
			_ = must.Must1(w.Write(must.Must1(layout.Graph(v.ID, v.Nodes, v.ExternalNodes, v.Relations).DOT())))
			return
		}
		theme := cfg.Theme()
		if themeFlag.String() != "" {
			theme = shape.Theme(themeFlag.String())
		}
		e := cfg.Engine()
		r := must.Must1(e.LayoutView(v, layout.Options{Force: *forceFlag}))
		d := render.Diagram{Title: v.Name, Nodes: layout.WithGroupWrapper(r.Nodes, e.GroupMargin), Edges: r.Edges}
		must.Must(render.SVG(w, d, theme))
	},
}

var (
	formatFlag = enumflag.New(mcp.FormatSVG, mcp.FormatSVG, mcp.FormatDOT)
	themeFlag  = enumflag.New("", string(shape.Light), string(shape.Dark))
	renderFile *string
)

func init() {
	renderCmd.Flags().Var(formatFlag, "format", formatFlag.DocString("Output format"))
	renderCmd.Flags().Var(themeFlag, "theme", themeFlag.DocString("Color theme, default from configuration"))
	renderFile = renderCmd.Flags().StringP("file", "f", "", "Write to file instead of stdout")
	rootCmd.AddCommand(renderCmd)
}
