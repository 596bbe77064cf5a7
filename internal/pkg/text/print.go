// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

// package text prints views and layouts as aligned text tables for the command line and MCP.
package text

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/archcanvas/archcanvas/pkg/layout"
	"github.com/archcanvas/archcanvas/pkg/model"
)

// WriteString returns what print writes.
func WriteString(print func(io.Writer)) string {
	w := &strings.Builder{}
	print(w)
	return w.String()
}

func table(w io.Writer, rows func(io.Writer)) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer func() { _ = tw.Flush() }()
	rows(tw)
}

// ListViews prints one line per view: ID, type and name.
func ListViews(w io.Writer, views []model.ViewSummary) {
	table(w, func(w io.Writer) {
		for _, v := range views {
			fmt.Fprintf(w, "%v\t%v\t%v\n", v.ID, v.Type, v.Name)
		}
	})
}

// Layout prints the nodes of a layout with position and size, then the edges.
// The group wrapper is not printed.
func Layout(w io.Writer, r *layout.Result) {
	table(w, func(w io.Writer) {
		for _, n := range r.Nodes {
			if n.IsGroup() {
				continue
			}
			name := ""
			if n.Data != nil {
				name = n.Data.Name
			}
			external := ""
			if n.External {
				external = "external"
			}
			fmt.Fprintf(w, "%v\t%v\t%v\t(%g,%g)\t%gx%g\t%v\n", n.ID, n.Type, name, n.Position.X, n.Position.Y, n.Width, n.Height, external)
		}
	})
	table(w, func(w io.Writer) {
		for _, e := range r.Edges {
			fmt.Fprintf(w, "%v\t->\t%v\t%v\n", e.Source, e.Target, e.Label)
		}
	})
}

// Print v as text if it has a text form. Returns false if not.
func Print(w io.Writer, v any) bool {
	switch v := v.(type) {
	case []model.ViewSummary:
		ListViews(w, v)
	case *layout.Result:
		Layout(w, v)
	default:
		return false
	}
	return true
}
