// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package main

import (
	"io"
	"os"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/archcanvas/archcanvas/internal/pkg/must"
	"github.com/archcanvas/archcanvas/pkg/layout"
	"github.com/archcanvas/archcanvas/pkg/model"
	"github.com/spf13/cobra"
)

var templateCmd = &cobra.Command{
	Use:   "template PROJECT VIEW [--file FILE|--template STRING]",
	Short: `Apply a Go template to a laid-out view.`,
	Long: `Apply a Go template to a laid-out view.
Reads the template from stdin if neither --file nor --template is provided.
The template data has fields .View (the view from the backend) and .Layout (nodes and edges with positions).
Sprig functions are available.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if *templateString == "" { // Read from file
			switch *templateFile {
			case "", "-":
				*templateString = string(must.Must1(io.ReadAll(os.Stdin)))
			default:
				*templateString = string(must.Must1(os.ReadFile(*templateFile)))
			}
		}
		t := template.Must(template.New("template").Funcs(sprig.TxtFuncMap()).Parse(*templateString))
		v, r := layoutView(args[0], args[1])
		must.Must(t.Execute(os.Stdout, templateData{View: v, Layout: r}))
	},
}

type templateData struct {
	View   *model.View
	Layout *layout.Result
}

var templateFile, templateString *string

func init() {
	templateFile = templateCmd.Flags().StringP("file", "f", "", "read template from file")
	templateString = templateCmd.Flags().StringP("template", "t", "", "use template string")
	rootCmd.AddCommand(templateCmd)
}
