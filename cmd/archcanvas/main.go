// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

// Command archcanvas lays out, renders and serves C4 architecture diagrams.
package main

import (
	"fmt"
	"os"

	"github.com/archcanvas/archcanvas/internal/pkg/build"
	"github.com/archcanvas/archcanvas/internal/pkg/enumflag"
	"github.com/archcanvas/archcanvas/internal/pkg/logging"
	"github.com/archcanvas/archcanvas/internal/pkg/must"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:          "archcanvas",
		Short:        "Lay out, render and serve C4 architecture diagrams",
		Version:      build.Version,
		SilenceUsage: true,
	}
	log = logging.Log()

	// Global flags
	outputFlag  = enumflag.New("yaml", "json", "json-pretty", "text", "yaml")
	verbose     *int
	configFlag  *string
	modelFlag   *string
	backendFlag *string
	panicOnErr  *bool
)

const configEnv = "ARCHCANVAS_CONFIG"

func init() {
	f := rootCmd.PersistentFlags()
	panicOnErr = f.Bool("panic", false, "panic on error instead of exit code 1")
	f.VarP(outputFlag, "output", "o", outputFlag.DocString("Output format"))
	verbose = f.IntP("verbose", "v", 0, "Verbosity for logging")
	configFlag = f.StringP("config", "c", os.Getenv(configEnv), "Configuration file or URL")
	modelFlag = f.StringP("model", "m", "", "YAML model file or URL, served from memory")
	backendFlag = f.String("backend", "", "URL of a remote backend REST API")

	cobra.OnInitialize(func() { logging.Init(*verbose) }) // After flags are parsed
}

func main() { os.Exit(run()) }

// run executes the root command and returns the exit code.
// Code in this package panics with an error to exit.
func run() (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, r)
			if *panicOnErr {
				panic(r)
			}
			code = 1
		}
	}()
	must.Must(rootCmd.Execute())
	return 0
}
