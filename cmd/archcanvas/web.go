// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/archcanvas/archcanvas/internal/pkg/build"
	"github.com/archcanvas/archcanvas/internal/pkg/logging"
	"github.com/archcanvas/archcanvas/internal/pkg/metrics"
	"github.com/archcanvas/archcanvas/internal/pkg/must"
	"github.com/archcanvas/archcanvas/pkg/mcp"
	"github.com/archcanvas/archcanvas/pkg/rest"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var webCmd = &cobra.Command{
	Use:   "web [flags]",
	Short: "Start the canvas REST server, listening on --http or --https.",
	Long: `Start the canvas REST server.
Serves the REST API under ` + rest.BasePath + `, the MCP streamable protocol at ` + mcp.StreamablePath + `,
prometheus metrics at ` + rest.MetricsPath + ` and profiling under /debug/pprof.`,
	Args: cobra.NoArgs,
	Run: func(_ *cobra.Command, args []string) {
		var s http.Server
		if *httpFlag == "" && *httpsFlag == "" {
			*httpFlag = ":8080" // Default if no port specified.
		}
		switch {
		case *httpFlag != "" && *httpsFlag != "":
			panic(fmt.Errorf("only one of --http or --https may be present"))
		case *httpFlag != "":
			s.Addr = *httpFlag
			if *certFlag != "" || *keyFlag != "" {
				panic(fmt.Errorf("--cert and --key not allowed with --http"))
			}
		case *httpsFlag != "":
			s.Addr = *httpsFlag
			if *certFlag == "" || *keyFlag == "" {
				panic(fmt.Errorf("--cert and --key are required for https"))
			}
		}

		b, cfg := newBackend()
		gin.DefaultWriter = logging.LogWriter(log, 2)
		gin.SetMode(gin.ReleaseMode)
		gin.DisableConsoleColor()
		router := gin.New()
		router.Use(gin.Recovery())
		reg := metrics.NewRegistry()
		r := must.Must1(rest.New(b, rest.Options{Config: cfg, Metrics: metrics.New(reg)}, router))
		defer r.Close() // Cancels pending position writes.
		rest.Debug(router, reg)
		if *mcpFlag {
			server := mcp.NewServer(b, cfg.Engine())
			server.Theme = cfg.Theme()
			router.Any(mcp.StreamablePath, gin.WrapH(server.HTTPHandler()))
		}
		s.Handler = router

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			log.Info("shutting down")
			_ = s.Shutdown(context.Background())
		}()
		var err error
		if *httpFlag != "" {
			log.Info("listening for http", "addr", s.Addr, "version", build.Version)
			err = s.ListenAndServe()
		} else {
			log.Info("listening for https", "addr", s.Addr, "version", build.Version)
			err = s.ListenAndServeTLS(*certFlag, *keyFlag)
		}
		if !errors.Is(err, http.ErrServerClosed) {
			must.Must(err)
		}
	},
}

var (
	httpFlag, httpsFlag *string
	certFlag, keyFlag   *string
	mcpFlag             *bool
)

func init() {
	rootCmd.AddCommand(webCmd)
	httpFlag = webCmd.Flags().String("http", "", "host:port address for insecure http listener")
	httpsFlag = webCmd.Flags().String("https", "", "host:port address for secure https listener")
	certFlag = webCmd.Flags().String("cert", "", "TLS certificate file (PEM format) for https")
	keyFlag = webCmd.Flags().String("key", "", "Private key (PEM format) for https")
	mcpFlag = webCmd.Flags().Bool("mcp", true, "Serve the MCP streamable protocol at "+mcp.StreamablePath)
}
