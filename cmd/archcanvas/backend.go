// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package main

import (
	"bytes"
	"errors"

	"github.com/archcanvas/archcanvas/internal/pkg/logging"
	"github.com/archcanvas/archcanvas/internal/pkg/must"
	"github.com/archcanvas/archcanvas/pkg/backend"
	"github.com/archcanvas/archcanvas/pkg/backend/memory"
	"github.com/archcanvas/archcanvas/pkg/config"
)

// loadConfig loads the --config file if set, command line flags override it.
func loadConfig() *config.Config {
	cfg := config.Default()
	if *configFlag != "" {
		cfg.Merge(must.Must1(config.Load(*configFlag)))
	}
	if *modelFlag != "" || *backendFlag != "" {
		cfg.Backend = config.Backend{Model: *modelFlag, URL: *backendFlag}
	}
	must.Must(cfg.Validate())
	log.V(1).Info("Configuration", "config", logging.JSON(cfg))
	return cfg
}

// newBackend returns the configured backend and configuration.
func newBackend() (backend.Backend, *config.Config) {
	cfg := loadConfig()
	switch {
	case cfg.Backend.URL != "":
		log.V(1).Info("Remote backend", "url", cfg.Backend.URL)
		return must.Must1(backend.NewClient(cfg.Backend.URL, nil)), cfg
	case cfg.Backend.Model != "":
		log.V(1).Info("In-memory backend", "model", cfg.Backend.Model)
		b := must.Must1(config.ReadFileOrURL(cfg.Backend.Model))
		return must.Must1(memory.Load(bytes.NewReader(b))), cfg
	default:
		panic(errors.New("no backend: set --model or --backend, or a backend in --config"))
	}
}
