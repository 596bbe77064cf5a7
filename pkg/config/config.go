// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/archcanvas/archcanvas/pkg/canvas"
	"github.com/archcanvas/archcanvas/pkg/layout"
	"github.com/archcanvas/archcanvas/pkg/shape"
)

// Config is the archcanvas configuration.
type Config struct {
	// More is a list of configuration files or URLs to include.
	More []string `json:"more,omitempty"`

	Backend Backend `json:"backend,omitempty"`
	Layout  Layout  `json:"layout,omitempty"`
	Canvas  Canvas  `json:"canvas,omitempty"`
}

// Backend selects where models are stored. At most one of URL and Model may be set.
type Backend struct {
	// URL of a remote backend REST API.
	URL string `json:"url,omitempty"`
	// Model is a YAML model file or URL served from memory.
	Model string `json:"model,omitempty"`
}

// Layout spacing in pixels. Zero values use the defaults.
type Layout struct {
	NodeSep     float64 `json:"nodeSep,omitempty"`
	EdgeSep     float64 `json:"edgeSep,omitempty"`
	Margin      float64 `json:"margin,omitempty"`
	GroupMargin float64 `json:"groupMargin,omitempty"`
}

// Canvas behavior. Zero values use the defaults.
type Canvas struct {
	// Debounce delay before a dropped node position is saved.
	Debounce Duration `json:"debounce,omitempty"`
	// PersistConcurrency limits concurrent position writes after a relayout.
	PersistConcurrency int `json:"persistConcurrency,omitempty"`
	// Theme for rendering, light or dark.
	Theme string `json:"theme,omitempty"`
}

// Default configuration values.
func Default() *Config {
	return &Config{
		Layout: Layout{
			NodeSep:     layout.DefaultNodeSep,
			EdgeSep:     layout.DefaultEdgeSep,
			Margin:      layout.DefaultMargin,
			GroupMargin: layout.DefaultGroupMargin,
		},
		Canvas: Canvas{
			Debounce:           Duration{canvas.DefaultDebounce},
			PersistConcurrency: canvas.DefaultPersistConcurrency,
			Theme:              string(shape.Light),
		},
	}
}

// Merge sets fields of c from non-zero fields of o.
func (c *Config) Merge(o *Config) {
	set(&c.Backend.URL, o.Backend.URL)
	set(&c.Backend.Model, o.Backend.Model)
	set(&c.Layout.NodeSep, o.Layout.NodeSep)
	set(&c.Layout.EdgeSep, o.Layout.EdgeSep)
	set(&c.Layout.Margin, o.Layout.Margin)
	set(&c.Layout.GroupMargin, o.Layout.GroupMargin)
	set(&c.Canvas.Debounce.Duration, o.Canvas.Debounce.Duration)
	set(&c.Canvas.PersistConcurrency, o.Canvas.PersistConcurrency)
	set(&c.Canvas.Theme, o.Canvas.Theme)
	c.More = append(c.More, o.More...)
}

func set[T comparable](field *T, value T) {
	var zero T
	if value != zero {
		*field = value
	}
}

// Validate the configuration.
func (c *Config) Validate() error {
	if c.Backend.URL != "" && c.Backend.Model != "" {
		return errors.New("backend: only one of url and model may be set")
	}
	for name, v := range map[string]float64{
		"nodeSep": c.Layout.NodeSep, "edgeSep": c.Layout.EdgeSep,
		"margin": c.Layout.Margin, "groupMargin": c.Layout.GroupMargin,
	} {
		if v < 0 {
			return fmt.Errorf("layout: %v is negative: %v", name, v)
		}
	}
	if c.Canvas.Debounce.Duration < 0 {
		return fmt.Errorf("canvas: debounce is negative: %v", c.Canvas.Debounce)
	}
	if c.Canvas.PersistConcurrency < 0 {
		return fmt.Errorf("canvas: persistConcurrency is negative: %v", c.Canvas.PersistConcurrency)
	}
	if _, err := shape.ParseTheme(c.Canvas.Theme); err != nil {
		return fmt.Errorf("canvas: %w", err)
	}
	return nil
}

// Engine returns a layout engine using the dagre layouter with the configured spacing.
func (c *Config) Engine() *layout.Engine {
	d := Default()
	d.Merge(c)
	dagre := layout.NewDagre()
	dagre.NodeSep, dagre.EdgeSep, dagre.Margin = d.Layout.NodeSep, d.Layout.EdgeSep, d.Layout.Margin
	e := layout.New(dagre)
	e.GroupMargin = d.Layout.GroupMargin
	return e
}

// Theme returns the configured theme, light if unset or invalid.
func (c *Config) Theme() shape.Theme {
	t, err := shape.ParseTheme(c.Canvas.Theme)
	if err != nil {
		return shape.Light
	}
	return t
}

// DebounceOrDefault returns the debounce delay.
func (c *Config) DebounceOrDefault() time.Duration {
	if c.Canvas.Debounce.Duration > 0 {
		return c.Canvas.Debounce.Duration
	}
	return canvas.DefaultDebounce
}
