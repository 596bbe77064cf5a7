// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

// Package config contains configuration types for archcanvas.
// Configuration is loaded from YAML or JSON files or URLs.
package config

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/archcanvas/archcanvas/internal/pkg/logging"
	"sigs.k8s.io/yaml"
)

var log = logging.Log()

// Load a configuration from a file or URL.
//
// If the configuration has a More section, the referenced configurations are loaded first
// and values set in the including file take precedence.
// Relative paths in More and Backend.Model are relative to the location of the file containing them.
func Load(fileOrURL string) (*Config, error) {
	c, err := load(fileOrURL, map[string]bool{})
	if err != nil {
		return nil, err
	}
	return c, c.Validate()
}

func load(source string, loading map[string]bool) (*Config, error) {
	if loading[source] {
		return nil, fmt.Errorf("%v: include cycle", source)
	}
	loading[source] = true
	defer delete(loading, source)

	log.V(2).Info("Loading configuration", "config", source)
	b, err := ReadFileOrURL(source)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", source, err)
	}
	c := &Config{}
	if err := yaml.UnmarshalStrict(b, c); err != nil {
		return nil, fmt.Errorf("%v: %w", source, err)
	}
	if c.Backend.Model != "" {
		c.Backend.Model = resolve(source, c.Backend.Model)
	}
	merged := &Config{}
	for _, s := range c.More {
		more, err := load(resolve(source, s), loading)
		if err != nil {
			return nil, err
		}
		merged.Merge(more)
	}
	merged.Merge(c)
	merged.More = nil
	return merged, nil
}

// ReadFileOrURL reads source as a URL if it is absolute, otherwise as a file path.
func ReadFileOrURL(source string) ([]byte, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, err
	}
	if u.IsAbs() && u.Scheme != "file" {
		resp, err := http.Get(u.String())
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != 200 {
			return nil, fmt.Errorf("%v", http.StatusText(resp.StatusCode))
		}
		return b, nil
	} else {
		return os.ReadFile(u.Path)
	}
}

func resolve(base, ref string) string {
	if filepath.IsAbs(ref) {
		return ref
	}
	if r, err := url.Parse(ref); err == nil {
		if r.IsAbs() {
			return ref
		}
		if b, err := url.Parse(base); err == nil && b.IsAbs() {
			return b.ResolveReference(r).String()
		}
	}
	return filepath.Join(filepath.Dir(base), ref)
}
