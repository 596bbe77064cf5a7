// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/archcanvas/archcanvas/internal/pkg/must"
	"github.com/archcanvas/archcanvas/internal/pkg/text"
	"sigs.k8s.io/yaml"
)

type printer interface {
	Print(any) // Print a single item.
}

type jsonPrinter struct{ *json.Encoder }

func (p jsonPrinter) Print(v any) { must.Must(p.Encode(v)) }

// textPrinter prints tables for values with a text form, YAML otherwise.
type textPrinter struct{ io.Writer }

func (p textPrinter) Print(v any) {
	if !text.Print(p.Writer, v) {
		yamlPrinter(p).Print(v)
	}
}

type yamlPrinter struct{ io.Writer }

func (p yamlPrinter) Print(v any) {
	b := must.Must1(yaml.Marshal(v))
	_ = must.Must1(p.Write(b))
}

func newPrinter(w io.Writer) printer {
	switch outputFlag.String() {
	case "json":
		return jsonPrinter{Encoder: json.NewEncoder(w)}
	case "json-pretty":
		p := jsonPrinter{Encoder: json.NewEncoder(w)}
		p.SetIndent("", "  ")
		return p
	case "yaml":
		return yamlPrinter{Writer: w}
	case "text":
		return textPrinter{Writer: w}
	default:
		panic(fmt.Errorf("invalid output type: %v", outputFlag))
	}
}
