// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

// package mcp provides an MCP server to list, lay out and render architecture views.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/archcanvas/archcanvas/internal/pkg/build"
	"github.com/archcanvas/archcanvas/internal/pkg/logging"
	"github.com/archcanvas/archcanvas/internal/pkg/text"
	"github.com/archcanvas/archcanvas/pkg/backend"
	"github.com/archcanvas/archcanvas/pkg/layout"
	"github.com/archcanvas/archcanvas/pkg/model"
	"github.com/archcanvas/archcanvas/pkg/render"
	"github.com/archcanvas/archcanvas/pkg/shape"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var log = logging.Log()

const StreamablePath = "/mcp"

const (
	ListViews  = "list_views"
	LayoutView = "layout_view"
	RenderView = "render_view"
)

// Render formats.
const (
	FormatSVG = "svg"
	FormatDOT = "dot"
)

type ProjectParams struct {
	Project string `json:"project" jsonschema:"ID of the project"`
}

type ViewParams struct {
	Project string `json:"project" jsonschema:"ID of the project"`
	View    string `json:"view" jsonschema:"ID of the view"`
	Force   bool   `json:"force,omitempty" jsonschema:"Lay out automatically even if every node has a stored position"`
}

type RenderParams struct {
	Project string `json:"project" jsonschema:"ID of the project"`
	View    string `json:"view" jsonschema:"ID of the view"`
	Force   bool   `json:"force,omitempty" jsonschema:"Lay out automatically even if every node has a stored position"`
	Format  string `json:"format,omitempty" jsonschema:"Output format: svg (default) or dot"`
	Theme   string `json:"theme,omitempty" jsonschema:"Color theme: light (default) or dark"`
}

// Views is the result of list_views.
type Views struct {
	Views []model.ViewSummary `json:"views"`
}

type Server struct {
	*mcp.Server
	Models backend.ModelService
	Engine *layout.Engine
	Theme  shape.Theme // Default theme for render_view.
}

// NewServer returns a server for views from models, laid out by engine.
// A nil engine uses the default dagre layout.
func NewServer(models backend.ModelService, engine *layout.Engine) *Server {
	if engine == nil {
		engine = layout.New(layout.NewDagre())
	}
	s := &Server{
		Server: mcp.NewServer(&mcp.Implementation{Name: "archcanvas", Title: "Architecture Canvas MCP Server", Version: build.Version}, nil),
		Models: models,
		Engine: engine,
		Theme:  shape.Light,
	}
	s.addTools()
	return s
}

func (s *Server) addTools() {
	mcp.AddTool(s.Server, &mcp.Tool{
		Name: ListViews,
		Description: `
Returns the views of a project's architecture model.
Each view is a C4 diagram: a system context, the containers of a system, or the components of a container.`,
	},
		func(ctx context.Context, _ *mcp.CallToolRequest, p ProjectParams) (*mcp.CallToolResult, Views, error) {
			views, err := s.Models.GetViewSummaries(ctx, p.Project)
			if err != nil {
				return nil, Views{}, err
			}
			return textResult(text.WriteString(func(w io.Writer) { text.ListViews(w, views) })), Views{Views: views}, nil
		})

	mcp.AddTool(s.Server, &mcp.Tool{
		Name: LayoutView,
		Description: `
Returns the nodes and edges of a view with positions and sizes.
Stored positions are used if every node has one, otherwise the view is laid out automatically.`,
	},
		// Node types marshal as names, so there is no inferred output schema.
		func(ctx context.Context, _ *mcp.CallToolRequest, p ViewParams) (*mcp.CallToolResult, any, error) {
			_, r, err := s.layout(ctx, p)
			if err != nil {
				return nil, nil, err
			}
			b, err := json.Marshal(r)
			if err != nil {
				return nil, nil, err
			}
			result := textResult(string(b))
			result.StructuredContent = r
			return result, nil, nil
		})

	mcp.AddTool(s.Server, &mcp.Tool{
		Name: RenderView,
		Description: `
Returns a view drawn as an SVG document, or as a Graphviz DOT graph.`,
	},
		func(ctx context.Context, _ *mcp.CallToolRequest, p RenderParams) (*mcp.CallToolResult, any, error) {
			text, err := s.render(ctx, p)
			if err != nil {
				return nil, nil, err
			}
			return textResult(text), nil, nil
		})
}

func (s *Server) layout(ctx context.Context, p ViewParams) (*model.View, *layout.Result, error) {
	v, err := s.Models.GetView(ctx, p.Project, p.View)
	if err != nil {
		return nil, nil, err
	}
	r, err := s.Engine.LayoutView(v, layout.Options{Force: p.Force})
	if err != nil {
		return nil, nil, err
	}
	log.V(2).Info("MCP layout", "project", p.Project, "view", p.View, "auto", r.Auto)
	return v, r, nil
}

func (s *Server) render(ctx context.Context, p RenderParams) (string, error) {
	theme := s.Theme
	if p.Theme != "" {
		var err error
		if theme, err = shape.ParseTheme(p.Theme); err != nil {
			return "", err
		}
	}
	v, r, err := s.layout(ctx, ViewParams{Project: p.Project, View: p.View, Force: p.Force})
	if err != nil {
		return "", err
	}
	switch p.Format {
	case "", FormatSVG:
		var b bytes.Buffer
		d := render.Diagram{Title: v.Name, Nodes: layout.WithGroupWrapper(r.Nodes, s.Engine.GroupMargin), Edges: r.Edges}
		if err := render.SVG(&b, d, theme); err != nil {
			return "", err
		}
		return b.String(), nil
	case FormatDOT:
		b, err := layout.Graph(v.ID, v.Nodes, v.ExternalNodes, v.Relations).DOT()
		return string(b), err
	default:
		return "", fmt.Errorf("invalid format: %q", p.Format)
	}
}

// ServeStdio runs an MCP server, it returns when the client disconnects or the context is canceled.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}

// HTTPHandler is a handler for the streamable MCP protocol.
func (s *Server) HTTPHandler() http.Handler {
	// Use the same server for all requests, the server and backend are concurrent-safe.
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.Server }, nil)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}
