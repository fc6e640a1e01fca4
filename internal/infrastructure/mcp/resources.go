package mcp

import (
	"context"
	"encoding/json"
	"strings"

	mcplib "github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/taskboard/pkg/domain/todo"
)

// SchemaVersion is the current MCP tool schema version (semver).
const SchemaVersion = "1.0.0"

const (
	schemaURI = "taskboard://schema"
	tasksURI  = "taskboard://tasks"
)

type schemaResponse struct {
	SchemaVersion string   `json:"schema_version"`
	ServerVersion string   `json:"server_version"`
	Tools         []string `json:"tools"`
}

func (s *Server) registerResources() {
	s.mcpServer.Resource(schemaURI).
		Name(schemaURI).
		Description("MCP tool schema version and tool names").
		MimeType("application/json").
		Handler(func(_ context.Context, _ string, _ map[string]string) (*mcplib.ResourceContent, error) {
			resp := schemaResponse{
				SchemaVersion: SchemaVersion,
				ServerVersion: Version,
			}
			for _, t := range s.mcpServer.Tools() {
				resp.Tools = append(resp.Tools, t.Name)
			}
			data, err := json.Marshal(resp)
			if err != nil {
				return nil, err
			}
			return &mcplib.ResourceContent{
				URI:      schemaURI,
				MimeType: "application/json",
				Text:     string(data),
			}, nil
		})

	s.mcpServer.Resource(tasksURI).
		Name(tasksURI).
		Description("The task list as a markdown checklist").
		MimeType("text/markdown").
		Handler(func(ctx context.Context, _ string, _ map[string]string) (*mcplib.ResourceContent, error) {
			return &mcplib.ResourceContent{
				URI:      tasksURI,
				MimeType: "text/markdown",
				Text:     checklist(s.svc.Load(ctx)),
			}, nil
		})
}

// checklist renders rows as a numbered markdown checklist of plain text.
func checklist(rows []todo.Row) string {
	var b strings.Builder
	for i, r := range rows {
		mark := " "
		if r.Completed {
			mark = "x"
		}
		b.WriteString(positionLabel(i) + ". [" + mark + "] " + todo.PlainText(r.Text) + "\n")
	}
	return b.String()
}
