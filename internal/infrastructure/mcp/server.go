// Package mcp exposes the task list to MCP clients.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/taskboard/pkg/application"
	"github.com/felixgeelhaar/taskboard/pkg/domain/todo"
)

var (
	Version     = "dev"
	BuildCommit = "unknown"
	BuildDate   = "unknown"
)

// Transports accepted by Serve.
const (
	TransportStdio     = "stdio"
	TransportHTTP      = "http"
	TransportWebSocket = "ws"
)

type Server struct {
	mcpServer *mcp.Server
	svc       *application.ListService
	logger    *slog.Logger
}

// NewServer registers the taskboard tools and resources on a new MCP server.
func NewServer(svc *application.ListService, logger *slog.Logger) (*Server, error) {
	if svc == nil {
		return nil, errors.New("list service is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	info := mcp.ServerInfo{
		Name:    "taskboard",
		Version: Version,
	}

	s := &Server{
		mcpServer: mcp.NewServer(info,
			mcp.WithTitle("Taskboard MCP Server"),
			mcp.WithDescription("Taskboard exposes a to-do list seeded from a template with premium amount placeholders."),
			mcp.WithBuildInfo(BuildCommit, BuildDate),
			mcp.WithInstructions("List tasks first. Tasks are addressed by key or by their exact plain text."),
		),
		svc:    svc,
		logger: logger,
	}

	s.registerTools()
	s.registerResources()
	return s, nil
}

// mcpErr returns a user-friendly error for MCP clients.
func mcpErr(friendly string) error {
	return fmt.Errorf("%s", friendly)
}

// friendly maps service errors to messages an MCP client can act on.
func (s *Server) friendly(op string, err error) error {
	switch {
	case errors.Is(err, application.ErrEmptyText):
		return mcpErr("Task text must not be empty.")
	case errors.Is(err, application.ErrDuplicateText):
		return mcpErr("A task with this text already exists.")
	case errors.Is(err, application.ErrTaskNotFound):
		return mcpErr("Task not found. Call taskboard_list to see current keys.")
	case errors.Is(err, application.ErrInvalidAmount):
		return mcpErr("Amount must be a non-negative whole number.")
	case errors.Is(err, application.ErrInvalidOrder):
		return mcpErr("Invalid position.")
	case errors.Is(err, application.ErrTemplateUnavailable):
		return mcpErr("The task template could not be fetched. The current list is unchanged.")
	}
	s.logger.Error("mcp tool failed", "tool", op, "error", err)
	return mcpErr(fmt.Sprintf("Failed to %s.", op))
}

// TaskView is a task as returned to MCP clients.
type TaskView struct {
	Key       string `json:"key"`
	Position  int    `json:"position"`
	Text      string `json:"text"`
	Plain     string `json:"plain"`
	Completed bool   `json:"completed"`
}

// ListResult is the full list with the current amount.
type ListResult struct {
	Tasks  []TaskView `json:"tasks"`
	Amount int        `json:"amount"`
}

func viewOf(pos int, r todo.Row) TaskView {
	return TaskView{Key: r.Key, Position: pos, Text: r.Text, Plain: todo.PlainText(r.Text), Completed: r.Completed}
}

func (s *Server) listResult(rows []todo.Row) ListResult {
	out := ListResult{Tasks: make([]TaskView, 0, len(rows)), Amount: s.svc.Amount()}
	for i, r := range rows {
		out.Tasks = append(out.Tasks, viewOf(i, r))
	}
	return out
}

// resolve accepts a row key or the task's exact plain text.
func (s *Server) resolve(ctx context.Context, ref string) (string, error) {
	rows := s.svc.Load(ctx)
	for _, r := range rows {
		if r.Key == ref {
			return r.Key, nil
		}
	}
	for _, r := range rows {
		if todo.PlainText(r.Text) == ref {
			return r.Key, nil
		}
	}
	return "", fmt.Errorf("%w: %s", application.ErrTaskNotFound, ref)
}

func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr, mcp.WithDefaultCORS())
}

func (s *Server) ServeWebSocket(ctx context.Context, addr string) error {
	return mcp.ServeWebSocket(ctx, s.mcpServer, addr)
}

// Serve runs the server on the named transport until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, transport, addr string) error {
	switch transport {
	case TransportStdio, "":
		return s.ServeStdio(ctx)
	case TransportHTTP:
		return s.ServeHTTP(ctx, addr)
	case TransportWebSocket, "websocket":
		return s.ServeWebSocket(ctx, addr)
	default:
		return fmt.Errorf("unknown transport %q (want stdio, http or ws)", transport)
	}
}
