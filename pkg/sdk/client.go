package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/mcp-go/client"
)

const (
	schemaURI = "taskboard://schema"
	tasksURI  = "taskboard://tasks"
)

// Client is a typed Go client for the taskboard MCP server.
type Client struct {
	mcp      *client.Client
	retryCfg retry.Config
	timeout  time.Duration
}

// NewClient creates a new SDK client wrapping the given MCP transport.
func NewClient(transport client.Transport, opts ...Option) *Client {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return &Client{
		mcp:     client.New(transport, client.WithTimeout(o.timeout)),
		timeout: o.timeout,
		retryCfg: retry.Config{
			MaxAttempts:   o.maxAttempts,
			InitialDelay:  o.initialDelay,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Initialize performs the MCP initialize handshake.
func (c *Client) Initialize(ctx context.Context) (*client.ServerInfo, error) {
	return c.mcp.Initialize(ctx)
}

// Close closes the underlying transport.
func (c *Client) Close() error {
	return c.mcp.Close()
}

// call invokes a tool with retry. Tool-level errors are not retried.
func (c *Client) call(ctx context.Context, tool string, args map[string]any) (*client.ToolResult, error) {
	r := retry.New[*client.ToolResult](c.retryCfg)
	result, err := r.Do(ctx, func(ctx context.Context) (*client.ToolResult, error) {
		return c.mcp.CallTool(ctx, tool, args)
	})
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", tool, err)
	}
	if result.IsError {
		msg := ""
		if len(result.Content) > 0 {
			msg = result.Content[0].Text
		}
		return nil, &ToolError{Tool: tool, Message: msg}
	}
	return result, nil
}

// unmarshalText extracts Content[0].Text from a tool result and unmarshals it as JSON.
func unmarshalText[T any](result *client.ToolResult) (*T, error) {
	text, err := textResult(result)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return &v, nil
}

func textResult(result *client.ToolResult) (string, error) {
	if len(result.Content) == 0 {
		return "", ErrNoContent
	}
	return result.Content[0].Text, nil
}

// --- Schema ---

// GetSchema reads the taskboard://schema resource from the server.
func (c *Client) GetSchema(ctx context.Context) (*SchemaInfo, error) {
	rc, err := c.mcp.ReadResource(ctx, schemaURI)
	if err != nil {
		return nil, fmt.Errorf("read schema resource: %w", err)
	}
	var info SchemaInfo
	if err := json.Unmarshal([]byte(rc.Text), &info); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	return &info, nil
}

// Compatible returns nil when the server schema major version matches
// SupportedSchemaMajor.
func (c *Client) Compatible(ctx context.Context) error {
	info, err := c.GetSchema(ctx)
	if err != nil {
		return fmt.Errorf("check compatibility: %w", err)
	}
	serverMajor := majorVersion(info.SchemaVersion)
	if serverMajor != SupportedSchemaMajor {
		return fmt.Errorf("incompatible schema: server=%s (major %s), sdk supports major %s",
			info.SchemaVersion, serverMajor, SupportedSchemaMajor)
	}
	return nil
}

func majorVersion(v string) string {
	for i, ch := range v {
		if ch == '.' {
			return v[:i]
		}
	}
	return v
}

// Checklist reads the list as a numbered markdown checklist.
func (c *Client) Checklist(ctx context.Context) (string, error) {
	rc, err := c.mcp.ReadResource(ctx, tasksURI)
	if err != nil {
		return "", fmt.Errorf("read tasks resource: %w", err)
	}
	return rc.Text, nil
}

// --- Tasks ---

// List returns every task in display order.
func (c *Client) List(ctx context.Context) (*TaskList, error) {
	res, err := c.call(ctx, "taskboard_list", nil)
	if err != nil {
		return nil, err
	}
	return unmarshalText[TaskList](res)
}

// Add appends a task.
func (c *Client) Add(ctx context.Context, text string) (*Task, error) {
	res, err := c.call(ctx, "taskboard_add", map[string]any{"text": text})
	if err != nil {
		return nil, err
	}
	return unmarshalText[Task](res)
}

// Edit replaces the text of the task addressed by key or plain text.
func (c *Client) Edit(ctx context.Context, task, text string) (*Task, error) {
	res, err := c.call(ctx, "taskboard_edit", map[string]any{"task": task, "text": text})
	if err != nil {
		return nil, err
	}
	return unmarshalText[Task](res)
}

// Toggle flips the completion flag of a task.
func (c *Client) Toggle(ctx context.Context, task string) (*Task, error) {
	res, err := c.call(ctx, "taskboard_toggle", map[string]any{"task": task})
	if err != nil {
		return nil, err
	}
	return unmarshalText[Task](res)
}

// Remove deletes a task and returns the server's confirmation.
func (c *Client) Remove(ctx context.Context, task string) (string, error) {
	res, err := c.call(ctx, "taskboard_remove", map[string]any{"task": task})
	if err != nil {
		return "", err
	}
	return textResult(res)
}

// Move relocates the task at zero-based index from to index to.
func (c *Client) Move(ctx context.Context, from, to int) (*TaskList, error) {
	res, err := c.call(ctx, "taskboard_move", map[string]any{"from": from, "to": to})
	if err != nil {
		return nil, err
	}
	return unmarshalText[TaskList](res)
}

// SetAmount stores a new premium amount and returns the re-rendered list.
func (c *Client) SetAmount(ctx context.Context, amount int) (*TaskList, error) {
	res, err := c.call(ctx, "taskboard_set_amount", map[string]any{"amount": fmt.Sprint(amount)})
	if err != nil {
		return nil, err
	}
	return unmarshalText[TaskList](res)
}

// Reload fetches the template again and reconciles the list.
func (c *Client) Reload(ctx context.Context) (*TaskList, error) {
	res, err := c.call(ctx, "taskboard_reload", nil)
	if err != nil {
		return nil, err
	}
	return unmarshalText[TaskList](res)
}
