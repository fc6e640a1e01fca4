// Package sdk provides a typed Go client for the taskboard MCP server.
//
// The client wraps mcp-go/client.CallTool with one method per tool and
// retries failed calls via fortify.
//
// Usage:
//
//	transport, _ := client.NewStdioTransport("taskboard", "mcp")
//	c := sdk.NewClient(transport)
//	defer c.Close()
//
//	_, _ = c.Initialize(ctx)
//	list, _ := c.List(ctx)
//	fmt.Println(len(list.Tasks), list.Amount)
package sdk
