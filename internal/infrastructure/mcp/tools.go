package mcp

import (
	"context"
	"strconv"
	"strings"
)

type AddArgs struct {
	Text string `json:"text" jsonschema:"description=The task text"`
}

type EditArgs struct {
	Task string `json:"task" jsonschema:"description=Task key or exact plain text"`
	Text string `json:"text" jsonschema:"description=The new task text"`
}

type TaskArgs struct {
	Task string `json:"task" jsonschema:"description=Task key or exact plain text"`
}

type MoveArgs struct {
	From int `json:"from" jsonschema:"description=Current zero-based position"`
	To   int `json:"to" jsonschema:"description=Target zero-based position"`
}

type AmountArgs struct {
	Amount string `json:"amount" jsonschema:"description=Non-negative whole number substituted into amount placeholders"`
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("taskboard_list").
		Description("List all tasks in display order with the current premium amount").
		Handler(s.handleList)

	s.mcpServer.Tool("taskboard_add").
		Description("Append a new task to the list").
		Handler(s.handleAdd)

	s.mcpServer.Tool("taskboard_edit").
		Description("Change the text of a task, keeping its position and completion").
		Handler(s.handleEdit)

	s.mcpServer.Tool("taskboard_toggle").
		Description("Flip the completion flag of a task").
		Handler(s.handleToggle)

	s.mcpServer.Tool("taskboard_remove").
		Description("Remove a task. Removed template tasks are not brought back by later reloads").
		Handler(s.handleRemove)

	s.mcpServer.Tool("taskboard_move").
		Description("Move a task from one position to another").
		Handler(s.handleMove)

	s.mcpServer.Tool("taskboard_set_amount").
		Description("Set the premium amount and re-render template tasks").
		Handler(s.handleSetAmount)

	s.mcpServer.Tool("taskboard_reload").
		Description("Fetch the template again and reconcile the list").
		Handler(s.handleReload)
}

func (s *Server) handleList(ctx context.Context, _ struct{}) (any, error) {
	return s.listResult(s.svc.Load(ctx)), nil
}

func (s *Server) handleAdd(ctx context.Context, args AddArgs) (any, error) {
	row, err := s.svc.Add(ctx, args.Text)
	if err != nil {
		return nil, s.friendly("add task", err)
	}
	return viewOf(len(s.svc.Snapshot())-1, row), nil
}

func (s *Server) handleEdit(ctx context.Context, args EditArgs) (any, error) {
	key, err := s.resolve(ctx, args.Task)
	if err != nil {
		return nil, s.friendly("edit task", err)
	}
	row, err := s.svc.Edit(ctx, key, args.Text)
	if err != nil {
		return nil, s.friendly("edit task", err)
	}
	return s.positioned(row.Key), nil
}

func (s *Server) handleToggle(ctx context.Context, args TaskArgs) (any, error) {
	key, err := s.resolve(ctx, args.Task)
	if err != nil {
		return nil, s.friendly("toggle task", err)
	}
	if _, err := s.svc.Toggle(ctx, key); err != nil {
		return nil, s.friendly("toggle task", err)
	}
	return s.positioned(key), nil
}

func (s *Server) handleRemove(ctx context.Context, args TaskArgs) (any, error) {
	key, err := s.resolve(ctx, args.Task)
	if err != nil {
		return nil, s.friendly("remove task", err)
	}
	task, err := s.svc.Remove(ctx, key)
	if err != nil {
		return nil, s.friendly("remove task", err)
	}
	return "Removed: " + task.Key(), nil
}

func (s *Server) handleMove(ctx context.Context, args MoveArgs) (any, error) {
	s.svc.Load(ctx)
	if err := s.svc.Move(ctx, args.From, args.To); err != nil {
		return nil, s.friendly("move task", err)
	}
	return s.listResult(s.svc.Snapshot()), nil
}

func (s *Server) handleSetAmount(ctx context.Context, args AmountArgs) (any, error) {
	if _, err := s.svc.SetAmount(ctx, strings.TrimSpace(args.Amount)); err != nil {
		return nil, s.friendly("set amount", err)
	}
	return s.listResult(s.svc.Snapshot()), nil
}

func (s *Server) handleReload(ctx context.Context, _ struct{}) (any, error) {
	rows, err := s.svc.Reconcile(ctx)
	if err != nil {
		return nil, s.friendly("reload template", err)
	}
	return s.listResult(rows), nil
}

func (s *Server) positioned(key string) TaskView {
	for i, r := range s.svc.Snapshot() {
		if r.Key == key {
			return viewOf(i, r)
		}
	}
	return TaskView{Key: key, Position: -1}
}

// positionLabel is used in resource listings.
func positionLabel(i int) string {
	return strconv.Itoa(i + 1)
}
