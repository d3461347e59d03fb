package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/baiirun/minitodo/internal/format"
	"github.com/baiirun/minitodo/internal/ingest"
	"github.com/baiirun/minitodo/internal/model"
	"github.com/baiirun/minitodo/internal/rules"
	"github.com/baiirun/minitodo/internal/todo"
)

const (
	addRulesUsage = `Parameters required:
- filePath (string): Absolute path to file containing rule content
- clearAll (boolean, optional): Whether to clear existing rules first (default: false)

Example: add-rules with filePath: "/home/user/rules.txt", clearAll: false`

	getRulesUsage = `Parameter optional:
- id (number, optional): The unique rule ID to retrieve. If not provided, returns all rules.

Examples:
- get-rules (returns all rules)
- get-rules with id: 5 (returns rule with ID 5)`
)

func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool("create-todo",
				mcp.WithDescription("Create a new todo item with auto-assigned task number"),
				mcp.WithString("title", mcp.Required(), mcp.Description("Todo title")),
				mcp.WithString("description", mcp.Required(), mcp.Description("Todo description")),
				mcp.WithString("filePath", mcp.Description("Optional file whose content becomes the description")),
			),
			Handler: s.createTodo,
		},
		{
			Tool: mcp.NewTool("get-todo",
				mcp.WithDescription("Get a specific todo by ID"),
				mcp.WithNumber("id", mcp.Required(), mcp.Description("Todo ID")),
			),
			Handler: s.getTodo,
		},
		{
			Tool: mcp.NewTool("update-todo",
				mcp.WithDescription("Update a todo title or description"),
				mcp.WithNumber("id", mcp.Required(), mcp.Description("Todo ID")),
				mcp.WithString("title", mcp.Description("New title")),
				mcp.WithString("description", mcp.Description("New description")),
			),
			Handler: s.updateTodo,
		},
		{
			Tool: mcp.NewTool("complete-todo",
				mcp.WithDescription("Mark a todo as completed"),
				mcp.WithNumber("id", mcp.Required(), mcp.Description("Todo ID")),
			),
			Handler: s.completeTodo,
		},
		{
			Tool: mcp.NewTool("delete-todo",
				mcp.WithDescription("Delete a todo"),
				mcp.WithNumber("id", mcp.Required(), mcp.Description("Todo ID")),
			),
			Handler: s.deleteTodo,
		},
		{
			Tool: mcp.NewTool("list-todos",
				mcp.WithDescription("List every todo in task number order"),
			),
			Handler: s.listTodos,
		},
		{
			Tool: mcp.NewTool("get-next-todo",
				mcp.WithDescription("Get the next todo that needs to be completed (status != 'Done')"),
			),
			Handler: s.getNextTodo,
		},
		{
			Tool: mcp.NewTool("get-next-todo-id",
				mcp.WithDescription("Get the ID and task number of the next incomplete todo"),
			),
			Handler: s.getNextTodoID,
		},
		{
			Tool: mcp.NewTool("bulk-add-todos",
				mcp.WithDescription("Create todos by reading file contents from a folder (recursively scans all files)"),
				mcp.WithString("folderPath", mcp.Required(), mcp.Description("Folder to scan")),
				mcp.WithBoolean("clearAll", mcp.Description("Delete every existing todo first"), mcp.DefaultBool(false)),
			),
			Handler: s.bulkAddTodos,
		},
		{
			Tool: mcp.NewTool("clear-all-todos",
				mcp.WithDescription("Delete all todos from the database"),
			),
			Handler: s.clearAllTodos,
		},
		{
			Tool: mcp.NewTool("add-rules",
				mcp.WithDescription("Add rules by reading content from a file"),
				mcp.WithString("filePath", mcp.Required(), mcp.Description("File containing rule content")),
				mcp.WithBoolean("clearAll", mcp.Description("Delete every existing rule first"), mcp.DefaultBool(false)),
			),
			Handler: s.addRules,
		},
		{
			Tool: mcp.NewTool("get-rules",
				mcp.WithDescription("Get all rules or a specific rule by ID"),
				mcp.WithNumber("id", mcp.Description("Rule ID")),
			),
			Handler: s.getRules,
		},
		{
			Tool: mcp.NewTool("clear-all-rules",
				mcp.WithDescription("Delete all rules from the database"),
			),
			Handler: s.clearAllRules,
		},
	}
}

func fail(action string, err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(format.Error(action, err))
}

func (s *Server) createTodo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const action = "create todo"
	title, err := stringArg(req, "title")
	if err != nil {
		return fail(action, err), nil
	}
	description, err := stringArg(req, "description")
	if err != nil {
		return fail(action, err), nil
	}
	filePath, err := optionalStringArg(req, "filePath")
	if err != nil {
		return fail(action, err), nil
	}

	create := todo.CreateRequest{Title: title, Description: description}
	if filePath != nil {
		create.FilePath = *filePath
	}
	item, err := s.todos.Create(ctx, create)
	if err != nil {
		return fail(action, err), nil
	}
	return mcp.NewToolResultText(format.Created(item)), nil
}

func (s *Server) getTodo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const action = "get todo"
	id, err := idArg(req, "id")
	if err != nil {
		return fail(action, err), nil
	}
	item, ok, err := s.todos.Get(ctx, id)
	if err != nil {
		return fail(action, err), nil
	}
	if !ok {
		return fail(action, fmt.Errorf("todo with ID %d: %w", id, model.ErrNotFound)), nil
	}
	return mcp.NewToolResultText(format.Todo(item)), nil
}

func (s *Server) updateTodo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const action = "update todo"
	id, err := idArg(req, "id")
	if err != nil {
		return fail(action, err), nil
	}
	title, err := optionalStringArg(req, "title")
	if err != nil {
		return fail(action, err), nil
	}
	description, err := optionalStringArg(req, "description")
	if err != nil {
		return fail(action, err), nil
	}

	item, err := s.todos.Update(ctx, todo.UpdateRequest{ID: id, Title: title, Description: description})
	if err != nil {
		return fail(action, err), nil
	}
	return mcp.NewToolResultText(format.Updated(item)), nil
}

func (s *Server) completeTodo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const action = "complete todo"
	id, err := idArg(req, "id")
	if err != nil {
		return fail(action, err), nil
	}
	item, err := s.todos.Complete(ctx, id)
	if err != nil {
		return fail(action, err), nil
	}
	return mcp.NewToolResultText(format.Completed(item)), nil
}

func (s *Server) deleteTodo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const action = "delete todo"
	id, err := idArg(req, "id")
	if err != nil {
		return fail(action, err), nil
	}
	item, ok, err := s.todos.Get(ctx, id)
	if err != nil {
		return fail(action, err), nil
	}
	if !ok {
		return fail(action, fmt.Errorf("todo with ID %d: %w", id, model.ErrNotFound)), nil
	}
	if _, err := s.todos.Delete(ctx, id); err != nil {
		return fail(action, err), nil
	}
	return mcp.NewToolResultText(format.Deleted(item.Title)), nil
}

func (s *Server) listTodos(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.todos.List(ctx)
	if err != nil {
		return fail("list todos", err), nil
	}
	return mcp.NewToolResultText(format.TodoList(items)), nil
}

func (s *Server) getNextTodo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	item, ok, err := s.todos.Next(ctx)
	if err != nil {
		return fail("get next todo", err), nil
	}
	return mcp.NewToolResultText(format.Next(item, ok)), nil
}

func (s *Server) getNextTodoID(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, ok, err := s.todos.NextID(ctx)
	if err != nil {
		return fail("get next todo ID", err), nil
	}
	return mcp.NewToolResultText(format.NextID(ref, ok)), nil
}

func (s *Server) bulkAddTodos(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const action = "bulk add todos"
	folder, err := stringArg(req, "folderPath")
	if err != nil {
		return fail(action, err), nil
	}
	clearFirst := req.GetBool("clearAll", false)

	res, err := s.pipeline.Run(ctx, ingest.Request{Folder: folder, ClearFirst: clearFirst})
	if err != nil {
		return fail(action, err), nil
	}
	return mcp.NewToolResultText(format.IngestSummary(res, clearFirst)), nil
}

func (s *Server) clearAllTodos(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, err := s.todos.ClearAll(ctx)
	if err != nil {
		return fail("clear all todos", err), nil
	}
	return mcp.NewToolResultText(format.Cleared(n, "todos")), nil
}

func (s *Server) addRules(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const action = "add rules"
	path, err := stringArg(req, "filePath")
	if err != nil {
		return mcp.NewToolResultError(format.Usage(format.Error(action, err), addRulesUsage)), nil
	}
	clearFirst := req.GetBool("clearAll", false)

	added, err := s.rules.Add(ctx, rules.AddRequest{FilePath: path, ClearFirst: clearFirst})
	if err != nil {
		return mcp.NewToolResultError(format.Usage(format.Error(action, err), addRulesUsage)), nil
	}
	return mcp.NewToolResultText(format.RulesAdded(added, path, clearFirst)), nil
}

func (s *Server) getRules(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const action = "get rules"
	id, hasID, err := optionalIDArg(req, "id")
	if err != nil {
		return mcp.NewToolResultError(format.Usage(format.Error(action, err), getRulesUsage)), nil
	}

	if hasID {
		rule, ok, err := s.rules.Get(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(format.Usage(format.Error(action, err), getRulesUsage)), nil
		}
		if !ok {
			return mcp.NewToolResultText(format.RuleNotFound(id)), nil
		}
		return mcp.NewToolResultText(format.Rule(rule)), nil
	}

	list, err := s.rules.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(format.Usage(format.Error(action, err), getRulesUsage)), nil
	}
	return mcp.NewToolResultText(format.RuleList(list)), nil
}

func (s *Server) clearAllRules(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, err := s.rules.ClearAll(ctx)
	if err != nil {
		return fail("clear all rules", err), nil
	}
	return mcp.NewToolResultText(format.Cleared(n, "rules")), nil
}
