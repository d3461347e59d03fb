package main

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/baiirun/minitodo/internal/format"
	"github.com/baiirun/minitodo/internal/ingest"
	"github.com/baiirun/minitodo/internal/logging"
	"github.com/baiirun/minitodo/internal/model"
	"github.com/baiirun/minitodo/internal/todo"
)

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID %q: %w", arg, model.ErrInvalidArgument)
	}
	return id, nil
}

func (c *cli) addCmd() *cobra.Command {
	var (
		description string
		file        string
		taskNumber  int64
	)
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Create a todo",
		Long: `Create a todo with the next task number.

With --file the description is read from the file and the title defaults to
the file name.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.services()
			if err != nil {
				return err
			}
			req := todo.CreateRequest{Description: description, FilePath: file}
			if len(args) == 1 {
				req.Title = args[0]
			}
			if cmd.Flags().Changed("task-number") {
				req.TaskNumber = &taskNumber
			}
			item, err := a.todos.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			return c.emit(cmd, item, format.Created(item))
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "todo description")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the description from a file")
	cmd.Flags().Int64VarP(&taskNumber, "task-number", "n", 0, "explicit task number")
	return cmd
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.services()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			item, ok, err := a.todos.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("todo with ID %d: %w", id, model.ErrNotFound)
			}
			return c.emit(cmd, item, format.Todo(item))
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List todos in task number order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.services()
			if err != nil {
				return err
			}
			items, err := a.todos.List(cmd.Context())
			if err != nil {
				return err
			}
			if items == nil {
				items = []model.Item{}
			}
			return c.emit(cmd, items, format.TodoList(items))
		},
	}
}

func (c *cli) updateCmd() *cobra.Command {
	var title, description string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a todo's title or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.services()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			req := todo.UpdateRequest{ID: id}
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			item, err := a.todos.Update(cmd.Context(), req)
			if err != nil {
				return err
			}
			return c.emit(cmd, item, format.Updated(item))
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	return cmd
}

func (c *cli) doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a todo as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.services()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			item, err := a.todos.Complete(cmd.Context(), id)
			if err != nil {
				return err
			}
			return c.emit(cmd, item, format.Completed(item))
		},
	}
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.services()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			item, ok, err := a.todos.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("todo with ID %d: %w", id, model.ErrNotFound)
			}
			if _, err := a.todos.Delete(cmd.Context(), id); err != nil {
				return err
			}
			return c.emit(cmd, item, format.Deleted(item.Title))
		},
	}
}

func (c *cli) nextCmd() *cobra.Command {
	var idOnly bool
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the incomplete todo with the lowest task number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.services()
			if err != nil {
				return err
			}
			if idOnly {
				ref, ok, err := a.todos.NextID(cmd.Context())
				if err != nil {
					return err
				}
				var v any
				if ok {
					v = ref
				}
				return c.emit(cmd, v, format.NextID(ref, ok))
			}
			item, ok, err := a.todos.Next(cmd.Context())
			if err != nil {
				return err
			}
			var v any
			if ok {
				v = item
			}
			return c.emit(cmd, v, format.Next(item, ok))
		},
	}
	cmd.Flags().BoolVar(&idOnly, "id", false, "print only the ID and task number")
	return cmd
}

func (c *cli) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every todo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.services()
			if err != nil {
				return err
			}
			n, err := a.todos.ClearAll(cmd.Context())
			if err != nil {
				return err
			}
			return c.emit(cmd, map[string]int64{"deleted": n}, format.Cleared(n, "todos"))
		},
	}
}

func (c *cli) ingestCmd() *cobra.Command {
	var (
		clearFirst  bool
		exclude     []string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "ingest <folder>",
		Short: "Create one todo per file in a folder",
		Long: `Recursively scan a folder and create one numbered todo per file, in natural
file name order. Files that already back a todo are skipped, so re-running
picks up only new files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.services()
			if err != nil {
				return err
			}
			p := a.pipeline
			if len(exclude) > 0 || cmd.Flags().Changed("concurrency") {
				opts := []ingest.Option{ingest.WithExclude(slices.Concat(a.cfg.Ingest.Exclude, exclude)...)}
				if cmd.Flags().Changed("concurrency") {
					opts = append(opts, ingest.WithConcurrency(concurrency))
				} else {
					opts = append(opts, ingest.WithConcurrency(a.cfg.Ingest.Concurrency))
				}
				p = ingest.New(a.todos, logging.Component("ingest"), opts...)
			}

			res, err := p.Run(cmd.Context(), ingest.Request{Folder: args[0], ClearFirst: clearFirst})
			if err != nil {
				return err
			}
			return c.emit(cmd, res, format.IngestSummary(res, clearFirst))
		},
	}
	cmd.Flags().BoolVar(&clearFirst, "clear", false, "delete every existing todo first")
	cmd.Flags().StringArrayVarP(&exclude, "exclude", "x", nil, "skip paths matching a glob (repeatable)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "maximum files read at once")
	return cmd
}
