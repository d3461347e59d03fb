package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baiirun/minitodo/internal/format"
	"github.com/baiirun/minitodo/internal/model"
	"github.com/baiirun/minitodo/internal/rules"
)

func (c *cli) rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage rules that accompany the todo queue",
	}
	cmd.AddCommand(c.rulesAddCmd(), c.rulesListCmd(), c.rulesClearCmd())
	return cmd
}

func (c *cli) rulesAddCmd() *cobra.Command {
	var clearFirst bool
	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Add a rule from a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.services()
			if err != nil {
				return err
			}
			added, err := a.rules.Add(cmd.Context(), rules.AddRequest{FilePath: args[0], ClearFirst: clearFirst})
			if err != nil {
				return err
			}
			return c.emit(cmd, added, format.RulesAdded(added, args[0], clearFirst))
		},
	}
	cmd.Flags().BoolVar(&clearFirst, "clear", false, "delete every existing rule first")
	return cmd
}

func (c *cli) rulesListCmd() *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rules, or show one with --id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.services()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("id") {
				rule, ok, err := a.rules.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%s: %w", format.RuleNotFound(id), model.ErrNotFound)
				}
				return c.emit(cmd, rule, format.Rule(rule))
			}
			list, err := a.rules.List(cmd.Context())
			if err != nil {
				return err
			}
			if list == nil {
				list = []model.Rule{}
			}
			return c.emit(cmd, list, format.RuleList(list))
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "show a single rule")
	return cmd
}

func (c *cli) rulesClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every rule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.services()
			if err != nil {
				return err
			}
			n, err := a.rules.ClearAll(cmd.Context())
			if err != nil {
				return err
			}
			return c.emit(cmd, map[string]int64{"deleted": n}, format.Cleared(n, "rules"))
		},
	}
}
