// Package format renders items, rules and operation results as the text
// returned to tool callers and printed by the CLI.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/baiirun/minitodo/internal/ingest"
	"github.com/baiirun/minitodo/internal/model"
	"github.com/baiirun/minitodo/internal/todo"
)

// Todo renders one item as a markdown section.
func Todo(item model.Item) string {
	mark := "⏳"
	if item.Completed() {
		mark = "✅"
	}
	return fmt.Sprintf("## %s%s %s\n\n%s", taskPrefix(item), item.Title, mark, item.Description)
}

// TodoList renders items separated by horizontal rules.
func TodoList(items []model.Item) string {
	if len(items) == 0 {
		return "No todos found."
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = Todo(item)
	}
	return fmt.Sprintf("# Todo List (%d items)\n\n%s", len(items), strings.Join(parts, "\n\n---\n\n"))
}

// Created, Updated and Completed confirm a single-item write.
func Created(item model.Item) string   { return "✅ Created " + ref(item) }
func Updated(item model.Item) string   { return "✅ Updated " + ref(item) }
func Completed(item model.Item) string { return "✅ " + ref(item) + " completed" }

// Deleted confirms a delete by the removed item's title.
func Deleted(title string) string {
	return fmt.Sprintf("✅ Todo Deleted: %q", title)
}

// Next renders the next item, or a notice when every item is done.
func Next(item model.Item, ok bool) string {
	if !ok {
		return "No todos found that need to be completed."
	}
	return Todo(item)
}

// NextID renders the next item's ID and task number.
func NextID(ref todo.NextRef, ok bool) string {
	if !ok {
		return "All todos have been completed"
	}
	return fmt.Sprintf("ID: %d, Task Number: %s", ref.ID, number(ref.TaskNumber))
}

// Cleared confirms a clear-all of noun ("todos" or "rules").
func Cleared(n int64, noun string) string {
	return fmt.Sprintf("✅ Cleared %d %s from the database.", n, noun)
}

// IngestSummary reports a bulk ingestion, listing files that were passed
// over.
func IngestSummary(res ingest.Result, clearFirst bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Created %d todos from files in %s", len(res.Created), res.Folder)
	if clearFirst {
		b.WriteString(" (after clearing all existing todos)")
	}
	if len(res.Duplicates) > 0 {
		fmt.Fprintf(&b, "\n\nAlready tracked (%d):", len(res.Duplicates))
		for _, p := range res.Duplicates {
			b.WriteString("\n- " + p)
		}
	}
	if len(res.Skipped) > 0 {
		fmt.Fprintf(&b, "\n\nSkipped (%d):", len(res.Skipped))
		for _, s := range res.Skipped {
			fmt.Fprintf(&b, "\n- %s: %s", s.Path, s.Reason)
		}
	}
	return b.String()
}

// Rule renders one rule.
func Rule(rule model.Rule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Rule %d**\nCreated: %s\n", rule.ID, rule.CreatedAt.UTC().Format(time.RFC3339))
	if rule.FilePath != nil {
		fmt.Fprintf(&b, "Source: %s\n", *rule.FilePath)
	}
	b.WriteString("\n" + rule.Description)
	return b.String()
}

// RuleList renders rules, each followed by a separator line.
func RuleList(rules []model.Rule) string {
	if len(rules) == 0 {
		return "No rules found"
	}
	parts := make([]string, len(rules))
	for i, r := range rules {
		parts[i] = Rule(r) + "\n---"
	}
	return strings.Join(parts, "\n")
}

// RuleNotFound is the reply for a lookup of a missing rule.
func RuleNotFound(id int64) string {
	return fmt.Sprintf("No rule found with ID %d", id)
}

// RulesAdded confirms rules loaded from path.
func RulesAdded(rules []model.Rule, path string, clearFirst bool) string {
	msg := fmt.Sprintf("✅ Created %d rule from %s", len(rules), path)
	if clearFirst {
		msg += " (after clearing all existing rules)"
	}
	return msg
}

// Error renders a failed operation, tagged with the failure kind so callers
// can tell a bad argument from a storage fault.
func Error(action string, err error) string {
	return fmt.Sprintf("Failed to %s: %v [%s]", action, err, model.KindOf(err))
}

// Usage appends a parameter summary to an error message.
func Usage(msg, usage string) string {
	return msg + "\n\n" + usage
}

func ref(item model.Item) string {
	return fmt.Sprintf("Todo %s: %s", number(item.TaskNumber), item.Title)
}

func taskPrefix(item model.Item) string {
	if item.TaskNumber == nil {
		return ""
	}
	return fmt.Sprintf("Task %d: ", *item.TaskNumber)
}

func number(n *int64) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *n)
}
