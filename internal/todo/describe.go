package todo

import (
	"fmt"
	"path/filepath"
	"strings"
)

// CompletionPlaceholder marks where the completion instruction goes until the
// store has assigned an ID.
const CompletionPlaceholder = "**When completed, use the complete-todo MCP tool with ID: [ID will be auto-filled]**"

// CompletionInstruction is the finalized instruction for item id.
func CompletionInstruction(id int64) string {
	return fmt.Sprintf("**When completed, use the complete-todo MCP tool:**\n- ID: %d", id)
}

// FinalizeDescription swaps the placeholder for the real instruction.
func FinalizeDescription(description string, id int64) string {
	return strings.Replace(description, CompletionPlaceholder, CompletionInstruction(id), 1)
}

// FileDescription builds the description of an item created from one file.
func FileDescription(path, content string) string {
	return fmt.Sprintf("**Source File:** %s\n\n%s\n\n%s", path, content, CompletionPlaceholder)
}

// TaskDescription builds the description of an item created by bulk ingestion.
func TaskDescription(taskNumber int64, content string) string {
	return fmt.Sprintf("**Task %d**\n\n%s\n\n%s", taskNumber, content, CompletionPlaceholder)
}

// TaskTitle is the bulk-ingestion title: the task number and the file name
// without its extension.
func TaskTitle(taskNumber int64, path string) string {
	return fmt.Sprintf("Task %d: %s", taskNumber, BaseName(path))
}

// BaseName returns the last element of path with its extension removed.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
