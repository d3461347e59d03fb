package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// emit prints v as indented JSON when --json is set, otherwise text.
func (c *cli) emit(cmd *cobra.Command, v any, text string) error {
	out := cmd.OutOrStdout()
	if !c.flags.JSON {
		_, err := fmt.Fprintln(out, text)
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}
