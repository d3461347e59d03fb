package main

import (
	"errors"
	"io"

	"github.com/spf13/cobra"
)

// cli carries state from the root pre-run into each command.
type cli struct {
	flags rootFlags
	app   *app
}

// run executes the command line and releases the store even when a command
// fails, since cobra skips post-run hooks after an error.
func run(args []string, stdout, stderr io.Writer) error {
	c := &cli{}
	cmd := newRootCmd(c)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if c.app != nil {
		err = errors.Join(err, c.app.Close())
		c.app = nil
	}
	return err
}

func newRootCmd(c *cli) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "minitodo",
		Short: "Ordered todo queue for agents",
		Long: `A small todo queue with sequential task numbers, bulk ingestion of a folder
of task files, and an MCP server so agents can pull the next task and mark it done.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, &c.flags)
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.app == nil {
				return nil
			}
			err := c.app.Close()
			c.app = nil
			return err
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&c.flags.ConfigPath, "config", "c", "", "path to config file (default ~/.minitodo/config.yaml)")
	pf.StringVar(&c.flags.DBPath, "db", "", "path to the todo store (env MINITODO_DB)")
	pf.StringVar(&c.flags.Backend, "backend", "", "storage backend: sqlite or json (env MINITODO_BACKEND)")
	pf.StringVar(&c.flags.LogLevel, "log-level", "", "log level: debug, info, warn, error, disabled (env MINITODO_LOG_LEVEL)")
	pf.StringVar(&c.flags.LogFile, "log-file", "", "write logs to a rotating file instead of stderr (env MINITODO_LOG_FILE)")
	pf.BoolVar(&c.flags.JSON, "json", false, "print JSON instead of text")

	rootCmd.AddCommand(
		c.addCmd(),
		c.showCmd(),
		c.listCmd(),
		c.updateCmd(),
		c.doneCmd(),
		c.deleteCmd(),
		c.nextCmd(),
		c.clearCmd(),
		c.ingestCmd(),
		c.rulesCmd(),
		c.serveCmd(),
		c.tuiCmd(),
	)
	return rootCmd
}

// services returns the app opened by the root pre-run.
func (c *cli) services() (*app, error) {
	if c.app == nil {
		return nil, errNotInitialized
	}
	return c.app, nil
}
