package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"example.com/charnotes/internal/app"
	"github.com/spf13/cobra"
)

type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

type globalOptions struct {
	DBPath     string
	ConfigPath string
	LogFile    string
	LogLevel   string
}

type commandDeps struct {
	out     io.Writer
	build   BuildInfo
	globals *globalOptions
}

// runEditorFn starts the terminal editor; tests replace it.
var runEditorFn = func(ctx context.Context, sess *session) error {
	r := app.New(sess.notes, sess.logger)
	r.DBPath = sess.store.Path()
	r.Keymap = sess.cfg.Keymap
	return r.Run(ctx)
}

func NewRootCommand(out io.Writer, build BuildInfo) *cobra.Command {
	globals := &globalOptions{}
	deps := commandDeps{out: out, build: build, globals: globals}

	cmd := &cobra.Command{
		Use:   "charnotes",
		Short: "A one-note editor that stores every character as its own record",
		Long: "charnotes opens a single note in the terminal. Each change is written\n" +
			"straight to a SQLite file, one row per user-perceived character.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("unexpected arguments %v", args)
			}
			return withSession(cmd.Context(), deps, runEditorFn)
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(out)

	flags := cmd.PersistentFlags()
	flags.StringVar(&globals.DBPath, "db", "", "SQLite file holding the note")
	flags.StringVar(&globals.ConfigPath, "config", "", "config file (default ~/.config/charnotes/config.toml)")
	flags.StringVar(&globals.LogFile, "log-file", "", "write JSON logs to this file")
	flags.StringVar(&globals.LogLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(newPrintCommand(deps))
	cmd.AddCommand(newWriteCommand(deps))
	cmd.AddCommand(newStatsCommand(deps))
	cmd.AddCommand(newVersionCommand(deps))
	return cmd
}

func newVersionCommand(deps commandDeps) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("version does not accept positional arguments")
			}
			if asJSON {
				return mapCommandError(printJSON(deps.out, deps.build))
			}
			_, err := fmt.Fprintf(deps.out, "version=%s commit=%s build_time=%s\n", deps.build.Version, deps.build.Commit, deps.build.BuildTime)
			return mapCommandError(err)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print version as JSON")
	return cmd
}

func printJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
