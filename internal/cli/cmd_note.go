package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"example.com/charnotes/internal/store"
	"example.com/charnotes/pkg/codec"
	"github.com/spf13/cobra"
)

// maxCharacters is the longest note the store schema can index.
const maxCharacters = store.MaxIndex + 1

func newPrintCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:     "print",
		Short:   "Write the stored note to stdout",
		Example: "  charnotes print > note.txt",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("print does not accept positional arguments")
			}
			return withSession(cmd.Context(), deps, func(ctx context.Context, sess *session) error {
				text, err := sess.notes.Load(ctx)
				if err != nil {
					return err
				}
				_, err = io.WriteString(deps.out, text)
				return err
			})
		},
	}
}

func newWriteCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "write [text]",
		Short: "Replace the stored note with text or stdin",
		Example: "  charnotes write 你好\n" +
			"  charnotes write < note.txt",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return usageErrorf("write accepts at most one argument")
			}
			var text string
			if len(args) == 1 {
				text = args[0]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return mapCommandError(fmt.Errorf("read stdin: %w", err))
				}
				text = string(data)
			}
			if n := codec.Len(text); n > maxCharacters {
				return usageErrorf("note has %d characters; at most %d are stored", n, maxCharacters)
			}
			return withSession(cmd.Context(), deps, func(ctx context.Context, sess *session) error {
				if _, err := sess.notes.Save(ctx, text); err != nil {
					return err
				}
				_, err := fmt.Fprintf(deps.out, "saved %d characters to %s\n", codec.Len(text), sess.store.Path())
				return err
			})
		},
	}
}

type statsReport struct {
	Path       string `json:"path"`
	Records    int    `json:"records"`
	Characters int    `json:"characters"`
	Lines      int    `json:"lines"`
	Valid      bool   `json:"valid"`
	Problem    string `json:"problem,omitempty"`
}

func newStatsCommand(deps commandDeps) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Report record count and index consistency",
		Example: "  charnotes stats\n" +
			"  charnotes stats --json",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("stats does not accept positional arguments")
			}
			return withSession(cmd.Context(), deps, func(ctx context.Context, sess *session) error {
				records, err := sess.store.LoadAll(ctx)
				if err != nil {
					return err
				}
				text := codec.Decode(records)
				report := statsReport{
					Path:       sess.store.Path(),
					Records:    len(records),
					Characters: codec.Len(text),
					Lines:      countLines(text),
					Valid:      true,
				}
				if err := codec.Validate(records); err != nil {
					report.Valid = false
					report.Problem = err.Error()
				}
				if asJSON {
					return printJSON(deps.out, report)
				}
				_, err = fmt.Fprintf(deps.out, "path=%s records=%d characters=%d lines=%d valid=%t\n",
					report.Path, report.Records, report.Characters, report.Lines, report.Valid)
				if err == nil && report.Problem != "" {
					_, err = fmt.Fprintf(deps.out, "problem=%s\n", report.Problem)
				}
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print stats as JSON")
	return cmd
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
