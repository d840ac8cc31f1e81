package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sizemap/pkg/du"
)

// scanCommand creates the scan command, a portable stand-in for "du -ab".
func (c *CLI) scanCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "Print du-style sizes for a directory",
		Long: `Scan walks a directory and prints one "<bytes>\t<path>" line per file and
directory, in the format render expects. Paths are absolute.`,
		Example: `  sizemap scan ~/src > src.du && sizemap render src.du --root ~/src`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			prog := newProgress(logger)

			spinner := newSpinner(ctx, fmt.Sprintf("Scanning %s...", args[0]))
			spinner.Start()
			entries, err := du.Scan(ctx, args[0])
			spinner.Stop()
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			if err := du.Write(w, entries); err != nil {
				return err
			}

			// The scanned directory itself comes first.
			top := entries[0]
			prog.done(fmt.Sprintf("Scanned %s entries, %s", humanize.Comma(int64(len(entries))), humanize.Bytes(uint64(top.Size))))
			if output != "" && output != "-" {
				printFile(output)
				printNextStep("Render it with", fmt.Sprintf("sizemap render %s --root %s", output, top.Path))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}
