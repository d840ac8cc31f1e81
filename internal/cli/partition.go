package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sizemap/pkg/core/item"
	"github.com/matzehuels/sizemap/pkg/core/partition"
	errs "github.com/matzehuels/sizemap/pkg/errors"
	"github.com/matzehuels/sizemap/pkg/pipeline"
)

// partitionCommand creates the partition debug command.
func (c *CLI) partitionCommand() *cobra.Command {
	var (
		root   string
		folder string
		output string
	)

	cmd := &cobra.Command{
		Use:   "partition <du-file>",
		Short: "Show how one folder is split into a balanced tree",
		Long: `Partition builds the size-balanced binary tree the layout uses for one
folder and prints it. With --output ending in .dot the tree is written as
Graphviz DOT; with any other name it is rendered to SVG.`,
		Example: `  sizemap partition du.txt --folder /home
  sizemap partition du.txt --folder /home -o home.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			if !cmd.Flags().Changed("root") {
				root = c.Config.Render.Root
			}
			if folder == "" {
				folder = root
			}

			data, err := readInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			entries, err := pipeline.Parse(data)
			if err != nil {
				return err
			}
			tree, err := pipeline.BuildTree(entries, pipeline.Options{Root: root})
			if err != nil {
				return err
			}

			t, err := partitionFolder(tree, folder)
			if err != nil {
				return err
			}
			logger.Debug("partitioned", "folder", folder, "leaves", len(partition.Leaves(t)), "height", partition.Height(t))

			switch {
			case output == "" || output == "-":
				_, err := fmt.Fprintln(cmd.OutOrStdout(), partition.String(t))
				return err
			case strings.HasSuffix(output, ".dot"):
				if err := writeFile(output, []byte(partition.ToDOT(t))); err != nil {
					return err
				}
			default:
				svg, err := partition.RenderSVG(ctx, t)
				if err != nil {
					return err
				}
				if err := writeFile(output, svg); err != nil {
					return err
				}
			}
			printFile(output)
			printKeyValue("Leaves", fmt.Sprint(len(partition.Leaves(t))))
			printKeyValue("Height", fmt.Sprint(partition.Height(t)))
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", pipeline.DefaultRoot, "path du was run on")
	cmd.Flags().StringVar(&folder, "folder", "", "folder to partition (default: root)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write .dot or .svg instead of printing")
	return cmd
}

// partitionFolder finds the folder at path below tree and partitions its
// children in layout order.
func partitionFolder(tree *item.Folder, path string) (partition.Tree, error) {
	var it item.Item = tree
	if path != tree.Name() {
		found, ok := item.Find(tree, path)
		if !ok {
			return nil, errs.New(errs.ErrCodeNotFound, "folder %q not found", path)
		}
		it = found
	}

	f, ok := it.(*item.Folder)
	if !ok {
		return nil, errs.New(errs.ErrCodeInvalidPath, "%q is a file, not a folder", path)
	}
	if f.Len() == 0 {
		return nil, errs.New(errs.ErrCodeInvalidArgument, "folder %q is empty", path)
	}

	children := f.Children()
	slices.SortStableFunc(children, func(a, b item.Item) int {
		return cmp.Compare(b.Size(), a.Size())
	})
	return partition.Partition(children)
}
