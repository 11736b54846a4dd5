package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/shadowtree"
)

func newBuildCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "build [file.yaml]",
		Short: "Build a tree from a YAML description, commit it and print it",
		Long: `Build decodes a tree description, creates a family for every element,
commits the tree as its first revision and prints the mounted result.

Without a file the built-in demo tree is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}

			el, err := loadElement(path)
			if err != nil {
				return err
			}
			root, err := buildTree(core.SurfaceID(a.cfg.SurfaceID), el)
			if err != nil {
				return err
			}
			tree, err := a.commitTree(cmd.Context(), root)
			if err != nil {
				return err
			}

			info := shadowtree.Describe(tree.Root())
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			newTreePrinter(cmd.OutOrStdout(), a.noColor).print(info)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the committed tree as JSON")
	return cmd
}
