package cli

import (
	"github.com/fractional-company/vaultctl/internal/cli/render"
	"github.com/fractional-company/vaultctl/internal/usecase"
	"github.com/spf13/cobra"
)

// NewMerkleCmd creates the merkle command and its verify subcommand
func NewMerkleCmd() *cobra.Command {
	var (
		out        string
		sortLeaves bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "merkle <permissions.yaml>",
		Short: "Build the Merkle tree of vault permissions",
		Long: `Build the Merkle tree of a permission allow-list and write the proof of
every leaf.

The input lists permissions either as 32-byte hex values or as
{module, target, selector} entries, which are hashed with
keccak256(abi.encode(module, target, selector)).

Examples:
  vaultctl merkle permissions.yaml                       # Print the root
  vaultctl merkle permissions.yaml --out proofs.json     # Write the proofs
  vaultctl merkle permissions.yaml --sort-leaves -v      # Sorted leaves, list them`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.BuildPermissionTree.Execute(cmd.Context(), usecase.BuildTreeParams{
				InputPath:  args[0],
				OutputPath: out,
				SortLeaves: sortLeaves,
			})
			if err != nil {
				return err
			}
			return render.NewMerkleRenderer(cmd.OutOrStdout(), verbose).Render(result)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "File to write the proofs to")
	cmd.Flags().BoolVar(&sortLeaves, "sort-leaves", false, "Sort leaves before building the tree")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List every leaf")

	cmd.AddCommand(newMerkleVerifyCmd())
	return cmd
}

func newMerkleVerifyCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "verify <proofs.json>",
		Short: "Check every proof of a proof file against its root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.VerifyPermissionProofs.Execute(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := render.NewMerkleRenderer(cmd.OutOrStdout(), verbose).RenderCheck(result); err != nil {
				return err
			}
			if !result.Valid() {
				return errReported
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List every checked entry")
	return cmd
}
