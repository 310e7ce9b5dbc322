package cli

import (
	"github.com/fractional-company/vaultctl/internal/cli/render"
	"github.com/fractional-company/vaultctl/internal/usecase"
	"github.com/spf13/cobra"
)

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	var (
		selection   selectionFlags
		dumpCommand bool
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify deployed components on the block explorer",
		Long: `Verify the source of every component recorded in the network's manifest.

Constructor arguments and library addresses are rebuilt from the manifest.
Components are verified independently: a failure is reported and the others
continue.

Examples:
  vaultctl verify --network rinkeby                        # Verify every component
  vaultctl verify --network rinkeby --only vault-registry  # Verify one component
  vaultctl verify --network mainnet --dump-command         # Print the forge commands`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.VerifyComponents.Execute(cmd.Context(), usecase.VerifyParams{
				Components:  selection.components(),
				Group:       selection.group,
				DumpCommand: dumpCommand,
			})
			if err != nil {
				return err
			}

			if err := render.NewVerifyRenderer(cmd.OutOrStdout()).Render(result); err != nil {
				return err
			}
			if !result.Success() {
				return errReported
			}
			return nil
		},
	}

	selection.register(cmd, "verify")
	cmd.Flags().BoolVar(&dumpCommand, "dump-command", false, "Print the forge commands instead of running them")
	cmd.Flags().Int("concurrency", 0, "Maximum concurrent verification requests (default 4)")

	return cmd
}

// NewManifestCmd creates the manifest command
func NewManifestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "manifest",
		Short: "Show the deployed addresses of a network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			view, err := app.ShowManifest.Execute(cmd.Context())
			if err != nil {
				return err
			}
			return render.NewManifestRenderer(cmd.OutOrStdout()).Render(view)
		},
	}
}
