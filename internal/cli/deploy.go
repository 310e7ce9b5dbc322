package cli

import (
	"errors"
	"fmt"

	"github.com/fractional-company/vaultctl/internal/app"
	"github.com/fractional-company/vaultctl/internal/cli/render"
	"github.com/fractional-company/vaultctl/internal/usecase"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var errNothingSelected = errors.New("no components selected")

// selectionFlags choose the components of a deploy or verify run
type selectionFlags struct {
	only  []string
	group string
}

func (f *selectionFlags) register(cmd *cobra.Command, verb string) {
	cmd.Flags().StringSliceVar(&f.only, "only", nil, fmt.Sprintf("Comma-separated components to %s", verb))
	cmd.Flags().StringVar(&f.group, "group", "", fmt.Sprintf("Named group of components to %s", verb))
	cmd.MarkFlagsMutuallyExclusive("only", "group")
}

func (f *selectionFlags) components() []string {
	return lo.Uniq(lo.Compact(f.only))
}

// NewDeployCmd creates the deploy command
func NewDeployCmd() *cobra.Command {
	var (
		selection   selectionFlags
		interactive bool
		dryRun      bool
		yes         bool
		build       bool
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy components in dependency order",
		Long: `Deploy the vault contract system to the selected network.

Components are deployed one at a time in dependency order and each address is
threaded into the components that reference it. The addresses are written to
the network's manifest. When a deployment fails the run stops and the
addresses deployed so far are kept.

Examples:
  vaultctl deploy --network rinkeby                       # Deploy every component
  vaultctl deploy --network rinkeby --only vault-registry # Redeploy one component
  vaultctl deploy --network rinkeby --group modules --yes # Deploy a group without prompting
  vaultctl deploy --network local --select                # Pick components interactively
  vaultctl deploy --network mainnet --dry-run             # Show the plan only`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			params := usecase.DeployParams{
				Components:  selection.components(),
				Group:       selection.group,
				DryRun:      dryRun || app.Config.DryRun,
				SkipConfirm: yes,
				Build:       build,
			}

			if interactive {
				picked, err := selectInteractively(cmd, app)
				if err != nil {
					return err
				}
				params.Components = picked
			}

			result, err := app.DeployComponents.Execute(ctx, params)
			if result == nil {
				return err
			}

			if renderErr := render.NewDeployRenderer(cmd.OutOrStdout()).Render(result); renderErr != nil {
				return renderErr
			}
			if err != nil {
				return err
			}
			if !result.Success {
				return errReported
			}
			return nil
		},
	}

	selection.register(cmd, "deploy")
	cmd.Flags().BoolVar(&interactive, "select", false, "Select components interactively")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the deployment plan without deploying")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&build, "build", false, "Run forge build before deploying")
	cmd.MarkFlagsMutuallyExclusive("select", "only")
	cmd.MarkFlagsMutuallyExclusive("select", "group")

	return cmd
}

// NewPlanCmd creates the plan command
func NewPlanCmd() *cobra.Command {
	var selection selectionFlags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the deployment order without deploying",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			plan, err := app.DeployComponents.Plan(cmd.Context(), usecase.DeployParams{
				Components: selection.components(),
				Group:      selection.group,
			})
			if err != nil {
				return err
			}
			return render.NewDeployRenderer(cmd.OutOrStdout()).RenderPlan(plan)
		},
	}

	selection.register(cmd, "plan")
	return cmd
}

func selectInteractively(cmd *cobra.Command, app *app.App) ([]string, error) {
	picked, err := app.Selector.SelectComponents(cmd.Context(), app.Catalogue.Names())
	if err != nil {
		return nil, err
	}
	if len(picked) == 0 {
		return nil, errNothingSelected
	}
	return picked, nil
}
