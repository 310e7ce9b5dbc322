package cli

import (
	"github.com/fractional-company/vaultctl/internal/cli/render"
	"github.com/fractional-company/vaultctl/internal/usecase"
	"github.com/spf13/cobra"
)

// NewNodeCmd creates the node command
func NewNodeCmd() *cobra.Command {
	var params usecase.NodeParams

	cmd := &cobra.Command{
		Use:   "node",
		Short: "Manage the local development node",
		Long: `Run an anvil node in the background for the local network.

The node's PID and log files live under .vaultctl/ in the project root.

Examples:
  vaultctl node start                          # Start on 127.0.0.1:8545, chain 1337
  vaultctl node start --port 9545              # Start a second node
  vaultctl node start --fork-url $MAINNET_RPC_URL
  vaultctl node status
  vaultctl node stop`,
	}

	cmd.PersistentFlags().StringVar(&params.Port, "port", "8545", "Port the node listens on")

	start := &cobra.Command{
		Use:   "start",
		Short: "Start the local node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			status, err := app.ManageNode.Start(cmd.Context(), params)
			if err != nil {
				return err
			}
			return render.NewNodeRenderer(cmd.OutOrStdout()).RenderStarted(status)
		},
	}
	start.Flags().Uint64Var(&params.ChainID, "chain-id", 1337, "Chain ID reported by the node")
	start.Flags().StringVar(&params.ForkURL, "fork-url", "", "Fork the chain served at this RPC URL")

	stop := &cobra.Command{
		Use:   "stop",
		Short: "Stop the local node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			status, err := app.ManageNode.Stop(cmd.Context(), params)
			if err != nil {
				return err
			}
			return render.NewNodeRenderer(cmd.OutOrStdout()).RenderStopped(status)
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show whether the local node is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			status, err := app.ManageNode.Status(cmd.Context(), params)
			if err != nil {
				return err
			}
			return render.NewNodeRenderer(cmd.OutOrStdout()).Render(status)
		},
	}

	cmd.AddCommand(start, stop, status)
	return cmd
}
