package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/fractional-company/vaultctl/internal/adapters/progress"
	"github.com/fractional-company/vaultctl/internal/app"
	"github.com/fractional-company/vaultctl/internal/cli/render"
	"github.com/fractional-company/vaultctl/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// errReported is returned after a command already printed its failures
var errReported = errors.New("command failed")

// projectOptional lists commands that run outside a contracts project
var projectOptional = map[string]bool{
	"vaultctl merkle":        true,
	"vaultctl merkle verify": true,
}

// session holds what a command opened and must release when it ends
type session struct {
	release []func()
}

func (s *session) close() {
	for i := len(s.release) - 1; i >= 0; i-- {
		s.release[i]()
	}
	s.release = nil
}

// Execute runs the CLI and returns the process exit code
func Execute() int {
	rootCmd, s := newRootCmd()
	err := rootCmd.ExecuteContext(context.Background())
	s.close()
	if err == nil {
		return 0
	}
	if !errors.Is(err, errReported) {
		fmt.Fprintln(os.Stderr, render.FormatError(err.Error()))
	}
	return 1
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd, _ := newRootCmd()
	return cmd
}

func newRootCmd() (*cobra.Command, *session) {
	s := &session{}

	rootCmd := &cobra.Command{
		Use:   "vaultctl",
		Short: "Deploy and verify the Fractional vault contracts",
		Long: `vaultctl deploys the Fractional vault contract system in dependency order,
records the addresses in a per-network manifest, verifies the deployed sources
on the block explorer and builds the Merkle tree of vault permissions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				if !projectOptional[cmd.CommandPath()] {
					return err
				}
				if projectRoot, err = os.Getwd(); err != nil {
					return err
				}
			}

			v := config.SetupViper(projectRoot, cmd)
			if os.Getenv("CI") == "true" {
				v.SetDefault("non_interactive", true)
			}

			sink := progress.NewConsoleProgress(cmd.ErrOrStderr(), !isNonInteractive(v))

			appInstance, err := app.InitApp(v, sink)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			s.release = append(s.release, appInstance.Close)

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				s.release = append(s.release, cancel)
			}
			cmd.SetContext(ctx)

			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network to use (e.g., mainnet, rinkeby, local)")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "deployment",
		Title: "Deployment Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "permissions",
		Title: "Permission Commands",
	})

	for _, sub := range []*cobra.Command{NewDeployCmd(), NewPlanCmd(), NewVerifyCmd(), NewManifestCmd()} {
		sub.GroupID = "deployment"
		rootCmd.AddCommand(sub)
	}

	merkleCmd := NewMerkleCmd()
	merkleCmd.GroupID = "permissions"
	rootCmd.AddCommand(merkleCmd)

	nodeCmd := NewNodeCmd()
	nodeCmd.GroupID = "deployment"
	rootCmd.AddCommand(nodeCmd)

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd, s
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}

func isNonInteractive(v *viper.Viper) bool {
	return v.GetBool("non_interactive") || color.NoColor
}
