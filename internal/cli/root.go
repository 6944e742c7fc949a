package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/treb-deploy/internal/app"
	"github.com/trebuchet-org/treb-deploy/internal/config"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// AppFactory builds the application for one invocation
type AppFactory func(v *viper.Viper, stderr io.Writer) (*app.App, error)

// rootOptions carries state shared by the commands of one invocation
type rootOptions struct {
	newApp  AppFactory
	cleanup []func()
}

func (o *rootOptions) close() {
	for i := len(o.cleanup) - 1; i >= 0; i-- {
		o.cleanup[i]()
	}
	o.cleanup = nil
}

// NewRootCmd creates the root command. Invoked without a subcommand it deploys one contract.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{newApp: app.InitApp})
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "treb-deploy [contract]",
		Short: "Deploy a Foundry contract and print its address",
		Long: `treb-deploy resolves a compiled Foundry contract, deploys one new instance,
waits for it to be confirmed and prints the deployed address.

Without arguments the configured default contract is deployed.`,
		Example: `  # Deploy the default contract to the local node
  treb-deploy

  # Deploy a specific contract with constructor arguments
  treb-deploy src/Token.sol:Token --arg "My Token" --arg 1000000 -n sepolia`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}

			v := config.SetupViper(projectRoot, cmd)

			appInstance, err := opts.newApp(v, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			opts.cleanup = append(opts.cleanup, appInstance.Close)

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)

			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				opts.cleanup = append(opts.cleanup, cancel)
			}

			cmd.SetContext(ctx)

			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringP("namespace", "s", "", "Deployment namespace (defaults to 'default')")
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network to use (e.g., mainnet, sepolia)")
	rootCmd.PersistentFlags().String("rpc-url", "", "RPC URL, overrides the network's endpoint")
	rootCmd.PersistentFlags().Uint64("chain-id", 0, "Chain ID the node must report (0 accepts any)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Give up after this long (0 waits forever)")

	addDeployFlags(rootCmd)

	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	listCmd := NewListCmd()
	listCmd.GroupID = "management"
	rootCmd.AddCommand(listCmd)

	networksCmd := NewNetworksCmd()
	networksCmd.GroupID = "management"
	rootCmd.AddCommand(networksCmd)

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// Run executes the command line and returns the process exit code.
// Results go to stdout; progress, logs and errors go to stderr.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, app.InitApp, args, stdout, stderr)
}

func execute(ctx context.Context, newApp AppFactory, args []string, stdout, stderr io.Writer) int {
	opts := &rootOptions{newApp: newApp}
	defer opts.close()

	rootCmd := newRootCmd(opts)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
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
