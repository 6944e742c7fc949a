package cli

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-deploy/internal/cli/render"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

// addDeployFlags wires the deploy operation into the root command
func addDeployFlags(cmd *cobra.Command) {
	var (
		label           string
		constructorArgs []string
	)

	cmd.Flags().StringVar(&label, "label", "", "Label stored with the deployment record")
	cmd.Flags().StringArrayVar(&constructorArgs, "arg", nil, "Constructor argument (repeat for each argument)")
	cmd.Flags().Bool("dry-run", false, "Predict the address and gas without broadcasting")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		app, err := getApp(cmd)
		if err != nil {
			return err
		}

		params := usecase.DeployContractParams{
			Label: label,
			Args:  constructorArgs,
		}
		if len(args) == 1 {
			params.ContractRef = args[0]
		}

		result, err := app.DeployContract.Run(cmd.Context(), params)
		if err != nil {
			return err
		}

		var details io.Writer
		if !app.Config.JSON {
			details = cmd.ErrOrStderr()
		}
		return render.NewDeployRenderer(cmd.OutOrStdout(), details, app.Config.JSON).Render(result)
	}
}
