package commands

import (
	"github.com/spf13/cobra"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/cmd/exodeploy/handlers"
)

// Deploy returns the deploy command.
func Deploy() *cobra.Command {
	var opts handlers.DeployOptions

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Build, push, and deploy the service to a new SKS cluster",
		Long: `Deploy runs the full pipeline for one project:

  1. Build and push the service image
  2. Create the security group, SKS cluster, and nodepool
  3. Attach the security group to every node
  4. Start the managed database and bucket when enabled
  5. Write the kubeconfig and apply the workload manifests
  6. Inject database and bucket credentials as secrets

Credentials are read from EXO_API_KEY, EXO_API_SECRET and DOCKER_HUB_TOKEN,
or from a .env file next to the config file.

Every run writes outputs/<YYYYMMDD_HHMMSS>/deployment_report.json, or
deployment_report_partial.json when a fatal stage fails.

Example:
  exodeploy deploy -c config.yaml --auto
  exodeploy deploy --tui`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Deploy(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: config.yaml)")
	cmd.Flags().BoolVar(&opts.Auto, "auto", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&opts.TUI, "tui", false, "Show a live stage dashboard instead of log lines")

	return cmd
}
