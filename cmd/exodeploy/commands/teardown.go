package commands

import (
	"github.com/spf13/cobra"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/cmd/exodeploy/handlers"
)

// Teardown returns the teardown command.
func Teardown() *cobra.Command {
	var opts handlers.TeardownOptions

	cmd := &cobra.Command{
		Use:   "teardown",
		Short: "Delete every Exoscale resource that belongs to the project",
		Long: `Teardown discovers resources whose name contains the project slug and
deletes them in dependency order:

  namespace, database, buckets, nodepools, clusters, load balancers,
  security groups

It does not need the state of an earlier run, so it is safe to re-run and
safe to use after a failed deploy. Resources that are already gone count as
deleted. Anything left over is listed at the end and in
outputs/teardown_report_<YYYYMMDD_HHMMSS>.json.

Example:
  exodeploy teardown --dry-run
  exodeploy teardown --force --cluster-id 3f0e...

WARNING: This operation is irreversible.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Teardown(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: config.yaml)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Delete without asking for confirmation")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "List what would be deleted and stop")
	cmd.Flags().StringSliceVar(&opts.ClusterIDs, "cluster-id", nil, "Also delete this cluster even if its name does not match (repeatable)")

	return cmd
}
