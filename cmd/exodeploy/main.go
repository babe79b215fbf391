// Package main is the entry point for the exodeploy CLI.
//
// exodeploy builds a service image, provisions an Exoscale SKS cluster with
// its security group, nodepool, and optional managed database and bucket,
// deploys the workload, and tears everything down again by name discovery.
//
// Commands: deploy, teardown, version.
//
// For detailed usage information, run:
//
//	exodeploy --help
package main

import (
	"fmt"
	"os"

	"github.com/The-Synergy-Group-AG/exoscale-deploy-kit/cmd/exodeploy/commands"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
