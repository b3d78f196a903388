package main

import (
	urfavecli "github.com/urfave/cli/v2"
)

// globalFlags returns all global flags for the application.
// Note: --version is provided automatically by urfave/cli via App.Version
func globalFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.StringFlag{
			Name:    "repo",
			Aliases: []string{"C"},
			Usage:   "Run as if started in this directory",
		},
		&urfavecli.StringFlag{
			Name:  "config-file",
			Usage: "Path to configuration file",
		},
		&urfavecli.StringFlag{
			Name:  "debug-log",
			Usage: "Path to debug log file",
		},
		&urfavecli.StringFlag{
			Name:  "refresh-policy",
			Usage: "Policy for overlapping refreshes: drop or queue",
		},
		&urfavecli.IntFlag{
			Name:  "refresh-interval",
			Usage: "Refresh every N seconds in addition to the watcher (0 disables)",
		},
		&urfavecli.BoolFlag{
			Name:  "no-watch",
			Usage: "Disable the git directory watcher",
		},
	}
}
