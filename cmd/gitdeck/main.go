// Package main is the entry point for the gitdeck application.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chmouel/gitdeck/internal/app"
	"github.com/chmouel/gitdeck/internal/buildinfo"
	"github.com/chmouel/gitdeck/internal/config"
	"github.com/chmouel/gitdeck/internal/log"
	urfavecli "github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	buildinfo.Set(version, commit, date, builtBy)
	buildinfo.Enrich()

	cliApp := &urfavecli.App{
		Name:                 "gitdeck",
		Usage:                "A terminal dashboard for a local git repository",
		Version:              buildinfo.Version(),
		EnableBashCompletion: true,

		Flags: globalFlags(),

		Action: runTUI,
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// runTUI launches the dashboard when no subcommand is given.
func runTUI(c *urfavecli.Context) error {
	// Set up debug logging before loading config so early messages are
	// buffered rather than lost.
	if debugLog := c.String("debug-log"); debugLog != "" {
		expanded, err := config.ExpandPath(debugLog)
		if err != nil {
			expanded = debugLog
		}
		if err := log.SetFile(expanded); err != nil {
			fmt.Fprintf(os.Stderr, "Error opening debug log file %q: %v\n", expanded, err)
		}
	}

	cfg, err := config.LoadConfig(c.String("config-file"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	// If the debug log wasn't set via flag, honor the config key.
	if c.String("debug-log") == "" {
		if cfg.DebugLog != "" {
			expanded, err := config.ExpandPath(cfg.DebugLog)
			path := cfg.DebugLog
			if err == nil {
				path = expanded
			}
			if err := log.SetFile(path); err != nil {
				fmt.Fprintf(os.Stderr, "Error opening debug log file from config %q: %v\n", path, err)
			}
		} else {
			// No debug log configured, discard any buffered messages.
			_ = log.SetFile("")
		}
	}

	applyFlagOverrides(cfg, c)

	model := app.NewModel(cfg, c.String("repo"))
	p := tea.NewProgram(model, tea.WithAltScreen())

	_, err = p.Run()
	model.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running app: %v\n", err)
		_ = log.Close()
		return err
	}

	if err := log.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing debug log: %v\n", err)
	}

	return nil
}

// applyFlagOverrides applies CLI flags on top of the loaded configuration.
func applyFlagOverrides(cfg *config.AppConfig, c *urfavecli.Context) {
	if policy := c.String("refresh-policy"); policy != "" {
		if policy == config.PolicyQueue {
			cfg.RefreshPolicy = config.PolicyQueue
		} else {
			cfg.RefreshPolicy = config.PolicyDrop
		}
	}
	if c.IsSet("refresh-interval") {
		interval := c.Int("refresh-interval")
		if interval < 0 {
			interval = 0
		}
		cfg.RefreshInterval = interval
	}
	if c.Bool("no-watch") {
		cfg.AutoRefresh = false
	}
	if debugLog := c.String("debug-log"); debugLog != "" {
		if expanded, err := config.ExpandPath(debugLog); err == nil {
			cfg.DebugLog = expanded
		} else {
			cfg.DebugLog = debugLog
		}
	}
}
