// @title                      Stove Automation API
// @version                    1.0
// @description                Cron-driven pellet stove scheduler.
// @BasePath                   /
// @securityDefinitions.apikey CronSecret
// @in                         header
// @name                       X-Cron-Secret
package main

import (
	"fmt"
	"os"

	_ "stove_automation/docs"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "stove-automation",
		Short: "Pellet stove scheduler",
		Long:  "Reconciles a weekly heating schedule against a pellet stove and serves the cron endpoint.",
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (and the optional in-process ticker)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Run one scheduler check and print the result",
		Args:  cobra.NoArgs,
		RunE:  runCheck,
	}

	scheduleCmd = &cobra.Command{
		Use:   "schedule",
		Short: "Manage weekly schedules",
	}

	scheduleImportCmd = &cobra.Command{
		Use:   "import [file.yaml]",
		Short: "Load a weekly schedule from YAML",
		Args:  cobra.ExactArgs(1),
		RunE:  runScheduleImport,
	}

	maintenanceCmd = &cobra.Command{
		Use:   "maintenance",
		Short: "Inspect or reset the cleaning counter",
		Args:  cobra.NoArgs,
		RunE:  runMaintenanceStatus,
	}

	maintenanceConfirmCmd = &cobra.Command{
		Use:   "confirm",
		Short: "Confirm the stove was cleaned",
		Args:  cobra.NoArgs,
		RunE:  runMaintenanceConfirm,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}

	scheduleID       string
	activateSchedule bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default configs/config.yml)")

	scheduleImportCmd.Flags().StringVar(&scheduleID, "id", "default", "Schedule id")
	scheduleImportCmd.Flags().BoolVar(&activateSchedule, "activate", false, "Make the imported schedule the active one")

	scheduleCmd.AddCommand(scheduleImportCmd)
	maintenanceCmd.AddCommand(maintenanceConfirmCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(maintenanceCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
