package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"stove_automation/internal/logger"
	"stove_automation/internal/models"
	"stove_automation/internal/service"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// newCommandApp wires the app for one-shot commands. Warnings and errors go
// to stderr so stdout carries only the command's result.
func newCommandApp(ctx context.Context) (*app, error) {
	return newApp(ctx, logger.New(logger.Options{Level: logger.WarnLevel, Stderr: true}))
}

func runCheck(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newCommandApp(ctx)
	if err != nil {
		return err
	}
	// Close waits for the cycle's dispatchers before releasing storage.
	defer a.Close()

	resp := a.services.Scheduler.Check(ctx)
	return printJSON(cmd, resp)
}

func runScheduleImport(cmd *cobra.Command, args []string) error {
	week, err := readWeeklySchedule(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newCommandApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := service.ImportSchedule(ctx, a.repos.Store, scheduleID, week, activateSchedule); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d day(s) into schedule %q (active: %t)\n", len(week), scheduleID, activateSchedule)
	return nil
}

func runMaintenanceStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newCommandApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.services.Maintenance.Status(ctx)
	if err != nil {
		return err
	}
	return printJSON(cmd, rec)
}

func runMaintenanceConfirm(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newCommandApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.services.Maintenance.ConfirmCleaning(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "cleaning confirmed")
	return nil
}

// readWeeklySchedule parses a YAML document keyed by day name, e.g.
//
//	Lunedì:
//	  - {start: "06:00", end: "08:00", power: 2, fan: 2}
func readWeeklySchedule(path string) (models.WeeklySchedule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schedule file: %w", err)
	}
	var week models.WeeklySchedule
	if err := yaml.Unmarshal(raw, &week); err != nil {
		return nil, fmt.Errorf("parse schedule file %q: %w", path, err)
	}
	if len(week) == 0 {
		return nil, fmt.Errorf("schedule file %q has no days", path)
	}
	return week, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
