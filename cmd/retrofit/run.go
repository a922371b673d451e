package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/HatiCode/retrofit/pkg/city"
	"github.com/HatiCode/retrofit/pkg/scenario"
	"github.com/HatiCode/retrofit/pkg/simulation"
)

// loadScenario loads the scenario at location. Empty selects the built-in city.
func loadScenario(cmd *cobra.Command, location string) (city.Scenario, error) {
	src, err := scenario.FromLocation(location)
	if err != nil {
		return city.Scenario{}, err
	}
	s, err := src.Load(cmd.Context())
	if err != nil {
		return city.Scenario{}, fmt.Errorf("loading scenario: %w", err)
	}
	return s, nil
}

func runSimulation(cmd *cobra.Command, location, format string, parallel bool) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format %q (must be text or json)", format)
	}

	s, err := loadScenario(cmd, location)
	if err != nil {
		return err
	}
	if parallel {
		s.Parallel = true
	}

	driver, err := simulation.New(s, slog.Default())
	if err != nil {
		return err
	}

	report, err := driver.Run(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printReport(out, report)
	return nil
}

func runValidate(cmd *cobra.Command, location string) error {
	s, err := loadScenario(cmd, location)
	if err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	printValidation(cmd.OutOrStdout(), s)
	return nil
}

func runDefaults(cmd *cobra.Command) error {
	data, err := scenario.MarshalYAML(city.DefaultScenario())
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runTop(cmd *cobra.Command, location string, n int) error {
	if n <= 0 {
		return fmt.Errorf("n must be > 0")
	}
	s, err := loadScenario(cmd, location)
	if err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	printTop(cmd.OutOrStdout(), simulation.TopActions(s, n))
	return nil
}
