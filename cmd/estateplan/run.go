package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"

	"github.com/estateforge/estateplan/pkg/config"
	"github.com/estateforge/estateplan/pkg/geoio"
	"github.com/estateforge/estateplan/pkg/pipeline"
	"github.com/estateforge/estateplan/pkg/validation"
)

// parcelsFile is the expected parcel boundary file inside a project.
const parcelsFile = "parcels.geojson"

// loadProject reads the project configuration and parcel boundaries.
func loadProject(projectPath string) (*config.Config, []orb.Ring, error) {
	cfg, err := config.Load(projectPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	parcels, dropped, err := geoio.LoadParcels(filepath.Join(projectPath, parcelsFile))
	if err != nil {
		return nil, nil, fmt.Errorf("loading parcels: %w", err)
	}
	if dropped > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d interior rings ignored\n", dropped)
	}
	return cfg, parcels, nil
}

func runPlan(projectPath, out string) error {
	cfg, parcels, err := loadProject(projectPath)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(parcels, cfg)
	if err != nil {
		return err
	}

	printSummary(res)
	if len(res.Report.Warnings) > 0 || len(res.Report.Errors) > 0 {
		fmt.Println()
		printValidationReport(res.Report)
	}

	fc := geoio.ExportResult(res)
	if out == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(fc)
	}
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, data, 0o644)
}

func runValidate(projectPath string) error {
	cfg, parcels, err := loadProject(projectPath)
	if err != nil {
		return err
	}

	report := validation.ValidateConfig(cfg)
	report.AddInfo(validation.Result{
		Level:   validation.LevelSchema,
		Message: fmt.Sprintf("%d parcel(s) loaded", len(parcels)),
	})
	printValidationReport(report)

	if !report.Valid {
		os.Exit(1)
	}
	return nil
}

func runInit(projectPath string) error {
	if err := os.MkdirAll(projectPath, 0o755); err != nil {
		return err
	}
	path := filepath.Join(projectPath, "estate.yaml")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	def := config.Default()
	data, err := yaml.Marshal(&def)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	fmt.Printf("add your parcel boundaries as %s and run: estateplan plan %s\n",
		filepath.Join(projectPath, parcelsFile), projectPath)
	return nil
}
