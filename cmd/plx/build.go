package main

import (
	"fmt"
	"path/filepath"

	"plx/internal/build"
	"plx/internal/diag"
)

// BuildCommand compiles every POU and task in the project manifest and
// reports the aggregated diagnostics, mirroring the teacher's
// BuildCommand (cmd/sentra/commands/build.go) shape but running plx's
// lower-assemble pipeline instead of linking bytecode.
func BuildCommand(args []string) error {
	projectRoot := "."
	if len(args) > 0 {
		projectRoot = args[0]
	}
	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve project path: %w", err)
	}

	logger.Verbose("loading manifest from %s", absRoot)
	builder, err := build.NewBuilderForCLI(absRoot)
	if err != nil {
		return fmt.Errorf("failed to initialize builder: %w", err)
	}

	proj, errs := builder.Compile()
	if errs.HasErrors() {
		return fmt.Errorf("%s", errs.Error())
	}
	logger.Info("compiled %s: %d POUs, %d tasks", proj.Name, len(proj.Pous), len(proj.Tasks))
	return nil
}

// WatchCommand rebuilds the project every time a POU source file
// changes, printing each recompilation's diagnostics. It runs until
// interrupted.
func WatchCommand(args []string) error {
	projectRoot := "."
	if len(args) > 0 {
		projectRoot = args[0]
	}

	builder, err := build.NewBuilderForCLI(projectRoot)
	if err != nil {
		return fmt.Errorf("failed to initialize builder: %w", err)
	}

	stop, err := builder.Watch(func(errs *diag.ErrorList) {
		if errs.HasErrors() {
			logger.Info("rebuild failed:\n%s", errs.Error())
			return
		}
		logger.Info("rebuild ok")
	})
	if err != nil {
		return err
	}
	defer stop()

	logger.Info("watching for changes, press Ctrl+C to stop")
	select {}
}

// CleanCommand removes a project's build output directory. Unlike
// build/sim/emit it needs no compiled Project, so it skips parser
// resolution entirely.
func CleanCommand(args []string) error {
	outputDir := "dist"
	if len(args) > 0 {
		outputDir = args[0]
	}
	var b build.Builder
	if err := b.Clean(outputDir); err != nil {
		return err
	}
	logger.Info("removed %s", outputDir)
	return nil
}
