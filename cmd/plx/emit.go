package main

import (
	"fmt"

	"plx/internal/build"
)

// EmitCommand compiles the project and writes its configured vendor's
// project artifact to outFile (§4.8), flattening inheritance first
// when the target vendor has no native EXTENDS support.
func EmitCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: plx emit <out-file> [project-dir]")
	}
	outFile := args[0]
	projectRoot := "."
	if len(args) > 1 {
		projectRoot = args[1]
	}

	builder, err := build.NewBuilderForCLI(projectRoot)
	if err != nil {
		return fmt.Errorf("failed to initialize builder: %w", err)
	}
	logger.Verbose("flattening inheritance and emitting for vendor %s", builder.Manifest.Vendor)
	if err := builder.Emit(outFile); err != nil {
		return err
	}
	logger.Info("wrote %s for vendor %s", outFile, builder.Manifest.Vendor)
	return nil
}
