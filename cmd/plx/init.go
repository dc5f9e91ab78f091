package main

import (
	"fmt"
	"os"
	"path/filepath"

	"plx/internal/build"
)

// InitCommand scaffolds a new plx project directory with a starter
// plx.json manifest, mirroring the teacher's `sentra init` shape
// (cmd/sentra/commands/build.go InitCommand) without its host-language
// sample-script flair, since plx has no runnable script of its own.
func InitCommand(args []string) error {
	projectName := "plx-project"
	if len(args) > 0 {
		projectName = args[0]
	}

	fmt.Printf("Initializing new plx project: %s\n", projectName)

	if err := os.MkdirAll(projectName, 0o755); err != nil {
		return err
	}
	if err := build.Init(projectName, projectName); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	absRoot, err := filepath.Abs(projectName)
	if err != nil {
		return err
	}

	fmt.Printf(`
Project initialized at %s

Next steps:
  edit %s to declare your POUs and tasks
  register a host-language Parser under the manifest's "parser" name
  plx build %s
`, absRoot, build.ManifestFileName, projectName)
	return nil
}
