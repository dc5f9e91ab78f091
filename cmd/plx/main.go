// cmd/plx/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"plx/internal/diag"
)

const version = "0.1.0"

// commandAliases mirrors the teacher CLI's short-flag convenience
// (cmd/sentra/main.go commandAliases), trimmed to plx's own command
// set.
var commandAliases = map[string]string{
	"b": "build",
	"s": "sim",
	"e": "emit",
	"w": "watch",
	"c": "clean",
	"i": "init",
}

// logger is shared by every subcommand for its status/progress output
// (component H); its level is raised by a --verbose/-V flag.
var logger = diag.Default()

func main() {
	args := stripVerboseFlag(os.Args[1:])
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	if cmd == "--help" || cmd == "-h" || cmd == "help" {
		showUsage()
		return
	}
	if cmd == "--version" || cmd == "-v" || cmd == "version" {
		fmt.Println("plx " + version)
		return
	}

	var err error
	switch cmd {
	case "init":
		err = InitCommand(args[1:])
	case "build":
		err = BuildCommand(args[1:])
	case "sim":
		err = SimCommand(args[1:])
	case "emit":
		err = EmitCommand(args[1:])
	case "watch":
		err = WatchCommand(args[1:])
	case "clean":
		err = CleanCommand(args[1:])
	default:
		showUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// stripVerboseFlag removes every --verbose/-V flag from args, wherever
// it appears, raising logger to LevelVerbose, so subcommand argument parsing never
// has to account for it.
func stripVerboseFlag(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--verbose" || a == "-V" {
			logger = diag.NewLogger(os.Stderr, diag.LevelVerbose)
			continue
		}
		out = append(out, a)
	}
	return out
}

func showUsage() {
	fmt.Print(`plx - vendor-neutral IEC 61131-3 compiler and simulator

Usage:
  plx init <project-dir>      scaffold a plx.json project manifest
  plx build [project-dir]     compile every manifest POU, report diagnostics
  plx sim <pou> [project-dir] run one scan-cycle simulation step interactively
  plx emit <out-file> [dir]   lower and write the configured vendor's project file
  plx watch [project-dir]     recompile on every POU source change
  plx clean <output-dir>      remove build output

Flags:
  -v, --version   print the plx version
  -h, --help      show this help text
  --verbose, -V   log verbose progress to stderr
`)
}
