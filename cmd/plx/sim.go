package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"plx/internal/build"
	"plx/internal/types"
)

// SimCommand compiles the project and drives an interactive scan-cycle
// simulation of one POU: each line of stdin is either "scan", "tick
// <duration>", "set <path> <value>", or "get <path>", until EOF. This
// gives a way to exercise the simulator (§4.6) from the command line
// without embedding a host application.
func SimCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: plx sim <pou> [project-dir]")
	}
	pouName := args[0]
	projectRoot := "."
	if len(args) > 1 {
		projectRoot = args[1]
	}

	builder, err := build.NewBuilderForCLI(projectRoot)
	if err != nil {
		return fmt.Errorf("failed to initialize builder: %w", err)
	}
	ctrl, err := builder.Simulate(pouName)
	if err != nil {
		return err
	}

	fmt.Printf("simulating %s; commands: scan | tick <dur> | set <path> <value> | get <path> | quit\n", pouName)
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "quit", "exit":
			return nil
		case "scan":
			if err := ctrl.Scan(); err != nil {
				fmt.Printf("fault: %v\n", err)
				continue
			}
			fmt.Printf("ok, t=%s\n", ctrl.Now())
		case "tick":
			if len(fields) != 2 {
				fmt.Println("usage: tick <duration>")
				continue
			}
			sd, err := time.ParseDuration(fields[1])
			if err != nil {
				fmt.Printf("invalid duration: %v\n", err)
				continue
			}
			ctrl.Tick(types.Duration(sd))
			fmt.Printf("t=%s\n", ctrl.Now())
		case "set":
			if len(fields) != 3 {
				fmt.Println("usage: set <path> <value>")
				continue
			}
			v, err := parseSimValue(fields[2])
			if err != nil {
				fmt.Printf("invalid value: %v\n", err)
				continue
			}
			if err := ctrl.Set(fields[1], v); err != nil {
				fmt.Printf("set failed: %v\n", err)
			}
		case "get":
			if len(fields) != 2 {
				fmt.Println("usage: get <path>")
				continue
			}
			v, ok := ctrl.Get(fields[1])
			if !ok {
				fmt.Printf("no such path %q\n", fields[1])
				continue
			}
			fmt.Println(v.String())
		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
	return sc.Err()
}

// parseSimValue interprets a command-line token as a BOOL, duration,
// or numeric literal, in that preference order, for the sim REPL's
// `set` command; structured values can only be driven by an embedding
// application through Controller.Set directly.
func parseSimValue(tok string) (types.Value, error) {
	if tok == "true" || tok == "false" {
		return types.Value{Type: types.Bool, Bool: tok == "true"}, nil
	}
	if sd, err := time.ParseDuration(tok); err == nil && strings.ContainsAny(tok, "hmsuµ") {
		return types.Value{Type: types.DurationType, Dur: types.Duration(sd)}, nil
	}
	if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return types.Value{Type: types.Int32, Int: i}, nil
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return types.Value{}, err
	}
	return types.Value{Type: types.Float64, Float: f}, nil
}
