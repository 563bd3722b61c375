// Command pulse is the ChainPulse CLI for scripting and inspection.
//
// Usage:
//
//	pulse                   Show help
//	pulse stats             Per-coin sentiment table
//	pulse svg               Export the bubble chart as SVG
//	pulse history           Snapshot history, or one coin's trend
//	pulse events            JSONL event log viewer
package main

import (
	"fmt"
	"os"
)

const usage = `pulse - ChainPulse sentiment CLI

Usage:
  pulse <command> [flags]

Commands:
  stats       Per-coin sentiment summary and article counts
  svg         Export the bubble chart as a standalone SVG
  history     Stored snapshots, or one ticker's sentiment over time
  events      JSONL event log viewer

Environment:
  CHAINPULSE_API_URL        Sentiment API base URL (default: http://localhost:8081)
  NEXT_PUBLIC_BACKEND_URL   Fallback API base URL
  CHAINPULSE_VARIANT        Dashboard variant: classic or paged
  CHAINPULSE_HOME           Data directory (default: ~/.chainpulse)

Run 'pulse <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "stats":
		runStats()
	case "svg":
		runSVG()
	case "history":
		runHistory()
	case "events":
		runEvents()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "pulse: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
