// Command ualog is a tool for viewing and analyzing OPC UA client log
// files.
//
// Log files are created with the protocol logging infrastructure when
// running uabrowse or uamon with the -protocol-log flag.
//
// Usage:
//
//	ualog <command> [flags] <file.ualog>
//
// Commands:
//
//	dump     Print log events in human-readable format
//	summary  Analyze a log file and print a session report
//	filter   Filter a log file and write the matches to a new file
//
// Examples:
//
//	# Print all events
//	ualog dump client.ualog
//
//	# Print only incoming service responses
//	ualog dump -direction in -category service client.ualog
//
//	# Print the calls of one session
//	ualog dump -session 6f1c3790-4a4e-4c5e-9c29-5c7c2b1a8d11 client.ualog
//
//	# Session timelines and service statistics
//	ualog summary client.ualog
//
//	# Keep only Read calls in a new file
//	ualog filter -service Read -o reads.ualog client.ualog
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/opcua-sdk/opcua-go/cmd/ualog/commands"
	"github.com/opcua-sdk/opcua-go/pkg/log"
)

const usage = `ualog - OPC UA client log analyzer

Usage:
  ualog <command> [flags] <file.ualog>

Commands:
  dump     Print log events in human-readable format
  summary  Analyze a log file and print a session report
  filter   Filter a log file and write the matches to a new file

Use "ualog <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "dump":
		runDump(args)
	case "summary":
		runSummary(args)
	case "filter":
		runFilter(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// filterFlags registers the shared filter flags on a flag set and
// returns a builder that resolves them after parsing.
func filterFlags(fs *flag.FlagSet) func() (log.Filter, error) {
	session := fs.String("session", "", "Filter by session ID")
	endpoint := fs.String("endpoint", "", "Filter by endpoint URL")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (service, state, discovery, subscription, error)")
	service := fs.String("service", "", "Filter by service name (e.g. Read)")
	timeStart := fs.String("time-start", "", "Keep events at or after this time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Keep events before this time (RFC3339)")

	return func() (log.Filter, error) {
		filter := log.Filter{
			SessionID:   *session,
			EndpointURL: *endpoint,
			Service:     *service,
		}
		if *direction != "" {
			d, err := commands.ParseDirectionFlag(*direction)
			if err != nil {
				return log.Filter{}, err
			}
			filter.Direction = &d
		}
		if *category != "" {
			c, err := commands.ParseCategoryFlag(*category)
			if err != nil {
				return log.Filter{}, err
			}
			filter.Category = &c
		}
		if *timeStart != "" {
			ts, err := time.Parse(time.RFC3339, *timeStart)
			if err != nil {
				return log.Filter{}, fmt.Errorf("bad -time-start: %w", err)
			}
			filter.TimeStart = &ts
		}
		if *timeEnd != "" {
			ts, err := time.Parse(time.RFC3339, *timeEnd)
			if err != nil {
				return log.Filter{}, fmt.Errorf("bad -time-end: %w", err)
			}
			filter.TimeEnd = &ts
		}
		return filter, nil
	}
}

func runDump(args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `ualog dump - Print log events in human-readable format

Usage:
  ualog dump [flags] <file.ualog>

Flags:
`)
		fs.PrintDefaults()
	}

	buildFilter := filterFlags(fs)
	noHandles := fs.Bool("no-handles", false, "Hide request handles")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}

	filter, err := buildFilter()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := commands.DumpOptions{Filter: filter, HideHandles: *noHandles}
	if err := commands.RunDump(fs.Arg(0), opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runSummary(args []string) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `ualog summary - Analyze a log file and print a session report

Usage:
  ualog summary <file.ualog>

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}

	if err := commands.RunSummary(fs.Arg(0), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `ualog filter - Filter a log file and write the matches to a new file

Usage:
  ualog filter [flags] -o <out.ualog> <file.ualog>

Flags:
`)
		fs.PrintDefaults()
	}

	buildFilter := filterFlags(fs)
	output := fs.String("o", "", "Output file (required)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	filter, err := buildFilter()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	kept, err := commands.RunFilter(fs.Arg(0), filter, *output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d events to %s\n", kept, *output)
}
