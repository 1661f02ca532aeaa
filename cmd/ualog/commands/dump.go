// Package commands implements the ualog subcommands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/opcua-sdk/opcua-go/pkg/inspect"
	"github.com/opcua-sdk/opcua-go/pkg/log"
)

// DumpOptions configures the dump subcommand.
type DumpOptions struct {
	// Filter selects the events to print.
	Filter log.Filter

	// HideHandles drops request handles from service lines.
	HideHandles bool
}

// RunDump prints the matching events of one log file, one line each.
func RunDump(path string, opts DumpOptions, out io.Writer) error {
	reader, err := log.NewFilteredReader(path, opts.Filter)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer reader.Close()

	formatter := inspect.NewFormatter()
	formatter.ShowHandles = !opts.HideHandles

	count := 0
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read log: %w", err)
		}
		fmt.Fprintln(out, formatter.FormatEvent(event))
		count++
	}

	fmt.Fprintf(out, "%d events\n", count)
	return nil
}

// ParseDirectionFlag resolves a -direction flag value.
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("unknown direction %q (want in or out)", s)
	}
}

// ParseCategoryFlag resolves a -category flag value.
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "service":
		return log.CategoryService, nil
	case "state":
		return log.CategoryState, nil
	case "discovery":
		return log.CategoryDiscovery, nil
	case "subscription":
		return log.CategorySubscription, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("unknown category %q", s)
	}
}
