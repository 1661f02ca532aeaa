package commands

import (
	"fmt"
	"io"

	"github.com/opcua-sdk/opcua-go/pkg/inspect"
	"github.com/opcua-sdk/opcua-go/pkg/log"
)

// RunSummary analyzes a log file and prints the session report.
func RunSummary(path string, out io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer reader.Close()

	report, err := inspect.Analyze(reader)
	if err != nil {
		return fmt.Errorf("analyze log: %w", err)
	}

	fmt.Fprint(out, inspect.NewFormatter().FormatReport(report))
	return nil
}
