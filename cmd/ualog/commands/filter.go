package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/opcua-sdk/opcua-go/pkg/log"
)

// RunFilter copies the matching events of one log file into a new one
// and reports how many were kept.
func RunFilter(path string, filter log.Filter, outPath string) (int, error) {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return 0, fmt.Errorf("open log: %w", err)
	}
	defer reader.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("create output: %w", err)
	}
	encoder := log.NewEncoder(out)

	kept := 0
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			out.Close()
			return kept, fmt.Errorf("read log: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			out.Close()
			return kept, fmt.Errorf("write event: %w", err)
		}
		kept++
	}

	if err := out.Close(); err != nil {
		return kept, fmt.Errorf("close output: %w", err)
	}
	return kept, nil
}
