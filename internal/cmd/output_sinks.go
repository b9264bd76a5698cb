package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkashifaslam/prompt-studio/internal/output"
)

type outputSink struct {
	writer io.Writer
	close  func() error
	path   string
}

// addOutputFlags registers --output and --out on each command.
func addOutputFlags(cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.Flags().StringP("output", "o", "table", "Output format: table, json, markdown")
		c.Flags().String("out", "", "Write output to file instead of stdout")
	}
}

func resolveFormatter(cmd *cobra.Command) (output.Formatter, error) {
	value, err := cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}
	format, err := output.ParseFormat(value)
	if err != nil {
		return nil, err
	}
	return output.NewFormatter(format), nil
}

// writeOutput renders through the command's formatter and writes to the
// --out target.
func writeOutput(cmd *cobra.Command, render func(output.Formatter) (string, error)) error {
	formatter, err := resolveFormatter(cmd)
	if err != nil {
		return err
	}
	rendered, err := render(formatter)
	if err != nil {
		return err
	}

	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	sink, err := openSink(cmd, outPath)
	if err != nil {
		return err
	}
	defer sink.close() // nolint:errcheck // stdout close is a no-op

	if !strings.HasSuffix(rendered, "\n") {
		rendered += "\n"
	}
	_, err = io.WriteString(sink.writer, rendered)
	return err
}

func openSink(cmd *cobra.Command, path string) (*outputSink, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed == "-" {
		return &outputSink{writer: cmd.OutOrStdout(), close: func() error { return nil }, path: "-"}, nil
	}

	if err := os.MkdirAll(filepath.Dir(trimmed), 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	file, err := os.Create(trimmed) // #nosec G304 -- output path is user-provided
	if err != nil {
		return nil, err
	}
	return &outputSink{writer: file, close: file.Close, path: trimmed}, nil
}
