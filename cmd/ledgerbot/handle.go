package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var handleFile string

var handleCmd = &cobra.Command{
	Use:   "handle",
	Short: "Process one cloud-function envelope from stdin or --file and print the acknowledgement",
	RunE:  runHandle,
}

func init() {
	handleCmd.Flags().StringVarP(&handleFile, "file", "f", "", "read the envelope from this file instead of stdin")
}

func runHandle(cmd *cobra.Command, _ []string) error {
	raw, err := readEnvelope(cmd.InOrStdin())
	if err != nil {
		return err
	}

	a, err := buildApp(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	ack := a.processor.ProcessEnvelope(cmd.Context(), raw)
	return json.NewEncoder(cmd.OutOrStdout()).Encode(ack)
}

func readEnvelope(stdin io.Reader) ([]byte, error) {
	if handleFile == "" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return raw, nil
	}
	raw, err := os.ReadFile(handleFile)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", handleFile, err)
	}
	return raw, nil
}
