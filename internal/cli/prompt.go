package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// confirm asks a yes/no question on the command's streams.
// Only "y" or "yes" confirm; anything else, including EOF, declines.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/n] ", question)

	reader := bufio.NewReader(cmd.InOrStdin())
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		fmt.Fprintln(cmd.OutOrStdout())
		return false
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// promptLine asks for a value, returning def when the answer is empty.
func promptLine(cmd *cobra.Command, reader *bufio.Reader, label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ", label)
	}

	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	if v := strings.TrimSpace(input); v != "" {
		return v, nil
	}
	return def, nil
}
