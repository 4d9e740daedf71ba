package cli

import (
	"github.com/spf13/cobra"
)

// AddShortcuts adds top-level aliases for commonly-used subcommands.
func AddShortcuts(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newUploadShortcut())
	rootCmd.AddCommand(newPushShortcut())
	rootCmd.AddCommand(newPullShortcut())
}

// newUploadShortcut creates the 'upload' shortcut command.
// Shortcut for: resource upload
func newUploadShortcut() *cobra.Command {
	cmd := newResourceUploadCmd()
	cmd.Short = "Upload resource files (shortcut for 'resource upload')"
	return cmd
}

// newPushShortcut creates the 'push' shortcut command.
// Shortcut for: config push
func newPushShortcut() *cobra.Command {
	cmd := newConfigPushCmd()
	cmd.Short = "Create or update a key value map (shortcut for 'config push')"
	return cmd
}

// newPullShortcut creates the 'pull' shortcut command.
// Shortcut for: config pull
func newPullShortcut() *cobra.Command {
	cmd := newConfigPullCmd()
	cmd.Short = "Write a key value map as YAML (shortcut for 'config pull')"
	return cmd
}
