// Package cli provides the command-line interface for apigee.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bellycard/apigee-cli/internal/logging"
	"github.com/bellycard/apigee-cli/internal/version"
)

var (
	// Global flags
	cfgFile     string
	org         string
	environment string
	username    string
	password    string
	baseURL     string
	verbose     bool
	debug       bool
	logFile     string
	noColor     bool

	// Global logger
	logger *logging.Logger

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "apigee",
		Short: "Manage Apigee key value maps and resource files",
		Long: `apigee ` + version.Version + ` - Built: ` + version.BuildTime + `
Command-line client for the Apigee Edge management API.

Manages two kinds of environment-scoped resources:
  config     key value maps (config sets)
  resource   JavaScript resource files

Credentials and the target organization come from the settings file
(see "apigee settings path"), APIGEE_* environment variables, or flags.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Close()
			}
			logger = logging.NewLogger(logging.Options{LogFile: logFile})
			if verbose || debug {
				logging.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				logging.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Settings file path (default: ~/.config/apigee/apiconfig)")
	rootCmd.PersistentFlags().StringVar(&org, "org", "", "Apigee organization (overrides settings)")
	rootCmd.PersistentFlags().StringVarP(&environment, "environment", "e", "", "Apigee environment (overrides settings)")
	rootCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "Management API username (overrides settings)")
	rootCmd.PersistentFlags().StringVarP(&password, "password", "p", "", "Management API password (overrides settings)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Management API base URL (overrides settings)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output (same as --verbose)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to this file (rotated)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable coloured output")

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"

	rootCmd.AddCommand(newCompletionCmd(rootCmd))
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	return rootCmd
}

func newCompletionCmd(rootCmd *cobra.Command) *cobra.Command {
	completionCmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Enable tab-completion for apigee commands",
		Long: `Generate shell completion scripts to enable tab-completion for apigee.

QUICK START:

  zsh:
    mkdir -p ~/.zsh/completions
    apigee completion zsh > ~/.zsh/completions/_apigee
    # Then add to ~/.zshrc: fpath=(~/.zsh/completions $fpath)

  bash:
    apigee completion bash | sudo tee /etc/bash_completion.d/apigee

For detailed instructions, use: apigee completion [shell] --help`,
	}

	completionCmd.AddCommand(&cobra.Command{
		Use:   "bash",
		Short: "Generate bash completion script",
		Long: `Generate the autocompletion script for bash.

QUICK TEST (temporary, current session only):
  source <(apigee completion bash)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.Root().GenBashCompletion(cmd.OutOrStdout())
		},
	})

	completionCmd.AddCommand(&cobra.Command{
		Use:   "zsh",
		Short: "Generate zsh completion script",
		Long: `Generate the autocompletion script for zsh.

QUICK TEST (temporary, current session only):
  source <(apigee completion zsh)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.Root().GenZshCompletion(cmd.OutOrStdout())
		},
	})

	completionCmd.AddCommand(&cobra.Command{
		Use:   "fish",
		Short: "Generate fish completion script",
		Long: `Generate the autocompletion script for fish.

  apigee completion fish > ~/.config/fish/completions/apigee.fish`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
		},
	})

	completionCmd.AddCommand(&cobra.Command{
		Use:   "powershell",
		Short: "Generate PowerShell completion script",
		Long: `Generate the autocompletion script for PowerShell.

  apigee completion powershell >> $PROFILE`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.Root().GenPowerShellCompletion(cmd.OutOrStdout())
		},
	})

	return completionCmd
}

// Execute runs the CLI.
func Execute() error {
	rootContext, cancelFunc = context.WithCancel(context.Background())
	defer cancelFunc()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			// sig is nil once the channel is closed
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, cancelling...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.Execute()

	signal.Stop(sigChan)
	close(sigChan)

	if logger != nil {
		_ = logger.Close()
	}

	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newResourceCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newSettingsCmd())

	AddShortcuts(rootCmd)
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return logger
}

// GetContext returns the global CLI context, cancelled on Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		return context.Background()
	}
	return rootContext
}
