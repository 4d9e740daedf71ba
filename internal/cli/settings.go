package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bellycard/apigee-cli/internal/config"
)

// newSettingsCmd creates the 'settings' command group.
func newSettingsCmd() *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage apigee connection settings",
		Long: `Connection settings for the Apigee management API.

Commands:
  init  - Interactive settings setup
  show  - Display current settings
  test  - Test the API connection
  path  - Show settings file path`,
	}

	settingsCmd.AddCommand(newSettingsInitCmd())
	settingsCmd.AddCommand(newSettingsShowCmd())
	settingsCmd.AddCommand(newSettingsTestCmd())
	settingsCmd.AddCommand(newSettingsPathCmd())

	return settingsCmd
}

// newSettingsInitCmd creates the 'settings init' command.
func newSettingsInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize settings interactively",
		Long: `Interactive settings setup for apigee.

The settings are saved to ~/.config/apigee/apiconfig (or --config)
with owner-only permissions.

Use --force to overwrite existing settings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			path, err := settingsPath()
			if err != nil {
				return err
			}
			if !force {
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintf(out, "Settings already exist at: %s\n", path)
					fmt.Fprintln(out, "Use --force to overwrite or run 'settings show' to view them.")
					return nil
				}
			}

			s, err := config.Load(path)
			if err != nil {
				s = config.New()
			}

			fmt.Fprintln(out, "Apigee Settings Setup")
			fmt.Fprintln(out, "=====================")
			fmt.Fprintln(out)

			if err := promptSettings(cmd, bufio.NewReader(cmd.InOrStdin()), s); err != nil {
				return err
			}
			if err := s.Validate(); err != nil {
				return err
			}
			if err := config.Save(s, path); err != nil {
				return err
			}

			GetLogger().Info().Str("path", path).Msg("Settings saved")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Settings saved to: %s\n", path)
			fmt.Fprintln(out, "Test your settings with: apigee settings test")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing settings")

	return cmd
}

// promptSettings fills s from answers on reader, keeping current values on empty input.
func promptSettings(cmd *cobra.Command, reader *bufio.Reader, s *config.Settings) error {
	var err error
	if s.BaseURL, err = promptLine(cmd, reader, "Management API URL", s.BaseURL); err != nil {
		return err
	}
	if s.Org, err = promptLine(cmd, reader, "Organization", s.Org); err != nil {
		return err
	}
	if s.Environment, err = promptLine(cmd, reader, "Environment", s.Environment); err != nil {
		return err
	}
	if s.Username, err = promptLine(cmd, reader, "Username", s.Username); err != nil {
		return err
	}
	if s.Password, err = promptSecret(cmd, reader, "Password", s.Password); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout())
	answer, err := promptLine(cmd, reader, "Configure proxy? [y/N]", "")
	if err != nil {
		return err
	}
	if a := strings.ToLower(answer); a != "y" && a != "yes" {
		s.ProxyMode = config.DefaultProxyMode
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Proxy modes: no-proxy, system, basic, ntlm")
	mode := s.ProxyMode
	if mode == config.DefaultProxyMode {
		mode = "system"
	}
	if mode, err = promptLine(cmd, reader, "Proxy mode", mode); err != nil {
		return err
	}
	s.ProxyMode = config.NormalizeProxyMode(mode)
	if !s.UsesProxyHost() {
		return nil
	}

	if s.ProxyHost, err = promptLine(cmd, reader, "Proxy host", s.ProxyHost); err != nil {
		return err
	}
	port, err := promptLine(cmd, reader, "Proxy port", strconv.Itoa(s.ProxyPort))
	if err != nil {
		return err
	}
	if s.ProxyPort, err = strconv.Atoi(port); err != nil {
		return fmt.Errorf("invalid proxy port %q", port)
	}
	if s.ProxyUser, err = promptLine(cmd, reader, "Proxy user", s.ProxyUser); err != nil {
		return err
	}
	if s.ProxyUser != "" {
		if s.ProxyPassword, err = promptSecret(cmd, reader, "Proxy password", s.ProxyPassword); err != nil {
			return err
		}
	}
	s.NoProxy, err = promptLine(cmd, reader, "Hosts that bypass the proxy (comma-separated)", s.NoProxy)
	return err
}

// promptSecret reads without echo on a terminal, and as a plain line otherwise.
func promptSecret(cmd *cobra.Command, reader *bufio.Reader, label, current string) (string, error) {
	if current != "" {
		label += " [keep current]"
	}

	var v string
	var err error
	if cmd.InOrStdin() != os.Stdin || !stdinIsTerminal() {
		v, err = promptLine(cmd, reader, label, "")
	} else {
		v, err = readPassword(cmd.OutOrStdout(), label+": ")
	}
	if err != nil {
		return "", err
	}
	if v == "" {
		return current, nil
	}
	return v, nil
}

// newSettingsShowCmd creates the 'settings show' command.
func newSettingsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current settings",
		Long: `Display the current settings with secrets masked.

The settings shown are merged from:
  1. Settings file (~/.config/apigee/apiconfig)
  2. Environment variables (APIGEE_ORG, APIGEE_ENVIRONMENT, ...)
  3. Command-line flags (--org, --environment, ...)

Priority: flags > environment > settings file > defaults`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := settingsPath()
			if err != nil {
				return err
			}
			s, err := loadSettings()
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}
			r := s.Redacted()
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Current Settings")
			fmt.Fprintln(out, "================")
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Apigee:")
			fmt.Fprintf(out, "  Base URL:    %s\n", r.BaseURL)
			fmt.Fprintf(out, "  Org:         %s\n", orUnset(r.Org))
			fmt.Fprintf(out, "  Environment: %s\n", orUnset(r.Environment))
			fmt.Fprintf(out, "  Username:    %s\n", orUnset(r.Username))
			fmt.Fprintf(out, "  Password:    %s\n", orUnset(r.Password))
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Proxy:")
			fmt.Fprintf(out, "  Mode: %s\n", r.ProxyMode)
			if r.ProxyHost != "" {
				fmt.Fprintf(out, "  Host: %s\n", r.ProxyHost)
				fmt.Fprintf(out, "  Port: %d\n", r.ProxyPort)
			}
			if r.ProxyUser != "" {
				fmt.Fprintf(out, "  User: %s\n", r.ProxyUser)
				fmt.Fprintf(out, "  Password: %s\n", orUnset(r.ProxyPassword))
			}
			if r.NoProxy != "" {
				fmt.Fprintf(out, "  No proxy: %s\n", r.NoProxy)
			}
			fmt.Fprintln(out)

			fmt.Fprintf(out, "Settings file: %s\n", path)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Fprintln(out, "  (file does not exist - using defaults)")
			}
			return nil
		},
	}

	return cmd
}

func orUnset(v string) string {
	if v == "" {
		return "<not set>"
	}
	return v
}

// newSettingsTestCmd creates the 'settings test' command.
func newSettingsTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the API connection",
		Long: `Test the management API connection with the current settings.

Lists the key value map names of the environment to verify credentials,
organization and network connectivity.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()
			p := newPrinter(cmd)

			client, err := getAPIClient(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			p.Line("Testing connection to %s", client.KeyValueMapsURL())

			ctx, cancel := context.WithTimeout(GetContext(), 10*time.Second)
			defer cancel()

			names, err := client.ListConfigNames(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("Connection test failed")
				p.Danger("Connection FAILED")
				return fmt.Errorf("connection test failed: %w", err)
			}

			logger.Debug().Int("maps", len(names)).Msg("Connection test successful")
			p.Success("Connection SUCCESSFUL")
			p.Line("Found %d key value map(s) in %s/%s", len(names), client.Org(), client.Environment())
			return nil
		},
	}

	return cmd
}

// newSettingsPathCmd creates the 'settings path' command.
func newSettingsPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Show settings file path",
		Long:  `Display the path to the settings file.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path, err := settingsPath()
			if err != nil {
				return err
			}
			if cfgFile == "" {
				fmt.Fprintln(out, "Default settings path:")
			} else {
				fmt.Fprintln(out, "Settings path (from --config flag):")
			}
			fmt.Fprintf(out, "  %s\n", path)
			fmt.Fprintln(out)

			if info, err := os.Stat(path); err == nil {
				fmt.Fprintln(out, "Status:   file exists")
				fmt.Fprintf(out, "Modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Fprintln(out, "Status: file does not exist")
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Create it with: apigee settings init")
			}
			return nil
		},
	}

	return cmd
}
