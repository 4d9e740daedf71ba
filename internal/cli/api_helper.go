package cli

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/bellycard/apigee-cli/internal/api"
	"github.com/bellycard/apigee-cli/internal/config"
	inthttp "github.com/bellycard/apigee-cli/internal/http"
)

// settingsPath returns --config or the default settings location.
func settingsPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.DefaultPath()
}

// loadSettings resolves settings from the file, APIGEE_* variables and global flags.
func loadSettings() (*config.Settings, error) {
	path, err := settingsPath()
	if err != nil {
		return nil, err
	}
	return config.Resolve(path, config.Overrides{
		BaseURL:     baseURL,
		Org:         org,
		Environment: environment,
		Username:    username,
		Password:    password,
	})
}

// getAPIClient loads and validates settings and creates an API client.
// Missing passwords are prompted for when stdin is a terminal.
func getAPIClient(errOut io.Writer) (*api.Client, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if s.Password == "" && s.Username != "" && stdinIsTerminal() {
		if s.Password, err = readPassword(errOut, fmt.Sprintf("Password for %s: ", s.Username)); err != nil {
			return nil, err
		}
	}
	if inthttp.NeedsProxyPassword(s) && stdinIsTerminal() {
		if s.ProxyPassword, err = readPassword(errOut, fmt.Sprintf("Proxy password for %s: ", s.ProxyUser)); err != nil {
			return nil, err
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	client, err := api.NewClient(s, api.WithLogger(GetLogger()))
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	return client, nil
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// readPassword reads a line from the terminal without echo.
func readPassword(out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}
