// Package config provides settings management for the apigee CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// Defaults applied when neither the settings file, the environment nor flags set a value.
const (
	DefaultBaseURL     = "https://api.enterprise.apigee.com"
	DefaultEnvironment = "test"
	DefaultProxyMode   = "no-proxy"
	DefaultProxyPort   = 8080
)

// Settings is the connection configuration shared by every command.
//
// Settings file location:
//   - Windows: %USERPROFILE%\.config\apigee\apiconfig
//   - Unix: ~/.config/apigee/apiconfig
//
// INI format:
//
//	[apigee]
//	base_url = https://api.enterprise.apigee.com
//	org = my-org
//	environment = test
//	username = me@example.com
//	password = <password>
//
//	[proxy]
//	mode = no-proxy
//	host =
//	port = 8080
//	user =
//	password =
//	no_proxy =
type Settings struct {
	BaseURL     string `ini:"base_url" validate:"required,url"`
	Org         string `ini:"org" validate:"required"`
	Environment string `ini:"environment" validate:"required"`
	Username    string `ini:"username" validate:"required"`
	Password    string `ini:"password" validate:"required"`

	ProxyMode     string `ini:"mode" validate:"oneof=no-proxy system basic ntlm"`
	ProxyHost     string `ini:"host"`
	ProxyPort     int    `ini:"port"` // checked only when the mode goes through a proxy host
	ProxyUser     string `ini:"user"`
	ProxyPassword string `ini:"password"`
	NoProxy       string `ini:"no_proxy"` // comma-separated hosts/CIDRs that bypass the proxy
}

// NormalizeProxyMode returns mode trimmed and lowercased, so "NTLM" and "ntlm" mean the same.
func NormalizeProxyMode(mode string) string {
	return strings.ToLower(strings.TrimSpace(mode))
}

// UsesProxyHost reports whether the proxy mode connects through ProxyHost:ProxyPort.
func (s *Settings) UsesProxyHost() bool {
	switch NormalizeProxyMode(s.ProxyMode) {
	case "basic", "ntlm":
		return true
	default:
		return false
	}
}

// New returns Settings populated with defaults.
func New() *Settings {
	return &Settings{
		BaseURL:     DefaultBaseURL,
		Environment: DefaultEnvironment,
		ProxyMode:   DefaultProxyMode,
		ProxyPort:   DefaultProxyPort,
	}
}

// DefaultPath returns the default settings file path.
func DefaultPath() (string, error) {
	var configDir string

	if runtime.GOOS == "windows" {
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", errors.New("USERPROFILE environment variable not set")
		}
		configDir = filepath.Join(userProfile, ".config", "apigee")
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config", "apigee")
	}

	return filepath.Join(configDir, "apiconfig"), nil
}

// Load reads settings from an INI file.
// If the file doesn't exist, returns defaults and no error.
// If the file exists but is invalid, returns an error.
func Load(path string) (*Settings, error) {
	s := New()

	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return s, nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return s, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	apigee := iniFile.Section("apigee")
	s.BaseURL = apigee.Key("base_url").MustString(s.BaseURL)
	s.Org = apigee.Key("org").String()
	s.Environment = apigee.Key("environment").MustString(s.Environment)
	s.Username = apigee.Key("username").String()
	s.Password = apigee.Key("password").String()

	proxy := iniFile.Section("proxy")
	s.ProxyMode = NormalizeProxyMode(proxy.Key("mode").MustString(s.ProxyMode))
	s.ProxyHost = proxy.Key("host").String()
	s.ProxyPort = proxy.Key("port").MustInt(s.ProxyPort)
	s.ProxyUser = proxy.Key("user").String()
	s.ProxyPassword = proxy.Key("password").String()
	s.NoProxy = proxy.Key("no_proxy").String()

	return s, nil
}

// Save writes settings to an INI file, creating parent directories as needed.
// The file holds credentials, so it is written with owner-only permissions.
func Save(s *Settings, path string) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return fmt.Errorf("failed to determine settings path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	iniFile := ini.Empty()

	apigee, err := iniFile.NewSection("apigee")
	if err != nil {
		return fmt.Errorf("failed to create apigee section: %w", err)
	}
	apigee.Key("base_url").SetValue(s.BaseURL)
	apigee.Key("org").SetValue(s.Org)
	apigee.Key("environment").SetValue(s.Environment)
	apigee.Key("username").SetValue(s.Username)
	apigee.Key("password").SetValue(s.Password)

	proxy, err := iniFile.NewSection("proxy")
	if err != nil {
		return fmt.Errorf("failed to create proxy section: %w", err)
	}
	proxy.Key("mode").SetValue(s.ProxyMode)
	proxy.Key("host").SetValue(s.ProxyHost)
	proxy.Key("port").SetValue(strconv.Itoa(s.ProxyPort))
	proxy.Key("user").SetValue(s.ProxyUser)
	proxy.Key("password").SetValue(s.ProxyPassword)
	proxy.Key("no_proxy").SetValue(s.NoProxy)

	// temp file + rename so a crash never leaves a truncated file behind
	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set settings permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save settings: %w", err)
	}

	return nil
}

// Redacted returns a copy with secrets masked, suitable for display.
func (s *Settings) Redacted() Settings {
	c := *s
	c.Password = mask(c.Password)
	c.ProxyPassword = mask(c.ProxyPassword)
	return c
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}
