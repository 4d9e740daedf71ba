package config

import (
	"os"
	"strings"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvBaseURL     = "APIGEE_BASE_URL"
	EnvOrg         = "APIGEE_ORG"
	EnvEnvironment = "APIGEE_ENVIRONMENT"
	EnvUsername    = "APIGEE_USERNAME"
	EnvPassword    = "APIGEE_PASSWORD"
	EnvProxyMode   = "APIGEE_PROXY_MODE"
)

// Overrides carries command-line flag values. Empty fields leave settings untouched.
type Overrides struct {
	BaseURL     string
	Org         string
	Environment string
	Username    string
	Password    string
}

// ApplyEnv overrides settings from APIGEE_* environment variables.
func (s *Settings) ApplyEnv() {
	setIfPresent(&s.BaseURL, os.Getenv(EnvBaseURL))
	setIfPresent(&s.Org, os.Getenv(EnvOrg))
	setIfPresent(&s.Environment, os.Getenv(EnvEnvironment))
	setIfPresent(&s.Username, os.Getenv(EnvUsername))
	setIfPresent(&s.Password, os.Getenv(EnvPassword))
	setIfPresent(&s.ProxyMode, os.Getenv(EnvProxyMode))
	s.ProxyMode = NormalizeProxyMode(s.ProxyMode)
}

// MergeFlags applies command-line overrides, which take precedence over every other source.
func (s *Settings) MergeFlags(o Overrides) {
	setIfPresent(&s.BaseURL, o.BaseURL)
	setIfPresent(&s.Org, o.Org)
	setIfPresent(&s.Environment, o.Environment)
	setIfPresent(&s.Username, o.Username)
	setIfPresent(&s.Password, o.Password)
}

// Resolve loads the settings file at path and layers the environment and flags on top.
//
// Priority (highest to lowest):
//  1. Command-line flags
//  2. APIGEE_* environment variables
//  3. Settings file
//  4. Built-in defaults
func Resolve(path string, o Overrides) (*Settings, error) {
	s, err := Load(path)
	if err != nil {
		return nil, err
	}
	s.ApplyEnv()
	s.MergeFlags(o)
	s.BaseURL = strings.TrimSuffix(s.BaseURL, "/")
	return s, nil
}

func setIfPresent(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
