// apigee - command-line client for Apigee key value maps and resource files
package main

import (
	"os"

	"github.com/bellycard/apigee-cli/internal/cli"
	"github.com/bellycard/apigee-cli/internal/version"
)

// Version information, overridden with -ldflags "-X main.Version=... -X main.BuildTime=..."
var (
	Version   = "v0.3.0-dev"
	BuildTime = "unknown"
)

func main() {
	version.Version = Version
	version.BuildTime = BuildTime

	// cobra has already printed the error
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
