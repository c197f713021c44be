// Package main is the entry point for quotesync.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jsamuelsen/quotesync/internal/cli"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the binary.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	app := cli.NewApp(cli.BuildInfo{Version: Version, Commit: Commit, BuildTime: BuildTime})

	if err := app.Execute(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
