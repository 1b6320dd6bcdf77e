// Command transitsync keeps a transit calendar in step with a source calendar.
package main

import (
	"context"
	"os"

	_ "time/tzdata" // timezone database for minimal container images

	"github.com/custodia-labs/transitsync/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
