package main

import (
	// Containers often ship without zoneinfo; TODOIST_TIMEZONE must still load.
	_ "time/tzdata"

	"github.com/teemow/todoist-mcp/cmd"
)

// version will be set by goreleaser during build
var version = "dev"

func main() {
	// Set the version from build-time variable
	cmd.SetVersion(version)

	// Execute the root command
	cmd.Execute()
}
