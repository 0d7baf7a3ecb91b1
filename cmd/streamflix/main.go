// Package main is the streamflix reliability worker and admin CLI.
//
// Usage:
//
//	streamflix worker
//	streamflix migrate
//	streamflix movie create --token $TOKEN --title "Dune" --tmdb-id 438631
//	streamflix subscription request --token $TOKEN --plan Premium
//	streamflix subscription review --token $ADMIN_TOKEN --user <id> --action approve
package main

import (
	"fmt"
	"os"

	"github.com/Sokol111/streamflix-reliability/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
