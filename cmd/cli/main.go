package main

import (
	"fmt"
	"os"

	"github.com/crucial707/landscape-lab/cmd/cli/auth"
	"github.com/crucial707/landscape-lab/cmd/cli/catalog"
	"github.com/crucial707/landscape-lab/cmd/cli/projects"
	"github.com/crucial707/landscape-lab/cmd/cli/root"
	"github.com/crucial707/landscape-lab/cmd/cli/stats"
)

func main() {
	rootCmd := root.New()
	auth.InitAuth(rootCmd)
	projects.InitProjects(rootCmd)
	catalog.InitCatalog(rootCmd)
	stats.InitStats(rootCmd)

	// Execute the root Cobra command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
