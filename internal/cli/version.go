package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/synheart/synheart-monitor/internal/models"
)

var (
	// Version is set at build time
	Version = "0.1.0"
	// Commit is set at build time
	Commit = "dev"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Displays the version of Synheart Monitor.`,
	Run:   runVersion,
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Printf("Synheart Monitor v%s\n", Version)
	fmt.Printf("Commit: %s\n", Commit)
	fmt.Printf("Frame schema: %s\n", models.SchemaVersion)
	fmt.Printf("Go: %s\n", runtime.Version())
	fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
