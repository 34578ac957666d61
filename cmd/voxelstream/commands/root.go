// Package commands implements voxelstream's CLI, built the way
// dittofs's cmd/dittofs/commands builds its own: a cobra root command
// with a persistent --config flag and one file per subcommand.
package commands

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "voxelstream",
	Short: "voxelstream - a bounded-memory voxel chunk working set",
	Long: `voxelstream manages a fixed-capacity window of voxel chunks around a
moving observer: streaming chunk data in and out, greedy-meshing the
changed ones, and reconciling collision shapes, all behind a small set
of collaborator interfaces (region file, physics, renderer, observer).

Use "voxelstream [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (defaults omitted: env VOXELSTREAM_* and built-in defaults apply)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(versionCmd)
}
