package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"voxelstream/internal/blockcodec"
	"voxelstream/internal/config"
	"voxelstream/internal/voxel"
)

var (
	inspectX int32
	inspectY int32
	inspectZ int32
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Dump a chunk's decoded block-type histogram",
	Long: `Inspect reads a single chunk's persisted block field through the
configured region-file backend, decodes it, and prints a count of each
block type present, without starting the working set or its worker.`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().Int32Var(&inspectX, "x", 0, "chunk X coordinate")
	inspectCmd.Flags().Int32Var(&inspectY, "y", 0, "chunk Y coordinate")
	inspectCmd.Flags().Int32Var(&inspectZ, "z", 0, "chunk Z coordinate")
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	region, closeRegion, err := openRegionFile(cfg)
	if err != nil {
		return err
	}
	defer closeRegion()

	if err := region.SetWorld(cfg.World.Name); err != nil {
		return err
	}

	pos := voxel.ChunkPosition{X: inspectX, Y: inspectY, Z: inspectZ}
	data, err := region.ChunkData(pos)
	if err != nil {
		return fmt.Errorf("read chunk data: %w", err)
	}

	blocks, empty, err := blockcodec.Decode(data)
	if err != nil {
		return fmt.Errorf("decode chunk data: %w", err)
	}

	counts := make(map[voxel.BlockType]int)
	for _, t := range blocks {
		counts[t]++
	}

	fmt.Printf("chunk %v: %d bytes encoded, empty=%v\n", pos, len(data), empty)
	types := make([]int, 0, len(counts))
	for t := range counts {
		types = append(types, int(t))
	}
	sort.Ints(types)
	for _, t := range types {
		fmt.Printf("  type %3d: %6d cells\n", t, counts[voxel.BlockType(t)])
	}
	return nil
}
