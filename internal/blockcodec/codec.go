// Package blockcodec implements the run-length on-disk encoding for a
// chunk's block field: pairs of (type byte, run byte) traversed in
// (y, x, z) order, with no length prefix.
package blockcodec

import (
	"errors"
	"fmt"

	"voxelstream/internal/voxel"
)

// ErrInvalidLength is returned when a stream is exhausted before
// ChunkVolume cells have been materialized, or leaves excess bytes.
var ErrInvalidLength = errors.New("blockcodec: invalid length")

// ErrZeroRun is returned when a run byte of 0 is encountered.
var ErrZeroRun = errors.New("blockcodec: zero run")

const maxRun = 255

// Encode traverses blocks in (y, x, z) order and emits RLE pairs,
// starting a new pair whenever the type changes or a run would exceed
// 255. blocks must have length voxel.ChunkVolume, indexed per
// voxel.LocalPosition.Index.
func Encode(blocks [voxel.ChunkVolume]voxel.BlockType) []byte {
	out := make([]byte, 0, voxel.ChunkVolume/32)
	var cur voxel.BlockType
	var run int
	flush := func() {
		if run > 0 {
			out = append(out, byte(cur), byte(run))
		}
	}
	first := true
	for y := 0; y < voxel.ChunkSize; y++ {
		for x := 0; x < voxel.ChunkSize; x++ {
			for z := 0; z < voxel.ChunkSize; z++ {
				idx := (voxel.LocalPosition{X: x, Y: y, Z: z}).Index()
				t := blocks[idx]
				switch {
				case first:
					cur, run, first = t, 1, false
				case t == cur && run < maxRun:
					run++
				default:
					flush()
					cur, run = t, 1
				}
			}
		}
	}
	flush()
	return out
}

// Decode expands an RLE stream into a fixed-size block array in the
// same (y, x, z) order Encode used. The returned bool is true iff every
// decoded cell has type voxel.None, i.e. the chunk is entirely empty.
func Decode(stream []byte) (blocks [voxel.ChunkVolume]voxel.BlockType, empty bool, err error) {
	empty = true
	pos := 0
	filled := 0
	for filled < voxel.ChunkVolume {
		if pos+2 > len(stream) {
			return blocks, false, fmt.Errorf("%w: stream exhausted at cell %d/%d", ErrInvalidLength, filled, voxel.ChunkVolume)
		}
		t := voxel.BlockType(stream[pos])
		run := int(stream[pos+1])
		pos += 2
		if run == 0 {
			return blocks, false, ErrZeroRun
		}
		if filled+run > voxel.ChunkVolume {
			return blocks, false, fmt.Errorf("%w: run overruns chunk volume", ErrInvalidLength)
		}
		if t != voxel.None {
			empty = false
		}
		for i := 0; i < run; i++ {
			cellIndex := filled + i
			y := cellIndex / (voxel.ChunkSize * voxel.ChunkSize)
			rem := cellIndex % (voxel.ChunkSize * voxel.ChunkSize)
			x := rem / voxel.ChunkSize
			z := rem % voxel.ChunkSize
			blocks[(voxel.LocalPosition{X: x, Y: y, Z: z}).Index()] = t
		}
		filled += run
	}
	if pos != len(stream) {
		return blocks, false, fmt.Errorf("%w: %d excess bytes", ErrInvalidLength, len(stream)-pos)
	}
	return blocks, empty, nil
}
