package chunk

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxelstream/internal/voxel"
)

// buildGreedyMesh is the greedy meshing algorithm: for each of the
// three axes and both face signs, slide a plane across the chunk,
// build a 2D visibility mask, and greedily merge matching cells into
// maximal rectangles. Ported from the teacher's
// internal/meshing/greedy.go sweep shape and cross-checked against
// AtlasEngine's FChunk::GreedyMesh for the mask and winding rules.
func buildGreedyMesh(blocks *[voxel.ChunkVolume]voxel.BlockType, mesh *voxel.Mesh) {
	for d := 0; d < 3; d++ {
		u := (d + 1) % 3
		v := (d + 2) % 3
		for _, backFace := range [2]bool{false, true} {
			side := sideFor(d, backFace)
			for plane := -1; plane < voxel.ChunkSize; plane++ {
				mask := buildMask(blocks, d, u, v, plane, backFace)
				sweepMask(&mask, plane, d, u, v, side, backFace, mesh)
			}
		}
	}
}

func buildMask(blocks *[voxel.ChunkVolume]voxel.BlockType, d, u, v, plane int, backFace bool) [voxel.ChunkSize * voxel.ChunkSize]voxel.BlockType {
	var mask [voxel.ChunkSize * voxel.ChunkSize]voxel.BlockType
	var c1, c2 [3]int
	for j := 0; j < voxel.ChunkSize; j++ {
		for i := 0; i < voxel.ChunkSize; i++ {
			c1[d], c1[u], c1[v] = plane, i, j
			c2[d], c2[u], c2[v] = plane+1, i, j
			b1 := sampleBlock(blocks, c1)
			b2 := sampleBlock(blocks, c2)

			var val voxel.BlockType
			switch {
			case b1 == b2:
				val = voxel.None
			case backFace:
				val = b2
			default:
				val = b1
			}
			mask[j*voxel.ChunkSize+i] = val
		}
	}
	return mask
}

// sampleBlock treats any coordinate outside the chunk as voxel.None,
// matching AtlasEngine's GreedyMesh boundary handling. This yields a
// full outer shell of quads for a solid chunk and means a chunk never
// needs neighbor data to mesh itself; seam-matching across a chunk
// boundary is a renderer/world concern, not this package's.
func sampleBlock(blocks *[voxel.ChunkVolume]voxel.BlockType, c [3]int) voxel.BlockType {
	if c[0] < 0 || c[0] >= voxel.ChunkSize ||
		c[1] < 0 || c[1] >= voxel.ChunkSize ||
		c[2] < 0 || c[2] >= voxel.ChunkSize {
		return voxel.None
	}
	return blocks[(voxel.LocalPosition{X: c[0], Y: c[1], Z: c[2]}).Index()]
}

func sideFor(d int, backFace bool) voxel.Side {
	switch d {
	case 0:
		if backFace {
			return voxel.West
		}
		return voxel.East
	case 1:
		if backFace {
			return voxel.Bottom
		}
		return voxel.Top
	default:
		if backFace {
			return voxel.South
		}
		return voxel.North
	}
}

// sweepMask runs the greedy rectangle merge over one plane's mask:
// at each unvisited non-None cell, extend width along u while entries
// match, then extend height along v while every cell of the row
// matches across the full width, emit one quad for the rectangle, and
// zero the covered cells.
func sweepMask(mask *[voxel.ChunkSize * voxel.ChunkSize]voxel.BlockType, plane, d, u, v int, side voxel.Side, backFace bool, mesh *voxel.Mesh) {
	for j := 0; j < voxel.ChunkSize; j++ {
		for i := 0; i < voxel.ChunkSize; {
			n := j*voxel.ChunkSize + i
			t := mask[n]
			if t == voxel.None {
				i++
				continue
			}

			width := 1
			for i+width < voxel.ChunkSize && mask[n+width] == t {
				width++
			}

			height := 1
		heightLoop:
			for j+height < voxel.ChunkSize {
				for k := 0; k < width; k++ {
					if mask[(j+height)*voxel.ChunkSize+i+k] != t {
						break heightLoop
					}
				}
				height++
			}

			emitQuad(mesh, plane, d, u, v, i, j, width, height, t, side, backFace)

			for hh := 0; hh < height; hh++ {
				for ww := 0; ww < width; ww++ {
					mask[(j+hh)*voxel.ChunkSize+i+ww] = voxel.None
				}
			}
			i += width
		}
	}
}

func emitQuad(mesh *voxel.Mesh, plane, d, u, v, i, j, width, height int, t voxel.BlockType, side voxel.Side, backFace bool) {
	face := float32(plane + 1)
	corner := func(uVal, vVal float32) mgl32.Vec3 {
		var p mgl32.Vec3
		p[d] = face
		p[u] = uVal
		p[v] = vVal
		return p
	}

	bottomLeft := corner(float32(i), float32(j))
	bottomRight := corner(float32(i+width), float32(j))
	topRight := corner(float32(i+width), float32(j+height))
	topLeft := corner(float32(i), float32(j+height))

	mesh.AppendQuad(voxel.Quad{
		Positions: [4]mgl32.Vec3{bottomLeft, bottomRight, topRight, topLeft},
		Side:      side,
		Type:      t,
		BackFace:  backFace,
	})
}
