// Package voxel holds the shared data types that every voxelstream
// subsystem builds on: block types, chunk-space positions, and the
// quad representation the greedy mesher emits.
package voxel

import "github.com/go-gl/mathgl/mgl32"

// BlockType is a small unsigned tag identifying the contents of a cell.
// The reserved value None means "empty/air". Two blocks compare equal
// iff their types are equal.
type BlockType uint8

// None is the reserved empty block type.
const None BlockType = 0

// ChunkSize is the side length, in blocks, of a cubical chunk.
const ChunkSize = 32

// ChunkVolume is the number of cells in a chunk.
const ChunkVolume = ChunkSize * ChunkSize * ChunkSize

// ChunkPosition is an integer chunk-space coordinate.
type ChunkPosition struct {
	X, Y, Z int32
}

// Sentinel marks a working-set slot as holding no chunk.
var Sentinel = ChunkPosition{X: -1, Y: -1, Z: -1}

// IsSentinel reports whether p is the "no chunk assigned" marker.
func (p ChunkPosition) IsSentinel() bool {
	return p == Sentinel
}

// WorldOrigin returns the world-space position of this chunk's corner.
func (p ChunkPosition) WorldOrigin() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(p.X) * ChunkSize,
		float32(p.Y) * ChunkSize,
		float32(p.Z) * ChunkSize,
	}
}

// Add returns p shifted by (dx, dy, dz).
func (p ChunkPosition) Add(dx, dy, dz int32) ChunkPosition {
	return ChunkPosition{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz}
}

// LocalPosition is an in-chunk coordinate, each component in [0, ChunkSize).
type LocalPosition struct {
	X, Y, Z int
}

// InBounds reports whether every component lies in [0, ChunkSize).
func (p LocalPosition) InBounds() bool {
	return p.X >= 0 && p.X < ChunkSize &&
		p.Y >= 0 && p.Y < ChunkSize &&
		p.Z >= 0 && p.Z < ChunkSize
}

// Index linearizes a local position as x + z*ChunkSize^2 + y*ChunkSize,
// matching the layout the block-field codec reads and writes.
func (p LocalPosition) Index() int {
	return p.X + p.Z*ChunkSize*ChunkSize + p.Y*ChunkSize
}

// WorldPosition is an integer world-space block coordinate.
type WorldPosition struct {
	X, Y, Z int32
}

// Split decomposes a world position into its owning chunk position and
// the local position within that chunk, using floor division so negative
// coordinates behave consistently.
func (p WorldPosition) Split() (ChunkPosition, LocalPosition) {
	cx, lx := floorDivMod(p.X, ChunkSize)
	cy, ly := floorDivMod(p.Y, ChunkSize)
	cz, lz := floorDivMod(p.Z, ChunkSize)
	return ChunkPosition{X: cx, Y: cy, Z: cz}, LocalPosition{X: int(lx), Y: int(ly), Z: int(lz)}
}

func floorDivMod(a, b int32) (int32, int32) {
	q := a / b
	r := a % b
	if r != 0 && (r < 0) != (b < 0) {
		q--
		r += b
	}
	return q, r
}

// Side identifies one of the six axis-aligned face directions a quad
// can face.
type Side uint8

const (
	East Side = iota
	West
	Top
	Bottom
	North
	South
)

// Quad is a single greedy-meshed rectangle: four chunk-local integer
// grid positions, the side it faces, the block type it carries, and
// whether its winding is the back-face order.
type Quad struct {
	Positions [4]mgl32.Vec3
	Side      Side
	Type      BlockType
	BackFace  bool
}

// Mesh is a chunk's renderable output: a flat vertex/position buffer
// and an index buffer built from a sequence of Quads.
type Mesh struct {
	Positions []mgl32.Vec3
	Sides     []Side
	Types     []BlockType
	Indices   []uint32
}

// Reset empties the mesh while retaining its backing arrays.
func (m *Mesh) Reset() {
	m.Positions = m.Positions[:0]
	m.Sides = m.Sides[:0]
	m.Types = m.Types[:0]
	m.Indices = m.Indices[:0]
}

// IsEmpty reports whether the mesh carries zero indices.
func (m *Mesh) IsEmpty() bool {
	return len(m.Indices) == 0
}

// AppendQuad appends a quad's four vertices and six winding indices
// (per the front/back winding rule in the mesher) to the mesh.
func (m *Mesh) AppendQuad(q Quad) {
	base := uint32(len(m.Positions))
	for _, pos := range q.Positions {
		m.Positions = append(m.Positions, pos)
		m.Sides = append(m.Sides, q.Side)
		m.Types = append(m.Types, q.Type)
	}
	if q.BackFace {
		m.Indices = append(m.Indices,
			base+0, base+1, base+2,
			base+2, base+3, base+0,
		)
	} else {
		m.Indices = append(m.Indices,
			base+0, base+3, base+2,
			base+0, base+2, base+1,
		)
	}
}
