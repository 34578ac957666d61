// Package collab defines the interfaces voxelstream expects from its
// external collaborators: the region-file container, the physics
// backend, the renderer, and the observer. Everything on the other
// side of these interfaces (GPU pipelines, collision solvers, terrain
// generation, window/input handling) is out of scope; voxelstream only
// consumes them.
package collab

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxelstream/internal/voxel"
)

// RegionFile persists chunk block data keyed by chunk position.
// AddReference/RemoveReference keep a per-position reference count. The
// two adapters in this package (MemoryRegionFile, BadgerRegionFile) only
// count references: they do not open or close any per-region file or
// handle on the first or last reference.
type RegionFile interface {
	SetWorld(name string) error
	WorldSizeChunks() int32
	AddReference(pos voxel.ChunkPosition)
	RemoveReference(pos voxel.ChunkPosition)
	ChunkData(pos voxel.ChunkPosition) ([]byte, error)
	WriteChunkData(pos voxel.ChunkPosition, data []byte) error
}

// TriangleMeshShape is the buffer description a Physics collaborator
// consumes to build a collision shape, matching the contiguous-buffer
// layout a native physics engine expects: 32-bit float positions at
// vertex_stride = 12 bytes, 32-bit index triples at index_stride = 12
// bytes.
type TriangleMeshShape struct {
	Vertices     []mgl32.Vec3
	Indices      []uint32
	TriangleCount int
}

// ColliderHandle is an opaque reference to a registered collision
// shape, owned by the Physics collaborator.
type ColliderHandle interface{}

// Physics is the collision backend collaborator. A chunk's collision
// shape is added, removed, or rebuilt in place by the foreground during
// swap drain only.
type Physics interface {
	AddCollider(shape TriangleMeshShape) ColliderHandle
	RemoveCollider(handle ColliderHandle)
	RebuildCollider(handle ColliderHandle, shape TriangleMeshShape)
	SetWorldTransform(handle ColliderHandle, pos mgl32.Vec3)
}

// RenderMode is an opaque renderer-defined draw mode selector (e.g.
// solid vs. wireframe); voxelstream passes it through unexamined.
type RenderMode int

// Renderer is the GPU-facing collaborator. A chunk publishes its front
// mesh through it once per frame it is visible.
type Renderer interface {
	SetModelTransform(pos mgl32.Vec3)
	Render(mesh *voxel.Mesh, mode RenderMode)
}

// Frustum answers visibility queries against the observer's current
// view volume.
type Frustum interface {
	IsUniformAABBVisible(center mgl32.Vec3, side float32) bool
}

// Observer is read-only access to the moving viewpoint driving the
// working set.
type Observer interface {
	Position() mgl32.Vec3
	Frustum() Frustum
}
