// Package chunk implements the Chunk type: block storage, the greedy
// mesher, front/back mesh buffers, and collision reconciliation.
package chunk

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"voxelstream/internal/blockcodec"
	"voxelstream/internal/collab"
	"voxelstream/internal/voxel"
)

// Chunk owns a block field, a front/back mesh pair, and a collision
// handle. Only the foreground calls SwapMeshBuffer, Render, and
// Shutdown; RebuildMesh is pure with respect to blocks and may run on
// the worker.
type Chunk struct {
	blocks [voxel.ChunkVolume]voxel.BlockType

	meshFront *voxel.Mesh
	meshBack  *voxel.Mesh

	collisionHandle collab.ColliderHandle
	worldPos        mgl32.Vec3

	loaded bool
	empty  bool
}

// New returns a Chunk with empty front/back mesh buffers, not loaded.
func New() *Chunk {
	return &Chunk{
		meshFront: &voxel.Mesh{},
		meshBack:  &voxel.Mesh{},
		empty:     true,
	}
}

// Loaded reports whether the chunk has decoded block data resident.
func (c *Chunk) Loaded() bool { return c.loaded }

// Empty reports whether the current front mesh has zero indices.
func (c *Chunk) Empty() bool { return c.empty }

// FrontMesh returns the mesh currently exposed to the renderer.
func (c *Chunk) FrontMesh() *voxel.Mesh { return c.meshFront }

// Load decodes bytes into blocks and marks the chunk loaded. Requires
// the chunk not already be loaded; a double-load is a programmer error.
// The returned bool is true iff the chunk is entirely voxel.None, in
// which case the caller may skip meshing.
func (c *Chunk) Load(data []byte, worldPos mgl32.Vec3) (emptyHint bool, err error) {
	if c.loaded {
		panic("chunk: Load called on an already-loaded chunk")
	}
	blocks, empty, err := blockcodec.Decode(data)
	if err != nil {
		return false, fmt.Errorf("chunk: load: %w", err)
	}
	c.blocks = blocks
	c.worldPos = worldPos
	c.loaded = true
	return empty, nil
}

// Unload encodes blocks and clears the loaded flag. Requires the chunk
// be loaded; it does not touch the meshes.
func (c *Chunk) Unload() []byte {
	if !c.loaded {
		panic("chunk: Unload called on a chunk that is not loaded")
	}
	data := blockcodec.Encode(c.blocks)
	c.loaded = false
	return data
}

// GetBlock reads the block at a local position. Out-of-range
// coordinates are a programmer error; bounds against world-space
// coordinates are enforced one layer up, by the working-set manager.
func (c *Chunk) GetBlock(pos voxel.LocalPosition) voxel.BlockType {
	if !pos.InBounds() {
		panic(fmt.Sprintf("chunk: GetBlock out of range: %+v", pos))
	}
	return c.blocks[pos.Index()]
}

// SetBlock writes the block at a local position.
func (c *Chunk) SetBlock(pos voxel.LocalPosition, t voxel.BlockType) {
	if !pos.InBounds() {
		panic(fmt.Sprintf("chunk: SetBlock out of range: %+v", pos))
	}
	c.blocks[pos.Index()] = t
}

// DestroyBlock is SetBlock(pos, voxel.None).
func (c *Chunk) DestroyBlock(pos voxel.LocalPosition) {
	c.SetBlock(pos, voxel.None)
}

// RebuildMesh runs the greedy mesher over blocks and writes the result
// into mesh_back. It reads only blocks and writes only mesh_back, so it
// may run concurrently with foreground reads of the front mesh.
func (c *Chunk) RebuildMesh() {
	c.meshBack.Reset()
	buildGreedyMesh(&c.blocks, c.meshBack)
}

func meshShape(m *voxel.Mesh) collab.TriangleMeshShape {
	return collab.TriangleMeshShape{
		Vertices:      m.Positions,
		Indices:       m.Indices,
		TriangleCount: len(m.Indices) / 3,
	}
}

// SwapMeshBuffer promotes mesh_back to mesh_front, clears mesh_back,
// recomputes empty, and reconciles the collision collaborator: add on
// the empty->non-empty transition, remove on non-empty->empty, and an
// in-place rebuild whenever the chunk remains non-empty. Whenever a
// collider exists after the transition its world transform is pinned to
// worldPos, so a slot reused for a chunk at a different position never
// leaves a stale transform behind a freshly rebuilt shape. Foreground-only.
func (c *Chunk) SwapMeshBuffer(physics collab.Physics) {
	wasEmpty := c.empty

	c.meshFront, c.meshBack = c.meshBack, c.meshFront
	c.meshBack.Reset()
	c.empty = c.meshFront.IsEmpty()

	switch {
	case wasEmpty && !c.empty:
		c.collisionHandle = physics.AddCollider(meshShape(c.meshFront))
	case !wasEmpty && c.empty:
		physics.RemoveCollider(c.collisionHandle)
		c.collisionHandle = nil
	case !c.empty:
		physics.RebuildCollider(c.collisionHandle, meshShape(c.meshFront))
	}
	if !c.empty {
		physics.SetWorldTransform(c.collisionHandle, c.worldPos)
	}
}

// Render publishes the front mesh through the renderer collaborator.
func (c *Chunk) Render(renderer collab.Renderer, mode collab.RenderMode) {
	renderer.SetModelTransform(c.worldPos)
	renderer.Render(c.meshFront, mode)
}

// Shutdown removes any collision registration and drops the back mesh.
func (c *Chunk) Shutdown(physics collab.Physics) {
	if c.collisionHandle != nil {
		physics.RemoveCollider(c.collisionHandle)
		c.collisionHandle = nil
	}
	c.meshBack.Reset()
}

// SetWorldPos overwrites the chunk's cached world-space origin. Load
// sets the origin itself from its worldPos argument.
func (c *Chunk) SetWorldPos(pos mgl32.Vec3) {
	c.worldPos = pos
}

// WorldPos returns the chunk's cached world-space origin.
func (c *Chunk) WorldPos() mgl32.Vec3 {
	return c.worldPos
}

// Reset clears a chunk back to its just-constructed state, used when a
// slot is evicted and handed to a new occupant.
func (c *Chunk) Reset() {
	c.blocks = [voxel.ChunkVolume]voxel.BlockType{}
	c.meshFront.Reset()
	c.meshBack.Reset()
	c.collisionHandle = nil
	c.loaded = false
	c.empty = true
}
