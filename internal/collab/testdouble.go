package collab

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"voxelstream/internal/voxel"
)

// NoopPhysics records collider lifecycle calls without touching any
// real physics engine. Used by tests and the CLI's run command, where
// no collision backend is wired.
type NoopPhysics struct {
	mu            sync.Mutex
	nextHandle    int
	added         map[int]TriangleMeshShape
	removed       []int
	rebuiltOnce   map[int]int
	lastTransform mgl32.Vec3
}

type noopHandle int

// NewNoopPhysics returns a ready-to-use NoopPhysics double.
func NewNoopPhysics() *NoopPhysics {
	return &NoopPhysics{
		added:       make(map[int]TriangleMeshShape),
		rebuiltOnce: make(map[int]int),
	}
}

func (p *NoopPhysics) AddCollider(shape TriangleMeshShape) ColliderHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextHandle++
	h := p.nextHandle
	p.added[h] = shape
	return noopHandle(h)
}

func (p *NoopPhysics) RemoveCollider(handle ColliderHandle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	h := int(handle.(noopHandle))
	delete(p.added, h)
	p.removed = append(p.removed, h)
}

func (p *NoopPhysics) RebuildCollider(handle ColliderHandle, shape TriangleMeshShape) {
	p.mu.Lock()
	defer p.mu.Unlock()
	h := int(handle.(noopHandle))
	p.added[h] = shape
	p.rebuiltOnce[h]++
}

func (p *NoopPhysics) SetWorldTransform(handle ColliderHandle, pos mgl32.Vec3) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastTransform = pos
}

// ActiveColliders reports how many colliders are currently registered.
func (p *NoopPhysics) ActiveColliders() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.added)
}

// LastTransform returns the most recently set collider world transform,
// for tests asserting a collider tracks its chunk's current position
// across a slot reload.
func (p *NoopPhysics) LastTransform() mgl32.Vec3 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastTransform
}

// NoopRenderer discards everything published to it; used where no GPU
// backend is wired.
type NoopRenderer struct {
	mu        sync.Mutex
	Transform mgl32.Vec3
	Renders   int
}

func NewNoopRenderer() *NoopRenderer { return &NoopRenderer{} }

func (r *NoopRenderer) SetModelTransform(pos mgl32.Vec3) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Transform = pos
}

func (r *NoopRenderer) Render(mesh *voxel.Mesh, mode RenderMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Renders++
}

// AlwaysVisibleFrustum treats every AABB as visible; used where no
// camera/frustum collaborator is wired.
type AlwaysVisibleFrustum struct{}

func (AlwaysVisibleFrustum) IsUniformAABBVisible(center mgl32.Vec3, side float32) bool {
	return true
}

// StaticObserver is a fixed-position Observer, used for tests and the
// CLI's headless run loop where nothing moves the camera.
type StaticObserver struct {
	Pos mgl32.Vec3
	F   Frustum
}

func (o StaticObserver) Position() mgl32.Vec3 { return o.Pos }
func (o StaticObserver) Frustum() Frustum {
	if o.F == nil {
		return AlwaysVisibleFrustum{}
	}
	return o.F
}
