// Package workingset implements the fixed-capacity chunk working set:
// slot assignment by position hash, the three coordination queues, a
// single background worker, and the visibility sweep that drives which
// chunks are resident around a moving observer.
package workingset

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"voxelstream/internal/chunk"
	"voxelstream/internal/collab"
	"voxelstream/internal/config"
	"voxelstream/internal/logger"
	"voxelstream/internal/metrics"
	"voxelstream/internal/pool"
	"voxelstream/internal/voxel"
)

// Manager owns the working set's slots and coordinates the foreground
// (Update/Render/SetBlock/...) with the single background worker that
// drains load_queue and rebuild_set. Exactly two goroutines ever touch
// a Manager: the caller's and the worker's.
type Manager struct {
	cfg *config.Config

	region   collab.RegionFile
	physics  collab.Physics
	renderer collab.Renderer
	observer collab.Observer
	metrics  *metrics.WorkingSet

	poolSize     int
	viewDistance int32

	slots         *pool.Arena[*chunk.Chunk]
	slotPositions []voxel.ChunkPosition
	// swapMu guards slotPositions writes and the swap-drain critical
	// section; it is the only lock that ever wraps a call into chunk
	// or physics code, which swap_mesh_buffer keeps cheap by design.
	swapMu sync.Mutex

	loadQueue  posQueue
	rebuildSet *slotSet
	swapQueue  posQueue

	refreshing   atomic.Bool
	mustShutdown atomic.Bool
	started      bool
	workerWG     sync.WaitGroup

	renderList []int

	haveLastObserverChunk bool
	lastObserverChunk     voxel.ChunkPosition
}

// New allocates a Manager sized for cfg.WorkingSet.ViewDistance. It does
// not start the worker or bind a world; call LoadWorld for that.
func New(cfg *config.Config, region collab.RegionFile, physics collab.Physics, renderer collab.Renderer, observer collab.Observer, m *metrics.WorkingSet) *Manager {
	mgr := &Manager{
		cfg:          cfg,
		region:       region,
		physics:      physics,
		renderer:     renderer,
		observer:     observer,
		metrics:      m,
		viewDistance: int32(cfg.WorkingSet.ViewDistance),
		poolSize:     cfg.PoolSize(),
		rebuildSet:   newSlotSet(),
	}
	mgr.allocateSlots()
	return mgr
}

// allocateSlots backs the working set with a pool.Arena sized to
// poolSize: every slot's Chunk is pre-allocated here and never
// reallocated for the arena's lifetime, since a slot changes occupant
// identity in place (Unload/Load) rather than by checkout/checkin.
func (m *Manager) allocateSlots() {
	m.slots = pool.New(m.poolSize, chunk.New)
	m.slotPositions = make([]voxel.ChunkPosition, m.poolSize)
	for i := range m.slotPositions {
		m.slotPositions[i] = voxel.Sentinel
	}
}

// slotAt returns the Chunk occupying slot idx, addressed directly by
// hash index rather than by arena acquire/release order.
func (m *Manager) slotAt(idx int) *chunk.Chunk {
	return *m.slots.At(idx)
}

// LoadWorld binds a persistent world and starts the worker. If a world
// is already loaded it is shut down (persisting everything resident)
// first, matching a fresh bind rather than a merge of two worlds.
func (m *Manager) LoadWorld(name string) error {
	m.Shutdown()

	for i := range m.slotPositions {
		m.slotPositions[i] = voxel.Sentinel
	}
	m.loadQueue.Clear()
	m.rebuildSet.Clear()
	m.swapQueue.Clear()

	if err := m.region.SetWorld(name); err != nil {
		return err
	}
	m.startWorker()
	return nil
}

// SetViewDistance stops the worker, persists every resident chunk,
// reallocates the slot pool for the new distance, refreshes the visible
// list around the observer chunk recorded by the last Update (if any),
// and restarts the worker.
func (m *Manager) SetViewDistance(d int32) {
	m.Shutdown()

	m.viewDistance = d
	m.poolSize = (2*int(d) + 1) * (int(d) + 1) * (2*int(d) + 1)
	m.allocateSlots()
	m.loadQueue.Clear()
	m.rebuildSet.Clear()
	m.swapQueue.Clear()

	if m.haveLastObserverChunk {
		m.refreshVisibleList(m.lastObserverChunk)
	}
	m.startWorker()
}

func (m *Manager) startWorker() {
	m.mustShutdown.Store(false)
	m.started = true
	m.workerWG.Add(1)
	go m.workerLoop()
}

// Shutdown stops the worker, drains the swap queue, persists every
// resident chunk, and clears the three queues. Safe to call when no
// worker is running.
func (m *Manager) Shutdown() {
	if !m.started {
		return
	}
	m.mustShutdown.Store(true)
	m.workerWG.Wait()
	m.started = false

	// Final drain: promote every pending swap, not just one frame's worth,
	// so persistAllResident writes each loaded chunk under its own position.
	entries := m.swapQueue.PopAll()
	m.swapMu.Lock()
	for _, pos := range entries {
		idx := slotIndex(pos, m.poolSize)
		m.slotAt(idx).SwapMeshBuffer(m.physics)
		m.slotPositions[idx] = pos
	}
	m.swapMu.Unlock()
	m.persistAllResident()

	m.loadQueue.Clear()
	m.rebuildSet.Clear()
	m.swapQueue.Clear()
}

func (m *Manager) persistAllResident() {
	for i := 0; i < m.slots.Cap(); i++ {
		c := m.slotAt(i)
		if !c.Loaded() {
			continue
		}
		pos := m.slotPositions[i]
		data := c.Unload()
		if err := m.region.WriteChunkData(pos, data); err != nil {
			logger.Error("workingset: persist on shutdown failed", "pos", pos, "err", err)
		}
		m.region.RemoveReference(pos)
		c.Shutdown(m.physics)
		m.metrics.ObserveChunkEvicted()
	}
}

// Update runs one foreground tick: refresh the visible list if the
// observer crossed into a new chunk, then drain the swap queue.
func (m *Manager) Update() {
	chunkPos := worldToChunkPos(m.observer.Position())
	if !m.haveLastObserverChunk || chunkPos != m.lastObserverChunk {
		m.haveLastObserverChunk = true
		m.lastObserverChunk = chunkPos
		m.refreshVisibleList(chunkPos)
	}
	m.drainSwapQueue()
	m.reportQueueDepths()
}

func worldToChunkPos(p mgl32.Vec3) voxel.ChunkPosition {
	return voxel.ChunkPosition{
		X: int32(math.Floor(float64(p[0]) / voxel.ChunkSize)),
		Y: int32(math.Floor(float64(p[1]) / voxel.ChunkSize)),
		Z: int32(math.Floor(float64(p[2]) / voxel.ChunkSize)),
	}
}

// refreshVisibleList clears and repopulates load_queue with every
// position in the view volume not already resident at its hashed slot,
// in priority order: the observer's own y-plane first, then alternating
// y-v/y+v planes outward. Sets the refreshing flag for the duration so
// the worker does not consume a half-repopulated queue.
func (m *Manager) refreshVisibleList(observerChunk voxel.ChunkPosition) {
	m.refreshing.Store(true)
	defer m.refreshing.Store(false)

	m.loadQueue.Clear()

	d := m.viewDistance
	worldSize := m.region.WorldSizeChunks()
	baseX := observerChunk.X - d
	baseZ := observerChunk.Z - d

	enqueuePlane := func(y int32) {
		if y < 0 || y >= worldSize {
			return
		}
		for dx := int32(0); dx <= 2*d; dx++ {
			x := baseX + dx
			if x < 0 || x >= worldSize {
				continue
			}
			for dz := int32(0); dz <= 2*d; dz++ {
				z := baseZ + dz
				if z < 0 || z >= worldSize {
					continue
				}
				pos := voxel.ChunkPosition{X: x, Y: y, Z: z}
				idx := slotIndex(pos, m.poolSize)
				if m.slotPositions[idx] != pos {
					m.loadQueue.Push(pos)
				}
			}
		}
	}

	enqueuePlane(observerChunk.Y)
	for v := int32(1); v <= d/2; v++ {
		enqueuePlane(observerChunk.Y - v)
		enqueuePlane(observerChunk.Y + v)
	}

	m.metrics.ObserveVisibilitySweep()
}

// workerLoop is the single background spin loop: drain one rebuild
// entry, then up to ChunksToLoadPerFrame load entries (skipped entirely
// while a visibility sweep is refreshing the queue), until told to stop.
func (m *Manager) workerLoop() {
	defer m.workerWG.Done()
	for !m.mustShutdown.Load() {
		m.drainOneRebuild()
		if !m.refreshing.Load() {
			m.drainLoadQueue()
		}
	}
}

func (m *Manager) drainOneRebuild() {
	idx, ok := m.rebuildSet.PopFront()
	if !ok {
		return
	}
	pos := m.slotPositions[idx]
	if pos.IsSentinel() {
		return
	}
	c := m.slotAt(idx)

	start := time.Now()
	c.RebuildMesh()
	m.metrics.ObserveMeshRebuild(time.Since(start))

	m.swapQueue.RemoveValue(pos)
	m.swapQueue.Push(pos)
}

func (m *Manager) drainLoadQueue() {
	for i := 0; i < m.cfg.WorkingSet.ChunksToLoadPerFrame; i++ {
		if m.refreshing.Load() {
			return
		}
		pos, ok := m.loadQueue.PopFront()
		if !ok {
			return
		}
		m.loadOne(pos)
	}
}

// loadOne evicts the slot's current occupant (if any, persisting it
// first) and loads pos's data into the same Chunk in place. It never
// writes slotPositions on success: that commit happens only when the
// matching swap drains, per the working set's single-writer invariant.
// On a collaborator error the slot is marked sentinel so the next sweep
// retries it.
func (m *Manager) loadOne(pos voxel.ChunkPosition) {
	idx := slotIndex(pos, m.poolSize)
	c := m.slotAt(idx)
	old := m.slotPositions[idx]

	if !old.IsSentinel() && old != pos && c.Loaded() {
		data := c.Unload()
		if err := m.region.WriteChunkData(old, data); err != nil {
			logger.Error("workingset: evict persist failed", "pos", old, "err", err)
		}
		m.region.RemoveReference(old)
		c.Shutdown(m.physics)
		c.Reset()
		m.metrics.ObserveChunkEvicted()
	}

	m.region.AddReference(pos)
	data, err := m.region.ChunkData(pos)
	if err != nil {
		logger.Error("workingset: read chunk data failed", "pos", pos, "err", err)
		m.markSentinel(idx)
		return
	}

	emptyHint, err := c.Load(data, pos.WorldOrigin())
	if err != nil {
		logger.Error("workingset: decode chunk failed", "pos", pos, "err", err)
		m.markSentinel(idx)
		return
	}
	if !emptyHint {
		c.RebuildMesh()
	}
	m.metrics.ObserveChunkLoaded()

	m.swapQueue.RemoveValue(pos)
	m.swapQueue.Push(pos)
}

func (m *Manager) markSentinel(idx int) {
	m.swapMu.Lock()
	m.slotPositions[idx] = voxel.Sentinel
	m.swapMu.Unlock()
}

// drainSwapQueue promotes every queued chunk's back mesh to front and
// commits its slot position, up to MeshSwapsPerFrame entries. Foreground
// only; called from Update (Shutdown drains the whole queue itself).
func (m *Manager) drainSwapQueue() {
	entries := m.swapQueue.PopUpTo(m.cfg.WorkingSet.MeshSwapsPerFrame)
	if len(entries) == 0 {
		return
	}
	m.swapMu.Lock()
	defer m.swapMu.Unlock()
	for _, pos := range entries {
		idx := slotIndex(pos, m.poolSize)
		m.slotAt(idx).SwapMeshBuffer(m.physics)
		m.slotPositions[idx] = pos
	}
}

func (m *Manager) reportQueueDepths() {
	m.metrics.SetLoadQueueDepth(m.loadQueue.Len())
	m.metrics.SetRebuildSetDepth(m.rebuildSet.Len())
	m.metrics.SetSwapQueueDepth(m.swapQueue.Len())
}

// Render rebuilds the frustum-culled render list and publishes every
// resident, non-empty, visible slot through the renderer.
func (m *Manager) Render(mode collab.RenderMode) {
	m.updateRenderList()
	for _, idx := range m.renderList {
		m.slotAt(idx).Render(m.renderer, mode)
	}
}

func (m *Manager) updateRenderList() {
	m.renderList = m.renderList[:0]
	frustum := m.observer.Frustum()
	for i := 0; i < m.slots.Cap(); i++ {
		c := m.slotAt(i)
		if c.Empty() {
			continue
		}
		pos := m.slotPositions[i]
		if pos.IsSentinel() {
			continue
		}
		center := pos.WorldOrigin().Add(mgl32.Vec3{voxel.ChunkSize / 2, voxel.ChunkSize / 2, voxel.ChunkSize / 2})
		if frustum.IsUniformAABBVisible(center, voxel.ChunkSize) {
			m.renderList = append(m.renderList, i)
		}
	}
}

func (m *Manager) chunkInBounds(pos voxel.ChunkPosition) bool {
	n := m.region.WorldSizeChunks()
	return pos.X >= 0 && pos.X < n && pos.Y >= 0 && pos.Y < n && pos.Z >= 0 && pos.Z < n
}

// GetBlock reads a world-space block. Out-of-world-bounds coordinates
// and positions whose slot is not currently resident for that chunk
// both read as voxel.None rather than panicking: mutation and reads
// only ever target chunks the working set actually holds.
func (m *Manager) GetBlock(wp voxel.WorldPosition) voxel.BlockType {
	cp, local := wp.Split()
	if !m.chunkInBounds(cp) {
		return voxel.None
	}
	idx := slotIndex(cp, m.poolSize)
	c := m.slotAt(idx)
	if m.slotPositions[idx] != cp || !c.Loaded() {
		return voxel.None
	}
	return c.GetBlock(local)
}

// SetBlock writes a world-space block and enqueues its chunk's slot for
// a mesh rebuild if the chunk is currently resident; otherwise it is a
// silent no-op, matching the bounds-violation convention for writes.
func (m *Manager) SetBlock(wp voxel.WorldPosition, t voxel.BlockType) {
	m.mutate(wp, t)
}

// DestroyBlock is SetBlock(wp, voxel.None).
func (m *Manager) DestroyBlock(wp voxel.WorldPosition) {
	m.mutate(wp, voxel.None)
}

func (m *Manager) mutate(wp voxel.WorldPosition, t voxel.BlockType) {
	cp, local := wp.Split()
	if !m.chunkInBounds(cp) {
		return
	}
	idx := slotIndex(cp, m.poolSize)
	c := m.slotAt(idx)
	if m.slotPositions[idx] != cp || !c.Loaded() {
		return
	}
	c.SetBlock(local, t)
	m.rebuildSet.Add(idx)
}
