package collab

import (
	"fmt"
	"sync"

	"voxelstream/internal/voxel"
)

// MemoryRegionFile is an in-process RegionFile backed by a map, used in
// tests and by the CLI's inspect/run commands where no on-disk world is
// needed.
type MemoryRegionFile struct {
	mu         sync.Mutex
	world      string
	worldSize  int32
	data       map[voxel.ChunkPosition][]byte
	references map[voxel.ChunkPosition]int
}

// NewMemoryRegionFile returns an empty region file with the given
// world size in chunks.
func NewMemoryRegionFile(worldSizeChunks int32) *MemoryRegionFile {
	return &MemoryRegionFile{
		worldSize:  worldSizeChunks,
		data:       make(map[voxel.ChunkPosition][]byte),
		references: make(map[voxel.ChunkPosition]int),
	}
}

func (m *MemoryRegionFile) SetWorld(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.world = name
	return nil
}

func (m *MemoryRegionFile) WorldSizeChunks() int32 {
	return m.worldSize
}

func (m *MemoryRegionFile) AddReference(pos voxel.ChunkPosition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.references[pos]++
}

func (m *MemoryRegionFile) RemoveReference(pos voxel.ChunkPosition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.references[pos]--
	if m.references[pos] <= 0 {
		delete(m.references, pos)
	}
}

func (m *MemoryRegionFile) ChunkData(pos voxel.ChunkPosition) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[pos]
	if !ok {
		return nil, fmt.Errorf("collab: no chunk data for %v", pos)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (m *MemoryRegionFile) WriteChunkData(pos voxel.ChunkPosition, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.data[pos] = cp
	return nil
}

// HasChunkData reports whether a position has ever been written,
// useful for test assertions.
func (m *MemoryRegionFile) HasChunkData(pos voxel.ChunkPosition) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[pos]
	return ok
}
