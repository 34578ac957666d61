package workingset

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"voxelstream/internal/voxel"
)

// slotIndex maps a chunk position to its working-set slot via xxhash,
// grounded on BeHierarchic's fileid package hashing a fixed-width key
// into a bucket index. Collisions across positions are expected and are
// resolved by eviction, not by probing.
func slotIndex(pos voxel.ChunkPosition, poolSize int) int {
	var key [12]byte
	binary.LittleEndian.PutUint32(key[0:4], uint32(pos.X))
	binary.LittleEndian.PutUint32(key[4:8], uint32(pos.Y))
	binary.LittleEndian.PutUint32(key[8:12], uint32(pos.Z))
	h := xxhash.Sum64(key[:])
	return int(h % uint64(poolSize))
}
