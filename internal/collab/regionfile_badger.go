package collab

import (
	"encoding/binary"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"

	"voxelstream/internal/voxel"
)

// BadgerRegionFile is a RegionFile backed by an embedded badger store,
// one key per ChunkPosition, patterned on dittofs's badger metadata
// store: plain Update/View transactions, no business logic beyond
// encode/decode, a sentinel-error check for missing keys.
type BadgerRegionFile struct {
	db        *badger.DB
	worldSize int32

	mu         sync.Mutex
	world      string
	references map[voxel.ChunkPosition]int
}

// OpenBadgerRegionFile opens (creating if needed) a badger store at dir.
func OpenBadgerRegionFile(dir string, worldSizeChunks int32) (*BadgerRegionFile, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("collab: open badger region store: %w", err)
	}
	return &BadgerRegionFile{
		db:         db,
		worldSize:  worldSizeChunks,
		references: make(map[voxel.ChunkPosition]int),
	}, nil
}

// Close releases the underlying badger database.
func (b *BadgerRegionFile) Close() error {
	return b.db.Close()
}

func chunkKey(pos voxel.ChunkPosition) []byte {
	key := make([]byte, 2+12)
	copy(key, "c:")
	binary.BigEndian.PutUint32(key[2:], uint32(pos.X))
	binary.BigEndian.PutUint32(key[6:], uint32(pos.Y))
	binary.BigEndian.PutUint32(key[10:], uint32(pos.Z))
	return key
}

func (b *BadgerRegionFile) SetWorld(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.world = name
	return nil
}

func (b *BadgerRegionFile) WorldSizeChunks() int32 {
	return b.worldSize
}

func (b *BadgerRegionFile) AddReference(pos voxel.ChunkPosition) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.references[pos]++
}

func (b *BadgerRegionFile) RemoveReference(pos voxel.ChunkPosition) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.references[pos]--
	if b.references[pos] <= 0 {
		delete(b.references, pos)
	}
}

func (b *BadgerRegionFile) ChunkData(pos voxel.ChunkPosition) ([]byte, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(chunkKey(pos))
		if err == badger.ErrKeyNotFound {
			return fmt.Errorf("collab: no chunk data for %v", pos)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (b *BadgerRegionFile) WriteChunkData(pos voxel.ChunkPosition, data []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(chunkKey(pos), data)
	})
}
