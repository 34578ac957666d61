package blockcodec

import (
	"errors"
	"testing"

	"voxelstream/internal/voxel"
)

func sumRuns(stream []byte) int {
	sum := 0
	for i := 0; i+1 < len(stream); i += 2 {
		sum += int(stream[i+1])
	}
	return sum
}

func TestEncodeSolidChunk(t *testing.T) {
	var blocks [voxel.ChunkVolume]voxel.BlockType
	for i := range blocks {
		blocks[i] = 7
	}
	stream := Encode(blocks)

	wantPairs := voxel.ChunkVolume/255 + 1 // 128 full runs + 1 partial
	if got := len(stream) / 2; got != wantPairs {
		t.Fatalf("got %d pairs, want %d", got, wantPairs)
	}
	for i := 0; i+1 < len(stream)-2; i += 2 {
		if stream[i] != 7 || stream[i+1] != 255 {
			t.Fatalf("pair %d = (%d,%d), want (7,255)", i/2, stream[i], stream[i+1])
		}
	}
	last := len(stream) - 2
	if stream[last] != 7 || stream[last+1] != byte(voxel.ChunkVolume%255) {
		t.Fatalf("final pair = (%d,%d), want (7,%d)", stream[last], stream[last+1], voxel.ChunkVolume%255)
	}
	if sumRuns(stream) != voxel.ChunkVolume {
		t.Fatalf("sum of runs = %d, want %d", sumRuns(stream), voxel.ChunkVolume)
	}
}

func TestEncodeAlternating(t *testing.T) {
	var blocks [voxel.ChunkVolume]voxel.BlockType
	blocks[(voxel.LocalPosition{X: 0, Y: 0, Z: 0}).Index()] = 1
	stream := Encode(blocks)
	if sumRuns(stream) != voxel.ChunkVolume {
		t.Fatalf("sum of runs = %d, want %d", sumRuns(stream), voxel.ChunkVolume)
	}
	decoded, empty, err := Decode(stream)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if empty {
		t.Fatalf("expected non-empty")
	}
	if decoded != blocks {
		t.Fatalf("round trip mismatch")
	}
}

func TestRoundTripRandomish(t *testing.T) {
	var blocks [voxel.ChunkVolume]voxel.BlockType
	for i := range blocks {
		blocks[i] = voxel.BlockType((i * 37) % 5)
	}
	stream := Encode(blocks)
	if sumRuns(stream) != voxel.ChunkVolume {
		t.Fatalf("sum of runs = %d, want %d", sumRuns(stream), voxel.ChunkVolume)
	}
	decoded, empty, err := Decode(stream)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if empty {
		t.Fatalf("expected non-empty")
	}
	if decoded != blocks {
		t.Fatalf("round trip mismatch")
	}
}

func TestDecodeAllNoneIsEmpty(t *testing.T) {
	var blocks [voxel.ChunkVolume]voxel.BlockType
	stream := Encode(blocks)
	_, empty, err := Decode(stream)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !empty {
		t.Fatalf("expected empty for all-None chunk")
	}
}

func TestDecodeZeroRun(t *testing.T) {
	stream := []byte{1, 0}
	_, _, err := Decode(stream)
	if !errors.Is(err, ErrZeroRun) {
		t.Fatalf("got %v, want ErrZeroRun", err)
	}
}

func TestDecodeTruncated(t *testing.T) {
	stream := []byte{1, 255, 1, 255}
	_, _, err := Decode(stream)
	if !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("got %v, want ErrInvalidLength", err)
	}
}

func TestDecodeExcessBytes(t *testing.T) {
	var blocks [voxel.ChunkVolume]voxel.BlockType
	stream := Encode(blocks)
	stream = append(stream, 1, 1)
	_, _, err := Decode(stream)
	if !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("got %v, want ErrInvalidLength", err)
	}
}

func BenchmarkEncode(b *testing.B) {
	var blocks [voxel.ChunkVolume]voxel.BlockType
	for i := range blocks {
		blocks[i] = voxel.BlockType((i * 37) % 5)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Encode(blocks)
	}
}

func BenchmarkDecode(b *testing.B) {
	var blocks [voxel.ChunkVolume]voxel.BlockType
	for i := range blocks {
		blocks[i] = voxel.BlockType((i * 37) % 5)
	}
	stream := Encode(blocks)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = Decode(stream)
	}
}
