package downloader

import (
	"github.com/tanq16/godotfetch/internal/utils"
)

const (
	// DefaultConnectionCap bounds simultaneous connections regardless of CPU count.
	DefaultConnectionCap = 10
	DefaultMaxChunkSize  = 10 * 1024 * 1024
	// MaxBuckets is the most progress rows a single transfer is shown as.
	MaxBuckets = 10
)

// Metadata is what a Source reports before any body bytes are transferred.
type Metadata struct {
	Size      int64
	Rangeable bool
}

// Plan is the ordered, disjoint set of byte ranges a transfer is split into.
type Plan struct {
	Size      int64
	Ranged    bool
	ChunkSize int64
	Chunks    []utils.Chunk
}

// Bucket groups a contiguous run of chunks into one progress row.
type Bucket struct {
	ID    int
	First int
	Last  int
	Total int64
}

// Connections returns min(connectionCap, max(cpuCount/2, 2)).
func Connections(cpuCount, connectionCap int) int {
	if connectionCap <= 0 {
		connectionCap = DefaultConnectionCap
	}
	return min(connectionCap, max(cpuCount/2, 2))
}

// ChunkSize returns min(total/5, maxChunk), never less than one byte.
func ChunkSize(total, maxChunk int64) int64 {
	if maxChunk <= 0 {
		maxChunk = DefaultMaxChunkSize
	}
	return max(min(total/5, maxChunk), 1)
}

// PlanChunks splits a resource of the given size. Sources without range
// support, or of unknown size, are fetched as one chunk.
func PlanChunks(meta Metadata, maxChunk int64) Plan {
	if meta.Size <= 0 || !meta.Rangeable {
		return Plan{
			Size:      meta.Size,
			ChunkSize: max(meta.Size, 0),
			Chunks:    []utils.Chunk{{Index: 0, Start: 0, End: meta.Size - 1}},
		}
	}
	size := ChunkSize(meta.Size, maxChunk)
	plan := Plan{Size: meta.Size, Ranged: true, ChunkSize: size}
	for start := int64(0); start < meta.Size; start += size {
		plan.Chunks = append(plan.Chunks, utils.Chunk{
			Index: len(plan.Chunks),
			Start: start,
			End:   min(start+size, meta.Size) - 1,
		})
	}
	return plan
}

// Partition spreads chunkCount chunks over at most maxBuckets groups. The first
// chunkCount%maxBuckets groups get one extra chunk; with chunkCount <= maxBuckets
// every chunk is its own group.
func Partition(chunkCount, maxBuckets int) []int {
	if chunkCount <= 0 {
		return nil
	}
	if chunkCount <= maxBuckets {
		sizes := make([]int, chunkCount)
		for i := range sizes {
			sizes[i] = 1
		}
		return sizes
	}
	groupSize := chunkCount / maxBuckets
	rem := chunkCount % maxBuckets
	sizes := make([]int, maxBuckets)
	for i := range sizes {
		sizes[i] = groupSize
		if i < rem {
			sizes[i]++
		}
	}
	return sizes
}

// NewBuckets lays the balanced partition over the plan's chunks.
func NewBuckets(plan Plan) []Bucket {
	sizes := Partition(len(plan.Chunks), MaxBuckets)
	buckets := make([]Bucket, 0, len(sizes))
	k := 0
	for i, n := range sizes {
		b := Bucket{ID: i, First: k, Last: k + n - 1}
		for ; k <= b.Last; k++ {
			b.Total += plan.Chunks[k].Size()
		}
		buckets = append(buckets, b)
	}
	return buckets
}
