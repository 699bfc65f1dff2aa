package downloader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnections(t *testing.T) {
	tests := []struct {
		cpus, limit, want int
	}{
		{cpus: 1, limit: 10, want: 2},
		{cpus: 4, limit: 10, want: 2},
		{cpus: 8, limit: 10, want: 4},
		{cpus: 64, limit: 10, want: 10},
		{cpus: 64, limit: 0, want: DefaultConnectionCap},
		{cpus: 16, limit: 3, want: 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Connections(tt.cpus, tt.limit), "cpus=%d cap=%d", tt.cpus, tt.limit)
	}
}

func TestChunkSize(t *testing.T) {
	assert.Equal(t, int64(20), ChunkSize(100, DefaultMaxChunkSize))
	assert.Equal(t, int64(DefaultMaxChunkSize), ChunkSize(200*1024*1024, DefaultMaxChunkSize))
	assert.Equal(t, int64(1), ChunkSize(3, DefaultMaxChunkSize))
	assert.Equal(t, int64(DefaultMaxChunkSize), ChunkSize(100*1024*1024, 0))
}

func TestPlanChunks(t *testing.T) {
	plan := PlanChunks(Metadata{Size: 103, Rangeable: true}, DefaultMaxChunkSize)
	assert.True(t, plan.Ranged)
	assert.Equal(t, int64(20), plan.ChunkSize)
	assert.Len(t, plan.Chunks, 6)

	var covered int64
	for i, c := range plan.Chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, covered, c.Start, "chunks must be contiguous")
		covered += c.Size()
	}
	assert.Equal(t, int64(103), covered)
	assert.Equal(t, int64(3), plan.Chunks[5].Size())
}

func TestPlanChunksUnranged(t *testing.T) {
	plan := PlanChunks(Metadata{Size: 500, Rangeable: false}, DefaultMaxChunkSize)
	assert.False(t, plan.Ranged)
	assert.Len(t, plan.Chunks, 1)
	assert.Equal(t, int64(500), plan.Chunks[0].Size())

	unknown := PlanChunks(Metadata{Size: 0, Rangeable: true}, DefaultMaxChunkSize)
	assert.False(t, unknown.Ranged)
	assert.Len(t, unknown.Chunks, 1)
	assert.Equal(t, int64(0), unknown.Chunks[0].Size())
}

func TestPartition(t *testing.T) {
	assert.Equal(t, []int{3, 3, 3, 2, 2, 2, 2, 2, 2, 2}, Partition(23, 10))
	assert.Equal(t, []int{1, 1, 1, 1, 1, 1}, Partition(6, 10))
	assert.Equal(t, []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}, Partition(10, 10))
	assert.Equal(t, []int{2, 1, 1, 1, 1, 1, 1, 1, 1, 1}, Partition(11, 10))
	assert.Nil(t, Partition(0, 10))

	for n := 1; n <= 250; n++ {
		sizes := Partition(n, MaxBuckets)
		assert.LessOrEqual(t, len(sizes), MaxBuckets)
		sum := 0
		for _, s := range sizes {
			sum += s
		}
		assert.Equal(t, n, sum)
	}
}

func TestNewBuckets(t *testing.T) {
	plan := PlanChunks(Metadata{Size: 230, Rangeable: true}, 10)
	assert.Len(t, plan.Chunks, 23)

	buckets := NewBuckets(plan)
	assert.Len(t, buckets, 10)
	assert.Equal(t, Bucket{ID: 0, First: 0, Last: 2, Total: 30}, buckets[0])
	assert.Equal(t, Bucket{ID: 3, First: 9, Last: 10, Total: 20}, buckets[3])
	assert.Equal(t, Bucket{ID: 9, First: 21, Last: 22, Total: 20}, buckets[9])

	var total int64
	for _, b := range buckets {
		total += b.Total
	}
	assert.Equal(t, plan.Size, total)
}
