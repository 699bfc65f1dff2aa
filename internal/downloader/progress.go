package downloader

import (
	"sync/atomic"
	"time"
)

// MinReportInterval is the tightest cadence samples are delivered at.
const MinReportInterval = 300 * time.Millisecond

type BucketSample struct {
	ID         int
	First      int
	Last       int
	Downloaded int64
	Total      int64
	Speed      float64 // bytes per second since the previous sample
}

// Sample is one snapshot of a transfer: one entry per display bucket plus the
// aggregate across every chunk.
type Sample struct {
	Buckets []BucketSample
	Total   BucketSample
	ETA     time.Duration
	Elapsed time.Duration
}

// Reporter consumes progress for a single transfer. Start and Finish are called
// from the downloading goroutine, Update from the sampler; calls never overlap.
type Reporter interface {
	Start(plan Plan, buckets []Bucket)
	Update(sample Sample)
	Finish(err error)
}

type NopReporter struct{}

func (NopReporter) Start(Plan, []Bucket) {}
func (NopReporter) Update(Sample)        {}
func (NopReporter) Finish(error)         {}

// tracker owns the progress state of one transfer. Every chunk goroutine writes
// only its own counter; prev and lastSample belong to the sampler goroutine.
type tracker struct {
	plan       Plan
	buckets    []Bucket
	written    []atomic.Int64
	prev       []int64
	start      time.Time
	lastSample time.Time
}

func newTracker(plan Plan, buckets []Bucket, now time.Time) *tracker {
	return &tracker{
		plan:       plan,
		buckets:    buckets,
		written:    make([]atomic.Int64, len(plan.Chunks)),
		prev:       make([]int64, len(plan.Chunks)),
		start:      now,
		lastSample: now,
	}
}

func (t *tracker) counter(chunk int) *atomic.Int64 {
	return &t.written[chunk]
}

func (t *tracker) sample(now time.Time) Sample {
	elapsed := now.Sub(t.lastSample).Seconds()
	t.lastSample = now

	bytes := make([]int64, len(t.written))
	speeds := make([]float64, len(t.written))
	for i := range t.written {
		bytes[i] = t.written[i].Load()
		if elapsed > 0 {
			speeds[i] = float64(bytes[i]-t.prev[i]) / elapsed
		}
		t.prev[i] = bytes[i]
	}

	s := Sample{
		Buckets: make([]BucketSample, len(t.buckets)),
		Elapsed: now.Sub(t.start),
		Total: BucketSample{
			ID:    -1,
			First: 0,
			Last:  len(t.written) - 1,
			Total: t.plan.Size,
		},
	}
	for i, b := range t.buckets {
		bs := BucketSample{ID: b.ID, First: b.First, Last: b.Last, Total: b.Total}
		for k := b.First; k <= b.Last; k++ {
			bs.Downloaded += bytes[k]
			bs.Speed += speeds[k]
		}
		s.Buckets[i] = bs
		s.Total.Downloaded += bs.Downloaded
		s.Total.Speed += bs.Speed
	}

	if remaining := s.Total.Total - s.Total.Downloaded; remaining > 0 && s.Total.Downloaded > 0 && s.Elapsed > 0 {
		avg := float64(s.Total.Downloaded) / s.Elapsed.Seconds()
		s.ETA = time.Duration(float64(remaining) / avg * float64(time.Second))
	}
	return s
}

// run delivers a sample every interval until stop receives the outcome of the
// transfer, sends one final sample if it succeeded, and closes done.
func (t *tracker) run(interval time.Duration, reporter Reporter, stop <-chan bool, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			reporter.Update(t.sample(now))
		case succeeded := <-stop:
			// a failed transfer gets no further samples
			if succeeded {
				reporter.Update(t.sample(time.Now()))
			}
			return
		}
	}
}
