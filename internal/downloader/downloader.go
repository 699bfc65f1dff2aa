// Package downloader fetches one remote resource over several concurrent
// connections, each owning a disjoint byte range of the destination file, and
// reports progress grouped into at most MaxBuckets display buckets.
//
// A transfer is one-shot: the first failing connection cancels the others and
// its error is returned. Nothing is retried.
package downloader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/godotfetch/internal/utils"
	"golang.org/x/sync/errgroup"
)

// Source is a remote resource that can be described and fetched by byte range.
type Source interface {
	URL() string
	Stat(ctx context.Context) (Metadata, error)
	// Fetch writes the bytes of chunk to w. When ranged is false the whole
	// resource is written.
	Fetch(ctx context.Context, chunk utils.Chunk, ranged bool, w io.Writer) error
}

type Config struct {
	// Connections overrides the CPU-derived concurrency when positive.
	Connections    int
	ConnectionCap  int
	CPUCount       int
	MaxChunkSize   int64
	ReportInterval time.Duration
	Reporter       Reporter
}

type Result struct {
	Path    string
	Size    int64
	Chunks  int
	Skipped bool
	Elapsed time.Duration
}

type Downloader struct {
	cfg Config
}

func New(cfg Config) *Downloader {
	if cfg.Reporter == nil {
		cfg.Reporter = NopReporter{}
	}
	if cfg.ReportInterval < MinReportInterval {
		cfg.ReportInterval = MinReportInterval
	}
	if cfg.MaxChunkSize <= 0 {
		cfg.MaxChunkSize = DefaultMaxChunkSize
	}
	return &Downloader{cfg: cfg}
}

// Concurrency is the number of connections a transfer may hold open at once.
func (d *Downloader) Concurrency() int {
	if d.cfg.Connections > 0 {
		return d.cfg.Connections
	}
	return Connections(d.cfg.CPUCount, d.cfg.ConnectionCap)
}

// Download fetches src into dest. An existing dest is treated as already
// downloaded and left untouched. Bytes are written to dest+".part" and renamed
// into place only when every chunk has completed.
func (d *Downloader) Download(ctx context.Context, src Source, dest string) (Result, error) {
	if info, err := os.Stat(dest); err == nil {
		log.Info().Str("op", "downloader").Str("path", dest).Msg("destination exists, skipping download")
		return Result{Path: dest, Size: info.Size(), Skipped: true}, nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return Result{}, fmt.Errorf("error creating download directory: %w", err)
	}

	meta, err := src.Stat(ctx)
	if err != nil {
		return Result{}, &utils.NetworkError{URL: src.URL(), Err: err}
	}
	plan := PlanChunks(meta, d.cfg.MaxChunkSize)
	buckets := NewBuckets(plan)
	log.Debug().Str("op", "downloader").Int64("size", plan.Size).Bool("ranged", plan.Ranged).
		Int("chunks", len(plan.Chunks)).Int("buckets", len(buckets)).Int("connections", d.Concurrency()).
		Msg("transfer planned")

	partPath := dest + ".part"
	out, err := os.OpenFile(partPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return Result{}, fmt.Errorf("error creating output file: %w", err)
	}
	if plan.Size > 0 {
		if err := out.Truncate(plan.Size); err != nil {
			out.Close()
			return Result{}, fmt.Errorf("error allocating output file: %w", err)
		}
	}

	start := time.Now()
	progress := newTracker(plan, buckets, start)
	d.cfg.Reporter.Start(plan, buckets)
	stop := make(chan bool, 1)
	samplerDone := make(chan struct{})
	go progress.run(d.cfg.ReportInterval, d.cfg.Reporter, stop, samplerDone)

	err = d.transfer(ctx, src, plan, out, progress)

	stop <- err == nil
	<-samplerDone
	closeErr := out.Close()
	d.cfg.Reporter.Finish(err)

	if err != nil {
		log.Error().Str("op", "downloader").Err(err).Msg("transfer failed")
		return Result{}, &utils.NetworkError{URL: src.URL(), Err: err}
	}
	if closeErr != nil {
		return Result{}, fmt.Errorf("error closing output file: %w", closeErr)
	}
	if err := os.Rename(partPath, dest); err != nil {
		return Result{}, fmt.Errorf("error renaming (finalizing) output file: %w", err)
	}

	res := Result{Path: dest, Size: plan.Size, Chunks: len(plan.Chunks), Elapsed: time.Since(start)}
	if res.Size <= 0 {
		res.Size = progress.counter(0).Load()
	}
	log.Info().Str("op", "downloader").Str("path", dest).Int64("size", res.Size).Dur("elapsed", res.Elapsed).Msg("download complete")
	return res, nil
}

func (d *Downloader) transfer(ctx context.Context, src Source, plan Plan, out *os.File, progress *tracker) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.Concurrency())
	for _, chunk := range plan.Chunks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			w := &countingWriter{w: io.NewOffsetWriter(out, chunk.Start), n: progress.counter(chunk.Index)}
			if err := src.Fetch(gctx, chunk, plan.Ranged, w); err != nil {
				return fmt.Errorf("chunk %d: %w", chunk.Index, err)
			}
			if want := chunk.Size(); want > 0 && w.n.Load() != want {
				return fmt.Errorf("chunk %d: size mismatch: expected %d bytes, got %d", chunk.Index, want, w.n.Load())
			}
			return nil
		})
	}
	// errgroup keeps only the first error; siblings cancelled by it are dropped
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

type countingWriter struct {
	w io.Writer
	n *atomic.Int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n.Add(int64(n))
	return n, err
}
