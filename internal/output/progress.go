package output

import (
	"fmt"

	"github.com/tanq16/godotfetch/internal/downloader"
	"github.com/tanq16/godotfetch/internal/utils"
)

// ProgressReporter shows a transfer as one stream line per display bucket plus
// a TOTAL line, under the stage it was created for.
type ProgressReporter struct {
	m  *Manager
	id int
}

func (m *Manager) ProgressReporter(id int) *ProgressReporter {
	return &ProgressReporter{m: m, id: id}
}

func (r *ProgressReporter) Start(plan downloader.Plan, buckets []downloader.Bucket) {
	size := "unknown size"
	if plan.Size > 0 {
		size = utils.FormatBytes(uint64(plan.Size))
	}
	r.m.SetMessage(r.id, fmt.Sprintf("Downloading %s in %d chunks", size, len(plan.Chunks)))
}

func (r *ProgressReporter) Update(sample downloader.Sample) {
	r.m.SetStreamLines(r.id, FormatSample(sample))
}

func (r *ProgressReporter) Finish(err error) {
	if err == nil {
		r.m.SetStreamLines(r.id, nil)
	}
}

// FormatSample renders one progress line per bucket followed by the aggregate.
func FormatSample(sample downloader.Sample) []string {
	lines := make([]string, 0, len(sample.Buckets)+1)
	for _, b := range sample.Buckets {
		lines = append(lines, formatBucket(BucketLabel(b), b, ""))
	}
	eta := fmt.Sprintf(" %s ETA %s", StyleSymbols["bullet"], utils.FormatETA(sample.ETA))
	return append(lines, formatBucket("TOTAL", sample.Total, eta))
}

func BucketLabel(b downloader.BucketSample) string {
	if b.First == b.Last {
		return fmt.Sprintf("Chunk #%d", b.First)
	}
	return fmt.Sprintf("Chunk #%d-%d", b.First, b.Last)
}

func formatBucket(label string, b downloader.BucketSample, suffix string) string {
	bar := ""
	if b.Total > 0 {
		bar = PrintProgressBar(b.Downloaded, b.Total, 30)
	}
	return fmt.Sprintf("%-13s %s%s %s %s%s", label, bar,
		utils.FormatBytes(uint64(max(b.Downloaded, 0))), StyleSymbols["bullet"], utils.FormatRate(b.Speed), suffix)
}
