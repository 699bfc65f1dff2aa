package utils

import (
	"time"
)

type HTTPClientConfig struct {
	Timeout        time.Duration
	KATimeout      time.Duration
	ProxyURL       string
	ProxyUsername  string
	ProxyPassword  string
	UserAgent      string
	Headers        map[string]string
	HighThreadMode bool // advanced socket options for high concurrency
}

// Chunk is a contiguous, inclusive byte range of the remote archive.
type Chunk struct {
	Index int
	Start int64
	End   int64
}

func (c Chunk) Size() int64 {
	return c.End - c.Start + 1
}

// Job describes one acquisition run as it moves through the pipeline stages.
type Job struct {
	ID           string
	URL          string
	OutputPath   string
	ExtractPath  string
	Connections  int
	BinaryPath   string
	HTTPConfig   HTTPClientConfig
	Skipped      bool
	DownloadTime time.Duration
}

const DefaultBufferSize = 1024 * 1024 // 1MB buffer
const LogFile = ".godotfetch.log"
const ToolUserAgent = "godotfetch/1.0"
