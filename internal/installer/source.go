package installer

import (
	"context"

	"github.com/tanq16/godotfetch/internal/downloader"
	fetchhttp "github.com/tanq16/godotfetch/internal/downloaders/http"
	"github.com/tanq16/godotfetch/internal/downloaders/s3"
	"github.com/tanq16/godotfetch/internal/utils"
)

// SourceOptions configures the transports a URL can be fetched over.
type SourceOptions struct {
	HTTP      utils.HTTPClientConfig
	S3Profile string
}

// NewSource picks the transport for rawURL by scheme: s3:// goes through the
// AWS SDK, everything else must be http(s).
func NewSource(ctx context.Context, rawURL string, opts SourceOptions) (downloader.Source, error) {
	if s3.IsS3URL(rawURL) {
		src, err := s3.NewSource(ctx, rawURL, opts.S3Profile)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	src, err := fetchhttp.NewSource(rawURL, opts.HTTP)
	if err != nil {
		return nil, err
	}
	return src, nil
}
