package fetchhttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/godotfetch/internal/downloader"
	"github.com/tanq16/godotfetch/internal/utils"
)

// Source fetches a resource over HTTP(S), using Range requests when the
// server advertises byte ranges.
type Source struct {
	url    string
	client utils.HTTPDoer
}

func NewSource(rawURL string, cfg utils.HTTPClientConfig) (*Source, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}
	return &Source{url: rawURL, client: utils.NewHTTPClient(cfg)}, nil
}

// NewSourceWithClient is NewSource with a caller-supplied client.
func NewSourceWithClient(rawURL string, client utils.HTTPDoer) (*Source, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}
	return &Source{url: rawURL, client: client}, nil
}

func (s *Source) URL() string { return s.url }

func validateURL(rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("unsupported scheme: %s", parsedURL.Scheme)
	}
	return nil
}

// Stat issues a HEAD request for the total size and range support. Redirects
// are followed by the client; the final response is the one inspected.
func (s *Source) Stat(ctx context.Context) (downloader.Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.url, nil)
	if err != nil {
		return downloader.Metadata{}, fmt.Errorf("error creating request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return downloader.Metadata{}, fmt.Errorf("error checking URL: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusMethodNotAllowed:
		log.Debug().Str("op", "http/initial").Msg("HEAD not allowed, falling back to a single stream")
		return downloader.Metadata{}, nil
	case resp.StatusCode == http.StatusNotFound:
		return downloader.Metadata{}, fmt.Errorf("URL not found (404)")
	case resp.StatusCode >= 400:
		return downloader.Metadata{}, fmt.Errorf("server returned error: %d", resp.StatusCode)
	}

	size, err := contentLength(resp)
	if err != nil {
		log.Debug().Str("op", "http/initial").Err(err).Msg("size unknown, falling back to a single stream")
		return downloader.Metadata{}, nil
	}
	meta := downloader.Metadata{Size: size, Rangeable: resp.Header.Get("Accept-Ranges") == "bytes"}
	if !meta.Rangeable {
		log.Debug().Str("op", "http/initial").Err(utils.ErrRangeRequestsNotSupported).Msg("using a single stream")
	}
	log.Info().Str("op", "http/initial").Int64("size", meta.Size).Bool("rangeable", meta.Rangeable).Msgf("described %s", s.url)
	return meta, nil
}

func contentLength(resp *http.Response) (int64, error) {
	if resp.ContentLength > 0 {
		return resp.ContentLength, nil
	}
	header := resp.Header.Get("Content-Length")
	if header == "" {
		return 0, errors.New("server didn't provide Content-Length header")
	}
	size, err := strconv.ParseInt(header, 10, 64)
	if err != nil {
		return 0, err
	}
	if size <= 0 {
		return 0, errors.New("invalid file size reported by server")
	}
	return size, nil
}
