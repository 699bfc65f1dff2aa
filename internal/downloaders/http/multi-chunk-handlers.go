package fetchhttp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tanq16/godotfetch/internal/utils"
)

// Fetch streams one chunk into w. Ranged chunks must come back as 206 with a
// Content-Range header; anything else is an error, never a silent full body.
func (s *Source) Fetch(ctx context.Context, chunk utils.Chunk, ranged bool, w io.Writer) error {
	if !ranged {
		return s.fetchAll(ctx, w)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", chunk.Start, chunk.End))
	req.Header.Set("Connection", "keep-alive")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusPartialContent {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if resp.Header.Get("Content-Range") == "" {
		return errors.New("missing Content-Range header")
	}
	return copyBody(w, resp.Body)
}

func copyBody(w io.Writer, body io.Reader) error {
	buffer := make([]byte, utils.DefaultBufferSize)
	if _, err := io.CopyBuffer(w, body, buffer); err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}
	return nil
}
