package fetchhttp

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanq16/godotfetch/internal/downloader"
	"github.com/tanq16/godotfetch/internal/utils"
)

func payload(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

// rangeServer serves data with full Range support and counts GET requests.
func rangeServer(t *testing.T, data []byte, gets *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			gets.Add(1)
		}
		http.ServeContent(w, r, "godot.zip", time.Unix(0, 0), bytes.NewReader(data))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewSourceRejectsScheme(t *testing.T) {
	_, err := NewSource("ftp://example.com/godot.zip", utils.HTTPClientConfig{})
	assert.Error(t, err)
	_, err = NewSource("://bad", utils.HTTPClientConfig{})
	assert.Error(t, err)
}

func TestStat(t *testing.T) {
	data := payload(t, 4096)
	var gets atomic.Int32
	srv := rangeServer(t, data, &gets)

	src, err := NewSource(srv.URL+"/3.5/godot.zip", utils.HTTPClientConfig{})
	require.NoError(t, err)
	meta, err := src.Stat(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4096), meta.Size)
	assert.True(t, meta.Rangeable)
	assert.EqualValues(t, 0, gets.Load(), "HEAD must not fetch the body")
}

func TestStatErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		case "/nohead":
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer srv.Close()

	src, _ := NewSource(srv.URL+"/missing", utils.HTTPClientConfig{})
	_, err := src.Stat(context.Background())
	assert.ErrorContains(t, err, "404")

	src, _ = NewSource(srv.URL+"/broken", utils.HTTPClientConfig{})
	_, err = src.Stat(context.Background())
	assert.ErrorContains(t, err, "500")

	src, _ = NewSource(srv.URL+"/nohead", utils.HTTPClientConfig{})
	meta, err := src.Stat(context.Background())
	require.NoError(t, err)
	assert.Equal(t, downloader.Metadata{}, meta)
}

func TestFetchRangeRequiresPartialContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ignoring your range"))
	}))
	defer srv.Close()

	src, _ := NewSource(srv.URL, utils.HTTPClientConfig{})
	var buf bytes.Buffer
	err := src.Fetch(context.Background(), utils.Chunk{Start: 0, End: 3}, true, &buf)
	assert.ErrorContains(t, err, "unexpected status code: 200")
	assert.Zero(t, buf.Len())
}

func TestFetchSendsUserAgentAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "custom/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	src, _ := NewSource(srv.URL, utils.HTTPClientConfig{
		UserAgent: "custom/1.0",
		Headers:   map[string]string{"Authorization": "Bearer abc"},
	})
	var buf bytes.Buffer
	require.NoError(t, src.Fetch(context.Background(), utils.Chunk{}, false, &buf))
	assert.Equal(t, "ok", buf.String())
}

func TestChunkedDownloadOverHTTP(t *testing.T) {
	data := payload(t, 23*1024)
	var gets atomic.Int32
	srv := rangeServer(t, data, &gets)
	src, err := NewSource(srv.URL+"/godot.zip", utils.HTTPClientConfig{})
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "download", "godot.zip")
	d := downloader.New(downloader.Config{CPUCount: 8, MaxChunkSize: 1024})
	res, err := d.Download(context.Background(), src, dest)
	require.NoError(t, err)
	assert.Equal(t, 23, res.Chunks)
	assert.EqualValues(t, 23, gets.Load())

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, got))

	// the second run finds the file and never talks to the server
	res, err = d.Download(context.Background(), src, dest)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.EqualValues(t, 23, gets.Load())
}

func TestChunkedDownloadFailsOnServerError(t *testing.T) {
	data := payload(t, 10*1024)
	var gets atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && gets.Add(1) == 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		http.ServeContent(w, r, "godot.zip", time.Unix(0, 0), bytes.NewReader(data))
	}))
	defer srv.Close()

	src, _ := NewSource(srv.URL, utils.HTTPClientConfig{})
	dest := filepath.Join(t.TempDir(), "godot.zip")
	_, err := downloader.New(downloader.Config{Connections: 1, MaxChunkSize: 1024}).Download(context.Background(), src, dest)
	require.Error(t, err)

	var netErr *utils.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.ErrorContains(t, err, "503")
	assert.NoFileExists(t, dest)
}
