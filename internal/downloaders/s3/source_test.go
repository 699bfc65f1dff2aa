package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanq16/godotfetch/internal/downloader"
	"github.com/tanq16/godotfetch/internal/utils"
)

type fakeObjects struct {
	data    []byte
	headErr error

	mu     sync.Mutex
	ranges []string
}

func (f *fakeObjects) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(f.data)))}, nil
}

func (f *fakeObjects) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body := f.data
	rng := aws.ToString(in.Range)
	f.mu.Lock()
	f.ranges = append(f.ranges, rng)
	f.mu.Unlock()
	if rng != "" {
		var start, end int
		if _, err := fmt.Sscanf(rng, "bytes=%d-%d", &start, &end); err != nil {
			return nil, err
		}
		body = f.data[start : end+1]
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func TestParseS3URL(t *testing.T) {
	bucket, key, err := parseS3URL("s3://mirror/godot/3.5/Godot_v3.5-stable_x11.64.zip")
	require.NoError(t, err)
	assert.Equal(t, "mirror", bucket)
	assert.Equal(t, "godot/3.5/Godot_v3.5-stable_x11.64.zip", key)

	for _, raw := range []string{"s3://", "s3://bucket", "s3://bucket/", "s3://bucket/folder/", "https://bucket/key"} {
		_, _, err := parseS3URL(raw)
		assert.Error(t, err, raw)
	}
}

func TestStat(t *testing.T) {
	src, err := NewSourceWithClient("s3://mirror/godot.zip", &fakeObjects{data: make([]byte, 512)})
	require.NoError(t, err)
	assert.Equal(t, "s3://mirror/godot.zip", src.URL())

	meta, err := src.Stat(context.Background())
	require.NoError(t, err)
	assert.Equal(t, downloader.Metadata{Size: 512, Rangeable: true}, meta)

	src, _ = NewSourceWithClient("s3://mirror/godot.zip", &fakeObjects{headErr: errors.New("NotFound")})
	_, err = src.Stat(context.Background())
	assert.ErrorContains(t, err, "NotFound")
}

func TestClientDoesNotRetry(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	src, err := newSource(context.Background(), "s3://mirror/godot.zip", "", func(o *s3.Options) {
		o.BaseEndpoint = aws.String(srv.URL)
		o.UsePathStyle = true
		o.Region = "us-east-1"
		o.Credentials = aws.AnonymousCredentials{}
	})
	require.NoError(t, err)

	_, err = src.Stat(context.Background())
	require.Error(t, err)
	assert.EqualValues(t, 1, requests.Load())

	var buf bytes.Buffer
	err = src.Fetch(context.Background(), utils.Chunk{Start: 0, End: 9}, true, &buf)
	require.Error(t, err)
	assert.EqualValues(t, 2, requests.Load())
}

func TestFetchRange(t *testing.T) {
	fake := &fakeObjects{data: []byte("0123456789")}
	src, _ := NewSourceWithClient("s3://mirror/godot.zip", fake)

	var buf bytes.Buffer
	require.NoError(t, src.Fetch(context.Background(), utils.Chunk{Start: 2, End: 5}, true, &buf))
	assert.Equal(t, "2345", buf.String())

	buf.Reset()
	require.NoError(t, src.Fetch(context.Background(), utils.Chunk{}, false, &buf))
	assert.Equal(t, "0123456789", buf.String())
	assert.Equal(t, []string{"bytes=2-5", ""}, fake.ranges)
}

func TestChunkedDownloadFromS3(t *testing.T) {
	data := bytes.Repeat([]byte("godot"), 1000)
	fake := &fakeObjects{data: data}
	src, _ := NewSourceWithClient("s3://mirror/godot.zip", fake)

	dest := filepath.Join(t.TempDir(), "godot.zip")
	res, err := downloader.New(downloader.Config{CPUCount: 4, MaxChunkSize: 1000}).Download(context.Background(), src, dest)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Chunks)
	assert.Len(t, fake.ranges, 5)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}
