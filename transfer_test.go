package vimeo

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRetryDelays(t *testing.T) {
	assert.Equal(t, []time.Duration{0, 1 * time.Second, 3 * time.Second, 5 * time.Second}, DefaultRetryDelays)
}

func TestProgressReader_ReportsCumulativeBytes(t *testing.T) {
	c := NewClient(Credentials{AccessToken: "tok"})

	var reports [][2]int64
	h := c.newUploadHandle("https://files.example/tus/1", "/videos/1", 10, nil, false, UploadCallbacks{
		OnProgress: func(sent, total int64) { reports = append(reports, [2]int64{sent, total}) },
	})

	// Resume at offset 4: the reader continues counting from there.
	pr := &progressReader{src: strings.NewReader("abcdef"), handle: h, sent: 4}

	_, err := io.Copy(io.Discard, pr)
	require.NoError(t, err)

	require.NotEmpty(t, reports)
	last := reports[len(reports)-1]
	assert.EqualValues(t, 10, last[0])
	assert.EqualValues(t, 10, last[1])
	assert.EqualValues(t, 10, h.Offset())
}

func TestSleepContext(t *testing.T) {
	// Zero duration returns immediately without a timer.
	require.NoError(t, sleepContext(context.Background(), 0))

	// Cancellation interrupts the wait.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Minute), context.Canceled)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(errors.New("connection reset")))
	assert.False(t, isTransient(context.Canceled))
	assert.False(t, isTransient(context.DeadlineExceeded))

	wrapped := errors.Join(errors.New("transfer failed"), context.DeadlineExceeded)
	assert.False(t, isTransient(wrapped))
}

func TestPathSource_LazyOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o600))

	src := lazyFile(path)
	assert.Nil(t, src.f, "file not opened before use")

	info, err := src.Stat()
	require.NoError(t, err)
	assert.EqualValues(t, 10, info.Size())
	assert.Nil(t, src.f, "stat does not open the file")

	// Seek then read mid-file, as a resumed transfer does.
	_, err = src.Seek(4, io.SeekStart)
	require.NoError(t, err)

	data, err := io.ReadAll(src)
	require.NoError(t, err)
	assert.Equal(t, "456789", string(data))

	require.NoError(t, src.Close())
}

func TestPathSource_NameAndMissingFile(t *testing.T) {
	src := lazyFile("/no/such/clip.mp4")
	assert.Equal(t, "/no/such/clip.mp4", src.Name())

	_, err := src.Read(make([]byte, 1))
	require.Error(t, err)

	// Close without open is a no-op.
	assert.NoError(t, src.Close())
}

func TestWithUploadApproach(t *testing.T) {
	params := Params{
		"name": "clip",
		"upload": map[string]any{
			"approach": "post",
			"mime":     "video/mp4",
		},
	}

	merged := withUploadApproach(params, 2048)

	upload := merged["upload"].(map[string]any)
	assert.Equal(t, "tus", upload["approach"])
	assert.EqualValues(t, 2048, upload["size"])
	assert.Equal(t, "video/mp4", upload["mime"])
	assert.Equal(t, "clip", merged["name"])

	// Source map untouched.
	assert.Equal(t, "post", params["upload"].(map[string]any)["approach"])
	_, hasSize := params["upload"].(map[string]any)["size"]
	assert.False(t, hasSize)
}

func TestWithUploadApproach_NilParams(t *testing.T) {
	merged := withUploadApproach(nil, 5)

	upload := merged["upload"].(map[string]any)
	assert.Equal(t, "tus", upload["approach"])
	assert.EqualValues(t, 5, upload["size"])
}
