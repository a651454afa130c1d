package vimeo

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// API paths and field filters for upload intent declaration.
const (
	createVideoPath = "/me/videos"
	versionsSuffix  = "/versions"

	createFields  = "uri,name,upload"
	replaceFields = "upload"
)

// uploadApproach is the only transfer approach this SDK drives.
const uploadApproach = "tus"

// Params is caller-supplied video metadata passed through to the API
// (name, description, privacy, ...). A nested "upload" map is preserved
// except that the orchestrator always overwrites its "approach" and "size"
// keys. The caller's map is never mutated.
type Params map[string]any

// UploadCallbacks carries the optional observers of an upload's lifecycle.
// Any field may be nil.
type UploadCallbacks struct {
	// OnComplete receives the video resource URI after the final byte is
	// acknowledged.
	OnComplete func(videoURI string)

	// OnProgress receives cumulative bytes sent and the total size. It is
	// also invoked after offset sync, so a resumed upload reports its
	// starting position.
	OnProgress func(bytesSent, bytesTotal int64)

	// OnError receives terminal failures: stat errors, intent declaration
	// errors, and exhausted transfer retries. The same error is returned
	// from the failing call.
	OnError func(err error)
}

func (cb UploadCallbacks) complete(uri string) {
	if cb.OnComplete != nil {
		cb.OnComplete(uri)
	}
}

func (cb UploadCallbacks) progress(sent, total int64) {
	if cb.OnProgress != nil {
		cb.OnProgress(sent, total)
	}
}

func (cb UploadCallbacks) error(err error) {
	if cb.OnError != nil {
		cb.OnError(err)
	}
}

// FileSource is the file-like input accepted by Upload and Replace.
// *os.File satisfies it.
type FileSource interface {
	io.ReadSeeker
	Stat() (fs.FileInfo, error)
	Name() string
}

// UploadAttempt is the server-issued descriptor returned after declaring
// upload intent: the video resource URI and the endpoint to stream bytes to.
// Short-lived; used to initiate exactly one transfer.
type UploadAttempt struct {
	URI    string     `json:"uri"`
	Name   string     `json:"name"`
	Upload UploadInfo `json:"upload"`
}

// UploadInfo is the upload facet of a video resource.
type UploadInfo struct {
	Approach   string `json:"approach"`
	Size       int64  `json:"size"`
	Status     string `json:"status"`
	UploadLink string `json:"upload_link"`
}

// Upload creates a new video resource and prepares a resumable transfer of
// file's content. The returned handle is NOT started — no bytes move until
// the caller invokes Start.
//
// Failures (unreadable file, intent declaration) are returned and mirrored
// to cb.OnError with a nil handle.
func (c *Client) Upload(ctx context.Context, file FileSource, params Params, cb UploadCallbacks) (*UploadHandle, error) {
	info, err := file.Stat()
	if err != nil {
		statErr := fmt.Errorf("%w: %v", ErrUnableToLocateFile, err)
		cb.error(statErr)

		return nil, statErr
	}

	return c.prepareUpload(ctx, file, false, info.Size(), createVideoPath, "", params, cb)
}

// UploadFromPath is Upload for a file on disk. The path is stat'ed first; on
// failure cb.OnError receives ErrUnableToLocateFile and no HTTP call is
// made. The file is opened lazily when the transfer starts and closed by the
// handle.
func (c *Client) UploadFromPath(ctx context.Context, path string, params Params, cb UploadCallbacks) (*UploadHandle, error) {
	size, err := statPath(path, cb)
	if err != nil {
		return nil, err
	}

	return c.prepareUpload(ctx, lazyFile(path), true, size, createVideoPath, "", params, cb)
}

// Replace uploads file as the new source media of an existing video. The
// file_name parameter is attached from the file's base name, and completion
// reports videoURI as the resource URI.
func (c *Client) Replace(ctx context.Context, file FileSource, videoURI string, params Params, cb UploadCallbacks) (*UploadHandle, error) {
	if videoURI == "" {
		cb.error(ErrMissingVideoURI)
		return nil, ErrMissingVideoURI
	}

	info, err := file.Stat()
	if err != nil {
		statErr := fmt.Errorf("%w: %v", ErrUnableToLocateFile, err)
		cb.error(statErr)

		return nil, statErr
	}

	return c.prepareUpload(ctx, file, false, info.Size(), videoURI+versionsSuffix, videoURI, params, cb)
}

// ReplaceFromPath is Replace for a file on disk, with UploadFromPath's
// stat-first and lazy-open semantics.
func (c *Client) ReplaceFromPath(ctx context.Context, path, videoURI string, params Params, cb UploadCallbacks) (*UploadHandle, error) {
	if videoURI == "" {
		cb.error(ErrMissingVideoURI)
		return nil, ErrMissingVideoURI
	}

	size, err := statPath(path, cb)
	if err != nil {
		return nil, err
	}

	return c.prepareUpload(ctx, lazyFile(path), true, size, videoURI+versionsSuffix, videoURI, params, cb)
}

// prepareUpload assembles the intent parameters, declares the upload to the
// API, and constructs the (not yet started) transfer handle.
func (c *Client) prepareUpload(
	ctx context.Context, src FileSource, owned bool, size int64,
	intentPath, videoURI string, params Params, cb UploadCallbacks,
) (*UploadHandle, error) {
	replace := videoURI != ""

	body := withUploadApproach(params, size)
	fields := createFields

	if replace {
		body["file_name"] = filepath.Base(src.Name())
		fields = replaceFields
	}

	c.logger.Info("declaring upload intent",
		slog.String("path", intentPath),
		slog.Int64("size", size),
	)

	attempt, err := c.declareIntent(ctx, intentPath, fields, body)
	if err != nil {
		intentErr := fmt.Errorf("vimeo: declaring upload intent: %w", err)
		cb.error(intentErr)

		return nil, intentErr
	}

	// A replace version response has no video URI of its own; the upload
	// still belongs to the existing resource.
	uri := attempt.URI
	if replace {
		uri = videoURI
	}

	c.logger.Info("upload intent accepted",
		slog.String("video_uri", uri),
		slog.Int64("size", size),
	)

	return c.newUploadHandle(attempt.Upload.UploadLink, uri, size, src, owned, cb), nil
}

// declareIntent POSTs the assembled params and validates that the response
// carries a tus upload link. The orchestrator does not retry this call.
func (c *Client) declareIntent(ctx context.Context, path, fields string, body Params) (*UploadAttempt, error) {
	resp, err := c.Request(ctx, RequestOptions{
		Method: http.MethodPost,
		Path:   path,
		Query:  url.Values{"fields": {fields}},
		Body:   body,
	})
	if err != nil {
		return nil, err
	}

	var attempt UploadAttempt
	if err := resp.JSON(&attempt); err != nil {
		return nil, err
	}

	if attempt.Upload.UploadLink == "" {
		return nil, fmt.Errorf("vimeo: upload intent response missing upload link")
	}

	return &attempt, nil
}

// withUploadApproach returns a copy of params whose "upload" map has
// approach and size forced, preserving every other caller-supplied upload
// key.
func withUploadApproach(params Params, size int64) Params {
	merged := make(Params, len(params)+1)
	maps.Copy(merged, params)

	upload := make(map[string]any)
	if prev, ok := merged["upload"].(map[string]any); ok {
		maps.Copy(upload, prev)
	}

	upload["approach"] = uploadApproach
	upload["size"] = size
	merged["upload"] = upload

	return merged
}

// statPath resolves a path's size, reporting stat failures with the fixed
// locate-file error before any HTTP call.
func statPath(path string, cb UploadCallbacks) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		statErr := fmt.Errorf("%w: %s", ErrUnableToLocateFile, path)
		cb.error(statErr)

		return 0, statErr
	}

	return info.Size(), nil
}
