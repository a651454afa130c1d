package vimeo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/bdragon300/tusgo"
)

// DefaultRetryDelays is the transfer retry schedule: the wait before each
// attempt, so the first attempt runs immediately and transient faults are
// retried after 1s, 3s, and 5s. Context cancellation is never retried.
var DefaultRetryDelays = []time.Duration{0, 1 * time.Second, 3 * time.Second, 5 * time.Second}

// UploadHandle drives one resumable transfer to a tus upload link. It is
// returned by Upload/Replace in an un-started state so the caller decides
// when bytes move; cancellation is the Start context's responsibility.
//
// A handle is single-use: Start may be called once.
type UploadHandle struct {
	uploadLink  string
	videoURI    string
	size        int64
	src         FileSource
	ownsSrc     bool
	cb          UploadCallbacks
	retryDelays []time.Duration
	logger      *slog.Logger
	httpClient  *http.Client

	started atomic.Bool
	offset  atomic.Int64

	// run performs one transfer attempt. Tests replace it to fake the
	// external tus collaborator.
	run func(ctx context.Context) error

	// sleepFunc waits between retry attempts. Tests override it to avoid
	// real delays.
	sleepFunc func(ctx context.Context, d time.Duration) error
}

// newUploadHandle wires a handle to this client's transfer HTTP client and
// retry schedule.
func (c *Client) newUploadHandle(uploadLink, videoURI string, size int64, src FileSource, ownsSrc bool, cb UploadCallbacks) *UploadHandle {
	h := &UploadHandle{
		uploadLink:  uploadLink,
		videoURI:    videoURI,
		size:        size,
		src:         src,
		ownsSrc:     ownsSrc,
		cb:          cb,
		retryDelays: c.retryDelays,
		logger:      c.logger,
		httpClient:  c.transferClient,
		sleepFunc:   sleepContext,
	}

	h.run = h.runTus

	return h
}

// UploadLink returns the tus endpoint bytes are streamed to.
func (h *UploadHandle) UploadLink() string { return h.uploadLink }

// VideoURI returns the video resource this upload belongs to.
func (h *UploadHandle) VideoURI() string { return h.videoURI }

// Size returns the declared upload size in bytes.
func (h *UploadHandle) Size() int64 { return h.size }

// Offset returns the number of bytes acknowledged so far.
func (h *UploadHandle) Offset() int64 { return h.offset.Load() }

// Start performs the transfer, blocking until the final byte is acknowledged
// or the retry schedule is exhausted. On success OnComplete receives the
// video URI; a terminal error goes to OnError and is returned. Run Start in
// its own goroutine for a non-blocking upload.
func (h *UploadHandle) Start(ctx context.Context) error {
	if !h.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	if h.ownsSrc {
		defer h.closeSrc()
	}

	if err := h.transfer(ctx); err != nil {
		h.logger.Error("upload failed",
			slog.String("video_uri", h.videoURI),
			slog.String("error", err.Error()),
		)
		h.cb.error(err)

		return err
	}

	h.logger.Info("upload complete",
		slog.String("video_uri", h.videoURI),
		slog.Int64("size", h.size),
	)
	h.cb.complete(h.videoURI)

	return nil
}

// transfer walks the retry schedule, running one attempt per delay entry.
func (h *UploadHandle) transfer(ctx context.Context) error {
	var lastErr error

	for attempt, delay := range h.retryDelays {
		if err := h.sleepFunc(ctx, delay); err != nil {
			return fmt.Errorf("vimeo: upload canceled: %w", err)
		}

		lastErr = h.run(ctx)
		if lastErr == nil {
			return nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("vimeo: upload canceled: %w", ctxErr)
		}

		if !isTransient(lastErr) {
			return lastErr
		}

		if attempt < len(h.retryDelays)-1 {
			h.logger.Warn("retrying upload transfer",
				slog.Int("attempt", attempt+1),
				slog.Duration("next_delay", h.retryDelays[attempt+1]),
				slog.String("error", lastErr.Error()),
			)
		}
	}

	return lastErr
}

// runTus performs a single tus attempt: sync the remote offset, seek the
// source to it, and stream the remainder. Chunking and offset negotiation
// belong to tusgo; resuming after a failed attempt works because the next
// attempt re-syncs.
func (h *UploadHandle) runTus(ctx context.Context) error {
	client := tusgo.NewClient(h.httpClient, nil).WithContext(ctx)

	upload := tusgo.Upload{
		Location:   h.uploadLink,
		RemoteSize: h.size,
	}

	stream := tusgo.NewUploadStream(client, &upload)

	if _, err := stream.Sync(); err != nil {
		return fmt.Errorf("vimeo: syncing upload offset: %w", err)
	}

	if _, err := h.src.Seek(upload.RemoteOffset, io.SeekStart); err != nil {
		return fmt.Errorf("vimeo: seeking upload source to offset %d: %w", upload.RemoteOffset, err)
	}

	h.offset.Store(upload.RemoteOffset)
	h.cb.progress(upload.RemoteOffset, h.size)

	if upload.RemoteOffset >= h.size {
		// Nothing left to send — a previous attempt finished the upload.
		return nil
	}

	reader := &progressReader{src: h.src, handle: h, sent: upload.RemoteOffset}

	if _, err := io.Copy(stream, reader); err != nil {
		return fmt.Errorf("vimeo: transferring bytes: %w", err)
	}

	return nil
}

// closeSrc closes a source the handle opened itself (path-based uploads).
func (h *UploadHandle) closeSrc() {
	if closer, ok := h.src.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			h.logger.Warn("closing upload source", slog.String("error", err.Error()))
		}
	}
}

// isTransient reports whether a transfer error is worth another attempt.
// Context cancellation and deadline expiry are terminal.
func isTransient(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// sleepContext waits for the given duration or until the context is
// canceled. A zero duration returns immediately without consulting a timer.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// progressReader counts bytes handed to the tus stream and fans them out to
// the handle's offset and the OnProgress callback.
type progressReader struct {
	src    io.Reader
	handle *UploadHandle
	sent   int64
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.src.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.handle.offset.Store(p.sent)
		p.handle.cb.progress(p.sent, p.handle.size)
	}

	return n, err
}

// pathSource adapts a filesystem path to FileSource, opening the file on
// first use so UploadFromPath issues no I/O beyond the initial stat until
// the transfer starts.
type pathSource struct {
	path string
	f    *os.File
}

func lazyFile(path string) *pathSource {
	return &pathSource{path: path}
}

func (p *pathSource) open() error {
	if p.f != nil {
		return nil
	}

	f, err := os.Open(p.path)
	if err != nil {
		return err
	}

	p.f = f

	return nil
}

func (p *pathSource) Read(b []byte) (int, error) {
	if err := p.open(); err != nil {
		return 0, err
	}

	return p.f.Read(b)
}

func (p *pathSource) Seek(offset int64, whence int) (int64, error) {
	if err := p.open(); err != nil {
		return 0, err
	}

	return p.f.Seek(offset, whence)
}

func (p *pathSource) Stat() (fs.FileInfo, error) {
	if p.f != nil {
		return p.f.Stat()
	}

	return os.Stat(p.path)
}

func (p *pathSource) Name() string { return p.path }

func (p *pathSource) Close() error {
	if p.f == nil {
		return nil
	}

	return p.f.Close()
}
