package vimeo

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMe(t *testing.T) {
	srv, seen := recordingServer(t, http.StatusOK,
		`{"uri":"/users/42","name":"Alice","link":"https://vimeo.com/alice","account":"pro"}`)
	c := newTestClient(t, srv.URL, Credentials{AccessToken: "tok"})

	user, err := c.Me(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/me", (*seen)[0].Path)
	assert.Equal(t, "/users/42", user.URI)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "pro", user.Account)
}

func TestVideo(t *testing.T) {
	srv, seen := recordingServer(t, http.StatusOK,
		`{"uri":"/videos/777","name":"clip","duration":42,"status":"transcoding"}`)
	c := newTestClient(t, srv.URL, Credentials{AccessToken: "tok"})

	video, err := c.Video(context.Background(), "/videos/777")
	require.NoError(t, err)

	assert.Equal(t, "/videos/777", (*seen)[0].Path)
	assert.Equal(t, "clip", video.Name)
	assert.Equal(t, 42, video.Duration)
	assert.Equal(t, "transcoding", video.Status)
}

func TestVideo_EmptyURI(t *testing.T) {
	c := NewClient(Credentials{AccessToken: "tok"})

	_, err := c.Video(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingVideoURI)
}

func TestVideo_NotFound(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusNotFound, `{"error":"not found"}`)
	c := newTestClient(t, srv.URL, Credentials{AccessToken: "tok"})

	_, err := c.Video(context.Background(), "/videos/0")
	assert.ErrorIs(t, err, ErrNotFound)
}
