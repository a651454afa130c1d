package vimeo

import (
	"context"
	"fmt"
)

// User represents a Vimeo user, as embedded in token payloads and returned
// by Me.
type User struct {
	URI     string `json:"uri"`
	Name    string `json:"name"`
	Link    string `json:"link"`
	Account string `json:"account"`
}

// Video is the subset of a video resource the SDK exposes. Status is the
// transcode status ("available", "transcoding", ...).
type Video struct {
	URI      string `json:"uri"`
	Name     string `json:"name"`
	Link     string `json:"link"`
	Duration int    `json:"duration"`
	Status   string `json:"status"`
}

// Me fetches the authenticated user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	resp, err := c.Request(ctx, RequestOptions{Path: "/me"})
	if err != nil {
		return nil, err
	}

	var user User
	if err := resp.JSON(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

// Video fetches a video resource by its URI (e.g. "/videos/12345").
// Useful for polling transcode status after an upload completes.
func (c *Client) Video(ctx context.Context, videoURI string) (*Video, error) {
	if videoURI == "" {
		return nil, ErrMissingVideoURI
	}

	resp, err := c.Request(ctx, RequestOptions{Path: videoURI})
	if err != nil {
		return nil, fmt.Errorf("vimeo: fetching video %s: %w", videoURI, err)
	}

	var video Video
	if err := resp.JSON(&video); err != nil {
		return nil, err
	}

	return &video, nil
}
