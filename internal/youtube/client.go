// Package youtube wraps the YouTube Data API v3 as the pipeline's source
// lookup and item fetch collaborator.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/sevigo/titleforge/internal/core"
)

// ErrChannelNotFound is returned when a channel name resolves to nothing.
var ErrChannelNotFound = errors.New("channel not found")

// ErrMissingAPIKey is returned when YOUTUBE_API_KEY is not configured. The
// credential check happens per call, not at startup, so a missing key fails
// the job it belongs to rather than the process.
var ErrMissingAPIKey = errors.New("youtube api key is not configured")

// Client talks to the YouTube Data API. The underlying service is created
// lazily on first use so construction never fails on configuration.
type Client struct {
	apiKey string
	logger *slog.Logger

	mu  sync.Mutex
	svc *youtube.Service
}

// NewClient creates a YouTube client. An empty API key is allowed here and
// surfaces as ErrMissingAPIKey on the first call.
func NewClient(apiKey string, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		logger: logger,
	}
}

func (c *Client) service(ctx context.Context) (*youtube.Service, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.svc != nil {
		return c.svc, nil
	}

	svc, err := youtube.NewService(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	c.svc = svc
	return svc, nil
}

// ResolveChannel maps a user-supplied channel name or handle to its canonical
// channel identifier and display title.
func (c *Client) ResolveChannel(ctx context.Context, name string) (core.Channel, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return core.Channel{}, err
	}

	resp, err := svc.Search.List([]string{"snippet"}).
		Q(name).
		Type("channel").
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return core.Channel{}, fmt.Errorf("search channel %q: %w", name, err)
	}
	if len(resp.Items) == 0 || resp.Items[0].Id == nil || resp.Items[0].Id.ChannelId == "" {
		return core.Channel{}, ErrChannelNotFound
	}

	item := resp.Items[0]
	ch := core.Channel{ID: item.Id.ChannelId}
	if item.Snippet != nil {
		ch.Title = item.Snippet.ChannelTitle
	}
	c.logger.Debug("channel resolved", "name", name, "channel_id", ch.ID, "title", ch.Title)
	return ch, nil
}

// LatestVideos returns up to max videos for a canonical channel id, newest
// first, normalized to the pipeline's item shape.
func (c *Client) LatestVideos(ctx context.Context, channelID string, max int64) ([]core.Video, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Search.List([]string{"snippet"}).
		ChannelId(channelID).
		Type("video").
		Order("date").
		MaxResults(max).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("search videos for channel %s: %w", channelID, err)
	}

	videos := make([]core.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		video := core.Video{
			VideoID:     item.Id.VideoId,
			Title:       item.Snippet.Title,
			URL:         "https://www.youtube.com/watch?v=" + item.Id.VideoId,
			PublishedAt: item.Snippet.PublishedAt,
		}
		if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.Default != nil {
			video.ThumbnailURL = item.Snippet.Thumbnails.Default.Url
		}
		videos = append(videos, video)
	}
	return videos, nil
}
