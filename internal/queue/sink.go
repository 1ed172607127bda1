package queue

import (
	"context"

	"github.com/zfogg/clipfeed/internal/feed"
)

type mediaRecorder interface {
	RecordMediaView(ctx context.Context, ev feed.ViewEvent) error
}

type adRecorder interface {
	RecordAdView(ctx context.Context, ev feed.ViewEvent) error
}

type repositorySink struct {
	media mediaRecorder
	ads   adRecorder
}

// NewRepositorySink joins the media and ad repositories into one Sink
func NewRepositorySink(media mediaRecorder, ads adRecorder) Sink {
	return repositorySink{media: media, ads: ads}
}

func (s repositorySink) RecordMediaView(ctx context.Context, ev feed.ViewEvent) error {
	return s.media.RecordMediaView(ctx, ev)
}

func (s repositorySink) RecordAdView(ctx context.Context, ev feed.ViewEvent) error {
	return s.ads.RecordAdView(ctx, ev)
}
