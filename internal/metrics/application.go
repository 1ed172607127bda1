package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ApplicationMetrics tracks engagement and background event processing
type ApplicationMetrics struct {
	// View events
	ViewEventsTotal   *prometheus.CounterVec
	ViewQueuePending  prometheus.Gauge
	ViewEventDuration *prometheus.HistogramVec

	// Social engagement
	LikesTotal             *prometheus.CounterVec
	FollowsTotal           *prometheus.CounterVec
	RecTagsAdded           prometheus.Counter
	PreferenceUpdatesTotal prometheus.Counter

	// Comments, ad likes and reports
	CommentsTotal     prometheus.Counter
	CommentLikesTotal *prometheus.CounterVec
	AdLikesTotal      *prometheus.CounterVec
	ReportsTotal      *prometheus.CounterVec

	SearchQueriesTotal  *prometheus.CounterVec
	SearchQueryDuration *prometheus.HistogramVec
}

func newApplicationMetrics() *ApplicationMetrics {
	return &ApplicationMetrics{
		ViewEventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "view_events_total",
				Help: "View events by kind (media, ad) and result (recorded, failed, dropped)",
			},
			[]string{"kind", "result"},
		),
		ViewQueuePending: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "view_queue_pending_events",
				Help: "View events waiting for a worker",
			},
		),
		ViewEventDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "view_event_duration_seconds",
				Help:    "Time spent recording a view event",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"kind"},
		),
		LikesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "likes_total",
				Help: "Like toggles by action (like, unlike)",
			},
			[]string{"action"},
		),
		FollowsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "follows_total",
				Help: "Follow toggles by action (follow, unfollow)",
			},
			[]string{"action"},
		),
		RecTagsAdded: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "recommendation_tags_added_total",
				Help: "Recommendation tags newly attached to profiles",
			},
		),
		PreferenceUpdatesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "audience_preference_updates_total",
				Help: "Audience preference updates",
			},
		),
		CommentsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "comments_total",
				Help: "Comments and replies posted",
			},
		),
		CommentLikesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "comment_likes_total",
				Help: "Comment like toggles by action (like, unlike)",
			},
			[]string{"action"},
		),
		AdLikesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ad_likes_total",
				Help: "Ad like toggles by action (like, unlike)",
			},
			[]string{"action"},
		),
		ReportsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "content_reports_total",
				Help: "Content reports by reason",
			},
			[]string{"reason"},
		),
		SearchQueriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "elasticsearch_queries_total",
				Help: "Elasticsearch operations by operation and status (ok, error, fallback)",
			},
			[]string{"operation", "status"},
		),
		SearchQueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "elasticsearch_query_duration_seconds",
				Help:    "Duration of Elasticsearch operations in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"operation"},
		),
	}
}
