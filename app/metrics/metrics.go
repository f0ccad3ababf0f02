// Package metrics holds the prometheus collectors exported on /metrics.
//
// Every method is safe to call on a nil *Metrics, so services and handlers
// built without metrics need no special casing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Requests         *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	PostsCreated     prometheus.Counter
	PostsEdited      prometheus.Counter
	CommentsCreated  prometheus.Counter
	FollowRequests   prometheus.Counter
	UnfollowRequests prometheus.Counter
	UsersRegistered  prometheus.Counter
	CacheLookups     *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yatube_http_requests_total",
				Help: "Total number of HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "yatube_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		PostsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yatube_posts_created_total",
			Help: "Total number of posts created",
		}),
		PostsEdited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yatube_posts_edited_total",
			Help: "Total number of posts edited by their authors",
		}),
		CommentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yatube_comments_created_total",
			Help: "Total number of comments created",
		}),
		FollowRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yatube_follows_total",
			Help: "Total number of follow edges created",
		}),
		UnfollowRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yatube_unfollows_total",
			Help: "Total number of follow edges removed",
		}),
		UsersRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yatube_users_registered_total",
			Help: "Total number of accounts created",
		}),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yatube_page_cache_lookups_total",
				Help: "Page cache lookups by result (hit or miss)",
			},
			[]string{"result"},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.Requests,
		m.RequestDuration,
		m.PostsCreated,
		m.PostsEdited,
		m.CommentsCreated,
		m.FollowRequests,
		m.UnfollowRequests,
		m.UsersRegistered,
		m.CacheLookups,
	)
	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(route string, code int, duration time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (m *Metrics) PostCreated() {
	if m != nil {
		m.PostsCreated.Inc()
	}
}

func (m *Metrics) PostEdited() {
	if m != nil {
		m.PostsEdited.Inc()
	}
}

func (m *Metrics) CommentCreated() {
	if m != nil {
		m.CommentsCreated.Inc()
	}
}

func (m *Metrics) Followed() {
	if m != nil {
		m.FollowRequests.Inc()
	}
}

func (m *Metrics) Unfollowed() {
	if m != nil {
		m.UnfollowRequests.Inc()
	}
}

func (m *Metrics) UserRegistered() {
	if m != nil {
		m.UsersRegistered.Inc()
	}
}

func (m *Metrics) CacheHit() {
	if m != nil {
		m.CacheLookups.WithLabelValues("hit").Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.CacheLookups.WithLabelValues("miss").Inc()
	}
}
