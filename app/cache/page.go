package cache

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"yatube/app/metrics"

	"github.com/sirupsen/logrus"
)

// page is a rendered response as stored in the cache.
type page struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Page caches successful GET responses of next for ttl under
// prefix + request URI. Backend failures are logged and the request is
// served uncached.
func Page(store Store, prefix string, ttl time.Duration, m *metrics.Metrics, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			key := prefix + ":" + r.URL.RequestURI()
			ctx := r.Context()

			data, ok, err := store.Get(ctx, key)
			if err != nil {
				log.WithError(err).WithField("key", key).Warn("Page cache lookup failed")
			}
			if ok {
				var cached page
				if err := json.Unmarshal(data, &cached); err == nil {
					m.CacheHit()
					writePage(w, r, &cached)
					return
				}
				log.WithField("key", key).Warn("Discarding corrupt page cache entry")
			}
			m.CacheMiss()

			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status != http.StatusOK || r.Method != http.MethodGet {
				return
			}
			entry, err := json.Marshal(page{
				Status:      rec.status,
				ContentType: rec.Header().Get("Content-Type"),
				Body:        rec.body.Bytes(),
			})
			if err != nil {
				log.WithError(err).Error("Encoding page cache entry failed")
				return
			}
			if err := store.Set(ctx, key, entry, ttl); err != nil {
				log.WithError(err).WithField("key", key).Warn("Page cache store failed")
			}
		})
	}
}

func writePage(w http.ResponseWriter, r *http.Request, p *page) {
	if p.ContentType != "" {
		w.Header().Set("Content-Type", p.ContentType)
	}
	w.Header().Set("X-Cache", "HIT")
	w.WriteHeader(p.Status)
	if r.Method != http.MethodHead {
		w.Write(p.Body)
	}
}

// recorder passes a response through while keeping a copy of the body.
type recorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (r *recorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
