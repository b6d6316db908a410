package showcase

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/showcase/internal/logger"
	"github.com/mesh-intelligence/showcase/internal/metrics"
)

// DefaultPhotoPrefix is the folder comment photos are uploaded into.
const DefaultPhotoPrefix = "comment-photos"

// Option configures a Fetcher or Submitter.
type Option func(*options)

type options struct {
	log         *slog.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
	suffix      func() string
	photoPrefix string
}

func buildOptions(opts []Option) options {
	o := options{
		now:         time.Now,
		suffix:      randomSuffix,
		photoPrefix: DefaultPhotoPrefix,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.log = logger.OrDefault(o.log)
	return o
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics records fetch and submission counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock replaces time.Now, for photo names and stats.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithSuffix replaces the random part of photo names.
func WithSuffix(suffix func() string) Option {
	return func(o *options) { o.suffix = suffix }
}

// WithPhotoPrefix sets the folder photos are uploaded into.
func WithPhotoPrefix(prefix string) Option {
	return func(o *options) {
		if p := strings.Trim(prefix, "/"); p != "" {
			o.photoPrefix = p
		}
	}
}

// randomSuffix returns eight random hex characters.
func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
